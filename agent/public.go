package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/etnz/devtrack"
	"github.com/etnz/devtrack/docs"
	"github.com/etnz/devtrack/renderer"
	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

func instruction(text string) *genai.Content {
	return &genai.Content{Parts: []*genai.Part{{Text: text}}}
}

// creates the facilitator
func newFacilitator(model string, experts ...*Expert) *Expert {
	if model == "" {
		model = DefaultModel
	}
	return &Expert{
		Name:      "Facilitator",
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(experts)},
			},
			SystemInstruction: instruction(`
			As a facilitator you are in charge of the conversation and of solving the user's request.

			The user manages a portfolio of real estate development projects. Learn the skills of the
			experts available as Tools and ask them questions. They keep the context of your previous
			questions.

			Devise a plan of questions to ask each expert and come up with the best response to the
			user's request. Figures about the user's projects must come from the Analyst, never guess them.
			Answer in markdown.
		`),
		},
		Library: NewLibrary(experts),
	}
}

// NewResearcher returns an expert grounded on Google Search, for market and
// regulation questions.
func NewResearcher(model string) *Expert {
	if model == "" {
		model = DefaultModel
	}
	return &Expert{
		Name: "Researcher",
		Description: `This is a property market researcher, aware of construction costs, land
		prices, property market trends and development regulations. Ask the Researcher whenever
		you need recent or grounding information that is not about the user's own projects.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{GoogleSearch: &genai.GoogleSearch{}},
			},
			SystemInstruction: instruction(`
			You are an expert in real estate development. You leverage Google Search to ground
			your assertions in a solid truth, and you relate the latest news to the user's request.
			`),
		},
	}
}

// NewAnalyst returns the expert that reads the user's projects from the store.
func NewAnalyst(store *devtrack.Store, model string) *Expert {
	if model == "" {
		model = DefaultModel
	}
	lib := Tools(store)
	return &Expert{
		Name: "Analyst",
		Description: `This is the Analyst. It reads the user's development projects and knows their
		figures: GDV, GDC, margins, status, construction progress and sales.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(lib)},
			},
			SystemInstruction: instruction(`
			You are the analyst in charge of the user's development projects.
			Use the Tools to read the projects and the portfolio metrics. Other experts might
			ask you questions with an approximate project name, list the projects to find the
			one they meant.

			` + must(docs.GetTopic("record"))),
		},
		Library: NewLibrary(lib),
	}
}

// Tools returns the functions reading the store.
func Tools(store *devtrack.Store) []Function {
	return []Function{
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "list_projects",
				Description: "Lists all the projects with their status, GDV, GDC, margin and sales, followed by the portfolio metrics.",
				Response: &genai.Schema{
					Type:        genai.TypeString,
					Description: "A markdown document with a table of the projects and the portfolio metrics.",
				},
			},
			Func: func(ctx context.Context, _ map[string]any) (string, error) {
				return renderer.RenderPortfolio(renderer.NewPortfolio(store.Load(ctx))), nil
			},
		},
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "get_project",
				Description: "Returns the full record of one project as JSON, or a single field of it.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"name": {
							Type:        genai.TypeString,
							Description: "The exact project name, as listed by list_projects.",
						},
						"path": {
							Type:        genai.TypeString,
							Description: `Optional JSONPath of a field, e.g. "$.sales_progress.units_sold".`,
						},
					},
					Required: []string{"name"},
				},
				Response: &genai.Schema{
					Type:        genai.TypeString,
					Description: "The JSON value.",
				},
			},
			Func: func(ctx context.Context, args map[string]any) (string, error) {
				name, err := stringArg(args, "name", true)
				if err != nil {
					return "", err
				}
				path, err := stringArg(args, "path", false)
				if err != nil {
					return "", err
				}
				r, err := store.Get(ctx, name)
				if err != nil {
					return "", err
				}
				v, err := devtrack.Query(r, path)
				if err != nil {
					return "", err
				}
				data, err := json.Marshal(v)
				if err != nil {
					return "", fmt.Errorf("cannot encode %s: %w", name, err)
				}
				return string(data), nil
			},
		},
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "portfolio_metrics",
				Description: "Returns the portfolio metrics as JSON: total GDV, GDC, GPM, GPM percentage, project count by status and units sold.",
				Response: &genai.Schema{
					Type:        genai.TypeString,
					Description: "The metrics as a JSON object.",
				},
			},
			Func: func(ctx context.Context, _ map[string]any) (string, error) {
				c := store.Load(ctx)
				data, err := json.Marshal(struct {
					devtrack.Metrics
					Sales devtrack.SalesMetrics `json:"sales"`
				}{devtrack.Compute(c), devtrack.ComputeSales(c)})
				if err != nil {
					return "", err
				}
				return string(data), nil
			},
		},
	}
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
