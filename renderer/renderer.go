package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"
)

//go:embed templates/*.md
var templateFS embed.FS

var templates, _ = fs.Sub(templateFS, "templates")

// funcs are available to every template.
var funcs = template.FuncMap{
	// cell escapes a value for a markdown table cell.
	"cell": func(v any) string {
		s := fmt.Sprint(v)
		s = strings.ReplaceAll(s, "|", `\|`)
		return strings.ReplaceAll(s, "\n", " ")
	},
	// orDash replaces an empty value with a dash.
	"orDash": func(v any) string {
		s := fmt.Sprint(v)
		if strings.TrimSpace(s) == "" {
			return "-"
		}
		return s
	},
}

// RenderPortfolio renders the list of projects followed by the portfolio
// metrics.
func RenderPortfolio(p *Portfolio) string {
	partials := map[string]string{
		"portfolio_title":    "portfolio_title.md",
		"portfolio_projects": "portfolio_projects.md",
		"portfolio_metrics":  "portfolio_metrics.md",
	}
	return renderTemplate("portfolio", "portfolio.md", partials, p)
}

// RenderMetrics renders only the portfolio metrics.
func RenderMetrics(p *Portfolio) string {
	partials := map[string]string{
		"portfolio_metrics": "portfolio_metrics.md",
	}
	return renderTemplate("metrics", "metrics.md", partials, p)
}

// RenderProject renders the details of one project.
func RenderProject(p *Project) string {
	partials := map[string]string{
		"project_title":       "project_title.md",
		"project_development": "project_development.md",
		"project_consultants": "project_consultants.md",
		"project_sales":       "project_sales.md",
	}
	// The progress section depends on the kind of progress recorded.
	switch {
	case p.Design != nil:
		partials["project_progress"] = "project_progress_design.md"
	case p.Contract != nil:
		partials["project_progress"] = "project_progress_contract.md"
	default:
		partials["project_progress"] = ""
	}
	return renderTemplate("project", "project.md", partials, p)
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Funcs(funcs).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		var content []byte
		// An empty file name is a valid case, resulting in an empty template.
		if file != "" {
			var readErr error
			content, readErr = fs.ReadFile(templates, file)
			if readErr != nil {
				return fmt.Sprintf("error reading partial template %q: %v", file, readErr)
			}
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
