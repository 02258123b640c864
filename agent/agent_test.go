package agent

import (
	"context"
	"errors"
	"io"
	"slices"
	"strings"
	"testing"

	"github.com/etnz/devtrack"
	"github.com/etnz/devtrack/storage"
	"google.golang.org/genai"
)

const projects = `{
  "Tower A": {"development_data": {"currency": "MYR", "gdv": 1000, "gdc": 600, "status": "Construction"}, "sales_progress": {"total_units": 10, "units_sold": 4}},
  "Villas": {"development_data": {"currency": "MYR", "gdv": 500, "gdc": 500, "status": "Planning"}}
}`

func TestTools(t *testing.T) {
	store := devtrack.NewStore(storage.NewMemory([]byte(projects)), "")
	lib := NewLibrary(Tools(store))
	ctx := context.Background()

	tests := []struct {
		name      string
		call      *genai.FunctionCall
		wantOut   string // substring of the output
		wantError string // substring of the error
	}{
		{
			name:    "list projects",
			call:    &genai.FunctionCall{ID: "1", Name: "list_projects"},
			wantOut: "| Tower A |",
		},
		{
			name:    "whole project",
			call:    &genai.FunctionCall{ID: "2", Name: "get_project", Args: map[string]any{"name": "Villas"}},
			wantOut: `"status":"Planning"`,
		},
		{
			name:    "project field",
			call:    &genai.FunctionCall{ID: "3", Name: "get_project", Args: map[string]any{"name": "Tower A", "path": "$.sales_progress.units_sold"}},
			wantOut: "4",
		},
		{
			name:      "unknown project",
			call:      &genai.FunctionCall{ID: "4", Name: "get_project", Args: map[string]any{"name": "Mall"}},
			wantError: "not found",
		},
		{
			name:      "missing name",
			call:      &genai.FunctionCall{ID: "5", Name: "get_project"},
			wantError: `argument "name" is required`,
		},
		{
			name:      "name of the wrong type",
			call:      &genai.FunctionCall{ID: "6", Name: "get_project", Args: map[string]any{"name": 12.0}},
			wantError: "not a string",
		},
		{
			name:    "metrics",
			call:    &genai.FunctionCall{ID: "7", Name: "portfolio_metrics"},
			wantOut: `"total_gpm":400`,
		},
		{
			name:      "unknown function",
			call:      &genai.FunctionCall{ID: "8", Name: "delete_everything"},
			wantError: "unknown function delete_everything",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := lib(ctx, tt.call)
			if resp.ID != tt.call.ID || resp.Name != tt.call.Name {
				t.Errorf("response ID, Name = %q, %q, want %q, %q", resp.ID, resp.Name, tt.call.ID, tt.call.Name)
			}
			if tt.wantError != "" {
				got, _ := resp.Response["error"].(string)
				if !strings.Contains(got, tt.wantError) {
					t.Errorf("error = %q, want it to contain %q", got, tt.wantError)
				}
				return
			}
			got, ok := resp.Response["output"].(string)
			if !ok {
				t.Fatalf("response = %v, want an output", resp.Response)
			}
			if !strings.Contains(got, tt.wantOut) {
				t.Errorf("output = %q, want it to contain %q", got, tt.wantOut)
			}
		})
	}
}

func TestExpertDeclaration(t *testing.T) {
	store := devtrack.NewStore(storage.NewMemory(nil), "")
	experts := []*Expert{NewAnalyst(store, ""), NewResearcher("")}
	decls := NewDeclaration(experts)
	if len(decls) != 2 || decls[0].Name != "Analyst" || decls[1].Name != "Researcher" {
		t.Fatalf("NewDeclaration() = %v", decls)
	}
	if got := decls[0].Parameters.Required; len(got) != 1 || got[0] != "question" {
		t.Errorf("Required = %v, want [question]", got)
	}
	f := newFacilitator("", experts...)
	if f.ModelName != DefaultModel || len(f.Config.Tools[0].FunctionDeclarations) != 2 {
		t.Errorf("facilitator = %+v", f)
	}
}

func TestExpertNotStarted(t *testing.T) {
	e := NewResearcher("")
	resp := e.Call(context.Background(), "1", map[string]any{"question": "land price in Johor?"})
	if got, _ := resp.Response["error"].(string); !strings.Contains(got, "not started") {
		t.Errorf("Call() on an expert not started = %v", resp.Response)
	}
}

func TestQuestion(t *testing.T) {
	tests := []struct {
		name   string
		queued []string
		input  string
		want   []string
	}{
		{
			name:   "queued then typed",
			queued: []string{" total gdv? ", ""},
			input:  "units sold?\n",
			want:   []string{"total gdv?", "units sold?"},
		},
		{
			name:  "blank lines skipped",
			input: "\n   \nmargin of Tower A?\n",
			want:  []string{"margin of Tower A?"},
		},
		{
			name:  "last line without newline",
			input: "status of Villas?",
			want:  []string{"status of Villas?"},
		},
		{
			name:  "farewell ends the session",
			input: "first\nQuit\nnever asked\n",
			want:  []string{"first"},
		},
		{
			name:   "queued farewell",
			queued: []string{"bye"},
			input:  "never asked\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out strings.Builder
			a := New(&out, strings.NewReader(tt.input), "")
			queued := slices.Clone(tt.queued)
			var got []string
			for {
				q, err := a.question(&queued)
				if errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					t.Fatalf("question() error = %v", err)
				}
				got = append(got, q)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("questions = %q, want %q", got, tt.want)
			}
			if len(tt.queued) > 0 && !strings.Contains(out.String(), prompt+strings.TrimSpace(tt.queued[0])+"\n") {
				t.Errorf("queued prompt not echoed:\n%s", out.String())
			}
		})
	}
}
