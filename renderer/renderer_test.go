package renderer

import (
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/etnz/devtrack"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// document is the structure of a rendered markdown document.
type document struct {
	headings []string
	tables   [][][]string // table, row, cell; the header is the first row.
}

// parse reads markdown with the GitHub flavor, the one used to print it.
func parse(t *testing.T, md string) document {
	t.Helper()
	src := []byte(md)
	root := goldmark.New(goldmark.WithExtensions(extension.GFM)).Parser().Parse(text.NewReader(src))

	var doc document
	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.Heading:
			doc.headings = append(doc.headings, plain(n, src))
			return ast.WalkSkipChildren, nil
		case *east.Table:
			var table [][]string
			for row := n.FirstChild(); row != nil; row = row.NextSibling() {
				var cells []string
				for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
					cells = append(cells, strings.TrimSpace(plain(cell, src)))
				}
				table = append(table, cells)
			}
			doc.tables = append(doc.tables, table)
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return doc
}

// plain returns the text content of a node.
func plain(n ast.Node, src []byte) string {
	var b strings.Builder
	ast.Walk(n, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.Text:
			b.Write(n.Segment.Value(src))
		case *ast.String:
			b.Write(n.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

// row finds the row of a table whose first cell is key.
func (d document) row(key string) []string {
	for _, table := range d.tables {
		for _, row := range table {
			if len(row) > 0 && row[0] == key {
				return row
			}
		}
	}
	return nil
}

func testCollection() *devtrack.Collection {
	c := devtrack.NewCollection()
	c.Set("Beta", &devtrack.Record{
		Development: devtrack.DevelopmentData{
			GDV:    devtrack.M(500, "MYR"),
			GDC:    devtrack.M(400, "MYR"),
			Status: devtrack.Planning,
		},
	})
	c.Set("Alpha", &devtrack.Record{
		Development: devtrack.DevelopmentData{
			GDV:    devtrack.M(1000, "MYR"),
			GDC:    devtrack.M(500, "MYR"),
			Status: devtrack.Construction,
		},
		Sales:     devtrack.SalesProgress{TotalUnits: 10, UnitsSold: 5},
		Timestamp: time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC),
	})
	return c
}

func TestRenderPortfolio(t *testing.T) {
	md := RenderPortfolio(NewPortfolio(testCollection()))
	doc := parse(t, md)

	wantHeadings := []string{"Development Portfolio", "Projects", "Portfolio Metrics", "Projects by Status"}
	if !slices.Equal(doc.headings, wantHeadings) {
		t.Errorf("headings = %q, want %q\n%s", doc.headings, wantHeadings, md)
	}
	if len(doc.tables) != 3 {
		t.Fatalf("got %d tables, want 3\n%s", len(doc.tables), md)
	}
	projects := doc.tables[0]
	if len(projects) != 3 || projects[1][0] != "Alpha" || projects[2][0] != "Beta" {
		t.Errorf("projects table = %q", projects)
	}
	if got := projects[1][6]; got != "50.00%" {
		t.Errorf("Alpha sold = %q, want 50.00%%", got)
	}

	tests := map[string]string{
		"Total GDV": "RM1,500.00",
		"Total GDC": "RM900.00",
		"Total GPM": "RM600.00",
		"GPM %":     "40.00%",
	}
	for key, want := range tests {
		row := doc.row(key)
		if len(row) != 2 || row[1] != want {
			t.Errorf("%s row = %q, want value %q", key, row, want)
		}
	}
	statuses := doc.tables[2]
	if len(statuses) != 3 || statuses[1][0] != "Construction" || statuses[2][0] != "Planning" {
		t.Errorf("status table = %q", statuses)
	}
}

func TestRenderPortfolioEmpty(t *testing.T) {
	md := RenderPortfolio(NewPortfolio(devtrack.NewCollection()))
	if !strings.Contains(md, "No projects yet") {
		t.Errorf("empty portfolio has no hint:\n%s", md)
	}
	doc := parse(t, md)
	if row := doc.row("Total GDV"); len(row) != 2 || row[1] != "0.00" {
		t.Errorf("Total GDV row = %q, want 0.00", row)
	}
	if len(doc.tables) != 1 {
		t.Errorf("got %d tables, want only the metrics table\n%s", len(doc.tables), md)
	}
}

func TestRenderMetrics(t *testing.T) {
	doc := parse(t, RenderMetrics(NewPortfolio(testCollection())))
	if doc.headings[0] != "Portfolio Metrics" {
		t.Errorf("headings = %q", doc.headings)
	}
	if row := doc.row("Units Sold"); len(row) != 2 || row[1] != "5 / 10 (50.00%)" {
		t.Errorf("Units Sold row = %q", row)
	}
}

func TestRenderProject(t *testing.T) {
	r := &devtrack.Record{
		Development: devtrack.DevelopmentData{
			GDV:      devtrack.M(1000000, "MYR"),
			GDC:      devtrack.M(750000, "MYR"),
			Status:   devtrack.Construction,
			LandSize: devtrack.Q(2),
			Consultants: map[string]string{
				"Quantity Surveyor": "QS & Co",
				"Architect":         "Studio A",
				"Acoustics":         "Quiet Ltd",
				"Master Planner":    "",
			},
		},
		Progress: &devtrack.ContractProgress{
			Contractor:     "BuildCo",
			PeriodMonths:   12,
			SitePossession: devtrack.NewDate(2025, time.January, 10),
			ContractAmount: devtrack.M(600000, "MYR"),
			PaidAmount:     devtrack.M(150000, "MYR"),
		},
		Sales: devtrack.SalesProgress{TotalUnits: 40, UnitsSold: 10},
	}
	md := RenderProject(NewProject("Tower A", r))
	doc := parse(t, md)

	wantHeadings := []string{"Tower A", "Development", "Construction Progress", "Sales", "Consultants"}
	if !slices.Equal(doc.headings, wantHeadings) {
		t.Errorf("headings = %q, want %q\n%s", doc.headings, wantHeadings, md)
	}
	tests := map[string]string{
		"GPM":        "RM250,000.00 (25.00%)",
		"Land Size":  "2.00 acres (87,120.00 sqft)",
		"Completion": "2026-01-10",
		"Paid":       "RM150,000.00 (25.00%)",
		"Units Left": "30",
		"Developer":  "-",
	}
	for key, want := range tests {
		if row := doc.row(key); len(row) != 2 || row[1] != want {
			t.Errorf("%s row = %q, want value %q", key, row, want)
		}
	}

	consultants := doc.tables[len(doc.tables)-1]
	var roles []string
	for _, row := range consultants[1:] {
		roles = append(roles, row[0])
	}
	if want := []string{"Architect", "Quantity Surveyor", "Acoustics"}; !slices.Equal(roles, want) {
		t.Errorf("consultant roles = %q, want %q", roles, want)
	}
}

func TestRenderProjectWithoutProgress(t *testing.T) {
	r := &devtrack.Record{Development: devtrack.DevelopmentData{Status: devtrack.Completed}}
	doc := parse(t, RenderProject(NewProject("Done", r)))
	want := []string{"Done", "Development", "Sales"}
	if !slices.Equal(doc.headings, want) {
		t.Errorf("headings = %q, want %q", doc.headings, want)
	}
}

func TestStatusCountsOrder(t *testing.T) {
	got := statusCounts(map[string]int{
		devtrack.UnknownStatus: 1,
		"Planning":             2,
		"Pre-Development":      1,
		"Legacy":               4,
	})
	var order []string
	for _, sc := range got {
		order = append(order, sc.Status)
	}
	want := []string{"Pre-Development", "Planning", "Legacy", devtrack.UnknownStatus}
	if !slices.Equal(order, want) {
		t.Errorf("statusCounts() order = %q, want %q", order, want)
	}
}
