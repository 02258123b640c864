package renderer

import (
	"slices"

	"github.com/etnz/devtrack"
)

// Portfolio is the view of a whole collection: one row per project, then
// the portfolio metrics.
type Portfolio struct {
	// Currency of the amounts, empty when no project names one.
	Currency string `json:"currency,omitempty"`
	// Projects in name order.
	Projects []PortfolioProject `json:"projects"`
	// Undecodable lists the projects whose record cannot be read.
	Undecodable []string `json:"undecodable,omitempty"`

	Metrics devtrack.Metrics      `json:"metrics"`
	Sales   devtrack.SalesMetrics `json:"sales"`
	// Statuses is the status histogram, known statuses first.
	Statuses []StatusCount `json:"statuses"`
}

// PortfolioProject is one row of the project list.
type PortfolioProject struct {
	Name          string           `json:"name"`
	Status        string           `json:"status"`
	GDV           devtrack.Money   `json:"gdv"`
	GDC           devtrack.Money   `json:"gdc"`
	GPM           devtrack.Money   `json:"gpm"`
	GPMPercentage devtrack.Percent `json:"gpmPercentage"`
	Sold          devtrack.Percent `json:"sold"`
	Updated       string           `json:"updated"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// NewPortfolio builds the portfolio view of a collection.
func NewPortfolio(c *devtrack.Collection) *Portfolio {
	m := devtrack.Compute(c)
	p := &Portfolio{
		Currency: m.Currency,
		Projects: make([]PortfolioProject, 0, c.Len()),
		Metrics:  m,
		Sales:    devtrack.ComputeSales(c),
		Statuses: statusCounts(m.StatusCounts),
	}
	for name, r := range c.All() {
		row := PortfolioProject{
			Name:          name,
			Status:        string(r.Development.Status),
			GDV:           r.Development.GDV,
			GDC:           r.Development.GDC,
			GPM:           r.GPM(),
			GPMPercentage: r.GPMPercentage(),
			Sold:          r.Sales.Percentage(),
		}
		if !r.Timestamp.IsZero() {
			row.Updated = r.Timestamp.Local().Format("2006-01-02 15:04")
		}
		p.Projects = append(p.Projects, row)
	}
	for _, name := range c.Names() {
		if c.IsOpaque(name) {
			p.Undecodable = append(p.Undecodable, name)
		}
	}
	return p
}

// statusCounts orders the histogram: known statuses in their lifecycle
// order, then any other status alphabetically, Unknown last.
func statusCounts(counts map[string]int) []StatusCount {
	rank := func(s string) int {
		if s == devtrack.UnknownStatus {
			return len(devtrack.AllStatuses()) + 1
		}
		if i := slices.Index(devtrack.AllStatuses(), devtrack.Status(s)); i >= 0 {
			return i
		}
		return len(devtrack.AllStatuses())
	}
	result := make([]StatusCount, 0, len(counts))
	for status, n := range counts {
		result = append(result, StatusCount{Status: status, Count: n})
	}
	slices.SortFunc(result, func(a, b StatusCount) int {
		if ra, rb := rank(a.Status), rank(b.Status); ra != rb {
			return ra - rb
		}
		if a.Status < b.Status {
			return -1
		}
		if a.Status > b.Status {
			return 1
		}
		return 0
	})
	return result
}
