package renderer

import (
	"maps"
	"slices"

	"github.com/etnz/devtrack"
)

// Project is the detailed view of one project record.
type Project struct {
	Name     string `json:"name"`
	Status   string `json:"status"`
	Currency string `json:"currency,omitempty"`
	Updated  string `json:"updated,omitempty"`
	Version  int64  `json:"version,omitempty"`

	Development   devtrack.DevelopmentData `json:"development"`
	GPM           devtrack.Money           `json:"gpm"`
	GPMPercentage devtrack.Percent         `json:"gpmPercentage"`
	LandSizeSqft  devtrack.Quantity        `json:"landSizeSqft"`

	// At most one of Design and Contract is set, depending on the status.
	Design             *devtrack.DesignProgress   `json:"design,omitempty"`
	Contract           *devtrack.ContractProgress `json:"contract,omitempty"`
	ExpectedCompletion devtrack.Date              `json:"expectedCompletion"`
	PaidPercentage     devtrack.Percent           `json:"paidPercentage"`

	Sales           devtrack.SalesProgress `json:"sales"`
	SalesPercentage devtrack.Percent       `json:"salesPercentage"`
	UnitsLeft       int                    `json:"unitsLeft"`

	Consultants []Consultant `json:"consultants"`
}

type Consultant struct {
	Role string `json:"role"`
	Name string `json:"name"`
}

// NewProject builds the view of a project's record.
func NewProject(name string, r *devtrack.Record) *Project {
	d := r.Development
	p := &Project{
		Name:            name,
		Status:          string(d.Status),
		Currency:        d.Currency(),
		Version:         r.Version,
		Development:     d,
		GPM:             r.GPM(),
		GPMPercentage:   r.GPMPercentage(),
		LandSizeSqft:    d.LandSizeSqft(),
		Sales:           r.Sales,
		SalesPercentage: r.Sales.Percentage(),
		UnitsLeft:       r.Sales.UnitsLeft(),
		Consultants:     consultants(d.Consultants),
	}
	if !r.Timestamp.IsZero() {
		p.Updated = r.Timestamp.Local().Format("2006-01-02 15:04")
	}
	switch progress := r.Progress.(type) {
	case *devtrack.DesignProgress:
		p.Design = progress
	case *devtrack.ContractProgress:
		p.Contract = progress
		p.ExpectedCompletion = progress.ExpectedCompletion()
		p.PaidPercentage = progress.PaidPercentage()
	}
	return p
}

// consultants lists the appointed consultants, usual roles first in their
// conventional order, then other roles alphabetically.
func consultants(byRole map[string]string) []Consultant {
	result := make([]Consultant, 0, len(byRole))
	for _, role := range devtrack.ConsultantRoles {
		if name := byRole[role]; name != "" {
			result = append(result, Consultant{Role: role, Name: name})
		}
	}
	for _, role := range slices.Sorted(maps.Keys(byRole)) {
		if slices.Contains(devtrack.ConsultantRoles, role) || byRole[role] == "" {
			continue
		}
		result = append(result, Consultant{Role: role, Name: byRole[role]})
	}
	return result
}
