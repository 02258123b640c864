package devtrack

import (
	"maps"
	"time"
)

// MYR is a helper for test to create ringgit money from const
func MYR(v float64) Money { return M(v, "MYR") }

// NO is a helper for test to create money from const with no currency set
func NO(v float64) Money { return M(v, "") }

// fixedNow returns a clock always returning the same instant.
func fixedNow(t time.Time) func() time.Time { return func() time.Time { return t } }

// projectWith returns a minimal valid record.
func projectWith(status Status, gdv, gdc float64) *Record {
	return &Record{
		Development: DevelopmentData{
			GDV:    MYR(gdv),
			GDC:    MYR(gdc),
			Status: status,
		},
	}
}

// collectionOf builds a collection from name/record pairs.
func collectionOf(records map[string]*Record) *Collection {
	c := NewCollection()
	for name, r := range records {
		c.Set(name, r)
	}
	return c
}

// recordDiff returns the names of the fields that differ between two records.
// Amounts and quantities are compared exactly.
func recordDiff(a, b *Record) []string {
	var diff []string
	check := func(field string, equal bool) {
		if !equal {
			diff = append(diff, field)
		}
	}
	x, y := a.Development, b.Development
	check("gdv", x.GDV.Equal(y.GDV))
	check("gdc", x.GDC.Equal(y.GDC))
	check("status", x.Status == y.Status)
	check("land_owner", x.LandOwner == y.LandOwner)
	check("developer", x.Developer == y.Developer)
	check("location", x.Location == y.Location)
	check("land_size", x.LandSize.Equal(y.LandSize))
	check("plot_ratio", x.PlotRatio.Equal(y.PlotRatio))
	check("land_title", x.LandTitle == y.LandTitle)
	check("dev_type", x.DevType == y.DevType)
	check("dev_requirement", x.DevRequirement == y.DevRequirement)
	check("gfa", x.GFA.Equal(y.GFA))
	check("nfa", x.NFA.Equal(y.NFA))
	check("parking", x.Parking == y.Parking)
	check("consultants", maps.Equal(x.Consultants, y.Consultants))

	switch p := a.Progress.(type) {
	case nil:
		check("progress", b.Progress == nil)
	case *DesignProgress:
		q, ok := b.Progress.(*DesignProgress)
		check("progress", ok && *p == *q)
	case *ContractProgress:
		q, ok := b.Progress.(*ContractProgress)
		check("progress", ok &&
			p.Contractor == q.Contractor &&
			p.PeriodMonths == q.PeriodMonths &&
			p.SitePossession == q.SitePossession &&
			p.Completion == q.Completion &&
			p.ContractAmount.Equal(q.ContractAmount) &&
			p.PaidAmount.Equal(q.PaidAmount))
	}

	check("sales_progress", a.Sales == b.Sales)
	check("timestamp", a.Timestamp.Equal(b.Timestamp))
	check("version", a.Version == b.Version)
	return diff
}
