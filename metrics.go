package devtrack

import (
	"log"
	"maps"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// Metrics are the portfolio-wide figures across all projects of a collection.
//
// Amounts are in the currency of the projects. Currency is empty when the
// projects do not share a single currency, Currencies then lists them. Neither
// is part of the JSON form.
type Metrics struct {
	TotalGDV      Money          `json:"total_gdv"`
	TotalGDC      Money          `json:"total_gdc"`
	TotalGPM      Money          `json:"total_gpm"`
	GPMPercentage Percent        `json:"gpm_percentage"`
	StatusCounts  map[string]int `json:"status_counts"`
	Currency      string         `json:"-"`
	Currencies    []string       `json:"-"`
}

// Compute derives the portfolio metrics from the collection.
//
// Missing figures count as zero and projects without a status are counted
// under UnknownStatus. Records that cannot be decoded contribute the figures
// that can still be read from them. The result does not depend on the
// iteration order and the empty collection gives zero totals and an empty
// histogram.
func Compute(c *Collection) Metrics {
	m := Metrics{StatusCounts: make(map[string]int)}
	var gdv, gdc decimal.Decimal
	currencies := make(map[string]bool)
	for _, r := range c.Figures() {
		d := r.Development
		gdv = gdv.Add(d.GDV.Amount())
		gdc = gdc.Add(d.GDC.Amount())
		if cur := d.Currency(); cur != "" {
			currencies[cur] = true
		}
		status := string(d.Status)
		if status == "" {
			status = UnknownStatus
		}
		m.StatusCounts[status]++
	}
	m.Currencies = slices.Sorted(maps.Keys(currencies))
	switch len(m.Currencies) {
	case 0:
	case 1:
		m.Currency = m.Currencies[0]
	default:
		log.Printf("warning, the projects are in %s: the totals add up different currencies", strings.Join(m.Currencies, ", "))
	}
	m.TotalGDV = M(gdv, m.Currency)
	m.TotalGDC = M(gdc, m.Currency)
	m.TotalGPM = m.TotalGDV.Sub(m.TotalGDC)
	if m.TotalGDV.IsPositive() {
		m.GPMPercentage = m.TotalGPM.Ratio(m.TotalGDV)
	}
	return m
}

// SalesMetrics are the portfolio-wide sales figures.
type SalesMetrics struct {
	TotalUnits      int     `json:"total_units"`
	UnitsSold       int     `json:"units_sold"`
	SalesPercentage Percent `json:"sales_percentage"`
}

// ComputeSales sums the units of all the projects of the collection.
func ComputeSales(c *Collection) SalesMetrics {
	var total SalesProgress
	for _, r := range c.Figures() {
		total.TotalUnits += r.Sales.TotalUnits
		total.UnitsSold += r.Sales.UnitsSold
	}
	return SalesMetrics{
		TotalUnits:      total.TotalUnits,
		UnitsSold:       total.UnitsSold,
		SalesPercentage: total.Percentage(),
	}
}
