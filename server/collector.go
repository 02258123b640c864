package server

import (
	"context"

	"github.com/etnz/devtrack"
	"github.com/prometheus/client_golang/prometheus"
)

// mixedCurrency labels the totals of projects in different currencies.
const mixedCurrency = "mixed"

// Collector exports the portfolio metrics. They are computed from the store
// on every scrape.
type Collector struct {
	store *devtrack.Store

	gdv, gdc, gpm, gpmPercentage *prometheus.Desc
	projects                     *prometheus.Desc
	unitsTotal, unitsSold        *prometheus.Desc
}

// NewCollector returns a Collector on the store.
func NewCollector(store *devtrack.Store) *Collector {
	currency := []string{"currency"}
	return &Collector{
		store:         store,
		gdv:           prometheus.NewDesc("devtrack_portfolio_gdv", "Total Gross Development Value of the portfolio.", currency, nil),
		gdc:           prometheus.NewDesc("devtrack_portfolio_gdc", "Total Gross Development Cost of the portfolio.", currency, nil),
		gpm:           prometheus.NewDesc("devtrack_portfolio_gpm", "Total Gross Profit Margin of the portfolio.", currency, nil),
		gpmPercentage: prometheus.NewDesc("devtrack_portfolio_gpm_percentage", "Gross Profit Margin in percent of the GDV.", nil, nil),
		projects:      prometheus.NewDesc("devtrack_projects", "Number of projects by status.", []string{"status"}, nil),
		unitsTotal:    prometheus.NewDesc("devtrack_units_total", "Total units of all the projects.", nil, nil),
		unitsSold:     prometheus.NewDesc("devtrack_units_sold", "Units sold in all the projects.", nil, nil),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.gdv
	ch <- c.gdc
	ch <- c.gpm
	ch <- c.gpmPercentage
	ch <- c.projects
	ch <- c.unitsTotal
	ch <- c.unitsSold
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	projects := c.store.Load(context.Background())
	m := devtrack.Compute(projects)
	sales := devtrack.ComputeSales(projects)

	currency := m.Currency
	switch {
	case len(m.Currencies) > 1:
		currency = mixedCurrency
	case currency == "":
		currency = c.store.Currency()
	}
	ch <- prometheus.MustNewConstMetric(c.gdv, prometheus.GaugeValue, m.TotalGDV.Amount().InexactFloat64(), currency)
	ch <- prometheus.MustNewConstMetric(c.gdc, prometheus.GaugeValue, m.TotalGDC.Amount().InexactFloat64(), currency)
	ch <- prometheus.MustNewConstMetric(c.gpm, prometheus.GaugeValue, m.TotalGPM.Amount().InexactFloat64(), currency)
	ch <- prometheus.MustNewConstMetric(c.gpmPercentage, prometheus.GaugeValue, float64(m.GPMPercentage))
	for status, n := range m.StatusCounts {
		ch <- prometheus.MustNewConstMetric(c.projects, prometheus.GaugeValue, float64(n), status)
	}
	ch <- prometheus.MustNewConstMetric(c.unitsTotal, prometheus.GaugeValue, float64(sales.TotalUnits))
	ch <- prometheus.MustNewConstMetric(c.unitsSold, prometheus.GaugeValue, float64(sales.UnitsSold))
}
