package devtrack

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// SqftPerAcre converts land sizes from acres to square feet.
var SqftPerAcre = Q(43560)

// ConsultantRoles lists the consultant appointments usually tracked for a
// development, in display order.
var ConsultantRoles = []string{
	"Project Management Consultant",
	"Master Planner",
	"Architect",
	"Civil & Structural Engineer",
	"Mechanical & Electrical Engineer",
	"Quantity Surveyor",
	"Land Surveyor",
	"Landscape Architect",
	"Geotechnical Engineer",
	"Retail/Market Consultant",
	"Interior Design",
}

// Record is the persisted state of one development project.
//
// The project name is not part of the record: it is the key of the record in
// its Collection.
type Record struct {
	Development DevelopmentData
	// Progress depends on Development.Status: *DesignProgress for
	// Pre-Development, *ContractProgress for Construction, nil otherwise.
	Progress Progress
	Sales    SalesProgress
	// Timestamp and Version are stamped by the Store on every save.
	Timestamp time.Time
	Version   int64
}

// DevelopmentData holds the financial and descriptive figures of a project.
type DevelopmentData struct {
	GDV            Money  // Gross Development Value.
	GDC            Money  // Gross Development Cost.
	Status         Status // May be empty on records written by older tools.
	LandOwner      string
	Developer      string
	Location       string
	LandSize       Quantity // in acres.
	PlotRatio      Quantity
	LandTitle      string
	DevType        string
	DevRequirement string
	GFA            Quantity // Gross Floor Area in sqft.
	NFA            Quantity // Nett Floor Area in sqft.
	Parking        int
	Consultants    map[string]string // role -> consultant name.
}

// Currency returns the currency of the project's amounts.
func (d DevelopmentData) Currency() string {
	if d.GDV.Currency() != "" {
		return d.GDV.Currency()
	}
	return d.GDC.Currency()
}

// GPM returns the Gross Profit Margin: GDV - GDC.
func (d DevelopmentData) GPM() Money { return d.GDV.Sub(d.GDC) }

// GPMPercentage returns GPM/GDV in percent, 0 when GDV is zero.
func (d DevelopmentData) GPMPercentage() Percent { return d.GPM().Ratio(d.GDV) }

// LandSizeSqft returns the land size in square feet.
func (d DevelopmentData) LandSizeSqft() Quantity { return d.LandSize.Mul(SqftPerAcre) }

// Validate checks the figures that must not be negative and the status.
func (d DevelopmentData) Validate() error {
	var errs error
	for _, m := range []struct {
		name  string
		value Money
	}{{"gdv", d.GDV}, {"gdc", d.GDC}} {
		if m.value.IsNegative() {
			errs = errors.Join(errs, fmt.Errorf("%s must not be negative, got %s", m.name, m.value.Amount()))
		}
	}
	for _, q := range []struct {
		name  string
		value Quantity
	}{{"land_size", d.LandSize}, {"plot_ratio", d.PlotRatio}, {"gfa", d.GFA}, {"nfa", d.NFA}} {
		if q.value.IsNegative() {
			errs = errors.Join(errs, fmt.Errorf("%s must not be negative, got %s", q.name, q.value))
		}
	}
	if d.Parking < 0 {
		errs = errors.Join(errs, fmt.Errorf("parking must not be negative, got %d", d.Parking))
	}
	if d.Status != "" && !d.Status.IsValid() {
		errs = errors.Join(errs, fmt.Errorf("unknown status %q", d.Status))
	}
	if d.GDV.Currency() != "" && d.GDC.Currency() != "" && d.GDV.Currency() != d.GDC.Currency() {
		errs = errors.Join(errs, fmt.Errorf("gdv currency %s does not match gdc currency %s", d.GDV.Currency(), d.GDC.Currency()))
	}
	return errs
}

// MarshalJSON writes the development data with a stable field order.
func (d DevelopmentData) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Optional("currency", d.Currency())
	w.Append("gdv", d.GDV)
	w.Append("gdc", d.GDC)
	w.Optional("status", string(d.Status))
	w.Optional("land_owner", d.LandOwner)
	w.Optional("developer", d.Developer)
	w.Optional("location", d.Location)
	w.Append("land_size", d.LandSize)
	w.Append("plot_ratio", d.PlotRatio)
	w.Optional("land_title", d.LandTitle)
	w.Optional("dev_type", d.DevType)
	w.Optional("dev_requirement", d.DevRequirement)
	w.Append("gfa", d.GFA)
	w.Append("nfa", d.NFA)
	w.Append("parking", d.Parking)
	w.Optional("consultants", d.Consultants)
	return w.MarshalJSON()
}

// UnmarshalJSON reads development data, tolerating absent fields and numbers
// written as floats.
func (d *DevelopmentData) UnmarshalJSON(data []byte) error {
	// jdevelopment is the object read from the file using json parser.
	type jdevelopment struct {
		Currency       string            `json:"currency"`
		GDV            decimal.Decimal   `json:"gdv"`
		GDC            decimal.Decimal   `json:"gdc"`
		Status         string            `json:"status"`
		LandOwner      string            `json:"land_owner"`
		Developer      string            `json:"developer"`
		Location       string            `json:"location"`
		LandSize       Quantity          `json:"land_size"`
		PlotRatio      Quantity          `json:"plot_ratio"`
		LandTitle      string            `json:"land_title"`
		DevType        string            `json:"dev_type"`
		DevRequirement string            `json:"dev_requirement"`
		GFA            Quantity          `json:"gfa"`
		NFA            Quantity          `json:"nfa"`
		Parking        decimal.Decimal   `json:"parking"`
		Consultants    map[string]string `json:"consultants"`
	}
	var j jdevelopment
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	*d = DevelopmentData{
		GDV:            M(j.GDV, j.Currency),
		GDC:            M(j.GDC, j.Currency),
		Status:         Status(j.Status),
		LandOwner:      j.LandOwner,
		Developer:      j.Developer,
		Location:       j.Location,
		LandSize:       j.LandSize,
		PlotRatio:      j.PlotRatio,
		LandTitle:      j.LandTitle,
		DevType:        j.DevType,
		DevRequirement: j.DevRequirement,
		GFA:            j.GFA,
		NFA:            j.NFA,
		Parking:        int(j.Parking.IntPart()),
		Consultants:    j.Consultants,
	}
	return nil
}

// GPM returns the project's Gross Profit Margin.
func (r *Record) GPM() Money { return r.Development.GPM() }

// GPMPercentage returns the project's margin in percent of its GDV.
func (r *Record) GPMPercentage() Percent { return r.Development.GPMPercentage() }

// Validate returns an error wrapping ErrValidation with all the failures found
// in the record.
func (r *Record) Validate() error {
	errs := r.Development.Validate()
	if r.Progress != nil {
		if r.Progress.Status() != r.Development.Status {
			errs = errors.Join(errs, fmt.Errorf("%s progress cannot be recorded for status %q", r.Progress.Status(), r.Development.Status))
		}
		errs = errors.Join(errs, r.Progress.Validate())
	}
	errs = errors.Join(errs, r.Sales.Validate())
	if errs != nil {
		return fmt.Errorf("%w: %w", ErrValidation, errs)
	}
	return nil
}

// withCurrency returns a copy of r with every amount without a currency set
// to the given one.
func (r Record) withCurrency(currency string) Record {
	set := func(m Money) Money {
		if m.Currency() == "" {
			return m.InCurrency(currency)
		}
		return m
	}
	r.Development.GDV = set(r.Development.GDV)
	r.Development.GDC = set(r.Development.GDC)
	if c, ok := r.Progress.(*ContractProgress); ok {
		cp := *c
		cp.ContractAmount = set(cp.ContractAmount)
		cp.PaidAmount = set(cp.PaidAmount)
		r.Progress = &cp
	}
	return r
}

// foreignCurrency returns the first currency of r's amounts that is not the
// given one, or "" when all of them are in that currency.
func (r Record) foreignCurrency(currency string) string {
	amounts := []Money{r.Development.GDV, r.Development.GDC}
	if c, ok := r.Progress.(*ContractProgress); ok {
		amounts = append(amounts, c.ContractAmount, c.PaidAmount)
	}
	for _, m := range amounts {
		if m.Currency() != currency {
			return m.Currency()
		}
	}
	return ""
}

// timestampFormats are tried in order to read a record timestamp. Older
// records carry a local ISO timestamp without zone.
var timestampFormats = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

func parseTimestamp(s string) (time.Time, error) {
	var err error
	for _, layout := range timestampFormats {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
}

// MarshalJSON writes the canonical record shape: the three groups, then the
// timestamp and the version.
func (r Record) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("development_data", r.Development)
	if r.Progress != nil {
		w.Append("development_progress", r.Progress)
	}
	w.Append("sales_progress", r.Sales)
	if !r.Timestamp.IsZero() {
		w.Append("timestamp", r.Timestamp.UTC().Format(time.RFC3339Nano))
	}
	w.Optional("version", r.Version)
	return w.MarshalJSON()
}

// UnmarshalJSON reads a record. Every group is optional.
func (r *Record) UnmarshalJSON(data []byte) error {
	type jrecord struct {
		Development DevelopmentData `json:"development_data"`
		Progress    json.RawMessage `json:"development_progress"`
		Sales       SalesProgress   `json:"sales_progress"`
		Timestamp   *string         `json:"timestamp"`
		Version     int64           `json:"version"`
	}
	var j jrecord
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	progress, err := decodeProgress(j.Progress, j.Development.Status, j.Development.Currency())
	if err != nil {
		return fmt.Errorf("development_progress: %w", err)
	}
	var ts time.Time
	if j.Timestamp != nil && *j.Timestamp != "" {
		if ts, err = parseTimestamp(*j.Timestamp); err != nil {
			return err
		}
	}
	*r = Record{
		Development: j.Development,
		Progress:    progress,
		Sales:       j.Sales,
		Timestamp:   ts,
		Version:     j.Version,
	}
	return nil
}
