package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"maps"
	"os"
	"strconv"
	"strings"

	"github.com/etnz/devtrack"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

// saveCmd holds the flags for the 'save' subcommand.
type saveCmd struct {
	name    string
	update  bool
	version int64

	// values of the record flags, only the ones set on the command line are
	// applied.
	values      map[string]*string
	consultants map[string]string
}

func (*saveCmd) Name() string     { return "save" }
func (*saveCmd) Synopsis() string { return "create or replace a project record" }
func (*saveCmd) Usage() string {
	return `dvt save -n <name> [-update] [-version <v>] [record flags...]

  Saves the record of a project built from the flags. The whole record is
  replaced, unless -update is set: then only the flags given change the
  current record.

  Progress flags must match the status: -design and -submission are for
  "Pre-Development" projects, the contract flags for "Construction" ones.

  Example:
    dvt save -n "Tower A" -status Construction -gdv 1250000 -gdc 900000 \
      -contractor "Build Co" -contract-period 24 -site-possession 2025-01-15 \
      -total-units 120 -units-sold 45 -consultant "Architect=Studio A"

`
}

// recordFlags are the string flags applied to the record, with their usage.
var recordFlags = []struct{ name, usage string }{
	{"status", "Project status: Pre-Development, Construction, Post-Contract, Planning, In Progress or Completed"},
	{"gdv", "Gross Development Value"},
	{"gdc", "Gross Development Cost"},
	{"land-owner", "Land owner"},
	{"developer", "Developer"},
	{"location", "Location"},
	{"land-size", "Land size in acres"},
	{"plot-ratio", "Plot ratio"},
	{"land-title", "Land title"},
	{"dev-type", "Development type"},
	{"dev-requirement", "Development requirement"},
	{"gfa", "Gross Floor Area in sqft"},
	{"nfa", "Nett Floor Area in sqft"},
	{"parking", "Number of parking bays"},
	{"design", "Design progress in percent (Pre-Development)"},
	{"submission", "Submission status: Not Submitted, Submitted, Approved or Rejected (Pre-Development)"},
	{"contractor", "Contractor name (Construction)"},
	{"contract-period", "Contract period in months (Construction)"},
	{"site-possession", "Site possession date (Construction)"},
	{"completion", "Completion date (Construction)"},
	{"contract-amount", "Contract amount (Construction)"},
	{"paid-amount", "Amount paid to date (Construction)"},
	{"total-units", "Total number of units"},
	{"units-sold", "Number of units sold"},
	{"spa-date", "Date of the first Sales & Purchase Agreement"},
	{"handover-date", "Handover date"},
}

func (c *saveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "n", "", "Project name (required)")
	f.BoolVar(&c.update, "update", false, "Update the current record instead of replacing it")
	f.Int64Var(&c.version, "version", -1, "Only save if the stored project is at this version (0 for a new project)")
	c.values = make(map[string]*string)
	for _, rf := range recordFlags {
		c.values[rf.name] = f.String(rf.name, "", rf.usage)
	}
	c.consultants = make(map[string]string)
	f.Func("consultant", "Consultant appointment as Role=Name, repeatable. An empty name removes the role", func(s string) error {
		role, name, ok := strings.Cut(s, "=")
		if !ok || strings.TrimSpace(role) == "" {
			return fmt.Errorf("invalid consultant %q, want Role=Name", s)
		}
		c.consultants[strings.TrimSpace(role)] = strings.TrimSpace(name)
		return nil
	})
}

func (c *saveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if strings.TrimSpace(c.name) == "" {
		fmt.Fprintln(os.Stderr, "Error: a project name is required (-n)")
		return subcommands.ExitUsageError
	}
	if f.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "Error: unexpected arguments %q\n", f.Args())
		return subcommands.ExitUsageError
	}

	store, err := OpenStore(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening the store: %v\n", err)
		return subcommands.ExitFailure
	}

	r := &devtrack.Record{}
	if c.update {
		current, err := store.Get(ctx, c.name)
		switch {
		case errors.Is(err, devtrack.ErrNotFound):
			// nothing to update, save a new project.
		case err != nil:
			fmt.Fprintf(os.Stderr, "Error reading project %q: %v\n", c.name, err)
			return subcommands.ExitFailure
		default:
			r = current
		}
	}

	set := make(map[string]bool)
	f.Visit(func(fl *flag.Flag) { set[fl.Name] = true })

	if err := c.apply(r, set, store.Currency()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	var saved *devtrack.Record
	if c.version >= 0 {
		saved, err = store.UpsertVersion(ctx, c.name, r, c.version)
	} else {
		saved, err = store.Upsert(ctx, c.name, r)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error saving project %q: %v\n", c.name, err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "Saved project %q (version %d)\n", c.name, saved.Version)
	return subcommands.ExitSuccess
}

// apply sets the flags given on the command line to the record.
func (c *saveCmd) apply(r *devtrack.Record, set map[string]bool, currency string) error {
	d := &r.Development
	if set["status"] {
		st, err := devtrack.ParseStatus(*c.values["status"])
		if err != nil {
			return err
		}
		d.Status = st
	}
	// Amounts are read in the currency of the current record, the store
	// default for a new one.
	if cur := d.Currency(); cur != "" {
		currency = cur
	}

	var errs error
	progressSet := false
	for _, rf := range recordFlags {
		if !set[rf.name] || rf.name == "status" {
			continue
		}
		v := strings.TrimSpace(*c.values[rf.name])
		var err error
		switch rf.name {
		case "gdv":
			d.GDV, err = parseMoney(v, currency)
		case "gdc":
			d.GDC, err = parseMoney(v, currency)
		case "land-owner":
			d.LandOwner = v
		case "developer":
			d.Developer = v
		case "location":
			d.Location = v
		case "land-size":
			d.LandSize, err = parseQuantity(v)
		case "plot-ratio":
			d.PlotRatio, err = parseQuantity(v)
		case "land-title":
			d.LandTitle = v
		case "dev-type":
			d.DevType = v
		case "dev-requirement":
			d.DevRequirement = v
		case "gfa":
			d.GFA, err = parseQuantity(v)
		case "nfa":
			d.NFA, err = parseQuantity(v)
		case "parking":
			d.Parking, err = parseInt(v)
		case "design":
			var p float64
			if p, err = strconv.ParseFloat(v, 64); err == nil {
				designProgress(r).Design = devtrack.Percent(p)
			}
			progressSet = true
		case "submission":
			var s devtrack.SubmissionStatus
			if s, err = devtrack.ParseSubmissionStatus(v); err == nil {
				designProgress(r).Submission = s
			}
			progressSet = true
		case "contractor":
			contractProgress(r).Contractor = v
			progressSet = true
		case "contract-period":
			contractProgress(r).PeriodMonths, err = parseInt(v)
			progressSet = true
		case "site-possession":
			contractProgress(r).SitePossession, err = devtrack.ParseDate(v)
			progressSet = true
		case "completion":
			contractProgress(r).Completion, err = devtrack.ParseDate(v)
			progressSet = true
		case "contract-amount":
			contractProgress(r).ContractAmount, err = parseMoney(v, currency)
			progressSet = true
		case "paid-amount":
			contractProgress(r).PaidAmount, err = parseMoney(v, currency)
			progressSet = true
		case "total-units":
			r.Sales.TotalUnits, err = parseInt(v)
		case "units-sold":
			r.Sales.UnitsSold, err = parseInt(v)
		case "spa-date":
			r.Sales.SPADate, err = devtrack.ParseDate(v)
		case "handover-date":
			r.Sales.HandoverDate, err = devtrack.ParseDate(v)
		}
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("-%s: %w", rf.name, err))
		}
	}

	if set["consultant"] {
		consultants := maps.Clone(d.Consultants)
		if consultants == nil {
			consultants = make(map[string]string)
		}
		for role, name := range c.consultants {
			if name == "" {
				delete(consultants, role)
				continue
			}
			consultants[role] = name
		}
		d.Consultants = consultants
	}

	// The progress of a former status is dropped when the status changes.
	if !progressSet && r.Progress != nil && r.Progress.Status() != d.Status {
		r.Progress = nil
	}
	return errs
}

func designProgress(r *devtrack.Record) *devtrack.DesignProgress {
	if p, ok := r.Progress.(*devtrack.DesignProgress); ok {
		return p
	}
	p := &devtrack.DesignProgress{}
	r.Progress = p
	return p
}

func contractProgress(r *devtrack.Record) *devtrack.ContractProgress {
	if p, ok := r.Progress.(*devtrack.ContractProgress); ok {
		return p
	}
	p := &devtrack.ContractProgress{}
	r.Progress = p
	return p
}

func parseMoney(s, currency string) (devtrack.Money, error) {
	d, err := parseDecimal(s)
	if err != nil {
		return devtrack.Money{}, err
	}
	return devtrack.M(d, currency), nil
}

func parseQuantity(s string) (devtrack.Quantity, error) {
	d, err := parseDecimal(s)
	if err != nil {
		return devtrack.Quantity{}, err
	}
	return devtrack.Q(d), nil
}

func parseInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

// parseDecimal reads a number, "1,250,000" is accepted.
func parseDecimal(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
