package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/devtrack"
	"github.com/etnz/devtrack/renderer"
	"github.com/google/subcommands"
)

// printJSON writes v indented to the output.
func printJSON(v any) subcommands.ExitStatus {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintln(stdout, string(data))
	return subcommands.ExitSuccess
}

type listCmd struct {
	json bool
}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "list the projects and the portfolio metrics" }
func (*listCmd) Usage() string {
	return `dvt list [-json]

  Lists all the projects with their status, GDV, GDC, margin and sales,
  followed by the portfolio metrics. With -json, prints the whole document.
`
}

func (c *listCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.json, "json", false, "print the projects document as JSON")
}

func (c *listCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	store, err := OpenStore(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening the store: %v\n", err)
		return subcommands.ExitFailure
	}
	projects := store.Load(ctx)
	if c.json {
		return printJSON(projects)
	}
	printMarkdown(renderer.RenderPortfolio(renderer.NewPortfolio(projects)))
	return subcommands.ExitSuccess
}

type showCmd struct {
	json bool
}

func (*showCmd) Name() string     { return "show" }
func (*showCmd) Synopsis() string { return "display one project" }
func (*showCmd) Usage() string {
	return `dvt show [-json] <name>

  Displays the development data, progress, sales and consultants of a project.
`
}

func (c *showCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.json, "json", false, "print the record as JSON")
}

func (c *showCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: show takes exactly one project name")
		return subcommands.ExitUsageError
	}
	name := f.Arg(0)
	r, status := getRecord(ctx, name)
	if r == nil {
		return status
	}
	if c.json {
		return printJSON(r)
	}
	printMarkdown(renderer.RenderProject(renderer.NewProject(name, r)))
	return subcommands.ExitSuccess
}

// getRecord opens the store and reads a project. It returns a nil record and
// the exit status on failure.
func getRecord(ctx context.Context, name string) (*devtrack.Record, subcommands.ExitStatus) {
	store, err := OpenStore(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening the store: %v\n", err)
		return nil, subcommands.ExitFailure
	}
	r, err := store.Get(ctx, name)
	if errors.Is(err, devtrack.ErrNotFound) {
		fmt.Fprintf(os.Stderr, "Error: project %q not found, see `dvt list`\n", name)
		return nil, subcommands.ExitFailure
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading project %q: %v\n", name, err)
		return nil, subcommands.ExitFailure
	}
	return r, subcommands.ExitSuccess
}

type getCmd struct{}

func (*getCmd) Name() string     { return "get" }
func (*getCmd) Synopsis() string { return "query a project record with JSONPath" }
func (*getCmd) Usage() string {
	return `dvt get <name> [<jsonpath>]

  Prints the record of a project as JSON, or the value at the JSONPath.

  Example:
    dvt get "Tower A" '$.sales_progress.units_sold'
`
}

func (*getCmd) SetFlags(f *flag.FlagSet) {}

func (*getCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() < 1 || f.NArg() > 2 {
		fmt.Fprintln(os.Stderr, "Error: get takes a project name and an optional JSONPath")
		return subcommands.ExitUsageError
	}
	r, status := getRecord(ctx, f.Arg(0))
	if r == nil {
		return status
	}
	v, err := devtrack.Query(r, f.Arg(1))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return printJSON(v)
}

type metricsCmd struct {
	json bool
}

func (*metricsCmd) Name() string     { return "metrics" }
func (*metricsCmd) Synopsis() string { return "display the portfolio metrics" }
func (*metricsCmd) Usage() string {
	return `dvt metrics [-json]

  Displays the total GDV, GDC and GPM of the portfolio, its margin, the number
  of projects by status and the units sold.
`
}

func (c *metricsCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.json, "json", false, "print the metrics as JSON")
}

func (c *metricsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	store, err := OpenStore(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening the store: %v\n", err)
		return subcommands.ExitFailure
	}
	projects := store.Load(ctx)
	if c.json {
		return printJSON(struct {
			devtrack.Metrics
			Sales devtrack.SalesMetrics `json:"sales"`
		}{devtrack.Compute(projects), devtrack.ComputeSales(projects)})
	}
	printMarkdown(renderer.RenderMetrics(renderer.NewPortfolio(projects)))
	return subcommands.ExitSuccess
}

type deleteCmd struct{}

func (*deleteCmd) Name() string     { return "delete" }
func (*deleteCmd) Synopsis() string { return "delete a project" }
func (*deleteCmd) Usage() string {
	return `dvt delete <name>

  Removes a project from the document.
`
}

func (*deleteCmd) SetFlags(f *flag.FlagSet) {}

func (*deleteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: delete takes exactly one project name")
		return subcommands.ExitUsageError
	}
	store, err := OpenStore(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening the store: %v\n", err)
		return subcommands.ExitFailure
	}
	existed, err := store.Delete(ctx, f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error deleting project %q: %v\n", f.Arg(0), err)
		return subcommands.ExitFailure
	}
	if !existed {
		fmt.Fprintf(os.Stderr, "Error: project %q not found\n", f.Arg(0))
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "Deleted project %q\n", f.Arg(0))
	return subcommands.ExitSuccess
}
