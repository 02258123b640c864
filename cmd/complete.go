package cmd

import (
	"context"
	"flag"
	"strings"

	"github.com/etnz/devtrack"
	"github.com/etnz/devtrack/docs"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// Complete answers the shell completion requests for the commands of c, and
// exits when the shell asked for completions. It also handles
// COMP_INSTALL=1 and COMP_UNINSTALL=1 to install the completion in the user's
// shell.
func Complete(c *subcommands.Commander, name string) {
	completion(c).Complete(name)
}

// completion builds the completion tree of the commands of c from their flags.
func completion(c *subcommands.Commander) *complete.Command {
	root := &complete.Command{
		Sub: make(map[string]*complete.Command),
		Flags: map[string]complete.Predictor{
			"config":    predict.Files("*.yaml"),
			"data-file": predict.Files("*.json"),
			"currency":  predict.Set{"MYR", "SGD", "USD", "EUR"},
			"v":         predict.Nothing,
		},
	}
	c.VisitCommands(func(_ *subcommands.CommandGroup, cmd subcommands.Command) {
		f := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
		cmd.SetFlags(f)
		sub := &complete.Command{Flags: make(map[string]complete.Predictor)}
		f.VisitAll(func(fl *flag.Flag) {
			sub.Flags[fl.Name] = predictFlag(fl)
		})
		switch cmd.Name() {
		case "show", "get", "delete":
			sub.Args = complete.PredictFunc(predictProjects)
		case "topic", "help":
			sub.Args = complete.PredictFunc(predictTopics)
		}
		root.Sub[cmd.Name()] = sub
	})
	return root
}

func predictFlag(fl *flag.Flag) complete.Predictor {
	if b, ok := fl.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
		return predict.Nothing
	}
	switch fl.Name {
	case "n":
		return complete.PredictFunc(predictProjects)
	case "status":
		var statuses predict.Set
		for _, st := range devtrack.AllStatuses() {
			statuses = append(statuses, string(st))
		}
		return statuses
	case "submission":
		return predict.Set{
			string(devtrack.NotSubmitted),
			string(devtrack.Submitted),
			string(devtrack.Approved),
			string(devtrack.Rejected),
		}
	case "consultant":
		var roles predict.Set
		for _, role := range devtrack.ConsultantRoles {
			roles = append(roles, role+"=")
		}
		return roles
	}
	return predict.Something
}

// predictProjects returns the project names of the configured store.
func predictProjects(prefix string) []string {
	ctx := context.Background()
	store, err := OpenStore(ctx)
	if err != nil {
		return nil
	}
	var names []string
	for _, name := range store.Load(ctx).Names() {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	return names
}

func predictTopics(prefix string) []string {
	topics, err := docs.GetAllTopics()
	if err != nil {
		return nil
	}
	var matches []string
	for _, topic := range topics {
		if strings.HasPrefix(topic, prefix) {
			matches = append(matches, topic)
		}
	}
	return matches
}
