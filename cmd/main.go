package cmd

import (
	"github.com/google/subcommands"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&saveCmd{}, "projects")
	c.Register(&deleteCmd{}, "projects")

	c.Register(&listCmd{}, "reports")
	c.Register(&showCmd{}, "reports")
	c.Register(&getCmd{}, "reports")
	c.Register(&metricsCmd{}, "reports")

	c.Register(&serveCmd{}, "dashboard")
	c.Register(&assistCmd{}, "dashboard")

	c.Register(&topicCmd{}, "help")
}

// IsCommand reports whether name is a subcommand registered in c.
func IsCommand(c *subcommands.Commander, name string) bool {
	found := false
	c.VisitCommands(func(_ *subcommands.CommandGroup, cmd subcommands.Command) {
		if cmd.Name() == name {
			found = true
		}
	})
	return found
}
