package commands

import (
	"github.com/spf13/cobra"
)

// ListCommand handles the list command
type ListCommand struct {
	env *Env
}

// NewListCommand creates a new ListCommand
func NewListCommand(env *Env) *ListCommand {
	return &ListCommand{env: env}
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	flags := lc.env.Config.Flags

	var (
		names []string
		err   error
	)
	if flags.ListSuites {
		names, err = lc.env.Scanner.ListSuites()
	} else {
		names, err = lc.env.Scanner.ListTests()
	}
	if err != nil {
		return err
	}

	names = lc.env.Filter.ByName(names, flags.NameFilter)
	if len(names) == 0 {
		lc.env.Formatter.Notef("No tests found")
		return nil
	}

	lc.env.Formatter.PrintList(names)
	return nil
}
