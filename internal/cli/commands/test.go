package commands

import (
	"github.com/spf13/cobra"

	"shcompat/internal/domain"
)

// TestCommand handles the test command
type TestCommand struct {
	env *Env
}

// NewTestCommand creates a new TestCommand
func NewTestCommand(env *Env) *TestCommand {
	return &TestCommand{env: env}
}

// Execute runs a single atomic test. The exit status is 0 only if it passed.
func (tc *TestCommand) Execute(cmd *cobra.Command, args []string) error {
	name := args[0]
	flags := tc.env.Config.Flags

	if flags.Raw {
		code, err := tc.env.Runner.RunRaw(cmd.Context(), name, tc.env.Streams.Stdout, tc.env.Streams.Stderr)
		if err != nil {
			return err
		}
		if code != 0 {
			return &ExitError{Code: code}
		}
		return nil
	}

	result := tc.env.Runner.Run(cmd.Context(), name)
	tc.env.Formatter.TestReport(result, flags.ShowOutput)

	if result.Status != domain.StatusPass {
		return &ExitError{Code: 1}
	}
	return nil
}
