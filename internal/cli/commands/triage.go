package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"shcompat/internal/domain"
	"shcompat/internal/storage"
	"shcompat/internal/ui"
)

// ErrNotTerminal is returned when the interactive viewer is requested
// without a terminal.
var ErrNotTerminal = errors.New("--interactive requires a terminal")

// TriageCommand handles the triage command
type TriageCommand struct {
	env *Env
}

// NewTriageCommand creates a new TriageCommand
func NewTriageCommand(env *Env) *TriageCommand {
	return &TriageCommand{env: env}
}

// Execute renders the failures and timeouts of a stored suite result
func (tc *TriageCommand) Execute(cmd *cobra.Command, args []string) error {
	suite, err := tc.load(cmd.Context(), args)
	if err != nil {
		return err
	}

	flags := tc.env.Config.Flags
	if flags.Interactive {
		if !tc.env.Out.Interactive {
			return ErrNotTerminal
		}
		var viewer ui.Viewer = ui.NewFailureViewer(tc.env.Out, tc.env.Streams.Stdout)
		return viewer.View(suite)
	}

	ui.NewTriage(tc.env.Out, tc.env.Streams.Stdout).Render(suite, flags.DiffLines)
	return nil
}

// load reads the suite from a JSON file, or from the run history when
// --run-id is given.
func (tc *TriageCommand) load(ctx context.Context, args []string) (*domain.SuiteResult, error) {
	runID := tc.env.Config.Flags.RunID
	switch {
	case runID != "" && len(args) > 0:
		return nil, errors.New("give either a JSON results file or --run-id, not both")
	case runID == "" && len(args) == 0:
		return nil, errors.New("triage needs a JSON results file or --run-id")
	case runID == "":
		return tc.env.Storage.Load(args[0])
	}

	dsn := tc.env.Config.ResultsDSN
	if dsn == "" {
		return nil, fmt.Errorf("--run-id: %w", storage.ErrNoDSN)
	}
	store, err := tc.env.OpenRunStore(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open run history: %w", err)
	}
	defer store.Close()

	suite, err := store.LoadRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	if err := suite.Validate(); err != nil {
		return nil, err
	}
	return suite, nil
}
