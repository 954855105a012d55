package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/atelier-edu/reparto/internal/event"
	"github.com/atelier-edu/reparto/internal/pipeline"
	"github.com/atelier-edu/reparto/internal/render"
	"github.com/atelier-edu/reparto/internal/tui"
)

var assignCmd = &cobra.Command{
	Use:   "assign",
	Short: "Decompose an activity and distribute it across the roster",
	Long: `Assign runs one full distribution request: the activity description is
decomposed into work items, the items are normalized and validated, and
the batch is distributed across the participant roster.

Decomposition calls the configured generation command. With --from, an
already generated decomposition is read from a file instead, so assign
works without any generator configured.

Examples:
  # Decompose and distribute an activity
  reparto assign -i "prepare the autumn harvest exhibition"

  # Distribute a saved decomposition over a specific roster
  reparto assign -i "harvest exhibition" --from response.txt --roster class.yaml

  # Browse the result interactively
  reparto assign -i "harvest exhibition" --from response.txt --interactive`,
	RunE: runAssign,
}

var (
	assignIntent      string
	assignFrom        string
	assignRoster      string
	assignInteractive bool
	assignVerbose     bool
)

func init() {
	rootCmd.AddCommand(assignCmd)

	assignCmd.Flags().StringVarP(&assignIntent, "intent", "i", "", "Free text description of the activity (required)")
	assignCmd.Flags().StringVarP(&assignFrom, "from", "f", "", "File with an already generated decomposition, skipping the generator")
	assignCmd.Flags().StringVarP(&assignRoster, "roster", "r", "", "Roster YAML file (default: the configured or built-in roster)")
	assignCmd.Flags().BoolVar(&assignInteractive, "interactive", false, "Browse the result in the terminal UI")
	assignCmd.Flags().BoolVar(&assignVerbose, "verbose", false, "Print request phases to stderr while running")
}

func runAssign(cmd *cobra.Command, args []string) error {
	if strings.TrimSpace(assignIntent) == "" {
		return fmt.Errorf("--intent is required: describe the activity to distribute")
	}

	c, err := buildComponents(assignRoster)
	if err != nil {
		return err
	}
	defer c.close()

	if assignVerbose {
		c.bus.Subscribe("phase.changed", func(e event.Event) {
			if pc, ok := e.(event.PhaseChangeEvent); ok {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s\n", pc.CurrentPhase)
			}
		})
	}

	req := pipeline.Request{Intent: assignIntent}
	var res *pipeline.Result
	if assignFrom != "" {
		raw, rerr := os.ReadFile(assignFrom)
		if rerr != nil {
			return fmt.Errorf("failed to read decomposition file: %w", rerr)
		}
		res, err = c.pipe.RunRaw(cmd.Context(), string(raw), req)
	} else {
		res, err = c.pipe.Run(cmd.Context(), req)
	}
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), res)
	}
	if assignInteractive {
		return tui.Run(res.Record, res.Items, c.repo.All())
	}

	fmt.Fprintln(cmd.OutOrStdout(), render.ResultSummary(res, c.repo.All()))
	return nil
}
