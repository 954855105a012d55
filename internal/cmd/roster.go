package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/atelier-edu/reparto/internal/config"
	"github.com/atelier-edu/reparto/internal/participant"
	"github.com/atelier-edu/reparto/internal/render"
)

var rosterCmd = &cobra.Command{
	Use:   "roster",
	Short: "Show the active participant roster",
	Long: `Roster loads, validates, and prints a participant roster.

Without --file it shows the configured roster, or the built-in default
when none is configured. With --file it checks and shows that file, so
a roster can be linted before an assignment run uses it.`,
	RunE: runRoster,
}

var rosterFilePath string

func init() {
	rootCmd.AddCommand(rosterCmd)

	rosterCmd.Flags().StringVarP(&rosterFilePath, "file", "f", "", "Roster YAML file to load")
}

// rosterOutput is the machine readable shape of the roster verb.
type rosterOutput struct {
	Source       string                `json:"source"`
	Participants []participant.Profile `json:"participants"`
}

func runRoster(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	path := cfg.Roster.Path
	if rosterFilePath != "" {
		path = rosterFilePath
	}

	profiles := participant.DefaultProfiles()
	source := participant.SourceBuiltin
	if path != "" {
		profiles, err = participant.ReadRosterFile(path)
		if err != nil {
			return err
		}
		source = path
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), rosterOutput{
			Source:       source,
			Participants: profiles,
		})
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, render.RosterTable(profiles))
	fmt.Fprintf(out, "%d participant(s) from %s\n", len(profiles), source)
	return nil
}
