package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/atelier-edu/reparto/internal/activity"
	"github.com/atelier-edu/reparto/internal/config"
	"github.com/atelier-edu/reparto/internal/normalize"
	"github.com/atelier-edu/reparto/internal/parse"
	"github.com/atelier-edu/reparto/internal/render"
)

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Parse a generated decomposition without assigning it",
	Long: `Parse reads decomposition text from a file, runs it through the parser
chain and the normalizer, and reports the recovered work items together
with their validation findings and the parse confidence.

Useful for checking what a response yields before spending an
assignment run on it.`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

var parseIntent string

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringVarP(&parseIntent, "intent", "i", "", "Activity description, used as a parsing hint")
}

// parseOutput is the machine readable shape of the parse verb.
type parseOutput struct {
	Items      []activity.WorkItem        `json:"items"`
	Strategy   string                     `json:"strategy"`
	Confidence parse.Confidence           `json:"confidence"`
	Validation *activity.ValidationResult `json:"validation,omitempty"`
}

func runParse(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read decomposition file: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := buildLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Close() }()

	// No client: the verb inspects the text exactly as given, so the
	// chain runs without its replay strategy.
	chain := parse.NewChain(parse.Options{}, logger)
	normalizer := normalize.NewNormalizerWithOptions(normalizeOptions(cfg), logger)

	parsed, err := chain.Parse(cmd.Context(), string(raw), parse.Hints{Intent: parseIntent})
	if err != nil {
		return err
	}
	items := normalizer.Normalize(parsed.Items)
	validation := activity.ValidateBatch(items)

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), parseOutput{
			Items:      items,
			Strategy:   parsed.Strategy,
			Confidence: parsed.Confidence,
			Validation: validation,
		})
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "parsed via %s (%s)\n", parsed.Strategy, render.ConfidenceBadge(parsed.Confidence))
	if parsed.Degraded() {
		fmt.Fprintln(out, render.Warn.Render("parse degraded: the items below are a rescue, not a faithful read"))
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, render.ItemsTable(items))
	fmt.Fprintln(out)
	fmt.Fprintln(out, render.ValidationReport(validation))
	return nil
}
