package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/atelier-edu/reparto/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify Reparto configuration",
	Long: `View or modify Reparto configuration.

Without arguments, displays the effective configuration.
Use subcommands to modify settings or create a config file.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the user's config file.

Keys use dot notation, e.g.:
  reparto config set generation.command ollama
  reparto config set assign.base_load_cap 3
  reparto config set consensus.enabled true

Valid keys:
  generation.command           - Text generation executable
  generation.max_tokens        - Token budget per generation call
  generation.timeout_seconds   - Per-call generation timeout
  parser.max_replays           - Stricter-prompt retries (0 disables)
  normalize.default_complexity - Complexity filled in when missing (1-5)
  assign.base_score            - Starting compatibility score
  assign.tag_bonus             - Bonus per matched strength tag
  assign.neurotype_penalty     - Penalty per conflicting constraint
  assign.base_load_cap         - Items per participant before adjustment
  consensus.enabled            - Run deliberation before assignment
  consensus.revision_threshold - Pedagogical score forcing revision
  roster.path                  - Roster YAML file
  roster.watch                 - Reload the roster on file changes
  retrieval.corpus_path        - Past-activity corpus for prompts
  retrieval.top_k              - Examples folded into each prompt
  logging.enabled              - Write the debug log
  logging.level                - Log level (debug/info/warn/error)`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long:  `Create a default config file at ~/.config/reparto/config.yaml with all available options.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	RunE:  runConfigPath,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	// The header is a YAML comment so the output pastes straight into a
	// config file.
	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "# config file: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintln(out, "# config file: none, showing defaults")
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	fmt.Fprint(out, string(data))
	return nil
}

// coerce turns the raw CLI string for a settable key into the typed
// value viper should store. Each entry owns its own parsing so error
// messages can say what shape the value needed.
var coerce = map[string]func(raw string) (any, error){
	"generation.command":           asString,
	"generation.max_tokens":        asInt,
	"generation.timeout_seconds":   asInt,
	"parser.max_replays":           asInt,
	"normalize.default_complexity": asInt,
	"assign.base_score":            asFloat,
	"assign.tag_bonus":             asFloat,
	"assign.neurotype_penalty":     asFloat,
	"assign.base_load_cap":         asInt,
	"consensus.enabled":            asBool,
	"consensus.revision_threshold": asFloat,
	"roster.path":                  asString,
	"roster.watch":                 asBool,
	"retrieval.corpus_path":        asString,
	"retrieval.top_k":              asInt,
	"logging.enabled":              asBool,
	"logging.level":                asLogLevel,
}

func asString(raw string) (any, error) { return raw, nil }

func asBool(raw string) (any, error) {
	switch raw {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return nil, fmt.Errorf("expected true or false")
}

func asInt(raw string) (any, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("expected integer")
	}
	return n, nil
}

func asFloat(raw string) (any, error) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("expected number")
	}
	return f, nil
}

func asLogLevel(raw string) (any, error) {
	for _, valid := range config.ValidLogLevels() {
		if strings.EqualFold(raw, valid) {
			return raw, nil
		}
	}
	return nil, fmt.Errorf("valid options: %s", strings.Join(config.ValidLogLevels(), ", "))
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, raw := args[0], args[1]

	parse, known := coerce[key]
	if !known {
		return fmt.Errorf("unknown configuration key: %s\nRun 'reparto config set --help' to see valid keys", key)
	}
	value, err := parse(raw)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}

	viper.Set(key, value)

	// Refuse values the validator would reject at startup.
	if _, err := config.Load(); err != nil {
		return fmt.Errorf("refusing to save %s: %w", key, err)
	}

	if err := os.MkdirAll(config.ConfigDir(), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	configFile := config.ConfigFile()
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Set %s = %v\n", key, value)
	fmt.Fprintf(out, "Config saved to %s\n", configFile)
	return nil
}

// defaultConfigYAML is what `config init` writes: every option at its
// default, with enough commentary to edit by hand.
const defaultConfigYAML = `# Reparto configuration

# External text generation command. The prompt is written to its stdin
# and the decomposition read from its stdout. Empty leaves generation
# off; 'reparto assign --from' still works on saved text.
generation:
  command: ""
  args: []
  max_tokens: 800
  timeout_seconds: 60

# Parser chain
parser:
  # Stricter-prompt retries when parsing degrades (0 disables replay)
  max_replays: 1

# Values filled in for incomplete work items
normalize:
  default_complexity: 3
  duration_per_complexity: 12
  min_duration_minutes: 15
  max_duration_minutes: 60

# Compatibility scoring and per-participant load caps
assign:
  base_score: 0.5
  tag_bonus: 0.15
  neurotype_penalty: 0.2
  base_load_cap: 2
  availability_high: 80
  availability_low: 70

# Multi-proposer deliberation round (requires a generation command)
consensus:
  enabled: false
  weights:
    structural: 0.40
    pedagogical: 0.35
    feasibility: 0.25
  proposer_timeout_seconds: 60
  revision_threshold: 0.6

# Participant roster
roster:
  # Roster YAML file. Empty uses the built-in default roster.
  path: ""
  # Reload the roster when the file changes on disk
  watch: false

# Prompt enrichment from past activities
retrieval:
  # YAML corpus of example activities. Empty disables enrichment.
  corpus_path: ""
  top_k: 3

# Debug logging
logging:
  enabled: true
  level: info
  # Log directory. Empty uses logs/ under the config directory.
  dir: ""
  max_size_mb: 10
  max_backups: 3
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	configFile := config.ConfigFile()
	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists at %s\nUse 'reparto config set' to modify values", configFile)
	}

	if err := os.MkdirAll(config.ConfigDir(), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(configFile, []byte(defaultConfigYAML), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created config file at %s\n", configFile)
	fmt.Fprintln(out, "Edit this file to customize Reparto's behavior.")
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "Active config: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintf(out, "Default path: %s (not created)\n", config.ConfigFile())
	}

	fmt.Fprintln(out, "\nSearch paths:")
	fmt.Fprintf(out, "  1. %s\n", filepath.Join(config.ConfigDir(), "config.yaml"))
	fmt.Fprintln(out, "  2. $HOME/.config/reparto/config.yaml")
	fmt.Fprintln(out, "  3. ./config.yaml (current directory)")
	fmt.Fprintln(out, "\nEnvironment variables: REPARTO_* (e.g., REPARTO_ASSIGN_BASE_SCORE)")
	return nil
}
