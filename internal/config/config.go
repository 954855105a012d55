package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete Reparto configuration
type Config struct {
	Generation GenerationConfig `mapstructure:"generation" yaml:"generation"`
	Parser     ParserConfig     `mapstructure:"parser" yaml:"parser"`
	Normalize  NormalizeConfig  `mapstructure:"normalize" yaml:"normalize"`
	Assign     AssignConfig     `mapstructure:"assign" yaml:"assign"`
	Consensus  ConsensusConfig  `mapstructure:"consensus" yaml:"consensus"`
	Roster     RosterConfig     `mapstructure:"roster" yaml:"roster"`
	Retrieval  RetrievalConfig  `mapstructure:"retrieval" yaml:"retrieval"`
	Logging    LoggingConfig    `mapstructure:"logging" yaml:"logging"`
}

// GenerationConfig controls the external text generation command
type GenerationConfig struct {
	// Command is the executable that generates text (e.g. "ollama" or a wrapper script).
	// Empty means no generator is configured and generation-backed commands fail fast.
	Command string `mapstructure:"command" yaml:"command"`
	// Args are passed to the command. Occurrences of {max_tokens} are replaced
	// with the per-request token budget
	Args []string `mapstructure:"args" yaml:"args"`
	// MaxTokens is the default token budget per request (default: 800)
	MaxTokens int `mapstructure:"max_tokens" yaml:"max_tokens"`
	// TimeoutSeconds bounds each generation call (default: 60)
	TimeoutSeconds int `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// ParserConfig controls the parser chain behavior
type ParserConfig struct {
	// MaxReplays is how many stricter-prompt retries the replay strategy may
	// spend when parsing degrades below JSON (default: 1, 0 = replay disabled)
	MaxReplays int `mapstructure:"max_replays" yaml:"max_replays"`
}

// NormalizeConfig controls work item normalization
type NormalizeConfig struct {
	// DefaultComplexity is assigned when the parser recovered no complexity,
	// on the 1-5 scale (default: 3)
	DefaultComplexity int `mapstructure:"default_complexity" yaml:"default_complexity"`
	// DurationPerComplexity is the minutes per complexity point used to derive
	// a missing duration (default: 12)
	DurationPerComplexity int `mapstructure:"duration_per_complexity" yaml:"duration_per_complexity"`
	// MinDurationMinutes clamps derived durations from below (default: 15)
	MinDurationMinutes int `mapstructure:"min_duration_minutes" yaml:"min_duration_minutes"`
	// MaxDurationMinutes clamps derived durations from above (default: 60)
	MaxDurationMinutes int `mapstructure:"max_duration_minutes" yaml:"max_duration_minutes"`
}

// AssignConfig controls compatibility scoring and load caps
type AssignConfig struct {
	// BaseScore is the starting compatibility before bonuses and penalties (default: 0.5)
	BaseScore float64 `mapstructure:"base_score" yaml:"base_score"`
	// TagBonus is added per matched strength or favorable neurotype tag (default: 0.15)
	TagBonus float64 `mapstructure:"tag_bonus" yaml:"tag_bonus"`
	// NeurotypePenalty is subtracted per conflicting neurotype constraint (default: 0.2)
	NeurotypePenalty float64 `mapstructure:"neurotype_penalty" yaml:"neurotype_penalty"`
	// BaseLoadCap is the per-participant item cap before the availability
	// adjustment (default: 2)
	BaseLoadCap int `mapstructure:"base_load_cap" yaml:"base_load_cap"`
	// AvailabilityHigh is the availability percentage above which the cap
	// grows by one (default: 80)
	AvailabilityHigh int `mapstructure:"availability_high" yaml:"availability_high"`
	// AvailabilityLow is the availability percentage below which the cap
	// shrinks by one (default: 70)
	AvailabilityLow int `mapstructure:"availability_low" yaml:"availability_low"`
}

// ConsensusConfig controls the multi-proposer deliberation round
type ConsensusConfig struct {
	// Enabled runs deliberation between parsing and assignment. When false the
	// pipeline assigns directly from the normalized batch (default: false)
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// Weights blend the proposer scores during arbitration
	Weights ConsensusWeights `mapstructure:"weights" yaml:"weights"`
	// ProposerTimeoutSeconds bounds each proposer's run (default: 60)
	ProposerTimeoutSeconds int `mapstructure:"proposer_timeout_seconds" yaml:"proposer_timeout_seconds"`
	// RevisionThreshold is the pedagogical score below which a
	// requires_revision verdict overrides the structural proposal (default: 0.6)
	RevisionThreshold float64 `mapstructure:"revision_threshold" yaml:"revision_threshold"`
}

// ConsensusWeights holds the arbitration weight per proposer role
type ConsensusWeights struct {
	// Structural weight (default: 0.40)
	Structural float64 `mapstructure:"structural" yaml:"structural"`
	// Pedagogical weight (default: 0.35)
	Pedagogical float64 `mapstructure:"pedagogical" yaml:"pedagogical"`
	// Feasibility weight (default: 0.25)
	Feasibility float64 `mapstructure:"feasibility" yaml:"feasibility"`
}

// RosterConfig controls participant roster loading
type RosterConfig struct {
	// Path is the roster YAML file. Empty uses the built-in default roster
	Path string `mapstructure:"path" yaml:"path"`
	// Watch reloads the roster when the file changes on disk (default: false)
	Watch bool `mapstructure:"watch" yaml:"watch"`
}

// RetrievalConfig controls example retrieval for prompt enrichment
type RetrievalConfig struct {
	// CorpusPath is a YAML corpus of past activity examples. Empty disables retrieval
	CorpusPath string `mapstructure:"corpus_path" yaml:"corpus_path"`
	// TopK is how many ranked examples enrich each prompt (default: 3)
	TopK int `mapstructure:"top_k" yaml:"top_k"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled controls whether debug logging is enabled (default: true)
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level" yaml:"level"`
	// Dir is the log directory. Empty uses ConfigDir()/logs
	Dir string `mapstructure:"dir" yaml:"dir"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation (default: 10)
	MaxSizeMB int `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	// MaxBackups is the number of backup log files to keep (default: 3)
	MaxBackups int `mapstructure:"max_backups" yaml:"max_backups"`
}

// Default returns a Config with sensible default values. The values mirror
// the package-level defaults of the subsystems they configure, so running
// without a config file behaves like constructing each component with zero
// options.
func Default() *Config {
	return &Config{
		Generation: GenerationConfig{
			Command:        "", // No generator configured by default
			Args:           []string{},
			MaxTokens:      800,
			TimeoutSeconds: 60,
		},
		Parser: ParserConfig{
			MaxReplays: 1, // At most one stricter-prompt retry
		},
		Normalize: NormalizeConfig{
			DefaultComplexity:     3,
			DurationPerComplexity: 12,
			MinDurationMinutes:    15,
			MaxDurationMinutes:    60,
		},
		Assign: AssignConfig{
			BaseScore:        0.5,
			TagBonus:         0.15,
			NeurotypePenalty: 0.2,
			BaseLoadCap:      2,
			AvailabilityHigh: 80,
			AvailabilityLow:  70,
		},
		Consensus: ConsensusConfig{
			Enabled: false, // Deliberation is opt-in
			Weights: ConsensusWeights{
				Structural:  0.40,
				Pedagogical: 0.35,
				Feasibility: 0.25,
			},
			ProposerTimeoutSeconds: 60,
			RevisionThreshold:      0.6,
		},
		Roster: RosterConfig{
			Path:  "", // Empty means use the built-in roster
			Watch: false,
		},
		Retrieval: RetrievalConfig{
			CorpusPath: "", // Empty means no prompt enrichment
			TopK:       3,
		},
		Logging: LoggingConfig{
			Enabled:    true,
			Level:      "info",
			Dir:        "", // Empty means use ConfigDir()/logs
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// Timeout returns the generation timeout as a time.Duration
func (g *GenerationConfig) Timeout() time.Duration {
	return time.Duration(g.TimeoutSeconds) * time.Second
}

// ProposerTimeout returns the per-proposer timeout as a time.Duration
func (c *ConsensusConfig) ProposerTimeout() time.Duration {
	return time.Duration(c.ProposerTimeoutSeconds) * time.Second
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Generation defaults
	viper.SetDefault("generation.command", defaults.Generation.Command)
	viper.SetDefault("generation.args", defaults.Generation.Args)
	viper.SetDefault("generation.max_tokens", defaults.Generation.MaxTokens)
	viper.SetDefault("generation.timeout_seconds", defaults.Generation.TimeoutSeconds)

	// Parser defaults
	viper.SetDefault("parser.max_replays", defaults.Parser.MaxReplays)

	// Normalize defaults
	viper.SetDefault("normalize.default_complexity", defaults.Normalize.DefaultComplexity)
	viper.SetDefault("normalize.duration_per_complexity", defaults.Normalize.DurationPerComplexity)
	viper.SetDefault("normalize.min_duration_minutes", defaults.Normalize.MinDurationMinutes)
	viper.SetDefault("normalize.max_duration_minutes", defaults.Normalize.MaxDurationMinutes)

	// Assign defaults
	viper.SetDefault("assign.base_score", defaults.Assign.BaseScore)
	viper.SetDefault("assign.tag_bonus", defaults.Assign.TagBonus)
	viper.SetDefault("assign.neurotype_penalty", defaults.Assign.NeurotypePenalty)
	viper.SetDefault("assign.base_load_cap", defaults.Assign.BaseLoadCap)
	viper.SetDefault("assign.availability_high", defaults.Assign.AvailabilityHigh)
	viper.SetDefault("assign.availability_low", defaults.Assign.AvailabilityLow)

	// Consensus defaults
	viper.SetDefault("consensus.enabled", defaults.Consensus.Enabled)
	viper.SetDefault("consensus.weights.structural", defaults.Consensus.Weights.Structural)
	viper.SetDefault("consensus.weights.pedagogical", defaults.Consensus.Weights.Pedagogical)
	viper.SetDefault("consensus.weights.feasibility", defaults.Consensus.Weights.Feasibility)
	viper.SetDefault("consensus.proposer_timeout_seconds", defaults.Consensus.ProposerTimeoutSeconds)
	viper.SetDefault("consensus.revision_threshold", defaults.Consensus.RevisionThreshold)

	// Roster defaults
	viper.SetDefault("roster.path", defaults.Roster.Path)
	viper.SetDefault("roster.watch", defaults.Roster.Watch)

	// Retrieval defaults
	viper.SetDefault("retrieval.corpus_path", defaults.Retrieval.CorpusPath)
	viper.SetDefault("retrieval.top_k", defaults.Retrieval.TopK)

	// Logging defaults
	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Validate the configuration
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "reparto")
	}
	// Fall back to ~/.config/reparto
	home, err := os.UserHomeDir()
	if err != nil {
		return ".reparto"
	}
	return filepath.Join(home, ".config", "reparto")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// LogDir returns the directory for debug logs: the configured directory when
// set, otherwise ConfigDir()/logs
func (c *Config) LogDir() string {
	if c.Logging.Dir != "" {
		return c.Logging.Dir
	}
	return filepath.Join(ConfigDir(), "logs")
}
