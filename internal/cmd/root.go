package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/atelier-edu/reparto/internal/config"
)

// envPrefix namespaces environment overrides, e.g.
// REPARTO_ASSIGN_BASE_SCORE for assign.base_score.
const envPrefix = "REPARTO"

var rootCmd = &cobra.Command{
	Use:   "reparto",
	Short: "Decompose classroom activities and distribute them across a roster",
	Long: `Reparto turns a teacher's free-text activity description into a batch
of work items and distributes them across a participant roster, weighing
each participant's strengths, support needs, neurotype, and availability.`,
}

// jsonOutput switches every verb from human readable output to JSON.
var jsonOutput bool

// Execute dispatches to the requested subcommand.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(primeConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringP("config", "c", "", "config file (default is $HOME/.config/reparto/config.yaml)")
	pf.String("log-level", "", "debug log level (debug, info, warn, error)")
	pf.BoolVar(&jsonOutput, "json", false, "print machine readable JSON instead of tables")

	_ = viper.BindPFlag("config", pf.Lookup("config"))
	_ = viper.BindPFlag("logging.level", pf.Lookup("log-level"))
}

// primeConfig runs before any verb: baked-in defaults first, then the
// config file, then REPARTO_* environment overrides on top.
func primeConfig() {
	config.SetDefaults()

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if explicit := viper.GetString("config"); explicit != "" {
		viper.SetConfigFile(explicit)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath("$HOME/.config/reparto")
		viper.AddConfigPath(".")
	}

	// A missing config file is fine; defaults and env cover everything.
	_ = viper.ReadInConfig()
}
