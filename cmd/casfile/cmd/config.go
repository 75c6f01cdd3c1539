// Copyright © 2018 One Concern

package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

// CLIConfig describes the CLI configuration.
type CLIConfig struct {
	Dir         string `json:"dir" yaml:"dir"`                   // Directory holding versions
	LogLevel    string `json:"loglevel" yaml:"loglevel"`         // Logging level
	Format      string `json:"format" yaml:"format"`             // Serialization format of structured values
	MaxAttempts int    `json:"max-attempts" yaml:"max-attempts"` // Give up updates after this many conflicts
}

func newConfig() CLIConfig {
	return CLIConfig{
		Dir:         viper.GetString(keyDir),
		LogLevel:    viper.GetString(keyLogLevel),
		Format:      viper.GetString(keyFormat),
		MaxAttempts: viper.GetInt(keyMaxAttempts),
	}
}

// configCmd represents the config related commands
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Print the configuration resulting from flags, environment and configuration file, in YAML.

The output may be saved as a configuration file: casfile looks for casfile.yaml in the current
directory, then in $HOME/.casfile and /etc/casfile, unless CASFILE_CONFIG points to a file.

Environment variables are named after flags: CASFILE_DIR, CASFILE_LOGLEVEL, CASFILE_FORMAT,
CASFILE_MAX_ATTEMPTS.`,
	Example: `% casfile --dir /shared/counter.json config > casfile.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		b, err := yaml.Marshal(newConfig())
		if err != nil {
			wrapFatalln("marshal config", err)
			return
		}
		printOut(cmd.OutOrStdout(), "%s", b)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
