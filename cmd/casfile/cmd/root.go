// Copyright © 2018 One Concern

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/oneconcern/casfile/internal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "casfile",
	Short: "casfile reads and updates versioned files shared over NFS",
	Long: `casfile reads and updates a logical file shared by many processes, possibly on many hosts.

A logical file is a directory holding successive immutable versions of its content.
Updates are atomic compare-and-swap operations: concurrent writers never lose each
other's changes, and readers never see a partially written content. No lock is ever taken,
so that the tool is safe to use on network file systems.

Example:
  % casfile --dir /shared/counter.json incr
  3
`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		var err error
		stopProf, err = internal.StartProf(internal.ProfParams{
			CPUPath: params.root.cpuProfPath,
			MemPath: params.root.memProfPath,
			Logger:  getLoggerOrNop(),
		})
		if err != nil {
			wrapFatalln("start profiling", err)
		}
	},
	// upstream api note:  *PostRun functions aren't called in case of a panic() in Run
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if stopProf == nil {
			return
		}
		if err := stopProf(); err != nil {
			infoLogger.Println("profiling:", err)
		}
		stopProf = nil
	},
}

var stopProf func() error

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		osExit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	addDirFlag(rootCmd)
	addLogLevelFlag(rootCmd)
	addFormatFlag(rootCmd)
	addMaxAttemptsFlag(rootCmd)
	addCPUProfFlag(rootCmd)
	addMemProfFlag(rootCmd)
	bindFlags(rootCmd)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	viper.SetDefault(keyLogLevel, defaultLogLevel)
	viper.SetDefault(keyFormat, defaultFormat)

	if os.Getenv("CASFILE_CONFIG") != "" {
		// Use config file from the env.
		viper.SetConfigFile(os.Getenv("CASFILE_CONFIG"))
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.casfile")
		viper.AddConfigPath("/etc/casfile")
		viper.SetConfigName("casfile")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("casfile")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		infoLogger.Println("Using config file:", viper.ConfigFileUsed())
	}
}
