// Copyright © 2018 One Concern

package cmd

import (
	"fmt"
	"strings"

	"github.com/oneconcern/casfile/pkg/casfile"
	"github.com/oneconcern/casfile/pkg/codec"
	"github.com/oneconcern/casfile/pkg/dlogger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	keyDir         = "dir"
	keyLogLevel    = "loglevel"
	keyFormat      = "format"
	keyMaxAttempts = "max-attempts"

	defaultLogLevel = dlogger.LogLevelNone
	defaultFormat   = codec.NameJSON
)

type flagsT struct {
	root struct {
		cpuProfPath string
		memProfPath string
	}
	get struct {
		version uint64
	}
	put struct {
		file      string
		ifVersion int64
	}
	incr struct {
		workers int
		count   int
		by      int
	}
	watch struct {
		interval    string
		metricsAddr string
	}
}

var params flagsT

func addDirFlag(cmd *cobra.Command) string {
	cmd.PersistentFlags().String(keyDir, "", "The directory holding the versions of the file (required)")
	return keyDir
}

func addLogLevelFlag(cmd *cobra.Command) string {
	cmd.PersistentFlags().String(keyLogLevel, defaultLogLevel, "The logging level: debug, info, warn, error or none")
	return keyLogLevel
}

func addFormatFlag(cmd *cobra.Command) string {
	cmd.PersistentFlags().String(keyFormat, defaultFormat,
		fmt.Sprintf("The serialization format of structured values: %s", strings.Join(codec.Names(), ", ")))
	return keyFormat
}

func addMaxAttemptsFlag(cmd *cobra.Command) string {
	cmd.PersistentFlags().Int(keyMaxAttempts, 0, "Give up an update after this many conflicts with other writers (0: never give up)")
	return keyMaxAttempts
}

func addCPUProfFlag(cmd *cobra.Command) string {
	const flagName = "cpuprof"
	cmd.PersistentFlags().StringVar(&params.root.cpuProfPath, flagName, "", "The path to output the pprof cpu information")
	_ = cmd.PersistentFlags().MarkHidden(flagName)
	return flagName
}

func addMemProfFlag(cmd *cobra.Command) string {
	const flagName = "memprof"
	cmd.PersistentFlags().StringVar(&params.root.memProfPath, flagName, "", "The path to output the pprof heap information")
	_ = cmd.PersistentFlags().MarkHidden(flagName)
	return flagName
}

// bindFlags lets viper resolve persistent flags: flag > env > config file > default
func bindFlags(cmd *cobra.Command) {
	for _, key := range []string{keyDir, keyLogLevel, keyFormat, keyMaxAttempts} {
		if err := viper.BindPFlag(key, cmd.PersistentFlags().Lookup(key)); err != nil {
			panic(err)
		}
	}
}

func getLogger() (*zap.Logger, error) {
	return dlogger.GetLogger(viper.GetString(keyLogLevel))
}

func getLoggerOrNop() *zap.Logger {
	l, err := getLogger()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

func getCodec() (codec.Codec, error) {
	return codec.ByName(viper.GetString(keyFormat))
}

func updateOptions() []casfile.UpdateOption {
	return []casfile.UpdateOption{casfile.MaxAttempts(viper.GetInt(keyMaxAttempts))}
}

// openStore opens the store designated by the --dir flag, creating it if needed
func openStore(reg prometheus.Registerer) (*casfile.Store, error) {
	dir := viper.GetString(keyDir)
	if dir == "" {
		return nil, fmt.Errorf("--%s is required", keyDir)
	}
	logger, err := getLogger()
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	opts := []casfile.Option{casfile.Logger(logger)}
	if reg != nil {
		m, err := casfile.NewMetrics(reg)
		if err != nil {
			return nil, err
		}
		opts = append(opts, casfile.WithMetrics(m))
	}
	return casfile.Open(dir, opts...)
}
