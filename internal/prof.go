// Copyright © 2018 One Concern

package internal

import (
	"os"
	"runtime"
	"runtime/pprof"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// ProfParams locates the profiles written while a command runs.
// Empty paths disable the corresponding profile.
type ProfParams struct {
	CPUPath string
	MemPath string
	Logger  *zap.Logger
}

// StartProf starts CPU profiling and returns a function that stops it,
// then writes a heap profile.
func StartProf(params ProfParams) (func() error, error) {
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	var cpu *os.File
	if params.CPUPath != "" {
		f, err := os.Create(params.CPUPath)
		if err != nil {
			return nil, err
		}
		if err = pprof.StartCPUProfile(f); err != nil {
			return nil, multierr.Append(err, f.Close())
		}
		cpu = f
	}

	return func() error {
		var err error
		if cpu != nil {
			pprof.StopCPUProfile()
			err = multierr.Append(err, cpu.Close())
			params.Logger.Debug("wrote cpu profile", zap.String("path", params.CPUPath))
		}
		if params.MemPath != "" {
			err = multierr.Append(err, writeMemProf(params.MemPath))
			params.Logger.Debug("wrote heap profile", zap.String("path", params.MemPath))
		}
		return err
	}, nil
}

func writeMemProf(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	runtime.GC()
	return multierr.Append(pprof.Lookup("heap").WriteTo(f, 0), f.Close())
}
