// Copyright © 2018 One Concern

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/oneconcern/casfile/pkg/casfile"
	"github.com/spf13/cobra"
)

var putCmd = &cobra.Command{
	Use:   "put",
	Short: "Replace the content of the file",
	Long: `Replace the content of the file with the content of some local file, or of the standard input.

With --if-version, the content is only published if the latest version is still the given
one (use 0 for a file without any version): this is a single compare-and-swap attempt.
Otherwise, the content replaces whatever the latest version is.

The new version number is printed.`,
	Example: `% echo hello | casfile --dir /shared/motd put
1
% casfile --dir /shared/motd put --file motd.txt --if-version 1
2`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		store, err := openStore(nil)
		if err != nil {
			wrapFatalln("open store", err)
			return
		}

		data, err := readInput(cmd.InOrStdin(), params.put.file)
		if err != nil {
			wrapFatalln("read input", err)
			return
		}

		var published casfile.Snapshot
		if params.put.ifVersion >= 0 {
			published, err = compareAndSwap(ctx, store, uint64(params.put.ifVersion), data)
		} else {
			published, err = casfile.Update(ctx, store, func([]byte, bool) ([]byte, error) {
				return data, nil
			}, updateOptions()...)
		}
		if err != nil {
			wrapFatalln("publish", err)
			return
		}
		printOut(cmd.OutOrStdout(), "%d\n", published.Version())
	},
}

func readInput(stdin io.Reader, file string) ([]byte, error) {
	if file == "" || file == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(file)
}

func compareAndSwap(ctx context.Context, store *casfile.Store, expected uint64, data []byte) (casfile.Snapshot, error) {
	current, err := store.CurrentSnapshot(ctx)
	if err != nil {
		return casfile.Snapshot{}, err
	}
	if current.Version() != expected {
		return casfile.Snapshot{}, fmt.Errorf("latest version is %d, not %d", current.Version(), expected)
	}
	tmp, err := store.CreateTemp(ctx)
	if err != nil {
		return casfile.Snapshot{}, err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return casfile.Snapshot{}, err
	}
	published, err := store.TryPublish(ctx, current, tmp)
	if casfile.IsConflict(err) {
		return casfile.Snapshot{}, fmt.Errorf("version %d was superseded by a concurrent writer: %w", expected, err)
	}
	return published, err
}

func init() {
	putCmd.Flags().StringVar(&params.put.file, "file", "", "Read the content from this file instead of the standard input")
	putCmd.Flags().Int64Var(&params.put.ifVersion, "if-version", -1, "Only publish if the latest version is this one")
	rootCmd.AddCommand(putCmd)
}
