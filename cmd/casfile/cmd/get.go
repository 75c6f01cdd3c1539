// Copyright © 2018 One Concern

package cmd

import (
	"context"
	"io"

	"github.com/oneconcern/casfile/pkg/casfile"
	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the content of the file",
	Long: `Print the content of the latest version of the file, or of some past version.

Nothing is printed if no version was ever published.`,
	Example: `% casfile --dir /shared/motd get
hello world
% casfile --dir /shared/motd get --version 1
hello`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		store, err := openStore(nil)
		if err != nil {
			wrapFatalln("open store", err)
			return
		}

		var snapshot casfile.Snapshot
		if params.get.version > 0 {
			snapshot, err = store.Snapshot(ctx, params.get.version)
		} else {
			snapshot, err = store.CurrentSnapshot(ctx)
		}
		if err != nil {
			wrapFatalln("get snapshot", err)
			return
		}

		f, err := snapshot.Open()
		if err != nil {
			wrapFatalln("open version", err)
			return
		}
		if f == nil {
			return
		}
		defer f.Close()
		if _, err = io.Copy(cmd.OutOrStdout(), f); err != nil {
			wrapFatalln("read version", err)
			return
		}
	},
}

func init() {
	getCmd.Flags().Uint64Var(&params.get.version, "version", 0, "Print this version instead of the latest one")
	rootCmd.AddCommand(getCmd)
}
