// Copyright © 2018 One Concern

package cmd

import (
	"context"
	"strings"

	"github.com/oneconcern/casfile/pkg/casfile"
	"github.com/spf13/cobra"
)

var appendCmd = &cobra.Command{
	Use:   "append [text...]",
	Short: "Append text to the file",
	Long: `Atomically append a line of text to the file.

Concurrent appends never overwrite each other. The new version number is printed.`,
	Example: `% casfile --dir /shared/journal append deployed release 1.2
4`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store, err := openStore(nil)
		if err != nil {
			wrapFatalln("open store", err)
			return
		}
		line := []byte(strings.Join(args, " ") + "\n")
		published, err := casfile.Update(context.Background(), store, func(current []byte, _ bool) ([]byte, error) {
			next := make([]byte, 0, len(current)+len(line))
			return append(append(next, current...), line...), nil
		}, updateOptions()...)
		if err != nil {
			wrapFatalln("append", err)
			return
		}
		printOut(cmd.OutOrStdout(), "%d\n", published.Version())
	},
}

func init() {
	rootCmd.AddCommand(appendCmd)
}
