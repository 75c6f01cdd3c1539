// Copyright © 2018 One Concern

package cmd

import (
	"context"
	"time"

	"github.com/docker/go-units"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List all published versions of the file",
	Long:  `List all published versions of the file, oldest first, with their size and publication time.`,
	Example: `% casfile --dir /shared/counter.json history
VERSION  SIZE  PUBLISHED
1        11B   2019-12-05T14:01:18+01:00
2        11B   2019-12-05T14:01:19+01:00`,
	Run: func(cmd *cobra.Command, args []string) {
		store, err := openStore(nil)
		if err != nil {
			wrapFatalln("open store", err)
			return
		}
		infos, err := store.Versions(context.Background())
		if err != nil {
			wrapFatalln("list versions", err)
			return
		}

		table := uitable.New()
		table.AddRow("VERSION", "SIZE", "PUBLISHED")
		for _, info := range infos {
			table.AddRow(info.Version, units.HumanSize(float64(info.Size)), info.ModTime.Format(time.RFC3339))
		}
		printOut(cmd.OutOrStdout(), "%s\n", table)
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
}
