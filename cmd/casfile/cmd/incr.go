// Copyright © 2018 One Concern

package cmd

import (
	"context"

	"github.com/oneconcern/casfile/pkg/casfile"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// counter is the structured value maintained by the incr command
type counter struct {
	Count int64 `json:"count" yaml:"count" cbor:"count"`
}

var incrCmd = &cobra.Command{
	Use:   "incr",
	Short: "Increment a counter stored in the file",
	Long: `Atomically increment a counter stored in the file as {"count": n}.

A missing file counts as 0. With --workers and --count, several concurrent workers each
perform several increments: this exercises concurrent updates, and no increment is ever lost.

The final value of the counter is printed.`,
	Example: `% casfile --dir /shared/counter.json incr
1
% casfile --dir /shared/counter.json incr --workers 4 --count 10
41`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		store, err := openStore(nil)
		if err != nil {
			wrapFatalln("open store", err)
			return
		}
		c, err := getCodec()
		if err != nil {
			wrapFatalln("select format", err)
			return
		}

		by := int64(params.incr.by)
		inc := func(current *counter) (*counter, error) {
			if current == nil {
				current = &counter{}
			}
			current.Count += by
			return current, nil
		}

		var g errgroup.Group
		for w := 0; w < params.incr.workers; w++ {
			g.Go(func() error {
				for i := 0; i < params.incr.count; i++ {
					if _, err := casfile.UpdateStructured(ctx, store, c, inc, updateOptions()...); err != nil {
						return err
					}
				}
				return nil
			})
		}
		if err = g.Wait(); err != nil {
			wrapFatalln("increment", err)
			return
		}

		current, err := store.CurrentSnapshot(ctx)
		if err != nil {
			wrapFatalln("get snapshot", err)
			return
		}
		value, err := casfile.Load[counter](current, c)
		if err != nil {
			wrapFatalln("read counter", err)
			return
		}
		var total int64
		if value != nil {
			total = value.Count
		}
		printOut(cmd.OutOrStdout(), "%d\n", total)
	},
}

func init() {
	incrCmd.Flags().IntVar(&params.incr.workers, "workers", 1, "Number of concurrent workers")
	incrCmd.Flags().IntVar(&params.incr.count, "count", 1, "Number of increments performed by each worker")
	incrCmd.Flags().IntVar(&params.incr.by, "by", 1, "Value added by each increment")
	rootCmd.AddCommand(incrCmd)
}
