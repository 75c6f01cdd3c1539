// Copyright © 2018 One Concern

package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

// watchContext is patched by tests to stop watching
var watchContext = func() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print new versions as they are published",
	Long: `Print the number of the latest version, then of every newer version as it gets published,
until interrupted.

Changes made on other hosts of a network file system are detected by polling the directory.

With --metrics-addr, publication metrics are exposed in the prometheus format at /metrics.`,
	Example: `% casfile --dir /shared/counter.json watch --interval 500ms
3
4`,
	Run: func(cmd *cobra.Command, args []string) {
		interval, err := time.ParseDuration(params.watch.interval)
		if err != nil {
			wrapFatalln("parse interval", err)
			return
		}

		var reg *prometheus.Registry
		if params.watch.metricsAddr != "" {
			reg = prometheus.NewRegistry()
		}
		store, err := openStore(registerer(reg))
		if err != nil {
			wrapFatalln("open store", err)
			return
		}

		ctx, cancel := watchContext()
		defer cancel()

		if reg != nil {
			srv := &http.Server{
				Addr:              params.watch.metricsAddr,
				Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
				ReadHeaderTimeout: 5 * time.Second,
			}
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					infoLogger.Println("metrics server:", err)
				}
			}()
			defer func() { _ = srv.Close() }()
		}

		snapshots, err := store.Watch(ctx, interval)
		if err != nil {
			wrapFatalln("watch", err)
			return
		}
		for snapshot := range snapshots {
			printOut(cmd.OutOrStdout(), "%d\n", snapshot.Version())
		}
	},
}

// registerer avoids passing a typed nil registry as a non-nil interface
func registerer(reg *prometheus.Registry) prometheus.Registerer {
	if reg == nil {
		return nil
	}
	return reg
}

func init() {
	watchCmd.Flags().StringVar(&params.watch.interval, "interval", "1s", "Polling interval")
	watchCmd.Flags().StringVar(&params.watch.metricsAddr, "metrics-addr", "", "Serve prometheus metrics on this address, e.g. :9090")
	rootCmd.AddCommand(watchCmd)
}
