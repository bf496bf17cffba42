//go:build !ios && !android && (amd64 || arm64)

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/obinnaokechukwu/adlgo/internal/monitor"
)

func watchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll fan and hotspot sensors until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.watch(ctx, cmd.ErrOrStderr())
		},
	}
	cmd.Flags().Duration("interval", DefaultConfig().Interval, "poll interval")
	return cmd
}

// watch polls until ctx is cancelled. Alerts ring the terminal bell on
// alertOut when enabled.
func (a *app) watch(ctx context.Context, alertOut io.Writer) error {
	adl, err := a.openContext()
	if err != nil {
		return err
	}
	defer adl.Destroy()

	reader := monitor.NewContextReader(adl, a.cfg.VendorID)
	reader.Refresh = a.cfg.Refresh
	collector := monitor.New(a.cfg.MonitorConfig(a.log), reader, a.log, func(alert monitor.Alert) {
		if alert.Kind == monitor.AlertRecovered {
			return
		}
		if a.cfg.Bell {
			fmt.Fprint(alertOut, "\a")
		}
		fmt.Fprintln(alertOut, alert.String())
	})

	a.log.Info("watching adapters",
		zap.Duration("interval", a.cfg.Interval),
		zap.Int("vendor_id", a.cfg.VendorID),
		zap.Bool("on_stall", a.cfg.OnStall != ""),
		zap.String("session", adl.ID().String()),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return collector.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		a.log.Info("stopping", zap.Int("alerts", collector.Alerts()))
		return nil
	})
	return g.Wait()
}
