//go:build !ios && !android && (amd64 || arm64)

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kardianos/service"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// program runs the watch loop under a service manager.
type program struct {
	app    *app
	cancel context.CancelFunc
	exit   chan struct{}
	err    error
}

func (p *program) Start(s service.Service) error {
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.exit = make(chan struct{})
	go p.run(ctx)
	return nil
}

func (p *program) run(ctx context.Context) {
	defer close(p.exit)
	p.err = p.app.watch(ctx, os.Stderr)
	if p.err != nil {
		p.app.log.Error("watch failed", zap.Error(p.err))
	}
}

func (p *program) Stop(s service.Service) error {
	if p.cancel == nil {
		return nil
	}
	p.cancel()
	select {
	case <-p.exit:
	case <-time.After(30 * time.Second):
		return fmt.Errorf("timeout waiting for service to stop")
	}
	return nil
}

// pathFlags name flags whose values are made absolute before they are
// handed to the service manager, which starts adlmon in another directory.
var pathFlags = map[string]bool{"config": true, "env-file": true, "library": true, "log-file": true}

// serviceArgs returns the command line the service manager runs. Every flag
// set on the install command line is forwarded.
func serviceArgs(flags *pflag.FlagSet) ([]string, error) {
	args := []string{"service", "run"}
	var err error
	flags.Visit(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		v := f.Value.String()
		if pathFlags[f.Name] && v != "" {
			if v, err = filepath.Abs(v); err != nil {
				err = fmt.Errorf("--%s: %w", f.Name, err)
				return
			}
		}
		args = append(args, "--"+f.Name+"="+v)
	})
	return args, err
}

func serviceConfig(args []string) *service.Config {
	return &service.Config{
		Name:        "adlmon",
		DisplayName: "ADL Fan Monitor",
		Description: "Watches AMD adapter fan and hotspot sensors and logs stalls.",
		Arguments:   args,
	}
}

func serviceCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:       "service {install|uninstall|start|stop|restart|run}",
		Short:     "Install or run adlmon as a system service",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"install", "uninstall", "start", "stop", "restart", "run"},
		RunE: func(cmd *cobra.Command, args []string) error {
			runArgs, err := serviceArgs(cmd.Flags())
			if err != nil {
				return err
			}
			s, err := service.New(&program{app: a}, serviceConfig(runArgs))
			if err != nil {
				return fmt.Errorf("failed to create service: %w", err)
			}
			if args[0] == "run" {
				return s.Run()
			}
			if err := service.Control(s, args[0]); err != nil {
				return fmt.Errorf("service %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "service %s: ok\n", args[0])
			return nil
		},
	}
	cmd.Flags().Duration("interval", DefaultConfig().Interval, "poll interval")
	return cmd
}
