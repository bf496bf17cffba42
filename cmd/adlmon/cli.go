//go:build !ios && !android && (amd64 || arm64)

package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/obinnaokechukwu/adlgo"
	"github.com/obinnaokechukwu/adlgo/driver"
)

// app carries state shared by every command.
type app struct {
	cfg Config
	log *zap.Logger
	out io.Writer

	// driver replaces the system library. Used by tests.
	driver driver.Driver
}

// openContext creates an ADL context from the configuration.
func (a *app) openContext() (*adlgo.Context, error) {
	scope, err := a.cfg.EnumerationScope()
	if err != nil {
		return nil, err
	}
	threading, err := a.cfg.ThreadingModel()
	if err != nil {
		return nil, err
	}
	opts := []adlgo.CreateOption{
		adlgo.WithThreadingModel(threading),
		adlgo.WithLogger(a.log),
	}
	if a.cfg.Library != "" {
		opts = append(opts, adlgo.WithLibraryPath(a.cfg.Library))
	}
	if a.driver != nil {
		opts = append(opts, adlgo.WithDriver(a.driver))
	}
	ctx, err := adlgo.Create(adlgo.NewGoAllocator(), scope, opts...)
	if errors.Is(err, adlgo.ErrDriverUnavailable) {
		return nil, fmt.Errorf("%w (is the AMD display driver installed? set %s to the library path)", err, adlgo.EnvLibraryPath)
	}
	return ctx, err
}

// NewCLI builds the adlmon command tree.
func NewCLI() *cobra.Command {
	return newCLI(&app{out: os.Stdout})
}

func newCLI(a *app) *cobra.Command {
	var (
		configPath string
		envFile    string
		scope      string
		threading  string
		library    string
		logFile    string
		dev        bool
	)

	rootCmd := &cobra.Command{
		Use:   "adlmon",
		Short: "AMD adapter inspector and fan monitor",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			if err := godotenv.Load(envFile); err != nil && cmd.Flags().Changed("env-file") {
				return fmt.Errorf("loading %s: %w", envFile, err)
			}
			cfg, err := LoadConfig(configPath)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("scope") {
				cfg.Scope = scope
			}
			if flags.Changed("threading") {
				cfg.Threading = threading
			}
			if flags.Changed("library") {
				cfg.Library = library
			}
			if flags.Changed("log-file") {
				cfg.Log.File = logFile
			}
			if flags.Changed("dev") {
				cfg.Log.Development = dev
			}
			if cmd.Flags().Lookup("interval") != nil && flags.Changed("interval") {
				cfg.Interval, _ = flags.GetDuration("interval")
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			a.cfg = cfg

			if a.log == nil {
				log, err := newLogger(cfg.Log)
				if err != nil {
					return err
				}
				a.log = log
			}
			adlgo.SetLogger(a.log)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}
	rootCmd.SetOut(a.out)

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	pf.StringVar(&envFile, "env-file", ".env", "environment file loaded before the configuration")
	pf.StringVar(&scope, "scope", "connected", "adapters to enumerate: all or connected")
	pf.StringVar(&threading, "threading", "unlocked", "ADL threading model: unlocked or locked")
	pf.StringVar(&library, "library", "", "path to the ADL library")
	pf.StringVar(&logFile, "log-file", "", "also write JSON logs to this rotated file")
	pf.BoolVar(&dev, "dev", false, "human-readable colored console logs")

	cobra.EnableCommandSorting = false

	rootCmd.AddCommand(
		listCmd(a),
		sensorsCmd(a),
		infoCmd(a),
		watchCmd(a),
		serviceCmd(a),
	)
	return rootCmd
}
