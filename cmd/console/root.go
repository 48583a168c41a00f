package main

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/danghamo/peoplerecords/internal/app"
	"github.com/danghamo/peoplerecords/internal/console"
	"github.com/danghamo/peoplerecords/pkg/config"
	"github.com/danghamo/peoplerecords/pkg/logger"
)

type rootOptions struct {
	serve      bool
	configPath string
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "console <file> <file> <file>",
		Short: "Import three record files and list them by name, birthdate or gender",
		Args: func(cmd *cobra.Command, args []string) error {
			return console.ValidatePaths(args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsole(cmd.Context(), opts, args, in, out)
		},
	}

	cmd.SetIn(in)
	cmd.SetOut(out)
	cmd.Flags().BoolVar(&opts.serve, "serve", false, "Also serve the HTTP API over the same records")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "Directory holding config.yaml")
	return cmd
}

func runConsole(ctx context.Context, opts *rootOptions, paths []string, in io.Reader, out io.Writer) error {
	var configPaths []string
	if opts.configPath != "" {
		configPaths = []string{opts.configPath}
	}
	cfg, err := config.Load(configPaths...)
	if err != nil {
		return err
	}

	// stdout belongs to the prompt loop
	log, err := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Log.Level),
		Environment: cfg.Log.Environment,
		Encoding:    cfg.Log.Encoding,
		Output:      os.Stderr,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = log.Sync()
	}()
	logger.SetGlobalLogger(log)

	application, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer application.Close()

	c := console.New(application.Service(), in, out, log)
	if err := c.LoadFiles(ctx, paths); err != nil {
		return err
	}

	if !opts.serve {
		return c.Run(ctx)
	}

	serveCtx, cancel := context.WithCancel(ctx)
	served := make(chan error, 1)
	go func() {
		served <- application.Serve(serveCtx)
	}()

	runErr := c.Run(ctx)
	cancel()
	if err := <-served; err != nil && !errors.Is(err, context.Canceled) {
		log.Error("HTTP API stopped with error", zap.Error(err))
	}
	return runErr
}
