package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/desertthunder/favtunes/internal/server"
	"github.com/desertthunder/favtunes/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve runs the HTTP API until SIGINT or SIGTERM.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config, err := r.configFor(cmd)
	if err != nil {
		return err
	}
	if r.catalog == nil {
		if err := config.Validate(); err != nil {
			return err
		}
	}

	engine, closer, err := r.engine(cmd, true)
	if err != nil {
		return err
	}
	defer closer()

	addr := config.Server.Addr()
	if cmd.IsSet("addr") {
		addr = cmd.String("addr")
	}

	logger := shared.WithLogger(r.logger, "component", "http")
	srv := server.NewServer(server.NewAPI(engine, r.metrics, logger), server.ServerOpts{
		Addr:         addr,
		ReadTimeout:  config.Server.ReadTimeout,
		WriteTimeout: config.Server.WriteTimeout,
		Logger:       logger,
	})

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	r.logger.Info("serving", "addr", addr, "storage", config.Storage.Driver, "path", config.Storage.Path)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
