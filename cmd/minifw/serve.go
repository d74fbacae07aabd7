package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bernotieno/mini-framework/internal/config"
	"github.com/bernotieno/mini-framework/pkg/devtools"
	"github.com/bernotieno/mini-framework/pkg/persist"
	"github.com/bernotieno/mini-framework/pkg/state"
)

func serveCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run an engine with the inspection server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to minifw.yaml")
	return cmd
}

func runServe(configPath string) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	opts := append(cfg.EngineOptions(), state.WithLogger(logger))
	eng := state.New(opts...)

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Persist.Path != "" {
		fs, err := persist.NewFileStore(cfg.Persist.Dir, logger)
		if err != nil {
			return err
		}
		p := persist.New(eng, fs, cfg.Persist.Path, cfg.Persist.Key,
			persist.WithLogger(logger))

		// Restore previous state if a blob exists.
		if err := p.Load(ctx); err != nil {
			logger.Info("no persisted state to restore", "key", cfg.Persist.Key)
		}
		p.Start()
		defer p.Stop()

		if cfg.Persist.Watch {
			if err := p.WatchInto(ctx, fs); err != nil {
				return err
			}
			logger.Info("watching persisted blob for external edits",
				"dir", cfg.Persist.Dir, "key", cfg.Persist.Key)
		}
	}

	if cfg.Devtools.Disabled {
		logger.Info("inspection server disabled, engine idle until signaled")
		<-ctx.Done()
		return nil
	}

	srv := &http.Server{
		Addr:    cfg.Devtools.Addr,
		Handler: devtools.New(eng, devtools.WithLogger(logger)).Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("inspection server listening", "addr", cfg.Devtools.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
