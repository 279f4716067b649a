package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/cryptoresearch/labsite/internal/server"
	"github.com/cryptoresearch/labsite/internal/watch"
	"github.com/spf13/cobra"
)

var (
	servePort  string
	serveWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Build the site and serve it with the annotation API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "listen port (overrides PORT)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "rebuild when content changes")
}

func runServe(cmd *cobra.Command, args []string) error {
	b, cfg, log, err := newBuilder()
	if err != nil {
		return err
	}
	if servePort != "" {
		cfg.Port = servePort
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.NewServer(b, log, cfg)
	rebuild := func(ctx context.Context) error {
		report, err := b.Build(ctx)
		if report != nil {
			srv.SetReport(report)
		}
		return err
	}
	if err := rebuild(ctx); err != nil {
		// The previous output stays served until a rebuild succeeds.
		log.Error("initial build failed", "error", err)
	}

	if serveWatch {
		w, err := watch.New(cfg.ContentDir, cfg.WatchDebounce, rebuild, log)
		if err != nil {
			return err
		}
		go w.Run(ctx)
	}

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting labsite", "port", cfg.Port, "output", cfg.OutputDir, "watch", serveWatch)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
