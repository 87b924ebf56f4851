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

	"github.com/fentz26/sailboard/internal/audit"
	"github.com/fentz26/sailboard/internal/dashboard"
	"github.com/fentz26/sailboard/internal/scheduler"
	"github.com/fentz26/sailboard/internal/store"
)

var (
	listenAddr string
	dbPath     string
	serveFile  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the sailboard daemon",
	Long: `Starts the sailboard daemon, which polls the tenant on an interval, keeps
snapshots in a local SQLite database and serves derived task views over HTTP.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "Listen address for the API server (default from config)")
	serveCmd.Flags().StringVar(&dbPath, "db", "", "Path to SQLite database (default from config)")
	serveCmd.Flags().StringVar(&serveFile, "file", "", "Serve a fixture file instead of the tenant")
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := slog.Default()
	if listenAddr == "" {
		listenAddr = cfg.Daemon.Listen
	}
	if dbPath == "" {
		dbPath = cfg.Daemon.DB
	}

	logger.Info("starting sailboard daemon", "db", dbPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conn, err := openConnector(ctx, serveFile)
	if err != nil {
		return err
	}

	// Initialize store
	s, err := store.New(dbPath)
	if err != nil {
		return err
	}

	// Create and start the refresher
	refresher := scheduler.New(s, audit.NewFetchRecorder(s), conn, &scheduler.Config{
		Interval:      cfg.Daemon.RefreshInterval,
		KeepSnapshots: cfg.Daemon.KeepSnapshots,
		List:          listOptions(),
	}, logger)
	refresher.Start()

	// Create service and server
	service := dashboard.NewService(s, refresher, cfg.View.PageSize)
	server := dashboard.NewServer(service, s, listenAddr, logger)

	// Set up signal handling for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Channel to receive server errors
	serverErr := make(chan error, 1)

	go func() {
		err := server.Start()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case sig := <-sigCh:
		logger.Info("received signal, shutting down", "signal", sig)
	case err := <-serverErr:
		if err != nil {
			logger.Error("server error", "error", err)
			refresher.Stop()
			s.Close()
			return err
		}
	}

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	refresher.Stop()
	if err := s.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}
