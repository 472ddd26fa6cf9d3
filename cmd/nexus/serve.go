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

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ah-its-andy/anclora-nexus/internal/api"
	"github.com/ah-its-andy/anclora-nexus/internal/converter"
	"github.com/ah-its-andy/anclora-nexus/internal/db"
	"github.com/ah-its-andy/anclora-nexus/internal/ledger"
	"github.com/ah-its-andy/anclora-nexus/internal/livelog"
	"github.com/ah-its-andy/anclora-nexus/internal/worker"
)

const (
	shutdownTimeout = 20 * time.Second
	cancelTimeout   = 5 * time.Second
	livelogMaxAge   = time.Hour
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the conversion workers",
	Long: `Serve opens the job database, registers the configured builtin converters,
starts the worker pool and serves the HTTP API until SIGINT or SIGTERM. Jobs
left pending or running by a previous process are queued again on start.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, cat, err := loadCatalog()
		if err != nil {
			return err
		}
		logger := cfg.Logger()
		gin.SetMode(cfg.GinMode)
		logger.Info("starting nexus",
			"port", cfg.HTTPPort,
			"db", cfg.DBPath,
			"workers", cfg.MaxWorkers,
			"formats", len(cat.Formats()))

		conn, err := db.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer func() {
			if err := db.Close(conn); err != nil {
				logger.Error("close database", "error", err)
			}
		}()

		reg := converter.NewRegistry()
		converter.RegisterBuiltinConverters(reg, cfg.BuiltinConverters, converter.BuiltinOptions{
			Graph:     cat.Graph,
			Timing:    cat.Router,
			TimeScale: cfg.SimulateTimeScale,
		}, logger)

		credits := ledger.NewMemory(cfg.InitialCredits)
		live := livelog.NewManager()
		queue := worker.NewQueue(cfg.MaxWorkers)
		pool := worker.NewPool(worker.Options{
			Workers:    cfg.MaxWorkers,
			DB:         conn,
			Queue:      queue,
			Registry:   reg,
			Categories: cat,
			Ledger:     credits,
			Live:       live,
			Logger:     logger,
		})

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		pool.Run(ctx)
		if n, err := pool.Recover(); err != nil {
			logger.Warn("recover unfinished jobs", "error", err)
		} else if n > 0 {
			logger.Info("requeued unfinished jobs", "count", n)
		}

		go func() {
			t := time.NewTicker(livelogMaxAge / 4)
			defer t.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-t.C:
					if n := live.Prune(livelogMaxAge); n > 0 {
						logger.Debug("pruned stale live logs", "count", n)
					}
				}
			}
		}()

		server := api.NewServer(api.Deps{
			Catalog:  cat,
			DB:       conn,
			Queue:    queue,
			Ledger:   credits,
			Registry: reg,
			Live:     live,
			Logger:   logger,
		})
		httpSrv := &http.Server{Addr: cfg.HTTPAddr(), Handler: server.Router}
		errCh := make(chan error, 1)
		go func() {
			logger.Info("http server listening", "addr", cfg.HTTPAddr())
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		select {
		case s := <-sigCh:
			logger.Info("received signal, shutting down", "signal", s.String())
		case err := <-errCh:
			logger.Error("http server failed", "error", err)
			stopWorkers(cancel, pool, logger)
			return err
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		queue.Close()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http shutdown", "error", err)
		}
		if err := pool.Drain(shutdownCtx); err != nil {
			logger.Warn("workers did not finish in time, cancelling", "error", err)
			stopWorkers(cancel, pool, logger)
		}
		logger.Info("shutdown complete")
		return nil
	},
}

// stopWorkers cancels in-flight hops and waits for the workers to put their
// jobs back before the database is closed.
func stopWorkers(cancel context.CancelFunc, pool *worker.Pool, logger *slog.Logger) {
	cancel()
	ctx, done := context.WithTimeout(context.Background(), cancelTimeout)
	defer done()
	if err := pool.Drain(ctx); err != nil {
		logger.Error("workers did not stop after cancel", "error", err)
	}
}

func init() {
	serveCmd.Flags().Int("port", 8000, "HTTP port")
	serveCmd.Flags().String("db", "./nexus.db", "sqlite database path")
	serveCmd.Flags().Int("workers", 4, "number of conversion workers")
	_ = viper.BindPFlag("http_port", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("db_path", serveCmd.Flags().Lookup("db"))
	_ = viper.BindPFlag("max_workers", serveCmd.Flags().Lookup("workers"))

	rootCmd.AddCommand(serveCmd)
}
