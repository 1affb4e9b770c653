package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/phanxgames/tempmap/internal/cache"
	"github.com/phanxgames/tempmap/internal/config"
	"github.com/phanxgames/tempmap/internal/logger"
	"github.com/phanxgames/tempmap/internal/server"
)

func newServeCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve heat map rendering over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadServer(envFile)
			if err := cfg.Validate(); err != nil {
				return err
			}
			log := logger.New(os.Stderr, logger.ParseLevel(cfg.LogLevel))

			cacheManager, err := cache.NewManager(cache.Config{
				ImageCacheSizeMB: cfg.CacheSizeMB,
				ImageTTL:         cfg.CacheTTL,
				RampCacheSize:    cfg.RampCacheSize,
			})
			if err != nil {
				return err
			}
			defer cacheManager.Close()

			router := server.NewRouter(server.RouterConfig{
				Cache:          cacheManager,
				Logger:         log,
				CORSOrigins:    cfg.CORSOrigins,
				MaxPoints:      cfg.MaxPoints,
				MaxSurfaceSide: cfg.MaxSurfaceSide,
				MaxEvaluations: cfg.MaxEvaluations,
			})

			srv := &http.Server{
				Addr:         cfg.Addr(),
				Handler:      router,
				ReadTimeout:  30 * time.Second,
				WriteTimeout: 60 * time.Second,
				IdleTimeout:  120 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				log.Info("server listening", "addr", cfg.Addr())
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			select {
			case err := <-errCh:
				if err != nil {
					return err
				}
			case <-ctx.Done():
			}

			log.Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Warn("server forced to shutdown", "error", err)
			}
			log.Info("server stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&envFile, "env", config.ConstantEnvFilename, "Optional dotenv file")
	return cmd
}
