package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	// Embedded zoneinfo keeps DISPLAY_TIMEZONE working on images without tzdata.
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/wolfman30/patient-portal/internal/api/router"
	"github.com/wolfman30/patient-portal/internal/app/bootstrap"
	appconfig "github.com/wolfman30/patient-portal/internal/config"
	"github.com/wolfman30/patient-portal/pkg/logging"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "portal",
		Short: "Patient schedule portal",
	}
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the portal HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := appconfig.Load()
			applyFlags(cmd, cfg)
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().String("port", "", "HTTP port (overrides PORT)")
	cmd.Flags().String("backend", "", "Clinic backend origin (overrides BACKEND_ORIGIN)")
	return cmd
}

func applyFlags(cmd *cobra.Command, cfg *appconfig.Config) {
	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.Port = port
	}
	if origin, _ := cmd.Flags().GetString("backend"); origin != "" {
		cfg.BackendOrigin = origin
	}
}

func serve(ctx context.Context, cfg *appconfig.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting patient portal",
		"env", cfg.Env,
		"port", cfg.Port,
		"backend", cfg.BackendOrigin,
		"version", version,
	)

	store, closeStore, err := bootstrap.BuildSessionStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn("failed to close session store", "error", err)
		}
	}()

	metricsHandler, portalMetrics := setupPortalMetrics()
	portalHandler, err := bootstrap.BuildPortalHandler(cfg, store, portalMetrics, logger)
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	limiter := bootstrap.BuildRateLimiter(cfg)
	go bootstrap.RunRateLimiterJanitor(runCtx, limiter, time.Minute, 3*time.Minute, logger)

	r := router.New(&router.Config{
		Logger:             logger,
		Portal:             portalHandler,
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimiter:        limiter,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)
	select {
	case <-quit:
	case err := <-errCh:
		logger.Error("server error", "error", err)
		return err
	}

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		return err
	}

	logger.Info("server stopped")
	return nil
}
