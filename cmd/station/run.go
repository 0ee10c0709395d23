// DIM Station - decentralized instant-messaging relay
// Copyright (C) 2025 dimchat
//
// This file is part of DIM Station.
//
// DIM Station is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// DIM Station is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with DIM Station. If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dimchat/station/config"
	"github.com/dimchat/station/health"
	"github.com/dimchat/station/internal/logger"
	"github.com/dimchat/station/internal/metrics"
	"github.com/dimchat/station/station"
)

var configPath string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the station and block until shutdown",
	RunE:  runStation,
}

func init() {
	runCmd.Flags().StringVarP(&configPath, "config", "c", "station.yaml", "path to the station config file")
	rootCmd.AddCommand(runCmd)
}

func runStation(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := buildLogger(cfg)

	st, err := station.New(cfg, station.PermissiveVerifier{}, log)
	if err != nil {
		return fmt.Errorf("build station: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := st.Start(ctx); err != nil {
		return fmt.Errorf("start station: %w", err)
	}
	log.Info("station started", logger.String("host", cfg.Station.Host), logger.Int("port", cfg.Station.Port))

	if cfg.Metrics != nil && cfg.Metrics.Enabled {
		go func() {
			addr := fmt.Sprintf(":%d", cfg.Metrics.Port)
			if err := metrics.StartServer(addr); err != nil && err != http.ErrServerClosed {
				log.Warn("metrics server stopped", logger.Field{Key: "error", Value: err.Error()})
			}
		}()
	}

	if cfg.Health != nil && cfg.Health.Enabled {
		checker := health.NewHealthChecker(5 * time.Second)
		go serveHealth(ctx, checker, cfg, log)
	}

	<-ctx.Done()
	log.Info("station shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return st.Shutdown(shutdownCtx)
}

func serveHealth(ctx context.Context, checker *health.HealthChecker, cfg *config.Config, log *logger.StructuredLogger) {
	mux := http.NewServeMux()
	mux.HandleFunc(cfg.Health.Path, func(w http.ResponseWriter, r *http.Request) {
		status := checker.GetOverallStatus(r.Context())
		if status != health.StatusHealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		fmt.Fprintf(w, `{"status":%q}`, status)
	})
	srv := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Health.Port), Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Warn("health server stopped", logger.Field{Key: "error", Value: err.Error()})
	}
}

func buildLogger(cfg *config.Config) *logger.StructuredLogger {
	level := logger.InfoLevel
	if cfg.Logging != nil {
		switch cfg.Logging.Level {
		case "debug":
			level = logger.DebugLevel
		case "warn":
			level = logger.WarnLevel
		case "error":
			level = logger.ErrorLevel
		}
	}

	output := os.Stdout
	if cfg.Logging != nil && cfg.Logging.Output == "file" && cfg.Logging.FilePath != "" {
		if f, err := os.OpenFile(cfg.Logging.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err == nil {
			return logger.NewLogger(f, level)
		}
	}
	return logger.NewLogger(output, level)
}
