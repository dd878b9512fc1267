/*
main.go - Application entry point

PURPOSE:
  Composition root for the adjustment ledger server. Builds the logger,
  reads configuration, constructs the persistence gateway, the optional
  audit archive, and the one Store instance, then serves the API with
  graceful shutdown. The Store is constructed here and injected - there is
  no global instance anywhere.

CONFIGURATION (viper):
  Keys (config file ledger.yaml in . or ./config, or env with prefix
  LEDGER_, e.g. LEDGER_PORT):
    port           HTTP server port            (default 8080)
    data_file      primary snapshot path       (default data/adjustments.json)
    backup_file    backup snapshot path        (default data/adjustments.backup.json)
    audit_archive  SQLite audit archive path   (default data/audit_archive.db, "" disables)
    debug          human-readable debug logs   (default false)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM: stop accepting connections, drain for up to 30s,
  flush the ledger, close the archive.

SEE ALSO:
  - api/server.go: router configuration
  - store/snapshot: file persistence
  - store/sqlite: audit archive
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/warp/payroll-ledger/api"
	"github.com/warp/payroll-ledger/ledger"
	"github.com/warp/payroll-ledger/store/snapshot"
	"github.com/warp/payroll-ledger/store/sqlite"
)

func main() {
	cfg := loadConfig()

	logger := newLogger(cfg.GetBool("debug"))
	defer logger.Sync()

	// Persistence gateway
	gateway, err := snapshot.New(cfg.GetString("data_file"), cfg.GetString("backup_file"), logger)
	if err != nil {
		logger.Fatal("failed to initialize persistence", zap.Error(err))
	}

	// Optional audit archive
	var opts []ledger.Option
	if path := cfg.GetString("audit_archive"); path != "" {
		archive, err := sqlite.NewArchive(path)
		if err != nil {
			logger.Fatal("failed to initialize audit archive", zap.Error(err))
		}
		defer archive.Close()
		opts = append(opts, ledger.WithAuditArchiver(archive))
	}

	// The one Store instance, explicitly constructed and injected.
	store := ledger.NewStore(gateway, logger, opts...)

	handler := api.NewHandler(store, logger)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.GetInt("port")),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting",
			zap.Int("port", cfg.GetInt("port")),
			zap.String("data_file", cfg.GetString("data_file")))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	if err := store.Flush(); err != nil {
		logger.Error("final flush failed", zap.Error(err))
	}

	logger.Info("server stopped")
}

func loadConfig() *viper.Viper {
	cfg := viper.New()
	cfg.SetDefault("port", 8080)
	cfg.SetDefault("data_file", "data/adjustments.json")
	cfg.SetDefault("backup_file", "data/adjustments.backup.json")
	cfg.SetDefault("audit_archive", "data/audit_archive.db")
	cfg.SetDefault("debug", false)

	cfg.SetConfigName("ledger")
	cfg.SetConfigType("yaml")
	cfg.AddConfigPath(".")
	cfg.AddConfigPath("./config")

	cfg.SetEnvPrefix("LEDGER")
	cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cfg.AutomaticEnv()

	// A missing config file is fine; defaults and env cover everything.
	if err := cfg.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "config: %v\n", err)
			os.Exit(1)
		}
	}
	return cfg
}

func newLogger(debug bool) *zap.Logger {
	if debug {
		logger, _ := zap.NewDevelopment()
		return logger
	}
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	return logger
}
