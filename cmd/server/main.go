// Package main initializes and starts the account bot server, setting up
// configuration, logging, the field cipher, the account repository, and
// the HTTP API.
package main

import (
	"fmt"
	"time"

	nethttp "net/http"

	"github.com/mirteney/accountbot/internal/automation"
	"github.com/mirteney/accountbot/internal/config"
	"github.com/mirteney/accountbot/internal/db"
	"github.com/mirteney/accountbot/internal/logger"
	"github.com/mirteney/accountbot/internal/repository"
	"github.com/mirteney/accountbot/internal/security"
	"github.com/mirteney/accountbot/internal/server/handler/http"
	"github.com/mirteney/accountbot/internal/service"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

// orNA returns s, or "N/A" if s is empty. Equivalent to cmp.Or(s, "N/A"),
// which needs Go 1.22+ while the build toolchain is 1.21.
func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func main() {
	// Parse command-line, config file, and environment configuration.
	options := config.Parse()
	addr := options.Address

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", orNA(version))
	fmt.Printf("Build date: %s\n", orNA(buildDate))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init("Info"); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	// Derive the field cipher from the operator secret.
	cipher, err := security.NewFieldCipher(options.EncryptionKey)
	if err != nil {
		zapLogger.Fatal("cannot init field cipher", zap.Error(err))
	}
	if cipher.Active() {
		zapLogger.Info("password encryption enabled")
	} else {
		zapLogger.Warn("password encryption disabled; set ENCRYPTION_KEY to enable it")
	}

	// Pick the account repository backend: PostgreSQL when a DSN is
	// configured, the locked file store otherwise.
	var repo repository.AccountRepository
	if options.DatabaseDSN != "" {
		postgresDB, err := db.InitPostgres(options.DatabaseDSN)
		if err != nil {
			zapLogger.Fatal("cannot init database", zap.Error(err))
		}
		repo = repository.NewPostgresAccountRepository(postgresDB, cipher)
		zapLogger.Info("using postgres account store")
	} else {
		repo = repository.NewFileAccountRepository(
			options.StoreFile,
			cipher,
			time.Duration(options.LockTimeout)*time.Millisecond,
		)
		zapLogger.Info("using file account store", zap.String("path", options.StoreFile))
	}

	// Initialize business-logic services and the automation driver.
	accountService := service.NewAccountService(service.NewPasswordGenerator())
	registrar := automation.NewRegistrar(automation.Config{
		TrainingURL: options.TrainingURL,
		SaveURL:     options.SaveURL,
		PageTimeout: time.Duration(options.PageTimeout) * time.Millisecond,
		MaxRetries:  options.MaxRetries,
	}, zapLogger)

	// Create HTTP handlers for the account API.
	accountHandler := &http.AccountHandler{
		Service:    accountService,
		Repo:       repo,
		Encryption: cipher.Active(),
		Log:        zapLogger,
	}
	registerHandler := &http.RegisterHandler{
		Service:   accountService,
		Repo:      repo,
		Registrar: registrar,
		Log:       zapLogger,
	}

	// Build the router with middleware and routes.
	router := http.NewRouter(accountHandler, registerHandler, zapLogger)

	// Create and start the HTTP server.
	server := &nethttp.Server{
		Addr:    addr,
		Handler: router,
	}

	zapLogger.Info("starting HTTP server", zap.String("addr", addr))
	if err := server.ListenAndServe(); err != nil {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
}
