// Package main is the entry point for the edgegate edge server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/edgegate/edgegate/internal/config"
	"github.com/edgegate/edgegate/internal/gateway"
	"github.com/edgegate/edgegate/internal/health"
	"github.com/edgegate/edgegate/internal/observability"
)

// Version information (set at build time).
var (
	version   = "dev"
	gitCommit = "unknown"
)

// cliFlags holds command line flags.
type cliFlags struct {
	configPath  string
	logLevel    string
	logFormat   string
	showVersion bool
}

func main() {
	flags := parseFlags()

	if flags.showVersion {
		printVersion()
		return
	}

	logger := initLogger(flags)
	defer func() { _ = logger.Sync() }()

	cfg := loadAndValidateConfig(flags.configPath, logger)

	metrics := observability.NewMetrics("edgegate")
	metrics.SetBuildInfo(version, gitCommit)
	checker := health.NewChecker(version)

	gw, err := gateway.New(cfg,
		gateway.WithGatewayLogger(logger),
		gateway.WithMetrics(metrics),
		gateway.WithHealthChecker(checker),
	)
	if err != nil {
		logger.Fatal("failed to initialize gateway", observability.Error(err))
	}

	run(gw, flags.configPath, cfg, logger)
}

// parseFlags parses command line flags with environment fallbacks.
func parseFlags() cliFlags {
	configPath := flag.String("config", getEnvOrDefault("EDGEGATE_CONFIG_PATH", "configs/edgegate.yaml"),
		"Path to configuration file")
	logLevel := flag.String("log-level", getEnvOrDefault("EDGEGATE_LOG_LEVEL", "info"),
		"Log level (debug, info, warn, error)")
	logFormat := flag.String("log-format", getEnvOrDefault("EDGEGATE_LOG_FORMAT", "json"),
		"Log format (json, console)")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	return cliFlags{
		configPath:  *configPath,
		logLevel:    *logLevel,
		logFormat:   *logFormat,
		showVersion: *showVersion,
	}
}

// printVersion prints version information.
func printVersion() {
	fmt.Printf("edgegate version %s\n", version)
	fmt.Printf("  Git commit: %s\n", gitCommit)
}

// getEnvOrDefault returns the environment variable value or a default.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// initLogger initializes the logger.
func initLogger(flags cliFlags) observability.Logger {
	logger, err := observability.NewLogger(observability.LogConfig{
		Level:  flags.logLevel,
		Format: flags.logFormat,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	observability.SetGlobalLogger(logger)
	return logger
}

// loadAndValidateConfig loads and validates the configuration. An
// invalid route table is fatal: the process exits non-zero rather
// than start serving with it.
func loadAndValidateConfig(configPath string, logger observability.Logger) *config.Config {
	logger.Info("starting edgegate",
		observability.String("version", version),
		observability.String("config", configPath),
	)

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Fatal("failed to load configuration", observability.Error(err))
	}

	validator := config.NewValidator()
	if err := validator.Validate(cfg); err != nil {
		logger.Fatal("invalid configuration", observability.Error(err))
	}
	for _, warning := range validator.Warnings() {
		logger.Warn("configuration warning", observability.String("warning", warning))
	}

	logger.Info("configuration loaded",
		observability.String("listen", cfg.Server.Listen),
		observability.Int("routes", len(cfg.Routes)),
	)

	return cfg
}

// run starts the gateway and blocks until shutdown. SIGHUP and config
// file changes trigger reloads; SIGINT/SIGTERM drain and exit.
func run(gw *gateway.Gateway, configPath string, cfg *config.Config, logger observability.Logger) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := gw.Start(ctx); err != nil {
		logger.Fatal("failed to start gateway", observability.Error(err))
	}

	watcher, err := config.NewWatcher(configPath,
		func(newCfg *config.Config) {
			if reloadErr := gw.Reload(newCfg); reloadErr != nil {
				logger.Error("reload failed, previous routes still serving",
					observability.Error(reloadErr),
				)
			}
		},
		config.WithWatcherLogger(logger),
	)
	if err != nil {
		logger.Warn("config watcher unavailable, hot reload disabled",
			observability.Error(err),
		)
	} else if err := watcher.Start(ctx); err != nil {
		logger.Warn("config watcher failed to start, hot reload disabled",
			observability.Error(err),
		)
	} else {
		defer func() { _ = watcher.Stop() }()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	for sig := range sigCh {
		if sig == syscall.SIGHUP {
			logger.Info("received SIGHUP, reloading configuration")
			reloadFromFile(gw, configPath, logger)
			continue
		}

		logger.Info("shutting down",
			observability.String("signal", sig.String()),
		)
		break
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(),
		cfg.Server.ShutdownTimeout.Duration())
	defer shutdownCancel()

	if err := gw.Stop(shutdownCtx); err != nil {
		logger.Error("shutdown error", observability.Error(err))
		os.Exit(1)
	}
}

// reloadFromFile loads, validates, and applies the configuration file.
func reloadFromFile(gw *gateway.Gateway, configPath string, logger observability.Logger) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error("reload: failed to load configuration", observability.Error(err))
		return
	}
	if err := config.ValidateConfig(cfg); err != nil {
		logger.Error("reload: invalid configuration, keeping previous",
			observability.Error(err),
		)
		return
	}
	if err := gw.Reload(cfg); err != nil {
		logger.Error("reload failed, previous routes still serving",
			observability.Error(err),
		)
	}
}
