// Package main is the entry point for the Hostscope telemetry agent.
// It loads configuration, wires the collectors into the scheduler and runs
// the collection loop in the foreground until a signal arrives or an update
// script takes over.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Guliveer/hostscope/internal/autostart"
	"github.com/Guliveer/hostscope/internal/collector"
	"github.com/Guliveer/hostscope/internal/config"
	"github.com/Guliveer/hostscope/internal/firewall"
	"github.com/Guliveer/hostscope/internal/metrics"
	"github.com/Guliveer/hostscope/internal/parser"
	"github.com/Guliveer/hostscope/internal/platform"
	"github.com/Guliveer/hostscope/internal/scheduler"
	"github.com/Guliveer/hostscope/internal/sender"
	"github.com/Guliveer/hostscope/internal/store"
	"github.com/Guliveer/hostscope/internal/updater"
)

var (
	// version is set at build time via -ldflags.
	version = "dev"

	configPath  = pflag.StringP("config", "c", "", "Path to configuration file")
	serverURL   = pflag.String("url", "", "Collector URL (overrides config)")
	token       = pflag.String("token", "", "Machine token (overrides config)")
	once        = pflag.Bool("once", false, "Run one collection cycle and exit")
	install     = pflag.Bool("install", false, "Install and start the systemd service")
	uninstall   = pflag.Bool("uninstall", false, "Stop and remove the systemd service")
	showVersion = pflag.BoolP("version", "v", false, "Show version and exit")
)

func main() {
	os.Exit(run())
}

func run() int {
	pflag.Parse()

	if *showVersion {
		fmt.Printf("hostscope-agent %s\n", version)
		return 0
	}

	var paths []string
	if *configPath != "" {
		paths = append(paths, *configPath)
	}
	cfg, err := config.LoadLayered(config.CLIOverrides{URL: *serverURL, Token: *token}, embeddedConfig, paths...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	logger := initLogger(cfg)
	defer logger.Sync()

	p := platform.New(cfg.Collection.CommandTimeout.Duration)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *uninstall {
		mgr := autostart.NewSystemd(p, cfg.Store.Dir, logger)
		if err := mgr.Uninstall(ctx); err != nil {
			logger.Error("Uninstall failed", zap.Error(err))
			return 1
		}
		logger.Info("Service removed", zap.String("service", mgr.ServiceName()))
		return 0
	}

	// Validate configuration (includes URL, token, and HTTPS enforcement)
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", zap.Error(err))
		return 1
	}

	if *install {
		return installService(ctx, p, cfg, logger)
	}

	logger.Info("Starting Hostscope Agent",
		zap.String("version", version),
		zap.String("platform", p.Name()),
		zap.String("server", cfg.Server.URL))

	sched, err := buildScheduler(cfg, p, logger)
	if err != nil {
		logger.Error("Failed to initialize agent", zap.Error(err))
		return 1
	}

	if *once {
		return exitCode(sched.RunOnce(ctx), logger)
	}

	// Handle OS signals for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	done := make(chan error, 1)
	go func() {
		done <- sched.Run(ctx)
	}()

	select {
	case sig := <-sigCh:
		logger.Info("Received signal, shutting down",
			zap.String("signal", sig.String()))
		cancel()
		err = <-done
	case err = <-done:
	}
	return exitCode(err, logger)
}

func exitCode(err error, logger *zap.Logger) int {
	switch {
	case err == nil:
		logger.Info("Agent stopped")
		return 0
	case errors.Is(err, updater.ErrHandedOff):
		logger.Info("Exiting for update")
		return 0
	default:
		logger.Error("Agent failed", zap.Error(err))
		return 1
	}
}

// buildScheduler initializes all components and registers the collectors
// on their cadence.
func buildScheduler(cfg *config.Config, p platform.Platform, logger *zap.Logger) (*scheduler.Scheduler, error) {
	st, err := store.New(cfg.Store.Dir, logger)
	if err != nil {
		return nil, err
	}

	m := metrics.New()

	daily := collector.NewRegistry(logger.Named("daily"))
	daily.OnFailure(func(name string, _ error) { m.CollectorFailed(name) })
	daily.Register(collector.NewHardwareCollector(p, logger))
	daily.Register(collector.NewOSInfoCollector(p))
	daily.Register(collector.NewAccountCollector(p, cfg.Collection.PasswdPath, cfg.Collection.DisabledShells, logger))
	daily.Register(collector.NewLoginCollector(p, logger))
	inspector := firewall.NewInspector(p, parser.IptablesLayout(cfg.Firewall.IptablesLayout), logger)
	daily.Register(collector.NewFirewallCollector(inspector))

	periodic := collector.NewRegistry(logger.Named("periodic"))
	periodic.OnFailure(func(name string, _ error) { m.CollectorFailed(name) })
	periodic.Register(collector.NewCPUCollector(logger))
	periodic.Register(collector.NewMemoryCollector())
	periodic.Register(collector.NewDiskCollector(logger))
	periodic.Register(collector.NewNetworkCollector())
	periodic.Register(collector.NewSensorCollector(logger))
	periodic.Register(collector.NewBootCollector())
	periodic.Register(collector.NewSessionCollector())
	periodic.Register(collector.NewPublicIPCollector(cfg.Collection.PublicIPURL, cfg.Collection.PublicIPTimeout.Duration, logger))
	periodic.Register(collector.NewServiceCollector(p, logger))

	return scheduler.New(scheduler.Deps{
		Daily:    daily,
		Periodic: periodic,
		Store:    st,
		Sender:   sender.New(cfg, version, logger),
		Updater:  updater.New(version, cfg.Update, logger),
		Metrics:  m,
	}, cfg, logger), nil
}

func installService(ctx context.Context, p platform.Platform, cfg *config.Config, logger *zap.Logger) int {
	exe, err := os.Executable()
	if err != nil {
		logger.Error("Cannot locate agent binary", zap.Error(err))
		return 1
	}

	cfgPath := *configPath
	if cfgPath == "" {
		cfgPath = config.Locate()
	}
	if cfgPath != "" {
		if abs, err := filepath.Abs(cfgPath); err == nil {
			cfgPath = abs
		}
	}

	mgr := autostart.NewSystemd(p, cfg.Store.Dir, logger)
	if err := mgr.Install(ctx, exe, cfgPath); err != nil {
		logger.Error("Install failed", zap.Error(err))
		return 1
	}
	logger.Info("Service installed", zap.String("service", mgr.ServiceName()))
	return 0
}

// initLogger creates a zap logger based on the configuration.
// It outputs to both console (human-readable) and optionally a JSON log file.
func initLogger(cfg *config.Config) *zap.Logger {
	level, err := zapcore.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	// Console output (human-readable)
	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(os.Stdout),
		level,
	)

	cores := []zapcore.Core{consoleCore}

	// File output (structured JSON, if configured)
	if cfg.Logging.File != "" {
		file, err := os.OpenFile(cfg.Logging.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640)
		if err == nil {
			fileCore := zapcore.NewCore(
				zapcore.NewJSONEncoder(encoderConfig),
				zapcore.AddSync(file),
				level,
			)
			cores = append(cores, fileCore)
		}
	}

	return zap.New(zapcore.NewTee(cores...))
}
