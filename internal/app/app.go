// Package app wires configuration, logging, the host and the bootstrapper
// into one runnable application instance.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/mainframe/internal/boot"
	"github.com/vk/mainframe/internal/config"
	"github.com/vk/mainframe/internal/ctxlog"
	"github.com/vk/mainframe/internal/hostrt"
	"github.com/vk/mainframe/internal/interp"
	"github.com/vk/mainframe/internal/report"
	"github.com/vk/mainframe/internal/sockchan"
)

// Config holds everything the CLI hands to an App instance.
type Config struct {
	// ConfigPath locates the HCL configuration file. Empty means defaults.
	ConfigPath string
	// ScriptsRoot is the directory the script source discovers under.
	ScriptsRoot string
	// LogLevel and LogFormat override the configuration file when set.
	LogLevel  string
	LogFormat string
}

// App encapsulates the application's dependencies, configuration, and
// lifecycle.
type App struct {
	outW      io.Writer
	logger    *slog.Logger
	cfg       *config.Config
	boot      *boot.Bootstrapper
	transport *sockchan.Transport
}

// New constructs a fully initialized App: configuration loaded, logger
// built, host assembled, priorities registered.
func New(outW io.Writer, appCfg *Config) (*App, error) {
	cfg, err := config.Load(appCfg.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if appCfg.LogLevel != "" {
		cfg.Logging.Level = appCfg.LogLevel
	}
	if appCfg.LogFormat != "" {
		cfg.Logging.Format = appCfg.LogFormat
	}

	logger := newLogger(cfg.Logging.Level, cfg.Logging.Format, outW)
	logger.Debug("Logger configured successfully.")

	src, err := interp.NewDirSource(appCfg.ScriptsRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to open scripts root: %w", err)
	}

	var hostOpts []hostrt.Option
	var transport *sockchan.Transport
	if cfg.Channels != nil {
		transport, err = sockchan.New(sockchan.Options{
			URL:                cfg.Channels.URL,
			Namespace:          cfg.Channels.Namespace,
			InsecureSkipVerify: cfg.Channels.InsecureSkipVerify,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect channel transport: %w", err)
		}
		hostOpts = append(hostOpts, hostrt.WithChannelSystem(transport))
		logger.Debug("Channel transport connected.", "url", cfg.Channels.URL)
	}

	h, err := hostrt.New(src, hostOpts...)
	if err != nil {
		return nil, err
	}

	b, err := boot.New(h, report.New(logger), boot.Config{
		SharedRoot: cfg.SharedRoot,
		LocalRoot:  cfg.LocalRoot,
	})
	if err != nil {
		return nil, err
	}

	for _, lib := range cfg.Libraries {
		if err := b.SetLibraryPriority(lib.Path, lib.Priority); err != nil {
			return nil, err
		}
	}
	logger.Debug("Library priorities registered.", "count", len(cfg.Libraries))

	return &App{
		outW:      outW,
		logger:    logger,
		cfg:       cfg,
		boot:      b,
		transport: transport,
	}, nil
}

// Bootstrapper returns the application's loader instance. Primarily for
// embedding and tests.
func (a *App) Bootstrapper() *boot.Bootstrapper {
	return a.boot
}

// Run executes both load phases.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if err := a.boot.Load(ctx); err != nil {
		return fmt.Errorf("load failed: %w", err)
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

// Close releases external resources such as the channel transport.
func (a *App) Close() {
	if a.transport != nil {
		a.transport.Close()
	}
}
