// Package app wires configuration, logging and the relay bus into a
// running application.
package app

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dshills/relay/internal/config"
	"github.com/dshills/relay/internal/config/watcher"
	"github.com/dshills/relay/internal/relay"
	"github.com/dshills/relay/internal/relay/pattern"
	"github.com/dshills/relay/internal/schema"
)

// Config reload events are published on this channel and event type by
// the "config" relay. The payload is a config.Config.
const (
	ConfigChannel       = "config"
	ConfigReloadedEvent = "reloaded"
)

// Options configures the application.
type Options struct {
	// ConfigPath is the path to the configuration file. Empty uses defaults
	// and the environment only.
	ConfigPath string

	// DotEnv lists .env files loaded before the environment is read.
	DotEnv []string

	// LogLevel overrides the configured log level when non-empty.
	LogLevel string

	// LogOutput receives log output. Defaults to os.Stderr.
	LogOutput io.Writer

	// Watch reloads the configuration file when it changes.
	Watch bool
}

// Application owns the bus and the ambient services around it.
type Application struct {
	mu sync.RWMutex

	opts     Options
	config   *config.Config
	logger   *slog.Logger
	level    *slog.LevelVar
	bus      *relay.Bus
	reloads  *relay.Emitter
	watcher  *watcher.Watcher
	reloaded atomic.Uint64
	closed   atomic.Bool
}

// New loads configuration and builds the bus.
func New(opts Options) (*Application, error) {
	app := &Application{opts: opts}

	cfg, err := app.loadConfig()
	if err != nil {
		return nil, &ComponentError{Component: "config", Action: "init", Err: err}
	}
	app.config = cfg
	app.logger, app.level = NewLogger(cfg.Log, opts.LogOutput)
	if missing := unforbidden(cfg.Relay.ForbiddenCharacters); missing != "" {
		app.logger.Warn("forbidden characters relaxed, names may contain reserved characters",
			"forbidden_characters", cfg.Relay.ForbiddenCharacters,
			"allowed", missing,
		)
	}

	app.bus = relay.NewBus(
		relay.WithBusLogger(app.logger),
		relay.WithBindingDefaults(
			cfg.Relay.DefaultChannel,
			cfg.Relay.DefaultEventType,
			cfg.Relay.ForbiddenCharacters,
		),
		relay.WithDispatcherOptions(
			relay.WithHandlerTimeout(cfg.Relay.HandlerTimeout),
		),
	)

	app.reloads, err = app.bus.NewRelay("config").Emitter("reloaded",
		relay.OnChannel(ConfigChannel),
		relay.OnEventType(ConfigReloadedEvent),
		relay.WithSchema(schema.TypeOf[config.Config]()),
	)
	if err != nil {
		_ = app.bus.Close(context.Background())
		return nil, &ComponentError{Component: "bus", Action: "init", Err: err}
	}

	if opts.Watch && opts.ConfigPath != "" {
		if err := app.startWatcher(); err != nil {
			_ = app.bus.Close(context.Background())
			return nil, &ComponentError{Component: "watcher", Action: "init", Err: err}
		}
	}

	app.logger.Info("application started",
		"config", opts.ConfigPath,
		"log_level", cfg.Log.Level,
		"handler_timeout", cfg.Relay.HandlerTimeout,
	)
	return app, nil
}

// unforbidden returns the reserved characters missing from forbidden.
func unforbidden(forbidden string) string {
	var missing strings.Builder
	for _, c := range pattern.DefaultForbidden {
		if !strings.ContainsRune(forbidden, c) {
			missing.WriteRune(c)
		}
	}
	return missing.String()
}

func (app *Application) loadConfig() (*config.Config, error) {
	var lopts []config.LoadOption
	if len(app.opts.DotEnv) > 0 {
		lopts = append(lopts, config.WithDotEnv(app.opts.DotEnv...))
	}

	cfg, err := config.Load(app.opts.ConfigPath, lopts...)
	if err != nil {
		return nil, err
	}
	if app.opts.LogLevel != "" {
		cfg.Log.Level = app.opts.LogLevel
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func (app *Application) startWatcher() error {
	w, err := watcher.New(watcher.WithLogger(app.logger))
	if err != nil {
		return err
	}
	if err := w.Watch(app.opts.ConfigPath); err != nil {
		w.Stop()
		return err
	}
	w.OnChange(app.handleFileChange)
	if err := w.Start(); err != nil {
		w.Stop()
		return err
	}
	app.watcher = w
	return nil
}

// handleFileChange reloads the configuration after the file changes.
// Only the log level takes effect without a restart.
func (app *Application) handleFileChange(ev watcher.Event) {
	if ev.Op == watcher.OpRemove || ev.Op == watcher.OpRename {
		app.logger.Warn("config file removed, keeping current settings", "path", ev.Path)
		return
	}
	if err := app.Reload(); err != nil {
		app.logger.Error("config reload failed", "path", ev.Path, "error", err)
	}
}

// Reload re-reads the configuration, applies the log level and publishes
// the new configuration on ConfigChannel. Other settings are reported
// when they differ and apply on the next start.
func (app *Application) Reload() error {
	if app.closed.Load() {
		return ErrClosed
	}

	cfg, err := app.loadConfig()
	if err != nil {
		return err
	}

	app.mu.Lock()
	old := app.config
	app.config = cfg
	app.mu.Unlock()

	app.level.Set(ParseLogLevel(cfg.Log.Level))
	app.reloaded.Add(1)

	if old.Relay != cfg.Relay || old.Log.Format != cfg.Log.Format {
		app.logger.Warn("config changed, restart to apply relay or format settings")
	}
	app.logger.Info("config reloaded", "log_level", cfg.Log.Level)

	if err := app.reloads.Emit(context.Background(), *cfg); err != nil {
		return &ComponentError{Component: "bus", Action: "publish reload", Err: err}
	}
	return nil
}

// Config returns the current configuration.
func (app *Application) Config() config.Config {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return *app.config
}

// Logger returns the application logger.
func (app *Application) Logger() *slog.Logger { return app.logger }

// Bus returns the relay bus.
func (app *Application) Bus() *relay.Bus { return app.bus }

// Reloads returns how many times the configuration has been reloaded.
func (app *Application) Reloads() uint64 { return app.reloaded.Load() }

// Close stops the watcher and drains the bus within ctx.
func (app *Application) Close(ctx context.Context) error {
	if !app.closed.CompareAndSwap(false, true) {
		return nil
	}

	if app.watcher != nil {
		app.watcher.Stop()
	}

	start := time.Now()
	err := app.bus.Close(ctx)
	stats := app.bus.Dispatcher().Stats()
	app.logger.Info("application stopped",
		"emitted", stats.Emitted,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed,
		"panicked", stats.Panicked,
		"drain", time.Since(start),
	)
	if err != nil {
		return &ComponentError{Component: "bus", Action: "close", Err: err}
	}
	return nil
}
