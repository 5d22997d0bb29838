// Package app wires configuration, logging, metrics, the Lua runner and the
// outline view around one document and runs them.
package app

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dshills/mapforge/internal/config"
	"github.com/dshills/mapforge/internal/document"
	"github.com/dshills/mapforge/internal/plugin/lua"
	"github.com/dshills/mapforge/internal/view/outline"
	"github.com/gdamore/tcell/v2"
)

// Application owns the document and every component working on it.
type Application struct {
	mu sync.Mutex

	opts    Options
	config  *config.Manager
	logger  *Logger
	metrics *Metrics

	doc    *document.Document
	runner *lua.Runner

	// Set while the outline runs.
	view *outline.View
	loop *outline.Loop

	running atomic.Bool
	closed  bool
}

// Options configures the application.
type Options struct {
	// ConfigPath is the path to the configuration file. The file is
	// optional.
	ConfigPath string

	// LogLevel overrides the configured log level.
	LogLevel string

	// ScriptPath is a Lua script run before anything else.
	ScriptPath string

	// TUI opens the outline view.
	TUI bool

	// Dump writes a YAML snapshot of the document to Stdout.
	Dump bool

	// Metrics writes the metrics to Stdout before exiting.
	Metrics bool

	// Stdout receives dumps, metrics and script output. Defaults to os.Stdout.
	Stdout io.Writer

	// Stderr receives log output. Defaults to os.Stderr.
	Stderr io.Writer

	// Screen is the terminal used by the outline. A nil screen opens the
	// real terminal. The screen must not be initialized.
	Screen tcell.Screen
}

// New loads the configuration and creates the components.
func New(opts Options) (*Application, error) {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	app := &Application{opts: opts}
	if err := app.bootstrap(); err != nil {
		return nil, err
	}
	return app, nil
}

// bootstrap initializes all components in dependency order.
func (app *Application) bootstrap() error {
	// 1. Config
	var cfgOpts []config.Option
	if app.opts.ConfigPath != "" {
		cfgOpts = append(cfgOpts, config.WithFile(app.opts.ConfigPath))
	}
	app.config = config.New(cfgOpts...)
	if err := app.config.Load(context.Background()); err != nil {
		return NewComponentError("config", "load", err)
	}
	if app.opts.LogLevel != "" {
		if err := app.config.Set("log.level", app.opts.LogLevel); err != nil {
			return NewComponentError("config", "set log level", err)
		}
	}
	cfg := app.config.Current()

	// 2. Logging and metrics
	app.logger = NewLogger(LoggerConfig{
		Level:  ParseLogLevel(cfg.Log.Level),
		Output: app.opts.Stderr,
		Prefix: "mapforge",
	})
	app.metrics = NewMetrics()

	// 3. Document
	app.doc = document.New(
		document.WithName(DefaultDocumentName),
		document.WithHistoryLimit(cfg.History.MaxEntries),
		document.WithMinorChangeThreshold(cfg.Selection.MinorChangeThreshold),
		document.WithLogger(app.logger.WithComponent("document")),
	)
	buildStarterScene(app.doc)
	app.metrics.Observe(app.doc)

	// 4. Scripting
	app.runner = lua.NewRunner(app.doc,
		lua.WithExecutionTimeout(cfg.Script.Timeout.Duration),
		lua.WithInstructionLimit(int64(cfg.Script.InstructionLimit)),
		lua.WithOutput(app.opts.Stdout),
		lua.WithLogger(app.logger.WithComponent("script")),
	)

	// 5. Reloads
	app.config.OnChange(app.onConfigChange)
	app.config.OnError(func(err error) {
		app.logger.Warn("config reload failed, keeping previous settings: %v", err)
	})

	app.logger.Debug("application initialized (config %s)", app.config.Path())
	return nil
}

// Config returns the current configuration.
func (app *Application) Config() config.Config { return app.config.Current() }

// Document returns the document.
func (app *Application) Document() *document.Document { return app.doc }

// Logger returns the application logger.
func (app *Application) Logger() *Logger { return app.logger }

// Metrics returns the metrics.
func (app *Application) Metrics() *Metrics { return app.metrics }

// Run performs the configured steps in order: script, outline, dump and
// metrics. It returns when the last step is done.
func (app *Application) Run(ctx context.Context) error {
	app.mu.Lock()
	closed := app.closed
	app.mu.Unlock()
	if closed {
		return ErrClosed
	}
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	if app.opts.ScriptPath != "" {
		if err := app.RunScript(ctx, app.opts.ScriptPath); err != nil {
			return err
		}
	}
	if app.opts.TUI {
		if err := app.runOutline(ctx); err != nil {
			return err
		}
	}
	if app.opts.Dump {
		if err := app.doc.Dump(app.opts.Stdout); err != nil {
			return NewOperationError("dump", app.doc.Name(), err)
		}
	}
	if app.opts.Metrics {
		if err := app.metrics.WriteText(app.opts.Stdout); err != nil {
			return NewOperationError("write metrics", "", err)
		}
	}
	return nil
}

// RunScript runs the Lua script at path against the document.
func (app *Application) RunScript(ctx context.Context, path string) error {
	start := time.Now()
	err := app.runner.RunFile(ctx, path)
	app.metrics.ObserveScript(time.Since(start), err)
	if err != nil {
		return NewOperationError("run script", path, err)
	}
	app.logger.Info("ran script %s in %v", path, time.Since(start).Round(time.Millisecond))
	return nil
}

// runOutline shows the outline until the user quits or ctx is done. The
// configuration file is watched meanwhile.
func (app *Application) runOutline(ctx context.Context) error {
	screen := app.opts.Screen
	if screen == nil {
		s, err := tcell.NewScreen()
		if err != nil {
			return NewComponentError("outline", "open terminal", errors.Join(ErrNoScreen, err))
		}
		screen = s
	}
	if err := screen.Init(); err != nil {
		return NewComponentError("outline", "init terminal", err)
	}
	defer screen.Fini()

	cfg := app.config.Current()
	view := outline.New(app.doc, viewOptions(cfg))
	defer view.Close()
	loop := outline.NewLoop(screen, view)

	app.mu.Lock()
	app.view, app.loop = view, loop
	app.mu.Unlock()
	defer func() {
		app.mu.Lock()
		app.view, app.loop = nil, nil
		app.mu.Unlock()
	}()

	// Reloads are posted to the loop; stop them before the loop goes away.
	if app.config.Path() != "" {
		if err := app.config.Watch(ctx); err != nil {
			app.logger.Warn("config reload disabled: %v", err)
		}
		defer app.config.Unwatch()
	}

	app.logger.Info("outline started")
	err := loop.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Post runs fn on the outline goroutine. It returns false when the outline
// is not running or its queue is full.
func (app *Application) Post(fn func()) bool {
	app.mu.Lock()
	loop := app.loop
	app.mu.Unlock()
	if loop == nil {
		return false
	}
	return loop.Post(fn)
}

// onConfigChange hands a new configuration to the goroutine that owns the
// document. Without a running outline it applies it directly.
func (app *Application) onConfigChange(_, cfg config.Config) {
	app.mu.Lock()
	loop := app.loop
	app.mu.Unlock()
	if loop == nil {
		app.apply(cfg)
		return
	}
	if !loop.Post(func() { app.apply(cfg) }) {
		app.logger.Warn("config reload dropped: outline queue full")
	}
}

// apply updates the components from cfg.
func (app *Application) apply(cfg config.Config) {
	app.logger.SetLevel(ParseLogLevel(cfg.Log.Level))
	app.doc.History().SetMaxEntries(cfg.History.MaxEntries)
	app.doc.SetMinorChangeThreshold(cfg.Selection.MinorChangeThreshold)
	app.runner.State().SetLimits(cfg.Script.Timeout.Duration, int64(cfg.Script.InstructionLimit))

	app.mu.Lock()
	view := app.view
	app.mu.Unlock()
	if view != nil {
		view.SetOptions(viewOptions(cfg))
	}
	app.logger.Info("configuration applied")
}

func viewOptions(cfg config.Config) outline.Options {
	return outline.Options{
		ShowPrimitives: cfg.View.ShowPrimitives,
		Indent:         cfg.View.Indent,
	}
}

// Close releases the runner, the document and the config watcher.
func (app *Application) Close() error {
	app.mu.Lock()
	if app.closed {
		app.mu.Unlock()
		return nil
	}
	app.closed = true
	app.mu.Unlock()

	app.runner.Close()
	app.doc.Close()
	if err := app.config.Close(); err != nil {
		return NewComponentError("config", "close", err)
	}
	app.logger.Debug("application closed")
	return nil
}
