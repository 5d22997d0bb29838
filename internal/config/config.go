package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dshills/mapforge/internal/config/layer"
	"github.com/dshills/mapforge/internal/config/loader"
	"github.com/dshills/mapforge/internal/config/watcher"
	"github.com/pelletier/go-toml/v2"
)

// Layer names.
const (
	LayerDefaults = "defaults"
	LayerFile     = "file"
	LayerEnv      = "env"
	LayerFlags    = "flags"
)

// ChangeHandler is called after a reload changed the configuration.
type ChangeHandler func(old, new Config)

// Manager loads, merges and validates configuration and reloads it when the
// file changes.
type Manager struct {
	mu sync.RWMutex

	layers  *layer.Manager
	fs      loader.FileSystem
	path    string
	require bool
	env     *loader.EnvLoader

	current  Config
	handlers []ChangeHandler
	errorFn  func(error)

	debounce time.Duration
	watcher  *watcher.Watcher
	closed   bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithFile reads the configuration file at path if it exists.
func WithFile(path string) Option {
	return func(m *Manager) { m.path = path }
}

// WithRequiredFile reads the configuration file at path. Load fails with
// ErrFileNotFound if it is missing.
func WithRequiredFile(path string) Option {
	return func(m *Manager) {
		m.path = path
		m.require = true
	}
}

// WithFS sets the file system the file is read from.
func WithFS(fs loader.FileSystem) Option {
	return func(m *Manager) { m.fs = fs }
}

// WithEnvPrefix sets the environment variable prefix. An empty prefix
// disables the environment layer.
func WithEnvPrefix(prefix string) Option {
	return func(m *Manager) {
		if prefix == "" {
			m.env = nil
			return
		}
		m.env = loader.NewEnvLoader(prefix)
	}
}

// WithDebounce sets how long the watcher waits for a file to settle.
func WithDebounce(d time.Duration) Option {
	return func(m *Manager) { m.debounce = d }
}

// New creates a manager. Nothing is read until Load.
func New(opts ...Option) *Manager {
	m := &Manager{
		layers:   layer.NewManager(),
		fs:       loader.DefaultFS(),
		env:      loader.NewEnvLoader(loader.DefaultEnvPrefix),
		current:  Default(),
		debounce: 200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.layers.SetLayer(layer.NewLayerWithData(LayerDefaults, layer.SourceBuiltin, layer.PriorityBuiltin, defaultsMap()))
	m.layers.SetLayer(layer.NewLayer(LayerFlags, layer.SourceArgs, layer.PriorityArgs))
	return m
}

// DefaultPath returns the user configuration file path.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".mapforge", "config.toml")
	}
	return filepath.Join(dir, "mapforge", "config.toml")
}

// Path returns the configuration file path, or "".
func (m *Manager) Path() string { return m.path }

// Load reads every layer and replaces the current configuration. On error
// the current configuration is kept.
func (m *Manager) Load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	if err := m.loadSources(); err != nil {
		m.mu.Unlock()
		return err
	}
	old, cfg, err := m.rebuild()
	handlers := append([]ChangeHandler(nil), m.handlers...)
	m.mu.Unlock()

	if err != nil {
		return err
	}
	if old != cfg {
		for _, h := range handlers {
			h(old, cfg)
		}
	}
	return nil
}

// loadSources refreshes the file and environment layers.
func (m *Manager) loadSources() error {
	if m.path != "" {
		if m.require {
			if _, err := m.fs.Stat(m.path); err != nil {
				if os.IsNotExist(err) {
					return fmt.Errorf("%w: %s", ErrFileNotFound, m.path)
				}
				return fmt.Errorf("reading config file %s: %w", m.path, err)
			}
		}
		data, err := loader.NewFile(m.fs, m.path).Load()
		if err != nil {
			return err
		}
		l := layer.NewLayerWithData(LayerFile, layer.SourceFile, layer.PriorityFile, data)
		l.Path = m.path
		m.layers.SetLayer(l)
	}

	if m.env != nil {
		data, err := m.env.Load()
		if err != nil {
			return fmt.Errorf("loading environment: %w", err)
		}
		m.layers.SetLayer(layer.NewLayerWithData(LayerEnv, layer.SourceEnv, layer.PriorityEnv, data))
	}
	return nil
}

// rebuild decodes the merged layers. Callers hold m.mu.
func (m *Manager) rebuild() (old, cfg Config, err error) {
	old = m.current
	cfg, err = decode(m.layers.Merge())
	if err != nil {
		return old, old, err
	}
	if err := cfg.Validate(); err != nil {
		return old, old, err
	}
	m.current = cfg
	return old, cfg, nil
}

// Current returns the current configuration.
func (m *Manager) Current() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Set overrides a setting in the flags layer, such as "log.level", and
// rebuilds the configuration.
func (m *Manager) Set(path string, value any) error {
	if path == "" || strings.HasPrefix(path, ".") || strings.HasSuffix(path, ".") {
		return &ValidationError{Path: path, Message: "invalid setting path", Code: ErrCodeUnknownSetting}
	}

	m.mu.Lock()
	flags := m.layers.GetLayer(LayerFlags).Clone()
	layer.SetByPath(flags.Data, path, value)
	prev := m.layers.GetLayer(LayerFlags)
	m.layers.SetLayer(flags)

	old, cfg, err := m.rebuild()
	if err != nil {
		m.layers.SetLayer(prev)
		m.mu.Unlock()
		return err
	}
	handlers := append([]ChangeHandler(nil), m.handlers...)
	m.mu.Unlock()

	if old != cfg {
		for _, h := range handlers {
			h(old, cfg)
		}
	}
	return nil
}

// Source returns the name of the layer that supplies path.
func (m *Manager) Source(path string) string {
	return m.layers.WhichLayer(path)
}

// OnChange registers a handler called after the configuration changed.
// Handlers of a watched manager run on the watcher goroutine.
func (m *Manager) OnChange(h ChangeHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers = append(m.handlers, h)
}

// OnError registers a function receiving errors of background reloads.
func (m *Manager) OnError(fn func(error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorFn = fn
}

// Watch reloads the configuration whenever the file changes, until ctx is
// done or the manager is closed.
func (m *Manager) Watch(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	if m.path == "" {
		return errors.New("config: no file to watch")
	}
	if m.watcher != nil {
		return nil
	}

	w, err := watcher.New(
		watcher.WithDebounce(m.debounce),
		watcher.WithErrorHandler(m.reportError),
	)
	if err != nil {
		return fmt.Errorf("starting config watcher: %w", err)
	}
	if err := w.Watch(m.path); err != nil {
		_ = w.Close()
		return fmt.Errorf("watching %s: %w", m.path, err)
	}
	w.OnChange(func(watcher.Event) {
		if err := m.Load(ctx); err != nil {
			m.reportError(err)
		}
	})
	m.watcher = w

	go func() {
		<-ctx.Done()
		m.Unwatch()
	}()
	return nil
}

func (m *Manager) reportError(err error) {
	m.mu.RLock()
	fn := m.errorFn
	m.mu.RUnlock()
	if fn != nil && !errors.Is(err, context.Canceled) {
		fn(err)
	}
}

// Unwatch stops watching the file. Reloads already in progress finish
// before it returns.
func (m *Manager) Unwatch() {
	m.mu.Lock()
	w := m.watcher
	m.watcher = nil
	m.mu.Unlock()
	if w != nil {
		_ = w.Close()
	}
}

// Close stops watching. Further loads fail with ErrClosed.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	w := m.watcher
	m.watcher = nil
	m.mu.Unlock()

	if w != nil {
		return w.Close()
	}
	return nil
}

// decode turns a merged map into a Config, starting from the defaults.
// Unknown settings are rejected.
func decode(data map[string]any) (Config, error) {
	cfg := Default()
	raw, err := toml.Marshal(data)
	if err != nil {
		return cfg, fmt.Errorf("encoding configuration: %w", err)
	}

	dec := toml.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			var errs []error
			for _, de := range strict.Errors {
				errs = append(errs, &ValidationError{
					Path:    strings.Join(de.Key(), "."),
					Message: "unknown setting",
					Code:    ErrCodeUnknownSetting,
				})
			}
			return Default(), errors.Join(errs...)
		}
		return Default(), &ValidationError{
			Path:    "",
			Message: err.Error(),
			Code:    ErrCodeTypeMismatch,
		}
	}
	return cfg, nil
}

func defaultsMap() map[string]any {
	raw, err := toml.Marshal(Default())
	if err != nil {
		panic(fmt.Sprintf("config: encoding defaults: %v", err))
	}
	var data map[string]any
	if err := toml.Unmarshal(raw, &data); err != nil {
		panic(fmt.Sprintf("config: decoding defaults: %v", err))
	}
	return data
}
