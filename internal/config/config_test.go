package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults do not validate: %v", err)
	}
	if cfg.History.MaxEntries != 1000 {
		t.Errorf("MaxEntries = %d, want 1000", cfg.History.MaxEntries)
	}
	if cfg.Selection.MinorChangeThreshold != 3 {
		t.Errorf("MinorChangeThreshold = %d, want 3", cfg.Selection.MinorChangeThreshold)
	}
	if cfg.Script.Timeout.Duration != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", cfg.Script.Timeout)
	}
}

func TestManager_LoadLayers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	writeConfig(t, path, `
[history]
max_entries = 50

[log]
level = "warn"

[script]
timeout = "750ms"
`)
	t.Setenv("MAPFORGE_LOG_LEVEL", "debug")
	t.Setenv("MAPFORGE_VIEW_INDENT", "4")

	m := New(WithFile(path))
	defer m.Close()
	if err := m.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	cfg := m.Current()
	if cfg.History.MaxEntries != 50 {
		t.Errorf("MaxEntries = %d, want 50 from file", cfg.History.MaxEntries)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Level = %q, want debug from env", cfg.Log.Level)
	}
	if cfg.View.Indent != 4 {
		t.Errorf("Indent = %d, want 4 from env", cfg.View.Indent)
	}
	if cfg.Script.Timeout.Duration != 750*time.Millisecond {
		t.Errorf("Timeout = %v, want 750ms", cfg.Script.Timeout)
	}
	if !cfg.View.ShowPrimitives {
		t.Error("ShowPrimitives should keep its default")
	}

	tests := map[string]string{
		"history.max_entries":  LayerFile,
		"log.level":            LayerEnv,
		"view.show_primitives": LayerDefaults,
	}
	for p, want := range tests {
		if got := m.Source(p); got != want {
			t.Errorf("Source(%q) = %q, want %q", p, got, want)
		}
	}
}

func TestManager_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "none.toml")

	m := New(WithFile(path), WithEnvPrefix(""))
	if err := m.Load(context.Background()); err != nil {
		t.Fatalf("optional missing file: %v", err)
	}
	if m.Current() != Default() {
		t.Error("missing file should leave the defaults")
	}

	m = New(WithRequiredFile(path), WithEnvPrefix(""))
	err := m.Load(context.Background())
	if !errors.Is(err, ErrFileNotFound) {
		t.Errorf("Load = %v, want ErrFileNotFound", err)
	}
}

func TestManager_ParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	writeConfig(t, path, "[history\nmax_entries = 1\n")

	m := New(WithFile(path), WithEnvPrefix(""))
	err := m.Load(context.Background())
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("Load = %v, want *ParseError", err)
	}
	if pe.Path != path {
		t.Errorf("Path = %q, want %q", pe.Path, path)
	}
}

func TestManager_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		path    string
		code    ValidationErrorCode
	}{
		{"unknown key", "[history]\nmax = 3\n", "", ErrCodeUnknownSetting},
		{"unknown section", "[colors]\nbg = 1\n", "", ErrCodeUnknownSetting},
		{"out of range", "[history]\nmax_entries = 0\n", "history.max_entries", ErrCodeOutOfRange},
		{"bad level", "[log]\nlevel = \"loud\"\n", "log.level", ErrCodeInvalidEnum},
		{"indent", "[view]\nindent = 20\n", "view.indent", ErrCodeOutOfRange},
		{"wrong type", "[history]\nmax_entries = \"many\"\n", "", ErrCodeTypeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			writeConfig(t, path, tt.content)

			m := New(WithFile(path), WithEnvPrefix(""))
			err := m.Load(context.Background())
			if !errors.Is(err, ErrValidationFailed) {
				t.Fatalf("Load = %v, want a validation error", err)
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("error %T carries no *ValidationError", err)
			}
			if ve.Code != tt.code {
				t.Errorf("Code = %v, want %v", ve.Code, tt.code)
			}
			if tt.path != "" && ve.Path != tt.path {
				t.Errorf("Path = %q, want %q", ve.Path, tt.path)
			}
			if m.Current() != Default() {
				t.Error("failed load should keep the previous configuration")
			}
		})
	}
}

func TestManager_Set(t *testing.T) {
	m := New(WithEnvPrefix(""))
	if err := m.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	var calls int
	m.OnChange(func(old, cfg Config) {
		calls++
		if old.Log.Level != "info" || cfg.Log.Level != "error" {
			t.Errorf("change %q -> %q", old.Log.Level, cfg.Log.Level)
		}
	})

	if err := m.Set("log.level", "error"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if calls != 1 {
		t.Errorf("handler called %d times, want 1", calls)
	}
	if m.Source("log.level") != LayerFlags {
		t.Errorf("Source = %q, want flags", m.Source("log.level"))
	}

	if err := m.Set("log.level", "shout"); err == nil {
		t.Error("invalid value should be rejected")
	}
	if m.Current().Log.Level != "error" {
		t.Errorf("rejected Set changed the level to %q", m.Current().Log.Level)
	}
	if err := m.Set("", 1); err == nil {
		t.Error("empty path should be rejected")
	}
	if calls != 1 {
		t.Errorf("handler called %d times, want 1", calls)
	}
}

func TestManager_Watch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	writeConfig(t, path, "[history]\nmax_entries = 10\n")

	m := New(WithFile(path), WithEnvPrefix(""), WithDebounce(100*time.Millisecond))
	defer m.Close()
	if err := m.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	changes := make(chan Config, 4)
	errs := make(chan error, 4)
	m.OnChange(func(_, cfg Config) { changes <- cfg })
	m.OnError(func(err error) { errs <- err })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := m.Watch(ctx); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	writeConfig(t, path, "[history]\nmax_entries = 20\n")
	select {
	case cfg := <-changes:
		if cfg.History.MaxEntries != 20 {
			t.Errorf("MaxEntries = %d, want 20", cfg.History.MaxEntries)
		}
	case err := <-errs:
		t.Fatalf("reload failed: %v", err)
	case <-time.After(3 * time.Second):
		t.Fatal("no reload")
	}

	writeConfig(t, path, "[history]\nmax_entries = -1\n")
	select {
	case err := <-errs:
		if !strings.Contains(err.Error(), "history.max_entries") {
			t.Errorf("error %q does not name the setting", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no reload error")
	}
	if m.Current().History.MaxEntries != 20 {
		t.Error("invalid reload should keep the last good configuration")
	}
}

func TestManager_Unwatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeConfig(t, path, "[history]\nmax_entries = 10\n")

	m := New(WithFile(path), WithEnvPrefix(""), WithDebounce(20*time.Millisecond))
	defer m.Close()
	if err := m.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	var reloads atomic.Int32
	m.OnChange(func(_, _ Config) { reloads.Add(1) })

	if err := m.Watch(context.Background()); err != nil {
		t.Fatalf("Watch: %v", err)
	}
	m.Unwatch()
	m.Unwatch()

	writeConfig(t, path, "[history]\nmax_entries = 20\n")
	time.Sleep(200 * time.Millisecond)
	if n := reloads.Load(); n != 0 {
		t.Errorf("got %d reloads after Unwatch", n)
	}
	if m.Current().History.MaxEntries != 10 {
		t.Errorf("MaxEntries = %d, want 10", m.Current().History.MaxEntries)
	}
}

func TestManager_Closed(t *testing.T) {
	m := New(WithEnvPrefix(""))
	if err := m.Close(); err != nil {
		t.Fatal(err)
	}
	if err := m.Load(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("Load after Close = %v, want ErrClosed", err)
	}
	if err := m.Watch(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("Watch after Close = %v, want ErrClosed", err)
	}
}

func TestDurationText(t *testing.T) {
	var d Duration
	if err := d.UnmarshalText([]byte("1m30s")); err != nil {
		t.Fatal(err)
	}
	if d.Duration != 90*time.Second {
		t.Errorf("Duration = %v", d.Duration)
	}
	out, _ := d.MarshalText()
	if string(out) != "1m30s" {
		t.Errorf("MarshalText = %q", out)
	}
	if err := d.UnmarshalText([]byte("soon")); err == nil {
		t.Error("expected an error for a bad duration")
	}
}
