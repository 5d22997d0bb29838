package config

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// Config is a snapshot of the merged configuration. Mutating it does not
// modify the manager.
type Config struct {
	History   HistoryConfig   `toml:"history"`
	Selection SelectionConfig `toml:"selection"`
	Log       LogConfig       `toml:"log"`
	Script    ScriptConfig    `toml:"script"`
	View      ViewConfig      `toml:"view"`
}

// HistoryConfig configures the undo history.
type HistoryConfig struct {
	// MaxEntries is the number of undo entries kept.
	MaxEntries int `toml:"max_entries"`
}

// SelectionConfig configures selection commands.
type SelectionConfig struct {
	// MinorChangeThreshold is the number of clickable units a selection
	// change may touch and stay out of the visible history.
	MinorChangeThreshold int `toml:"minor_change_threshold"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string `toml:"level"`
}

// ScriptConfig configures the Lua script runner.
type ScriptConfig struct {
	// InstructionLimit caps the VM instructions per script run. Zero
	// disables the limit.
	InstructionLimit int `toml:"instruction_limit"`

	// Timeout bounds the wall-clock time of a script run. Zero disables it.
	Timeout Duration `toml:"timeout"`
}

// ViewConfig configures the outline view.
type ViewConfig struct {
	// ShowPrimitives lists primitives below their entities.
	ShowPrimitives bool `toml:"show_primitives"`

	// Indent is the number of cells per tree level.
	Indent int `toml:"indent"`
}

// Duration is a time.Duration written as a string such as "5s".
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// LogLevels lists the accepted log levels.
var LogLevels = []string{"debug", "info", "warn", "error"}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		History:   HistoryConfig{MaxEntries: 1000},
		Selection: SelectionConfig{MinorChangeThreshold: 3},
		Log:       LogConfig{Level: "info"},
		Script: ScriptConfig{
			InstructionLimit: 1_000_000,
			Timeout:          Duration{5 * time.Second},
		},
		View: ViewConfig{ShowPrimitives: true, Indent: 2},
	}
}

// Validate checks every setting and returns all failures joined.
func (c Config) Validate() error {
	var errs []error
	rangeCheck := func(path string, v, lo, hi int) {
		if v < lo || v > hi {
			errs = append(errs, &ValidationError{
				Path:    path,
				Message: fmt.Sprintf("must be between %d and %d", lo, hi),
				Value:   v,
				Code:    ErrCodeOutOfRange,
			})
		}
	}

	rangeCheck("history.max_entries", c.History.MaxEntries, 1, 1_000_000)
	rangeCheck("selection.minor_change_threshold", c.Selection.MinorChangeThreshold, 0, 1_000_000)
	rangeCheck("script.instruction_limit", c.Script.InstructionLimit, 0, 1<<30)
	rangeCheck("view.indent", c.View.Indent, 1, 8)

	if !slices.Contains(LogLevels, c.Log.Level) {
		errs = append(errs, &ValidationError{
			Path:    "log.level",
			Message: fmt.Sprintf("must be one of %v", LogLevels),
			Value:   c.Log.Level,
			Code:    ErrCodeInvalidEnum,
		})
	}
	if c.Script.Timeout.Duration < 0 {
		errs = append(errs, &ValidationError{
			Path:    "script.timeout",
			Message: "must not be negative",
			Value:   c.Script.Timeout.Duration,
			Code:    ErrCodeOutOfRange,
		})
	}

	return errors.Join(errs...)
}
