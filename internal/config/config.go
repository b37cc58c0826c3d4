// Package config loads vtcon settings.
//
// Settings come from three layers, later ones winning: built-in defaults,
// a TOML or YAML file chosen by extension, and VTCON_* environment
// variables. Geometry and terminal layout are fixed once the console has
// booted; the status bar and palette sections may be reloaded while
// running.
package config

import (
	"time"

	"github.com/dshills/vtcon/internal/cell"
)

// Config is the complete configuration.
type Config struct {
	Display DisplayConfig     `toml:"display" yaml:"display"`
	Console ConsoleConfig     `toml:"console" yaml:"console"`
	Status  StatusConfig      `toml:"status" yaml:"status"`
	Timer   TimerConfig       `toml:"timer" yaml:"timer"`
	Logging LoggingConfig     `toml:"logging" yaml:"logging"`
	Palette map[string]string `toml:"palette" yaml:"palette"`
}

// DisplayConfig sets the screen geometry and output backend.
type DisplayConfig struct {
	Cols      int    `toml:"cols" yaml:"cols"`
	Rows      int    `toml:"rows" yaml:"rows"`
	PageLines int    `toml:"page_lines" yaml:"page_lines"`
	Backend   string `toml:"backend" yaml:"backend"` // auto, tcell or memory
}

// ConsoleConfig sets the terminal layout and scrollback capacity.
type ConsoleConfig struct {
	Terminals       int `toml:"terminals" yaml:"terminals"`
	LogTerminal     int `toml:"log_terminal" yaml:"log_terminal"`
	InitialTerminal int `toml:"initial_terminal" yaml:"initial_terminal"`
	// MaxPages caps the page arena; 0 means unlimited.
	MaxPages int `toml:"max_pages" yaml:"max_pages"`
}

// StatusConfig sets the status bar.
type StatusConfig struct {
	Banner    string `toml:"banner" yaml:"banner"`
	BannerCol int    `toml:"banner_col" yaml:"banner_col"` // negative centres
	Fg        string `toml:"fg" yaml:"fg"`
	Bg        string `toml:"bg" yaml:"bg"`
	MemWidth  int    `toml:"mem_width" yaml:"mem_width"`
}

// TimerConfig sets the tick rate and the status refresh periods.
type TimerConfig struct {
	Hz          int    `toml:"hz" yaml:"hz"`
	ClockPeriod int    `toml:"clock_period" yaml:"clock_period"` // ticks
	MemInterval string `toml:"mem_interval" yaml:"mem_interval"` // duration
}

// LoggingConfig sets the log level and the optional serial log file.
type LoggingConfig struct {
	Level string `toml:"level" yaml:"level"`
	File  string `toml:"file" yaml:"file"`
}

// Backends accepted by display.backend.
const (
	BackendAuto   = "auto"
	BackendTcell  = "tcell"
	BackendMemory = "memory"
)

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Display: DisplayConfig{
			Cols:      80,
			Rows:      24,
			PageLines: 24,
			Backend:   BackendAuto,
		},
		Console: ConsoleConfig{
			Terminals:       10,
			LogTerminal:     0,
			InitialTerminal: 1,
		},
		Status: StatusConfig{
			Banner:    "vtcon",
			BannerCol: -1,
			Fg:        "white",
			Bg:        "magenta",
			MemWidth:  24,
		},
		Timer: TimerConfig{
			Hz:          60,
			ClockPeriod: 1,
			MemInterval: "2s",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Palette: map[string]string{},
	}
}

// Geometry returns the page geometry.
func (c *Config) Geometry() cell.Geometry {
	return cell.Geometry{Cols: c.Display.Cols, Rows: c.Display.Rows, PageLines: c.Display.PageLines}
}

// StatusAttr returns the status bar attribute.
func (c *Config) StatusAttr() (cell.Attr, error) {
	fg, err := cell.ParseColor(c.Status.Fg)
	if err != nil {
		return 0, err
	}
	bg, err := cell.ParseColor(c.Status.Bg)
	if err != nil {
		return 0, err
	}
	return cell.MakeAttr(fg, bg), nil
}

// MemInterval returns the heap gauge refresh interval.
func (c *Config) MemInterval() time.Duration {
	d, err := time.ParseDuration(c.Timer.MemInterval)
	if err != nil || d <= 0 {
		return 2 * time.Second
	}
	return d
}

// RequiresRestart reports whether moving from c to next changes settings
// that are fixed after boot.
func (c *Config) RequiresRestart(next *Config) bool {
	return c.Display != next.Display || c.Console != next.Console || c.Timer != next.Timer
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Palette = make(map[string]string, len(c.Palette))
	for k, v := range c.Palette {
		out.Palette[k] = v
	}
	return &out
}
