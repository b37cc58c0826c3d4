package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "VTCON_"

// Load builds a configuration from defaults, the file at path (skipped when
// path is empty) and the environment, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(EnvPrefix, os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile merges the file at path into c. The format is chosen by
// extension: .toml, .yaml or .yml.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	return c.Decode(path, data)
}

// Decode merges data into c, using path's extension to pick the format.
// Unknown keys are rejected.
func (c *Config) Decode(path string, data []byte) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return c.decodeTOML(path, data)
	case ".yaml", ".yml":
		return c.decodeYAML(path, data)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

func (c *Config) decodeTOML(path string, data []byte) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		perr := &ParseError{Path: path, Message: err.Error(), Err: err}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			perr.Line, perr.Column = derr.Position()
		}
		return perr
	}
	return nil
}

func (c *Config) decodeYAML(path string, data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return &ParseError{Path: path, Message: err.Error(), Err: err}
	}
	return nil
}

// envBinding ties an environment variable suffix to a setting.
type envBinding struct {
	path string
	num  func(*Config) *int
	str  func(*Config) *string
}

var envBindings = map[string]envBinding{
	"DISPLAY_COLS":             {path: "display.cols", num: func(c *Config) *int { return &c.Display.Cols }},
	"DISPLAY_ROWS":             {path: "display.rows", num: func(c *Config) *int { return &c.Display.Rows }},
	"DISPLAY_PAGE_LINES":       {path: "display.page_lines", num: func(c *Config) *int { return &c.Display.PageLines }},
	"DISPLAY_BACKEND":          {path: "display.backend", str: func(c *Config) *string { return &c.Display.Backend }},
	"CONSOLE_TERMINALS":        {path: "console.terminals", num: func(c *Config) *int { return &c.Console.Terminals }},
	"CONSOLE_LOG_TERMINAL":     {path: "console.log_terminal", num: func(c *Config) *int { return &c.Console.LogTerminal }},
	"CONSOLE_INITIAL_TERMINAL": {path: "console.initial_terminal", num: func(c *Config) *int { return &c.Console.InitialTerminal }},
	"CONSOLE_MAX_PAGES":        {path: "console.max_pages", num: func(c *Config) *int { return &c.Console.MaxPages }},
	"STATUS_BANNER":            {path: "status.banner", str: func(c *Config) *string { return &c.Status.Banner }},
	"STATUS_BANNER_COL":        {path: "status.banner_col", num: func(c *Config) *int { return &c.Status.BannerCol }},
	"STATUS_FG":                {path: "status.fg", str: func(c *Config) *string { return &c.Status.Fg }},
	"STATUS_BG":                {path: "status.bg", str: func(c *Config) *string { return &c.Status.Bg }},
	"STATUS_MEM_WIDTH":         {path: "status.mem_width", num: func(c *Config) *int { return &c.Status.MemWidth }},
	"TIMER_HZ":                 {path: "timer.hz", num: func(c *Config) *int { return &c.Timer.Hz }},
	"TIMER_CLOCK_PERIOD":       {path: "timer.clock_period", num: func(c *Config) *int { return &c.Timer.ClockPeriod }},
	"TIMER_MEM_INTERVAL":       {path: "timer.mem_interval", str: func(c *Config) *string { return &c.Timer.MemInterval }},
	"LOG_LEVEL":                {path: "logging.level", str: func(c *Config) *string { return &c.Logging.Level }},
	"LOGGING_LEVEL":            {path: "logging.level", str: func(c *Config) *string { return &c.Logging.Level }},
	"LOGGING_FILE":             {path: "logging.file", str: func(c *Config) *string { return &c.Logging.File }},
}

// ApplyEnv overrides settings from environment variables named prefix plus
// the upper-cased setting path, e.g. VTCON_DISPLAY_ROWS=30. Palette entries
// use VTCON_PALETTE_<COLOR>=#rrggbb. lookup is normally os.LookupEnv;
// environ lists the variables for the palette scan and may be nil.
func (c *Config) ApplyEnv(prefix string, lookup func(string) (string, bool), environ ...string) error {
	for suffix, b := range envBindings {
		val, ok := lookup(prefix + suffix)
		if !ok {
			continue
		}
		if b.str != nil {
			*b.str(c) = val
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return &ValidationError{Path: b.path, Message: "not an integer", Value: val, Code: ErrCodeTypeMismatch}
		}
		*b.num(c) = n
	}

	if environ == nil {
		environ = os.Environ()
	}
	palette := prefix + "PALETTE_"
	for _, kv := range environ {
		name, val, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, palette) {
			continue
		}
		if c.Palette == nil {
			c.Palette = make(map[string]string)
		}
		c.Palette[strings.ToLower(strings.TrimPrefix(name, palette))] = val
	}
	return nil
}
