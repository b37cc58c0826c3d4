package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/dshills/vtcon/internal/cell"
	"github.com/dshills/vtcon/internal/logging"
)

// MaxTerminals is the number of terminals reachable from the digit keys.
const MaxTerminals = 10

// Validate checks every setting and returns the first failure as a
// *ValidationError.
func (c *Config) Validate() error {
	if err := c.Geometry().Validate(); err != nil {
		var ge *cell.GeometryError
		if errors.As(err, &ge) {
			return &ValidationError{Path: "display." + ge.Field, Message: ge.Reason, Value: ge.Value, Code: ErrCodeOutOfRange}
		}
		return err
	}
	switch c.Display.Backend {
	case BackendAuto, BackendTcell, BackendMemory:
	default:
		return &ValidationError{Path: "display.backend", Message: "must be auto, tcell or memory", Value: c.Display.Backend, Code: ErrCodeInvalidEnum}
	}

	n := c.Console.Terminals
	if n < 1 || n > MaxTerminals {
		return outOfRange("console.terminals", n, fmt.Sprintf("must be between 1 and %d", MaxTerminals))
	}
	if lt := c.Console.LogTerminal; lt < -1 || lt >= n {
		return outOfRange("console.log_terminal", lt, "must be -1 or a terminal id")
	}
	if it := c.Console.InitialTerminal; it < 0 || it >= n {
		return outOfRange("console.initial_terminal", it, "must be a terminal id")
	}
	if c.Console.MaxPages < 0 {
		return outOfRange("console.max_pages", c.Console.MaxPages, "must not be negative")
	}

	for path, name := range map[string]string{"status.fg": c.Status.Fg, "status.bg": c.Status.Bg} {
		if _, err := cell.ParseColor(name); err != nil {
			return &ValidationError{Path: path, Message: "unknown color", Value: name, Code: ErrCodeInvalidEnum}
		}
	}
	if w := c.Status.MemWidth; w <= 0 || w > c.Display.Cols {
		return outOfRange("status.mem_width", w, "must fit the screen width")
	}

	if c.Timer.Hz <= 0 {
		return outOfRange("timer.hz", c.Timer.Hz, "must be positive")
	}
	if c.Timer.ClockPeriod <= 0 {
		return outOfRange("timer.clock_period", c.Timer.ClockPeriod, "must be positive")
	}
	if d, err := time.ParseDuration(c.Timer.MemInterval); err != nil || d <= 0 {
		return &ValidationError{Path: "timer.mem_interval", Message: "must be a positive duration", Value: c.Timer.MemInterval, Code: ErrCodePatternMismatch}
	}

	if !logging.ValidLevel(c.Logging.Level) {
		return &ValidationError{Path: "logging.level", Message: "must be debug, info, warn or error", Value: c.Logging.Level, Code: ErrCodeInvalidEnum}
	}

	for name, hex := range c.Palette {
		path := "palette." + name
		if _, err := cell.ParseColor(name); err != nil {
			return &ValidationError{Path: path, Message: "unknown color", Value: name, Code: ErrCodeInvalidEnum}
		}
		if _, err := colorful.Hex(hex); err != nil {
			return &ValidationError{Path: path, Message: "must be #rrggbb", Value: hex, Code: ErrCodePatternMismatch}
		}
	}
	return nil
}

func outOfRange(path string, v int, msg string) *ValidationError {
	return &ValidationError{Path: path, Message: msg, Value: v, Code: ErrCodeOutOfRange}
}
