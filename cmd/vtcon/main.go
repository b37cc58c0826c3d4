// Package main is the entry point for the vtcon console.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/dshills/vtcon/internal/config"
	"github.com/dshills/vtcon/internal/config/watcher"
	"github.com/dshills/vtcon/internal/display"
	"github.com/dshills/vtcon/internal/input"
	"github.com/dshills/vtcon/internal/kernel"
	"github.com/dshills/vtcon/internal/logging"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

type options struct {
	configPath string
	logLevel   string
	headless   bool
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
		return 1
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	if opts.headless {
		cfg.Display.Backend = config.BackendMemory
	}
	if cfg.Display.Backend == config.BackendAuto {
		cfg.Display.Backend = config.BackendMemory
		if term.IsTerminal(int(os.Stdout.Fd())) && term.IsTerminal(int(os.Stdin.Fd())) {
			cfg.Display.Backend = config.BackendTcell
		}
	}

	serial, closeSerial, err := openSerial(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open log file: %v\n", err)
		return 1
	}
	defer closeSerial()

	log := logging.New(logging.Config{
		Level:   logging.ParseLevel(cfg.Logging.Level),
		Outputs: []io.Writer{serial},
		Prefix:  "vtcon",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Display.Backend == config.BackendTcell {
		return runScreen(ctx, cfg, opts, log)
	}
	return runHeadless(ctx, cfg, opts, log)
}

// runScreen drives a real terminal through tcell.
func runScreen(ctx context.Context, cfg *config.Config, opts options, log *logging.Logger) int {
	pal, err := display.DefaultPalette().WithOverrides(cfg.Palette)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	scr, err := display.OpenScreen(cfg.Display.Cols, cfg.Display.Rows, pal, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open screen: %v\n", err)
		return 1
	}
	defer scr.Close()

	k, err := kernel.New(cfg, scr, log)
	if err != nil {
		scr.Close()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	go scr.PollEvents(k.Device())

	stopWatch := watchConfig(opts.configPath, k, log)
	defer stopWatch()

	if err := k.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		scr.Close()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// runHeadless types stdin into the console as key presses and prints the
// final frame to stdout when input ends.
func runHeadless(ctx context.Context, cfg *config.Config, opts options, log *logging.Logger) int {
	mem := display.NewMemory(cfg.Display.Cols, cfg.Display.Rows)
	k, err := kernel.New(cfg, mem, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	stopWatch := watchConfig(opts.configPath, k, log)
	defer stopWatch()

	go func() {
		if err := feed(ctx, os.Stdin, k.Device()); err != nil {
			log.Warn("reading stdin: %v", err)
		}
		k.Quit()
	}()

	err = k.Run(ctx)
	// Deliver whatever was queued between the last service and quit.
	k.Controller().Service()
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if err := mem.Dump(os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// feed pushes r into dev one key at a time, waiting while the FIFO is full.
func feed(ctx context.Context, r io.Reader, dev *input.Device) error {
	br := bufio.NewReader(r)
	for {
		ch, _, err := br.ReadRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		ev := input.RuneEvent(ch, 0)
		switch ch {
		case '\n':
			ev = input.KeyEvent(input.KeyEnter, 0)
		case '\r':
			continue
		}
		for !dev.Push(ev) {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Millisecond):
			}
		}
	}
}

// watchConfig reloads the configuration file when it changes. It returns a
// function that stops watching.
func watchConfig(path string, k *kernel.Kernel, log *logging.Logger) func() {
	if path == "" {
		return func() {}
	}
	w, err := watcher.New(path, watcher.WithLogger(log))
	if err != nil {
		log.Warn("config reload disabled: %v", err)
		return func() {}
	}
	go func() {
		for ev := range w.Events() {
			cfg, err := config.Load(w.Path())
			if err != nil {
				log.Warn("config %s: %v", ev.Op, err)
				continue
			}
			k.RequestReload(cfg)
		}
	}()
	return func() { _ = w.Close() }
}

// openSerial opens the log file, standing in for a serial port. Without a
// file, logs go to stderr in headless mode and nowhere on a real screen.
func openSerial(cfg *config.Config) (io.Writer, func(), error) {
	if cfg.Logging.File == "" {
		if cfg.Display.Backend == config.BackendTcell {
			return io.Discard, func() {}, nil
		}
		return os.Stderr, func() {}, nil
	}
	f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}

func parseFlags() options {
	var opts options
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.configPath, "config", "", "Path to configuration file (.toml or .yaml)")
	flag.StringVar(&opts.configPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides the config")
	flag.BoolVar(&opts.headless, "headless", false, "Use the in-memory display and print the final frame")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "vtcon - text-mode console with paged scrollback\n\n")
		fmt.Fprintf(os.Stderr, "Usage: vtcon [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nKeys:\n")
		fmt.Fprintf(os.Stderr, "  Up/Down, PgUp/PgDn   Scroll the active terminal\n")
		fmt.Fprintf(os.Stderr, "  Alt+0..9, Ctrl+0..9  Switch terminal (0 is the log)\n")
		fmt.Fprintf(os.Stderr, "  Ctrl+L               Clear the screen\n")
		fmt.Fprintf(os.Stderr, "  Ctrl+Q               Quit\n")
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  vtcon -c vtcon.toml\n")
		fmt.Fprintf(os.Stderr, "  printf 'hello\\n' | vtcon -headless\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("vtcon %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	if opts.logLevel != "" && !logging.ValidLevel(opts.logLevel) {
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.logLevel)
		os.Exit(1)
	}

	return opts
}
