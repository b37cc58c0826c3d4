package kernel

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/dshills/vtcon/internal/cell"
	"github.com/dshills/vtcon/internal/config"
	"github.com/dshills/vtcon/internal/display"
	"github.com/dshills/vtcon/internal/input"
	"github.com/dshills/vtcon/internal/irq"
	"github.com/dshills/vtcon/internal/logging"
	"github.com/dshills/vtcon/internal/timer"
)

var fixedNow = time.Date(2024, 3, 1, 10, 4, 5, 0, time.UTC)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Display.Rows = 6
	cfg.Display.PageLines = 6
	cfg.Console.Terminals = 4
	return cfg
}

type fixture struct {
	k   *Kernel
	mem *display.Memory
	buf *bytes.Buffer
}

func boot(t *testing.T, cfg *config.Config, opts ...Option) *fixture {
	t.Helper()
	var buf bytes.Buffer
	log := logging.New(logging.Config{Level: logging.LevelInfo, Outputs: []io.Writer{&buf}})
	mem := display.NewMemory(cfg.Display.Cols, cfg.Display.Rows)
	opts = append([]Option{WithClock(func() time.Time { return fixedNow }), WithoutTicker()}, opts...)
	k, err := New(cfg, mem, log, opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return &fixture{k: k, mem: mem, buf: &buf}
}

func TestBoot(t *testing.T) {
	f := boot(t, testConfig())

	if f.mem.Text(0) != "Ready!" {
		t.Errorf("expected Ready! banner, got %q", f.mem.Text(0))
	}
	if f.mem.At(0, 0).Attr() != ReadyAttr {
		t.Errorf("expected Ready! in %#x, got %#x", uint8(ReadyAttr), uint8(f.mem.At(0, 0).Attr()))
	}
	st := f.mem.StatusText()
	if !strings.HasSuffix(st, "Heap used: 960 bytes") {
		t.Errorf("memory use should be shown at boot, got %q", st)
	}
	if strings.Contains(st, "AM") {
		t.Errorf("clock should wait for the first tick, got %q", st)
	}
	if !strings.Contains(st, "vtcon") {
		t.Errorf("banner missing from %q", st)
	}
	if f.k.Scheduler().Len() != 2 {
		t.Errorf("expected 2 periodic callbacks, got %d", f.k.Scheduler().Len())
	}
}

func TestBootFailsOnOutOfMemory(t *testing.T) {
	cfg := testConfig()
	// "Ready!" fills a 6-column row, so its newline needs a second page.
	cfg.Display.Cols = 6
	cfg.Display.PageLines = 2
	cfg.Console.MaxPages = 1
	mem := display.NewMemory(cfg.Display.Cols, cfg.Display.Rows)

	_, err := New(cfg, mem, nil)
	if !errors.Is(err, ErrBoot) {
		t.Fatalf("expected ErrBoot, got %v", err)
	}
}

func TestTimerInterruptUpdatesClock(t *testing.T) {
	f := boot(t, testConfig())

	f.k.Controller().Raise(irq.LineTimer)
	f.k.Controller().Service()

	if got := f.mem.StatusText()[:15]; got != "10:04:05.000 AM" {
		t.Errorf("expected clock, got %q", got)
	}
	if f.k.Scheduler().Ticks() != 1 {
		t.Errorf("expected 1 tick, got %d", f.k.Scheduler().Ticks())
	}
}

func TestKeyboardInterruptEchoes(t *testing.T) {
	f := boot(t, testConfig())

	f.k.Device().Push(input.RuneEvent('h', 0))
	f.k.Device().Push(input.RuneEvent('i', 0))
	f.k.Controller().Service()

	if f.mem.Text(1) != "hi" {
		t.Errorf("expected echo on row 1, got %q", f.mem.Text(1))
	}
}

func TestInterruptsWaitForCriticalSection(t *testing.T) {
	f := boot(t, testConfig())
	ctl := f.k.Controller()

	g := ctl.Acquire()
	f.k.Device().Push(input.RuneEvent('x', 0))
	ctl.Raise(irq.LineTimer)
	if err := f.k.Console().Print("abc"); err != nil {
		t.Fatalf("Print: %v", err)
	}
	ctl.Service()

	if f.mem.Text(1) != "abc" {
		t.Errorf("keyboard handler ran inside the section: %q", f.mem.Text(1))
	}
	if f.k.Scheduler().Ticks() != 0 {
		t.Error("timer handler ran inside the section")
	}

	g.Release()

	if f.mem.Text(1) != "abcx" {
		t.Errorf("expected deferred echo after release, got %q", f.mem.Text(1))
	}
	if f.k.Scheduler().Ticks() != 1 {
		t.Error("timer should be delivered on release")
	}
}

func TestLogTerminal(t *testing.T) {
	f := boot(t, testConfig())
	ctl := f.k.Controller()
	ctl.Service()

	f.k.Device().Push(input.Event{Key: input.KeyRune, Rune: '0', Mod: input.ModAlt})
	f.k.Device().Push(input.RuneEvent('z', 0))
	ctl.Service()

	con := f.k.Console()
	if con.Active() != 0 || !con.ActiveIsLog() {
		t.Fatalf("expected log terminal active, got %d", con.Active())
	}
	if !strings.Contains(f.mem.Text(0), "booted 4 terminals") {
		t.Errorf("expected boot message on log terminal, got %q", f.mem.Text(0))
	}
	for r := 0; r < 6; r++ {
		if f.mem.Text(r) == "z" {
			t.Error("typed characters must be ignored on the log terminal")
		}
	}
	if !strings.Contains(f.buf.String(), "booted") {
		t.Error("log output should still reach the other sinks")
	}
}

func TestRunQuitChord(t *testing.T) {
	f := boot(t, testConfig())

	done := make(chan error, 1)
	go func() { done <- f.k.Run(context.Background()) }()

	f.k.Device().Push(input.Event{Key: input.KeyRune, Rune: 'q', Mod: input.ModCtrl})

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected nil on quit, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop on Ctrl+Q")
	}
}

func TestRunContextCancel(t *testing.T) {
	f := boot(t, testConfig())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- f.k.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}

func TestRunTicker(t *testing.T) {
	cfg := testConfig()
	cfg.Timer.Hz = 1000
	var buf bytes.Buffer
	log := logging.New(logging.Config{Outputs: []io.Writer{&buf}})
	k, err := New(cfg, display.NewMemory(cfg.Display.Cols, cfg.Display.Rows), log)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := k.Scheduler().Register(timer.Callback{
		Name:   "stop",
		Period: 1,
		Phase:  3,
		Func:   func(uint64) { k.Quit() },
	}); err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() { done <- k.Run(context.Background()) }()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("ticker never reached tick 3")
	}
	if k.Scheduler().Ticks() < 4 {
		t.Errorf("expected at least 4 ticks, got %d", k.Scheduler().Ticks())
	}
}

type palettedMemory struct {
	*display.Memory
	pal  display.Palette
	sets int
}

func (p *palettedMemory) SetPalette(pal display.Palette) {
	p.pal = pal
	p.sets++
}

func TestApplyReload(t *testing.T) {
	cfg := testConfig()
	var buf bytes.Buffer
	log := logging.New(logging.Config{Outputs: []io.Writer{&buf}})
	disp := &palettedMemory{Memory: display.NewMemory(cfg.Display.Cols, cfg.Display.Rows)}
	k, err := New(cfg, disp, log, WithoutTicker())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	next := cfg.Clone()
	next.Status.Banner = "reloaded"
	next.Status.BannerCol = 30
	next.Status.Fg, next.Status.Bg = "yellow", "blue"
	next.Palette["blue"] = "#000080"
	next.Display.Rows = 30
	k.Apply(next)

	st := disp.StatusText()
	if st[30:38] != "reloaded" {
		t.Errorf("banner not moved: %q", st)
	}
	if strings.Contains(st, "vtcon") {
		t.Errorf("old banner left behind: %q", st)
	}
	if disp.Status()[0].Attr() != cell.MakeAttr(cell.Yellow, cell.Blue) {
		t.Errorf("status colour not applied: %#x", uint8(disp.Status()[0].Attr()))
	}
	if disp.sets != 1 || disp.pal.Hex(cell.Blue) != "#000080" {
		t.Errorf("palette not applied: sets=%d blue=%s", disp.sets, disp.pal.Hex(cell.Blue))
	}
	if k.Config().Display.Rows != 6 {
		t.Error("geometry must not change while running")
	}
	if k.Config().Status.Banner != "reloaded" {
		t.Error("live settings should be recorded")
	}
	if !strings.Contains(buf.String(), "after restart") {
		t.Errorf("expected restart warning, got %q", buf.String())
	}
}

func TestRequestReloadAppliedByRun(t *testing.T) {
	f := boot(t, testConfig())

	next := f.k.Config().Clone()
	next.Status.Banner = "first"
	f.k.RequestReload(next)
	newer := next.Clone()
	newer.Status.Banner = "second"
	f.k.RequestReload(newer)

	if _, err := f.k.Scheduler().Register(timer.Callback{
		Name:   "stop",
		Period: 1,
		Func:   func(uint64) { f.k.Quit() },
	}); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- f.k.Run(ctx) }()

	// The reload is already queued, so Run either applies it first or
	// picks it up after servicing the tick that requests quit.
	time.Sleep(50 * time.Millisecond)
	f.k.Controller().Raise(irq.LineTimer)
	if err := <-done; err != nil {
		t.Fatalf("Run error = %v", err)
	}

	if f.k.Config().Status.Banner != "second" {
		t.Errorf("expected newest reload to win, got %q", f.k.Config().Status.Banner)
	}
	if !strings.Contains(f.mem.StatusText(), "second") {
		t.Errorf("banner not redrawn: %q", f.mem.StatusText())
	}
}
