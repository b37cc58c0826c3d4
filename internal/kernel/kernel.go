// Package kernel boots the console subsystem and runs the CPU loop.
//
// New wires the page arena, interrupt controller, console, status bar,
// timer and keyboard together and installs the interrupt handlers. Run is
// the idle loop: it waits for a raised line, a reload request or shutdown,
// and services pending interrupts in between.
package kernel

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dshills/vtcon/internal/cell"
	"github.com/dshills/vtcon/internal/config"
	"github.com/dshills/vtcon/internal/console"
	"github.com/dshills/vtcon/internal/display"
	"github.com/dshills/vtcon/internal/heap"
	"github.com/dshills/vtcon/internal/input"
	"github.com/dshills/vtcon/internal/irq"
	"github.com/dshills/vtcon/internal/logging"
	"github.com/dshills/vtcon/internal/status"
	"github.com/dshills/vtcon/internal/timer"
)

// ReadyAttr is the colour of the boot banner.
var ReadyAttr = cell.MakeAttr(cell.LightMagenta, cell.Black)

// Paletted is implemented by displays whose colours can change at runtime.
type Paletted interface {
	SetPalette(display.Palette)
}

// Option configures a Kernel.
type Option func(*Kernel)

// WithClock sets the time source of the status clock.
func WithClock(now func() time.Time) Option {
	return func(k *Kernel) { k.now = now }
}

// WithoutTicker disables the timer goroutine started by Run. Ticks can
// still be raised by hand.
func WithoutTicker() Option {
	return func(k *Kernel) { k.ticker = false }
}

// Kernel owns every console component.
type Kernel struct {
	cfg  *config.Config
	log  *logging.Logger
	disp display.Display
	now  func() time.Time

	arena *heap.Arena
	ctl   *irq.Controller
	con   *console.Console
	bar   *status.Bar
	sched *timer.Scheduler
	dev   *input.Device
	keys  *input.Dispatcher
	clock *status.Clock
	mem   *status.MemUse

	ticker   bool
	reload   chan *config.Config
	quit     chan struct{}
	quitOnce sync.Once
}

// New boots the console on disp using cfg, which must already be valid.
// The log terminal, when configured, is attached to log.
func New(cfg *config.Config, disp display.Display, log *logging.Logger, opts ...Option) (*Kernel, error) {
	if log == nil {
		log = logging.Discard()
	}
	k := &Kernel{
		cfg:    cfg.Clone(),
		log:    log.WithComponent("kernel"),
		disp:   disp,
		now:    time.Now,
		ticker: true,
		reload: make(chan *config.Config, 1),
		quit:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(k)
	}

	attr, err := cfg.StatusAttr()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBoot, err)
	}

	k.arena = heap.New(cfg.Geometry(), cfg.Console.MaxPages)
	k.ctl = irq.New(log)

	k.con, err = console.New(console.Config{
		Terminals:   cfg.Console.Terminals,
		LogTerminal: cfg.Console.LogTerminal,
		Initial:     cfg.Console.InitialTerminal,
	}, disp, k.arena, k.ctl, log)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBoot, err)
	}
	if w := k.con.LogWriter(); w != nil {
		log.AddOutput(w)
	}

	k.bar = status.New(disp, k.ctl, status.Config{
		Banner:    cfg.Status.Banner,
		BannerCol: cfg.Status.BannerCol,
		Attr:      attr,
	})
	k.clock = status.NewClock(k.bar, k.now)
	k.mem = status.NewMemUse(k.bar, cfg.Status.MemWidth, k.arena.Used)

	k.sched = timer.New(k.ctl, cfg.Timer.Hz, log)
	if _, err := k.sched.Register(timer.Callback{
		Name:   "clock",
		Period: uint64(cfg.Timer.ClockPeriod),
		Func:   k.clock.Update,
	}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBoot, err)
	}
	if _, err := k.sched.Register(timer.Callback{
		Name:   "heap",
		Period: k.sched.TicksFor(cfg.MemInterval()),
		Func:   k.mem.Update,
	}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBoot, err)
	}

	k.dev = input.NewDevice(input.DefaultQueueSize, k.ctl)
	k.keys = input.NewDispatcher(k.con, cfg.Display.Rows, log)
	k.keys.OnQuit(k.Quit)

	k.ctl.Handle(irq.LineTimer, k.sched.Tick)
	k.ctl.Handle(irq.LineKeyboard, func() { k.keys.Drain(k.dev) })
	k.ctl.Handle(irq.LineLog, k.con.FlushLog)

	if err := k.con.PrintColor("Ready!\n", ReadyAttr); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBoot, err)
	}
	k.mem.Update(0)

	k.log.Info("booted %d terminals, %dx%d, %d Hz", cfg.Console.Terminals,
		cfg.Display.Cols, cfg.Display.Rows, cfg.Timer.Hz)
	return k, nil
}

// Console returns the console.
func (k *Kernel) Console() *console.Console { return k.con }

// Bar returns the status bar.
func (k *Kernel) Bar() *status.Bar { return k.bar }

// Controller returns the interrupt controller.
func (k *Kernel) Controller() *irq.Controller { return k.ctl }

// Scheduler returns the periodic timer.
func (k *Kernel) Scheduler() *timer.Scheduler { return k.sched }

// Device returns the keyboard FIFO fed by the display backend.
func (k *Kernel) Device() *input.Device { return k.dev }

// Arena returns the page arena.
func (k *Kernel) Arena() *heap.Arena { return k.arena }

// Config returns the configuration currently in effect.
func (k *Kernel) Config() *config.Config { return k.cfg }

// Quit stops Run. It is safe to call more than once and from any goroutine.
func (k *Kernel) Quit() {
	k.quitOnce.Do(func() { close(k.quit) })
}

// RequestReload queues cfg to be applied by Run. A newer request replaces
// one that has not been applied yet. Safe from any goroutine.
func (k *Kernel) RequestReload(cfg *config.Config) {
	for {
		select {
		case k.reload <- cfg:
			return
		default:
		}
		select {
		case <-k.reload:
		default:
		}
	}
}

// Run is the CPU idle loop. It returns nil on quit and ctx.Err() when ctx
// is cancelled.
func (k *Kernel) Run(ctx context.Context) error {
	if k.ticker {
		done := make(chan struct{})
		defer close(done)
		go k.tick(done)
	}

	for {
		k.ctl.Service()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-k.quit:
			k.log.Info("quit requested")
			return nil
		case cfg := <-k.reload:
			k.Apply(cfg)
		case <-k.ctl.Wake():
		}
	}
}

func (k *Kernel) tick(done <-chan struct{}) {
	t := time.NewTicker(k.sched.Interval())
	defer t.Stop()
	for {
		select {
		case <-done:
			return
		case <-t.C:
			k.ctl.Raise(irq.LineTimer)
		}
	}
}

// Apply switches to next for the settings that can change while running:
// the status banner and colours and the palette. Other differences are
// logged and ignored until restart. It must run on the CPU goroutine.
func (k *Kernel) Apply(next *config.Config) {
	if k.cfg.RequiresRestart(next) {
		k.log.Warn("display, console and timer changes take effect after restart")
	}

	if attr, err := next.StatusAttr(); err != nil {
		k.log.Warn("status colours not applied: %v", err)
	} else if attr != k.bar.Attr() {
		k.bar.SetAttr(attr)
	}
	if next.Status.Banner != k.cfg.Status.Banner || next.Status.BannerCol != k.cfg.Status.BannerCol {
		k.bar.SetBanner(next.Status.Banner, next.Status.BannerCol)
	}

	if p, ok := k.disp.(Paletted); ok {
		pal, err := display.DefaultPalette().WithOverrides(next.Palette)
		if err != nil {
			k.log.Warn("palette not applied: %v", err)
		} else {
			p.SetPalette(pal)
		}
	}

	if lvl := logging.ParseLevel(next.Logging.Level); lvl != k.log.Level() {
		k.log.SetLevel(lvl)
	}

	live := next.Clone()
	live.Display, live.Console, live.Timer = k.cfg.Display, k.cfg.Console, k.cfg.Timer
	k.cfg = live
	k.log.Info("configuration reloaded")
}
