package irq

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dshills/vtcon/internal/logging"
)

func TestEnterExitNesting(t *testing.T) {
	c := New(nil)

	c.Enter()
	c.Enter()
	if c.Depth() != 2 || c.Enabled() {
		t.Fatalf("expected depth 2 and masked, got %d", c.Depth())
	}
	if err := c.Exit(); err != nil {
		t.Fatalf("Exit: %v", err)
	}
	if c.Enabled() {
		t.Error("inner Exit must not re-enable delivery")
	}
	if err := c.Exit(); err != nil {
		t.Fatalf("Exit: %v", err)
	}
	if !c.Enabled() {
		t.Error("outermost Exit should re-enable delivery")
	}
}

func TestExitWithoutEnter(t *testing.T) {
	var buf bytes.Buffer
	log := logging.New(logging.Config{Level: logging.LevelDebug, Outputs: []io.Writer{&buf}})
	c := New(log)

	err := c.Exit()
	if !errors.Is(err, ErrNotHeld) {
		t.Fatalf("expected ErrNotHeld, got %v", err)
	}
	if c.Depth() != 0 {
		t.Errorf("misuse must not corrupt depth, got %d", c.Depth())
	}
	if !strings.Contains(buf.String(), "unbalanced") {
		t.Errorf("misuse should be logged, got %q", buf.String())
	}
	if c.Stats().Misuse != 1 {
		t.Errorf("expected misuse count 1, got %d", c.Stats().Misuse)
	}

	// A later balanced pair still works and still delivers.
	fired := 0
	c.Handle(LineTimer, func() { fired++ })
	c.Enter()
	c.Raise(LineTimer)
	_ = c.Exit()
	if fired != 1 {
		t.Errorf("expected delivery after balanced exit, got %d", fired)
	}
}

func TestDeliveryDeferredWhileMasked(t *testing.T) {
	c := New(nil)
	fired := 0
	c.Handle(LineKeyboard, func() { fired++ })

	c.Enter()
	c.Raise(LineKeyboard)
	c.Service()
	if fired != 0 {
		t.Fatal("handler ran while masked")
	}
	if !c.Pending() {
		t.Fatal("line should be pending")
	}
	_ = c.Exit()
	if fired != 1 {
		t.Fatalf("expected handler on exit, got %d", fired)
	}
	if c.Pending() {
		t.Error("line should be cleared after delivery")
	}
}

func TestHandlerRunsMasked(t *testing.T) {
	c := New(nil)
	var depths []int
	c.Handle(LineTimer, func() {
		depths = append(depths, c.Depth())
		// Nested acquisition inside a handler is safe.
		g := c.Acquire()
		depths = append(depths, c.Depth())
		g.Release()
	})

	c.Raise(LineTimer)
	c.Service()

	if len(depths) != 2 || depths[0] != 1 || depths[1] != 2 {
		t.Errorf("unexpected depths inside handler: %v", depths)
	}
	if c.Depth() != 0 {
		t.Errorf("depth should be restored, got %d", c.Depth())
	}
}

func TestRaiseFromHandlerIsDeliveredIteratively(t *testing.T) {
	c := New(nil)
	var order []Line
	c.Handle(LineTimer, func() {
		order = append(order, LineTimer)
		if len(order) < 3 {
			c.Raise(LineKeyboard)
		}
	})
	c.Handle(LineKeyboard, func() {
		order = append(order, LineKeyboard)
		c.Raise(LineTimer)
	})

	c.Raise(LineTimer)
	c.Service()

	want := []Line{LineTimer, LineKeyboard, LineTimer, LineKeyboard, LineTimer}
	if len(order) != len(want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, order)
		}
	}
}

func TestGuardReleaseIdempotent(t *testing.T) {
	c := New(nil)

	func() {
		g := c.Acquire()
		defer g.Release()
		if !g.Held() {
			t.Error("guard should be held")
		}
		g.Release()
		if g.Held() {
			t.Error("guard should be released")
		}
	}()

	if c.Depth() != 0 {
		t.Errorf("double release corrupted depth: %d", c.Depth())
	}
	if c.Stats().Misuse != 0 {
		t.Error("double release should not count as misuse")
	}
}

func TestGuardReleasedOnPanic(t *testing.T) {
	c := New(nil)

	func() {
		defer func() { _ = recover() }()
		g := c.Acquire()
		defer g.Release()
		panic("boom")
	}()

	if c.Depth() != 0 {
		t.Errorf("guard should release on panic, depth %d", c.Depth())
	}
}

func TestRaiseFromGoroutines(t *testing.T) {
	c := New(nil)
	fired := 0
	c.Handle(LineKeyboard, func() { fired++ })

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Raise(LineKeyboard)
		}()
	}
	wg.Wait()

	select {
	case <-c.Wake():
	case <-time.After(time.Second):
		t.Fatal("wake channel not signalled")
	}
	c.Service()

	// Raises coalesce like a level-triggered line.
	if fired != 1 {
		t.Errorf("expected coalesced delivery, got %d", fired)
	}
	if c.Stats().Delivered[LineKeyboard] != 1 {
		t.Errorf("unexpected delivered count %d", c.Stats().Delivered[LineKeyboard])
	}
}

func TestLineString(t *testing.T) {
	if LineTimer.String() != "timer" || LineKeyboard.String() != "keyboard" || Line(5).String() != "irq5" {
		t.Error("unexpected line names")
	}
}
