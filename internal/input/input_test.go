package input

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/dshills/vtcon/internal/irq"
)

type recorder struct {
	calls []string
	log   bool
	err   error
}

func (r *recorder) ScrollUpBy(n int)   { r.calls = append(r.calls, fmt.Sprintf("up %d", n)) }
func (r *recorder) ScrollDownBy(n int) { r.calls = append(r.calls, fmt.Sprintf("down %d", n)) }
func (r *recorder) ScrollToBottom()    { r.calls = append(r.calls, "bottom") }
func (r *recorder) SwitchTo(id int)    { r.calls = append(r.calls, fmt.Sprintf("switch %d", id)) }
func (r *recorder) ActiveIsLog() bool  { return r.log }

func (r *recorder) ClearScreen() error {
	r.calls = append(r.calls, "clear")
	return nil
}

func (r *recorder) PrintChar(c rune) error {
	r.calls = append(r.calls, fmt.Sprintf("print %q", c))
	return r.err
}

func TestDispatchBindings(t *testing.T) {
	tests := []struct {
		name string
		ev   Event
		want []string
	}{
		{"up", KeyEvent(KeyUp, ModNone), []string{"up 1"}},
		{"down", KeyEvent(KeyDown, ModNone), []string{"down 1"}},
		{"page up", KeyEvent(KeyPageUp, ModNone), []string{"up 24"}},
		{"page down", KeyEvent(KeyPageDown, ModNone), []string{"down 24"}},
		{"end", KeyEvent(KeyEnd, ModNone), []string{"bottom"}},
		{"alt digit", RuneEvent('3', ModAlt), []string{"switch 3"}},
		{"ctrl digit", RuneEvent('0', ModCtrl), []string{"switch 0"}},
		{"ctrl l", RuneEvent('l', ModCtrl), []string{"clear"}},
		{"char", RuneEvent('x', ModNone), []string{"bottom", "print 'x'"}},
		{"shifted char", RuneEvent('X', ModShift), []string{"bottom", "print 'X'"}},
		{"enter", KeyEvent(KeyEnter, ModNone), []string{"bottom", "print '\\n'"}},
		{"alt letter", RuneEvent('x', ModAlt), nil},
		{"ctrl other", RuneEvent('z', ModCtrl), nil},
		{"tab", KeyEvent(KeyTab, ModNone), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &recorder{}
			d := NewDispatcher(r, 24, nil)

			handled := d.Dispatch(tt.ev)

			if handled != (len(tt.want) > 0) {
				t.Errorf("expected handled=%v, got %v", len(tt.want) > 0, handled)
			}
			if fmt.Sprint(r.calls) != fmt.Sprint(tt.want) {
				t.Errorf("expected %v, got %v", tt.want, r.calls)
			}
		})
	}
}

func TestDispatchIgnoresTypingOnLogTerminal(t *testing.T) {
	r := &recorder{log: true}
	d := NewDispatcher(r, 24, nil)

	if d.Dispatch(RuneEvent('a', ModNone)) {
		t.Error("typing on the log terminal should be ignored")
	}
	if !d.Dispatch(KeyEvent(KeyUp, ModNone)) {
		t.Error("scrolling the log terminal should work")
	}
	if len(r.calls) != 1 || r.calls[0] != "up 1" {
		t.Errorf("unexpected calls %v", r.calls)
	}
	handled, ignored := d.Stats()
	if handled != 1 || ignored != 1 {
		t.Errorf("expected 1/1, got %d/%d", handled, ignored)
	}
}

func TestDispatchQuit(t *testing.T) {
	r := &recorder{}
	d := NewDispatcher(r, 24, nil)

	if d.Dispatch(RuneEvent('q', ModCtrl)) {
		t.Error("quit without a hook should not be consumed")
	}

	quit := false
	d.OnQuit(func() { quit = true })
	if !d.Dispatch(RuneEvent('q', ModCtrl)) || !quit {
		t.Error("quit hook not called")
	}
}

func TestDispatchPrintErrorStillHandled(t *testing.T) {
	r := &recorder{err: errors.New("out of memory")}
	d := NewDispatcher(r, 24, nil)

	if !d.Dispatch(RuneEvent('a', ModNone)) {
		t.Error("echo should be consumed even if the write fails")
	}
}

func TestDeviceFIFO(t *testing.T) {
	dev := NewDevice(3, nil)

	for _, r := range "abcd" {
		dev.Push(RuneEvent(r, ModNone))
	}
	if dev.Len() != 3 || dev.Dropped() != 1 {
		t.Fatalf("expected 3 queued 1 dropped, got %d/%d", dev.Len(), dev.Dropped())
	}

	var got []rune
	for {
		ev, ok := dev.Pop()
		if !ok {
			break
		}
		got = append(got, ev.Rune)
	}
	if string(got) != "abc" {
		t.Errorf("expected abc, got %q", string(got))
	}

	// Wraps around the ring.
	dev.Push(RuneEvent('e', ModNone))
	dev.Push(RuneEvent('f', ModNone))
	ev, _ := dev.Pop()
	if ev.Rune != 'e' {
		t.Errorf("expected e, got %q", ev.Rune)
	}
}

func TestDevicePushRaisesKeyboard(t *testing.T) {
	ctl := irq.New(nil)
	dev := NewDevice(0, ctl)
	r := &recorder{}
	d := NewDispatcher(r, 24, nil)
	ctl.Handle(irq.LineKeyboard, func() { d.Drain(dev) })

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		dev.Push(RuneEvent('h', ModNone))
		dev.Push(RuneEvent('i', ModNone))
	}()
	wg.Wait()

	ctl.Service()

	want := []string{"bottom", "print 'h'", "bottom", "print 'i'"}
	if fmt.Sprint(r.calls) != fmt.Sprint(want) {
		t.Errorf("expected %v, got %v", want, r.calls)
	}
	if dev.Len() != 0 {
		t.Errorf("device should be drained, %d left", dev.Len())
	}
}

func TestEventString(t *testing.T) {
	tests := []struct {
		ev   Event
		want string
	}{
		{RuneEvent('l', ModCtrl), "C-l"},
		{RuneEvent('3', ModAlt), "A-3"},
		{RuneEvent(' ', ModNone), "Space"},
		{KeyEvent(KeyPageUp, ModShift), "S-PgUp"},
		{KeyEvent(KeyEnter, ModNone), "Enter"},
	}
	for _, tt := range tests {
		if got := tt.ev.String(); got != tt.want {
			t.Errorf("expected %q, got %q", tt.want, got)
		}
	}
}
