package console

import (
	"sync"

	"github.com/dshills/vtcon/internal/cell"
	"github.com/dshills/vtcon/internal/irq"
	"github.com/dshills/vtcon/internal/logging"
)

const defaultLogBuffer = 64 << 10

// LogWriter buffers logger output for the log terminal. Writes may come from
// any goroutine; they are queued and the log line is raised. The console
// copies the queue onto the log terminal in FlushLog, which the kernel
// installs as the log line's handler. Output that does not fit in the
// buffer is dropped and counted.
type LogWriter struct {
	mu      sync.Mutex
	queue   []logEntry
	size    int
	limit   int
	dropped uint64

	ctl *irq.Controller
}

type logEntry struct {
	attr cell.Attr
	text string
}

func newLogWriter(ctl *irq.Controller, limit int) *LogWriter {
	return &LogWriter{ctl: ctl, limit: limit}
}

// Write queues p in the default colour.
func (w *LogWriter) Write(p []byte) (int, error) {
	return w.WriteLevel(logging.LevelInfo, p)
}

// WriteLevel queues p in the colour for level.
func (w *LogWriter) WriteLevel(level logging.Level, p []byte) (int, error) {
	w.mu.Lock()
	if w.size+len(p) > w.limit {
		w.dropped++
		w.mu.Unlock()
		return len(p), nil
	}
	w.queue = append(w.queue, logEntry{attr: levelAttr(level), text: string(p)})
	w.size += len(p)
	w.mu.Unlock()

	w.ctl.Raise(irq.LineLog)
	return len(p), nil
}

// Dropped returns the number of log lines lost.
func (w *LogWriter) Dropped() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dropped
}

func (w *LogWriter) take() []logEntry {
	w.mu.Lock()
	defer w.mu.Unlock()

	q := w.queue
	w.queue = nil
	w.size = 0
	return q
}

func (w *LogWriter) drop(n int) {
	w.mu.Lock()
	w.dropped += uint64(n)
	w.mu.Unlock()
}

func levelAttr(level logging.Level) cell.Attr {
	switch level {
	case logging.LevelDebug:
		return cell.MakeAttr(cell.DarkGray, cell.Black)
	case logging.LevelWarn:
		return cell.MakeAttr(cell.Yellow, cell.Black)
	case logging.LevelError:
		return cell.MakeAttr(cell.LightRed, cell.Black)
	default:
		return cell.DefaultAttr
	}
}

// LogWriter returns the writer feeding the log terminal, or nil when the
// console has none.
func (c *Console) LogWriter() *LogWriter {
	return c.klog
}

// FlushLog copies queued log output onto the log terminal. Failures are
// not logged, since that would queue more output for the same terminal;
// the rest of the queue is dropped instead.
func (c *Console) FlushLog() {
	if c.klog == nil {
		return
	}
	q := c.klog.take()
	for i, e := range q {
		if err := c.Write(c.logTerm, e.text, e.attr); err != nil {
			c.klog.drop(len(q) - i)
			return
		}
	}
}
