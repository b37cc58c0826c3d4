// Package heap provides the privileged page allocator backing every
// terminal's scroll history.
//
// The arena hands out fixed-size blocks of cells carved from large slabs, so
// page memory is allocated in a handful of big chunks and pages never move.
// A capacity limit models the finite kernel heap: exhausting it is reported
// as ErrOutOfMemory and callers treat it as fatal for the write in progress.
package heap

import (
	"sync"

	"github.com/dshills/vtcon/internal/cell"
)

// slabPages is how many pages are carved from one slab allocation.
const slabPages = 16

// Arena allocates blank pages of a fixed geometry.
type Arena struct {
	mu sync.Mutex

	geo      cell.Geometry
	blank    cell.Cell
	maxPages int

	slab     []cell.Cell // unused tail of the current slab
	free     [][]cell.Cell
	live     int
	peak     int
	failures int
}

// New creates an arena for pages of geometry g. maxPages <= 0 means
// unlimited.
func New(g cell.Geometry, maxPages int) *Arena {
	return &Arena{
		geo:      g,
		blank:    cell.Blank(cell.DefaultAttr),
		maxPages: maxPages,
	}
}

// Geometry returns the page geometry served by the arena.
func (a *Arena) Geometry() cell.Geometry { return a.geo }

// Alloc returns a zero-initialised (blank, default attribute) page.
func (a *Arena) Alloc() (*cell.Page, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.maxPages > 0 && a.live >= a.maxPages {
		a.failures++
		return nil, &AllocError{Requested: a.geo.PageBytes(), InUse: a.usedLocked(), Err: ErrOutOfMemory}
	}

	var block []cell.Cell
	if n := len(a.free); n > 0 {
		block = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		size := a.geo.PageCells()
		if len(a.slab) < size {
			pages := slabPages
			if a.maxPages > 0 && a.maxPages-a.live < pages {
				pages = a.maxPages - a.live
			}
			a.slab = make([]cell.Cell, pages*size)
		}
		block = a.slab[:size:size]
		a.slab = a.slab[size:]
	}

	cell.Fill(block, a.blank)
	a.live++
	if a.live > a.peak {
		a.peak = a.live
	}
	return cell.NewPage(a.geo, block), nil
}

// Free returns a page to the arena. The page must not be used afterwards.
func (a *Arena) Free(p *cell.Page) {
	if p == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	a.free = append(a.free, p.Cells())
	a.live--
}

// Used returns the number of bytes held by live pages.
func (a *Arena) Used() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.usedLocked()
}

func (a *Arena) usedLocked() uint64 {
	return uint64(a.live) * uint64(a.geo.PageBytes())
}

// Stats is a snapshot of arena usage.
type Stats struct {
	LivePages int
	PeakPages int
	MaxPages  int
	Failures  int
	UsedBytes uint64
}

// Stats returns current usage counters.
func (a *Arena) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Stats{
		LivePages: a.live,
		PeakPages: a.peak,
		MaxPages:  a.maxPages,
		Failures:  a.failures,
		UsedBytes: a.usedLocked(),
	}
}
