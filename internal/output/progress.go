package output

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

// Progress tracks and displays probing progress, normally on stderr.
type Progress struct {
	mu        sync.Mutex // serializes drawing with Suspend
	w         io.Writer
	total     atomic.Int64
	completed atomic.Int64
	active    atomic.Int64
	filtered  atomic.Int64
	start     time.Time
	done      chan struct{}
	stopped   chan struct{}
	enabled   bool
}

// NewProgress creates a progress tracker. A disabled tracker still counts
// but never draws. Call Start to begin display updates.
func NewProgress(w io.Writer, total int, enabled bool) *Progress {
	p := &Progress{
		w:       w,
		start:   time.Now(),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		enabled: enabled,
	}
	p.total.Store(int64(total))
	return p
}

// AddTotal raises the expected host count, for hosts found mid-run.
func (p *Progress) AddTotal(n int) {
	p.total.Add(int64(n))
}

// Start begins periodically redrawing the progress line.
func (p *Progress) Start() {
	if !p.enabled {
		close(p.stopped)
		return
	}
	go func() {
		defer close(p.stopped)
		ticker := time.NewTicker(500 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				p.print()
			case <-p.done:
				p.mu.Lock()
				fmt.Fprint(p.w, "\r\033[K")
				p.mu.Unlock()
				return
			}
		}
	}()
}

// Record counts one finished host.
func (p *Progress) Record(active, filtered bool) {
	p.completed.Add(1)
	if active {
		p.active.Add(1)
	}
	if filtered {
		p.filtered.Add(1)
	}
}

// Suspend clears the progress line, runs fn and redraws, so result lines
// written to the same terminal are not interleaved with it.
func (p *Progress) Suspend(fn func()) {
	if !p.enabled {
		fn()
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprint(p.w, "\r\033[K")
	fn()
	p.draw()
}

// Stop clears the progress line and waits for the display goroutine.
func (p *Progress) Stop() {
	close(p.done)
	<-p.stopped
}

// Stats returns the counters gathered so far.
func (p *Progress) Stats() Stats {
	elapsed := time.Since(p.start)
	completed := p.completed.Load()
	s := Stats{
		Total:    int(completed),
		Active:   int(p.active.Load()),
		Filtered: int(p.filtered.Load()),
		Duration: elapsed,
	}
	if secs := elapsed.Seconds(); secs > 0 {
		s.HostsPerSec = float64(completed) / secs
	}
	s.Printed = s.Active - s.Filtered
	return s
}

func (p *Progress) print() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.draw()
}

func (p *Progress) draw() {
	s := p.Stats()
	total := int(p.total.Load())

	pct := float64(0)
	if total > 0 {
		pct = float64(s.Total) / float64(total) * 100
	}

	eta := ""
	if s.HostsPerSec > 0 && s.Total < total {
		remaining := float64(total-s.Total) / s.HostsPerSec
		eta = fmt.Sprintf("ETA: %s", time.Duration(remaining*float64(time.Second)).Round(time.Second))
	}

	fmt.Fprintf(p.w, "\r\033[K[%3.0f%%] %d/%d | %.0f hosts/s | Alive: %d | Filtered: %d | %s",
		pct, s.Total, total, s.HostsPerSec, s.Active, s.Filtered, eta)
}
