package resource

import (
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sys/cpu"
	"golang.org/x/time/rate"
)

// Progress reports how many rows of a long operation have been processed,
// logging at most once per interval no matter how many workers call Add.
type Progress struct {
	logger *slog.Logger
	op     string
	total  int64

	// done is written by every worker; the pads keep it off the lines of
	// the read-only fields above and of every's mutex.
	_    cpu.CacheLinePad
	done atomic.Int64
	_    cpu.CacheLinePad

	every rate.Sometimes
}

// NewProgress creates a Progress for op over total rows. A nil logger disables
// output; counting still works.
func NewProgress(logger *slog.Logger, op string, total int, interval time.Duration) *Progress {
	if interval <= 0 {
		interval = time.Second
	}
	return &Progress{
		logger: logger,
		op:     op,
		total:  int64(total),
		every:  rate.Sometimes{First: 1, Interval: interval},
	}
}

// Add records n more processed rows. Safe for concurrent use.
func (p *Progress) Add(n int) {
	if p == nil {
		return
	}
	done := p.done.Add(int64(n))
	if p.logger == nil {
		return
	}
	p.every.Do(func() {
		p.logger.Debug("progress", "op", p.op, "rows", done, "total", p.total)
	})
}

// Done returns the number of rows recorded so far.
func (p *Progress) Done() int64 {
	if p == nil {
		return 0
	}
	return p.done.Load()
}
