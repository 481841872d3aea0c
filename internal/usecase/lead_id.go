package usecase

import (
	"strconv"
	"sync"
	"time"
)

// LeadIDGenerator issues ids from the creation time in Unix milliseconds.
// When two leads are created within the same millisecond the later one is
// bumped forward, so ids stay unique and increasing within a process.
type LeadIDGenerator struct {
	mu   sync.Mutex
	last int64
}

func (g *LeadIDGenerator) Next(now time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := now.UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return strconv.FormatInt(ms, 10)
}
