package stats

import (
	"fmt"
	"sync"
	"time"

	"github.com/montanaflynn/stats"
)

// Tlatency is a digest of transfer latencies.
type Tlatency struct {
	mu sync.Mutex
	us []float64
}

func (l *Tlatency) Record(d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.us = append(l.us, float64(d.Nanoseconds())/1e3)
}

func (l *Tlatency) N() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.us)
}

func (l *Tlatency) Percentile(p float64) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.us) == 0 {
		return 0
	}
	v, err := stats.Percentile(l.us, p)
	if err != nil {
		return 0
	}
	return v
}

func (l *Tlatency) String() string {
	return fmt.Sprintf("{p50 %.1fus p90 %.1fus p99 %.1fus n %v}",
		l.Percentile(50), l.Percentile(90), l.Percentile(99), l.N())
}
