package http

import (
	"sync"
	"time"
)

const (
	mutationsPerWindow = 60
	limiterWindow      = time.Minute
	staleClientAge     = 10 * time.Minute
	limiterSweepEvery  = 5 * time.Minute
)

// rateLimiter applies a per-client fixed window to mutation requests.
// Reads are never limited; a ledger dashboard polls far more than it
// writes.
type rateLimiter struct {
	mu      sync.Mutex
	windows map[string]*clientWindow
	done    chan struct{}
	once    sync.Once
}

type clientWindow struct {
	openedAt time.Time
	count    int
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		windows: make(map[string]*clientWindow),
		done:    make(chan struct{}),
	}
	go rl.sweepLoop()
	return rl
}

func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	w := rl.windows[clientIP]
	if w == nil || now.Sub(w.openedAt) > limiterWindow {
		rl.windows[clientIP] = &clientWindow{openedAt: now, count: 1}
		return true
	}
	w.count++
	return w.count <= mutationsPerWindow
}

func (rl *rateLimiter) sweepLoop() {
	ticker := time.NewTicker(limiterSweepEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.sweep(time.Now())
		case <-rl.done:
			return
		}
	}
}

// sweep drops clients whose window has been idle past staleClientAge.
func (rl *rateLimiter) sweep(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, w := range rl.windows {
		if now.Sub(w.openedAt) > staleClientAge {
			delete(rl.windows, ip)
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.once.Do(func() { close(rl.done) })
}
