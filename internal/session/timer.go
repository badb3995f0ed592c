package session

import (
	"context"
	"time"
)

// startTimerLocked launches the ticker goroutine for the current Active state.
func (e *Engine) startTimerLocked() {
	if e.cfg.TickInterval <= 0 {
		return
	}

	e.gen++
	gen := e.gen
	stop := make(chan struct{})
	e.stop = stop

	ticker := time.NewTicker(e.cfg.TickInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				e.tickFromTimer(gen)
			}
		}
	}()
}

// stopTimerLocked tears the ticker down synchronously. A tick that is already
// waiting for the lock sees a newer generation and is dropped.
func (e *Engine) stopTimerLocked() {
	if e.stop != nil {
		close(e.stop)
		e.stop = nil
	}
	e.gen++
}

func (e *Engine) tickFromTimer(gen uint64) {
	e.mu.Lock()
	if gen != e.gen {
		e.mu.Unlock()
		return
	}
	e.queueLocked(e.tickLocked(context.Background()))
	e.mu.Unlock()

	e.flush()
}
