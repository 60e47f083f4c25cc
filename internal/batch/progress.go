package batch

import (
	"sync"
	"sync/atomic"
	"time"

	"bvh-worldpos/internal/log"
)

// progressInterval is how often a running conversion reports its rate.
var progressInterval = 2 * time.Second

// progress logs frames/sec while a run is in flight.
type progress struct {
	total     int
	processed atomic.Int64
	start     time.Time
	done      chan struct{}
	wg        sync.WaitGroup
}

func startProgress(total int) *progress {
	p := &progress{total: total, start: time.Now(), done: make(chan struct{})}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(progressInterval)
		defer ticker.Stop()
		for {
			select {
			case <-p.done:
				return
			case <-ticker.C:
				n := p.processed.Load()
				if n > 0 {
					rate := float64(n) / time.Since(p.start).Seconds()
					log.Info("solving frames", "done", n, "total", p.total, "frames_per_sec", rate)
				}
			}
		}
	}()
	return p
}

func (p *progress) add(n int) { p.processed.Add(int64(n)) }

func (p *progress) stop() {
	close(p.done)
	p.wg.Wait()
}
