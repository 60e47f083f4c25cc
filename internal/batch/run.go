package batch

import (
	"io"
	"sync"

	"bvh-worldpos/internal/bvh"
	"bvh-worldpos/internal/skeleton"
)

// Sink receives poses in frame order.
type Sink interface {
	WritePose(p skeleton.Pose) error
}

// Run solves every frame with a worker pool and then delivers the poses to
// sink in frame order. If any frame fails, the error of the lowest failing
// frame is returned and nothing reaches the sink.
func Run(workers int, sk *bvh.Skeleton, frames []bvh.Frame, sink Sink) error {
	if workers < 1 {
		workers = 1
	}
	total := len(frames)
	poses := make([]skeleton.Pose, total)
	errs := make([]error, total)

	prog := startProgress(total)

	// Worker pool
	idxChan := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range idxChan {
				poses[idx], errs[idx] = skeleton.Solve(sk, frames[idx])
				prog.add(1)
			}
		}()
	}

	// Send work
	for i := range frames {
		idxChan <- i
	}
	close(idxChan)

	wg.Wait()
	prog.stop()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	for _, p := range poses {
		if err := sink.WritePose(p); err != nil {
			return err
		}
	}
	return nil
}

type solved struct {
	pose skeleton.Pose
	err  error
}

// Stream reads frames from dec as workers consume them and hands poses to
// sink in frame order, reordering completed frames by index. The first
// decode, solve or sink error stops the pipeline and is returned; poses
// already delivered stay delivered.
func Stream(workers int, dec *bvh.Decoder, sink Sink) error {
	sk, hdr, err := dec.Header()
	if err != nil {
		return err
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan bvh.Frame, workers*2)
	results := make(chan solved, workers*2)
	done := make(chan struct{})
	readErr := make(chan error, 1)

	var wg sync.WaitGroup

	// Reader
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(jobs)
		for {
			f, err := dec.Next()
			if err == io.EOF {
				return
			}
			if err != nil {
				readErr <- err
				return
			}
			select {
			case jobs <- f:
			case <-done:
				return
			}
		}
	}()

	// Solvers
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for f := range jobs {
				p, err := skeleton.Solve(sk, f)
				if err != nil {
					p.Frame = f.Index
				}
				select {
				case results <- solved{pose: p, err: err}:
				case <-done:
					return
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	prog := startProgress(hdr.FrameCount)
	defer prog.stop()

	var firstErr error
	abort := func(err error) {
		firstErr = err
		close(done)
	}

	pending := make(map[int]skeleton.Pose)
	next := 0
	for r := range results {
		if firstErr != nil {
			continue
		}
		if r.err != nil {
			abort(r.err)
			continue
		}
		pending[r.pose.Frame] = r.pose
		for {
			p, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			if err := sink.WritePose(p); err != nil {
				abort(err)
				break
			}
			next++
			prog.add(1)
		}
	}

	if firstErr != nil {
		return firstErr
	}
	select {
	case err := <-readErr:
		return err
	default:
	}
	return nil
}
