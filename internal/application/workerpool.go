package application

import "context"

// WorkerPool is a fixed-size pool of goroutines draining a channel of
// enqueued work, the literal form of spec.md §5's "worker tier pulling from
// a task queue" — mirroring the teacher's ExecutionManager/DAGExecutor
// worker-pool shape without a third-party job-queue library (none appears in
// the retrieved corpus).
type WorkerPool struct {
	queue chan func(ctx context.Context)
	done  chan struct{}
}

// NewWorkerPool starts size worker goroutines listening on a queue with the
// given buffer depth.
func NewWorkerPool(size, queueDepth int) *WorkerPool {
	p := &WorkerPool{
		queue: make(chan func(ctx context.Context), queueDepth),
		done:  make(chan struct{}),
	}
	for i := 0; i < size; i++ {
		go p.worker()
	}
	return p
}

func (p *WorkerPool) worker() {
	for {
		select {
		case work, ok := <-p.queue:
			if !ok {
				return
			}
			work(context.Background())
		case <-p.done:
			return
		}
	}
}

// Enqueue implements Dispatcher.
func (p *WorkerPool) Enqueue(work func(ctx context.Context)) {
	p.queue <- work
}

// Stop signals every worker goroutine to exit once it is idle.
func (p *WorkerPool) Stop() {
	close(p.done)
}
