package backtest

import (
	"context"
	"runtime"
	"sync"
	"time"
)

// WorkerPool runs per-symbol simulations in parallel. Symbols are
// independent and share no mutable state, so results are deterministic
// regardless of scheduling.
type WorkerPool struct {
	workerCount int
	jobQueue    chan SimulationJob
	resultQueue chan SimulationOutcome
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
}

// SimulationJob is a single symbol's simulation task.
type SimulationJob struct {
	Symbol string
	Params SimulationParams
}

// SimulationOutcome is the result of one simulation job.
type SimulationOutcome struct {
	Symbol   string
	Result   *SimulationResult
	Err      error
	Duration time.Duration
}

// NewWorkerPool creates a pool with the given worker count; 0 or negative
// means one worker per CPU.
func NewWorkerPool(workerCount, jobBufferSize int) *WorkerPool {
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerPool{
		workerCount: workerCount,
		jobQueue:    make(chan SimulationJob, jobBufferSize),
		resultQueue: make(chan SimulationOutcome, jobBufferSize),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start starts the workers.
func (wp *WorkerPool) Start() {
	for i := 0; i < wp.workerCount; i++ {
		wp.wg.Add(1)
		go wp.worker()
	}
}

// Stop drains the pool gracefully.
func (wp *WorkerPool) Stop() {
	close(wp.jobQueue)
	wp.wg.Wait()
	close(wp.resultQueue)
	wp.cancel()
}

// Submit queues a simulation job.
func (wp *WorkerPool) Submit(job SimulationJob) error {
	select {
	case wp.jobQueue <- job:
		return nil
	case <-wp.ctx.Done():
		return wp.ctx.Err()
	}
}

// Results returns the channel completed jobs arrive on.
func (wp *WorkerPool) Results() <-chan SimulationOutcome {
	return wp.resultQueue
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()
	for {
		select {
		case job, ok := <-wp.jobQueue:
			if !ok {
				return
			}
			start := time.Now()
			result, err := Simulate(job.Params)
			outcome := SimulationOutcome{
				Symbol:   job.Symbol,
				Result:   result,
				Err:      err,
				Duration: time.Since(start),
			}
			select {
			case wp.resultQueue <- outcome:
			case <-wp.ctx.Done():
				return
			}
		case <-wp.ctx.Done():
			return
		}
	}
}
