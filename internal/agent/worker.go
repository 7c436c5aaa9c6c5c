package agent

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// WorkerStats is a snapshot of a worker's counters.
type WorkerStats struct {
	Ticks      int64      `json:"ticks"`
	Processed  int64      `json:"processed"`
	Errors     int64      `json:"errors"`
	LastTickAt *time.Time `json:"last_tick_at,omitempty"`
	Running    bool       `json:"running"`
}

// Worker drives the agent runner on a fixed interval. Each tick drains up to
// batchSize queued logs; a panic or error in one tick is contained and the
// next tick proceeds.
type Worker struct {
	runner       *AgentRunner
	tickInterval time.Duration
	batchSize    int
	logger       *zap.Logger

	ticks      atomic.Int64
	processed  atomic.Int64
	errors     atomic.Int64
	lastTickNs atomic.Int64

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewWorker creates a worker around the given runner.
func NewWorker(runner *AgentRunner, tickInterval time.Duration, batchSize int, logger *zap.Logger) *Worker {
	return &Worker{
		runner:       runner,
		tickInterval: tickInterval,
		batchSize:    batchSize,
		logger:       logger,
	}
}

// Start launches the tick loop. Calling Start on a running worker is a no-op.
func (w *Worker) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})
	w.running = true

	go w.loop(ctx)
	w.logger.Info("agent worker started",
		zap.Duration("tick_interval", w.tickInterval),
		zap.Int("batch_size", w.batchSize))
}

// Stop halts the loop and waits for the in-flight tick to finish.
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	cancel := w.cancel
	done := w.done
	w.mu.Unlock()

	cancel()
	<-done
	w.logger.Info("agent worker stopped",
		zap.Int64("ticks", w.ticks.Load()),
		zap.Int64("processed", w.processed.Load()))
}

// Stats returns a snapshot of the worker's counters.
func (w *Worker) Stats() WorkerStats {
	w.mu.Lock()
	running := w.running
	w.mu.Unlock()

	stats := WorkerStats{
		Ticks:     w.ticks.Load(),
		Processed: w.processed.Load(),
		Errors:    w.errors.Load(),
		Running:   running,
	}
	if ns := w.lastTickNs.Load(); ns > 0 {
		t := time.Unix(0, ns)
		stats.LastTickAt = &t
	}
	return stats
}

func (w *Worker) loop(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	// Immediate first tick so a restart drains the backlog without waiting
	// out the interval.
	w.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *Worker) tick(ctx context.Context) {
	defer func() {
		if rec := recover(); rec != nil {
			w.errors.Add(1)
			w.logger.Error("agent tick panicked", zap.Any("panic", rec))
		}
	}()

	w.ticks.Add(1)
	w.lastTickNs.Store(time.Now().UnixNano())

	outcomes, err := w.runner.ProcessBatch(ctx, w.batchSize)
	w.processed.Add(int64(len(outcomes)))
	if err != nil {
		w.errors.Add(1)
		w.logger.Error("agent tick failed", zap.Error(err))
		return
	}
	if len(outcomes) > 0 {
		w.logger.Info("agent tick complete", zap.Int("processed", len(outcomes)))
	}
}
