package learning

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"burnoutd/domain/core"
	"burnoutd/internal/registry"
	"burnoutd/models"
	"burnoutd/ports"

	"go.uber.org/zap"
)

// CycleResult summarizes one learning cycle.
type CycleResult struct {
	Decision       models.TrainingDecision `json:"decision"`
	Trained        bool                    `json:"trained"`
	Reason         string                  `json:"reason,omitempty"`
	VersionLabel   string                  `json:"version_label,omitempty"`
	DatasetVersion string                  `json:"dataset_version,omitempty"`
	Samples        int                     `json:"samples,omitempty"`
	Metrics        models.TrainingMetrics  `json:"metrics,omitempty"`
}

// Worker runs the retrain loop: consult the scheduler, materialize a dataset
// from validated predictions, train a candidate model, hot-swap it into the
// registry and record the new version.
//
// A failure at any stage aborts the whole cycle and leaves the settings
// counters untouched, so the same samples trigger another attempt on the
// next interval.
type Worker struct {
	scheduler *Scheduler
	formatter *DatasetFormatter
	factory   ports.RegressorFactory
	registry  *registry.ModelRegistry
	versions  ports.ModelVersionRepository
	settings  ports.SettingsRepository
	modelPath string
	interval  time.Duration
	logger    *zap.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewWorker creates a learning worker. modelPath is the registry's backing
// model file; trained candidates are persisted there before the swap.
func NewWorker(
	scheduler *Scheduler,
	formatter *DatasetFormatter,
	factory ports.RegressorFactory,
	reg *registry.ModelRegistry,
	versions ports.ModelVersionRepository,
	settings ports.SettingsRepository,
	modelPath string,
	interval time.Duration,
	logger *zap.Logger,
) *Worker {
	return &Worker{
		scheduler: scheduler,
		formatter: formatter,
		factory:   factory,
		registry:  reg,
		versions:  versions,
		settings:  settings,
		modelPath: modelPath,
		interval:  interval,
		logger:    logger,
	}
}

// RunOnce executes a single learning cycle.
func (w *Worker) RunOnce(ctx context.Context) (*CycleResult, error) {
	settings, err := w.settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load retrain settings: %w", err)
	}

	decision := w.scheduler.Decide(settings)
	if decision == models.DecisionSkip {
		return &CycleResult{Decision: decision, Reason: "below training thresholds"}, nil
	}

	// A full retrain consumes the complete validated corpus; only
	// incremental cycles restrict the dataset to reviews newer than the
	// last retrain.
	var since time.Time
	if decision == models.DecisionIncremental && settings.LastRetrainAt != nil {
		since = *settings.LastRetrainAt
	}

	dataset, err := w.formatter.Format(ctx, since)
	if err != nil {
		if errors.Is(err, core.ErrInsufficientData) {
			// The counter says enough samples accumulated, but too few of
			// them survived human review to train on.
			w.logger.Info("learning cycle skipped", zap.Error(err))
			return &CycleResult{Decision: decision, Reason: err.Error()}, nil
		}
		return nil, err
	}

	label, err := w.registry.NextVersionLabel(ctx)
	if err != nil {
		return nil, fmt.Errorf("compute next version label: %w", err)
	}

	candidate := w.factory()
	metrics, err := candidate.Train(ctx, dataset.Samples, w.modelPath)
	if err != nil {
		return nil, fmt.Errorf("train candidate model: %w", err)
	}

	if err := w.registry.LoadModel(ctx, candidate, label); err != nil {
		return nil, fmt.Errorf("swap in %s: %w", label, err)
	}

	if _, err := w.versions.Add(ctx, &models.ModelVersion{
		VersionLabel:  label,
		TrainingMode:  ModeFor(decision),
		DatasetSize:   len(dataset.Samples),
		Accuracy:      metrics.TestR2,
		ModelFilePath: w.modelPath,
	}); err != nil {
		return nil, fmt.Errorf("record model version %s: %w", label, err)
	}

	if err := w.settings.RecordRetrainSuccess(ctx); err != nil {
		return nil, fmt.Errorf("reset retrain counters: %w", err)
	}

	w.logger.Info("model retrained",
		zap.String("version", label),
		zap.String("mode", string(ModeFor(decision))),
		zap.Int("samples", len(dataset.Samples)),
		zap.Float64("test_r2", metrics.TestR2))

	return &CycleResult{
		Decision:       decision,
		Trained:        true,
		VersionLabel:   label,
		DatasetVersion: dataset.Version,
		Samples:        len(dataset.Samples),
		Metrics:        metrics,
	}, nil
}

// Start launches the periodic learning loop.
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
	w.logger.Info("learning worker started", zap.Duration("interval", w.interval))
}

// Stop halts the loop and waits for an in-flight cycle to finish.
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
	w.logger.Info("learning worker stopped")
}

func (w *Worker) loop(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.RunOnce(ctx); err != nil {
				w.logger.Error("learning cycle failed", zap.Error(err))
			}
		}
	}
}
