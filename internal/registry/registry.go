package registry

import (
	"context"
	"os"
	"regexp"
	"strconv"
	"sync"
	"time"

	"burnoutd/domain/core"
	"burnoutd/models"
	"burnoutd/ports"

	"go.uber.org/zap"
)

const (
	// versionPrefix is the fixed textual label a version integer is embedded in.
	versionPrefix = "Burnout Predictor v"

	// DefaultReloadMinInterval rate-limits mtime checks so hot prediction
	// paths do not stat the model file on every call.
	DefaultReloadMinInterval = 5 * time.Second
)

var versionPattern = regexp.MustCompile(`v(\d+)$`)

// ModelRegistry holds the process-wide active regressor and its version
// label, supporting atomic hot-swap. The mutex guards only the handle
// snapshot and swap; predictions run outside it against a stable snapshot.
type ModelRegistry struct {
	factory  ports.RegressorFactory
	versions ports.ModelVersionRepository
	logger   *zap.Logger

	sourcePath        string
	reloadMinInterval time.Duration
	now               func() time.Time

	mu              sync.Mutex
	active          ports.Regressor
	version         string
	sourceModTime   time.Time
	lastReloadCheck time.Time
}

// NewModelRegistry creates a registry with no active model. sourcePath is the
// model file reloads watch; it may not exist yet.
func NewModelRegistry(
	factory ports.RegressorFactory,
	versions ports.ModelVersionRepository,
	sourcePath string,
	reloadMinInterval time.Duration,
	logger *zap.Logger,
) *ModelRegistry {
	if reloadMinInterval <= 0 {
		reloadMinInterval = DefaultReloadMinInterval
	}
	return &ModelRegistry{
		factory:           factory,
		versions:          versions,
		logger:            logger,
		sourcePath:        sourcePath,
		reloadMinInterval: reloadMinInterval,
		now:               time.Now,
	}
}

// LoadModel atomically replaces the active regressor. An empty versionLabel
// assigns the next label in sequence. The previous handle is simply dropped;
// in-flight predictions hold their own snapshot of it.
func (r *ModelRegistry) LoadModel(ctx context.Context, regressor ports.Regressor, versionLabel string) error {
	if regressor == nil || !regressor.IsLoaded() {
		return core.ErrModelSwapFailed
	}

	if versionLabel == "" {
		next, err := r.NextVersionLabel(ctx)
		if err != nil {
			return err
		}
		versionLabel = next
	}

	var modTime time.Time
	if info, err := os.Stat(r.sourcePath); err == nil {
		modTime = info.ModTime()
	}

	r.mu.Lock()
	r.active = regressor
	r.version = versionLabel
	r.sourceModTime = modTime
	r.mu.Unlock()

	r.logger.Info("model loaded", zap.String("version", versionLabel))
	return nil
}

// LoadFromFile boots the registry from the persisted model file, labeling the
// active model with the latest persisted version (or v1 when history is
// empty). Missing file is not an error; the registry stays NotReady.
func (r *ModelRegistry) LoadFromFile(ctx context.Context) error {
	if _, err := os.Stat(r.sourcePath); os.IsNotExist(err) {
		r.logger.Info("no model file yet, registry starts empty", zap.String("path", r.sourcePath))
		return nil
	}

	candidate := r.factory()
	if err := candidate.LoadFromPath(r.sourcePath); err != nil {
		return err
	}

	label, err := r.versions.LatestLabel(ctx)
	if err != nil {
		return err
	}
	if label == "" {
		label = versionPrefix + "1"
	}
	return r.LoadModel(ctx, candidate, label)
}

// Predict scores a feature window with the active model, returning the
// version label that produced the result. The prediction itself runs outside
// the lock so a concurrent swap never blocks on it.
func (r *ModelRegistry) Predict(window [][]float64) (models.RegressorOutput, string, error) {
	r.mu.Lock()
	active := r.active
	version := r.version
	r.mu.Unlock()

	if active == nil {
		return models.RegressorOutput{}, "", core.ErrModelNotReady
	}

	out, err := active.Predict(window)
	if err != nil {
		return models.RegressorOutput{}, version, err
	}
	return out, version, nil
}

// Ready reports whether a model is active.
func (r *ModelRegistry) Ready() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active != nil
}

// Version returns the active model's version label, or "" when none.
func (r *ModelRegistry) Version() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.version
}

// NextVersionLabel computes the label following both the in-memory version
// and the persisted history, so restarts and concurrent writers never reuse
// an integer.
func (r *ModelRegistry) NextVersionLabel(ctx context.Context) (string, error) {
	r.mu.Lock()
	current := parseVersion(r.version)
	r.mu.Unlock()

	latest, err := r.versions.LatestLabel(ctx)
	if err != nil {
		return "", err
	}
	persisted := parseVersion(latest)

	next := current
	if persisted > next {
		next = persisted
	}
	return versionPrefix + strconv.Itoa(next+1), nil
}

// CheckAndReloadIfNeeded reloads the model when the backing file changed.
// Checks are rate-limited; reload failures leave the active model in place.
func (r *ModelRegistry) CheckAndReloadIfNeeded(ctx context.Context) error {
	r.mu.Lock()
	if r.now().Sub(r.lastReloadCheck) < r.reloadMinInterval {
		r.mu.Unlock()
		return nil
	}
	r.lastReloadCheck = r.now()
	lastModTime := r.sourceModTime
	r.mu.Unlock()

	info, err := os.Stat(r.sourcePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if !info.ModTime().After(lastModTime) {
		return nil
	}

	return r.Reload(ctx)
}

// Reload loads the backing file into a fresh regressor and swaps it in. A
// failure is logged and returned but never disturbs the active model. When
// the file has not changed since the active model was installed (an
// in-process retrain already swapped it), the reload is skipped so the
// version label is not bumped twice.
func (r *ModelRegistry) Reload(ctx context.Context) error {
	if info, err := os.Stat(r.sourcePath); err == nil {
		r.mu.Lock()
		unchanged := r.active != nil && !info.ModTime().After(r.sourceModTime)
		r.mu.Unlock()
		if unchanged {
			return nil
		}
	}

	candidate := r.factory()
	if err := candidate.LoadFromPath(r.sourcePath); err != nil {
		r.logger.Error("model reload failed, keeping active model",
			zap.String("path", r.sourcePath), zap.Error(err))
		return err
	}

	if err := r.LoadModel(ctx, candidate, ""); err != nil {
		r.logger.Error("model swap failed, keeping active model", zap.Error(err))
		return err
	}
	r.logger.Info("model hot-reloaded from file", zap.String("path", r.sourcePath))
	return nil
}

func parseVersion(label string) int {
	m := versionPattern.FindStringSubmatch(label)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}
