package regressor

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"

	"burnoutd/domain/core"
	"burnoutd/internal/errors"
	"burnoutd/models"
	"burnoutd/ports"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

const (
	defaultAlpha = 1.0
	testFraction = 0.2
	splitSeed    = 42
)

// RidgeRegressor is an L2-regularized linear model over flattened feature
// windows. The closed-form solve keeps training deterministic; the only
// randomness is the seeded train/test split.
type RidgeRegressor struct {
	mu        sync.RWMutex
	weights   []float64
	intercept float64
	scaler    MinMaxScaler
	features  []string
	loaded    bool

	alpha float64
}

// NewRidgeRegressor creates an unloaded ridge regressor.
func NewRidgeRegressor() ports.Regressor {
	return &RidgeRegressor{alpha: defaultAlpha}
}

// Train fits the model on the given samples and persists it to outPath.
func (r *RidgeRegressor) Train(ctx context.Context, samples []models.TrainingSample, outPath string) (models.TrainingMetrics, error) {
	if err := ctx.Err(); err != nil {
		return models.TrainingMetrics{}, err
	}
	if len(samples) == 0 {
		return models.TrainingMetrics{}, fmt.Errorf("%w: no training samples provided", core.ErrInsufficientData)
	}

	series := buildSeries(samples)

	// Scaler bounds come from every row across all employees, matching the
	// column view the serving path scales against.
	var allRows [][]float64
	for _, es := range series {
		allRows = append(allRows, es.rows...)
	}
	scaler := MinMaxScaler{}
	if err := scaler.Fit(allRows); err != nil {
		return models.TrainingMetrics{}, err
	}

	// Deterministic employee order so the seeded split is reproducible.
	ids := make([]int64, 0, len(series))
	for id := range series {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var x [][]float64
	var y []float64
	for _, id := range ids {
		es := series[id]
		scaled, err := scaler.Transform(es.rows)
		if err != nil {
			return models.TrainingMetrics{}, err
		}
		wx, wy := slidingWindows(scaled, es.targets)
		x = append(x, wx...)
		y = append(y, wy...)
	}
	if len(x) < 2 {
		return models.TrainingMetrics{}, fmt.Errorf(
			"%w: each employee needs more than %d days of history", core.ErrInsufficientData, models.WindowDays)
	}

	trainX, trainY, testX, testY := split(x, y)

	weights, intercept, err := solveRidge(trainX, trainY, r.alpha)
	if err != nil {
		return models.TrainingMetrics{}, errors.ModelError("ridge solve failed", err)
	}

	trainPred := predictAll(trainX, weights, intercept)
	testPred := predictAll(testX, weights, intercept)

	metrics := models.TrainingMetrics{
		TrainR2:      stat.RSquaredFrom(trainPred, trainY, nil),
		TestR2:       stat.RSquaredFrom(testPred, testY, nil),
		TrainSamples: len(trainX),
		TestSamples:  len(testX),
		FeatureCount: models.FeatureCount,
		MSE:          meanSquaredError(testY, testPred),
		MAE:          meanAbsoluteError(testY, testPred),
	}

	file := modelFile{
		Weights:      weights,
		Intercept:    intercept,
		Alpha:        r.alpha,
		Scaler:       scaler,
		Features:     models.FeatureNames(),
		WindowDays:   models.WindowDays,
		TrainSamples: len(trainX),
		TestR2:       metrics.TestR2,
	}
	if err := saveModelFile(outPath, &file); err != nil {
		return models.TrainingMetrics{}, errors.Wrap(err, "failed to persist model")
	}

	r.mu.Lock()
	r.weights = weights
	r.intercept = intercept
	r.scaler = scaler
	r.features = file.Features
	r.loaded = true
	r.mu.Unlock()

	return metrics, nil
}

// Predict scores one feature window.
func (r *RidgeRegressor) Predict(window [][]float64) (models.RegressorOutput, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.loaded {
		return models.RegressorOutput{}, core.ErrModelNotLoaded
	}
	if len(window) != models.WindowDays {
		return models.RegressorOutput{}, errors.InvalidInput("feature window has wrong number of days")
	}

	scaled, err := r.scaler.Transform(window)
	if err != nil {
		return models.RegressorOutput{}, err
	}

	flat := make([]float64, 0, models.WindowDays*models.FeatureCount)
	for _, row := range scaled {
		flat = append(flat, row...)
	}
	if len(flat) != len(r.weights) {
		return models.RegressorOutput{}, errors.InvalidInput("feature window width does not match model")
	}

	rate := r.intercept
	for i, v := range flat {
		rate += r.weights[i] * v
	}
	return models.RegressorOutput{Rate: rate, ScaledWindow: flat}, nil
}

// LoadFromPath replaces the in-memory parameters with the persisted model.
func (r *RidgeRegressor) LoadFromPath(path string) error {
	file, err := loadModelFile(path)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.weights = file.Weights
	r.intercept = file.Intercept
	if file.Alpha > 0 {
		r.alpha = file.Alpha
	}
	r.scaler = file.Scaler
	r.features = file.Features
	r.loaded = true
	return nil
}

// IsLoaded reports whether the regressor holds usable parameters.
func (r *RidgeRegressor) IsLoaded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loaded
}

// split shuffles deterministically and holds out testFraction of samples,
// always keeping at least one on each side.
func split(x [][]float64, y []float64) (trainX [][]float64, trainY []float64, testX [][]float64, testY []float64) {
	n := len(x)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	rng := rand.New(rand.NewSource(splitSeed))
	rng.Shuffle(n, func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })

	testN := int(math.Ceil(float64(n) * testFraction))
	if testN < 1 {
		testN = 1
	}
	if testN >= n {
		testN = n - 1
	}

	for i, j := range idx {
		if i < testN {
			testX = append(testX, x[j])
			testY = append(testY, y[j])
		} else {
			trainX = append(trainX, x[j])
			trainY = append(trainY, y[j])
		}
	}
	return trainX, trainY, testX, testY
}

// solveRidge computes the closed-form solution (XᵀX + αI)w = Xᵀy on centered
// data. Centering keeps the intercept out of the penalty.
func solveRidge(x [][]float64, y []float64, alpha float64) ([]float64, float64, error) {
	n := len(x)
	k := len(x[0])

	colMeans := make([]float64, k)
	for _, row := range x {
		for j, v := range row {
			colMeans[j] += v
		}
	}
	for j := range colMeans {
		colMeans[j] /= float64(n)
	}
	yMean := stat.Mean(y, nil)

	data := make([]float64, 0, n*k)
	for _, row := range x {
		for j, v := range row {
			data = append(data, v-colMeans[j])
		}
	}
	xc := mat.NewDense(n, k, data)

	yc := mat.NewVecDense(n, nil)
	for i, v := range y {
		yc.SetVec(i, v-yMean)
	}

	var a mat.Dense
	a.Mul(xc.T(), xc)
	for i := 0; i < k; i++ {
		a.Set(i, i, a.At(i, i)+alpha)
	}

	b := mat.NewVecDense(k, nil)
	b.MulVec(xc.T(), yc)

	var w mat.VecDense
	if err := w.SolveVec(&a, b); err != nil {
		return nil, 0, err
	}

	weights := make([]float64, k)
	intercept := yMean
	for j := 0; j < k; j++ {
		weights[j] = w.AtVec(j)
		intercept -= colMeans[j] * weights[j]
	}
	return weights, intercept, nil
}

func predictAll(x [][]float64, weights []float64, intercept float64) []float64 {
	out := make([]float64, len(x))
	for i, row := range x {
		v := intercept
		for j, f := range row {
			v += weights[j] * f
		}
		out[i] = v
	}
	return out
}

func meanSquaredError(y, pred []float64) float64 {
	sum := 0.0
	for i := range y {
		d := y[i] - pred[i]
		sum += d * d
	}
	return sum / float64(len(y))
}

func meanAbsoluteError(y, pred []float64) float64 {
	sum := 0.0
	for i := range y {
		sum += math.Abs(y[i] - pred[i])
	}
	return sum / float64(len(y))
}
