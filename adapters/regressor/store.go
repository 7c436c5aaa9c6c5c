package regressor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// modelFile is the on-disk representation of a trained model. Everything the
// serving path needs travels in one file so hot-swaps are atomic.
type modelFile struct {
	Weights      []float64    `json:"weights"`
	Intercept    float64      `json:"intercept"`
	Alpha        float64      `json:"alpha"`
	Scaler       MinMaxScaler `json:"scaler"`
	Features     []string     `json:"features"`
	WindowDays   int          `json:"window_days"`
	TrainSamples int          `json:"train_samples"`
	TestR2       float64      `json:"test_r2"`
	TrainedAt    time.Time    `json:"trained_at"`
}

// saveModelFile writes the model JSON via a temp file and rename, so watchers
// of the path never observe a partially written model.
func saveModelFile(path string, file *modelFile) error {
	if file.TrainedAt.IsZero() {
		file.TrainedAt = time.Now().UTC()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write model file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to move model into place: %w", err)
	}
	return nil
}

func loadModelFile(path string) (*modelFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file: %w", err)
	}

	var file modelFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to decode model file %s: %w", path, err)
	}
	if len(file.Weights) == 0 || !file.Scaler.Fitted() {
		return nil, fmt.Errorf("model file %s is missing weights or scaler", path)
	}
	return &file, nil
}
