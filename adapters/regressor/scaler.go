package regressor

import "burnoutd/internal/errors"

// MinMaxScaler rescales each feature column to [0, 1] using the bounds seen
// during fitting. Columns with zero range map to 0.
type MinMaxScaler struct {
	Min []float64 `json:"min"`
	Max []float64 `json:"max"`
}

// Fit learns per-column bounds from the given rows.
func (s *MinMaxScaler) Fit(rows [][]float64) error {
	if len(rows) == 0 {
		return errors.InvalidInput("cannot fit scaler on empty data")
	}
	cols := len(rows[0])
	s.Min = make([]float64, cols)
	s.Max = make([]float64, cols)
	copy(s.Min, rows[0])
	copy(s.Max, rows[0])

	for _, row := range rows[1:] {
		if len(row) != cols {
			return errors.InvalidInput("scaler rows have inconsistent widths")
		}
		for j, v := range row {
			if v < s.Min[j] {
				s.Min[j] = v
			}
			if v > s.Max[j] {
				s.Max[j] = v
			}
		}
	}
	return nil
}

// Transform rescales rows using the fitted bounds. Values outside the fitted
// range extrapolate beyond [0, 1], matching serving inputs the model has not
// seen before.
func (s *MinMaxScaler) Transform(rows [][]float64) ([][]float64, error) {
	if !s.Fitted() {
		return nil, errors.InvalidInput("scaler is not fitted")
	}
	out := make([][]float64, len(rows))
	for i, row := range rows {
		if len(row) != len(s.Min) {
			return nil, errors.InvalidInput("row width does not match fitted scaler")
		}
		scaled := make([]float64, len(row))
		for j, v := range row {
			span := s.Max[j] - s.Min[j]
			if span == 0 {
				scaled[j] = 0
				continue
			}
			scaled[j] = (v - s.Min[j]) / span
		}
		out[i] = scaled
	}
	return out, nil
}

// Fitted reports whether bounds have been learned.
func (s *MinMaxScaler) Fitted() bool {
	return len(s.Min) > 0 && len(s.Min) == len(s.Max)
}
