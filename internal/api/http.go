package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"burnoutd/domain/core"
	apperrors "burnoutd/internal/errors"

	"go.uber.org/zap"
)

// errorResponse is the uniform error body.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// writeError maps domain and application errors onto HTTP statuses.
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	status := http.StatusInternalServerError
	code := apperrors.GetCode(err)

	switch {
	case core.IsNotFoundError(err):
		status = http.StatusNotFound
		code = apperrors.CodeNotFound
	case errors.Is(err, core.ErrInvalidTransition):
		status = http.StatusConflict
		code = apperrors.CodeConflict
	case errors.Is(err, core.ErrModelNotReady), errors.Is(err, core.ErrModelNotLoaded):
		status = http.StatusServiceUnavailable
		code = apperrors.CodeModelError
	case errors.Is(err, core.ErrInsufficientData):
		status = http.StatusUnprocessableEntity
		code = apperrors.CodeValidationError
	default:
		switch code {
		case apperrors.CodeValidationError, apperrors.CodeInvalidInput:
			status = http.StatusBadRequest
		case apperrors.CodeNotFound:
			status = http.StatusNotFound
		case apperrors.CodeConflict:
			status = http.StatusConflict
		case apperrors.CodeModelError:
			status = http.StatusServiceUnavailable
		}
	}

	if status >= http.StatusInternalServerError {
		logger.Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Code: code})
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperrors.InvalidInput("malformed request body: " + err.Error())
	}
	return nil
}
