package api

import (
	"net/http"
	"strconv"
	"time"

	"burnoutd/app"
	"burnoutd/internal/agent"
	apperrors "burnoutd/internal/errors"
	"burnoutd/internal/learning"
	"burnoutd/internal/registry"
	"burnoutd/models"
	"burnoutd/ports"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handlers exposes the service layer over HTTP.
type Handlers struct {
	queue    *app.QueueService
	reviews  *app.ReviewService
	registry *registry.ModelRegistry
	versions ports.ModelVersionRepository
	learner  *learning.Worker
	worker   *agent.Worker
	logger   *zap.Logger
}

// NewHandlers creates the handler set.
func NewHandlers(
	queue *app.QueueService,
	reviews *app.ReviewService,
	reg *registry.ModelRegistry,
	versions ports.ModelVersionRepository,
	learner *learning.Worker,
	worker *agent.Worker,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		queue:    queue,
		reviews:  reviews,
		registry: reg,
		versions: versions,
		learner:  learner,
		worker:   worker,
		logger:   logger,
	}
}

// Routes mounts every endpoint on a fresh router.
func (h *Handlers) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(recoverer(h.logger))
	r.Use(requestLogger(h.logger))

	r.Get("/health", h.health)

	r.Route("/api", func(r chi.Router) {
		r.Post("/daily-logs", h.createDailyLog)

		r.Route("/queue", func(r chi.Router) {
			r.Get("/stats", h.queueStats)
			r.Post("/{id}/fail", h.failLog)
			r.Post("/{id}/requeue", h.requeueLog)
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Get("/pending", h.pendingReviews)
			r.Post("/{id}", h.submitReview)
		})

		r.Get("/models/versions", h.modelVersions)
		r.Post("/learning/run", h.runLearningCycle)
		r.Get("/workers/stats", h.workerStats)
	})

	return r
}

func (h *Handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"model_ready":   h.registry.Ready(),
		"model_version": h.registry.Version(),
	})
}

// createDailyLogRequest is the submission payload; metric fields are
// optional.
type createDailyLogRequest struct {
	EmployeeID        int64    `json:"employee_id"`
	LogDate           string   `json:"log_date"`
	HoursWorked       *float64 `json:"hours_worked"`
	HoursSlept        *float64 `json:"hours_slept"`
	PersonalTime      *float64 `json:"personal_time"`
	MotivationLevel   *int     `json:"motivation_level"`
	StressLevel       *int     `json:"stress_level"`
	WorkloadIntensity *int     `json:"workload_intensity"`
	OvertimeHours     *float64 `json:"overtime_hours"`
}

func (h *Handlers) createDailyLog(w http.ResponseWriter, r *http.Request) {
	var req createDailyLogRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	logDate, err := time.Parse("2006-01-02", req.LogDate)
	if err != nil {
		writeError(w, h.logger, apperrors.InvalidInput("log_date must be YYYY-MM-DD"))
		return
	}

	saved, err := h.queue.Enqueue(r.Context(), &models.DailyLog{
		EmployeeID:        req.EmployeeID,
		LogDate:           logDate,
		HoursWorked:       req.HoursWorked,
		HoursSlept:        req.HoursSlept,
		PersonalTime:      req.PersonalTime,
		MotivationLevel:   req.MotivationLevel,
		StressLevel:       req.StressLevel,
		WorkloadIntensity: req.WorkloadIntensity,
		OvertimeHours:     req.OvertimeHours,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (h *Handlers) queueStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.queue.Stats(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type failLogRequest struct {
	Reason string `json:"reason"`
}

func (h *Handlers) failLog(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var req failLogRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if req.Reason == "" {
		req.Reason = "marked failed by operator"
	}
	if err := h.queue.MarkFailed(r.Context(), id, req.Reason); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(models.StatusFailed)})
}

func (h *Handlers) requeueLog(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := h.queue.Requeue(r.Context(), id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(models.StatusQueued)})
}

func (h *Handlers) pendingReviews(w http.ResponseWriter, r *http.Request) {
	pending, err := h.reviews.GetPendingReviews(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if pending == nil {
		pending = []models.AgentPrediction{}
	}
	writeJSON(w, http.StatusOK, pending)
}

type submitReviewRequest struct {
	IsCorrect bool    `json:"is_correct"`
	Notes     *string `json:"notes"`
}

func (h *Handlers) submitReview(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var req submitReviewRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	reviewed, err := h.reviews.SubmitReview(r.Context(), id, req.IsCorrect, req.Notes)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, reviewed)
}

func (h *Handlers) modelVersions(w http.ResponseWriter, r *http.Request) {
	versions, err := h.versions.List(r.Context(), 50)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if versions == nil {
		versions = []models.ModelVersion{}
	}
	writeJSON(w, http.StatusOK, versions)
}

func (h *Handlers) runLearningCycle(w http.ResponseWriter, r *http.Request) {
	result, err := h.learner.RunOnce(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) workerStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"agent":         h.worker.Stats(),
		"model_ready":   h.registry.Ready(),
		"model_version": h.registry.Version(),
	})
}

func pathID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.InvalidInput("id must be a positive integer")
	}
	return id, nil
}
