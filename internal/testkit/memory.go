package testkit

import (
	"context"
	"sort"
	"sync"
	"time"

	"burnoutd/domain/core"
	"burnoutd/models"
)

// In-memory repository implementations backing unit tests. All stores are
// safe for concurrent use so worker tests can exercise real goroutines.

// DailyLogStore is an in-memory DailyLogRepository.
type DailyLogStore struct {
	mu     sync.Mutex
	nextID int64
	logs   map[int64]*models.DailyLog
}

// NewDailyLogStore creates an empty store.
func NewDailyLogStore() *DailyLogStore {
	return &DailyLogStore{logs: make(map[int64]*models.DailyLog)}
}

// Seed inserts logs directly, assigning ids where missing.
func (s *DailyLogStore) Seed(logs ...models.DailyLog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range logs {
		if l.ID == 0 {
			s.nextID++
			l.ID = s.nextID
		} else if l.ID > s.nextID {
			s.nextID = l.ID
		}
		cp := l
		s.logs[l.ID] = &cp
	}
}

func (s *DailyLogStore) Add(_ context.Context, log *models.DailyLog) (*models.DailyLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	cp := *log
	cp.ID = s.nextID
	cp.Status = models.StatusQueued
	cp.CreatedAt = time.Now()
	s.logs[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (s *DailyLogStore) GetByID(_ context.Context, id int64) (*models.DailyLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.logs[id]
	if !ok {
		return nil, core.ErrDailyLogNotFound
	}
	cp := *l
	return &cp, nil
}

func (s *DailyLogStore) GetByEmployee(_ context.Context, employeeID int64, limit int) ([]models.DailyLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.DailyLog
	for _, l := range s.logs {
		if l.EmployeeID == employeeID {
			out = append(out, *l)
		}
	}
	sortByDateDesc(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *DailyLogStore) GetByDateRange(_ context.Context, employeeID int64, start, end time.Time) ([]models.DailyLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.DailyLog
	for _, l := range s.logs {
		if l.EmployeeID == employeeID && !l.LogDate.Before(start) && !l.LogDate.After(end) {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LogDate.Before(out[j].LogDate) })
	return out, nil
}

func (s *DailyLogStore) ClaimNext(_ context.Context, from, to models.DailyLogStatus) (*models.DailyLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var oldest *models.DailyLog
	for _, l := range s.logs {
		if l.Status != from {
			continue
		}
		if oldest == nil || l.LogDate.Before(oldest.LogDate) ||
			(l.LogDate.Equal(oldest.LogDate) && l.ID < oldest.ID) {
			oldest = l
		}
	}
	if oldest == nil {
		return nil, nil
	}
	oldest.Status = to
	cp := *oldest
	return &cp, nil
}

func (s *DailyLogStore) UpdateStatus(_ context.Context, id int64, status models.DailyLogStatus, processedAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.logs[id]
	if !ok {
		return core.ErrDailyLogNotFound
	}
	l.Status = status
	if processedAt != nil {
		l.ProcessedAt = processedAt
	}
	return nil
}

func (s *DailyLogStore) SetError(_ context.Context, id int64, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.logs[id]
	if !ok {
		return core.ErrDailyLogNotFound
	}
	l.ErrorMessage = &message
	return nil
}

func (s *DailyLogStore) CountByStatus(_ context.Context) (map[models.DailyLogStatus]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[models.DailyLogStatus]int)
	for _, l := range s.logs {
		counts[l.Status]++
	}
	return counts, nil
}

func (s *DailyLogStore) ListRecent(_ context.Context, limit int) ([]models.DailyLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.DailyLog, 0, len(s.logs))
	for _, l := range s.logs {
		out = append(out, *l)
	}
	sortByDateDesc(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func sortByDateDesc(logs []models.DailyLog) {
	sort.Slice(logs, func(i, j int) bool {
		if !logs[i].LogDate.Equal(logs[j].LogDate) {
			return logs[i].LogDate.After(logs[j].LogDate)
		}
		return logs[i].ID > logs[j].ID
	})
}

// PredictionStore is an in-memory PredictionRepository.
type PredictionStore struct {
	mu     sync.Mutex
	nextID int64
	preds  map[int64]*models.AgentPrediction
}

// NewPredictionStore creates an empty store.
func NewPredictionStore() *PredictionStore {
	return &PredictionStore{preds: make(map[int64]*models.AgentPrediction)}
}

func (s *PredictionStore) Add(_ context.Context, p *models.AgentPrediction) (*models.AgentPrediction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	cp := *p
	cp.ID = s.nextID
	cp.CreatedAt = time.Now()
	s.preds[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (s *PredictionStore) Update(_ context.Context, p *models.AgentPrediction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.preds[p.ID]; !ok {
		return core.ErrPredictionNotFound
	}
	cp := *p
	s.preds[p.ID] = &cp
	return nil
}

func (s *PredictionStore) GetByID(_ context.Context, id int64) (*models.AgentPrediction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.preds[id]
	if !ok {
		return nil, core.ErrPredictionNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *PredictionStore) GetByDailyLog(_ context.Context, dailyLogID int64) ([]models.AgentPrediction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.AgentPrediction
	for _, p := range s.preds {
		if p.DailyLogID == dailyLogID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *PredictionStore) GetPendingReviews(_ context.Context) ([]models.AgentPrediction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.AgentPrediction
	for _, p := range s.preds {
		if p.NeedsReview && p.HumanValidation == nil {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *PredictionStore) GetValidatedSince(_ context.Context, since time.Time) ([]models.AgentPrediction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.AgentPrediction
	for _, p := range s.preds {
		if p.HumanValidation != nil && p.ReviewedAt != nil && !p.ReviewedAt.Before(since) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// EmployeeStore is an in-memory EmployeeRepository.
type EmployeeStore struct {
	mu        sync.Mutex
	employees map[int64]*models.Employee
}

// NewEmployeeStore creates a store seeded with the given employees.
func NewEmployeeStore(employees ...models.Employee) *EmployeeStore {
	s := &EmployeeStore{employees: make(map[int64]*models.Employee)}
	for _, e := range employees {
		cp := e
		s.employees[e.ID] = &cp
	}
	return s
}

func (s *EmployeeStore) GetByID(_ context.Context, id int64) (*models.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.employees[id]
	if !ok {
		return nil, core.ErrEmployeeNotFound
	}
	cp := *e
	return &cp, nil
}

func (s *EmployeeStore) GetByDepartment(_ context.Context, departmentID int64) ([]models.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Employee
	for _, e := range s.employees {
		if e.DepartmentID != nil && *e.DepartmentID == departmentID {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *EmployeeStore) Update(_ context.Context, e *models.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.employees[e.ID]; !ok {
		return core.ErrEmployeeNotFound
	}
	cp := *e
	s.employees[e.ID] = &cp
	return nil
}

// SettingsStore is an in-memory SettingsRepository.
type SettingsStore struct {
	mu       sync.Mutex
	settings models.SystemSettings
}

// NewSettingsStore creates a store with production defaults.
func NewSettingsStore() *SettingsStore {
	return &SettingsStore{settings: models.SystemSettings{
		ID:                 1,
		RetrainThreshold:   500,
		AutoRetrainEnabled: true,
	}}
}

func (s *SettingsStore) Get(_ context.Context) (*models.SystemSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := s.settings
	return &cp, nil
}

func (s *SettingsStore) Update(_ context.Context, settings *models.SystemSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = *settings
	s.settings.ID = 1
	return nil
}

func (s *SettingsStore) IncrementSamples(_ context.Context, n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.NewSamplesCount += n
	return nil
}

func (s *SettingsStore) RecordRetrainSuccess(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.settings.NewSamplesCount = 0
	s.settings.RetrainCount++
	s.settings.LastRetrainAt = &now
	return nil
}

// ModelVersionStore is an in-memory ModelVersionRepository.
type ModelVersionStore struct {
	mu       sync.Mutex
	nextID   int64
	versions []models.ModelVersion
}

// NewModelVersionStore creates an empty store.
func NewModelVersionStore() *ModelVersionStore {
	return &ModelVersionStore{}
}

func (s *ModelVersionStore) Add(_ context.Context, v *models.ModelVersion) (*models.ModelVersion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	cp := *v
	cp.ID = s.nextID
	cp.CreatedAt = time.Now()
	s.versions = append(s.versions, cp)
	out := cp
	return &out, nil
}

func (s *ModelVersionStore) LatestLabel(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.versions) == 0 {
		return "", nil
	}
	return s.versions[len(s.versions)-1].VersionLabel, nil
}

func (s *ModelVersionStore) List(_ context.Context, limit int) ([]models.ModelVersion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ModelVersion, len(s.versions))
	copy(out, s.versions)
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
