package queue

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"background-remover/internal/models"
)

// Registry tracks the externally visible state of submitted jobs. In-memory
// and mutex-guarded; state is scoped to one server process, like the memory
// rate-limit store.
type Registry struct {
	mu   sync.Mutex
	jobs map[string]*models.JobStatus
}

func NewRegistry() *Registry {
	return &Registry{jobs: make(map[string]*models.JobStatus)}
}

func (r *Registry) Create(id string) *models.JobStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.createLocked(id)
}

// CreateIfCapacity registers the job only when fewer than maxPending jobs are
// pending. Check and registration happen under one lock, so two concurrent
// submissions can never both pass the boundary when only one slot remains.
func (r *Registry) CreateIfCapacity(id string, maxPending int) (*models.JobStatus, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pendingLocked() >= maxPending {
		return nil, false
	}
	return r.createLocked(id), true
}

func (r *Registry) createLocked(id string) *models.JobStatus {
	status := &models.JobStatus{
		ID:          id,
		Status:      models.StatusPending,
		Message:     "Queued for processing",
		Progress:    0,
		SubmittedAt: time.Now(),
	}
	r.jobs[id] = status
	return status
}

func (r *Registry) pendingLocked() int {
	pending := 0
	for _, job := range r.jobs {
		if job.Status == models.StatusPending {
			pending++
		}
	}
	return pending
}

func (r *Registry) SetProcessing(id, message string, progress int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if job, ok := r.jobs[id]; ok {
		job.Status = models.StatusProcessing
		job.Message = message
		job.Progress = progress
	}
}

func (r *Registry) Complete(id, resultPath, mimetype, resultURL string, opt *models.OptimizationSummary) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if job, ok := r.jobs[id]; ok {
		now := time.Now()
		job.Status = models.StatusCompleted
		job.Message = "Background removal complete"
		job.Progress = 100
		job.ResultPath = resultPath
		job.Mimetype = mimetype
		job.ResultURL = resultURL
		job.Optimization = opt
		job.CompletedAt = &now
	}
}

func (r *Registry) Fail(id, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if job, ok := r.jobs[id]; ok {
		now := time.Now()
		job.Status = models.StatusFailed
		job.Message = "Processing failed"
		job.Error = message
		job.CompletedAt = &now
	}
}

// Get returns a copy of the job's status.
func (r *Registry) Get(id string) (models.JobStatus, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return models.JobStatus{}, false
	}
	return *job, true
}

// Counts returns how many jobs are pending and actively processing.
func (r *Registry) Counts() (pending, active int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, job := range r.jobs {
		switch job.Status {
		case models.StatusPending:
			pending++
		case models.StatusProcessing:
			active++
		}
	}
	return pending, active
}

// Prune drops terminal jobs older than maxAge, mirroring the janitor's
// retention of their artifacts.
func (r *Registry) Prune(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)
	removed := 0

	r.mu.Lock()
	defer r.mu.Unlock()

	for id, job := range r.jobs {
		if job.CompletedAt != nil && job.CompletedAt.Before(cutoff) {
			delete(r.jobs, id)
			removed++
		}
	}
	return removed
}

// StartPruner prunes terminal jobs older than maxAge on every tick of interval
// until ctx is cancelled, keeping job records on the same retention schedule
// as their artifacts.
func (r *Registry) StartPruner(ctx context.Context, interval, maxAge time.Duration, logger *zap.Logger) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := r.Prune(maxAge); n > 0 {
					logger.Info("Pruned finished jobs", zap.Int("removed", n))
				}
			}
		}
	}()
}
