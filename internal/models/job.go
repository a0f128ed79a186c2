package models

import "time"

// Job statuses for the async queue.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// ProcessingJob is the message published to the queue for async background
// removal.
type ProcessingJob struct {
	ID          string              `json:"id"`
	InputPath   string              `json:"input_path"`
	Filename    string              `json:"filename"`
	Optimize    bool                `json:"optimize"`
	Request     OptimizationRequest `json:"request"`
	SubmittedAt time.Time           `json:"submitted_at"`
}

// JobStatus is the externally visible state of a submitted job.
type JobStatus struct {
	ID           string               `json:"job_id"`
	Status       string               `json:"status"`
	Message      string               `json:"message"`
	Progress     int                  `json:"progress"`
	ResultPath   string               `json:"-"`
	ResultURL    string               `json:"result_url,omitempty"`
	Mimetype     string               `json:"mimetype,omitempty"`
	Optimization *OptimizationSummary `json:"optimization,omitempty"`
	Error        string               `json:"error,omitempty"`
	SubmittedAt  time.Time            `json:"submitted_at"`
	CompletedAt  *time.Time           `json:"completed_at,omitempty"`
}

// QueueStatus is the body of GET /queue/status.
type QueueStatus struct {
	QueueLength       int  `json:"queue_length"`
	ActiveJobs        int  `json:"active_jobs"`
	MaxConcurrentJobs int  `json:"max_concurrent_jobs"`
	MaxQueueSize      int  `json:"max_queue_size"`
	Available         bool `json:"available"`
}
