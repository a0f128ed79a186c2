package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"background-remover/internal/models"
	"background-remover/internal/services/queue"
)

// QueueSubmit handles POST /queue/remove-background: the async variant of the
// upload endpoint. Input is validated and persisted exactly like the sync
// path, then the job is published and the job ID returned.
func (h *Handler) QueueSubmit(c *gin.Context) {
	if !h.queueAvailable(c) {
		return
	}

	data, filename, err := h.readUploadedFile(c)
	if err != nil {
		h.respondPipelineError(c, err)
		return
	}

	opt, err := h.parseOptimizationForm(c)
	if err != nil {
		h.respondPipelineError(c, err)
		return
	}
	// Parameters are checked at submission; a worker never picks up a job that
	// can only fail on them.
	if opt != nil {
		if err := h.optimizer.ValidateRequest(*opt); err != nil {
			h.respondPipelineError(c, err)
			return
		}
	}

	blob, err := h.validator.Validate(data, filename)
	if err != nil {
		h.respondPipelineError(c, err)
		return
	}

	inputPath, err := h.store.SaveUpload(blob.Data, blob.Format)
	if err != nil {
		h.respondPipelineError(c, err)
		return
	}

	job := &models.ProcessingJob{
		ID:          uuid.New().String(),
		InputPath:   inputPath,
		Filename:    blob.Filename,
		Optimize:    opt != nil,
		SubmittedAt: time.Now(),
	}
	if opt != nil {
		job.Request = *opt
	}

	if err := h.queue.Publish(job); err != nil {
		if errors.Is(err, queue.ErrQueueFull) {
			c.JSON(http.StatusServiceUnavailable, models.APIResponse{
				Success: false,
				Error:   "Queue is full, try again later",
			})
			return
		}
		h.respondPipelineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"job_id":  job.ID,
		"status":  models.StatusPending,
	})
}

// QueueJob handles GET /queue/job/:id.
func (h *Handler) QueueJob(c *gin.Context) {
	if !h.queueAvailable(c) {
		return
	}

	status, ok := h.queue.Job(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, models.APIResponse{
			Success: false,
			Error:   "Job not found",
		})
		return
	}

	c.JSON(http.StatusOK, status)
}

// QueueJobResult handles GET /queue/job/:id/result, serving the completed
// artifact inline.
func (h *Handler) QueueJobResult(c *gin.Context) {
	if !h.queueAvailable(c) {
		return
	}

	status, ok := h.queue.Job(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, models.APIResponse{
			Success: false,
			Error:   "Job not found",
		})
		return
	}

	if status.Status != models.StatusCompleted {
		c.JSON(http.StatusConflict, models.APIResponse{
			Success: false,
			Error:   "Job is not completed yet",
		})
		return
	}

	data, err := h.store.Read(status.ResultPath)
	if err != nil {
		// The janitor may have already removed an old result.
		c.JSON(http.StatusGone, models.APIResponse{
			Success: false,
			Error:   "Job result is no longer available",
		})
		return
	}

	c.Data(http.StatusOK, status.Mimetype, data)
}

// QueueStatus handles GET /queue/status.
func (h *Handler) QueueStatus(c *gin.Context) {
	if h.queue == nil {
		c.JSON(http.StatusOK, models.QueueStatus{Available: false})
		return
	}
	c.JSON(http.StatusOK, h.queue.Status())
}

func (h *Handler) queueAvailable(c *gin.Context) bool {
	if h.queue == nil {
		c.JSON(http.StatusServiceUnavailable, models.APIResponse{
			Success: false,
			Error:   "Queue processing is not available",
		})
		return false
	}
	return true
}
