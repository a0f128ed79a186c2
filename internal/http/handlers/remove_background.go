package handlers

import (
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"background-remover/internal/models"
	"background-remover/pkg/utils"
)

// RemoveBackground handles POST /remove-background: multipart upload in,
// processed image out as an attachment download.
func (h *Handler) RemoveBackground(c *gin.Context) {
	result, filename, ok := h.processUpload(c)
	if !ok {
		return
	}

	c.Header("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", utils.DownloadName(filename, result.ext)))
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")
	c.Data(http.StatusOK, result.mimetype, result.data)
}

// RemoveBackgroundPreview handles POST /remove-background-preview: same
// pipeline, but the image is served inline for display in the browser.
func (h *Handler) RemoveBackgroundPreview(c *gin.Context) {
	result, _, ok := h.processUpload(c)
	if !ok {
		return
	}

	c.Header("Content-Disposition", "inline")
	c.Data(http.StatusOK, result.mimetype, result.data)
}

// RemoveBackgroundBase64 handles POST /remove-background-base64: base64 (or
// data URI) in, base64 JSON out with optimization metrics.
func (h *Handler) RemoveBackgroundBase64(c *gin.Context) {
	var req models.Base64Request
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondPipelineError(c, models.NewValidationError("no image data provided"))
		return
	}

	data, err := utils.DecodeBase64Image(req.Image)
	if err != nil {
		h.respondPipelineError(c, models.NewValidationError("invalid base64 data: %v", err))
		return
	}

	blob, err := h.validator.Validate(data, "")
	if err != nil {
		h.respondPipelineError(c, err)
		return
	}

	var opt *models.OptimizationRequest
	if req.HasOptimization() {
		o := req.Optimization()
		opt = &o
	}

	result, err := h.process(c.Request.Context(), blob, opt)
	if err != nil {
		h.respondPipelineError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Base64Response{
		Success:      true,
		Image:        base64.StdEncoding.EncodeToString(result.data),
		Mimetype:     result.mimetype,
		Size:         len(result.data),
		Optimization: result.optimization,
	})
}

// processUpload is the shared multipart path: gate already passed, so read,
// validate and run the pipeline. On failure the response has been written and
// ok is false.
func (h *Handler) processUpload(c *gin.Context) (*processResult, string, bool) {
	data, filename, err := h.readUploadedFile(c)
	if err != nil {
		h.respondPipelineError(c, err)
		return nil, "", false
	}

	opt, err := h.parseOptimizationForm(c)
	if err != nil {
		h.respondPipelineError(c, err)
		return nil, "", false
	}

	blob, err := h.validator.Validate(data, filename)
	if err != nil {
		h.respondPipelineError(c, err)
		return nil, "", false
	}

	result, err := h.process(c.Request.Context(), blob, opt)
	if err != nil {
		h.respondPipelineError(c, err)
		return nil, "", false
	}

	return result, filename, true
}
