package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"background-remover/internal/models"
	"background-remover/internal/services/processor"
	"background-remover/internal/services/validator"
)

// processResult is the outcome of the full pipeline for one request.
type processResult struct {
	data         []byte
	mimetype     string
	ext          string
	originalSize int
	optimization *models.OptimizationSummary
}

// process runs validator output through background removal and, when
// optimization parameters are present, the optimizer. Without parameters the
// background-removed image passes through unmodified in PNG form.
// Intermediate artifacts are persisted for janitor-governed cleanup.
func (h *Handler) process(ctx context.Context, blob *models.ImageBlob, opt *models.OptimizationRequest) (*processResult, error) {
	// Bad parameters are rejected before the model round trip.
	if opt != nil {
		if err := h.optimizer.ValidateRequest(*opt); err != nil {
			return nil, err
		}
	}

	if _, err := h.store.SaveUpload(blob.Data, blob.Format); err != nil {
		// The pipeline works on in-memory bytes; a failed artifact write only
		// costs the janitor trail.
		h.logger.Warn("Failed to persist upload artifact", zap.Error(err))
	}

	removed, err := h.rembg.Remove(ctx, blob.Data, blob.Filename)
	if err != nil {
		return nil, err
	}

	result := &processResult{
		data:         removed,
		mimetype:     "image/png",
		ext:          "png",
		originalSize: len(removed),
	}

	if opt != nil {
		img, _, err := processor.Decode(removed)
		if err != nil {
			return nil, fmt.Errorf("failed to decode processed image: %w", err)
		}

		optimized, err := h.optimizer.Optimize(img, len(removed), *opt)
		if err != nil {
			return nil, err
		}

		quality := opt.Quality
		if quality == 0 {
			quality = models.DefaultQuality
		}

		result.data = optimized.Data
		result.mimetype = optimized.Mimetype
		result.ext = strings.TrimPrefix(optimized.Mimetype, "image/")
		result.optimization = &models.OptimizationSummary{
			Format:           result.ext,
			Quality:          quality,
			Dimensions:       fmt.Sprintf("%dx%d", optimized.Width, optimized.Height),
			CompressionRatio: optimized.CompressionRatio,
		}
	}

	if _, err := h.store.SaveOutput(result.data, result.ext); err != nil {
		h.logger.Warn("Failed to persist output artifact", zap.Error(err))
	}

	return result, nil
}

// readUploadedFile pulls the multipart "file" field and reads it fully,
// bounded by the configured maximum content length.
func (h *Handler) readUploadedFile(c *gin.Context) ([]byte, string, error) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		return nil, "", models.NewValidationError("no file provided")
	}
	defer file.Close()

	if header.Filename == "" {
		return nil, "", models.NewValidationError("no file selected")
	}

	if !validator.AllowedExtension(header.Filename) {
		return nil, "", &models.ValidationError{
			Message:      "file type not allowed",
			AllowedTypes: models.SupportedFormats,
		}
	}

	maxSize := h.config.Storage.MaxContentLength
	data, err := io.ReadAll(io.LimitReader(file, maxSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > maxSize {
		return nil, "", models.NewValidationError(
			"file exceeds maximum allowed size %d", maxSize)
	}

	return data, header.Filename, nil
}

// parseOptimizationForm reads optional optimization fields from a multipart
// form. Returns nil when no parameter was supplied.
func (h *Handler) parseOptimizationForm(c *gin.Context) (*models.OptimizationRequest, error) {
	format := c.PostForm("format")
	qualityStr := c.PostForm("quality")
	maxWidthStr := c.PostForm("max_width")
	maxHeightStr := c.PostForm("max_height")

	if format == "" && qualityStr == "" && maxWidthStr == "" && maxHeightStr == "" {
		return nil, nil
	}

	quality, err := parseOptionalInt(qualityStr, "quality")
	if err != nil {
		return nil, err
	}
	maxWidth, err := parseOptionalInt(maxWidthStr, "max_width")
	if err != nil {
		return nil, err
	}
	maxHeight, err := parseOptionalInt(maxHeightStr, "max_height")
	if err != nil {
		return nil, err
	}

	return &models.OptimizationRequest{
		Format:    format,
		Quality:   quality,
		MaxWidth:  maxWidth,
		MaxHeight: maxHeight,
	}, nil
}

func parseOptionalInt(value, fieldName string) (int, error) {
	if value == "" {
		return 0, nil
	}
	num, err := strconv.Atoi(value)
	if err != nil {
		return 0, models.NewOptimizationError("invalid %s: must be a number", fieldName)
	}
	if num < 0 {
		return 0, models.NewOptimizationError("%s must be a positive integer", fieldName)
	}
	return num, nil
}

// respondPipelineError maps the error taxonomy to HTTP responses. Validation
// and parameter errors carry their message to the caller; processing and
// internal failures stay generic, with detail only in the log.
func (h *Handler) respondPipelineError(c *gin.Context, err error) {
	var validationErr *models.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, models.ValidationResponse{
			Success:      false,
			Error:        validationErr.Message,
			AllowedTypes: validationErr.AllowedTypes,
		})
		return
	}

	var optimizationErr *models.OptimizationError
	if errors.As(err, &optimizationErr) {
		c.JSON(http.StatusBadRequest, models.APIResponse{
			Success: false,
			Error:   optimizationErr.Message,
		})
		return
	}

	var processingErr *models.ProcessingError
	if errors.As(err, &processingErr) {
		status := http.StatusBadGateway
		if processingErr.Kind == models.ProcessingTimeout {
			status = http.StatusGatewayTimeout
		}
		h.logger.Error("Background removal failed",
			zap.String("kind", string(processingErr.Kind)),
			zap.Error(err))
		c.JSON(status, models.APIResponse{
			Success: false,
			Error:   "Failed to process image",
		})
		return
	}

	h.logger.Error("Request failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, models.APIResponse{
		Success: false,
		Error:   "Internal server error",
	})
}
