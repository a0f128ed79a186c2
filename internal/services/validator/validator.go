package validator

import (
	"bytes"
	"image"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"background-remover/internal/models"
)

// minImageSize is the smallest payload worth handing to a decoder; anything
// shorter cannot hold a valid magic header.
const minImageSize = 8

// Validator confirms an inbound byte blob decodes as a supported raster image
// and is within the configured size limit. Pure function over bytes; the
// sniffed format governs, not the declared filename.
type Validator struct {
	maxSize int64
}

func New(maxSize int64) *Validator {
	return &Validator{maxSize: maxSize}
}

func (v *Validator) Validate(data []byte, declaredFilename string) (*models.ImageBlob, error) {
	if len(data) == 0 {
		return nil, models.NewValidationError("file is empty or corrupted")
	}

	if len(data) < minImageSize {
		return nil, models.NewValidationError("file too small to be a valid image")
	}

	if int64(len(data)) > v.maxSize {
		return nil, models.NewValidationError(
			"file size %d exceeds maximum allowed size %d", len(data), v.maxSize)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, &models.ValidationError{
			Message:      "invalid image file: " + err.Error(),
			AllowedTypes: models.SupportedFormats,
		}
	}

	if !models.IsSupportedFormat(format) {
		return nil, &models.ValidationError{
			Message:      "unsupported image format: " + format,
			AllowedTypes: models.SupportedFormats,
		}
	}

	return &models.ImageBlob{
		Data:     data,
		Format:   format,
		Filename: filepath.Base(declaredFilename),
		Width:    cfg.Width,
		Height:   cfg.Height,
	}, nil
}

// AllowedExtension reports whether a declared filename carries one of the
// supported extensions. Multipart uploads are rejected up front on a
// disallowed extension; sniffed content still decides final acceptance.
func AllowedExtension(filename string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	switch ext {
	case "png", "jpg", "jpeg", "gif", "bmp", "tiff", "webp":
		return true
	}
	return false
}
