package processor

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"

	_ "image/gif"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"background-remover/internal/models"
)

// Optimizer re-encodes a decoded image into a requested output format with
// quality and dimension constraints. Dimensions are upper bounds only; the
// image is never upscaled and aspect ratio is preserved on downscale.
type Optimizer struct{}

func NewOptimizer() *Optimizer {
	return &Optimizer{}
}

// Decode decodes encoded image bytes, returning the image and sniffed format.
func Decode(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return img, format, nil
}

// Optimize validates req, fits the image into the requested bounds and
// encodes it. originalSize is the byte length of the pre-optimization encoded
// form, used for the compression ratio.
func (o *Optimizer) Optimize(img image.Image, originalSize int, req models.OptimizationRequest) (*models.OptimizationResult, error) {
	format, quality, err := o.validate(req)
	if err != nil {
		return nil, err
	}

	fitted := o.fit(img, req.MaxWidth, req.MaxHeight)

	buffer := &bytes.Buffer{}
	if err := o.encode(buffer, fitted, format, quality); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	bounds := fitted.Bounds()
	optimizedSize := buffer.Len()

	return &models.OptimizationResult{
		Data:             buffer.Bytes(),
		Mimetype:         "image/" + format,
		Width:            bounds.Dx(),
		Height:           bounds.Dy(),
		OriginalSize:     originalSize,
		OptimizedSize:    optimizedSize,
		CompressionRatio: compressionRatio(originalSize, optimizedSize),
	}, nil
}

// ValidateRequest checks format, quality and dimension parameters without
// decoding or encoding anything, so callers can reject a bad request before
// spending processing time on it.
func (o *Optimizer) ValidateRequest(req models.OptimizationRequest) error {
	_, _, err := o.validate(req)
	return err
}

// validate normalizes and checks the request parameters. Invalid values are
// rejected with the valid range named, never silently clamped.
func (o *Optimizer) validate(req models.OptimizationRequest) (string, int, error) {
	format := strings.ToLower(req.Format)
	switch format {
	case "":
		format = models.OutputPNG
	case "jpg":
		format = models.OutputJPEG
	case models.OutputPNG, models.OutputJPEG, models.OutputWebP:
	default:
		return "", 0, models.NewOptimizationError(
			"unsupported output format %q: must be one of png, jpeg, webp", req.Format)
	}

	quality := req.Quality
	if quality == 0 {
		quality = models.DefaultQuality
	}
	if quality < models.MinQuality || quality > models.MaxQuality {
		return "", 0, models.NewOptimizationError(
			"quality %d out of range: must be between %d and %d",
			req.Quality, models.MinQuality, models.MaxQuality)
	}

	if req.MaxWidth < 0 || req.MaxHeight < 0 {
		return "", 0, models.NewOptimizationError(
			"max_width and max_height must be positive integers")
	}

	return format, quality, nil
}

// fit scales the image down to satisfy both bounds, preserving aspect ratio.
// Images already within bounds pass through untouched.
func (o *Optimizer) fit(img image.Image, maxWidth, maxHeight int) image.Image {
	if maxWidth <= 0 && maxHeight <= 0 {
		return img
	}

	bounds := img.Bounds()
	if maxWidth <= 0 {
		maxWidth = bounds.Dx()
	}
	if maxHeight <= 0 {
		maxHeight = bounds.Dy()
	}
	if bounds.Dx() <= maxWidth && bounds.Dy() <= maxHeight {
		return img
	}

	return imaging.Fit(img, maxWidth, maxHeight, imaging.Lanczos)
}

func (o *Optimizer) encode(buffer *bytes.Buffer, img image.Image, format string, quality int) error {
	switch format {
	case models.OutputPNG:
		// Lossless, alpha preserved; quality does not apply.
		encoder := png.Encoder{CompressionLevel: png.BestCompression}
		return encoder.Encode(buffer, img)
	case models.OutputJPEG:
		// JPEG has no alpha channel: flatten onto opaque white first.
		return jpeg.Encode(buffer, flattenOnWhite(img), &jpeg.Options{Quality: quality})
	case models.OutputWebP:
		return webp.Encode(buffer, img, &webp.Options{Quality: float32(quality)})
	default:
		return models.NewOptimizationError("unsupported output format %q", format)
	}
}

// flattenOnWhite composites the image onto an opaque white background,
// discarding transparency.
func flattenOnWhite(img image.Image) image.Image {
	bounds := img.Bounds()
	background := imaging.New(bounds.Dx(), bounds.Dy(), color.White)
	return imaging.Overlay(background, img, image.Pt(0, 0), 1.0)
}

func compressionRatio(originalSize, optimizedSize int) float64 {
	if originalSize <= 0 {
		return 0
	}
	return 1 - float64(optimizedSize)/float64(originalSize)
}
