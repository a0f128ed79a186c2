package processor

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"background-remover/internal/models"
)

// testImage builds an RGBA image with a transparent left half, so JPEG
// flattening has something to composite.
func testImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			if x < width/2 {
				img.Set(x, y, color.RGBA{0, 0, 0, 0})
			} else {
				img.Set(x, y, color.RGBA{200, 30, 30, 255})
			}
		}
	}
	return img
}

func encodedSize(t *testing.T, img image.Image) int {
	t.Helper()
	buf := &bytes.Buffer{}
	if err := png.Encode(buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Len()
}

func TestOptimizeDownscalesWithinBounds(t *testing.T) {
	o := NewOptimizer()
	img := testImage(500, 250)

	result, err := o.Optimize(img, encodedSize(t, img), models.OptimizationRequest{
		Format:   models.OutputPNG,
		MaxWidth: 200,
	})
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}

	if result.Width > 200 {
		t.Fatalf("width = %d, want <= 200", result.Width)
	}
	if result.Width != 200 || result.Height != 100 {
		t.Fatalf("dimensions = %dx%d, want 200x100 (aspect preserved)", result.Width, result.Height)
	}

	decoded, format, err := Decode(result.Data)
	if err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if format != "png" {
		t.Fatalf("format = %s, want png", format)
	}
	if decoded.Bounds().Dx() != 200 {
		t.Fatalf("decoded width = %d, want 200", decoded.Bounds().Dx())
	}
}

func TestOptimizeNeverUpscales(t *testing.T) {
	o := NewOptimizer()
	img := testImage(100, 80)

	result, err := o.Optimize(img, encodedSize(t, img), models.OptimizationRequest{
		Format:    models.OutputPNG,
		MaxWidth:  500,
		MaxHeight: 500,
	})
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if result.Width != 100 || result.Height != 80 {
		t.Fatalf("dimensions = %dx%d, want original 100x80", result.Width, result.Height)
	}
}

func TestOptimizeJPEGDiscardsAlpha(t *testing.T) {
	o := NewOptimizer()
	img := testImage(60, 60)

	result, err := o.Optimize(img, encodedSize(t, img), models.OptimizationRequest{
		Format:  "JPEG",
		Quality: 80,
	})
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if result.Mimetype != "image/jpeg" {
		t.Fatalf("mimetype = %s, want image/jpeg", result.Mimetype)
	}

	decoded, format, err := Decode(result.Data)
	if err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if format != "jpeg" {
		t.Fatalf("format = %s, want jpeg", format)
	}

	// The transparent half was composited onto white.
	r, g, b, _ := decoded.At(5, 5).RGBA()
	if r < 0xe000 || g < 0xe000 || b < 0xe000 {
		t.Fatalf("transparent region = (%d,%d,%d), want near-white", r>>8, g>>8, b>>8)
	}
}

func TestOptimizeWebPPreservesDimensions(t *testing.T) {
	o := NewOptimizer()
	img := testImage(64, 32)

	result, err := o.Optimize(img, encodedSize(t, img), models.OptimizationRequest{
		Format:  models.OutputWebP,
		Quality: 75,
	})
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if result.Mimetype != "image/webp" {
		t.Fatalf("mimetype = %s, want image/webp", result.Mimetype)
	}

	decoded, format, err := Decode(result.Data)
	if err != nil {
		t.Fatalf("decode webp result: %v", err)
	}
	if format != "webp" {
		t.Fatalf("format = %s, want webp", format)
	}
	if decoded.Bounds().Dx() != 64 || decoded.Bounds().Dy() != 32 {
		t.Fatalf("dimensions = %dx%d, want 64x32", decoded.Bounds().Dx(), decoded.Bounds().Dy())
	}
}

func TestOptimizeRejectsInvalidQuality(t *testing.T) {
	o := NewOptimizer()
	img := testImage(10, 10)

	for _, quality := range []int{5, 9, 101, -1} {
		_, err := o.Optimize(img, 100, models.OptimizationRequest{
			Format:  models.OutputJPEG,
			Quality: quality,
		})
		if err == nil {
			t.Fatalf("quality %d: expected error", quality)
		}
		if _, ok := err.(*models.OptimizationError); !ok {
			t.Fatalf("quality %d: error type = %T, want *models.OptimizationError", quality, err)
		}
	}
}

func TestOptimizeRejectsUnknownFormat(t *testing.T) {
	o := NewOptimizer()
	img := testImage(10, 10)

	_, err := o.Optimize(img, 100, models.OptimizationRequest{Format: "avif"})
	if err == nil {
		t.Fatal("expected error for unknown format")
	}
	if _, ok := err.(*models.OptimizationError); !ok {
		t.Fatalf("error type = %T, want *models.OptimizationError", err)
	}
}

func TestValidateRequest(t *testing.T) {
	o := NewOptimizer()

	valid := []models.OptimizationRequest{
		{},
		{Format: "JPEG", Quality: 80},
		{Format: "jpg", MaxWidth: 100},
		{Format: models.OutputWebP, Quality: models.MinQuality},
	}
	for _, req := range valid {
		if err := o.ValidateRequest(req); err != nil {
			t.Fatalf("ValidateRequest(%+v): %v", req, err)
		}
	}

	invalid := []models.OptimizationRequest{
		{Quality: 5},
		{Quality: 101},
		{Format: "avif"},
		{MaxWidth: -1},
	}
	for _, req := range invalid {
		err := o.ValidateRequest(req)
		if err == nil {
			t.Fatalf("ValidateRequest(%+v): expected error", req)
		}
		if _, ok := err.(*models.OptimizationError); !ok {
			t.Fatalf("ValidateRequest(%+v): error type = %T, want *models.OptimizationError", req, err)
		}
	}
}

func TestOptimizeDefaultsQuality(t *testing.T) {
	o := NewOptimizer()
	img := testImage(30, 30)

	result, err := o.Optimize(img, encodedSize(t, img), models.OptimizationRequest{
		Format: models.OutputJPEG,
	})
	if err != nil {
		t.Fatalf("Optimize with zero quality: %v", err)
	}
	if len(result.Data) == 0 {
		t.Fatal("empty result data")
	}
}

func TestOptimizeCompressionMetrics(t *testing.T) {
	o := NewOptimizer()
	img := testImage(200, 200)
	originalSize := encodedSize(t, img)

	result, err := o.Optimize(img, originalSize, models.OptimizationRequest{
		Format:   models.OutputJPEG,
		Quality:  50,
		MaxWidth: 100,
	})
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}

	if result.OriginalSize != originalSize {
		t.Fatalf("original size = %d, want %d", result.OriginalSize, originalSize)
	}
	if result.OptimizedSize != len(result.Data) {
		t.Fatalf("optimized size = %d, want %d", result.OptimizedSize, len(result.Data))
	}

	want := 1 - float64(result.OptimizedSize)/float64(result.OriginalSize)
	if result.CompressionRatio != want {
		t.Fatalf("compression ratio = %f, want %f", result.CompressionRatio, want)
	}
}

func TestOptimizeIdempotentSize(t *testing.T) {
	o := NewOptimizer()
	img := testImage(120, 120)
	req := models.OptimizationRequest{Format: models.OutputJPEG, Quality: 80}

	first, err := o.Optimize(img, encodedSize(t, img), req)
	if err != nil {
		t.Fatalf("first pass: %v", err)
	}

	decoded, _, err := Decode(first.Data)
	if err != nil {
		t.Fatalf("decode first pass: %v", err)
	}

	second, err := o.Optimize(decoded, len(first.Data), req)
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}

	// Lossy re-encode with identical parameters stays within 25% of the
	// first pass.
	ratio := float64(second.OptimizedSize) / float64(first.OptimizedSize)
	if ratio < 0.75 || ratio > 1.25 {
		t.Fatalf("size ratio between passes = %f, want within [0.75, 1.25]", ratio)
	}
}
