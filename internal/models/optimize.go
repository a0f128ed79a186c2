package models

// Output formats the optimizer can encode to.
const (
	OutputPNG  = "png"
	OutputJPEG = "jpeg"
	OutputWebP = "webp"
)

const (
	MinQuality     = 10
	MaxQuality     = 100
	DefaultQuality = 80
)

// OptimizationRequest describes how the background-removed image should be
// re-encoded. Zero-value dimensions mean "no bound"; Quality 0 means "use the
// default". Validation happens in the optimizer, never silent clamping.
type OptimizationRequest struct {
	Format    string `json:"format"`
	Quality   int    `json:"quality"`
	MaxWidth  int    `json:"max_width"`
	MaxHeight int    `json:"max_height"`
}

// OptimizationResult is the final encoded image plus size metrics.
type OptimizationResult struct {
	Data             []byte
	Mimetype         string
	Width            int
	Height           int
	OriginalSize     int
	OptimizedSize    int
	CompressionRatio float64
}

// OptimizationSummary is the JSON shape reported on the base64 endpoint and
// in async job results.
type OptimizationSummary struct {
	Format           string  `json:"format"`
	Quality          int     `json:"quality"`
	Dimensions       string  `json:"dimensions"`
	CompressionRatio float64 `json:"compression_ratio"`
}
