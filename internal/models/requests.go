package models

// Base64Request is the JSON body of POST /remove-background-base64. Image may
// be a raw base64 string or a data URI.
type Base64Request struct {
	Image     string `json:"image" binding:"required"`
	Format    string `json:"format"`
	Quality   int    `json:"quality"`
	MaxWidth  int    `json:"max_width"`
	MaxHeight int    `json:"max_height"`
}

// HasOptimization reports whether any optimization parameter was supplied.
func (r *Base64Request) HasOptimization() bool {
	return r.Format != "" || r.Quality != 0 || r.MaxWidth != 0 || r.MaxHeight != 0
}

func (r *Base64Request) Optimization() OptimizationRequest {
	return OptimizationRequest{
		Format:    r.Format,
		Quality:   r.Quality,
		MaxWidth:  r.MaxWidth,
		MaxHeight: r.MaxHeight,
	}
}

// ReadFileRequest is the JSON body of POST /read-file. The path must point at
// a .txt file inside the configured upload folder.
type ReadFileRequest struct {
	FilePath string `json:"file_path" binding:"required"`
}
