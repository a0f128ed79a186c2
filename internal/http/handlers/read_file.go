package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"background-remover/internal/models"
)

// ReadFile handles POST /read-file. It reads a stored .txt payload (typically
// a base64 image saved earlier) and returns its contents.
//
// This endpoint is a deliberate trust boundary: only the .txt extension is
// allowed and the resolved path must stay inside the upload folder, so it can
// never be used to disclose arbitrary local files.
func (h *Handler) ReadFile(c *gin.Context) {
	var req models.ReadFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondPipelineError(c, models.NewValidationError("no file_path provided"))
		return
	}

	path, err := h.resolveTxtPath(req.FilePath)
	if err != nil {
		h.respondPipelineError(c, err)
		return
	}

	content, err := os.ReadFile(path)
	if err != nil {
		h.respondPipelineError(c, models.NewValidationError("file is not accessible"))
		return
	}

	c.JSON(http.StatusOK, models.ReadFileResponse{
		Success: true,
		Content: string(content),
	})
}

// resolveTxtPath enforces the read-file invariants before any read attempt:
// .txt extension only, and the cleaned path must resolve inside the upload
// folder.
func (h *Handler) resolveTxtPath(requested string) (string, error) {
	if strings.ToLower(filepath.Ext(requested)) != ".txt" {
		return "", models.NewValidationError("only .txt files can be read")
	}

	base, err := filepath.Abs(h.store.UploadDir())
	if err != nil {
		return "", err
	}

	path := requested
	if !filepath.IsAbs(path) {
		path = filepath.Join(base, path)
	}
	path = filepath.Clean(path)

	rel, err := filepath.Rel(base, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", models.NewValidationError("file path is outside the allowed directory")
	}

	return path, nil
}
