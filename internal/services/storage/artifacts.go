package storage

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	storage_go "github.com/supabase-community/storage-go"
	"go.uber.org/zap"

	"background-remover/internal/config"
)

// ArtifactStore owns the upload and output directories. Every intermediate
// file written during processing lands here and is cleaned up by the janitor
// on age alone, so a crash mid-request never leaks files indefinitely.
//
// When Supabase is configured, completed outputs can additionally be mirrored
// to a bucket and served by public URL.
type ArtifactStore struct {
	uploadDir string
	outputDir string
	sbClient  *storage_go.Client
	bucket    string
	logger    *zap.Logger
}

func New(cfg config.StorageConfig, sbCfg config.SupabaseConfig, logger *zap.Logger) (*ArtifactStore, error) {
	for _, dir := range []string{cfg.UploadFolder, cfg.OutputFolder} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	s := &ArtifactStore{
		uploadDir: cfg.UploadFolder,
		outputDir: cfg.OutputFolder,
		logger:    logger,
	}

	if sbCfg.URL != "" && sbCfg.KEY != "" && sbCfg.BUCKET != "" {
		s.sbClient = storage_go.NewClient(sbCfg.URL+"/storage/v1", sbCfg.KEY, nil)
		s.bucket = sbCfg.BUCKET
	}

	return s, nil
}

// UploadDir returns the directory inbound artifacts are written to. The
// read-file endpoint uses it as the allowed base path.
func (s *ArtifactStore) UploadDir() string {
	return s.uploadDir
}

// SaveUpload persists an inbound image under the upload directory and returns
// the file path.
func (s *ArtifactStore) SaveUpload(data []byte, ext string) (string, error) {
	return s.save(s.uploadDir, "input", data, ext)
}

// SaveOutput persists a processed image under the output directory and
// returns the file path.
func (s *ArtifactStore) SaveOutput(data []byte, ext string) (string, error) {
	return s.save(s.outputDir, "output", data, ext)
}

func (s *ArtifactStore) save(dir, suffix string, data []byte, ext string) (string, error) {
	name := fmt.Sprintf("%s_%s.%s", uuid.New().String(), suffix, ext)
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write artifact %s: %w", path, err)
	}
	return path, nil
}

// Read returns the contents of a previously saved artifact.
func (s *ArtifactStore) Read(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// MirrorEnabled reports whether a Supabase bucket is configured.
func (s *ArtifactStore) MirrorEnabled() bool {
	return s.sbClient != nil
}

// Mirror uploads an output artifact to the configured Supabase bucket and
// returns its public URL. No-op when the mirror is not configured.
func (s *ArtifactStore) Mirror(ctx context.Context, path, contentType string) (string, error) {
	if s.sbClient == nil {
		return "", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read artifact for mirror: %w", err)
	}

	key := "processed/" + filepath.Base(path)
	_, err = s.sbClient.UploadFile(s.bucket, key, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to upload to supabase: %w", err)
	}

	publicURL := s.sbClient.GetPublicUrl(s.bucket, key)
	return publicURL.SignedURL, nil
}
