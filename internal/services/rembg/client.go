package rembg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"background-remover/internal/config"
	"background-remover/internal/models"
)

// maxResultSize caps how much of the model response is read. Outputs are PNGs
// of the input dimensions, so 64MB leaves generous headroom.
const maxResultSize = 64 << 20

// Client wraps the external background-removal capability behind a uniform
// call: image bytes in, PNG bytes with transparent background out. The model
// itself is a black box reached over HTTP (a rembg-compatible server). Calls
// are bounded by a timeout and never retried.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	logger     *zap.Logger
}

func New(cfg config.RembgConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL: cfg.URL,
		timeout: cfg.Timeout,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

// Remove sends the image to the model and returns the background-removed
// result. A timeout surfaces as ProcessingError{Timeout}; any other failure
// as ProcessingError{ModelFailure}.
func (c *Client) Remove(ctx context.Context, image []byte, filename string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, &models.ProcessingError{Kind: models.ProcessingModelFailure, Cause: err}
	}
	if _, err := part.Write(image); err != nil {
		return nil, &models.ProcessingError{Kind: models.ProcessingModelFailure, Cause: err}
	}
	if err := writer.Close(); err != nil {
		return nil, &models.ProcessingError{Kind: models.ProcessingModelFailure, Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/remove", body)
	if err != nil {
		return nil, &models.ProcessingError{Kind: models.ProcessingModelFailure, Cause: err}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			c.logger.Warn("Background removal timed out",
				zap.Duration("timeout", c.timeout),
				zap.Int("input_size", len(image)))
			return nil, &models.ProcessingError{Kind: models.ProcessingTimeout, Cause: err}
		}
		return nil, &models.ProcessingError{Kind: models.ProcessingModelFailure, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &models.ProcessingError{
			Kind:  models.ProcessingModelFailure,
			Cause: fmt.Errorf("model returned status %d", resp.StatusCode),
		}
	}

	result, err := io.ReadAll(io.LimitReader(resp.Body, maxResultSize))
	if err != nil {
		if isTimeout(err) {
			return nil, &models.ProcessingError{Kind: models.ProcessingTimeout, Cause: err}
		}
		return nil, &models.ProcessingError{Kind: models.ProcessingModelFailure, Cause: err}
	}
	if len(result) == 0 {
		return nil, &models.ProcessingError{
			Kind:  models.ProcessingModelFailure,
			Cause: errors.New("model returned empty response"),
		}
	}

	c.logger.Info("Background removal complete",
		zap.Int("input_size", len(image)),
		zap.Int("output_size", len(result)),
		zap.Duration("latency", time.Since(start)))

	return result, nil
}

// Health probes the model endpoint.
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("model endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
