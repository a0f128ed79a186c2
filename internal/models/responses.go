package models

import "time"

// APIResponse is the generic envelope for JSON endpoints.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Base64Response is the success body of POST /remove-background-base64.
type Base64Response struct {
	Success      bool                 `json:"success"`
	Image        string               `json:"image"`
	Mimetype     string               `json:"mimetype"`
	Size         int                  `json:"size"`
	Optimization *OptimizationSummary `json:"optimization,omitempty"`
}

// ReadFileResponse is the success body of POST /read-file.
type ReadFileResponse struct {
	Success bool   `json:"success"`
	Content string `json:"content"`
}

// ValidationResponse is the 400 body for rejected input.
type ValidationResponse struct {
	Success      bool     `json:"success"`
	Error        string   `json:"error"`
	AllowedTypes []string `json:"allowed_types,omitempty"`
}

// RateLimitResponse is the dedicated 429 shape. RetryAfter is in seconds.
type RateLimitResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retry_after"`
}

// HealthCheck reports overall service health plus per-dependency checks.
type HealthCheck struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}
