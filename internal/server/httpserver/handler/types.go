package handler

import "time"

// Response is the standard API response envelope. All JSON responses use
// this format; the metrics endpoint does not.
type Response struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
	Details   any    `json:"details,omitempty"`
}

// NewResponse creates a success response.
func NewResponse(requestID, message string, data any) *Response {
	if message == "" {
		message = "Success"
	}
	return &Response{
		Code:      "OK",
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(requestID, code, message string, details any) *Response {
	return &Response{
		Code:      code,
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Details:   details,
	}
}

// ItemRequest is the request body for POST /data and PUT /data/{id}.
type ItemRequest struct {
	Name  string `json:"name"`
	Value string `json:"value,omitempty"`
}

// ItemResponse represents an item in API responses.
type ItemResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Value     string    `json:"value,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListItemsResponse is the response body for GET /data.
type ListItemsResponse struct {
	Items []ItemResponse `json:"items"`
	Total int            `json:"total"`
}

// HealthResponse is the response body for GET /health and GET /health/live.
type HealthResponse struct {
	Status        string  `json:"status"`
	Time          string  `json:"time"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Version       string  `json:"version,omitempty"`
}

// ReadinessResponse is the body of GET /health/ready.
type ReadinessResponse struct {
	Status        string   `json:"status"`
	Time          string   `json:"time"`
	UptimeSeconds float64  `json:"uptime_seconds"`
	Reasons       []string `json:"reasons,omitempty"`
}

// SystemResponse is the system section of the detailed health check.
type SystemResponse struct {
	Platform      string             `json:"platform"`
	Arch          string             `json:"arch"`
	GoVersion     string             `json:"go_version"`
	CPUCount      int                `json:"cpu_count"`
	Sampled       bool               `json:"sampled"`
	SampledAt     string             `json:"sampled_at,omitempty"`
	CPUPercent    float64            `json:"cpu_percent"`
	MemoryPercent float64            `json:"memory_percent"`
	DiskPercent   map[string]float64 `json:"disk_percent,omitempty"`
}

// DetailedHealthResponse is the body of GET /health/detailed.
type DetailedHealthResponse struct {
	Status        string         `json:"status"`
	Time          string         `json:"time"`
	UptimeSeconds float64        `json:"uptime_seconds"`
	Version       string         `json:"version,omitempty"`
	System        SystemResponse `json:"system"`
	Issues        []string       `json:"issues"`
}
