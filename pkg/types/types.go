package types

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Human-readable error message.
	// example: base64 encoding format is not yet supported. Use 'float' instead.
	Detail string `json:"detail" example:"base64 encoding format is not yet supported. Use 'float' instead."`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// InfoResponse is returned by GET /.
type InfoResponse struct {
	// example: LLM Server is running
	Message string `json:"message" example:"LLM Server is running"`
	// example: 1.0.0
	Version string `json:"version" example:"1.0.0"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	// example: healthy
	Status string `json:"status" example:"healthy"`
}
