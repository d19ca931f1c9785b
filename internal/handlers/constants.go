package handlers

const (
	ErrInvalidJSON         = "Invalid request body"
	ErrUnauthorized        = "Unauthorized"
	ErrInternalServerError = "Internal server error"
	ErrTooManyRequests     = "Too many requests, try again later"
	ErrNoActiveSession     = "No review session in progress"

	historyLimit   = 20
	maxRequestBody = 1 << 20
)
