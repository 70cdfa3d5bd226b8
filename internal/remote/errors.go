package remote

import (
	"errors"
	"fmt"
)

// ErrUnauthorized indicates the content API rejected the token
var ErrUnauthorized = errors.New("content API rejected credentials")

// ErrRateLimited indicates the API rate limit was exceeded
var ErrRateLimited = errors.New("content API rate limit exceeded")

// ServerError represents a 5xx error from the content API
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("content API server error: HTTP %d", e.StatusCode)
}
