package catalog

import (
	"fmt"
	"net/http"
	"strings"
)

const rateLimitCode = "TooManyRequests"

// APIError is returned when the catalog API answers with a non-2xx status
// or an in-body error payload. Message never includes credentials.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e == nil {
		return "catalog error"
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("catalog search failed: status %d: %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("catalog search failed: %s: %s", e.Code, e.Message)
}

// RateLimited reports whether the error carries the catalog API's
// throttling signature.
func (e *APIError) RateLimited() bool {
	if e == nil {
		return false
	}
	if e.StatusCode == http.StatusTooManyRequests {
		return true
	}
	if e.Code == rateLimitCode {
		return true
	}
	return strings.Contains(e.Message, "Too Many Requests")
}
