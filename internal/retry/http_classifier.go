package retry

import (
	"errors"
	"fmt"
	"net/http"
)

// StatusError reports a non-200 response from an archive download.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("failed to download file. status code: %d", e.StatusCode)
}

// HTTPErrorClassifier retries throttling, 5xx responses and network failures.
// Other 4xx responses are fatal.
type HTTPErrorClassifier struct{}

func NewHTTPErrorClassifier() *HTTPErrorClassifier {
	return &HTTPErrorClassifier{}
}

func (c *HTTPErrorClassifier) IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == http.StatusTooManyRequests,
			statusErr.StatusCode == http.StatusRequestTimeout:
			return true
		case statusErr.StatusCode >= 500:
			return statusErr.StatusCode != http.StatusNotImplemented
		default:
			return false
		}
	}

	return isTransientNetError(err)
}
