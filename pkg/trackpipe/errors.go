package trackpipe

import (
	"errors"
	"strings"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
var (
	// ErrUsage indicates the command line was malformed (argument count, port, flags).
	ErrUsage = errors.New("usage error")

	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInputNotFound indicates the load stage input directory does not exist.
	ErrInputNotFound = errors.New("input directory does not exist")

	// ErrConnectionFailed indicates database connection failed.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrProvisionFailed indicates table provisioning did not commit.
	ErrProvisionFailed = errors.New("provisioning failed")

	// ErrLoadFailed indicates a single load unit could not be read or written.
	ErrLoadFailed = errors.New("load failed")

	// ErrDownloadFailed indicates the archive could not be fetched.
	ErrDownloadFailed = errors.New("download failed")

	// ErrExtractFailed indicates the archive could not be unpacked or normalized.
	ErrExtractFailed = errors.New("extract failed")

	// ErrUnsupportedAuthMethod indicates the requested authentication method is not supported.
	ErrUnsupportedAuthMethod = errors.New("unsupported authentication method")
)

// cobra reports flag and argument problems as plain errors.
var usagePatterns = []string{
	"unknown flag",
	"unknown shorthand flag",
	"unknown command",
	"accepts ",
	"required flag",
	"invalid argument",
	"flag needs an argument",
}

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrUsage):
		return ExitUsageError
	case errors.Is(err, ErrInputNotFound):
		return ExitInputNotFound
	case errors.Is(err, ErrInvalidConfig), errors.Is(err, ErrUnsupportedAuthMethod):
		return ExitConfigError
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	case errors.Is(err, ErrDownloadFailed):
		return ExitDownloadFailed
	case errors.Is(err, ErrExtractFailed):
		return ExitExtractFailed
	}

	errStr := err.Error()
	for _, p := range usagePatterns {
		if strings.HasPrefix(errStr, p) {
			return ExitUsageError
		}
	}
	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	return ExitGeneralError
}
