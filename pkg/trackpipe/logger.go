package trackpipe

// Logger provides a pluggable logging interface for pipeline stages.
// Implementations must be safe for concurrent use by multiple goroutines.
type Logger interface {
	// Verbose logs detailed diagnostic information.
	// Only logged when verbose mode is enabled.
	Verbose(format string, args ...interface{})

	// Info logs informational messages about normal operations.
	Info(format string, args ...interface{})

	// Warn logs recoverable failures: the stage continues afterwards.
	Warn(format string, args ...interface{})

	// Error logs failures, including per-table load failures the stage survives.
	Error(format string, args ...interface{})
}
