package logging

import "github.com/vvka-141/trackpipe/pkg/trackpipe"

// Multi forwards every message to each of its loggers in order.
type Multi []trackpipe.Logger

func (m Multi) Verbose(format string, args ...interface{}) {
	for _, l := range m {
		l.Verbose(format, args...)
	}
}

func (m Multi) Info(format string, args ...interface{}) {
	for _, l := range m {
		l.Info(format, args...)
	}
}

func (m Multi) Warn(format string, args ...interface{}) {
	for _, l := range m {
		l.Warn(format, args...)
	}
}

func (m Multi) Error(format string, args ...interface{}) {
	for _, l := range m {
		l.Error(format, args...)
	}
}

var (
	_ trackpipe.Logger = (*ConsoleLogger)(nil)
	_ trackpipe.Logger = (*NullLogger)(nil)
	_ trackpipe.Logger = (*FileLogger)(nil)
	_ trackpipe.Logger = Multi(nil)
)
