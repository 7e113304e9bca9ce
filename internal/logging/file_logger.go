package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// FileLogger writes timestamped logrus records, normally to a stage log file
// such as load.log. Every record carries the stage name and the run id.
type FileLogger struct {
	entry  *logrus.Entry
	closer io.Closer
}

// NewFileLogger opens (appending) or creates path and logs to it.
// Verbose messages are written at debug level and only when verbose is set.
func NewFileLogger(path, stage, runID string, verbose bool) (*FileLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	l := NewWriterLogger(f, stage, runID, verbose)
	l.closer = f
	return l, nil
}

// NewWriterLogger logs to w without taking ownership of it.
func NewWriterLogger(w io.Writer, stage, runID string, verbose bool) *FileLogger {
	base := logrus.New()
	base.SetOutput(w)
	base.SetFormatter(&logrus.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	if verbose {
		base.SetLevel(logrus.DebugLevel)
	} else {
		base.SetLevel(logrus.InfoLevel)
	}
	fields := logrus.Fields{"stage": stage}
	if runID != "" {
		fields["run_id"] = runID
	}
	return &FileLogger{entry: base.WithFields(fields)}
}

func (l *FileLogger) Verbose(format string, args ...interface{}) { l.entry.Debugf(format, args...) }
func (l *FileLogger) Info(format string, args ...interface{})    { l.entry.Infof(format, args...) }
func (l *FileLogger) Warn(format string, args ...interface{})    { l.entry.Warnf(format, args...) }
func (l *FileLogger) Error(format string, args ...interface{})   { l.entry.Errorf(format, args...) }

// Close closes the underlying file, if this logger opened it.
func (l *FileLogger) Close() error {
	if l.closer == nil {
		return nil
	}
	err := l.closer.Close()
	l.closer = nil
	return err
}
