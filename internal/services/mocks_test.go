package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vvka-141/trackpipe/pkg/trackpipe"
)

type mockProvisioner struct {
	err    error
	calls  int
	target *trackpipe.ConnectionConfig
}

func (m *mockProvisioner) Provision(_ context.Context, target *trackpipe.ConnectionConfig) error {
	m.calls++
	m.target = target
	return m.err
}

type mockLoader struct {
	results  []trackpipe.LoadResult
	inputDir string
	calls    int
}

func (m *mockLoader) Run(_ context.Context, inputDir string) []trackpipe.LoadResult {
	m.calls++
	m.inputDir = inputDir
	return m.results
}

// mockFetcher writes body as the archive unless err is set.
type mockFetcher struct {
	body    []byte
	err     error
	url     string
	archive string
}

func (m *mockFetcher) Fetch(_ context.Context, rawURL, outputDir string) (string, error) {
	m.url = rawURL
	if m.err != nil {
		return "", m.err
	}
	m.archive = filepath.Join(outputDir, trackpipe.ArchiveFileName)
	return m.archive, os.WriteFile(m.archive, m.body, 0o644)
}

// captureLogger records formatted lines per level.
type captureLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *captureLogger) add(level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, level+" "+fmt.Sprintf(format, args...))
}

func (l *captureLogger) Verbose(format string, args ...interface{}) { l.add("VERBOSE", format, args...) }
func (l *captureLogger) Info(format string, args ...interface{})    { l.add("INFO", format, args...) }
func (l *captureLogger) Warn(format string, args ...interface{})    { l.add("WARN", format, args...) }
func (l *captureLogger) Error(format string, args ...interface{})   { l.add("ERROR", format, args...) }

func (l *captureLogger) has(line string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, got := range l.lines {
		if got == line {
			return true
		}
	}
	return false
}
