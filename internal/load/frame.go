package load

import (
	"context"

	"github.com/vvka-141/trackpipe/internal/engine"
)

// Frame is a staged dataset being streamed to the destination.
// *engine.Frame implements it.
type Frame interface {
	Columns() []string
	Next() bool
	Values() ([]any, error)
	Err() error
	Close() error
}

// Reader opens a staged dataset by filesystem path.
type Reader interface {
	Read(ctx context.Context, path string) (Frame, error)
}

// ReaderFunc adapts a function to Reader.
type ReaderFunc func(ctx context.Context, path string) (Frame, error)

func (f ReaderFunc) Read(ctx context.Context, path string) (Frame, error) {
	return f(ctx, path)
}

// EngineReader reads parquet datasets through a compute session.
func EngineReader(session *engine.Session) Reader {
	return ReaderFunc(func(ctx context.Context, path string) (Frame, error) {
		frame, err := session.ReadParquet(ctx, path)
		if err != nil {
			return nil, err
		}
		return frame, nil
	})
}

var _ Frame = (*engine.Frame)(nil)
