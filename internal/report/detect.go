package report

import (
	"io"
	"os"

	"golang.org/x/term"
)

// UseColor determines whether the report written to w should be styled.
//
// Returns false if:
//   - TRACKPIPE_PLAIN=1 is set
//   - CI is set (common CI/CD convention)
//   - NO_COLOR is set
//   - w is not a terminal (log files, pipes)
func UseColor(w io.Writer) bool {
	if os.Getenv("TRACKPIPE_PLAIN") == "1" {
		return false
	}
	if os.Getenv("CI") != "" {
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}

	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
