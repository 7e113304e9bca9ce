package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/vvka-141/trackpipe/pkg/trackpipe"
)

const (
	tableWidth = 26
	modeWidth  = 11
)

// Render writes a per-table summary of a load run to w.
func Render(w io.Writer, r *trackpipe.LoadReport, color bool) error {
	_, err := io.WriteString(w, Format(r, color))
	return err
}

// Format returns the summary Render writes.
func Format(r *trackpipe.LoadReport, color bool) string {
	s := newStyles(color)
	var b strings.Builder

	b.WriteString(s.title.Render("Load report"))
	b.WriteString(s.muted.Render(" run " + r.RunID.String()))
	b.WriteString("\n\n")

	if r.Provisioning != nil {
		fmt.Fprintf(&b, "  %s %s\n\n", s.warning.Render(SymbolBullet+" provisioning failed:"), r.Provisioning)
	}

	for _, res := range r.Results {
		name := padRight(res.Unit.Table, tableWidth)
		mode := s.muted.Render(padRight(res.Unit.Mode.String(), modeWidth))
		if res.OK() {
			fmt.Fprintf(&b, "  %s %s %s %d rows in %s\n",
				s.success.Render(SymbolCheck), name, mode, res.Rows, round(res.Duration))
			continue
		}
		fmt.Fprintf(&b, "  %s %s %s %s\n",
			s.failure.Render(SymbolCross), name, mode, s.failure.Render(res.Err.Error()))
	}

	failed := len(r.Failed())
	summary := fmt.Sprintf("%d of %d tables loaded, %d rows, %s",
		len(r.Results)-failed, len(r.Results), r.TotalRows(), round(r.Elapsed()))
	b.WriteString("\n")
	switch {
	case failed == 0:
		b.WriteString(s.success.Render(summary))
	case failed == len(r.Results):
		b.WriteString(s.failure.Render(summary))
	default:
		b.WriteString(s.warning.Render(summary))
	}
	b.WriteString("\n")
	return b.String()
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

func round(d time.Duration) time.Duration {
	return d.Round(time.Millisecond)
}
