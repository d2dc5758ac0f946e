package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jsamuelsen/quotekeeper/internal/app"
	"github.com/jsamuelsen/quotekeeper/internal/domain"
)

// WriteSyncStatus writes a short human summary of s. now anchors relative
// times such as "3 minutes ago".
func WriteSyncStatus(w io.Writer, s app.SyncStatus, now time.Time) {
	var b strings.Builder

	fmt.Fprintf(&b, "state:     %s\n", s.State)

	if s.LastRun.IsZero() {
		b.WriteString("last run:  never\n")
	} else {
		fmt.Fprintf(&b, "last run:  %s (%s)\n", humanize.RelTime(s.LastRun, now, "ago", "from now"), s.LastResult)
	}

	if s.LastError != "" {
		fmt.Fprintf(&b, "error:     %s\n", s.LastError)
	}

	if c := s.Conflict; c != nil {
		fmt.Fprintf(&b, "conflict:  %s\n", c.Summary)
		fmt.Fprintf(&b, "  local:   %s\n", countQuotes(c.Local))
		fmt.Fprintf(&b, "  remote:  %s\n", countQuotes(c.Remote))

		if c.Diff != "" {
			b.WriteString(c.Diff)

			if !strings.HasSuffix(c.Diff, "\n") {
				b.WriteString("\n")
			}
		}
	}

	_, _ = io.WriteString(w, b.String())
}

// WriteExported reports a finished export.
func WriteExported(w io.Writer, path string, size, count int) {
	_, _ = fmt.Fprintf(w, "Exported %s to %s (%s)\n", plural(count), path, humanize.Bytes(uint64(size)))
}

// WriteImported reports a finished import.
func WriteImported(w io.Writer, imported, total int) {
	_, _ = fmt.Fprintf(w, "Imported %s, %s in total\n", plural(imported), humanize.Comma(int64(total)))
}

// WriteQuotes lists c with 1-based positions.
func WriteQuotes(w io.Writer, c domain.Collection) {
	var b strings.Builder

	for i, q := range c {
		fmt.Fprintf(&b, "%4s  [%s] %s\n", humanize.Comma(int64(i+1)), q.Category, q.Text)
	}

	if len(c) == 0 {
		b.WriteString("No quotes.\n")
	}

	_, _ = io.WriteString(w, b.String())
}

func countQuotes(c domain.Collection) string {
	return plural(len(c))
}

func plural(n int) string {
	if n == 1 {
		return "1 quote"
	}

	return humanize.Comma(int64(n)) + " quotes"
}
