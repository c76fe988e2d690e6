package cli

import (
	"fmt"
	"io"
	"strings"
)

// ─── Progress Bar ───────────────────────────────────────────────────────────
// Level progress rendered as: [=========>..........]  45%  135 XP to level 3

const barWidth = 30 // Characters for the progress bar

// renderBar draws a bar for pct in [0, 100].
func renderBar(pct float64) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}

	filled := int(pct / 100 * float64(barWidth))
	if filled > barWidth {
		filled = barWidth
	}
	empty := barWidth - filled

	var bar string
	if filled == barWidth {
		bar = strings.Repeat("=", filled)
	} else if filled > 0 {
		bar = strings.Repeat("=", filled-1) + ">" + strings.Repeat(".", empty)
	} else {
		bar = strings.Repeat(".", barWidth)
	}
	return "[" + bar + "]"
}

// levelLine renders the bar with the remaining XP for the next level.
func levelLine(level int, pct float64, toNext int64, maxed bool) string {
	if maxed {
		return fmt.Sprintf("%s %3.0f%% | max level", renderBar(100), 100.0)
	}
	return fmt.Sprintf("%s %3.0f%% | %d XP to level %d", renderBar(pct), pct, toNext, level+1)
}

// ─── Status Line ────────────────────────────────────────────────────────────

// statusLine writes transient one-line status updates, such as while a
// puzzle is being generated.
type statusLine struct {
	w io.Writer
}

func (s statusLine) working(msg string) {
	clearLine(s.w)
	fmt.Fprintf(s.w, "[...] %s", msg)
}

func (s statusLine) done() {
	clearLine(s.w)
}

func clearLine(w io.Writer) {
	fmt.Fprintf(w, "\r\033[K")
}
