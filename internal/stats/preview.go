package stats

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

const (
	previewWidth = 50
	ellipsis     = "..."
)

// preview shortens s to previewWidth terminal columns without splitting a
// grapheme cluster, ending it with an ellipsis when anything was cut.
func preview(s string) string {
	if displayWidth(s) <= previewWidth {
		return s
	}

	limit := previewWidth - runewidth.StringWidth(ellipsis)
	var b strings.Builder
	used := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		w := runewidth.StringWidth(g.Str())
		if used+w > limit {
			break
		}
		b.WriteString(g.Str())
		used += w
	}
	return b.String() + ellipsis
}

func displayWidth(s string) int {
	width := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		width += runewidth.StringWidth(g.Str())
	}
	return width
}
