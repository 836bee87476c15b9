package tui

import (
	"strings"

	"github.com/verte-zerg/phonopass/pkg/phonetic"
	"github.com/verte-zerg/phonopass/pkg/pwgen"
)

// renderPassword colors each segment by kind so the syllable structure is
// visible.
func renderPassword(p pwgen.Password, selected bool) string {
	var b strings.Builder
	for _, seg := range p.Segments {
		style := consonantStyle
		if seg.Kind == phonetic.Vowel {
			style = vowelStyle
		}
		if selected {
			style = style.Bold(true)
		}
		b.WriteString(style.Render(seg.Text))
	}
	if p.Digits != "" {
		b.WriteString(digitStyle.Render(p.Digits))
	}
	return b.String()
}

// breakdown spells the segments of p separated by dots, e.g. "str·e·ngth".
func breakdown(p pwgen.Password) string {
	parts := make([]string, 0, len(p.Segments)+1)
	for _, seg := range p.Segments {
		parts = append(parts, seg.Text)
	}
	if p.Digits != "" {
		parts = append(parts, p.Digits)
	}
	return strings.Join(parts, "·")
}
