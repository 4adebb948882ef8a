package parser

import (
	"strings"

	"github.com/dshills/dictcc-mcp/pkg/types"
)

// ParseWordForm splits the {gender} and [qualifier] annotations off a raw
// dump token.
//
//	ParseWordForm("house {n} [housing]")
//	// WordForm{Word: "house", Gender: "(n)", Qualifier: "[housing]"}
func ParseWordForm(raw string) types.WordForm {
	var form types.WordForm
	working := raw

	if start, end, ok := findSpan(working, '{', '}'); ok {
		gender := working[start:end]
		gender = strings.ReplaceAll(gender, "{", "(")
		gender = strings.ReplaceAll(gender, "}", ")")
		form.Gender = gender
		working = working[:start] + working[end:]
	}

	if start, end, ok := findSpan(working, '[', ']'); ok {
		form.Qualifier = working[start:end]
		working = working[:start] + working[end:]
	}

	form.Word = strings.TrimSpace(working)
	return form
}

// findSpan locates the annotation span opened by the first open delimiter.
// The span extends to the close of the last top-level group that is
// balanced, so "{f} {pl}" is a single span. Returns byte offsets
// [start, end). ok is false when nothing closes or the content is empty.
func findSpan(s string, open, close byte) (start, end int, ok bool) {
	start = strings.IndexByte(s, open)
	if start < 0 {
		return 0, 0, false
	}

	depth := 0
	lastClose := -1
	for i := start; i < len(s); i++ {
		switch s[i] {
		case open:
			depth++
		case close:
			if depth == 0 {
				// stray closer between groups
				continue
			}
			depth--
			if depth == 0 {
				lastClose = i
			}
		}
	}

	if lastClose < 0 || lastClose == start+1 {
		return 0, 0, false
	}
	return start, lastClose + 1, true
}
