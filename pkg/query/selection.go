package query

// Selection is a rune range [Start, End) of an editor buffer.
type Selection struct {
	Start int
	End   int
}

// Empty reports whether the selection covers no text.
func (s Selection) Empty() bool {
	return s.End <= s.Start
}

// SelectRunText returns the text that a run should execute: the selected
// part of text when the selection is non-empty, otherwise all of it.
// Out of range bounds are clamped.
func SelectRunText(text string, sel Selection) string {
	if sel.Empty() {
		return text
	}

	runes := []rune(text)
	start := clamp(sel.Start, 0, len(runes))
	end := clamp(sel.End, start, len(runes))
	if start == end {
		return text
	}
	return string(runes[start:end])
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
