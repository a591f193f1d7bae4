// Package highlight styles SQL text for display: comments are muted, code is
// shown normally.
package highlight

import (
	"unicode/utf8"

	"github.com/nnnkkk7/sqlbuddy/pkg/sqltext"
)

// Style is a display style applied to a span of text.
type Style int

const (
	StyleNormal Style = iota
	StyleMuted
)

// String returns the style name.
func (s Style) String() string {
	switch s {
	case StyleNormal:
		return "normal"
	case StyleMuted:
		return "muted"
	default:
		return "unknown"
	}
}

// StyleFor returns the style used for a segment kind.
func StyleFor(kind sqltext.Kind) Style {
	if kind.IsComment() {
		return StyleMuted
	}
	return StyleNormal
}

// Span is a styled segment. Start and End are rune offsets, End exclusive.
type Span struct {
	Kind  sqltext.Kind
	Style Style
	Start int
	End   int
	Text  string
}

// Highlight scans text and returns one span per segment, covering the whole
// text in order.
func Highlight(text string) []Span {
	segments := sqltext.Scan(text)
	spans := make([]Span, 0, len(segments))

	offset := 0
	for _, seg := range segments {
		n := utf8.RuneCountInString(seg.Text)
		spans = append(spans, Span{
			Kind:  seg.Kind,
			Style: StyleFor(seg.Kind),
			Start: offset,
			End:   offset + n,
			Text:  seg.Text,
		})
		offset += n
	}
	return spans
}

// Buffer is an editable text buffer that can style ranges of its text.
// Positions are rune offsets.
type Buffer interface {
	Text() string
	SetStyledSpan(start, end int, style Style)
	CaretPosition() int
	SetCaretPosition(pos int)
}

// Apply restyles the entire buffer from a fresh scan and puts the caret back
// where it was. Applying twice to unchanged text yields the same styling.
func Apply(buf Buffer) []Span {
	caret := buf.CaretPosition()

	spans := Highlight(buf.Text())
	for _, sp := range spans {
		buf.SetStyledSpan(sp.Start, sp.End, sp.Style)
	}

	buf.SetCaretPosition(caret)
	return spans
}

// KeyCode identifies the key of a KeyEvent.
type KeyCode int

const (
	KeyOther KeyCode = iota
	KeyV
	KeyControl
)

// KeyEvent is a key release in the editor.
type KeyEvent struct {
	Code    KeyCode
	Control bool
}

// ShouldRescan reports whether a key release can have changed the text and
// the buffer must be highlighted again: a paste shortcut, or any key typed
// without the control modifier other than the control key itself.
func ShouldRescan(ev KeyEvent) bool {
	return ev.Code == KeyV || (!ev.Control && ev.Code != KeyControl)
}
