package highlight

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nnnkkk7/sqlbuddy/pkg/sqltext"
)

func TestHighlight(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Span
	}{
		{
			name: "Empty",
			text: "",
			want: []Span{},
		},
		{
			name: "CodeAndLineComment",
			text: "SELECT 1; -- done\nSELECT 2;",
			want: []Span{
				{Kind: sqltext.KindCode, Style: StyleNormal, Start: 0, End: 10, Text: "SELECT 1; "},
				{Kind: sqltext.KindSingleLineComment, Style: StyleMuted, Start: 10, End: 17, Text: "-- done"},
				{Kind: sqltext.KindCode, Style: StyleNormal, Start: 17, End: 27, Text: "\nSELECT 2;"},
			},
		},
		{
			name: "RuneOffsets",
			text: "/* café */x",
			want: []Span{
				{Kind: sqltext.KindMultiLineComment, Style: StyleMuted, Start: 0, End: 10, Text: "/* café */"},
				{Kind: sqltext.KindCode, Style: StyleNormal, Start: 10, End: 11, Text: "x"},
			},
		},
		{
			name: "Unterminated",
			text: "SELECT 1 /* oops",
			want: []Span{
				{Kind: sqltext.KindCode, Style: StyleNormal, Start: 0, End: 9, Text: "SELECT 1 "},
				{Kind: sqltext.KindMultiLineComment, Style: StyleMuted, Start: 9, End: 16, Text: "/* oops"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Highlight(tt.text)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Highlight() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

type styledRange struct {
	Start, End int
	Style      Style
}

// fakeBuffer records styling calls like an editor widget would.
type fakeBuffer struct {
	text   string
	caret  int
	styles []Style
	calls  []styledRange
}

func newFakeBuffer(text string, caret int) *fakeBuffer {
	return &fakeBuffer{
		text:   text,
		caret:  caret,
		styles: make([]Style, len([]rune(text))),
	}
}

func (b *fakeBuffer) Text() string { return b.text }

func (b *fakeBuffer) SetStyledSpan(start, end int, style Style) {
	b.calls = append(b.calls, styledRange{Start: start, End: end, Style: style})
	for i := start; i < end; i++ {
		b.styles[i] = style
	}
	// Restyling moves the caret to the end of the span, as text widgets do.
	b.caret = end
}

func (b *fakeBuffer) CaretPosition() int { return b.caret }

func (b *fakeBuffer) SetCaretPosition(pos int) { b.caret = pos }

func TestApply(t *testing.T) {
	text := "SELECT a -- first\nFROM t /* x */;"
	buf := newFakeBuffer(text, 4)

	Apply(buf)

	if buf.caret != 4 {
		t.Errorf("Expected caret 4, got %d", buf.caret)
	}

	var muted strings.Builder
	for i, r := range []rune(text) {
		if buf.styles[i] == StyleMuted {
			muted.WriteRune(r)
		}
	}
	if got, want := muted.String(), "-- first/* x */"; got != want {
		t.Errorf("muted text = %q, want %q", got, want)
	}

	firstCalls := buf.calls
	firstStyles := append([]Style(nil), buf.styles...)
	buf.calls = nil

	Apply(buf)

	if diff := cmp.Diff(firstCalls, buf.calls); diff != "" {
		t.Errorf("second Apply() styled differently (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(firstStyles, buf.styles); diff != "" {
		t.Errorf("second Apply() changed styles (-first +second):\n%s", diff)
	}
	if buf.caret != 4 {
		t.Errorf("Expected caret 4 after second Apply, got %d", buf.caret)
	}
}

func TestShouldRescan(t *testing.T) {
	tests := []struct {
		name string
		ev   KeyEvent
		want bool
	}{
		{name: "PlainKey", ev: KeyEvent{Code: KeyOther}, want: true},
		{name: "PlainV", ev: KeyEvent{Code: KeyV}, want: true},
		{name: "Paste", ev: KeyEvent{Code: KeyV, Control: true}, want: true},
		{name: "ControlShortcut", ev: KeyEvent{Code: KeyOther, Control: true}, want: false},
		{name: "ControlKeyAlone", ev: KeyEvent{Code: KeyControl}, want: false},
		{name: "ControlKeyWithModifier", ev: KeyEvent{Code: KeyControl, Control: true}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldRescan(tt.ev); got != tt.want {
				t.Errorf("ShouldRescan(%+v) = %v, want %v", tt.ev, got, tt.want)
			}
		})
	}
}

func TestTerminalNoopIsLossless(t *testing.T) {
	inputs := []string{
		"SELECT 1;",
		"SELECT a, b -- trailing\nFROM t WHERE x = 'y';",
		"/* header */\r\nINSERT INTO t VALUES (1);\n",
		"SELECT 1 /* unterminated",
		"",
	}

	term := NewTerminal("", "noop")
	for _, input := range inputs {
		var buf bytes.Buffer
		if err := term.Write(&buf, input); err != nil {
			t.Fatalf("Write(%q) error = %v", input, err)
		}
		if diff := cmp.Diff(input, buf.String()); diff != "" {
			t.Errorf("Write(%q) mismatch (-want +got):\n%s", input, diff)
		}
	}
}

func TestWriteANSI(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteANSI(&buf, "SELECT 1; -- note"); err != nil {
		t.Fatalf("WriteANSI() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "\x1b[") {
		t.Errorf("Expected escape sequences in %q", out)
	}
	if !strings.Contains(out, "-- note") {
		t.Errorf("Expected comment text in %q", out)
	}
}

func TestStyleString(t *testing.T) {
	if got := StyleNormal.String(); got != "normal" {
		t.Errorf("StyleNormal.String() = %q", got)
	}
	if got := StyleMuted.String(); got != "muted" {
		t.Errorf("StyleMuted.String() = %q", got)
	}
}
