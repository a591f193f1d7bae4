// Package sqltext classifies raw SQL text into code and comment spans and splits
// the remaining code into executable statements.
package sqltext

import "strings"

// Comment and statement markers recognised by the scanner.
const (
	MultiLineCommentStart = "/*"
	MultiLineCommentEnd   = "*/"
	SingleLineComment     = "--"
	Newline               = "\n"
	StatementDelimiter    = ";"
)

// Kind identifies what a Segment holds.
type Kind int

// Segment kinds.
const (
	KindCode Kind = iota
	KindSingleLineComment
	KindMultiLineComment
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindCode:
		return "code"
	case KindSingleLineComment:
		return "single_line_comment"
	case KindMultiLineComment:
		return "multi_line_comment"
	default:
		return "unknown"
	}
}

// IsComment reports whether the kind is either comment variant.
func (k Kind) IsComment() bool {
	return k == KindSingleLineComment || k == KindMultiLineComment
}

// Segment is a contiguous run of input text of a single kind.
type Segment struct {
	Kind Kind
	Text string
}

// Scan partitions text into alternating code and comment segments.
//
// Joining the Text of every returned segment reproduces the input exactly.
// An unterminated multi-line comment runs to the end of the input. A
// single-line comment stops before its newline, which starts the next code
// segment. Scan never fails and has no side effects.
func Scan(text string) []Segment {
	var segments []Segment
	rest := text

	for len(rest) > 0 {
		multi := strings.Index(rest, MultiLineCommentStart)
		single := strings.Index(rest, SingleLineComment)

		switch {
		case multi >= 0 && (single < 0 || multi < single):
			segments = appendCode(segments, rest[:multi])
			rest = rest[multi:]

			// The end marker is searched after the opening marker so "/*/" stays open.
			end := strings.Index(rest[len(MultiLineCommentStart):], MultiLineCommentEnd)
			if end < 0 {
				segments = append(segments, Segment{Kind: KindMultiLineComment, Text: rest})
				rest = ""
				continue
			}

			n := len(MultiLineCommentStart) + end + len(MultiLineCommentEnd)
			segments = append(segments, Segment{Kind: KindMultiLineComment, Text: rest[:n]})
			rest = rest[n:]

		case single >= 0:
			segments = appendCode(segments, rest[:single])
			rest = rest[single:]

			nl := strings.Index(rest, Newline)
			if nl < 0 {
				segments = append(segments, Segment{Kind: KindSingleLineComment, Text: rest})
				rest = ""
				continue
			}

			segments = append(segments, Segment{Kind: KindSingleLineComment, Text: rest[:nl]})
			rest = rest[nl:]

		default:
			segments = appendCode(segments, rest)
			rest = ""
		}
	}

	return segments
}

func appendCode(segments []Segment, text string) []Segment {
	if text == "" {
		return segments
	}
	return append(segments, Segment{Kind: KindCode, Text: text})
}
