package highlight

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/nnnkkk7/sqlbuddy/pkg/sqltext"
)

const (
	DefaultStyle     = "monokai"
	DefaultFormatter = "terminal256"
)

// Terminal renders SQL with escape sequences. Comment boundaries come from
// sqltext.Scan, so terminal output always agrees with Highlight; code between
// comments is colored by chroma's SQL lexer.
type Terminal struct {
	lexer     chroma.Lexer
	formatter chroma.Formatter
	style     *chroma.Style
}

// NewTerminal creates a renderer for the named chroma style and formatter.
// Unknown names fall back to chroma's defaults.
func NewTerminal(styleName, formatterName string) *Terminal {
	if styleName == "" {
		styleName = DefaultStyle
	}
	if formatterName == "" {
		formatterName = DefaultFormatter
	}

	lexer := lexers.Get("sql")
	if lexer == nil {
		lexer = lexers.Fallback
	}

	return &Terminal{
		lexer:     chroma.Coalesce(lexer),
		formatter: formatters.Get(formatterName),
		style:     styles.Get(styleName),
	}
}

// Write renders text to w.
func (t *Terminal) Write(w io.Writer, text string) error {
	var tokens []chroma.Token
	for _, seg := range sqltext.Scan(text) {
		switch seg.Kind {
		case sqltext.KindSingleLineComment:
			tokens = append(tokens, chroma.Token{Type: chroma.CommentSingle, Value: seg.Text})
		case sqltext.KindMultiLineComment:
			tokens = append(tokens, chroma.Token{Type: chroma.CommentMultiline, Value: seg.Text})
		default:
			code, err := t.tokenise(seg.Text)
			if err != nil {
				return err
			}
			tokens = append(tokens, code...)
		}
	}

	if err := t.formatter.Format(w, t.style, chroma.Literator(tokens...)); err != nil {
		return fmt.Errorf("failed to format SQL: %w", err)
	}
	return nil
}

func (t *Terminal) tokenise(code string) ([]chroma.Token, error) {
	it, err := t.lexer.Tokenise(&chroma.TokeniseOptions{State: "root"}, code)
	if err != nil {
		return nil, fmt.Errorf("failed to tokenise SQL: %w", err)
	}
	tokens := it.Tokens()

	// Lexers may terminate their input with a newline; drop it so output
	// stays byte for byte the input.
	if !strings.HasSuffix(code, "\n") && len(tokens) > 0 {
		last := &tokens[len(tokens)-1]
		if strings.HasSuffix(last.Value, "\n") {
			last.Value = strings.TrimSuffix(last.Value, "\n")
			if last.Value == "" {
				tokens = tokens[:len(tokens)-1]
			}
		}
	}
	return tokens, nil
}

// WriteANSI renders text with the default style and formatter.
func WriteANSI(w io.Writer, text string) error {
	return NewTerminal("", "").Write(w, text)
}
