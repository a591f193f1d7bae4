package sqltext

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "CommentAndTrailingDelimiter",
			text: "SELECT 1; -- comment\nSELECT 2;",
			want: []string{"SELECT 1", "SELECT 2"},
		},
		{
			name: "DelimiterInsideComment",
			text: "/* a; b */ SELECT 3;",
			want: []string{"SELECT 3"},
		},
		{
			name: "UnterminatedComment",
			text: "SELECT 1; /* oops",
			want: []string{"SELECT 1"},
		},
		{
			name: "MultiLineStatementIsFlattened",
			text: "SELECT id,\n       name\nFROM users\nWHERE id = 1;",
			want: []string{"SELECT id,        name FROM users WHERE id = 1"},
		},
		{
			name: "CarriageReturns",
			text: "SELECT 1\r\n;\rSELECT 2",
			want: []string{"SELECT 1", "SELECT 2"},
		},
		{
			name: "CommentBetweenTokensDoesNotGlueThem",
			text: "SELECT/* x */1",
			want: []string{"SELECT 1"},
		},
		{
			name: "CommentBetweenSpacedTokensAddsNothing",
			text: "SELECT /* x */ 1",
			want: []string{"SELECT  1"},
		},
		{
			name: "SingleLineCommentOnOwnLine",
			text: "-- header\nSELECT 1;\n-- footer",
			want: []string{"SELECT 1"},
		},
		{
			name: "EmptyStatementsDropped",
			text: ";;  ; SELECT 1;;",
			want: []string{"SELECT 1"},
		},
		{
			name: "Empty",
			text: "",
			want: nil,
		},
		{
			name: "WhitespaceOnly",
			text: "  \n\t ",
			want: nil,
		},
		{
			name: "CommentsOnly",
			text: "-- one\n/* two */\n-- three",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Split(tt.text)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Split() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStripComments(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "NoComments", text: "SELECT 1;", want: "SELECT 1;"},
		{name: "LineComment", text: "SELECT 1; -- c\nSELECT 2;", want: "SELECT 1; \nSELECT 2;"},
		{name: "BlockCommentGluedTokens", text: "a/*x*/b", want: "a b"},
		{name: "UnterminatedBlock", text: "SELECT 1; /* oops", want: "SELECT 1; "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripComments(tt.text); got != tt.want {
				t.Errorf("StripComments(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}
