package sqltext

import (
	"strings"
	"unicode"

	"github.com/blastrain/vitess-sqlparser/sqlparser"
)

// StatementType represents the category of a SQL statement.
type StatementType int

// Statement types.
const (
	StatementTypeQuery       StatementType = iota // SELECT, SHOW, DESCRIBE
	StatementTypeDML                              // INSERT, UPDATE, DELETE
	StatementTypeDDL                              // CREATE, DROP, ALTER
	StatementTypeTransaction                      // BEGIN, COMMIT, ROLLBACK
	StatementTypeOther                            // Unknown or unsupported
)

// String returns the lowercase name of the statement type.
func (t StatementType) String() string {
	switch t {
	case StatementTypeQuery:
		return "query"
	case StatementTypeDML:
		return "dml"
	case StatementTypeDDL:
		return "ddl"
	case StatementTypeTransaction:
		return "transaction"
	default:
		return "other"
	}
}

// Classifier decides how a single statement should be executed.
type Classifier struct{}

// NewClassifier creates a new SQL classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify analyzes a statement and returns its category.
func (c *Classifier) Classify(sql string) StatementType {
	keyword := firstKeyword(sql)

	switch {
	case c.ProducesRows(sql):
		return StatementTypeQuery
	case isOneOf(keyword, "CREATE", "DROP", "ALTER", "TRUNCATE", "RENAME"):
		return StatementTypeDDL
	case isOneOf(keyword, "BEGIN", "START", "COMMIT", "ROLLBACK", "END", "ABORT"):
		return StatementTypeTransaction
	case isOneOf(keyword, "INSERT", "UPDATE", "DELETE", "MERGE", "REPLACE", "COPY", "UPSERT"):
		return StatementTypeDML
	default:
		return StatementTypeOther
	}
}

// ProducesRows reports whether the statement is expected to return row-sets
// rather than an update count.
//
// Any statement with a RETURNING clause produces rows. Otherwise the
// statement is parsed; when the parser does not understand the dialect, the
// leading keyword decides instead.
func (c *Classifier) ProducesRows(sql string) bool {
	trimmed := strings.TrimSpace(sql)
	if trimmed == "" {
		return false
	}

	if hasReturningClause(trimmed) {
		return true
	}

	stmt, err := sqlparser.Parse(trimmed)
	if err == nil {
		switch stmt.(type) {
		case *sqlparser.Select, *sqlparser.Union, *sqlparser.ParenSelect, *sqlparser.Show, *sqlparser.OtherRead:
			return true
		}
	}

	return isQueryKeyword(firstKeyword(trimmed))
}

// isQueryKeyword checks if a leading keyword starts a row-producing statement.
func isQueryKeyword(keyword string) bool {
	return isOneOf(keyword,
		"SELECT", "SHOW", "DESCRIBE", "DESC", "EXPLAIN", "WITH", "VALUES",
		"PRAGMA", "TABLE", "FROM", "SUMMARIZE", "LIST", "CALL", "EXEC",
		"PIVOT", "UNPIVOT", "PIVOT_WIDER", "PIVOT_LONGER",
	)
}

// firstKeyword returns the leading word of sql in upper case. A word is a run
// of letters, digits and underscores.
func firstKeyword(sql string) string {
	sql = strings.TrimLeftFunc(sql, unicode.IsSpace)
	end := strings.IndexFunc(sql, func(r rune) bool { return !isWordRune(r) })
	if end < 0 {
		end = len(sql)
	}
	return strings.ToUpper(sql[:end])
}

// hasReturningClause reports whether RETURNING appears as a whole word
// outside string literals and quoted identifiers.
func hasReturningClause(sql string) bool {
	var quote rune
	word := strings.Builder{}
	flush := func() bool {
		found := strings.EqualFold(word.String(), "RETURNING")
		word.Reset()
		return found
	}

	for _, r := range sql {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"' || r == '`':
			if flush() {
				return true
			}
			quote = r
		case isWordRune(r):
			word.WriteRune(r)
		default:
			if flush() {
				return true
			}
		}
	}
	return quote == 0 && flush()
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isOneOf(keyword string, candidates ...string) bool {
	for _, c := range candidates {
		if keyword == c {
			return true
		}
	}
	return false
}

// DefaultClassifier is the default SQL classifier instance.
var DefaultClassifier = NewClassifier()

// ProducesRows is a convenience function using the default classifier.
func ProducesRows(sql string) bool {
	return DefaultClassifier.ProducesRows(sql)
}

// Classify is a convenience function using the default classifier.
func Classify(sql string) StatementType {
	return DefaultClassifier.Classify(sql)
}
