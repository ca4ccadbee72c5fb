package analytics

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrNotReadOnly is returned for statements that could modify the store.
var ErrNotReadOnly = errors.New("statement is not a read-only query")

var forbiddenKeywords = map[string]struct{}{
	"INSERT": {}, "UPDATE": {}, "DELETE": {}, "MERGE": {}, "UPSERT": {},
	"CREATE": {}, "ALTER": {}, "DROP": {}, "TRUNCATE": {}, "RENAME": {},
	"GRANT": {}, "REVOKE": {}, "ATTACH": {}, "DETACH": {}, "PRAGMA": {},
	"VACUUM": {}, "REINDEX": {}, "ANALYZE": {}, "COPY": {}, "CALL": {},
	"EXEC": {}, "EXECUTE": {}, "LOCK": {}, "COMMIT": {}, "ROLLBACK": {},
	"BEGIN": {}, "SAVEPOINT": {}, "RELEASE": {}, "INTO": {}, "LOAD_EXTENSION": {},
	"NEXTVAL": {}, "SETVAL": {}, "LISTEN": {}, "NOTIFY": {},
}

// CheckReadOnly accepts a single SELECT or WITH statement and rejects
// anything containing a data-modifying or schema keyword outside string
// literals and comments.
func CheckReadOnly(query string) error {
	stripped, err := stripLiterals(query)
	if err != nil {
		return err
	}

	body := strings.TrimSpace(stripped)
	body = strings.TrimRightFunc(body, func(r rune) bool { return r == ';' || unicode.IsSpace(r) })
	if body == "" {
		return fmt.Errorf("%w: query is empty", ErrNotReadOnly)
	}
	if strings.Contains(body, ";") {
		return fmt.Errorf("%w: multiple statements are not allowed", ErrNotReadOnly)
	}

	words := keywords(body)
	if len(words) == 0 || (words[0] != "SELECT" && words[0] != "WITH") {
		return fmt.Errorf("%w: only SELECT and WITH statements are allowed", ErrNotReadOnly)
	}
	for _, w := range words {
		if _, bad := forbiddenKeywords[w]; bad {
			return fmt.Errorf("%w: %s is not allowed", ErrNotReadOnly, w)
		}
	}
	return nil
}

// stripLiterals blanks string literals, quoted identifiers and comments.
func stripLiterals(query string) (string, error) {
	var b strings.Builder
	b.Grow(len(query))

	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'' || c == '"' || c == '`':
			end := closingQuote(query, i+1, c)
			if end < 0 {
				return "", fmt.Errorf("%w: unterminated quote", ErrNotReadOnly)
			}
			b.WriteString(" '' ")
			i = end
		case c == '-' && i+1 < len(query) && query[i+1] == '-':
			nl := strings.IndexByte(query[i:], '\n')
			if nl < 0 {
				i = len(query)
			} else {
				i += nl
			}
			b.WriteByte(' ')
		case c == '/' && i+1 < len(query) && query[i+1] == '*':
			end := strings.Index(query[i+2:], "*/")
			if end < 0 {
				return "", fmt.Errorf("%w: unterminated comment", ErrNotReadOnly)
			}
			i += end + 3
			b.WriteByte(' ')
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}

// closingQuote finds the quote ending a literal that starts at from. A
// doubled quote is an escaped quote.
func closingQuote(s string, from int, quote byte) int {
	for i := from; i < len(s); i++ {
		if s[i] != quote {
			continue
		}
		if i+1 < len(s) && s[i+1] == quote {
			i++
			continue
		}
		return i
	}
	return -1
}

func keywords(s string) []string {
	var out []string
	start := -1
	for i := 0; i <= len(s); i++ {
		var c byte
		if i < len(s) {
			c = s[i]
		}
		word := c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (start >= 0 && c >= '0' && c <= '9')
		if word {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			out = append(out, strings.ToUpper(s[start:i]))
			start = -1
		}
	}
	return out
}
