package database

import (
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
)

const maxTracedQueryLength = 512

var queryWhitespaceRegex = regexp.MustCompile(`\s+`)

func formatQueryForTrace(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	normalized := queryWhitespaceRegex.ReplaceAllString(query, " ")
	if len(normalized) <= maxTracedQueryLength {
		return normalized
	}

	return normalized[:maxTracedQueryLength] + "..."
}

// SQLiteDSN adds the connection pragmas the store relies on: enforced
// foreign keys, a busy timeout, WAL journaling and immediate write locks.
// Pragmas already present in raw are kept.
func SQLiteDSN(raw string, readOnly bool) string {
	dsn := strings.TrimPrefix(strings.TrimSpace(raw), "sqlite://")

	pragmas := []string{"foreign_keys(1)", "busy_timeout(5000)", "journal_mode(WAL)"}
	if readOnly {
		pragmas = append(pragmas, "query_only(1)")
	}

	params := make([]string, 0, len(pragmas)+2)
	for _, p := range pragmas {
		name := p[:strings.Index(p, "(")]
		if strings.Contains(dsn, "_pragma="+name) {
			continue
		}
		params = append(params, "_pragma="+p)
	}
	if !readOnly && !strings.Contains(dsn, "_txlock=") {
		params = append(params, "_txlock=immediate")
	}
	if !strings.Contains(dsn, "_time_format=") {
		params = append(params, "_time_format=sqlite")
	}
	if len(params) == 0 {
		return dsn
	}

	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(params, "&")
}

// SQLitePath strips query parameters and scheme from a SQLite DSN.
func SQLitePath(raw string) string {
	dsn := strings.TrimPrefix(strings.TrimSpace(raw), "sqlite://")
	dsn = strings.TrimPrefix(dsn, "file:")
	if idx := strings.Index(dsn, "?"); idx >= 0 {
		dsn = dsn[:idx]
	}
	return dsn
}

// DBNameFromURL extracts a database name for trace attributes.
func DBNameFromURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	parsed, err := url.Parse(trimmed)
	if err == nil && parsed != nil && (parsed.Scheme == "postgres" || parsed.Scheme == "postgresql") {
		name := strings.TrimSpace(strings.TrimPrefix(parsed.Path, "/"))
		if name != "" {
			return name
		}
	}

	for _, token := range strings.Fields(trimmed) {
		if !strings.HasPrefix(token, "dbname=") {
			continue
		}
		name := strings.TrimSpace(strings.TrimPrefix(token, "dbname="))
		name = strings.Trim(name, `"'`)
		if name != "" {
			return name
		}
	}

	if path := SQLitePath(trimmed); path != "" && !strings.Contains(path, "=") {
		return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return ""
}
