package db

import (
	"os"
	"regexp"
	"strings"
)

var kvPairRegex = regexp.MustCompile(`(?i)\b(host|user|password|dbname|port|sslmode)=`)

// NormalizeDSN trims quotes/whitespace and, for lib/pq key=value form,
// collapses spacing and defaults sslmode to disable. URL-form postgres and
// sqlite DSNs pass through unchanged.
func NormalizeDSN(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.Trim(s, "\"'")
	if s == "" || IsPostgresURL(s) || isSQLiteDSN(s) {
		return s
	}
	if !kvPairRegex.MatchString(s) {
		return s
	}
	cleaned := strings.Join(strings.Fields(s), " ")
	if !strings.Contains(strings.ToLower(cleaned), "sslmode=") {
		cleaned += " sslmode=disable"
	}
	return cleaned
}

// IsPostgresURL reports a URL-style postgres DSN.
func IsPostgresURL(dsn string) bool {
	lower := strings.ToLower(dsn)
	return strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://")
}

// IsPostgresDSN reports any postgres DSN form (URL or key=value).
func IsPostgresDSN(dsn string) bool {
	return IsPostgresURL(dsn) || kvPairRegex.MatchString(dsn)
}

func isSQLiteDSN(dsn string) bool {
	lower := strings.ToLower(dsn)
	return strings.HasPrefix(lower, "file:") || strings.HasSuffix(lower, ".db") || lower == ":memory:"
}

// GetNormalizedDSN fetches DATABASE_DSN and normalizes it.
func GetNormalizedDSN() string { return NormalizeDSN(os.Getenv("DATABASE_DSN")) }
