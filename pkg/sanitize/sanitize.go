// Package sanitize normalizes and validates untrusted request text before it
// reaches the store.
package sanitize

import (
	"html"
	"regexp"
	"strings"
)

const maxSearchLength = 100

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,50}$`)
	searchStrip   = regexp.MustCompile(`[<>'";\\]`)
)

// Input strips NUL bytes, HTML-escapes markup characters and trims
// surrounding whitespace. Already escaped input is unescaped first so the
// function is idempotent.
func Input(text string) string {
	if text == "" {
		return text
	}
	text = strings.ReplaceAll(text, "\x00", "")
	text = html.EscapeString(html.UnescapeString(text))
	return strings.TrimSpace(text)
}

// SearchQuery caps a free-text search term at 100 characters and removes
// characters with meaning inside SQL pattern strings.
func SearchQuery(query string) string {
	if query == "" {
		return query
	}
	if runes := []rune(query); len(runes) > maxSearchLength {
		query = string(runes[:maxSearchLength])
	}
	query = searchStrip.ReplaceAllString(query, "")
	return strings.TrimSpace(query)
}

// ValidateEmail reports whether the address has a plausible mailbox@domain.tld shape
func ValidateEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// ValidateUsername reports whether the username is 3-50 characters of
// letters, digits, underscores and hyphens
func ValidateUsername(username string) bool {
	return usernameRegex.MatchString(username)
}
