package security

import (
	"errors"
	"strings"
	"unicode/utf8"
)

const (
	// MaxSearchQueryLength is the longest label search accepted, in characters.
	MaxSearchQueryLength = 100
)

var (
	// ErrQueryTooLong is returned when a search query exceeds MaxSearchQueryLength.
	ErrQueryTooLong = errors.New("search query too long")
	// ErrQueryInvalid is returned when a search query is not valid UTF-8.
	ErrQueryInvalid = errors.New("search query is not valid UTF-8")
)

// ValidateSearchQuery trims a label search query and checks its length.
// Any text a label may hold is accepted: the query only ever reaches SQL as a bound LIKE parameter.
func ValidateSearchQuery(query string) (string, error) {
	if query == "" {
		return "", nil
	}

	if !utf8.ValidString(query) {
		return "", ErrQueryInvalid
	}

	if utf8.RuneCountInString(query) > MaxSearchQueryLength {
		return "", ErrQueryTooLong
	}

	return strings.TrimSpace(query), nil
}

// SanitizeSearchString escapes LIKE wildcards so they match literally.
// Callers must use `ESCAPE '\'` in the LIKE clause.
func SanitizeSearchString(query string) string {
	if query == "" {
		return ""
	}

	query = strings.ReplaceAll(query, `\`, `\\`)
	query = strings.ReplaceAll(query, "%", `\%`)
	query = strings.ReplaceAll(query, "_", `\_`)

	return query
}
