package repository

import "strings"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// NormalizeSearch trims a user supplied search term.
func NormalizeSearch(term string) string {
	return strings.TrimSpace(term)
}

// LikePattern turns free text into an ILIKE pattern matching it as a literal
// substring. Backslash is the escape character, which is the Postgres default.
func LikePattern(term string) string {
	return "%" + likeEscaper.Replace(NormalizeSearch(term)) + "%"
}

// MatchesAny is the in-process counterpart of LikePattern: a case-insensitive
// literal substring test over fields. An empty term matches everything.
func MatchesAny(term string, fields ...string) bool {
	needle := strings.ToLower(NormalizeSearch(term))
	if needle == "" {
		return true
	}
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}
