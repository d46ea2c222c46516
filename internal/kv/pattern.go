package kv

import "strings"

// Wildcard matches any sequence of characters in a lookup key. It is never
// allowed in a stored key.
const Wildcard = "*"

// likeEscape is the ESCAPE character passed alongside every LIKE pattern.
const likeEscape = `\`

var likeEscaper = strings.NewReplacer(
	likeEscape, likeEscape+likeEscape,
	"%", likeEscape+"%",
	"_", likeEscape+"_",
)

// IsPattern reports whether key is a wildcard lookup.
func IsPattern(key string) bool {
	return strings.Contains(key, Wildcard)
}

// Translate converts a lookup key into a LIKE pattern. LIKE metacharacters
// already present in key are escaped first so they match themselves; only
// then is each Wildcard replaced by "%". Keys without a Wildcard are returned
// unchanged with isPattern false and must be matched with "=".
func Translate(key string) (pattern string, isPattern bool) {
	if !IsPattern(key) {
		return key, false
	}

	escaped := likeEscaper.Replace(key)
	return strings.ReplaceAll(escaped, Wildcard, "%"), true
}
