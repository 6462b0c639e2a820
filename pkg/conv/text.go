package conv

import "strings"

var lineBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// OneLine flattens line breaks to spaces and cuts s to at most limit runes,
// marking a cut with "...". A limit of zero or less only flattens.
func OneLine(s string, limit int) string {
	s = lineBreaks.Replace(s)
	if limit <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}
