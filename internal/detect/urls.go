package detect

import (
	"regexp"
	"strings"
)

var urlPattern = regexp.MustCompile(`(?i)https?://[^\s<>"'\[\]{}]+`)

// ExtractURLs returns absolute http(s) URLs in order of appearance.
// Duplicates are kept and trailing sentence punctuation is stripped.
func ExtractURLs(text string) []string {
	found := urlPattern.FindAllString(text, -1)
	urls := make([]string, 0, len(found))
	for _, u := range found {
		u = strings.TrimRight(u, ".,;:!?)")
		if u == "" {
			continue
		}
		urls = append(urls, u)
	}
	return urls
}
