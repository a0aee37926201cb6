package urlhandler

import (
	"regexp"
	"strings"
)

// webURLRegex matches explicit http(s) links, www-prefixed hosts and bare
// dotted hostnames with an alphabetic TLD, each with an optional path.
var webURLRegex = regexp.MustCompile(
	`(?i)(?:https?://[^\s<>"'` + "`" + `]+` +
		`|\b(?:[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?\.)+[a-z]{2,24}(?::\d{1,5})?(?:/[^\s<>"'` + "`" + `]*)?)`)

const trailingPunctuation = ".,;:!?)]}>'\""

// ExtractURLs finds URL-looking substrings in free text (chat messages,
// SMS bodies) and returns them in first-seen order without duplicates.
// Matches are returned as written; scheme-less hosts are normalized later.
func ExtractURLs(text string) []string {
	locs := webURLRegex.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(locs))
	urls := make([]string, 0, len(locs))
	for _, loc := range locs {
		match := text[loc[0]:loc[1]]
		if isEmailPart(text, match, loc[0], loc[1]) {
			continue
		}
		candidate := strings.TrimRight(match, trailingPunctuation)
		if candidate == "" {
			continue
		}
		if _, dup := seen[candidate]; dup {
			continue
		}
		seen[candidate] = struct{}{}
		urls = append(urls, candidate)
	}
	return urls
}

// isEmailPart reports whether a bare-host match sits next to an '@', i.e.
// it is the local or domain part of an email address.
func isEmailPart(text, match string, start, end int) bool {
	if strings.Contains(match, "://") {
		return false
	}
	return (start > 0 && text[start-1] == '@') || (end < len(text) && text[end] == '@')
}
