package urlhandler

import (
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strings"

	"github.com/aleister1102/scamsiren/internal/common"
	"golang.org/x/net/publicsuffix"
)

var schemePrefixRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)

// NormalizeURL trims the input, prepends defaultScheme when the input has no
// scheme, and lowercases scheme and host. Only http and https URLs with a
// hostname are accepted; anything else wraps common.ErrInvalidInput.
func NormalizeURL(rawURL, defaultScheme string) (string, error) {
	trimmedURL := strings.TrimSpace(rawURL)
	if trimmedURL == "" {
		return "", fmt.Errorf("%w: URL is empty or only whitespace", common.ErrInvalidInput)
	}

	if defaultScheme == "" {
		defaultScheme = "https"
	}
	if strings.HasPrefix(trimmedURL, "//") {
		trimmedURL = defaultScheme + ":" + trimmedURL
	} else if !schemePrefixRegex.MatchString(trimmedURL) {
		trimmedURL = defaultScheme + "://" + trimmedURL
	}

	parsedURL, err := url.Parse(trimmedURL)
	if err != nil {
		return "", fmt.Errorf("%w: could not parse URL '%s': %v", common.ErrInvalidInput, trimmedURL, err)
	}

	parsedURL.Scheme = strings.ToLower(parsedURL.Scheme)
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return "", fmt.Errorf("%w: unsupported scheme '%s'", common.ErrInvalidInput, parsedURL.Scheme)
	}
	if parsedURL.Hostname() == "" {
		return "", fmt.Errorf("%w: URL lacks a valid hostname", common.ErrInvalidInput)
	}
	parsedURL.Host = strings.ToLower(parsedURL.Host)

	return parsedURL.String(), nil
}

// ResolveURL resolves a (possibly relative) reference against base and
// requires the result to be an absolute http(s) URL.
func ResolveURL(href string, base *url.URL) (string, error) {
	trimmedHref := strings.TrimSpace(href)
	if trimmedHref == "" {
		return "", fmt.Errorf("href is empty")
	}

	ref, err := url.Parse(trimmedHref)
	if err != nil {
		return "", fmt.Errorf("error parsing href '%s': %w", trimmedHref, err)
	}

	resolved := ref
	if base != nil {
		resolved = base.ResolveReference(ref)
	}
	if !resolved.IsAbs() {
		return "", fmt.Errorf("cannot process relative URL '%s' without a base URL", trimmedHref)
	}
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme in '%s'", resolved.String())
	}
	if resolved.Hostname() == "" {
		return "", fmt.Errorf("resolved URL '%s' has no hostname", resolved.String())
	}

	return resolved.String(), nil
}

// Hostname returns the lowercased host of rawURL without port, or "" when
// the URL cannot be parsed.
func Hostname(rawURL string) string {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(parsedURL.Hostname())
}

// IsIPHost reports whether host (with or without port) is an IP literal.
func IsIPHost(host string) bool {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
	return net.ParseIP(host) != nil
}

// StripWWW removes one leading "www." label.
func StripWWW(host string) string {
	if len(host) > 4 && strings.EqualFold(host[:4], "www.") {
		return host[4:]
	}
	return host
}

// WithWWW returns rawURL with "www." prepended to its host. The second
// result is false when no variant applies: the host is an IP literal,
// already starts with "www.", or the URL does not parse.
func WithWWW(rawURL string) (string, bool) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil || parsedURL.Hostname() == "" {
		return "", false
	}

	hostname := parsedURL.Hostname()
	if IsIPHost(hostname) || StripWWW(hostname) != hostname {
		return "", false
	}

	if port := parsedURL.Port(); port != "" {
		parsedURL.Host = "www." + hostname + ":" + port
	} else {
		parsedURL.Host = "www." + hostname
	}
	return parsedURL.String(), true
}

// RegistrableDomain returns the eTLD+1 of host after stripping a leading
// "www." (for example "login.example.co.uk" gives "example.co.uk"). IP
// literals and hosts that are themselves public suffixes come back unchanged.
func RegistrableDomain(host string) (string, error) {
	host = strings.ToLower(strings.TrimSpace(host))
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.TrimSuffix(host, ".")
	if host == "" {
		return "", fmt.Errorf("hostname is empty")
	}

	host = StripWWW(host)
	if IsIPHost(host) {
		return host, nil
	}

	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host, nil
	}
	return domain, nil
}
