package redirect

import (
	"bytes"
	"context"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/aleister1102/scamsiren/internal/urlhandler"
)

func isHTML(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}

// metaRefreshTarget downloads the (size-bounded) page at current and returns
// the target of its first <meta http-equiv="refresh"> tag.
func (r *Resolver) metaRefreshTarget(ctx context.Context, current string) (string, bool) {
	resp, err := r.fetch(ctx, current, http.MethodGet, map[string]string{"Accept": "text/html,application/xhtml+xml"})
	if err != nil || !resp.IsSuccess() {
		return "", false
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		r.logger.Debug().Err(err).Str("url", current).Msg("Failed to parse HTML for meta refresh")
		return "", false
	}

	var content string
	doc.Find("meta[http-equiv]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		equiv, _ := s.Attr("http-equiv")
		if !strings.EqualFold(strings.TrimSpace(equiv), "refresh") {
			return true
		}
		content, _ = s.Attr("content")
		return false
	})

	href := parseRefreshContent(content)
	if href == "" {
		return "", false
	}

	base, err := url.Parse(current)
	if err != nil {
		return "", false
	}
	next, err := urlhandler.ResolveURL(href, base)
	if err != nil {
		return "", false
	}

	r.logger.Debug().Str("url", current).Str("next", next).Msg("Following meta refresh")
	return next, true
}

// parseRefreshContent extracts the URL from a refresh value such as
// `5; url='https://example.com/'`. A bare delay yields "".
func parseRefreshContent(content string) string {
	_, rest, found := strings.Cut(content, ";")
	if !found {
		// Some pages omit the delay: content="url=/next"
		rest = content
	}
	rest = strings.TrimSpace(rest)

	if len(rest) >= 4 && strings.EqualFold(rest[:3], "url") {
		afterKey := strings.TrimSpace(rest[3:])
		if strings.HasPrefix(afterKey, "=") {
			rest = strings.TrimSpace(afterKey[1:])
		}
	} else if !found {
		return ""
	}

	return strings.Trim(rest, `'"`)
}
