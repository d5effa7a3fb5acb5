package authoring

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

var cidPattern = regexp.MustCompile(`(?i)\[cid:([a-z0-9-]+)\]`)

// TagDescription appends the correlation marker to a media description so the
// upload can be matched back to its block after listing the event's media.
func TagDescription(description, cid string) string {
	tag := "[cid:" + cid + "]"
	if description == "" {
		return tag
	}
	return description + " " + tag
}

// ExtractCorrelationID returns the first [cid:...] marker in s.
func ExtractCorrelationID(s string) (string, bool) {
	m := cidPattern.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// RenderDescription turns blocks into the event's HTML description. Text
// blocks become paragraphs, image blocks become figures pointing at the
// resolved media URL. Empty text and images without a URL are dropped.
func RenderDescription(blocks []ContentBlock, urls map[string]string, mediaBaseURL string) string {
	parts := make([]string, 0, len(blocks))

	for _, b := range blocks {
		switch b.Kind {
		case BlockText:
			txt := strings.TrimSpace(b.Content)
			if txt == "" {
				continue
			}
			parts = append(parts, "<p>"+html.EscapeString(txt)+"</p>")
		case BlockImage:
			if b.CorrelationID == "" {
				continue
			}
			raw := urls[b.CorrelationID]
			if raw == "" {
				continue
			}
			caption := ""
			if b.Description != "" {
				caption = "<figcaption>" + html.EscapeString(b.Description) + "</figcaption>"
			}
			parts = append(parts, fmt.Sprintf(`<figure><img src="%s" alt="%s" />%s</figure>`,
				html.EscapeString(MediaURL(mediaBaseURL, raw)), html.EscapeString(b.Description), caption))
		}
	}

	return strings.Join(parts, "\n")
}

// MediaURL joins the public media prefix with a URL returned by the API.
// Absolute URLs are returned unchanged.
func MediaURL(base, raw string) string {
	if base == "" || strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(raw, "/")
}
