package content

import (
	"fmt"
	"regexp"
	"strings"
)

// SourceType classifies where a media URL points.
type SourceType string

const (
	SourceInternal    SourceType = "internal"
	SourceExternal    SourceType = "external"
	SourceYouTube     SourceType = "youtube"
	SourceWikimedia   SourceType = "wikimedia"
	SourceUnsupported SourceType = "unsupported"
)

// SourceMetadata is what a URL input knows about a freshly entered source.
type SourceMetadata struct {
	SourceType    SourceType
	CopyrightLink string
}

const (
	cdnScheme       = "cdn://"
	roomMediaPrefix = cdnScheme + "room-media/"
	youTubeNotice   = "This video is hosted on YouTube: [%s](%s)"
	wikimediaNotice = "This file is hosted on Wikimedia Commons: [%s](%s)"
)

// cdnLink matches CDN URLs embedded in markdown.
var cdnLink = regexp.MustCompile(`cdn://[^\s)\]"'>]+`)

// CopyrightForSource returns the copyright notice an element should carry
// after its source URL changed from oldURL to newURL.
func CopyrightForSource(oldURL, oldNotice, newURL string, meta SourceMetadata) string {
	if oldURL == newURL {
		return oldNotice
	}
	if newURL == "" {
		return ""
	}
	switch {
	case meta.SourceType == SourceYouTube && meta.CopyrightLink != "":
		return fmt.Sprintf(youTubeNotice, meta.CopyrightLink, meta.CopyrightLink)
	case meta.SourceType == SourceWikimedia && meta.CopyrightLink != "":
		return fmt.Sprintf(wikimediaNotice, meta.CopyrightLink, meta.CopyrightLink)
	}
	return ""
}

// ClassifySource guesses the source type of a URL.
func ClassifySource(url string) SourceType {
	lower := strings.ToLower(url)
	switch {
	case url == "":
		return SourceUnsupported
	case strings.HasPrefix(lower, cdnScheme):
		return SourceInternal
	case strings.Contains(lower, "youtube.com/") || strings.Contains(lower, "youtu.be/"):
		return SourceYouTube
	case strings.Contains(lower, "wikimedia.org/") || strings.Contains(lower, "wikipedia.org/"):
		return SourceWikimedia
	case strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://"):
		return SourceExternal
	}
	return SourceUnsupported
}

// IsInternalSource reports whether url lives on the platform CDN.
func IsInternalSource(url string) bool {
	return strings.HasPrefix(url, cdnScheme)
}

// AccessibleURL resolves CDN URLs against cdnRoot. Other URLs pass through.
func AccessibleURL(url, cdnRoot string) string {
	if !IsInternalSource(url) || cdnRoot == "" {
		return url
	}
	return strings.TrimRight(cdnRoot, "/") + "/" + strings.TrimPrefix(url, cdnScheme)
}

// AccessibleFromRoom reports whether url may be shown inside room. Room
// media is private to its room; everything else is public.
func AccessibleFromRoom(url, roomID string) bool {
	if !strings.HasPrefix(url, roomMediaPrefix) {
		return true
	}
	rest := strings.TrimPrefix(url, roomMediaPrefix)
	owner, _, _ := strings.Cut(rest, "/")
	return roomID != "" && owner == roomID
}

// Redact returns a copy of c fit for a different room: sources that room
// cannot access are emptied, and so are such links inside copyright notices.
func Redact(c Content, targetRoomID string) Content {
	out := Clone(c)
	redact := func(url string) string {
		if AccessibleFromRoom(url, targetRoomID) {
			return url
		}
		return ""
	}
	for i := range out.Elements {
		e := &out.Elements[i]
		e.SourceURL = redact(e.SourceURL)
		e.CopyrightNotice = cdnLink.ReplaceAllStringFunc(e.CopyrightNotice, redact)
	}
	return out
}

// CDNResources lists every resource the document references: all source
// URLs and the CDN links found in copyright notices.
func CDNResources(c Content) []string {
	var out []string
	for _, e := range c.Elements {
		if e.SourceURL != "" {
			out = append(out, e.SourceURL)
		}
		if e.CopyrightNotice != "" {
			out = append(out, cdnLink.FindAllString(e.CopyrightNotice, -1)...)
		}
	}
	return out
}
