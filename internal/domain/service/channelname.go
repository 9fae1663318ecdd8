package service

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	DefaultTicketPrefix  = "ticket-"
	DefaultMaxSlugLength = 80
)

// TicketChannelName builds a platform-safe channel name from a ticket title:
// accents folded, lower-cased, whitespace and underscores turned into
// hyphens, everything outside [a-z0-9-] dropped, hyphen runs collapsed,
// capped at maxSlug and prefixed. An empty slug falls back to the last six
// characters of fallback.
func TicketChannelName(prefix, title, fallback string, maxSlug int) string {
	if maxSlug <= 0 {
		maxSlug = DefaultMaxSlugLength
	}
	slug := slugify(title, maxSlug)
	if slug == "" {
		slug = slugify(tail(fallback, 6), maxSlug)
	}
	if slug == "" {
		slug = "new"
	}
	return prefix + slug
}

func slugify(s string, maxLen int) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err == nil {
		s = folded
	}
	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))
	lastHyphen := true // suppresses leading hyphens
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		case r == '-' || r == '_' || unicode.IsSpace(r):
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	out := b.String()
	if len(out) > maxLen {
		out = out[:maxLen]
	}
	return strings.Trim(out, "-")
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
