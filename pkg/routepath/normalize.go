package routepath

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	// [...name] or its escaped form %5B...name%5D
	catchAllSegment = regexp.MustCompile(`^(?:\[|%5[Bb])\.\.\.(.+?)(?:\]|%5[Dd])$`)

	// [name] or its escaped form %5Bname%5D
	paramSegment = regexp.MustCompile(`^(?:\[|%5[Bb])(.+?)(?:\]|%5[Dd])$`)

	// :name escaped by an encoder that does not keep colons
	escapedColonSegment = regexp.MustCompile(`^%3[Aa](.+)$`)

	// *name escaped by an encoder that does not keep asterisks
	escapedStarSegment = regexp.MustCompile(`^%2[Aa](.+)$`)
)

// Normalize returns the rule form of a URL path.
//
// The path is prefixed with "/"+locale when locale is not empty, lowercased
// with the casing rules of locale, percent-encoded segment by segment when
// encode is true, and its parameter segments converted to rule notation.
//
//	Normalize("/about-us/[id]", "fr-CA", true)  // "/fr-ca/about-us/:id"
//	Normalize("/À-propos", "fr-CA", true)       // "/fr-ca/%C3%A0-propos"
//	Normalize("/À-propos", "fr-CA", false)      // "/fr-ca/à-propos"
func Normalize(p, locale string, encode bool) string {
	if locale != "" {
		p = "/" + locale + p
	}
	p = Lower(p, locale)
	if encode {
		p = Encode(p)
	}
	return ConvertParams(p)
}

// Lower lowercases p with the casing rules of locale. An empty or unknown
// locale uses language-neutral rules.
func Lower(p, locale string) string {
	tag := language.Und
	if locale != "" {
		if t, err := language.Parse(locale); err == nil {
			tag = t
		}
	}
	return cases.Lower(tag).String(p)
}

// Encode percent-encodes every segment of p. Slashes and rule parameter
// segments (:name, *name) are kept.
func Encode(p string) string {
	segments := strings.Split(p, "/")
	for i, seg := range segments {
		if IsParam(seg) || IsCatchAll(seg) {
			continue
		}
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/")
}

// Decode reverses Encode. Segments with invalid escapes are returned as is.
func Decode(p string) string {
	segments := strings.Split(p, "/")
	for i, seg := range segments {
		if decoded, err := url.PathUnescape(seg); err == nil {
			segments[i] = decoded
		}
	}
	return strings.Join(segments, "/")
}

// ConvertParams converts page parameter segments into rule notation:
//
//	[id], %5Bid%5D         → :id
//	[...rest], %5B...rest%5D → *rest
//	%3Aid                  → :id
//	%2Arest                → *rest
//
// Segments already in rule notation are unchanged.
func ConvertParams(p string) string {
	segments := strings.Split(p, "/")
	for i, seg := range segments {
		segments[i] = convertSegment(seg)
	}
	return strings.Join(segments, "/")
}

func convertSegment(seg string) string {
	if m := catchAllSegment.FindStringSubmatch(seg); m != nil {
		return "*" + m[1]
	}
	if m := paramSegment.FindStringSubmatch(seg); m != nil {
		return ":" + m[1]
	}
	if m := escapedColonSegment.FindStringSubmatch(seg); m != nil {
		return ":" + m[1]
	}
	if m := escapedStarSegment.FindStringSubmatch(seg); m != nil {
		return "*" + m[1]
	}
	return seg
}

// Split returns the non-empty segments of p.
func Split(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// IsParam reports whether seg is a rule parameter (:name).
func IsParam(seg string) bool {
	return len(seg) > 1 && seg[0] == ':'
}

// IsCatchAll reports whether seg is a rule catch-all (*name).
func IsCatchAll(seg string) bool {
	return len(seg) > 1 && seg[0] == '*'
}
