package routepath

import (
	"errors"
	"strings"
)

// Request path errors.
var (
	ErrBackslashInPath      = errors.New("path contains backslash")
	ErrNullByteInPath       = errors.New("path contains null byte")
	ErrInvalidPercentEscape = errors.New("invalid percent escape sequence")
	ErrPathEscapesRoot      = errors.New("path escapes root via ..")
)

// Cleaned is a request path ready for rule lookup.
type Cleaned struct {
	// Path is the cleaned path, still percent-encoded.
	Path string

	// Query is the raw query string without "?".
	Query string

	// Changed reports whether Path differs from the input path.
	Changed bool
}

// Clean prepares a request path (optionally followed by a query) for rule
// lookup: it adds a leading slash, collapses repeated slashes, resolves "."
// and ".." segments and drops the trailing slash. Paths with a backslash, a
// NUL byte, a malformed escape or a ".." above the root are rejected.
func Clean(input string) (Cleaned, error) {
	p, query, _ := strings.Cut(input, "?")
	if p == "" {
		return Cleaned{Path: "/", Query: query, Changed: true}, nil
	}

	if strings.Contains(p, `\`) {
		return Cleaned{}, ErrBackslashInPath
	}
	if strings.Contains(p, "\x00") || strings.Contains(strings.ToUpper(p), "%00") {
		return Cleaned{}, ErrNullByteInPath
	}
	if strings.Contains(p, "%") && !validEscapes(p) {
		return Cleaned{}, ErrInvalidPercentEscape
	}

	var out []string
	for _, seg := range strings.Split(p, "/") {
		switch seg {
		case "", ".":
		case "..":
			if len(out) == 0 {
				return Cleaned{}, ErrPathEscapesRoot
			}
			out = out[:len(out)-1]
		default:
			out = append(out, seg)
		}
	}

	cleaned := "/" + strings.Join(out, "/")
	return Cleaned{Path: cleaned, Query: query, Changed: cleaned != p}, nil
}

func validEscapes(p string) bool {
	for i := 0; i < len(p); i++ {
		if p[i] != '%' {
			continue
		}
		if i+2 >= len(p) || !isHex(p[i+1]) || !isHex(p[i+2]) {
			return false
		}
		i += 2
	}
	return true
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}
