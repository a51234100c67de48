package rules

import (
	"net/url"
	"strings"

	"github.com/vango-dev/polyroute/pkg/routepath"
)

// Match is the result of matching a request path against a Matcher.
type Match struct {
	// Pattern is the matched rule source.
	Pattern string

	// Target is the rule destination, with parameters unsubstituted.
	Target string

	// Params are the captured parameters, still percent-encoded.
	Params map[string]string

	// Path is Target with Params substituted.
	Path string
}

// Matcher matches request paths against rule sources with :param and
// *catchAll segments. Static segments match case-insensitively after
// percent-decoding.
type Matcher struct {
	root *matchNode
}

type matchNode struct {
	// key is the folded static segment
	key string

	children      []*matchNode
	paramChild    *matchNode
	catchAllChild *matchNode

	// paramName is the parameter name (without : or *)
	paramName string

	pattern  string
	target   string
	terminal bool
}

// NewMatcher returns an empty matcher.
func NewMatcher() *Matcher {
	return &Matcher{root: &matchNode{}}
}

// Add registers a pattern and its target. It returns false when an
// equivalent pattern is already registered; the first one is kept.
func (m *Matcher) Add(pattern, target string) bool {
	current := m.root
	for _, seg := range splitSegments(pattern) {
		if routepath.IsCatchAll(seg) {
			// A catch-all consumes the rest of the path
			if current.catchAllChild == nil {
				current.catchAllChild = &matchNode{paramName: seg[1:]}
			}
			current = current.catchAllChild
			break
		}
		if routepath.IsParam(seg) {
			if current.paramChild == nil {
				current.paramChild = &matchNode{paramName: seg[1:]}
			}
			current = current.paramChild
			continue
		}
		current = current.addChild(fold(seg))
	}

	if current.terminal {
		return false
	}
	current.terminal = true
	current.pattern = pattern
	current.target = target
	return true
}

// Match finds the rule matching a request path.
func (m *Matcher) Match(p string) (Match, bool) {
	params := make(map[string]string)
	n, ok := m.root.match(splitSegments(p), params)
	if !ok {
		return Match{}, false
	}
	return Match{
		Pattern: n.pattern,
		Target:  n.target,
		Params:  params,
		Path:    Hydrate(n.target, params),
	}, true
}

func (n *matchNode) findChild(key string) *matchNode {
	for _, child := range n.children {
		if child.key == key {
			return child
		}
	}
	return nil
}

func (n *matchNode) addChild(key string) *matchNode {
	if child := n.findChild(key); child != nil {
		return child
	}
	child := &matchNode{key: key}
	n.children = append(n.children, child)
	return child
}

func (n *matchNode) match(segments []string, params map[string]string) (*matchNode, bool) {
	if len(segments) == 0 {
		if n.terminal {
			return n, true
		}
		return nil, false
	}

	segment := segments[0]
	remaining := segments[1:]

	if child := n.findChild(fold(segment)); child != nil {
		if node, ok := child.match(remaining, params); ok {
			return node, true
		}
	}

	if n.paramChild != nil {
		params[n.paramChild.paramName] = segment
		if node, ok := n.paramChild.match(remaining, params); ok {
			return node, true
		}
		// Backtrack on failure
		delete(params, n.paramChild.paramName)
	}

	if n.catchAllChild != nil && n.catchAllChild.terminal {
		params[n.catchAllChild.paramName] = strings.Join(segments, "/")
		return n.catchAllChild, true
	}

	return nil, false
}

// Hydrate substitutes :param and *catchAll segments of pattern with params.
// Segments without a value are kept as is.
func Hydrate(pattern string, params map[string]string) string {
	if len(params) == 0 || !strings.ContainsAny(pattern, ":*") {
		return pattern
	}
	segments := strings.Split(pattern, "/")
	for i, seg := range segments {
		if !routepath.IsParam(seg) && !routepath.IsCatchAll(seg) {
			continue
		}
		if v, ok := params[seg[1:]]; ok {
			segments[i] = v
		}
	}
	return strings.Join(segments, "/")
}

func splitSegments(p string) []string {
	return routepath.Split(p)
}

// fold is the comparison key of a static segment.
func fold(seg string) string {
	if decoded, err := url.PathUnescape(seg); err == nil {
		seg = decoded
	}
	return strings.ToLower(seg)
}
