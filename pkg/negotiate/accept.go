package negotiate

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/language"

	"github.com/vango-dev/polyroute/pkg/locale"
)

// matchAcceptLanguage walks the Accept-Language directives by decreasing
// quality. An exact locale match or a language-only directive wins
// immediately; a directive with the right language but another region is
// kept as a fallback if nothing better follows.
func (n *Negotiator) matchAcceptLanguage(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", false
	}
	tags, qs := n.parseAcceptLanguage(header)

	fallback := ""
	for i, tag := range tags {
		if qs[i] <= 0 {
			continue
		}
		base, conf := tag.Base()
		if conf != language.Exact {
			continue
		}

		region, regionConf := tag.Region()
		if regionConf == language.Exact {
			if l, ok := n.locales.Lookup(base.String() + "-" + region.String()); ok {
				return l, true
			}
			if fallback == "" {
				fallback = n.firstWithLanguage(base.String())
			}
			continue
		}

		if l := n.firstWithLanguage(base.String()); l != "" {
			return l, true
		}
	}

	return fallback, fallback != ""
}

// parseAcceptLanguage returns the directives of header by decreasing quality.
// When the header does not parse as a whole, its directives are parsed one by
// one and the malformed ones are skipped.
func (n *Negotiator) parseAcceptLanguage(header string) ([]language.Tag, []float32) {
	tags, qs, err := language.ParseAcceptLanguage(header)
	if err == nil {
		return tags, qs
	}
	n.logger.Debug("skipping malformed Accept-Language directives", "header", header, "error", err)

	type directive struct {
		tag language.Tag
		q   float32
	}
	var directives []directive
	for _, entry := range strings.Split(header, ",") {
		t, q, err := language.ParseAcceptLanguage(entry)
		if err != nil {
			continue
		}
		for i := range t {
			directives = append(directives, directive{tag: t[i], q: q[i]})
		}
	}
	slices.SortStableFunc(directives, func(a, b directive) int {
		return cmp.Compare(b.q, a.q)
	})

	tags, qs = tags[:0], qs[:0]
	for _, d := range directives {
		tags = append(tags, d.tag)
		qs = append(qs, d.q)
	}
	return tags, qs
}

func (n *Negotiator) firstWithLanguage(lang string) string {
	for _, l := range n.locales.Actual() {
		if locale.Language(l) == lang {
			return l
		}
	}
	return ""
}
