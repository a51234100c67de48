package rules

import (
	"reflect"
	"testing"
)

func TestMatcher(t *testing.T) {
	m := NewMatcher()
	m.Add("/fr-ca/%C3%A0-propos", "/fr-ca/about")
	m.Add("/fr-ca/boutique/:id", "/fr-ca/shop/:id")
	m.Add("/fr-ca/boutique/nouveau", "/fr-ca/shop/new")
	m.Add("/fr-ca/boutique/:id/avis", "/fr-ca/shop/:id/reviews")
	m.Add("/fr-ca/docs/*path", "/fr-ca/documentation/*path")

	tests := []struct {
		path   string
		want   string
		params map[string]string
		ok     bool
	}{
		{"/fr-ca/%C3%A0-propos", "/fr-ca/about", map[string]string{}, true},
		{"/FR-CA/%c3%a0-propos", "/fr-ca/about", map[string]string{}, true},
		{"/fr-ca/à-propos", "/fr-ca/about", map[string]string{}, true},
		{"/fr-ca/%C3%A0-propos/", "/fr-ca/about", map[string]string{}, true},
		{"/fr-ca/boutique/42", "/fr-ca/shop/42", map[string]string{"id": "42"}, true},
		{"/fr-ca/boutique/nouveau", "/fr-ca/shop/new", map[string]string{}, true},
		{"/fr-ca/boutique/42/avis", "/fr-ca/shop/42/reviews", map[string]string{"id": "42"}, true},
		{"/fr-ca/docs/a/b/c", "/fr-ca/documentation/a/b/c", map[string]string{"path": "a/b/c"}, true},
		{"/fr-ca/boutique", "", nil, false},
		{"/fr-ca/boutique/42/inconnu", "", nil, false},
		{"/en-us/about", "", nil, false},
		{"/", "", nil, false},
	}

	for _, tt := range tests {
		got, ok := m.Match(tt.path)
		if ok != tt.ok {
			t.Errorf("Match(%q) ok = %v, want %v", tt.path, ok, tt.ok)
			continue
		}
		if !ok {
			continue
		}
		if got.Path != tt.want {
			t.Errorf("Match(%q).Path = %q, want %q", tt.path, got.Path, tt.want)
		}
		if !reflect.DeepEqual(got.Params, tt.params) {
			t.Errorf("Match(%q).Params = %v, want %v", tt.path, got.Params, tt.params)
		}
	}
}

func TestMatcherKeepsFirstPattern(t *testing.T) {
	m := NewMatcher()
	if !m.Add("/a/b", "/first") {
		t.Fatal("first Add should succeed")
	}
	if m.Add("/A/B", "/second") {
		t.Error("equivalent pattern should be rejected")
	}
	got, _ := m.Match("/a/b")
	if got.Path != "/first" || got.Pattern != "/a/b" {
		t.Errorf("Match() = %+v", got)
	}
}

func TestHydrate(t *testing.T) {
	tests := []struct {
		pattern string
		params  map[string]string
		want    string
	}{
		{"/shop/:id", map[string]string{"id": "7"}, "/shop/7"},
		{"/docs/*path", map[string]string{"path": "a/b"}, "/docs/a/b"},
		{"/shop/:id/:other", map[string]string{"id": "7"}, "/shop/7/:other"},
		{"/about", map[string]string{"id": "7"}, "/about"},
		{"/shop/:id", nil, "/shop/:id"},
	}
	for _, tt := range tests {
		if got := Hydrate(tt.pattern, tt.params); got != tt.want {
			t.Errorf("Hydrate(%q, %v) = %q, want %q", tt.pattern, tt.params, got, tt.want)
		}
	}
}
