package rules

import (
	"encoding/json"
	"fmt"
	"io"
)

// Manifest is the serialized form of a rule set handed to an HTTP host.
type Manifest struct {
	I18n      I18n       `json:"i18n" yaml:"i18n"`
	Rewrites  []Rewrite  `json:"rewrites" yaml:"rewrites"`
	Redirects []Redirect `json:"redirects" yaml:"redirects"`
}

// I18n holds the locale prefixes of a manifest. LocaleDetection is always
// false: detection is done by the locale negotiator on the default prefix.
type I18n struct {
	Locales         []string `json:"locales" yaml:"locales"`
	DefaultLocale   string   `json:"defaultLocale" yaml:"defaultLocale"`
	LocaleDetection bool     `json:"localeDetection" yaml:"localeDetection"`
}

// Manifest returns the manifest of the set. Slices are never nil.
func (s *Set) Manifest() Manifest {
	m := Manifest{
		I18n: I18n{
			Locales:       s.LocalePrefixes(),
			DefaultLocale: s.defaultPrefix,
		},
		Rewrites:  s.Rewrites(),
		Redirects: s.Redirects(),
	}
	if m.I18n.Locales == nil {
		m.I18n.Locales = []string{}
	}
	if m.Rewrites == nil {
		m.Rewrites = []Rewrite{}
	}
	if m.Redirects == nil {
		m.Redirects = []Redirect{}
	}
	return m
}

// Encode writes the manifest as indented JSON. The output is deterministic
// for a given rule set.
func (m Manifest) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}

// Set builds the rule set described by the manifest.
func (m Manifest) Set() *Set {
	return NewSet(m.Rewrites, m.Redirects, m.I18n.Locales, m.I18n.DefaultLocale)
}

// DecodeManifest reads a manifest written by Encode.
func DecodeManifest(r io.Reader) (Manifest, error) {
	var m Manifest
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return Manifest{}, fmt.Errorf("decoding manifest: %w", err)
	}
	return m, nil
}
