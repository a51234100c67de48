// Package messages locates and reads the locale-specific label sources that
// sit next to page files, and resolves localized slugs from them.
//
// Label sources are `.properties` files named after the page they belong to:
//
//	pages/about-us.tsx               → pages/about-us.fr-CA.properties
//	pages/contact/index.tsx          → pages/contact/index.fr-CA.properties
//	pages/contact (no index file)    → pages/contact/index.fr-CA.properties
//
// Keys follow the `<application identifier>.<context>.<id>` format. The key
// whose identifier is "slug" holds the label used for the page's URL segment:
//
//	shop.aboutUsPage.slug = À propos de nous
//	shop.aboutUsPage.title = À propos
package messages

import (
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"strings"

	"github.com/magiconair/properties"

	"github.com/vango-dev/polyroute/pkg/locale"
)

const (
	// SlugKeyID is the key identifier reserved for localized slugs.
	SlugKeyID = "slug"

	// FileExtension is the extension of label sources.
	FileExtension = ".properties"

	// indexName is the basename used for directory label sources.
	indexName = "index"
)

// KeySegmentDescription explains the key segment rule in diagnostics.
const KeySegmentDescription = "must be between 3 and 50 alphanumerical characters"

var keySegmentPattern = regexp.MustCompile(`(?i)^[a-z\d]{3,50}$`)

// ValidKeySegment reports whether s can be used as a key segment
// (application identifier, context or identifier).
func ValidKeySegment(s string) bool {
	return keySegmentPattern.MatchString(s)
}

// FilePath returns the label source path of a page file or directory for a
// locale. Paths are slash separated. A path without an extension is a
// directory and uses its index label source.
func FilePath(filesystemPath, loc string) string {
	ext := path.Ext(filesystemPath)
	if ext == "" {
		return DirectoryFilePath(filesystemPath, loc)
	}
	return strings.TrimSuffix(filesystemPath, ext) + "." + locale.Normalize(loc) + FileExtension
}

// DirectoryFilePath returns the index label source path of a directory for a
// locale. Dots in the directory name are kept.
func DirectoryFilePath(dir, loc string) string {
	return path.Join(dir, indexName+"."+locale.Normalize(loc)+FileExtension)
}

// SourceFilePath returns the page file path a label source belongs to, using
// the given page file extension (e.g. ".tsx").
func SourceFilePath(messagesFilePath, ext string) string {
	base, _, ok := ParseFilePath(messagesFilePath)
	if !ok {
		return ""
	}
	return base + ext
}

// ParseFilePath splits a label source path into the page path without
// extension and its locale. ok is false when the path is not a label source.
func ParseFilePath(messagesFilePath string) (base, loc string, ok bool) {
	if !strings.HasSuffix(messagesFilePath, FileExtension) {
		return "", "", false
	}
	trimmed := strings.TrimSuffix(messagesFilePath, FileExtension)
	dot := strings.LastIndex(trimmed, ".")
	if dot <= 0 {
		return "", "", false
	}
	loc = trimmed[dot+1:]
	if !locale.IsLocale(loc) {
		return "", "", false
	}
	return trimmed[:dot], locale.Normalize(loc), true
}

// Catalog is the parsed content of a label source, keeping key order.
type Catalog struct {
	keys   []string
	values map[string]string
}

// Load reads and parses a label source from fsys.
func Load(fsys fs.FS, name string) (*Catalog, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse parses label source content. Values are UTF-8 and `${}` expansion is
// disabled since ICU placeholders are not properties references.
func Parse(data []byte) (*Catalog, error) {
	loader := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	p, err := loader.LoadBytes(data)
	if err != nil {
		return nil, fmt.Errorf("parsing properties: %w", err)
	}

	c := &Catalog{values: make(map[string]string, p.Len())}
	for _, key := range p.Keys() {
		value, _ := p.Get(key)
		c.keys = append(c.keys, key)
		c.values[key] = value
	}
	return c, nil
}

// Keys returns the keys in file order.
func (c *Catalog) Keys() []string {
	return append([]string(nil), c.keys...)
}

// Get returns the value of a key.
func (c *Catalog) Get(key string) (string, bool) {
	v, ok := c.values[key]
	return v, ok
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.keys)
}

// SlugKeys returns every key tagged with SlugKeyID.
func (c *Catalog) SlugKeys() []string {
	var keys []string
	for _, key := range c.keys {
		if IsSlugKey(key) {
			keys = append(keys, key)
		}
	}
	return keys
}

// IsSlugKey reports whether a key carries the slug identifier.
func IsSlugKey(key string) bool {
	return strings.HasSuffix(key, "."+SlugKeyID)
}
