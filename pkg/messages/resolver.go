package messages

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/vango-dev/polyroute/pkg/locale"
	"github.com/vango-dev/polyroute/pkg/slug"
)

// Slug resolution problems. They are recoverable: the page falls back to its
// non-localized segment.
var (
	ErrMissingFile      = errors.New("messages file does not exist")
	ErrUnreadableFile   = errors.New("messages file cannot be parsed")
	ErrNoSlugKey        = errors.New("no key with the slug identifier")
	ErrAmbiguousSlugKey = errors.New("more than one key with the slug identifier")
	ErrInvalidSlugKey   = errors.New("invalid slug key")
	ErrEmptySlug        = errors.New("slug label has no usable characters")
)

// SlugError describes why a slug could not be resolved.
type SlugError struct {
	// FilesystemPath is the page file or directory.
	FilesystemPath string

	// MessagesPath is the label source that was consulted.
	MessagesPath string

	// Locale is the locale of the slug.
	Locale string

	// Key is the offending key, if any.
	Key string

	// Detail adds context to Err.
	Detail string

	// Err is one of the Err* sentinels.
	Err error
}

func (e *SlugError) Error() string {
	msg := fmt.Sprintf("unable to create the %s slug for %s: %s (%s)", e.Locale, e.FilesystemPath, e.Err, e.MessagesPath)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *SlugError) Unwrap() error {
	return e.Err
}

// Resolver resolves localized slugs from label sources in a filesystem.
type Resolver struct {
	fsys          fs.FS
	applicationID string
	logger        *slog.Logger
}

// NewResolver creates a slug resolver. The application identifier is the
// first segment every slug key must carry; an empty identifier skips that
// check. A nil logger uses slog.Default().
func NewResolver(fsys fs.FS, applicationID string, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{fsys: fsys, applicationID: applicationID, logger: logger}
}

// ResolveSlug returns the localized slug of a page, or "" when none is
// available. Problems are logged as warnings.
func (r *Resolver) ResolveSlug(filesystemPath, loc string) string {
	s, err := r.Resolve(filesystemPath, loc)
	if err != nil {
		var se *SlugError
		if errors.As(err, &se) {
			r.logger.Warn("slug unavailable",
				"file", se.FilesystemPath,
				"messages", se.MessagesPath,
				"locale", se.Locale,
				"reason", se.Err.Error(),
			)
		} else {
			r.logger.Warn("slug unavailable", "file", filesystemPath, "locale", loc, "error", err)
		}
	}
	return s
}

// Resolve returns the localized slug of a page. The error, when not nil, is a
// *SlugError and the slug is "".
func (r *Resolver) Resolve(filesystemPath, loc string) (string, error) {
	loc = locale.Normalize(loc)
	messagesPath := r.filePath(filesystemPath, loc)
	fail := func(err error, key, detail string) (string, error) {
		return "", &SlugError{
			FilesystemPath: filesystemPath,
			MessagesPath:   messagesPath,
			Locale:         loc,
			Key:            key,
			Detail:         detail,
			Err:            err,
		}
	}

	catalog, err := Load(r.fsys, messagesPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fail(ErrMissingFile, "", "")
		}
		return fail(ErrUnreadableFile, "", err.Error())
	}

	keys := catalog.SlugKeys()
	switch len(keys) {
	case 0:
		return fail(ErrNoSlugKey, "", "")
	case 1:
	default:
		return fail(ErrAmbiguousSlugKey, keys[1], strings.Join(keys, ", "))
	}

	key := keys[0]
	if detail := r.checkKey(key); detail != "" {
		return fail(ErrInvalidSlugKey, key, detail)
	}

	label, _ := catalog.Get(key)
	s := slug.Slugify(label, loc)
	if s == "" {
		return fail(ErrEmptySlug, key, fmt.Sprintf("label %q", label))
	}
	return s, nil
}

// SlugFiles returns the label sources of a page that contain a slug key, for
// the given locales. Missing or unreadable sources are skipped.
func (r *Resolver) SlugFiles(filesystemPath string, locales []string) []string {
	var files []string
	for _, loc := range locales {
		messagesPath := r.filePath(filesystemPath, loc)
		catalog, err := Load(r.fsys, messagesPath)
		if err != nil {
			continue
		}
		if len(catalog.SlugKeys()) > 0 {
			files = append(files, messagesPath)
		}
	}
	return files
}

// filePath is FilePath, except that existing directories always use their
// index label source.
func (r *Resolver) filePath(filesystemPath, loc string) string {
	if info, err := fs.Stat(r.fsys, filesystemPath); err == nil && info.IsDir() {
		return DirectoryFilePath(filesystemPath, loc)
	}
	return FilePath(filesystemPath, loc)
}

// checkKey validates the `<application identifier>.<context>.<id>` format of
// a slug key and returns a description of the problem, or "".
func (r *Resolver) checkKey(key string) string {
	segments := strings.Split(key, ".")
	if len(segments) != 3 {
		return "keys must follow the `<application identifier>.<context>.<id>` format"
	}
	if r.applicationID != "" && segments[0] != r.applicationID {
		return fmt.Sprintf("application identifier %q does not match %q", segments[0], r.applicationID)
	}
	if !ValidKeySegment(segments[1]) {
		return fmt.Sprintf("context %q %s", segments[1], KeySegmentDescription)
	}
	return ""
}
