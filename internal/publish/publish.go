// Package publish writes the compiled rules manifest where the HTTP layer
// reads it: a local file or an S3 object.
package publish

import (
	"bytes"
	"context"
	"os"
	"path/filepath"

	"github.com/vango-dev/polyroute/internal/errors"
	"github.com/vango-dev/polyroute/pkg/rules"
)

// ContentType is the media type of a published manifest.
const ContentType = "application/json"

// Result describes a published manifest.
type Result struct {
	// Location is the file path or s3:// URL of the manifest.
	Location string

	// Size is the manifest size in bytes.
	Size int
}

// Publisher publishes a rules manifest.
type Publisher interface {
	Publish(ctx context.Context, m rules.Manifest) (Result, error)
}

func encode(m rules.Manifest) ([]byte, error) {
	var buf bytes.Buffer
	if err := m.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// File writes the manifest to a local path, creating parent directories.
type File struct {
	Path string
}

// Publish implements Publisher.
func (f File) Publish(_ context.Context, m rules.Manifest) (Result, error) {
	data, err := encode(m)
	if err != nil {
		return Result{}, errors.New("E150").Wrap(err)
	}
	if dir := filepath.Dir(f.Path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return Result{}, errors.New("E150").WithDetail("Cannot create " + dir).Wrap(err)
		}
	}

	// Write then rename so readers never see a partial manifest.
	tmp := f.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return Result{}, errors.New("E150").WithDetail("Cannot write " + tmp).Wrap(err)
	}
	if err := os.Rename(tmp, f.Path); err != nil {
		os.Remove(tmp)
		return Result{}, errors.New("E150").WithDetail("Cannot rename " + tmp).Wrap(err)
	}
	return Result{Location: f.Path, Size: len(data)}, nil
}
