package publish

import (
	"context"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/polyroute/internal/errors"
	"github.com/vango-dev/polyroute/pkg/rules"
)

func testManifest() rules.Manifest {
	return rules.NewSet(
		[]rules.Rewrite{{Source: "/fr-ca/%C3%A0-propos", Destination: "/fr-ca/about"}},
		nil,
		[]string{"mul", "en-us", "fr-ca"},
		"mul",
	).Manifest()
}

func TestFilePublish(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "manifest.json")

	res, err := File{Path: path}.Publish(context.Background(), testManifest())
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if res.Location != path || res.Size == 0 {
		t.Errorf("Result = %+v", res)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	m, err := rules.DecodeManifest(f)
	if err != nil {
		t.Fatalf("DecodeManifest() error = %v", err)
	}
	if len(m.Rewrites) != 1 || m.Rewrites[0].Destination != "/fr-ca/about" {
		t.Errorf("published manifest = %+v", m)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file should be gone")
	}
}

func TestFilePublishError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}

	_, err := File{Path: filepath.Join(blocker, "manifest.json")}.Publish(context.Background(), testManifest())
	if errors.Code(err) != "E150" {
		t.Errorf("Publish() error = %v, want E150", err)
	}
}

type fakeS3 struct {
	input *s3.PutObjectInput
	body  string
	err   error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	data, _ := io.ReadAll(in.Body)
	f.body = string(data)
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestS3Publish(t *testing.T) {
	client := &fakeS3{}
	p, err := NewS3(context.Background(), S3Config{Bucket: "site", Key: "polyroute/manifest.json"}, WithS3Client(client))
	if err != nil {
		t.Fatalf("NewS3() error = %v", err)
	}

	res, err := p.Publish(context.Background(), testManifest())
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if res.Location != "s3://site/polyroute/manifest.json" {
		t.Errorf("Location = %q", res.Location)
	}

	in := client.input
	if aws.ToString(in.Bucket) != "site" || aws.ToString(in.Key) != "polyroute/manifest.json" {
		t.Errorf("PutObject bucket/key = %s/%s", aws.ToString(in.Bucket), aws.ToString(in.Key))
	}
	if aws.ToString(in.ContentType) != ContentType || aws.ToString(in.CacheControl) != "no-cache" {
		t.Errorf("PutObject headers = %s, %s", aws.ToString(in.ContentType), aws.ToString(in.CacheControl))
	}
	if aws.ToInt64(in.ContentLength) != int64(res.Size) || !strings.Contains(client.body, `"/fr-ca/about"`) {
		t.Errorf("PutObject body = %q", client.body)
	}
}

func TestS3PublishError(t *testing.T) {
	cause := stderrors.New("access denied")
	p, _ := NewS3(context.Background(), S3Config{Bucket: "site", Key: "m.json"}, WithS3Client(&fakeS3{err: cause}))

	_, err := p.Publish(context.Background(), testManifest())
	if errors.Code(err) != "E150" || !stderrors.Is(err, cause) {
		t.Errorf("Publish() error = %v", err)
	}
}

func TestNewS3RequiresBucketAndKey(t *testing.T) {
	_, err := NewS3(context.Background(), S3Config{Bucket: "site"}, WithS3Client(&fakeS3{}))
	if errors.Code(err) != "E103" {
		t.Errorf("NewS3() error = %v, want E103", err)
	}
}
