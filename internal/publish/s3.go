package publish

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/polyroute/internal/errors"
	"github.com/vango-dev/polyroute/pkg/rules"
)

// S3Client is the subset of the S3 API used to publish manifests.
type S3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config locates the manifest object.
type S3Config struct {
	Bucket string
	Key    string

	// Region overrides the region of the AWS environment.
	Region string

	// CacheControl is set on the object (default: "no-cache").
	CacheControl string
}

// S3Option configures an S3 publisher.
type S3Option func(*s3Options)

type s3Options struct {
	client        S3Client
	configOptions []func(*awsconfig.LoadOptions) error
}

// WithS3Client sets a pre-configured S3 client.
func WithS3Client(client S3Client) S3Option {
	return func(o *s3Options) {
		o.client = client
	}
}

// WithS3ConfigOption adds an AWS config loading option.
func WithS3ConfigOption(option func(*awsconfig.LoadOptions) error) S3Option {
	return func(o *s3Options) {
		o.configOptions = append(o.configOptions, option)
	}
}

// S3 uploads the manifest to an S3 object.
type S3 struct {
	client S3Client
	cfg    S3Config
}

// NewS3 creates an S3 publisher. Without WithS3Client, credentials and
// region come from the default AWS configuration chain.
func NewS3(ctx context.Context, cfg S3Config, opts ...S3Option) (*S3, error) {
	if cfg.Bucket == "" || cfg.Key == "" {
		return nil, errors.New("E103").WithDetail("S3 publishing requires publish.bucket and publish.key.")
	}
	if cfg.CacheControl == "" {
		cfg.CacheControl = "no-cache"
	}

	options := &s3Options{}
	for _, opt := range opts {
		opt(options)
	}

	client := options.client
	if client == nil {
		var loadOptions []func(*awsconfig.LoadOptions) error
		if cfg.Region != "" {
			loadOptions = append(loadOptions, awsconfig.WithRegion(cfg.Region))
		}
		loadOptions = append(loadOptions, options.configOptions...)

		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOptions...)
		if err != nil {
			return nil, errors.New("E150").WithDetail("Failed to load AWS config.").Wrap(err)
		}
		client = s3.NewFromConfig(awsCfg)
	}

	return &S3{client: client, cfg: cfg}, nil
}

// URL returns the s3:// URL of the manifest object.
func (p *S3) URL() string {
	return fmt.Sprintf("s3://%s/%s", p.cfg.Bucket, p.cfg.Key)
}

// Publish implements Publisher.
func (p *S3) Publish(ctx context.Context, m rules.Manifest) (Result, error) {
	data, err := encode(m)
	if err != nil {
		return Result{}, errors.New("E150").Wrap(err)
	}

	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(p.cfg.Bucket),
		Key:           aws.String(p.cfg.Key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(ContentType),
		CacheControl:  aws.String(p.cfg.CacheControl),
	})
	if err != nil {
		return Result{}, errors.New("E150").WithDetail("Upload to " + p.URL() + " failed.").Wrap(err)
	}
	return Result{Location: p.URL(), Size: len(data)}, nil
}
