// SPDX-License-Identifier: MPL-2.0

package transit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type (
	// s3API is the subset of the S3 client used by s3 hosts.
	s3API interface {
		HeadObject(ctx context.Context, in *s3.HeadObjectInput, opts ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
		GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	}

	s3Transport struct {
		api    s3API
		bucket string
		prefix string
	}
)

// newS3Transport serves s3://bucket/prefix. Username and Password, when set,
// are used as static access keys; otherwise the default AWS credential chain applies.
func newS3Transport(ctx context.Context, d HostDirective, u *url.URL, opts hostOptions) (*s3Transport, error) {
	if u.Host == "" {
		return nil, errors.New("s3 host url must name a bucket")
	}
	t := &s3Transport{
		api:    opts.s3,
		bucket: u.Host,
		prefix: strings.Trim(u.Path, "/"),
	}
	if t.api != nil {
		return t, nil
	}

	region := d.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if d.Username != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(d.Username, d.Password, "")))
	}
	if opts.httpClient != nil {
		loadOpts = append(loadOpts, awsconfig.WithHTTPClient(opts.httpClient))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	t.api = s3.NewFromConfig(cfg, func(o *s3.Options) {
		if d.Endpoint != "" {
			o.BaseEndpoint = aws.String(d.Endpoint)
			o.UsePathStyle = true
		}
	})
	return t, nil
}

func (t *s3Transport) key(rel string) string {
	if t.prefix == "" {
		return rel
	}
	return path.Join(t.prefix, rel)
}

func (t *s3Transport) exists(ctx context.Context, rel string) (bool, error) {
	_, err := t.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(t.bucket),
		Key:    aws.String(t.key(rel)),
	})
	if isS3NotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (t *s3Transport) fetch(ctx context.Context, rel string) (io.ReadCloser, time.Time, error) {
	out, err := t.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(t.bucket),
		Key:    aws.String(t.key(rel)),
	})
	if isS3NotFound(err) {
		return nil, time.Time{}, errNotFound
	}
	if err != nil {
		return nil, time.Time{}, err
	}
	return out.Body, aws.ToTime(out.LastModified), nil
}

func isS3NotFound(err error) bool {
	var noKey *s3types.NoSuchKey
	var notFound *s3types.NotFound
	return errors.As(err, &noKey) || errors.As(err, &notFound)
}
