package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/gorilla/schema"
	"github.com/libship/libship/logging"
)

var decoder = schema.NewDecoder()

const s3Format = "s3://<region>/<bucket>/<prefix>?endpoint=<endpoint>"

type S3 struct {
	Region   string `schema:"-"`
	Bucket   string `schema:"-"`
	Prefix   string `schema:"-"`
	Endpoint string `schema:"endpoint"`
	url      string
	cl       S3Client
	logger   *logging.Logger
}

// NewS3 builds an S3 mirror from a URL such as
// s3://ap-northeast-1/mybucket/releases?endpoint=http://localhost:9000
func NewS3(ctx context.Context, strUrl string, logger *logging.Logger) (*S3, error) {
	u, err := url.Parse(strUrl)
	if err != nil {
		return nil, err
	}

	splitted := strings.SplitN(strings.TrimPrefix(u.Path, "/"), "/", 2)
	if u.Host == "" || len(splitted) < 1 || splitted[0] == "" {
		return nil, fmt.Errorf("bucket is required: %s", s3Format)
	}

	s := &S3{
		Region: u.Host,
		Bucket: splitted[0],
		url:    strUrl,
		logger: logger,
	}
	if len(splitted) == 2 {
		s.Prefix = splitted[1]
	}
	if err = decoder.Decode(s, u.Query()); err != nil {
		return nil, err
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(s.Region))
	if err != nil {
		return nil, err
	}

	if s.Endpoint != "" {
		s.cl = s3.NewFromConfig(cfg, func(o *s3.Options) {
			o.UsePathStyle = true
			o.BaseEndpoint = aws.String(s.Endpoint)
		})
	} else {
		s.cl = s3.NewFromConfig(cfg)
	}

	return s, nil
}

// Upload puts the asset under <prefix>/<name>.
func (s *S3) Upload(ctx context.Context, name string, data []byte) error {
	key := path.Join(s.Prefix, name)

	_, err := s.cl.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		var ae smithy.APIError
		if errors.As(err, &ae) {
			return fmt.Errorf("failed to mirror asset to S3 (%s): %w", ae.ErrorCode(), err)
		}
		return fmt.Errorf("failed to mirror asset to S3: %w", err)
	}

	s.logger.Info("Mirrored to S3", slog.String("bucket", s.Bucket), slog.String("key", key))
	return nil
}

type S3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}
