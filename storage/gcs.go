package storage

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/libship/libship/logging"
	"google.golang.org/api/option"
)

type GS struct {
	Bucket string
	Prefix string
	url    string
	cl     GSClient
	logger *logging.Logger
}

// parseGS splits gs://<bucket>/<prefix> into its parts.
func parseGS(strUrl string) (bucket, prefix string, err error) {
	u, err := url.Parse(strUrl)
	if err != nil {
		return "", "", err
	}
	if u.Scheme != gsScheme || u.Host == "" {
		return "", "", fmt.Errorf("url parse error: %s (format: gs://<bucket>/<prefix>)", strUrl)
	}
	return u.Host, strings.TrimPrefix(u.Path, "/"), nil
}

// NewGS builds a Google Cloud Storage mirror from a gs://<bucket>/<prefix>
// URL. STORAGE_EMULATOR_HOST switches to an unauthenticated emulator client.
func NewGS(ctx context.Context, strUrl string, logger *logging.Logger) (*GS, error) {
	bucket, prefix, err := parseGS(strUrl)
	if err != nil {
		return nil, err
	}

	var opts []option.ClientOption
	if ep := os.Getenv("STORAGE_EMULATOR_HOST"); ep != "" {
		opts = append(opts, option.WithEndpoint("http://"+ep), option.WithoutAuthentication())
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GS client: %w", err)
	}

	return &GS{
		Bucket: bucket,
		Prefix: prefix,
		url:    strUrl,
		cl:     client,
		logger: logger,
	}, nil
}

// Upload writes the asset under <prefix>/<name>.
func (g *GS) Upload(ctx context.Context, name string, data []byte) error {
	object := path.Join(g.Prefix, name)

	w := g.cl.Bucket(g.Bucket).Object(object).NewWriter(ctx)
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to mirror asset to Google Cloud Storage: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to mirror asset to Google Cloud Storage: %w", err)
	}

	g.logger.Info("Mirrored to GS", slog.String("bucket", g.Bucket), slog.String("object", object))
	return nil
}

type GSClient interface {
	Bucket(name string) *storage.BucketHandle
}
