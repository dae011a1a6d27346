// Package storage mirrors release assets to object storage.
package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/libship/libship/logging"
)

const (
	s3Scheme = "s3"
	gsScheme = "gs"
)

// Uploader is the interface that wraps the Upload method.
type Uploader interface {
	// Upload stores data under name.
	Upload(ctx context.Context, name string, data []byte) error
}

// New returns an Uploader for the mirror URL.
func New(ctx context.Context, url string, logger *logging.Logger) (Uploader, error) {
	splitted := strings.SplitN(url, "://", 2)

	switch splitted[0] {
	case s3Scheme:
		return NewS3(ctx, url, logger)

	case gsScheme:
		return NewGS(ctx, url, logger)
	}

	return nil, fmt.Errorf("unsupported scheme: %s", url)
}
