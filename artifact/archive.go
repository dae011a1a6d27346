// Package artifact packages the library working tree into a release asset.
package artifact

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/mholt/archives"
)

// Directories that belong to development, not to the distributed library.
var excluded = map[string]bool{
	".git":    true,
	".github": true,
	".vscode": true,
	".idea":   true,
}

// Name returns the asset file name for a library release.
func Name(library, version string) string {
	return fmt.Sprintf("%s-%s.zip", library, strings.TrimPrefix(version, "v"))
}

// Package zips the library directory under a top-level folder named after
// the library, which is the layout the Arduino IDE expects when importing.
func Package(ctx context.Context, dir, library, version string) (string, []byte, error) {
	files, err := archives.FilesFromDisk(ctx, nil, map[string]string{
		dir: library,
	})
	if err != nil {
		return "", nil, fmt.Errorf("failed to collect library files: %w", err)
	}

	kept := files[:0]
	for _, f := range files {
		if excludedEntry(f.NameInArchive) {
			continue
		}
		kept = append(kept, f)
	}

	var buf bytes.Buffer
	zip := archives.Zip{}
	if err := zip.Archive(ctx, &buf, kept); err != nil {
		return "", nil, fmt.Errorf("failed to archive library: %w", err)
	}

	return Name(library, version), buf.Bytes(), nil
}

func excludedEntry(name string) bool {
	for _, seg := range strings.Split(name, "/") {
		if excluded[seg] {
			return true
		}
	}
	return false
}
