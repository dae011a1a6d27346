// Package metadata reads the Arduino library.properties manifest.
package metadata

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileName is the manifest name mandated by the Arduino library format.
const FileName = "library.properties"

// ErrFileMissing is returned when the manifest is absent from the library
// directory.
var ErrFileMissing = errors.New("library.properties is missing")

// Library holds the fields of a library.properties manifest.
type Library struct {
	Name          string
	Version       string
	Author        string
	Maintainer    string
	Sentence      string
	Paragraph     string
	Category      string
	URL           string
	Architectures []string
}

// Load reads library.properties from dir. A missing file is ErrFileMissing;
// a manifest without a version line is also fatal.
func Load(dir string) (*Library, error) {
	path := filepath.Join(dir, FileName)

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileMissing, path)
		}
		return nil, err
	}
	defer f.Close()

	lib, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return lib, nil
}

// Parse reads key=value lines. Blank lines and #-comments are skipped.
func Parse(r io.Reader) (*Library, error) {
	fields := map[string]string{}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("malformed property line: %q", line)
		}
		fields[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if fields["version"] == "" {
		return nil, fmt.Errorf("version is not declared")
	}

	lib := &Library{
		Name:       fields["name"],
		Version:    fields["version"],
		Author:     fields["author"],
		Maintainer: fields["maintainer"],
		Sentence:   fields["sentence"],
		Paragraph:  fields["paragraph"],
		Category:   fields["category"],
		URL:        fields["url"],
	}
	if a := fields["architectures"]; a != "" {
		for _, arch := range strings.Split(a, ",") {
			lib.Architectures = append(lib.Architectures, strings.TrimSpace(arch))
		}
	}

	return lib, nil
}
