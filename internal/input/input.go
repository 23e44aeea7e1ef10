package input

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"

	"github.com/atikulmunna/weblog/internal/model"
)

// Stdin is the path that selects standard input.
const Stdin = "-"

// maxLineSize caps a single log line.
const maxLineSize = 1 << 20

// Expand resolves glob patterns to file paths, in pattern order.
// Supports recursive patterns like /var/log/**/access*.log via doublestar.
// Stdin passes through unchanged. A pattern that matches nothing is an error.
func Expand(patterns []string) ([]string, error) {
	var paths []string
	seen := make(map[string]bool)

	for _, pattern := range patterns {
		if pattern == Stdin {
			paths = append(paths, Stdin)
			continue
		}
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly(), doublestar.WithFailOnIOErrors())
		if err != nil {
			return nil, errors.Wrapf(err, "expand %q", pattern)
		}
		if len(matches) == 0 {
			return nil, errors.Errorf("no files match %q", pattern)
		}
		for _, m := range matches {
			abs, err := filepath.Abs(m)
			if err != nil {
				abs = m
			}
			if seen[abs] {
				continue
			}
			seen[abs] = true
			paths = append(paths, abs)
		}
	}
	return paths, nil
}

// Open returns a reader for path. Files ending in .gz are decompressed.
func Open(path string) (io.ReadCloser, error) {
	if path == Stdin {
		return io.NopCloser(os.Stdin), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}

	zr, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "gzip %s", path)
	}
	return &gzipFile{Reader: zr, file: f}, nil
}

// ReadLines reads every line of path, numbering them from 1.
func ReadLines(path string) ([]model.RawLine, error) {
	rc, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var lines []model.RawLine
	scanner := bufio.NewScanner(rc)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		lines = append(lines, model.RawLine{
			Text:   scanner.Text(),
			Source: path,
			Number: len(lines) + 1,
		})
	}
	if err := scanner.Err(); err != nil {
		return lines, errors.Wrapf(err, "read %s line %d", path, len(lines)+1)
	}
	return lines, nil
}

// ReadAll reads the lines of every path in order.
func ReadAll(paths []string) ([]model.RawLine, error) {
	var all []model.RawLine
	for _, p := range paths {
		lines, err := ReadLines(p)
		if err != nil {
			return nil, err
		}
		all = append(all, lines...)
	}
	return all, nil
}

// gzipFile closes both the decompressor and the underlying file.
type gzipFile struct {
	*gzip.Reader
	file *os.File
}

func (g *gzipFile) Close() error {
	zerr := g.Reader.Close()
	if err := g.file.Close(); err != nil {
		return err
	}
	return zerr
}
