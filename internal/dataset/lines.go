package dataset

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
)

// ErrMissingInputFile is returned when a resources or tests file does not exist.
var ErrMissingInputFile = errors.New("input file not found")

// LoadLines reads a newline-delimited list from path. Blank lines are
// skipped and surrounding whitespace is trimmed; order is preserved.
func LoadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingInputFile, path)
		}
		return nil, fmt.Errorf("lines: open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	lines, err := ReadLines(f)
	if err != nil {
		return nil, fmt.Errorf("lines: read %s: %w", path, err)
	}
	return lines, nil
}

// ReadLines is LoadLines for an already opened reader.
func ReadLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
