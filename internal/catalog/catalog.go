// Package catalog turns raw test descriptors into index-aligned test names
// and test interface URLs.
//
// A descriptor is either a bare interface URL, which doubles as the test's
// display name, or a "name,interface" pair. Pair lines follow CSV quoting
// rules so catalogs written by a CSV tool can be read back unchanged.
package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fairdata/faircheck/internal/models"
)

// Separator splits a test name from its interface.
const Separator = ','

// ErrMalformedEntry is matched by every *MalformedEntryError.
var ErrMalformedEntry = errors.New("malformed catalog entry")

// MalformedEntryError reports a descriptor that cannot be read as a
// name,interface pair.
type MalformedEntryError struct {
	// Line is the 1-based position of the descriptor.
	Line   int
	Entry  string
	Reason string
}

func (e *MalformedEntryError) Error() string {
	return fmt.Sprintf("catalog line %d %q: %s", e.Line, e.Entry, e.Reason)
}

func (e *MalformedEntryError) Is(target error) bool {
	return target == ErrMalformedEntry
}

// Parse returns the test names and interfaces described by lines.
//
// When no line contains the separator every line is both a name and an
// interface. Otherwise every line must be a name,interface pair.
func Parse(lines []string) (names []string, interfaces []string, err error) {
	names = make([]string, 0, len(lines))
	interfaces = make([]string, 0, len(lines))

	if !hasPairs(lines) {
		names = append(names, lines...)
		interfaces = append(interfaces, lines...)
		return names, interfaces, nil
	}

	for i, line := range lines {
		name, iface, err := parsePair(line)
		if err != nil {
			return nil, nil, &MalformedEntryError{Line: i + 1, Entry: line, Reason: err.Error()}
		}
		names = append(names, name)
		interfaces = append(interfaces, iface)
	}

	return names, interfaces, nil
}

// Specs parses lines into TestSpecs. Duplicate names are kept but logged,
// since results are indexed by name.
func Specs(lines []string) ([]models.TestSpec, error) {
	names, interfaces, err := Parse(lines)
	if err != nil {
		return nil, err
	}

	specs := make([]models.TestSpec, len(names))
	seen := make(map[string]int, len(names))
	for i := range names {
		specs[i] = models.TestSpec{Name: names[i], Interface: interfaces[i]}
		if first, ok := seen[names[i]]; ok {
			slog.Warn("Duplicate test name in catalog", "name", names[i], "first", first+1, "line", i+1)
			continue
		}
		seen[names[i]] = i
	}
	return specs, nil
}

func hasPairs(lines []string) bool {
	for _, line := range lines {
		if strings.ContainsRune(line, Separator) {
			return true
		}
	}
	return false
}

func parsePair(line string) (string, string, error) {
	if !strings.ContainsRune(line, Separator) {
		return "", "", errors.New("missing separator")
	}

	r := csv.NewReader(strings.NewReader(line))
	r.Comma = Separator
	r.FieldsPerRecord = 2
	r.TrimLeadingSpace = true

	fields, err := r.Read()
	if err != nil {
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) && errors.Is(parseErr.Err, csv.ErrFieldCount) {
			return "", "", fmt.Errorf("expected 2 fields")
		}
		return "", "", err
	}

	name, iface := strings.TrimSpace(fields[0]), strings.TrimSpace(fields[1])
	if name == "" || iface == "" {
		return "", "", errors.New("empty name or interface")
	}
	return name, iface, nil
}
