package reporting

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fairdata/faircheck/internal/models"
	"github.com/klauspost/compress/gzip"
)

// CSV cell values for a verdict. Pairs without a verdict get MissingCell.
const (
	PassedCell  = "True"
	FailedCell  = "False"
	MissingCell = ""
)

// WriteCSV writes the result matrix: a "resource" header followed by the
// test names, then one row per resource.
func WriteCSV(w io.Writer, results *models.Results, testNames []string) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, len(testNames)+1)
	header = append(header, "resource")
	header = append(header, testNames...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for _, resource := range results.Resources() {
		row := make([]string, 0, len(testNames)+1)
		row = append(row, resource)
		for _, name := range testNames {
			row = append(row, cell(results, resource, name))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing csv row for %s: %w", resource, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func cell(results *models.Results, resource, testName string) string {
	v, ok := results.Verdict(resource, testName)
	switch {
	case !ok:
		return MissingCell
	case v.Passed:
		return PassedCell
	default:
		return FailedCell
	}
}

// ExportCSV writes the result matrix to path. Paths ending in ".gz" are
// gzip-compressed.
func ExportCSV(path string, results *models.Results, testNames []string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating export %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing export %s: %w", path, cerr)
		}
	}()

	if !strings.HasSuffix(path, ".gz") {
		return WriteCSV(f, results, testNames)
	}

	zw := gzip.NewWriter(f)
	if err := WriteCSV(zw, results, testNames); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("compressing export %s: %w", path, err)
	}
	return nil
}
