package reporting

import (
	"fmt"
	"io"

	"github.com/fairdata/faircheck/internal/models"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// defaultPrinter formats counts in report summaries.
var defaultPrinter = message.NewPrinter(language.English)

// ConsoleReporter renders results as an indented, human-readable report.
//
// Pairs absent from the results are skipped: they are neither printed nor
// counted, so the "Passed" denominator is the number of verdicts the
// resource actually has.
type ConsoleReporter struct {
	w     io.Writer
	style Styler
}

// NewConsoleReporter creates a ConsoleReporter writing to w. A nil style
// selects PlainStyler.
func NewConsoleReporter(w io.Writer, style Styler) *ConsoleReporter {
	if style == nil {
		style = PlainStyler{}
	}
	return &ConsoleReporter{w: w, style: style}
}

// Report prints every resource with the verdicts of the named tests.
func (c *ConsoleReporter) Report(results *models.Results, testNames []string) error {
	for _, resource := range results.Resources() {
		if err := c.reportResource(results, resource, testNames); err != nil {
			return err
		}
	}
	return nil
}

func (c *ConsoleReporter) reportResource(results *models.Results, resource string, testNames []string) error {
	if _, err := fmt.Fprintln(c.w, c.style.Header(fmt.Sprintf("Testing resource: %q", resource))); err != nil {
		return err
	}

	passed := 0
	for _, name := range testNames {
		v, ok := results.Verdict(resource, name)
		if !ok {
			continue
		}

		if _, err := fmt.Fprintf(c.w, "\t%s\n", c.style.Test(fmt.Sprintf("Test: %q", name))); err != nil {
			return err
		}

		line := c.style.Fail(fmt.Sprintf("FAILED!: %q", v.Comment))
		if v.Passed {
			line = c.style.Pass(fmt.Sprintf("SUCCESS: %q", v.Comment))
			passed++
		}
		if _, err := fmt.Fprintf(c.w, "\t\t%s\n", line); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(c.w, "\t%s\n", c.style.Summary(fmt.Sprintf("Passed: %d/%d", passed, results.Count(resource))))
	return err
}

// ReportDropped prints a warning listing the pairs excluded because of
// unusable responses. Nothing is printed when no pair was dropped.
func (c *ConsoleReporter) ReportDropped(results *models.Results) error {
	dropped := results.Dropped()
	if len(dropped) == 0 {
		return nil
	}

	total := len(results.Resources()) * len(results.Catalog())
	header := defaultPrinter.Sprintf("Warning: %d of %d evaluation(s) produced no usable result", len(dropped), total)
	if _, err := fmt.Fprintln(c.w, c.style.Warn(header)); err != nil {
		return err
	}

	for _, d := range dropped {
		if _, err := fmt.Fprintf(c.w, "\t- %q on %q: %s\n", d.Test.Name, d.Resource, d.Reason); err != nil {
			return err
		}
	}
	return nil
}
