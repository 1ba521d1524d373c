package reporting

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fairdata/faircheck/internal/models"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

const htmlHead = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>FAIR Results</title>
</head>
<body>
`

const htmlTail = `</body>
</html>
`

// WriteMarkdown renders the results as a Markdown document: a matrix table
// followed by the comment of every verdict, grouped by resource.
func WriteMarkdown(w io.Writer, results *models.Results, testNames []string) error {
	var b strings.Builder

	b.WriteString("# FAIR Results\n\n")
	b.WriteString(FormatSummaryLine(results, testNames))
	b.WriteString("\n\n")

	if len(testNames) > 0 {
		b.WriteString("| Resource |")
		for _, name := range testNames {
			b.WriteString(" " + escapeCell(name) + " |")
		}
		b.WriteString("\n|---|")
		b.WriteString(strings.Repeat(":---:|", len(testNames)))
		b.WriteString("\n")

		for _, resource := range results.Resources() {
			b.WriteString("| " + escapeCell(resource) + " |")
			for _, name := range testNames {
				mark := markMissing
				if v, ok := results.Verdict(resource, name); ok {
					mark = markFailed
					if v.Passed {
						mark = markPassed
					}
				}
				b.WriteString(" " + mark + " |")
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	for _, resource := range results.Resources() {
		fmt.Fprintf(&b, "## %s\n\n", resource)
		count := 0
		for _, name := range testNames {
			v, ok := results.Verdict(resource, name)
			if !ok {
				continue
			}
			status := "FAILED"
			if v.Passed {
				status = "SUCCESS"
			}
			fmt.Fprintf(&b, "- **%s** `%s`: %s\n", status, name, strings.ReplaceAll(v.Comment, "\n", " "))
			count++
		}
		if count == 0 {
			b.WriteString("_No usable results._\n")
		}
		b.WriteString("\n")
	}

	if dropped := results.Dropped(); len(dropped) > 0 {
		b.WriteString("## Unusable responses\n\n")
		for _, d := range dropped {
			fmt.Fprintf(&b, "- `%s` on %s: %s\n", d.Test.Name, d.Resource, d.Reason)
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// FormatSummaryLine returns a one-line pass count over all present verdicts.
func FormatSummaryLine(results *models.Results, testNames []string) string {
	passed, present := 0, 0
	for _, resource := range results.Resources() {
		for _, name := range testNames {
			if v, ok := results.Verdict(resource, name); ok {
				present++
				if v.Passed {
					passed++
				}
			}
		}
	}
	return defaultPrinter.Sprintf("%d of %d verdicts passed across %d resource(s).", passed, present, len(results.Resources()))
}

// RenderHTML converts the Markdown report to a standalone HTML page.
func RenderHTML(w io.Writer, results *models.Results, testNames []string) error {
	var md bytes.Buffer
	if err := WriteMarkdown(&md, results, testNames); err != nil {
		return err
	}

	converter := goldmark.New(goldmark.WithExtensions(extension.GFM))

	var body bytes.Buffer
	if err := converter.Convert(md.Bytes(), &body); err != nil {
		return fmt.Errorf("rendering HTML report: %w", err)
	}

	if _, err := io.WriteString(w, htmlHead); err != nil {
		return err
	}
	if _, err := w.Write(body.Bytes()); err != nil {
		return err
	}
	_, err := io.WriteString(w, htmlTail)
	return err
}

// ExportHTML writes the HTML report to path.
func ExportHTML(path string, results *models.Results, testNames []string) error {
	var buf bytes.Buffer
	if err := RenderHTML(&buf, results, testNames); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing HTML report %s: %w", path, err)
	}
	return nil
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
