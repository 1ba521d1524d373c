package reporting

import (
	"fmt"
	"io"

	"github.com/fairdata/faircheck/internal/models"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Marks used in the summary table.
const (
	markPassed  = "✓"
	markFailed  = "✗"
	markMissing = "-"
)

// maxColumnWidth keeps long interface URLs used as test names readable.
const maxColumnWidth = 40

// WriteSummaryTable renders a resources × tests matrix with a passed count
// per resource and a totals footer. When colored is true the table uses a
// colored style.
func WriteSummaryTable(w io.Writer, results *models.Results, testNames []string, colored bool) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("FAIR Results")

	header := table.Row{"Resource"}
	configs := []table.ColumnConfig{{Name: "Resource", WidthMax: 60}}
	for _, name := range testNames {
		header = append(header, name)
		configs = append(configs, table.ColumnConfig{Name: name, Align: text.AlignCenter, AlignHeader: text.AlignCenter, WidthMax: maxColumnWidth})
	}
	header = append(header, "Passed", "Rating")
	configs = append(configs, table.ColumnConfig{Name: "Passed", Align: text.AlignRight})
	t.AppendHeader(header)
	t.SetColumnConfigs(configs)

	passedPerTest := make([]int, len(testNames))
	presentPerTest := make([]int, len(testNames))
	totalPassed, totalPresent := 0, 0

	for _, resource := range results.Resources() {
		row := table.Row{resource}
		passed, present := 0, 0
		for i, name := range testNames {
			v, ok := results.Verdict(resource, name)
			switch {
			case !ok:
				row = append(row, markMissing)
				continue
			case v.Passed:
				row = append(row, markPassed)
				passed++
				passedPerTest[i]++
			default:
				row = append(row, markFailed)
			}
			present++
			presentPerTest[i]++
		}
		totalPassed += passed
		totalPresent += present
		row = append(row, fmt.Sprintf("%d/%d", passed, present), InterpretPassRate(passRate(passed, present)))
		t.AppendRow(row)
	}

	footer := table.Row{"TOTAL"}
	for i := range testNames {
		footer = append(footer, fmt.Sprintf("%d/%d", passedPerTest[i], presentPerTest[i]))
	}
	footer = append(footer, fmt.Sprintf("%d/%d", totalPassed, totalPresent), InterpretPassRate(passRate(totalPassed, totalPresent)))
	t.AppendFooter(footer)

	switch {
	case !colored:
		t.SetStyle(table.StyleLight)
	case totalPresent > 0 && totalPassed == totalPresent:
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	case totalPassed > 0:
		t.SetStyle(table.StyleColoredBlackOnYellowWhite)
	default:
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	}

	t.Render()
}

func passRate(passed, present int) float64 {
	if present == 0 {
		return 0
	}
	return float64(passed) / float64(present)
}
