package reporting

import (
	"fmt"
	"strings"

	"github.com/fairdata/faircheck/internal/models"
)

// InterpretPassRate returns a human-readable explanation of a pass rate (0–1).
func InterpretPassRate(rate float64) string {
	pct := rate * 100
	switch {
	case pct >= 100:
		return fmt.Sprintf("All tests passed (%.0f%%)", pct)
	case pct >= 80:
		return fmt.Sprintf("Most tests passed (%.0f%%)", pct)
	case pct >= 50:
		return fmt.Sprintf("About half the tests passed (%.0f%%)", pct)
	default:
		return fmt.Sprintf("Few tests passed (%.0f%%)", pct)
	}
}

// InterpretCoverage explains how many of the requested evaluations produced
// a usable verdict.
func InterpretCoverage(usable, requested int) string {
	if requested == 0 {
		return "No evaluations were requested."
	}
	if usable == requested {
		return "Every evaluation produced a usable verdict."
	}
	return defaultPrinter.Sprintf("%d of %d evaluations produced a usable verdict; missing pairs are excluded from the pass counts.", usable, requested)
}

// FormatSummaryReport produces a plain-language interpretation of the
// results for the named tests.
func FormatSummaryReport(results *models.Results, testNames []string) string {
	var b strings.Builder

	resources := results.Resources()
	passed, present := 0, 0
	for _, resource := range resources {
		for _, name := range testNames {
			v, ok := results.Verdict(resource, name)
			if !ok {
				continue
			}
			present++
			if v.Passed {
				passed++
			}
		}
	}

	b.WriteString("=== Interpretation ===\n\n")
	b.WriteString(defaultPrinter.Sprintf("Resources:     %d\n", len(resources)))
	b.WriteString(defaultPrinter.Sprintf("Tests:         %d active of %d requested\n", len(testNames), len(results.Catalog())))
	b.WriteString(fmt.Sprintf("Pass Rate:     %s\n", InterpretPassRate(passRate(passed, present))))
	b.WriteString(fmt.Sprintf("Coverage:      %s\n", InterpretCoverage(present, len(resources)*len(results.Catalog()))))

	if len(testNames) > 0 {
		b.WriteString("\nPer-Test Interpretation:\n")
		for _, name := range testNames {
			testPassed, testPresent := 0, 0
			for _, resource := range resources {
				v, ok := results.Verdict(resource, name)
				if !ok {
					continue
				}
				testPresent++
				if v.Passed {
					testPassed++
				}
			}
			icon := markPassed
			if testPassed < testPresent {
				icon = markFailed
			}
			b.WriteString(fmt.Sprintf("  %s %s: %d/%d resources\n", icon, name, testPassed, testPresent))
		}
	}

	return b.String()
}
