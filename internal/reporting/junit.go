package reporting

import (
	"encoding/xml"
	"fmt"
	"os"
	"time"

	"github.com/fairdata/faircheck/internal/models"
)

// JUnit XML schema types

// JUnitTestSuites is the top-level container.
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Name       string           `xml:"name,attr,omitempty"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite maps to one evaluated resource.
type JUnitTestSuite struct {
	XMLName    xml.Name        `xml:"testsuite"`
	Name       string          `xml:"name,attr"`
	Tests      int             `xml:"tests,attr"`
	Failures   int             `xml:"failures,attr"`
	Errors     int             `xml:"errors,attr"`
	Timestamp  string          `xml:"timestamp,attr,omitempty"`
	Properties []JUnitProperty `xml:"properties>property,omitempty"`
	TestCases  []JUnitTestCase `xml:"testcase"`
}

// JUnitTestCase maps to one (resource, test) pair.
type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Error     *JUnitError   `xml:"error,omitempty"`
	SystemOut string        `xml:"system-out,omitempty"`
}

// JUnitFailure represents a failed maturity indicator.
type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitError represents a pair whose interface returned no usable verdict.
type JUnitError struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitProperty is a key-value metadata entry.
type JUnitProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// ConvertToJUnit converts results to JUnit XML, one suite per resource.
// Tests with a verdict become test cases; dropped pairs become errored cases.
func ConvertToJUnit(results *models.Results, testNames []string, timestamp time.Time) *JUnitTestSuites {
	interfaces := make(map[string]string)
	for _, spec := range results.Catalog() {
		if _, ok := interfaces[spec.Name]; !ok {
			interfaces[spec.Name] = spec.Interface
		}
	}

	droppedBy := make(map[string][]models.Dropped)
	for _, d := range results.Dropped() {
		droppedBy[d.Resource] = append(droppedBy[d.Resource], d)
	}

	out := &JUnitTestSuites{Name: "faircheck"}
	for _, resource := range results.Resources() {
		suite := JUnitTestSuite{Name: resource}
		if !timestamp.IsZero() {
			suite.Timestamp = timestamp.UTC().Format(time.RFC3339)
		}

		for _, name := range testNames {
			v, ok := results.Verdict(resource, name)
			if !ok {
				continue
			}
			tc := JUnitTestCase{Name: name, Classname: resource, SystemOut: v.Comment}
			if !v.Passed {
				tc.Failure = &JUnitFailure{
					Message: fmt.Sprintf("%s did not pass", name),
					Type:    "IndicatorFailure",
					Body:    v.Comment,
				}
				suite.Failures++
			}
			suite.TestCases = append(suite.TestCases, tc)
		}

		for _, d := range droppedBy[resource] {
			suite.TestCases = append(suite.TestCases, JUnitTestCase{
				Name:      d.Test.Name,
				Classname: resource,
				Error: &JUnitError{
					Message: d.Reason,
					Type:    "UnusableResponse",
					Body:    d.Test.Interface,
				},
			})
			suite.Errors++
		}

		suite.Tests = len(suite.TestCases)
		suite.Properties = []JUnitProperty{
			{Name: "passed", Value: fmt.Sprintf("%d/%d", suite.Tests-suite.Failures-suite.Errors, results.Count(resource))},
		}

		out.Tests += suite.Tests
		out.Failures += suite.Failures
		out.Errors += suite.Errors
		out.TestSuites = append(out.TestSuites, suite)
	}

	return out
}

// WriteJUnitXML writes JUnit XML to the specified file path.
func WriteJUnitXML(results *models.Results, testNames []string, path string) error {
	suites := ConvertToJUnit(results, testNames, time.Now())

	data, err := xml.MarshalIndent(suites, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JUnit XML: %w", err)
	}

	output := append([]byte(xml.Header), data...)
	return os.WriteFile(path, output, 0644)
}
