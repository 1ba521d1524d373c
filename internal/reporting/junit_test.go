package reporting

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fairdata/faircheck/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	specLicense = models.TestSpec{Name: "hasLicense", Interface: "http://tests.example.org/license"}
	specPID     = models.TestSpec{Name: "hasPID", Interface: "http://tests.example.org/pid"}
	specMeta    = models.TestSpec{Name: "hasMetadata", Interface: "http://tests.example.org/meta"}
)

// newTestResults builds two resources against three tests: resource a has
// every verdict, resource b lost hasPID to an unusable response.
func newTestResults() *models.Results {
	r := models.NewResults([]models.TestSpec{specLicense, specPID, specMeta})
	r.Record("http://example.org/a", specLicense, models.Verdict{TestName: "hasLicense", Passed: true, Comment: "license found"})
	r.Record("http://example.org/a", specPID, models.Verdict{TestName: "hasPID", Passed: false, Comment: "no identifier"})
	r.Record("http://example.org/a", specMeta, models.Verdict{TestName: "hasMetadata", Passed: true, Comment: "metadata ok"})
	r.Record("http://example.org/b", specLicense, models.Verdict{TestName: "hasLicense", Passed: false, Comment: "no license"})
	r.Drop("http://example.org/b", specPID, "status 500")
	r.Record("http://example.org/b", specMeta, models.Verdict{TestName: "hasMetadata", Passed: true, Comment: "metadata ok"})
	return r
}

func TestConvertToJUnit_Structure(t *testing.T) {
	results := newTestResults()
	ts := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	suites := ConvertToJUnit(results, results.ActiveTestNames(), ts)

	assert.Equal(t, 6, suites.Tests)
	assert.Equal(t, 2, suites.Failures)
	assert.Equal(t, 1, suites.Errors)

	require.Len(t, suites.TestSuites, 2)
	a := suites.TestSuites[0]
	assert.Equal(t, "http://example.org/a", a.Name)
	assert.Equal(t, 3, a.Tests)
	assert.Equal(t, 1, a.Failures)
	assert.Equal(t, 0, a.Errors)
	assert.Equal(t, "2025-06-15T12:00:00Z", a.Timestamp)
	require.Len(t, a.TestCases, 3)
}

func TestConvertToJUnit_PassedTestCase(t *testing.T) {
	results := newTestResults()
	suites := ConvertToJUnit(results, results.ActiveTestNames(), time.Time{})
	tc := suites.TestSuites[0].TestCases[0]

	assert.Equal(t, "hasLicense", tc.Name)
	assert.Equal(t, "http://example.org/a", tc.Classname)
	assert.Equal(t, "license found", tc.SystemOut)
	assert.Nil(t, tc.Failure)
	assert.Nil(t, tc.Error)
	assert.Empty(t, suites.TestSuites[0].Timestamp)
}

func TestConvertToJUnit_FailedTestCase(t *testing.T) {
	results := newTestResults()
	suites := ConvertToJUnit(results, results.ActiveTestNames(), time.Time{})
	tc := suites.TestSuites[0].TestCases[1]

	assert.Equal(t, "hasPID", tc.Name)
	require.NotNil(t, tc.Failure)
	assert.Equal(t, "IndicatorFailure", tc.Failure.Type)
	assert.Equal(t, "no identifier", tc.Failure.Body)
	assert.Contains(t, tc.Failure.Message, "hasPID")
}

func TestConvertToJUnit_DroppedPairIsError(t *testing.T) {
	results := newTestResults()
	suites := ConvertToJUnit(results, results.ActiveTestNames(), time.Time{})
	b := suites.TestSuites[1]

	require.Len(t, b.TestCases, 3)
	tc := b.TestCases[2]
	assert.Equal(t, "hasPID", tc.Name)
	assert.Nil(t, tc.Failure)
	require.NotNil(t, tc.Error)
	assert.Equal(t, "UnusableResponse", tc.Error.Type)
	assert.Equal(t, "status 500", tc.Error.Message)
	assert.Equal(t, specPID.Interface, tc.Error.Body)
	assert.Equal(t, 1, b.Errors)
}

func TestConvertToJUnit_Properties(t *testing.T) {
	results := newTestResults()
	suites := ConvertToJUnit(results, results.ActiveTestNames(), time.Time{})

	props := make(map[string]string)
	for _, p := range suites.TestSuites[1].Properties {
		props[p.Name] = p.Value
	}
	assert.Equal(t, "1/2", props["passed"])
}

func TestConvertToJUnit_Empty(t *testing.T) {
	results := models.NewResults(nil)
	suites := ConvertToJUnit(results, nil, time.Now())

	assert.Equal(t, 0, suites.Tests)
	assert.Empty(t, suites.TestSuites)
}

func TestWriteJUnitXML_ValidXML(t *testing.T) {
	results := newTestResults()
	path := filepath.Join(t.TempDir(), "results.xml")

	require.NoError(t, WriteJUnitXML(results, results.ActiveTestNames(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "<?xml"))

	var parsed JUnitTestSuites
	require.NoError(t, xml.Unmarshal(data, &parsed))
	assert.Equal(t, 6, parsed.Tests)
	require.Len(t, parsed.TestSuites, 2)
	assert.Equal(t, "http://example.org/b", parsed.TestSuites[1].Name)
}

func TestWriteJUnitXML_BadPath(t *testing.T) {
	results := newTestResults()
	err := WriteJUnitXML(results, results.ActiveTestNames(), filepath.Join(t.TempDir(), "missing", "results.xml"))
	assert.Error(t, err)
}
