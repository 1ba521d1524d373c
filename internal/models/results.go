package models

import "slices"

// TestSpec identifies one maturity indicator test and the interface that evaluates it.
type TestSpec struct {
	Name      string `json:"name"`
	Interface string `json:"interface"`
}

// Verdict is the outcome of one test invocation against one resource.
type Verdict struct {
	TestName string `json:"test"`
	Passed   bool   `json:"passed"`
	Comment  string `json:"comment"`
}

// Dropped describes a (resource, test) pair excluded from the results
// because the test interface returned an unusable response.
type Dropped struct {
	Resource string
	Test     TestSpec
	Reason   string
}

// Results maps resource → test name → Verdict. The mapping is sparse: a
// resource may lack entries for tests that failed against it, so all reads
// go through presence-tested accessors.
type Results struct {
	resources []string
	verdicts  map[string]map[string]Verdict

	catalog []TestSpec
	active  map[string]bool

	dropped []Dropped
}

// NewResults creates an empty result set for the given test catalog. The
// catalog order determines the order of ActiveTests.
func NewResults(catalog []TestSpec) *Results {
	return &Results{
		verdicts: make(map[string]map[string]Verdict),
		catalog:  slices.Clone(catalog),
		active:   make(map[string]bool),
	}
}

// AddResource registers a resource so it is reported even when none of its
// tests produce a usable response. Registering twice is a no-op.
func (r *Results) AddResource(resource string) {
	if _, ok := r.verdicts[resource]; ok {
		return
	}
	r.resources = append(r.resources, resource)
	r.verdicts[resource] = make(map[string]Verdict)
}

// Record stores a verdict for the resource and marks the test as active.
func (r *Results) Record(resource string, spec TestSpec, v Verdict) {
	r.AddResource(resource)
	r.verdicts[resource][spec.Name] = v
	r.active[spec.Name] = true
}

// Drop records that the pair produced no usable result.
func (r *Results) Drop(resource string, spec TestSpec, reason string) {
	r.AddResource(resource)
	r.dropped = append(r.dropped, Dropped{Resource: resource, Test: spec, Reason: reason})
}

// Resources returns the resources in first-seen order.
func (r *Results) Resources() []string {
	return slices.Clone(r.resources)
}

// Verdict returns the verdict for the pair and whether one exists.
func (r *Results) Verdict(resource, testName string) (Verdict, bool) {
	tests, ok := r.verdicts[resource]
	if !ok {
		return Verdict{}, false
	}
	v, ok := tests[testName]
	return v, ok
}

// Count returns the number of verdicts recorded for the resource.
func (r *Results) Count(resource string) int {
	return len(r.verdicts[resource])
}

// Catalog returns the tests the run was asked to evaluate.
func (r *Results) Catalog() []TestSpec {
	return slices.Clone(r.catalog)
}

// ActiveTests returns the tests that produced at least one usable result,
// in catalog order. Duplicate catalog names are reported once.
func (r *Results) ActiveTests() []TestSpec {
	seen := make(map[string]bool, len(r.active))
	active := make([]TestSpec, 0, len(r.active))
	for _, spec := range r.catalog {
		if !r.active[spec.Name] || seen[spec.Name] {
			continue
		}
		seen[spec.Name] = true
		active = append(active, spec)
	}
	return active
}

// ActiveTestNames returns the names of ActiveTests.
func (r *Results) ActiveTestNames() []string {
	active := r.ActiveTests()
	names := make([]string, len(active))
	for i, spec := range active {
		names[i] = spec.Name
	}
	return names
}

// Dropped returns the excluded pairs in the order they were recorded.
func (r *Results) Dropped() []Dropped {
	return slices.Clone(r.dropped)
}
