package orchestration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fairdata/faircheck/internal/indicator"
	"github.com/fairdata/faircheck/internal/metrics"
	"github.com/fairdata/faircheck/internal/models"
	"golang.org/x/sync/errgroup"
)

// Policy decides what an unusable response does to the run.
type Policy string

const (
	// PolicyLenient drops the (resource, test) pair and continues.
	PolicyLenient Policy = "lenient"
	// PolicyStrict aborts the run on the first unusable response.
	PolicyStrict Policy = "strict"
)

// ParsePolicy validates a policy name. The empty string selects PolicyLenient.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PolicyLenient:
		return PolicyLenient, nil
	case PolicyStrict:
		return PolicyStrict, nil
	default:
		return "", fmt.Errorf("unknown failure policy %q: must be lenient or strict", s)
	}
}

// TestRunner drives every (resource, test) invocation of a run
type TestRunner struct {
	evaluator indicator.Evaluator
	policy    Policy
	workers   int
	recorder  metrics.Recorder

	// Progress tracking
	progressMu sync.Mutex
	listeners  []ProgressListener
}

// ProgressListener receives progress updates
type ProgressListener func(event ProgressEvent)

// EventType represents the type of progress event
type EventType string

// EventType constants
const (
	EventRunStart     EventType = "run_start"
	EventRunComplete  EventType = "run_complete"
	EventTestStart    EventType = "test_start"
	EventTestComplete EventType = "test_complete"
	EventTestUnusable EventType = "test_unusable"
)

// ProgressEvent represents a progress update. In concurrent runs events
// arrive in completion order.
type ProgressEvent struct {
	EventType  EventType
	Resource   string
	TestName   string
	Call       int
	TotalCalls int
	Passed     bool
	DurationMs int64
	Err        error
}

// RunnerOption configures a TestRunner.
type RunnerOption func(*TestRunner)

// WithPolicy sets the failure policy.
func WithPolicy(p Policy) RunnerOption {
	return func(r *TestRunner) {
		r.policy = p
	}
}

// WithWorkers bounds the number of concurrent calls. Values below 2 keep
// the run sequential.
func WithWorkers(n int) RunnerOption {
	return func(r *TestRunner) {
		r.workers = n
	}
}

// WithRecorder sets the metrics recorder
func WithRecorder(rec metrics.Recorder) RunnerOption {
	return func(r *TestRunner) {
		r.recorder = rec
	}
}

// NewTestRunner creates a new test runner
func NewTestRunner(evaluator indicator.Evaluator, opts ...RunnerOption) *TestRunner {
	r := &TestRunner{
		evaluator: evaluator,
		policy:    PolicyLenient,
		workers:   1,
		recorder:  metrics.Noop{},
		listeners: []ProgressListener{},
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// OnProgress registers a progress listener
func (r *TestRunner) OnProgress(listener ProgressListener) {
	r.progressMu.Lock()
	defer r.progressMu.Unlock()
	r.listeners = append(r.listeners, listener)
}

func (r *TestRunner) notifyProgress(event ProgressEvent) {
	r.progressMu.Lock()
	listeners := make([]ProgressListener, len(r.listeners))
	copy(listeners, r.listeners)
	r.progressMu.Unlock()

	for _, listener := range listeners {
		listener(event)
	}
}

// invocation is the outcome of one (resource, test) call.
type invocation struct {
	resource string
	spec     models.TestSpec
	verdict  models.Verdict
	err      error
}

// Run evaluates every spec against every resource, resources outer and
// tests inner, and returns the aggregated results.
func (r *TestRunner) Run(ctx context.Context, resources []string, specs []models.TestSpec) (*models.Results, error) {
	total := len(resources) * len(specs)
	r.notifyProgress(ProgressEvent{EventType: EventRunStart, TotalCalls: total})

	results := models.NewResults(specs)
	for _, resource := range resources {
		results.AddResource(resource)
	}

	var err error
	if r.workers > 1 && total > 1 {
		err = r.runConcurrent(ctx, results, resources, specs)
	} else {
		err = r.runSequential(ctx, results, resources, specs)
	}
	if err != nil {
		return nil, err
	}

	active := results.ActiveTests()
	r.recorder.ObserveRun(len(results.Resources()), len(active), len(results.Dropped()))
	r.notifyProgress(ProgressEvent{EventType: EventRunComplete, TotalCalls: total})

	return results, nil
}

func (r *TestRunner) runSequential(ctx context.Context, results *models.Results, resources []string, specs []models.TestSpec) error {
	total := len(resources) * len(specs)
	for i, resource := range resources {
		for j, spec := range specs {
			if err := ctx.Err(); err != nil {
				return err
			}
			inv := r.invoke(ctx, resource, spec, i*len(specs)+j+1, total)
			if err := r.fold(results, inv); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *TestRunner) runConcurrent(ctx context.Context, results *models.Results, resources []string, specs []models.TestSpec) error {
	total := len(resources) * len(specs)
	slots := make([]invocation, total)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for i, resource := range resources {
		for j, spec := range specs {
			idx := i*len(specs) + j
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				inv := r.invoke(gctx, resource, spec, idx+1, total)
				slots[idx] = inv
				if inv.err != nil && (r.policy == PolicyStrict || !errors.Is(inv.err, indicator.ErrUnusableResponse)) {
					return r.abort(inv)
				}
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return err
	}

	// Fold in resources × tests order so results match a sequential run.
	for _, inv := range slots {
		if err := r.fold(results, inv); err != nil {
			return err
		}
	}
	return nil
}

// invoke performs one call and reports it to listeners and the recorder.
func (r *TestRunner) invoke(ctx context.Context, resource string, spec models.TestSpec, call, total int) invocation {
	r.notifyProgress(ProgressEvent{
		EventType:  EventTestStart,
		Resource:   resource,
		TestName:   spec.Name,
		Call:       call,
		TotalCalls: total,
	})

	start := time.Now()
	verdict, err := r.evaluator.Evaluate(ctx, resource, spec)
	elapsed := time.Since(start)

	event := ProgressEvent{
		Resource:   resource,
		TestName:   spec.Name,
		Call:       call,
		TotalCalls: total,
		DurationMs: elapsed.Milliseconds(),
	}

	switch {
	case err == nil:
		outcome := metrics.OutcomeFail
		if verdict.Passed {
			outcome = metrics.OutcomePass
		}
		r.recorder.ObserveInvocation(spec.Name, outcome, elapsed)
		event.EventType = EventTestComplete
		event.Passed = verdict.Passed
		r.notifyProgress(event)
	case errors.Is(err, indicator.ErrUnusableResponse):
		r.recorder.ObserveInvocation(spec.Name, metrics.OutcomeUnusable, elapsed)
		event.EventType = EventTestUnusable
		event.Err = err
		r.notifyProgress(event)
	}

	return invocation{resource: resource, spec: spec, verdict: verdict, err: err}
}

// fold applies the failure policy to one invocation and stores its outcome.
func (r *TestRunner) fold(results *models.Results, inv invocation) error {
	if inv.err == nil {
		results.Record(inv.resource, inv.spec, inv.verdict)
		return nil
	}

	if r.policy == PolicyStrict || !errors.Is(inv.err, indicator.ErrUnusableResponse) {
		return r.abort(inv)
	}

	slog.Info("Removing indicator from results", "test", inv.spec.Name, "resource", inv.resource)
	results.Drop(inv.resource, inv.spec, inv.err.Error())
	return nil
}

func (r *TestRunner) abort(inv invocation) error {
	if errors.Is(inv.err, context.Canceled) || errors.Is(inv.err, context.DeadlineExceeded) {
		return inv.err
	}
	return fmt.Errorf("test %q against %s: %w", inv.spec.Name, inv.resource, inv.err)
}
