package routeprobe

import "fmt"

// FailureReport captures everything needed to reproduce and diagnose
// one failing trial: the seed path that produced it, the minimized
// value, the request actually sent, the response received, and which
// Validator rejected it.
type FailureReport struct {
	Route       string
	Method      string
	SeedPath    []int64
	Value       any
	Request     *Request
	Response    *Response
	Reason      string
	ShrinkStats ShrinkResult
}

// String renders a human-readable failure message: route identity, the
// minimized input, and the validator's rejection reason.
func (f *FailureReport) String() string {
	status := -1
	if f.Response != nil {
		status = f.Response.Status
	}
	return fmt.Sprintf(
		"%s %s failed: %s\n  minimized input: %#v\n  response status: %d\n  seed path: %v",
		f.Method, f.Route, f.Reason, f.Value, status, f.SeedPath,
	)
}

// Counters tallies a run's outcome, exposed both in RunResult and
// mirrored into metrics.go's Prometheus counters.
type Counters struct {
	RoutesCovered int
	TrialsRun     int
	TrialsFailed  int
	TrialsSkipped int
}

// RunResult is the top-level outcome of Engine.Run: the aggregate
// counters plus every FailureReport collected across all routes.
type RunResult struct {
	Counters  Counters
	Failures  []*FailureReport
	StateRuns []*StateMachineResult
}

// Failed reports whether the run found at least one failing trial.
func (r *RunResult) Failed() bool {
	return len(r.Failures) > 0
}
