package scenarios

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/oots-bridge/evidence-contract-tests/framework"
	"github.com/oots-bridge/evidence-contract-tests/logstore"
	"github.com/oots-bridge/evidence-contract-tests/simulator"
)

// RunnerConfig wires the runner to its collaborators and carries the
// run-level timing defaults.
type RunnerConfig struct {
	Gateway          *GatewayClient
	Simulator        *simulator.ControlClient
	Store            logstore.Source
	SimulatorBaseURL string
	// ReturnURL is the bridge endpoint the simulator calls back to.
	ReturnURL string

	DefaultWaitBudget  time.Duration
	DefaultStepTimeout time.Duration
	PollInterval       time.Duration
	QuerySize          int

	ScenarioLogger framework.ScenarioLogger
}

// Runner executes catalog paths strictly sequentially. Serial execution is
// what makes the simulator's process-wide behavior default safe to use.
type Runner struct {
	cfg RunnerConfig
}

func NewRunner(cfg RunnerConfig) *Runner {
	if cfg.ScenarioLogger == nil {
		cfg.ScenarioLogger = framework.NullScenarioLogger()
	}
	if cfg.QuerySize == 0 {
		cfg.QuerySize = 50
	}
	return &Runner{cfg: cfg}
}

// RunAll executes every path the filter admits and aggregates the results.
// A failing path never stops the run; the aggregate decides the exit code.
func (r *Runner) RunAll(ctx context.Context, paths []Path, filter framework.Filter) framework.Results {
	var results framework.Results
	for _, path := range paths {
		r.cfg.ScenarioLogger.PathStarted(path.ID, path.Name)
		if filter != nil && !filter(path.ID, path.Name) {
			r.cfg.ScenarioLogger.PathSkipped(path.ID, path.Name, "excluded by filter parameters")
			results.Add(framework.PathResult{PathID: path.ID, Name: path.Name, Skipped: true})
			continue
		}
		debugLogger := &framework.CapturingLogger{}
		result := r.RunPath(ctx, path, debugLogger)
		for _, e := range result.Errors {
			r.cfg.ScenarioLogger.PathError(path.ID, e)
		}
		r.cfg.ScenarioLogger.PathFinished(result, debugLogger.Output())
		results.Add(result)
	}
	return results
}

// RunPath drives one path through its states: arm the simulator, run the
// trigger under the step deadline, wait for the log trail, validate it.
// Panics inside the trigger are converted to a single error; nothing here
// aborts the remaining paths.
func (r *Runner) RunPath(ctx context.Context, path Path, debugLogger framework.Logger) (result framework.PathResult) {
	if debugLogger == nil {
		debugLogger = framework.NullLogger()
	}
	start := time.Now()
	result = framework.PathResult{PathID: path.ID, Name: path.Name}
	defer func() {
		if rec := recover(); rec != nil {
			result.Errors = append(result.Errors,
				fmt.Sprintf("unexpected panic in path execution: %+v\n%s", rec, string(debug.Stack())))
		}
		result.Passed = len(result.Errors) == 0
		result.Duration = time.Since(start)
	}()

	// ARMED
	ids := newCorrelationIDs()
	behavior := path.Behavior
	if behavior == "" {
		behavior = simulator.BehaviorSuccess
	}
	debugLogger.Printf("conversation id %s, session id %s, behavior %s", ids.ConversationID, ids.SessionID, behavior)
	if err := r.cfg.Simulator.SetBehavior(ctx, behavior, path.BehaviorDelay, ""); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("arming simulator failed: %s", err))
		return
	}

	t := &T{
		ids:       ids,
		gateway:   r.cfg.Gateway,
		sim:       r.cfg.Simulator,
		returnURL: r.cfg.ReturnURL,
		simBase:   r.cfg.SimulatorBaseURL,
		logger:    debugLogger,
	}

	// TRIGGERED
	stepTimeout := path.StepTimeout
	if stepTimeout == 0 {
		stepTimeout = r.cfg.DefaultStepTimeout
	}
	triggeredAt := time.Now().UTC()
	debugLogger.Printf("triggering at %s (step timeout %s)", triggeredAt.Format(time.RFC3339), stepTimeout)
	stepCtx, cancel := context.WithTimeout(ctx, stepTimeout)
	err := path.Trigger(stepCtx, t)
	cancel()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("trigger failed: %s", err))
		return
	}

	// WAITING + QUERIED
	waitBudget := path.WaitBudget
	if waitBudget == 0 {
		waitBudget = r.cfg.DefaultWaitBudget
	}
	records := logstore.WaitForLogs(ctx, r.cfg.Store, ids.ConversationID, logstore.RetryPolicy{
		Interval:   r.cfg.PollInterval,
		MaxElapsed: waitBudget,
		QuerySize:  r.cfg.QuerySize,
	}, debugLogger)
	if len(records) == 0 {
		debugLogger.Printf("correlation query empty, falling back to per-action queries since %s", triggeredAt.Format(time.RFC3339))
		records = r.queryByActions(ctx, path, triggeredAt, debugLogger)
	}
	for _, rec := range records {
		result.LogsFound = append(result.LogsFound, rec.EventAction())
	}

	// VALIDATED
	result.Errors = append(result.Errors, validateTrail(path, records)...)
	return
}

// queryByActions is the fallback retrieval path: one query per expected
// event action, scoped to the trigger timestamp, merged and deduplicated.
func (r *Runner) queryByActions(ctx context.Context, path Path, since time.Time, logger framework.Logger) []logstore.LogRecord {
	seen := make(map[string]bool)
	var merged []logstore.LogRecord
	for _, expected := range path.ExpectedLogs {
		found, err := r.cfg.Store.QueryByEventAction(ctx, expected.EventAction, since, r.cfg.QuerySize)
		if err != nil {
			logger.Printf("fallback query for %q failed: %s", expected.EventAction, err)
			continue
		}
		for _, rec := range found {
			if rec.ID != "" && seen[rec.ID] {
				continue
			}
			seen[rec.ID] = true
			merged = append(merged, rec)
		}
	}
	return merged
}

// validateTrail checks every expected entry against the retrieved record
// set and returns one message per violation. Matching is set membership:
// the first record whose action (and logger/outcome, when constrained)
// matches is the one validated.
func validateTrail(path Path, records []logstore.LogRecord) []string {
	var violations []string
	var matchedTimes []time.Time

	for _, expected := range path.ExpectedLogs {
		record, found := matchRecord(records, expected)
		if !found {
			if !expected.Optional {
				violations = append(violations, missingLogMessage(expected))
			}
			continue
		}
		matchedTimes = append(matchedTimes, record.Timestamp)

		for _, field := range expected.RequiredFields {
			if _, ok := record.GetNestedValue(field); !ok {
				violations = append(violations,
					fmt.Sprintf("log %q: missing required field %q", expected.EventAction, field))
			}
		}
		for _, v := range logstore.ValidateFields(record, expected.FieldValues) {
			violations = append(violations, fmt.Sprintf("log %q: %s", expected.EventAction, v))
		}
	}

	if path.StrictOrder {
		violations = append(violations, checkOrder(matchedTimes)...)
	}
	return violations
}

func matchRecord(records []logstore.LogRecord, expected ExpectedLog) (logstore.LogRecord, bool) {
	for _, rec := range records {
		if rec.EventAction() != expected.EventAction {
			continue
		}
		if expected.Logger != LoggerAny && rec.LoggerName() != string(expected.Logger) {
			continue
		}
		if expected.Outcome != OutcomeAny && rec.EventOutcome() != string(expected.Outcome) {
			continue
		}
		return rec, true
	}
	return logstore.LogRecord{}, false
}

func missingLogMessage(expected ExpectedLog) string {
	msg := fmt.Sprintf("missing log: event.action=%q", expected.EventAction)
	if expected.Logger != LoggerAny {
		msg += fmt.Sprintf(" log.logger=%q", expected.Logger)
	}
	if expected.Outcome != OutcomeAny {
		msg += fmt.Sprintf(" event.outcome=%q", expected.Outcome)
	}
	return msg
}

// checkOrder verifies that matched records carry non-decreasing timestamps
// in expected-list order. Records without a parseable timestamp are left
// out of the comparison.
func checkOrder(matched []time.Time) []string {
	var violations []string
	var last time.Time
	for _, ts := range matched {
		if ts.IsZero() {
			continue
		}
		if !last.IsZero() && ts.Before(last) {
			violations = append(violations,
				fmt.Sprintf("log order violation: record at %s appeared before its predecessor at %s",
					ts.Format(time.RFC3339Nano), last.Format(time.RFC3339Nano)))
		}
		last = ts
	}
	return violations
}
