package systems

import (
	"errors"
	"fmt"
)

// ErrInvariantViolation reports a broken partition: counts that do not sum
// to the population, a cursor that left its cell range, or a cell range that
// holds a foreign agent.
var ErrInvariantViolation = errors.New("invariant violation")

// Stage names a phase of the tick pipeline.
type Stage string

const (
	StageBucketCount Stage = "bucket_count"
	StagePrefixSum   Stage = "prefix_sum"
	StageReindex     Stage = "reindex"
	StageInteract    Stage = "interact"
)

// Severity says how the orchestrator should treat a stage failure.
type Severity int

const (
	// SeverityFatal aborts the tick. The device store is left as it was
	// before the failing stage.
	SeverityFatal Severity = iota
	// SeverityDegraded means the tick completed without committing its
	// result. The agent store keeps its pre-tick state.
	SeverityDegraded
)

func (s Severity) String() string {
	switch s {
	case SeverityFatal:
		return "fatal"
	case SeverityDegraded:
		return "degraded"
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// StageError wraps a failure with the stage it happened in.
type StageError struct {
	Stage    Stage
	Severity Severity
	Err      error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s (%s): %v", e.Stage, e.Severity, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func fatal(stage Stage, err error) error {
	return &StageError{Stage: stage, Severity: SeverityFatal, Err: err}
}

func degraded(stage Stage, err error) error {
	return &StageError{Stage: stage, Severity: SeverityDegraded, Err: err}
}

// IsDegraded reports whether err is a stage failure that left the tick
// degraded rather than aborted.
func IsDegraded(err error) bool {
	var se *StageError
	return errors.As(err, &se) && se.Severity == SeverityDegraded
}
