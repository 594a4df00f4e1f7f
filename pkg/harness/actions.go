// Package harness is the support layer of the browser UI test suite: it
// builds the headless browser configuration, carries the run parameters and
// logs failed test cases.
package harness

import (
	"fmt"
	"io"
	"os"
)

// Outcome is the result classification of a finished test case.
type Outcome string

const (
	OutcomePassed       Outcome = "Passed"
	OutcomeFailure      Outcome = "Failed"
	OutcomeError        Outcome = "Error"
	OutcomeSkipped      Outcome = "Skipped"
	OutcomeInconclusive Outcome = "Inconclusive"
)

// IsFailure reports whether the outcome is Failure or Error.
func (o Outcome) IsFailure() bool {
	return o == OutcomeFailure || o == OutcomeError
}

// TestResult describes a test case that just completed.
type TestResult struct {
	FullName   string
	Outcome    Outcome
	StackTrace string
}

// UserActions holds what every UI test needs: the run parameters and the
// progress stream failures are logged to.
type UserActions struct {
	Params   TestParameters
	progress io.Writer
}

// NewUserActions creates the harness. A nil progress writer means stdout.
func NewUserActions(params TestParameters, progress io.Writer) *UserActions {
	if progress == nil {
		progress = os.Stdout
	}
	return &UserActions{
		Params:   params,
		progress: progress,
	}
}

// BuildSessionConfig returns a fresh session configuration.
func (u *UserActions) BuildSessionConfig() SessionConfig {
	return BuildSessionConfig()
}

// AfterTestCase logs a failed or errored test: the full name with its
// outcome, then the stack trace when one is present. Other outcomes are
// silent. It never changes the test result.
func (u *UserActions) AfterTestCase(result TestResult) error {
	if !result.Outcome.IsFailure() {
		return nil
	}
	if err := u.Log(result.FullName + " : " + string(result.Outcome)); err != nil {
		return err
	}
	if result.StackTrace != "" {
		return u.Log(result.StackTrace)
	}
	return nil
}

// Log writes message as one line on the progress stream.
func (u *UserActions) Log(message string) error {
	if _, err := fmt.Fprintln(u.progress, message); err != nil {
		return fmt.Errorf("failed to write progress log: %w", err)
	}
	return nil
}
