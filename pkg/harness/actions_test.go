package harness

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAfterTestCase(t *testing.T) {
	tests := []struct {
		name      string
		result    TestResult
		wantLines []string
	}{
		{
			name:   "passed writes nothing",
			result: TestResult{FullName: "Dokimion.Login.ValidUser", Outcome: OutcomePassed},
		},
		{
			name:   "skipped writes nothing",
			result: TestResult{FullName: "Dokimion.Login.Skip", Outcome: OutcomeSkipped, StackTrace: "ignored"},
		},
		{
			name:   "inconclusive writes nothing",
			result: TestResult{FullName: "Dokimion.Login.Maybe", Outcome: OutcomeInconclusive},
		},
		{
			name: "failure with stack trace writes two lines",
			result: TestResult{
				FullName:   "Dokimion.Attributes.CreateDuplicate",
				Outcome:    OutcomeFailure,
				StackTrace: "at AttributeTests.cs:42",
			},
			wantLines: []string{
				"Dokimion.Attributes.CreateDuplicate : Failed",
				"at AttributeTests.cs:42",
			},
		},
		{
			name:      "failure without stack trace writes one line",
			result:    TestResult{FullName: "Dokimion.Attributes.Remove", Outcome: OutcomeFailure},
			wantLines: []string{"Dokimion.Attributes.Remove : Failed"},
		},
		{
			name: "error is logged like a failure",
			result: TestResult{
				FullName:   "Dokimion.Login.InvalidUser",
				Outcome:    OutcomeError,
				StackTrace: "NullReferenceException",
			},
			wantLines: []string{
				"Dokimion.Login.InvalidUser : Error",
				"NullReferenceException",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			actions := NewUserActions(TestParameters{}, &buf)

			require.NoError(t, actions.AfterTestCase(tt.result))

			if len(tt.wantLines) == 0 {
				assert.Empty(t, buf.String())
				return
			}
			lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
			assert.Equal(t, tt.wantLines, lines)
		})
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("stream closed") }

func TestLog(t *testing.T) {
	var buf bytes.Buffer
	actions := NewUserActions(TestParameters{}, &buf)

	require.NoError(t, actions.Log("plain message"))
	assert.Equal(t, "plain message\n", buf.String())

	broken := NewUserActions(TestParameters{}, failingWriter{})
	err := broken.Log("x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stream closed")

	err = broken.AfterTestCase(TestResult{FullName: "T", Outcome: OutcomeError})
	assert.Error(t, err, "logging failures propagate to the caller")
}

func TestOutcome_IsFailure(t *testing.T) {
	assert.True(t, OutcomeFailure.IsFailure())
	assert.True(t, OutcomeError.IsFailure())
	assert.False(t, OutcomePassed.IsFailure())
	assert.False(t, OutcomeSkipped.IsFailure())
	assert.False(t, Outcome("").IsFailure())
}
