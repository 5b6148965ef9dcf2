package doctor

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockCheck is a test implementation of the Check interface.
type mockCheck struct {
	name     string
	category string
	result   *CheckResult
	ran      int
}

func (m *mockCheck) Name() string     { return m.name }
func (m *mockCheck) Category() string { return m.category }
func (m *mockCheck) Run(context.Context) *CheckResult {
	m.ran++
	return m.result
}

func newMock(name string, status Severity) *mockCheck {
	return &mockCheck{
		name:     name,
		category: "test",
		result:   &CheckResult{Name: name, Category: "test", Status: status},
	}
}

func TestRunner_Summary(t *testing.T) {
	tests := []struct {
		name         string
		statuses     []Severity
		want         Summary
		wantErrors   bool
		wantWarnings bool
	}{
		{name: "no checks"},
		{
			name:     "all pass",
			statuses: []Severity{SeverityPass, SeverityPass},
			want:     Summary{Passed: 2},
		},
		{
			name:         "mixed",
			statuses:     []Severity{SeverityPass, SeverityInfo, SeverityWarning, SeverityError, SeverityError},
			want:         Summary{Passed: 1, Info: 1, Warnings: 1, Errors: 2},
			wantErrors:   true,
			wantWarnings: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRunner()
			for i, s := range tt.statuses {
				r.AddCheck(newMock(string(rune('a'+i)), s))
			}

			report := r.Run(t.Context())
			assert.Equal(t, tt.want, report.Summary)
			assert.Len(t, report.Results, len(tt.statuses))
			assert.Equal(t, tt.wantErrors, report.HasErrors())
			assert.Equal(t, tt.wantWarnings, report.HasWarnings())
			assert.False(t, report.Timestamp.IsZero())
		})
	}
}

func TestRunner_StopsWhenCancelled(t *testing.T) {
	first, second := newMock("first", SeverityPass), newMock("second", SeverityPass)
	r := NewRunner()
	r.AddCheck(first)
	r.AddCheck(second)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	report := r.Run(ctx)
	assert.Empty(t, report.Results)
	assert.Zero(t, first.ran)
}

func TestSeverity_JSON(t *testing.T) {
	data, err := json.Marshal(&CheckResult{Name: "x", Status: SeverityWarning})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"status":"warning"`)

	assert.Equal(t, "unknown", Severity(42).String())
}

func TestSeverity_RoundTrip(t *testing.T) {
	for _, s := range []Severity{SeverityPass, SeverityInfo, SeverityWarning, SeverityError} {
		text, err := s.MarshalText()
		require.NoError(t, err)

		var got Severity
		require.NoError(t, got.UnmarshalText(text))
		assert.Equal(t, s, got)
	}

	var s Severity
	assert.Error(t, s.UnmarshalText([]byte("fatal")))
}

type panicCheck struct{}

func (panicCheck) Name() string                     { return "boom" }
func (panicCheck) Category() string                 { return "test" }
func (panicCheck) Run(context.Context) *CheckResult { panic("nil map") }

type nilCheck struct{}

func (nilCheck) Name() string                     { return "empty" }
func (nilCheck) Category() string                 { return "test" }
func (nilCheck) Run(context.Context) *CheckResult { return nil }

// slowCheck passes only if its context is never cancelled.
type slowCheck struct{}

func (slowCheck) Name() string     { return "slow" }
func (slowCheck) Category() string { return "test" }
func (slowCheck) Run(ctx context.Context) *CheckResult {
	<-ctx.Done()
	return &CheckResult{Name: "slow", Category: "test", Status: SeverityPass, Message: "done"}
}

func TestRunner_Misbehaving(t *testing.T) {
	r := NewRunner(WithCheckTimeout(10 * time.Millisecond))
	r.AddCheck(panicCheck{})
	r.AddCheck(nilCheck{})
	r.AddCheck(slowCheck{})
	r.AddCheck(newMock("after", SeverityPass))

	report := r.Run(t.Context())
	require.Len(t, report.Results, 4)

	assert.Equal(t, SeverityError, report.Results[0].Status)
	assert.Contains(t, report.Results[0].Message, "nil map")
	assert.Equal(t, SeverityError, report.Results[1].Status)
	assert.Equal(t, SeverityWarning, report.Results[2].Status)
	assert.Contains(t, report.Results[2].Message, "timed out")
	assert.Equal(t, SeverityPass, report.Results[3].Status)
	assert.Equal(t, Summary{Passed: 1, Warnings: 1, Errors: 2}, report.Summary)
}
