package site

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReport_FinalizeOutcomes(t *testing.T) {
	tests := []struct {
		name     string
		populate func(r *Report)
		want     BuildOutcome
	}{
		{"clean build", func(r *Report) {}, OutcomeSuccess},
		{"warning only", func(r *Report) {
			r.AddIssue(IssueDanglingLink, SeverityWarning, "a", "dangling")
		}, OutcomeWarning},
		{"error wins over warning", func(r *Report) {
			r.AddIssue(IssueDanglingLink, SeverityWarning, "a", "dangling")
			r.AddIssue(IssueMetadataError, SeverityError, "b", "bad front matter")
		}, OutcomeFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReport("build-1")
			tt.populate(r)
			r.Finalize()
			assert.Equal(t, tt.want, r.Outcome)
		})
	}
}

func TestReport_ErrorsAndWarningsSplit(t *testing.T) {
	r := NewReport("build-2")
	r.AddIssue(IssueMetadataError, SeverityError, "p1", "broken")
	r.AddIssue(IssueDanglingLink, SeverityWarning, "p2", "dangling")
	r.AddIssue(IssueDanglingLink, SeverityWarning, "p3", "dangling")

	require.Len(t, r.Errors(), 1)
	require.Len(t, r.Warnings(), 2)
	assert.Equal(t, "p1", r.Errors()[0].Page)
}

func TestReport_RecordStage(t *testing.T) {
	r := NewReport("build-3")
	r.RecordStage(StageParse, 120*time.Millisecond)
	r.RecordStage(StageRender, 80*time.Millisecond)

	assert.Equal(t, 120*time.Millisecond, r.StageDurations[StageParse])
	assert.Equal(t, 80*time.Millisecond, r.StageDurations[StageRender])
}

func TestReport_PersistRoundTrip(t *testing.T) {
	out := t.TempDir()
	r := NewReport("build-4")
	r.PagesRendered = 3
	r.AddIssue(IssueDanglingLink, SeverityWarning, "guide/setup", "internal link to unknown page")
	r.Finalize()
	require.NoError(t, r.Persist(out))

	data, err := os.ReadFile(filepath.Join(out, ".docsmith", "report.json"))
	require.NoError(t, err)

	var got Report
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "build-4", got.BuildID)
	assert.Equal(t, 3, got.PagesRendered)
	assert.Equal(t, OutcomeWarning, got.Outcome)
	require.Len(t, got.Issues, 1)
	assert.Equal(t, IssueDanglingLink, got.Issues[0].Code)
}
