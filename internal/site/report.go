package site

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// BuildOutcome is the typed enumeration of final build result states.
type BuildOutcome string

const (
	OutcomeSuccess BuildOutcome = "success"
	OutcomeWarning BuildOutcome = "warning"
	OutcomeFailed  BuildOutcome = "failed"
)

// IssueCode enumerates machine-parseable issue identifiers. Codes are a
// stable contract: only append, never reuse.
type IssueCode string

const (
	IssueMetadataError  IssueCode = "METADATA_ERROR"
	IssueDiscovery      IssueCode = "DISCOVERY_FAILURE"
	IssueDanglingLink   IssueCode = "DANGLING_LINK"
	IssueDuplicatePath  IssueCode = "DUPLICATE_PATH"
	IssueParseFailure   IssueCode = "PARSE_FAILURE"
	IssueRenderFailure  IssueCode = "RENDER_FAILURE"
	IssueWriteFailure   IssueCode = "WRITE_FAILURE"
	IssueSourceFetch    IssueCode = "SOURCE_FETCH_FAILURE"
	IssueHistoryFailure IssueCode = "HISTORY_FAILURE"
)

// IssueSeverity represents normalized severity levels.
type IssueSeverity string

const (
	SeverityError   IssueSeverity = "error"
	SeverityWarning IssueSeverity = "warning"
)

// Issue is one structured build report entry.
type Issue struct {
	Code     IssueCode     `json:"code"`
	Severity IssueSeverity `json:"severity"`
	// Page is the page path the issue belongs to, when page-scoped.
	Page    string `json:"page,omitempty"`
	Message string `json:"message"`
}

// Report captures the full result of one build pass. Per-page failures are
// isolated here rather than aborting the batch; only identity-breaking
// errors (duplicate paths) fail the build as a whole.
type Report struct {
	BuildID string    `json:"build_id"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`

	PagesDiscovered int `json:"pages_discovered"`
	PagesParsed     int `json:"pages_parsed"`
	PagesRendered   int `json:"pages_rendered"`
	PagesSkipped    int `json:"pages_skipped"`
	AssetsCopied    int `json:"assets_copied"`

	Issues         []Issue                  `json:"issues"`
	StageDurations map[string]time.Duration `json:"stage_durations"`

	Outcome BuildOutcome `json:"outcome"`
}

// NewReport starts a report for a build.
func NewReport(buildID string) *Report {
	return &Report{
		BuildID:        buildID,
		Start:          time.Now(),
		Issues:         []Issue{},
		StageDurations: map[string]time.Duration{},
	}
}

// AddIssue appends a structured issue.
func (r *Report) AddIssue(code IssueCode, severity IssueSeverity, page, message string) {
	r.Issues = append(r.Issues, Issue{Code: code, Severity: severity, Page: page, Message: message})
}

// RecordStage stores the duration of a named pipeline stage.
func (r *Report) RecordStage(stage string, d time.Duration) {
	r.StageDurations[stage] = d
}

// Finalize stamps the end time and derives the overall outcome: any error
// issue fails the build, any warning degrades it, otherwise success.
func (r *Report) Finalize() {
	r.End = time.Now()
	r.Outcome = OutcomeSuccess
	for _, issue := range r.Issues {
		switch issue.Severity {
		case SeverityError:
			r.Outcome = OutcomeFailed
			return
		case SeverityWarning:
			r.Outcome = OutcomeWarning
		}
	}
}

// Errors returns the error-severity issues.
func (r *Report) Errors() []Issue { return r.filter(SeverityError) }

// Warnings returns the warning-severity issues.
func (r *Report) Warnings() []Issue { return r.filter(SeverityWarning) }

func (r *Report) filter(sev IssueSeverity) []Issue {
	var out []Issue
	for _, issue := range r.Issues {
		if issue.Severity == sev {
			out = append(out, issue)
		}
	}
	return out
}

// Duration is the total wall time of the build.
func (r *Report) Duration() time.Duration { return r.End.Sub(r.Start) }

// Persist writes the report as JSON under the output directory.
func (r *Report) Persist(outputDir string) error {
	dir := filepath.Join(outputDir, ".docsmith")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	// #nosec G306 -- build reports are not secrets.
	return os.WriteFile(filepath.Join(dir, "report.json"), data, 0o644)
}
