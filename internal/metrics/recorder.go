package metrics

import "time"

// Recorder defines observability hooks for build and stage metrics.
// Implementations may forward to Prometheus or elsewhere; NoopRecorder is the
// default when metrics are not wired up.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveBuildDuration(d time.Duration)
	IncBuildOutcome(outcome string) // outcome: success|warning|failed
	AddPagesRendered(n int)
	AddPagesSkipped(n int)
	AddDanglingLinks(n int)
	AddMetadataErrors(n int)
}

// NoopRecorder is a Recorder that does nothing.
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)         {}
func (NoopRecorder) IncBuildOutcome(string)                     {}
func (NoopRecorder) AddPagesRendered(int)                       {}
func (NoopRecorder) AddPagesSkipped(int)                        {}
func (NoopRecorder) AddDanglingLinks(int)                       {}
func (NoopRecorder) AddMetadataErrors(int)                      {}
