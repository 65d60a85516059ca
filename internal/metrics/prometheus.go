package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder backed by a Prometheus registry.
type PrometheusRecorder struct {
	registry       *prom.Registry
	stageDuration  *prom.HistogramVec
	buildDuration  prom.Histogram
	buildOutcome   *prom.CounterVec
	pagesRendered  prom.Counter
	pagesSkipped   prom.Counter
	danglingLinks  prom.Counter
	metadataErrors prom.Counter
}

// NewPrometheusRecorder constructs and registers the Docsmith metric set.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		registry: reg,
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "docsmith",
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual build stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "docsmith",
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.DefBuckets,
		}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docsmith",
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"}),
		pagesRendered: prom.NewCounter(prom.CounterOpts{
			Namespace: "docsmith",
			Name:      "pages_rendered_total",
			Help:      "Pages rendered across all builds",
		}),
		pagesSkipped: prom.NewCounter(prom.CounterOpts{
			Namespace: "docsmith",
			Name:      "pages_skipped_total",
			Help:      "Pages skipped by fingerprint match",
		}),
		danglingLinks: prom.NewCounter(prom.CounterOpts{
			Namespace: "docsmith",
			Name:      "dangling_links_total",
			Help:      "Internal links that resolved to no page",
		}),
		metadataErrors: prom.NewCounter(prom.CounterOpts{
			Namespace: "docsmith",
			Name:      "metadata_errors_total",
			Help:      "Pages excluded for malformed front matter",
		}),
	}
	reg.MustRegister(pr.stageDuration, pr.buildDuration, pr.buildOutcome,
		pr.pagesRendered, pr.pagesSkipped, pr.danglingLinks, pr.metadataErrors)
	return pr
}

// Handler exposes the registry for a /metrics endpoint.
func (pr *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(pr.registry, promhttp.HandlerOpts{})
}

func (pr *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	pr.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (pr *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	pr.buildDuration.Observe(d.Seconds())
}

func (pr *PrometheusRecorder) IncBuildOutcome(outcome string) {
	pr.buildOutcome.WithLabelValues(outcome).Inc()
}

func (pr *PrometheusRecorder) AddPagesRendered(n int)  { pr.pagesRendered.Add(float64(n)) }
func (pr *PrometheusRecorder) AddPagesSkipped(n int)   { pr.pagesSkipped.Add(float64(n)) }
func (pr *PrometheusRecorder) AddDanglingLinks(n int)  { pr.danglingLinks.Add(float64(n)) }
func (pr *PrometheusRecorder) AddMetadataErrors(n int) { pr.metadataErrors.Add(float64(n)) }
