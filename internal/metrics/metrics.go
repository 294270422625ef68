// Package metrics records site build activity. Components take a Recorder;
// NoopRecorder is used when nothing scrapes the numbers.
package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Build outcomes.
const (
	OutcomeSuccess  = "success"
	OutcomeFailed   = "failed"
	OutcomeCanceled = "canceled"
)

// Recorder receives build observations.
type Recorder interface {
	ObserveBuild(outcome string, d time.Duration)
	AddPagesWritten(n int)
	SetPublishedPosts(n int)
}

// NoopRecorder discards everything.
type NoopRecorder struct{}

func (NoopRecorder) ObserveBuild(string, time.Duration) {}
func (NoopRecorder) AddPagesWritten(int)                {}
func (NoopRecorder) SetPublishedPosts(int)              {}

// PrometheusRecorder implements Recorder with Prometheus collectors.
type PrometheusRecorder struct {
	builds         *prom.CounterVec
	buildDuration  prom.Histogram
	pagesWritten   prom.Counter
	publishedPosts prom.Gauge
}

// NewPrometheusRecorder creates the collectors and registers them on reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		builds: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "folio",
			Name:      "builds_total",
			Help:      "Site builds by outcome",
		}, []string{"outcome"}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "folio",
			Name:      "build_duration_seconds",
			Help:      "Wall time of a full site build",
			Buckets:   prom.DefBuckets,
		}),
		pagesWritten: prom.NewCounter(prom.CounterOpts{
			Namespace: "folio",
			Name:      "pages_written_total",
			Help:      "HTML and JSON files written by site builds",
		}),
		publishedPosts: prom.NewGauge(prom.GaugeOpts{
			Namespace: "folio",
			Name:      "published_posts",
			Help:      "Published posts seen by the last successful build",
		}),
	}
	reg.MustRegister(pr.builds, pr.buildDuration, pr.pagesWritten, pr.publishedPosts)
	return pr
}

func (p *PrometheusRecorder) ObserveBuild(outcome string, d time.Duration) {
	p.builds.WithLabelValues(outcome).Inc()
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) AddPagesWritten(n int) {
	p.pagesWritten.Add(float64(n))
}

func (p *PrometheusRecorder) SetPublishedPosts(n int) {
	p.publishedPosts.Set(float64(n))
}

// Handler serves the metrics gathered by reg.
func Handler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
