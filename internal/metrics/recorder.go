// Package metrics records agent, tool and calendar activity in a private
// Prometheus registry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "planpal"

// Recorder owns every PlanPal collector. A nil *Recorder records nothing.
type Recorder struct {
	registry      *prometheus.Registry
	turns         *prometheus.CounterVec
	iterations    prometheus.Histogram
	toolCalls     *prometheus.CounterVec
	toolDuration  *prometheus.HistogramVec
	calendarCalls *prometheus.CounterVec
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "agent",
			Name:      "turns_total",
			Help:      "Conversation turns by outcome.",
		}, []string{"outcome"}),
		iterations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "agent",
			Name:      "iterations",
			Help:      "Model round-trips per turn.",
			Buckets:   prometheus.LinearBuckets(1, 1, 10),
		}),
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tool",
			Name:      "invocations_total",
			Help:      "Tool invocations by tool and status.",
		}, []string{"tool", "status"}),
		toolDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "tool",
			Name:      "duration_seconds",
			Help:      "Tool execution time.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"tool"}),
		calendarCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "calendar",
			Name:      "operations_total",
			Help:      "Calendar gateway calls by operation and status.",
		}, []string{"operation", "status"}),
	}

	r.registry.MustRegister(
		r.turns,
		r.iterations,
		r.toolCalls,
		r.toolDuration,
		r.calendarCalls,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

func (r *Recorder) ObserveTurn(outcome string, iterations int) {
	if r == nil {
		return
	}
	r.turns.WithLabelValues(outcome).Inc()
	r.iterations.Observe(float64(iterations))
}

func (r *Recorder) ObserveTool(tool string, status string, duration time.Duration) {
	if r == nil {
		return
	}
	r.toolCalls.WithLabelValues(tool, status).Inc()
	r.toolDuration.WithLabelValues(tool).Observe(duration.Seconds())
}

func (r *Recorder) ObserveCalendarOperation(operation string, err error) {
	if r == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.calendarCalls.WithLabelValues(operation, status).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
