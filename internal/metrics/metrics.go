package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "aihuman"

// Recorder exposes game counters to Prometheus. A nil Recorder records nothing.
type Recorder struct {
	registry    *prometheus.Registry
	rounds      *prometheus.CounterVec
	submissions *prometheus.CounterVec
	commands    *prometheus.CounterVec
	waits       prometheus.Gauge
}

func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		rounds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_total",
			Help:      "Rounds by terminal outcome.",
		}, []string{"outcome"}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Stored round items by source.",
		}, []string{"source"}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Handled commands by name and result.",
		}, []string{"command", "result"}),
		waits: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pending_waits",
			Help:      "Commands currently suspended waiting for a reply.",
		}),
	}
	reg.MustRegister(r.rounds, r.submissions, r.commands, r.waits)
	return r
}

// RecordRound counts a finished round.
func (r *Recorder) RecordRound(outcome string) {
	if r == nil {
		return
	}
	r.rounds.WithLabelValues(outcome).Inc()
}

// RecordSubmission counts a stored item; source is "player", "admin", "generated" or "seed".
func (r *Recorder) RecordSubmission(source string) {
	if r == nil {
		return
	}
	r.submissions.WithLabelValues(source).Inc()
}

// RecordCommand counts a handled command; result is "ok", "rejected" or "error".
func (r *Recorder) RecordCommand(command, result string) {
	if r == nil {
		return
	}
	r.commands.WithLabelValues(command, result).Inc()
}

// WaitStarted and WaitFinished track suspended commands.
func (r *Recorder) WaitStarted() {
	if r == nil {
		return
	}
	r.waits.Inc()
}

func (r *Recorder) WaitFinished() {
	if r == nil {
		return
	}
	r.waits.Dec()
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
