// Package metrics counts trials and reaction times per run. The registry is
// private to the recorder and dumped in the Prometheus text format at the
// end of a run.
package metrics

import (
	"time"

	"github.com/GermanButtiero/reaction-time/internal/experiment"
	"github.com/m-mizutani/goerr/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "reactlab"

var defaultBuckets = []float64{0.1, 0.15, 0.2, 0.25, 0.3, 0.4, 0.5, 0.75, 1, 1.5, 2, 3, 5}

// Recorder implements experiment.Observer.
type Recorder struct {
	registry *prometheus.Registry
	variant  string

	trialsStarted prometheus.Counter
	onsets        prometheus.Counter
	premature     prometheus.Counter
	responses     *prometheus.CounterVec
	reactionTime  *prometheus.HistogramVec
	sessions      *prometheus.CounterVec
}

func NewRecorder(variant experiment.VariantID) *Recorder {
	reg := prometheus.NewRegistry()
	auto := promauto.With(reg)
	labels := prometheus.Labels{"variant": string(variant)}

	return &Recorder{
		registry: reg,
		variant:  string(variant),
		trialsStarted: auto.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "trials_started_total",
			Help:        "Trials whose stimulus was generated.",
			ConstLabels: labels,
		}),
		onsets: auto.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "stimulus_onsets_total",
			Help:        "Stimuli presented on screen.",
			ConstLabels: labels,
		}),
		premature: auto.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "premature_responses_total",
			Help:        "Responses given before the stimulus.",
			ConstLabels: labels,
		}),
		responses: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "responses_total",
			Help:        "Recorded responses by correctness and trial type.",
			ConstLabels: labels,
		}, []string{"outcome", "trial_type"}),
		reactionTime: auto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "reaction_time_seconds",
			Help:        "Time from stimulus onset to response.",
			ConstLabels: labels,
			Buckets:     defaultBuckets,
		}, []string{"outcome"}),
		sessions: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "sessions_total",
			Help:        "Sessions by how they ended.",
			ConstLabels: labels,
		}, []string{"status"}),
	}
}

func (r *Recorder) TrialStarted(experiment.Trial) { r.trialsStarted.Inc() }

func (r *Recorder) StimulusOnset(experiment.Trial, time.Time) { r.onsets.Inc() }

func (r *Recorder) Premature(experiment.Trial, time.Time) { r.premature.Inc() }

func (r *Recorder) Response(_ experiment.Trial, res experiment.TrialResult) {
	outcome := "incorrect"
	if res.Correct {
		outcome = "correct"
	}
	trialType := string(res.Type)
	if trialType == "" {
		trialType = "none"
	}
	r.responses.WithLabelValues(outcome, trialType).Inc()
	r.reactionTime.WithLabelValues(outcome).Observe(res.Seconds())
}

// SessionEnded records the final status: completed, aborted, skipped or
// practice.
func (r *Recorder) SessionEnded(status string) {
	r.sessions.WithLabelValues(status).Inc()
}

func (r *Recorder) Gatherer() prometheus.Gatherer { return r.registry }

func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return goerr.Wrap(err, "write metrics", goerr.V("path", path))
	}
	return nil
}

// Status classifies a finished run for SessionEnded.
func Status(o *experiment.Outcome) string {
	switch {
	case o.Skipped || o.Session == nil:
		return "skipped"
	case o.Session.Practice:
		return "practice"
	case o.Session.Aborted:
		return "aborted"
	}
	return "completed"
}
