package metrics_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/GermanButtiero/reaction-time/internal/experiment"
	"github.com/GermanButtiero/reaction-time/internal/metrics"
	"github.com/m-mizutani/gt"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorder(t *testing.T) {
	r := metrics.NewRecorder(experiment.VariantStroopInk)
	var obs experiment.Observer = r

	trial := experiment.Trial{Index: 1, Type: experiment.TrialCompatible}
	obs.TrialStarted(trial)
	obs.StimulusOnset(trial, time.Now())
	obs.Response(trial, experiment.TrialResult{Index: 1, ReactionTime: 420 * time.Millisecond, Correct: true, Type: experiment.TrialCompatible})
	obs.TrialStarted(trial)
	obs.Response(trial, experiment.TrialResult{Index: 2, ReactionTime: 900 * time.Millisecond, Type: experiment.TrialIncompatible})
	obs.Premature(trial, time.Now())
	r.SessionEnded("completed")

	n, err := testutil.GatherAndCount(r.Gatherer())
	gt.NoError(t, err)
	gt.N(t, n).Greater(0)

	expected := `
# HELP reactlab_responses_total Recorded responses by correctness and trial type.
# TYPE reactlab_responses_total counter
reactlab_responses_total{outcome="correct",trial_type="compatible",variant="stroop-ink"} 1
reactlab_responses_total{outcome="incorrect",trial_type="incompatible",variant="stroop-ink"} 1
# HELP reactlab_trials_started_total Trials whose stimulus was generated.
# TYPE reactlab_trials_started_total counter
reactlab_trials_started_total{variant="stroop-ink"} 2
# HELP reactlab_premature_responses_total Responses given before the stimulus.
# TYPE reactlab_premature_responses_total counter
reactlab_premature_responses_total{variant="stroop-ink"} 1
`
	gt.NoError(t, testutil.GatherAndCompare(r.Gatherer(), strings.NewReader(expected),
		"reactlab_responses_total", "reactlab_trials_started_total", "reactlab_premature_responses_total"))

	path := filepath.Join(t.TempDir(), "reactlab.prom")
	gt.NoError(t, r.WriteTextfile(path))
	data, err := os.ReadFile(path)
	gt.NoError(t, err)
	gt.True(t, strings.Contains(string(data), `reactlab_sessions_total{status="completed",variant="stroop-ink"} 1`))
	gt.True(t, strings.Contains(string(data), "reactlab_reaction_time_seconds_bucket"))
}

func TestStatus(t *testing.T) {
	s := experiment.NewSession(experiment.Participant{ID: "1", TrialNumber: 1}, experiment.VariantSimple, false, time.Now())
	gt.Equal(t, metrics.Status(&experiment.Outcome{Skipped: true}), "skipped")
	gt.Equal(t, metrics.Status(&experiment.Outcome{Session: s}), "completed")
	s.Aborted = true
	gt.Equal(t, metrics.Status(&experiment.Outcome{Session: s}), "aborted")
	s.Practice = true
	gt.Equal(t, metrics.Status(&experiment.Outcome{Session: s}), "practice")
}
