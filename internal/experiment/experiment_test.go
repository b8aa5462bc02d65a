package experiment_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/GermanButtiero/reaction-time/internal/experiment"
	"github.com/m-mizutani/gt"
)

func newExperiment(t *testing.T, id experiment.VariantID, practice bool, trials int, store experiment.SessionStore, clock *fakeClock) *experiment.Experiment {
	t.Helper()
	v := variant(id)
	e, err := experiment.New(experiment.Settings{
		Variant: v,
		Participant: experiment.Participant{
			ID: "3", TrialNumber: 1, Gender: "F", Age: 31, Group: "control",
		},
		Practice: practice,
		Trials:   trials,
		Palette:  experiment.DefaultPalette(),
		Layout:   experiment.DefaultLayout(id, 1500, 800),
		Theme:    experiment.DefaultTheme(),
	}, store, experiment.WithRand(seeded(99)), experiment.WithNow(clock.Now))
	gt.NoError(t, err)
	return e
}

func TestExecuteSkipsRecordedSession(t *testing.T) {
	clock := &fakeClock{now: t0}
	store := &memStore{existing: map[string]bool{key("3", 1): true}}
	p := &participant{clock: clock, frame: 10 * time.Millisecond, latency: 100 * time.Millisecond}
	surface := &fakeSurface{}
	e := newExperiment(t, experiment.VariantStroop, false, 0, store, clock)

	out, err := e.Execute(context.Background(), experiment.Frontend{Surface: surface, Input: p, Observers: []experiment.Observer{p}})
	gt.NoError(t, err)
	gt.True(t, out.Skipped)
	gt.False(t, out.Persisted)
	gt.Equal(t, p.polls, 0)
	gt.Equal(t, p.started, 0)
	gt.Equal(t, surface.presents, 0)
	gt.Equal(t, len(store.appended), 0)
}

func TestExecutePersistsSession(t *testing.T) {
	clock := &fakeClock{now: t0}
	store := &memStore{}
	p := &participant{clock: clock, frame: 10 * time.Millisecond, latency: 200 * time.Millisecond}
	e := newExperiment(t, experiment.VariantStroopInk, false, 4, store, clock)
	gt.Equal(t, e.TotalTrials(), 4)

	out, err := e.Execute(context.Background(), experiment.Frontend{Surface: &fakeSurface{}, Input: p, Observers: []experiment.Observer{p}})
	gt.NoError(t, err)
	gt.True(t, out.Persisted)
	gt.Equal(t, len(store.appended), 1)

	s := store.appended[0]
	gt.Equal(t, s, out.Session)
	gt.Equal(t, s.Participant.ID, "3")
	gt.Equal(t, s.Variant, experiment.VariantStroopInk)
	gt.Equal(t, s.StartedAt, t0)
	gt.Equal(t, len(s.Results), 4)
	gt.False(t, s.Aborted)

	sum := s.Summary()
	gt.Equal(t, sum.Trials, 4)
	gt.Equal(t, sum.Correct, 4)
	gt.Equal(t, sum.MeanReaction, 200*time.Millisecond)
	gt.Equal(t, sum.Accuracy(), 1.0)
}

func TestExecutePractice(t *testing.T) {
	clock := &fakeClock{now: t0}
	store := &memStore{}
	p := &participant{clock: clock, frame: 10 * time.Millisecond, latency: 100 * time.Millisecond}
	e := newExperiment(t, experiment.VariantStroopInk, true, 0, store, clock)
	gt.Equal(t, e.TotalTrials(), 5)

	out, err := e.Execute(context.Background(), experiment.Frontend{Surface: &fakeSurface{}, Input: p, Observers: []experiment.Observer{p}})
	gt.NoError(t, err)
	gt.False(t, out.Persisted)
	gt.Equal(t, len(out.Session.Results), 5)
	gt.Equal(t, len(store.appended), 0)
}

func TestExecuteAbortedSessionIsSaved(t *testing.T) {
	clock := &fakeClock{now: t0}
	store := &memStore{}
	p := &participant{clock: clock, frame: 10 * time.Millisecond, latency: 50 * time.Millisecond, quitAt: 150}
	e := newExperiment(t, experiment.VariantStroop, false, 0, store, clock)

	out, err := e.Execute(context.Background(), experiment.Frontend{Surface: &fakeSurface{}, Input: p, Observers: []experiment.Observer{p}})
	gt.NoError(t, err)
	gt.True(t, out.Persisted)
	gt.True(t, out.Session.Aborted)
	gt.Equal(t, len(store.appended[0].Results), len(p.responses))
}

func TestExecuteAppendError(t *testing.T) {
	clock := &fakeClock{now: t0}
	errDisk := errors.New("disk full")
	store := &memStore{err: errDisk}
	p := &participant{clock: clock, frame: 10 * time.Millisecond, latency: 50 * time.Millisecond}
	e := newExperiment(t, experiment.VariantStroop, false, 1, store, clock)

	out, err := e.Execute(context.Background(), experiment.Frontend{Surface: &fakeSurface{}, Input: p, Observers: []experiment.Observer{p}})
	gt.True(t, errors.Is(err, errDisk))
	gt.False(t, out.Persisted)
}

func TestExecuteStoreNotReady(t *testing.T) {
	clock := &fakeClock{now: t0}
	errHeader := errors.New("results header does not match")
	store := &memStore{notReady: errHeader}
	p := &participant{clock: clock, frame: 10 * time.Millisecond, latency: 50 * time.Millisecond}
	surface := &fakeSurface{}
	e := newExperiment(t, experiment.VariantStroopInk, false, 0, store, clock)

	out, err := e.Execute(context.Background(), experiment.Frontend{Surface: surface, Input: p, Observers: []experiment.Observer{p}})
	gt.True(t, errors.Is(err, errHeader))
	gt.Nil(t, out)
	gt.Equal(t, p.started, 0)
	gt.Equal(t, p.polls, 0)
	gt.Equal(t, surface.presents, 0)
	gt.Equal(t, len(store.appended), 0)

	// Practice runs are not saved, so the store state does not matter.
	practice := newExperiment(t, experiment.VariantStroopInk, true, 1, store, clock)
	gt.NoError(t, practice.Ready(context.Background()))
}

func TestNewRejectsBadTrialCounts(t *testing.T) {
	v := variant(experiment.VariantStroop)
	settings := experiment.Settings{
		Variant: v,
		Palette: experiment.DefaultPalette(),
		Layout:  experiment.DefaultLayout(v.ID, 1500, 800),
		Trials:  v.Slots + 1,
	}
	_, err := experiment.New(settings, &memStore{})
	gt.Error(t, err)

	// Practice runs are never stored, so the slot limit does not apply.
	settings.Practice = true
	_, err = experiment.New(settings, &memStore{})
	gt.NoError(t, err)
}

func TestLookupVariant(t *testing.T) {
	v, err := experiment.LookupVariant(experiment.VariantSimple)
	gt.NoError(t, err)
	gt.True(t, v.HasCountdown())
	gt.Equal(t, v.TotalTrials(true), 5)

	_, err = experiment.LookupVariant("flanker")
	gt.True(t, errors.Is(err, experiment.ErrUnknownVariant))
}
