package experiment_test

import (
	"testing"
	"time"

	"github.com/GermanButtiero/reaction-time/internal/experiment"
	"github.com/m-mizutani/gt"
)

func newView(id experiment.VariantID) *experiment.View {
	return experiment.NewView(experiment.DefaultPalette(), experiment.DefaultLayout(id, 1500, 800), experiment.DefaultTheme())
}

func TestViewSimple(t *testing.T) {
	m := newMachine(experiment.VariantSimple, 2)
	v := newView(experiment.VariantSimple)
	s := &fakeSurface{}

	m.Start(t0)
	v.Draw(s, m)
	gt.A(t, s.texts()).Has("Press space to start")

	m.Step(t0, space(t0))
	s.reset()
	v.Draw(s, m)
	gt.Equal(t, s.texts(), []string{"Wait..."})

	deadline := m.Deadline()
	m.Step(deadline, nil)
	s.reset()
	v.Draw(s, m)
	gt.Equal(t, s.texts(), []string{"GO!"})

	at := deadline.Add(1234 * time.Millisecond)
	m.Step(at, []experiment.Event{experiment.KeyPress("A", at)})
	s.reset()
	v.Draw(s, m)
	gt.Equal(t, s.texts(), []string{"Reaction: 1.234 s", "Trial: 1"})
}

func TestViewPremature(t *testing.T) {
	m := newMachine(experiment.VariantSimple, 1)
	v := newView(experiment.VariantSimple)
	s := &fakeSurface{}

	m.Start(t0)
	m.Step(t0, space(t0))
	m.Step(t0.Add(time.Second), space(t0.Add(time.Second)))
	v.Draw(s, m)
	gt.Equal(t, s.texts(), []string{"Too Soon!"})
}

func TestViewStroop(t *testing.T) {
	m := newMachine(experiment.VariantStroop, 1)
	v := newView(experiment.VariantStroop)
	s := &fakeSurface{}

	m.Start(t0)
	v.Draw(s, m)
	trial, _ := m.Trial()

	gt.Equal(t, s.count("circle"), 1)
	gt.Equal(t, s.count("rect"), 4)
	for _, o := range trial.Options {
		gt.A(t, s.texts()).Has(string(o.Label))
	}
}

func TestViewStroopInk(t *testing.T) {
	m := newMachine(experiment.VariantStroopInk, 1)
	v := newView(experiment.VariantStroopInk)
	s := &fakeSurface{}

	m.Start(t0)
	v.Draw(s, m)
	gt.Equal(t, s.count("circle"), 1)
	gt.Equal(t, s.texts(), []string{"Press the black circle to start new trial"})

	m.Step(t0, []experiment.Event{experiment.PointerClick(750, 250, t0)})
	s.reset()
	v.Draw(s, m)
	trial, _ := m.Trial()
	gt.Equal(t, s.count("circle"), 0)
	gt.Equal(t, s.count("rect"), 4)
	gt.Equal(t, s.texts()[0], string(trial.Target))
}
