package experiment_test

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/GermanButtiero/reaction-time/internal/experiment"
)

var t0 = time.Date(2024, 10, 1, 9, 0, 0, 0, time.UTC)

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func variant(id experiment.VariantID) experiment.Variant {
	v, err := experiment.LookupVariant(id)
	if err != nil {
		panic(err)
	}
	return v
}

func newMachine(id experiment.VariantID, total int, obs ...experiment.Observer) *experiment.Machine {
	v := variant(id)
	rng := seeded(7)
	gen, err := experiment.NewGenerator(experiment.DefaultPalette(), v, experiment.DefaultLayout(id, 1500, 800), rng)
	if err != nil {
		panic(err)
	}
	return experiment.NewMachine(v, gen, rng, total, obs...)
}

func answerPoint(t experiment.Trial) experiment.Point {
	for _, o := range t.Options {
		if o.Label == t.Answer {
			return o.Region.Center()
		}
	}
	panic("no answer option")
}

func wrongPoint(t experiment.Trial) experiment.Point {
	for _, o := range t.Options {
		if o.Label != t.Answer {
			return o.Region.Center()
		}
	}
	panic("no wrong option")
}

type drawCall struct {
	kind string
	text string
}

type fakeSurface struct {
	calls    []drawCall
	presents int
	err      error
}

func (s *fakeSurface) Clear(experiment.RGBA) { s.calls = append(s.calls, drawCall{kind: "clear"}) }

func (s *fakeSurface) DrawText(text string, _ experiment.RGBA, _ experiment.Point, _ experiment.TextSize) {
	s.calls = append(s.calls, drawCall{kind: "text", text: text})
}

func (s *fakeSurface) DrawCircle(experiment.Circle, experiment.RGBA) {
	s.calls = append(s.calls, drawCall{kind: "circle"})
}

func (s *fakeSurface) DrawRect(experiment.Rect, experiment.RGBA, experiment.RGBA) {
	s.calls = append(s.calls, drawCall{kind: "rect"})
}

func (s *fakeSurface) Present() error {
	s.presents++
	return s.err
}

func (s *fakeSurface) texts() []string {
	var out []string
	for _, c := range s.calls {
		if c.kind == "text" {
			out = append(out, c.text)
		}
	}
	return out
}

func (s *fakeSurface) count(kind string) int {
	n := 0
	for _, c := range s.calls {
		if c.kind == kind {
			n++
		}
	}
	return n
}

func (s *fakeSurface) reset() { s.calls = nil }

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// participant plays a session: it starts trials, waits for the stimulus and
// answers after a fixed latency. It learns the trial through the observer
// callbacks.
type participant struct {
	clock   *fakeClock
	frame   time.Duration
	latency time.Duration
	wrong   bool
	quitAt  int

	trial   experiment.Trial
	active  bool
	onsetAt time.Time
	polls   int

	started   int
	onsets    int
	premature int
	responses []experiment.TrialResult
}

func (p *participant) TrialStarted(t experiment.Trial) {
	p.started++
	p.trial = t
	p.active = true
}

func (p *participant) StimulusOnset(_ experiment.Trial, at time.Time) {
	p.onsets++
	p.onsetAt = at
}

func (p *participant) Premature(experiment.Trial, time.Time) {
	p.premature++
	p.active = false
}

func (p *participant) Response(_ experiment.Trial, r experiment.TrialResult) {
	p.responses = append(p.responses, r)
	p.active = false
	p.onsetAt = time.Time{}
}

func (p *participant) Poll() []experiment.Event {
	p.polls++
	p.clock.Advance(p.frame)
	now := p.clock.Now()

	if p.quitAt > 0 && p.polls >= p.quitAt {
		return []experiment.Event{experiment.QuitEvent(now)}
	}
	if !p.active {
		return []experiment.Event{
			experiment.KeyPress(experiment.KeySpace, now),
			experiment.PointerClick(750, 250, now),
		}
	}
	if p.onsetAt.IsZero() || now.Sub(p.onsetAt) < p.latency {
		return nil
	}
	if len(p.trial.Options) == 0 {
		return []experiment.Event{experiment.KeyPress("A", now)}
	}
	pt := answerPoint(p.trial)
	if p.wrong {
		pt = wrongPoint(p.trial)
	}
	return []experiment.Event{experiment.PointerClick(pt.X, pt.Y, now)}
}

type memStore struct {
	existing map[string]bool
	appended []*experiment.Session
	err      error
	notReady error
	checks   int
}

func key(id string, n int) string { return fmt.Sprintf("%s#%d", id, n) }

func (s *memStore) Exists(_ context.Context, id string, n int) (bool, error) {
	s.checks++
	return s.existing[key(id, n)], nil
}

func (s *memStore) Preflight(context.Context) error { return s.notReady }

func (s *memStore) Append(_ context.Context, sess *experiment.Session) error {
	if s.err != nil {
		return s.err
	}
	s.appended = append(s.appended, sess)
	return nil
}
