package experiment

import (
	"math/rand/v2"
	"time"
)

type State int

const (
	StateIdle State = iota
	StateArmed
	StateCountdown
	StatePremature
	StateMeasuring
	StateRecorded
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateArmed:
		return "armed"
	case StateCountdown:
		return "countdown"
	case StatePremature:
		return "premature"
	case StateMeasuring:
		return "measuring"
	case StateRecorded:
		return "recorded"
	case StateDone:
		return "done"
	}
	return "unknown"
}

type EventKind int

const (
	EventQuit EventKind = iota
	EventKeyPress
	EventPointerClick
)

type Key string

const (
	KeySpace  Key = "Space"
	KeyEscape Key = "Escape"
)

// Event is one input from the presentation layer. A zero At means "now".
type Event struct {
	Kind EventKind
	Key  Key
	Pos  Point
	At   time.Time
}

func QuitEvent(at time.Time) Event { return Event{Kind: EventQuit, At: at} }

func KeyPress(key Key, at time.Time) Event {
	return Event{Kind: EventKeyPress, Key: key, At: at}
}

func PointerClick(x, y float32, at time.Time) Event {
	return Event{Kind: EventPointerClick, Pos: Point{X: x, Y: y}, At: at}
}

type TrialResult struct {
	Index        int
	ReactionTime time.Duration
	Correct      bool
	Type         TrialType
	Choice       ColorName
}

func (r TrialResult) Seconds() float64 { return r.ReactionTime.Seconds() }

// Observer is notified of trial milestones. Calls happen on the loop
// goroutine and must not block.
type Observer interface {
	TrialStarted(t Trial)
	StimulusOnset(t Trial, at time.Time)
	Premature(t Trial, at time.Time)
	Response(t Trial, r TrialResult)
}

// Machine is the trial state machine. It never sleeps: delays are timed
// states whose deadlines are checked against event and tick timestamps.
type Machine struct {
	variant   Variant
	gen       *Generator
	rng       *rand.Rand
	total     int
	observers []Observer

	state        State
	deadline     time.Time
	onset        time.Time
	onsetPending bool
	trial        Trial
	hasTrial     bool
	results      []TrialResult
	aborted      bool
}

func NewMachine(variant Variant, gen *Generator, rng *rand.Rand, total int, observers ...Observer) *Machine {
	return &Machine{
		variant:   variant,
		gen:       gen,
		rng:       rng,
		total:     total,
		observers: observers,
		state:     StateIdle,
	}
}

func (m *Machine) Start(now time.Time) { m.enter(StateIdle, now) }

func (m *Machine) State() State { return m.state }

func (m *Machine) Done() bool { return m.state == StateDone }

func (m *Machine) Aborted() bool { return m.aborted }

func (m *Machine) Variant() Variant { return m.variant }

func (m *Machine) Total() int { return m.total }

// Trial returns the trial currently on screen, if any.
func (m *Machine) Trial() (Trial, bool) { return m.trial, m.hasTrial }

func (m *Machine) Results() []TrialResult {
	out := make([]TrialResult, len(m.results))
	copy(out, m.results)
	return out
}

func (m *Machine) LastResult() (TrialResult, bool) {
	if len(m.results) == 0 {
		return TrialResult{}, false
	}
	return m.results[len(m.results)-1], true
}

func (m *Machine) Onset() time.Time { return m.onset }

// Deadline is the end of the current timed state.
func (m *Machine) Deadline() time.Time { return m.deadline }

func (m *Machine) OnsetPending() bool { return m.onsetPending }

// MarkOnset moves the onset to the moment the stimulus frame was presented.
func (m *Machine) MarkOnset(at time.Time) {
	if !m.onsetPending {
		return
	}
	m.onsetPending = false
	m.onset = at
	for _, o := range m.observers {
		o.StimulusOnset(m.trial, at)
	}
}

// Abort unwinds to Done. A trial still being measured is dropped.
func (m *Machine) Abort(now time.Time) {
	if m.state == StateDone {
		return
	}
	m.aborted = true
	m.enter(StateDone, now)
}

// Step advances timers and dispatches events in order, then advances to now.
func (m *Machine) Step(now time.Time, events []Event) State {
	for _, ev := range events {
		if m.state == StateDone {
			return m.state
		}
		if ev.At.IsZero() || ev.At.After(now) {
			ev.At = now
		}
		m.advance(ev.At)
		if m.state == StateDone {
			return m.state
		}
		m.dispatch(ev)
	}
	m.advance(now)
	return m.state
}

func (m *Machine) advance(t time.Time) {
	for {
		switch m.state {
		case StateCountdown, StatePremature, StateRecorded:
		default:
			return
		}
		if t.Before(m.deadline) {
			return
		}
		at := m.deadline
		switch m.state {
		case StateCountdown:
			m.enter(StateMeasuring, at)
		case StatePremature, StateRecorded:
			m.enter(StateIdle, at)
		}
	}
}

func (m *Machine) dispatch(ev Event) {
	if ev.Kind == EventQuit {
		m.Abort(ev.At)
		return
	}
	switch m.state {
	case StateIdle:
		if m.isStartInput(ev) {
			m.enter(StateArmed, ev.At)
		}
	case StateCountdown:
		if m.isResponseInput(ev) {
			m.enter(StatePremature, ev.At)
		}
	case StateMeasuring:
		m.respond(ev)
	}
}

func (m *Machine) isStartInput(ev Event) bool {
	switch m.variant.Gate {
	case GateKey:
		return ev.Kind == EventKeyPress && ev.Key == m.variant.StartKey
	case GateCircle:
		return ev.Kind == EventPointerClick && m.gen.layout.StartCircle.Contains(ev.Pos)
	}
	return false
}

func (m *Machine) isResponseInput(ev Event) bool {
	switch m.variant.Response {
	case RespondKey:
		return ev.Kind == EventKeyPress
	case RespondOption:
		if ev.Kind != EventPointerClick {
			return false
		}
		_, ok := m.trial.OptionAt(ev.Pos)
		return ok
	}
	return false
}

func (m *Machine) respond(ev Event) {
	if !m.isResponseInput(ev) {
		return
	}
	r := TrialResult{
		Index:   m.trial.Index,
		Correct: true,
		Type:    m.trial.Type,
	}
	if m.variant.Response == RespondOption {
		opt, _ := m.trial.OptionAt(ev.Pos)
		r.Choice = opt.Label
		r.Correct = opt.Label == m.trial.Answer
	}
	r.ReactionTime = max(ev.At.Sub(m.onset), 0)

	m.results = append(m.results, r)
	for _, o := range m.observers {
		o.Response(m.trial, r)
	}
	m.enter(StateRecorded, ev.At)
}

func (m *Machine) enter(s State, at time.Time) {
	m.state = s
	switch s {
	case StateIdle:
		m.hasTrial = false
		if len(m.results) >= m.total {
			m.enter(StateDone, at)
			return
		}
		if m.variant.Gate == GateNone {
			m.enter(StateArmed, at)
		}
	case StateArmed:
		m.trial = m.gen.Next(len(m.results) + 1)
		m.hasTrial = true
		for _, o := range m.observers {
			o.TrialStarted(m.trial)
		}
		if m.variant.HasCountdown() {
			m.enter(StateCountdown, at)
			return
		}
		m.enter(StateMeasuring, at)
	case StateCountdown:
		m.deadline = at.Add(m.countdown())
	case StatePremature:
		for _, o := range m.observers {
			o.Premature(m.trial, at)
		}
		m.hasTrial = false
		m.deadline = at.Add(m.variant.PrematureDisplay)
	case StateMeasuring:
		m.onset = at
		m.onsetPending = true
	case StateRecorded:
		m.onsetPending = false
		m.deadline = at.Add(m.variant.Dwell)
	case StateDone:
		m.onsetPending = false
		m.hasTrial = false
	}
}

func (m *Machine) countdown() time.Duration {
	span := m.variant.CountdownMax - m.variant.CountdownMin
	if span <= 0 {
		return m.variant.CountdownMin
	}
	return m.variant.CountdownMin + time.Duration(m.rng.Int64N(int64(span)+1))
}
