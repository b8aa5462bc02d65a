// Package experiment implements the reaction-time and Stroop trial logic:
// stimulus generation, the trial state machine, the view that draws it and
// the session orchestration around a result store.
package experiment

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"go.uber.org/zap"
)

// SessionStore persists finished sessions keyed by participant id and trial
// number. Preflight reports whether a later Append could succeed at all, so
// a broken store is caught before the first trial.
type SessionStore interface {
	Exists(ctx context.Context, participantID string, trialNumber int) (bool, error)
	Preflight(ctx context.Context) error
	Append(ctx context.Context, s *Session) error
}

type Settings struct {
	Variant     Variant
	Participant Participant
	Practice    bool
	// Trials overrides the variant trial count when positive.
	Trials  int
	Palette Palette
	Layout  Layout
	Theme   Theme
}

// Frontend bundles what a presentation layer hands to Execute.
type Frontend struct {
	Surface    Surface
	Input      InputSource
	Observers  []Observer
	FrameDelay time.Duration
}

type Outcome struct {
	Session   *Session
	Skipped   bool
	Persisted bool
}

type Experiment struct {
	settings Settings
	store    SessionStore
	rng      *rand.Rand
	now      func() time.Time
	logger   *zap.Logger
}

type Option func(*Experiment)

func WithRand(rng *rand.Rand) Option {
	return func(e *Experiment) { e.rng = rng }
}

func WithNow(now func() time.Time) Option {
	return func(e *Experiment) { e.now = now }
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Experiment) { e.logger = l }
}

func New(settings Settings, store SessionStore, opts ...Option) (*Experiment, error) {
	e := &Experiment{
		settings: settings,
		store:    store,
		rng:      rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64())),
		now:      time.Now,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	total := e.TotalTrials()
	if total <= 0 {
		return nil, goerr.New("trial count must be positive", goerr.V("trials", total))
	}
	if !settings.Practice && total > settings.Variant.Slots {
		return nil, goerr.New("trial count exceeds result slots",
			goerr.V("trials", total), goerr.V("slots", settings.Variant.Slots))
	}
	return e, nil
}

func (e *Experiment) TotalTrials() int {
	if e.settings.Trials > 0 {
		return e.settings.Trials
	}
	return e.settings.Variant.TotalTrials(e.settings.Practice)
}

// AlreadyRecorded reports whether the store holds this participant's trial
// number.
func (e *Experiment) AlreadyRecorded(ctx context.Context) (bool, error) {
	p := e.settings.Participant
	exists, err := e.store.Exists(ctx, p.ID, p.TrialNumber)
	if err != nil {
		return false, goerr.Wrap(err, "check existing session",
			goerr.V("participant", p.ID), goerr.V("trial", p.TrialNumber))
	}
	return exists, nil
}

// Ready checks that the store will accept this session. Practice runs are
// never saved and always pass.
func (e *Experiment) Ready(ctx context.Context) error {
	if e.settings.Practice {
		return nil
	}
	if err := e.store.Preflight(ctx); err != nil {
		return goerr.Wrap(err, "results store not ready")
	}
	return nil
}

// Execute runs a whole session on the given frontend and persists it unless
// it is a practice run. A session already in the store is skipped without
// running any trial.
func (e *Experiment) Execute(ctx context.Context, fe Frontend) (*Outcome, error) {
	s := e.settings
	log := e.logger.With(
		zap.String("participant", s.Participant.ID),
		zap.Int("trial", s.Participant.TrialNumber),
		zap.String("variant", string(s.Variant.ID)),
	)

	exists, err := e.AlreadyRecorded(ctx)
	if err != nil {
		return nil, err
	}
	if exists {
		log.Info("session already recorded, skipping")
		return &Outcome{Skipped: true}, nil
	}
	if err := e.Ready(ctx); err != nil {
		return nil, err
	}

	gen, err := NewGenerator(s.Palette, s.Variant, s.Layout, e.rng)
	if err != nil {
		return nil, err
	}

	session := NewSession(s.Participant, s.Variant.ID, s.Practice, e.now())
	log = log.With(zap.String("session_id", session.ID.String()))

	machine := NewMachine(s.Variant, gen, e.rng, e.TotalTrials(), fe.Observers...)
	runner := NewRunner(machine, NewView(s.Palette, s.Layout, s.Theme), fe.Surface, fe.Input,
		WithClock(e.now),
		WithFrameDelay(fe.FrameDelay),
		WithRunnerLogger(log),
	)

	log.Info("session started", zap.Int("trials", e.TotalTrials()), zap.Bool("practice", s.Practice))
	if err := runner.Run(ctx); err != nil {
		return nil, goerr.Wrap(err, "run session", goerr.V("session_id", session.ID))
	}

	session.Results = machine.Results()
	session.Aborted = machine.Aborted()
	out := &Outcome{Session: session}

	sum := session.Summary()
	log.Info("session finished",
		zap.Int("completed", sum.Trials),
		zap.Duration("mean_rt", sum.MeanReaction),
		zap.Float64("accuracy", sum.Accuracy()),
		zap.Bool("aborted", session.Aborted),
	)

	if s.Practice {
		log.Info("practice session, results not saved")
		return out, nil
	}
	// A quit or cancelled run still keeps what it recorded.
	if err := e.store.Append(context.WithoutCancel(ctx), session); err != nil {
		log.Error("session not saved", zap.Error(err), zap.Any("results", session.Results))
		return out, goerr.Wrap(err, "save session", goerr.V("session_id", session.ID))
	}
	out.Persisted = true
	return out, nil
}
