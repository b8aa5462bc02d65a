package experiment

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"go.uber.org/zap"
)

// Runner is the presentation loop: poll, step, draw, present, pace.
type Runner struct {
	machine *Machine
	view    *View
	surface Surface
	input   InputSource

	now        func() time.Time
	sleep      func(time.Duration)
	frameDelay time.Duration
	logger     *zap.Logger
}

type RunnerOption func(*Runner)

func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) { r.now = now }
}

func WithSleep(sleep func(time.Duration)) RunnerOption {
	return func(r *Runner) { r.sleep = sleep }
}

// WithFrameDelay sets the pause between frames when the surface does not
// block on vertical sync.
func WithFrameDelay(d time.Duration) RunnerOption {
	return func(r *Runner) { r.frameDelay = d }
}

func WithRunnerLogger(l *zap.Logger) RunnerOption {
	return func(r *Runner) { r.logger = l }
}

func NewRunner(m *Machine, view *View, surface Surface, input InputSource, opts ...RunnerOption) *Runner {
	r := &Runner{
		machine: m,
		view:    view,
		surface: surface,
		input:   input,
		now:     time.Now,
		sleep:   time.Sleep,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run drives the machine until it is done or ctx is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	r.machine.Start(r.now())
	last := r.machine.State()

	for !r.machine.Done() {
		if ctx.Err() != nil {
			r.logger.Info("run cancelled", zap.Error(ctx.Err()))
			r.machine.Abort(r.now())
			break
		}

		events := r.input.Poll()
		state := r.machine.Step(r.now(), events)
		if state != last {
			r.logger.Debug("state changed", zap.Stringer("from", last), zap.Stringer("to", state))
			last = state
		}

		r.view.Draw(r.surface, r.machine)
		if err := r.surface.Present(); err != nil {
			return goerr.Wrap(err, "present frame", goerr.V("state", state.String()))
		}
		if r.machine.OnsetPending() {
			r.machine.MarkOnset(r.now())
		}

		if r.frameDelay > 0 {
			r.sleep(r.frameDelay)
		}
	}

	r.view.Draw(r.surface, r.machine)
	if err := r.surface.Present(); err != nil {
		return goerr.Wrap(err, "present final frame")
	}
	return nil
}
