package engine

import (
	"context"
	"math/rand/v2"

	"github.com/GermanButtiero/reaction-time/internal/config"
	"github.com/GermanButtiero/reaction-time/internal/experiment"
	"github.com/GermanButtiero/reaction-time/internal/metrics"
	"github.com/GermanButtiero/reaction-time/internal/results"
	"github.com/Zyko0/go-sdl3/sdl"
	"github.com/Zyko0/go-sdl3/ttf"
	"github.com/m-mizutani/goerr/v2"
	"go.uber.org/zap"
)

// Run executes one session on an SDL window. A session already in the
// store is reported as skipped before any window opens.
func Run(ctx context.Context, cfg *config.Config, log *zap.Logger) (*experiment.Outcome, error) {
	if err := cfg.ValidateParticipant(); err != nil {
		return nil, err
	}
	variant, err := cfg.ExperimentVariant()
	if err != nil {
		return nil, err
	}

	store, err := results.Open(results.Options{
		Driver: cfg.Results.Driver,
		Path:   cfg.ResultsPath(),
		DSN:    cfg.Results.DSN,
		Slots:  variant.Slots,
		Logger: log,
	})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn("close results store", zap.Error(err))
		}
	}()

	theme := experiment.DefaultTheme()
	settings := experiment.Settings{
		Variant:     variant,
		Participant: cfg.ExperimentParticipant(),
		Practice:    cfg.Practice,
		Trials:      cfg.Trials,
		Palette:     experiment.DefaultPalette(),
		Layout:      experiment.DefaultLayout(variant.ID, cfg.Display.Width, cfg.Display.Height),
		Theme:       theme,
	}
	opts := []experiment.Option{experiment.WithLogger(log.Named("experiment"))}
	if cfg.Seed != 0 {
		opts = append(opts, experiment.WithRand(rand.New(rand.NewPCG(cfg.Seed, cfg.Seed))))
	}
	exp, err := experiment.New(settings, store, opts...)
	if err != nil {
		return nil, err
	}

	recorder := metrics.NewRecorder(variant.ID)
	finish := func(o *experiment.Outcome) *experiment.Outcome {
		recorder.SessionEnded(metrics.Status(o))
		if cfg.MetricsFile != "" {
			if err := recorder.WriteTextfile(cfg.MetricsFile); err != nil {
				log.Warn("metrics not written", zap.Error(err))
			}
		}
		return o
	}

	recorded, err := exp.AlreadyRecorded(ctx)
	if err != nil {
		return nil, err
	}
	if recorded {
		log.Info("session already recorded, nothing to do",
			zap.String("participant", settings.Participant.ID),
			zap.Int("trial", settings.Participant.TrialNumber))
		return finish(&experiment.Outcome{Skipped: true}), nil
	}
	if err := exp.Ready(ctx); err != nil {
		return nil, err
	}

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_AUDIO | sdl.INIT_EVENTS); err != nil {
		return nil, goerr.Wrap(err, "init sdl")
	}
	defer sdl.Quit()

	if err := ttf.Init(); err != nil {
		return nil, goerr.Wrap(err, "init ttf")
	}
	defer ttf.Quit()

	windowFlags := sdl.WINDOW_RESIZABLE
	if cfg.Display.Fullscreen {
		windowFlags |= sdl.WINDOW_FULLSCREEN
	}

	window, renderer, err := sdl.CreateWindowAndRenderer("reactlab", cfg.Display.Width, cfg.Display.Height, windowFlags)
	if err != nil {
		return nil, goerr.Wrap(err, "create window")
	}
	defer window.Destroy()
	defer renderer.Destroy()

	if cfg.Display.VSync {
		renderer.SetVSync(1)
	} else {
		renderer.SetVSync(0)
	}

	screen, err := OpenScreen(renderer, cfg.Display.FontFile, cfg.Display.FontSize, log.Named("screen"))
	if err != nil {
		return nil, err
	}
	defer screen.Close()

	observers := []experiment.Observer{recorder}

	if cfg.Devices.CueSound != "" {
		cue, err := OpenAudioCue(cfg.Devices.CueSound)
		if err != nil {
			log.Warn("audio cue disabled", zap.Error(err))
		} else {
			defer cue.Close()
			observers = append(observers, cue)
		}
	}

	if cfg.Devices.DLP != "" {
		dlp, err := NewDLPIO8G(cfg.Devices.DLP, cfg.Devices.DLPBaud)
		if err != nil {
			log.Warn("dlp triggers disabled", zap.Error(err))
		} else {
			defer dlp.Close()
			trigger := NewTrigger(dlp, log.Named("dlp"))
			defer func() {
				if err := trigger.Close(); err != nil {
					log.Warn("stimulus line left high", zap.Error(err))
				}
			}()
			observers = append(observers, trigger)
		}
	}

	if !DisplaySplash(renderer, cfg.Display.StartSplash, cfg.Display.Width, cfg.Display.Height, theme.Background, log) {
		log.Info("window closed on start screen")
		return finish(&experiment.Outcome{}), nil
	}

	frameDelay := cfg.FrameDelay()
	if cfg.Display.VSync {
		frameDelay = 0
	}
	outcome, err := exp.Execute(ctx, experiment.Frontend{
		Surface:    screen,
		Input:      NewInput(),
		Observers:  observers,
		FrameDelay: frameDelay,
	})
	if err != nil {
		return outcome, err
	}

	if outcome.Session != nil && !outcome.Session.Aborted {
		DisplaySplash(renderer, cfg.Display.EndSplash, cfg.Display.Width, cfg.Display.Height, theme.Background, log)
	}
	return finish(outcome), nil
}
