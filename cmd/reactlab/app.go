package main

import (
	"context"
	"encoding/csv"
	"fmt"

	"github.com/GermanButtiero/reaction-time/engine"
	"github.com/GermanButtiero/reaction-time/internal/config"
	"github.com/GermanButtiero/reaction-time/internal/experiment"
	"github.com/GermanButtiero/reaction-time/internal/logging"
	"github.com/GermanButtiero/reaction-time/internal/results"
	"github.com/Zyko0/go-sdl3/bin/binimg"
	"github.com/Zyko0/go-sdl3/bin/binsdl"
	"github.com/Zyko0/go-sdl3/bin/binttf"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// binding maps a command line flag onto a config key.
type binding struct {
	flag cli.Flag
	key  string
}

func globalBindings() []binding {
	return []binding{
		{&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"}, "log_level"},
		{&cli.StringFlag{Name: "log-file", Usage: "Rotated JSON log file, empty to disable"}, "log_file"},
		{&cli.StringFlag{Name: "variant", Usage: "simple, stroop or stroop-ink"}, "variant"},
		{&cli.StringFlag{Name: "driver", Usage: "Results store: csv or mysql"}, "results.driver"},
		{&cli.StringFlag{Name: "results", Usage: "Results CSV file (default reaction_times_<variant>.csv)"}, "results.path"},
		{&cli.StringFlag{Name: "dsn", Sources: cli.EnvVars("REACTLAB_RESULTS__DSN"), Usage: "MySQL DSN for the mysql driver"}, "results.dsn"},
	}
}

func participantBindings() []binding {
	return []binding{
		{&cli.StringFlag{Name: "id", Sources: cli.EnvVars("REACTLAB_PARTICIPANT__ID"), Usage: "Participant id"}, "participant.id"},
		{&cli.IntFlag{Name: "trial", Sources: cli.EnvVars("REACTLAB_PARTICIPANT__TRIAL"), Usage: "Trial (session) number of the participant"}, "participant.trial"},
		{&cli.StringFlag{Name: "gender", Sources: cli.EnvVars("REACTLAB_PARTICIPANT__GENDER"), Usage: "Participant gender"}, "participant.gender"},
		{&cli.IntFlag{Name: "age", Sources: cli.EnvVars("REACTLAB_PARTICIPANT__AGE"), Usage: "Participant age"}, "participant.age"},
		{&cli.StringFlag{Name: "group", Sources: cli.EnvVars("REACTLAB_PARTICIPANT__GROUP"), Usage: "Experimental group"}, "participant.group"},
	}
}

func runBindings() []binding {
	return []binding{
		{&cli.BoolFlag{Name: "practice", Usage: "Practice run, results are not saved"}, "practice"},
		{&cli.IntFlag{Name: "trials", Usage: "Override the number of trials"}, "trials"},
		{&cli.FloatFlag{Name: "congruent-probability", Usage: "Share of congruent trials in stroop-ink"}, "congruent_probability"},
		{&cli.Uint64Flag{Name: "seed", Usage: "Fix the stimulus sequence"}, "seed"},
		{&cli.IntFlag{Name: "width", Usage: "Window width"}, "display.width"},
		{&cli.IntFlag{Name: "height", Usage: "Window height"}, "display.height"},
		{&cli.BoolFlag{Name: "fullscreen", Usage: "Enable fullscreen"}, "display.fullscreen"},
		{&cli.BoolFlag{Name: "vsync", Usage: "Synchronise frames with the display"}, "display.vsync"},
		{&cli.StringFlag{Name: "font", Usage: "TTF font file"}, "display.font_file"},
		{&cli.IntFlag{Name: "font-size", Usage: "Base font size"}, "display.font_size"},
		{&cli.StringFlag{Name: "start-splash", Usage: "Start splash image"}, "display.start_splash"},
		{&cli.StringFlag{Name: "end-splash", Usage: "End splash image"}, "display.end_splash"},
		{&cli.StringFlag{Name: "dlp", Usage: "DLP-IO8-G serial device"}, "devices.dlp"},
		{&cli.StringFlag{Name: "cue", Usage: "WAV file played at stimulus onset"}, "devices.cue_sound"},
		{&cli.StringFlag{Name: "metrics-file", Usage: "Write Prometheus metrics here after the run"}, "metrics_file"},
	}
}

func flags(groups ...[]binding) []cli.Flag {
	var out []cli.Flag
	for _, g := range groups {
		for _, b := range g {
			out = append(out, b.flag)
		}
	}
	return out
}

// overrides collects the flags given on the command line as config keys.
func overrides(cmd *cli.Command, groups ...[]binding) map[string]any {
	out := map[string]any{}
	for _, g := range groups {
		for _, b := range g {
			name := b.flag.Names()[0]
			if cmd.IsSet(name) {
				out[b.key] = cmd.Value(name)
			}
		}
	}
	return out
}

func loadConfig(ctx context.Context, cmd *cli.Command, groups ...[]binding) (*config.Config, *zap.Logger, error) {
	opts := []config.LoadOption{config.WithOverrides(overrides(cmd, groups...))}
	if path := cmd.String("config"); path != "" {
		opts = append(opts, config.WithFile(path))
	}
	cfg, err := config.Load(ctx, opts...)
	if err != nil {
		return nil, nil, err
	}
	log, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile, Console: cmd.Root().ErrWriter})
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "reactlab",
		Usage: "Reaction time and Stroop experiments",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Sources: cli.EnvVars(config.EnvConfig),
				Usage:   "YAML config file",
			},
		}, flags(globalBindings())...),
		Commands: []*cli.Command{
			runCommand(),
			checkCommand(),
			headerCommand(),
		},
	}
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run a session",
		Flags: flags(participantBindings(), runBindings()),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, log, err := loadConfig(ctx, cmd, globalBindings(), participantBindings(), runBindings())
			if err != nil {
				return err
			}
			defer log.Sync()

			defer binsdl.Load().Unload()
			defer binimg.Load().Unload()
			defer binttf.Load().Unload()

			outcome, err := engine.Run(ctx, cfg, log)
			if outcome != nil {
				printOutcome(cmd, cfg, outcome)
			}
			return err
		},
	}
}

func printOutcome(cmd *cli.Command, cfg *config.Config, o *experiment.Outcome) {
	w := cmd.Root().Writer
	p := cfg.Participant
	if o.Skipped {
		fmt.Fprintf(w, "Participant %s trial %d is already recorded, nothing to do.\n", p.ID, p.Trial)
		return
	}
	if o.Session == nil {
		return
	}
	for _, r := range o.Session.Results {
		fmt.Fprintf(w, "Trial %d: %.3f s %s\n", r.Index, r.Seconds(), correctness(r))
	}
	sum := o.Session.Summary()
	fmt.Fprintf(w, "%d trials, mean %.3f s, accuracy %.0f%%\n", sum.Trials, sum.MeanReaction.Seconds(), sum.Accuracy()*100)
	if o.Persisted {
		fmt.Fprintf(w, "Results saved to %s\n", cfg.ResultsPath())
	}
}

func correctness(r experiment.TrialResult) string {
	if r.Correct {
		return "correct"
	}
	return "incorrect"
}

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Tell whether a participant's trial number is already recorded",
		Flags: flags(participantBindings()),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, log, err := loadConfig(ctx, cmd, globalBindings(), participantBindings())
			if err != nil {
				return err
			}
			defer log.Sync()
			if err := cfg.ValidateParticipant(); err != nil {
				return err
			}
			variant, err := cfg.ExperimentVariant()
			if err != nil {
				return err
			}

			store, err := results.Open(results.Options{
				Driver: cfg.Results.Driver,
				Path:   cfg.ResultsPath(),
				DSN:    cfg.Results.DSN,
				Slots:  variant.Slots,
				Logger: log,
			})
			if err != nil {
				return err
			}
			defer store.Close()

			exists, err := store.Exists(ctx, cfg.Participant.ID, cfg.Participant.Trial)
			if err != nil {
				return err
			}
			status := "not recorded"
			if exists {
				status = "recorded"
			}
			fmt.Fprintf(cmd.Root().Writer, "participant %s trial %d: %s\n", cfg.Participant.ID, cfg.Participant.Trial, status)
			return nil
		},
	}
}

func headerCommand() *cli.Command {
	return &cli.Command{
		Name:  "header",
		Usage: "Print the results table header of a variant",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, log, err := loadConfig(ctx, cmd, globalBindings())
			if err != nil {
				return err
			}
			defer log.Sync()
			variant, err := cfg.ExperimentVariant()
			if err != nil {
				return err
			}

			w := csv.NewWriter(cmd.Root().Writer)
			if err := w.Write(results.Header(variant.Slots)); err != nil {
				return err
			}
			w.Flush()
			return w.Error()
		},
	}
}
