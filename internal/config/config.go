// Package config holds the runner configuration: participant metadata,
// variant selection, display and device settings, and where results go.
package config

import (
	"fmt"
	"time"

	"github.com/GermanButtiero/reaction-time/internal/experiment"
	"github.com/m-mizutani/goerr/v2"
)

type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	LogFile  string `koanf:"log_file"`

	Variant  string `koanf:"variant"`
	Practice bool   `koanf:"practice"`

	// Trials overrides the variant's trial count when positive.
	Trials int `koanf:"trials"`

	// CongruentProbability applies to the stroop-ink variant only.
	CongruentProbability float64 `koanf:"congruent_probability"`

	// Seed fixes the stimulus sequence. Zero seeds from the clock.
	Seed uint64 `koanf:"seed"`

	Participant Participant `koanf:"participant"`
	Results     Results     `koanf:"results"`
	Display     Display     `koanf:"display"`
	Devices     Devices     `koanf:"devices"`

	// MetricsFile receives a Prometheus text dump at the end of a run.
	MetricsFile string `koanf:"metrics_file"`
}

type Participant struct {
	ID     string `koanf:"id"`
	Trial  int    `koanf:"trial"`
	Gender string `koanf:"gender"`
	Age    int    `koanf:"age"`
	Group  string `koanf:"group"`
}

type Results struct {
	// Driver is csv or mysql.
	Driver string `koanf:"driver"`
	// Path defaults to reaction_times_<variant>.csv when empty.
	Path string `koanf:"path"`
	DSN  string `koanf:"dsn"`
}

type Display struct {
	Width        int    `koanf:"width"`
	Height       int    `koanf:"height"`
	Fullscreen   bool   `koanf:"fullscreen"`
	VSync        bool   `koanf:"vsync"`
	FontFile     string `koanf:"font_file"`
	FontSize     int    `koanf:"font_size"`
	StartSplash  string `koanf:"start_splash"`
	EndSplash    string `koanf:"end_splash"`
	FrameDelayMS int    `koanf:"frame_delay_ms"`
}

type Devices struct {
	// DLP is the serial port of a DLP-IO8-G trigger box, e.g. /dev/ttyUSB0.
	DLP      string `koanf:"dlp"`
	DLPBaud  int    `koanf:"dlp_baud"`
	CueSound string `koanf:"cue_sound"`
}

func New() *Config {
	return &Config{
		LogLevel:             "info",
		LogFile:              "logs/reactlab.log",
		Variant:              string(experiment.VariantSimple),
		CongruentProbability: 0.2,
		Results: Results{
			Driver: "csv",
		},
		Display: Display{
			Width:        1500,
			Height:       800,
			VSync:        true,
			FontSize:     36,
			FrameDelayMS: 1,
		},
		Devices: Devices{
			DLPBaud: 9600,
		},
	}
}

// Validate checks the settings every command needs.
func (c *Config) Validate() error {
	if _, err := experiment.LookupVariant(experiment.VariantID(c.Variant)); err != nil {
		return goerr.Wrap(ErrInvalidConfig, "unknown variant", goerr.V("variant", c.Variant))
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return goerr.Wrap(ErrInvalidConfig, "bad log level", goerr.V("log_level", c.LogLevel))
	}
	if c.Trials < 0 {
		return goerr.Wrap(ErrInvalidConfig, "trials must not be negative", goerr.V("trials", c.Trials))
	}
	if c.CongruentProbability < 0 || c.CongruentProbability > 1 {
		return goerr.Wrap(ErrInvalidConfig, "congruent probability out of range",
			goerr.V("congruent_probability", c.CongruentProbability))
	}
	switch c.Results.Driver {
	case "", "csv":
	case "mysql":
		if c.Results.DSN == "" {
			return goerr.Wrap(ErrInvalidConfig, "mysql driver needs a dsn")
		}
	default:
		return goerr.Wrap(ErrInvalidConfig, "unknown results driver", goerr.V("driver", c.Results.Driver))
	}
	if c.Display.Width <= 0 || c.Display.Height <= 0 {
		return goerr.Wrap(ErrInvalidConfig, "display size must be positive",
			goerr.V("width", c.Display.Width), goerr.V("height", c.Display.Height))
	}
	return nil
}

// ValidateParticipant checks the metadata a session is keyed and recorded by.
func (c *Config) ValidateParticipant() error {
	p := c.Participant
	if p.ID == "" {
		return goerr.Wrap(ErrInvalidConfig, "participant id is required")
	}
	if p.Trial < 1 {
		return goerr.Wrap(ErrInvalidConfig, "trial number must be at least 1", goerr.V("trial", p.Trial))
	}
	if p.Age < 0 {
		return goerr.Wrap(ErrInvalidConfig, "age must not be negative", goerr.V("age", p.Age))
	}
	return nil
}

// ExperimentVariant returns the selected variant with config overrides
// applied.
func (c *Config) ExperimentVariant() (experiment.Variant, error) {
	v, err := experiment.LookupVariant(experiment.VariantID(c.Variant))
	if err != nil {
		return experiment.Variant{}, goerr.Wrap(ErrInvalidConfig, "unknown variant", goerr.V("variant", c.Variant))
	}
	if v.InkStimulus {
		v.CongruentProbability = c.CongruentProbability
	}
	return v, nil
}

func (c *Config) ExperimentParticipant() experiment.Participant {
	return experiment.Participant{
		ID:          c.Participant.ID,
		TrialNumber: c.Participant.Trial,
		Gender:      c.Participant.Gender,
		Age:         c.Participant.Age,
		Group:       c.Participant.Group,
	}
}

// ResultsPath is the CSV file for the selected variant. Each variant has
// its own table since the slot counts differ.
func (c *Config) ResultsPath() string {
	if c.Results.Path != "" {
		return c.Results.Path
	}
	return fmt.Sprintf("reaction_times_%s.csv", c.Variant)
}

func (c *Config) FrameDelay() time.Duration {
	return time.Duration(c.Display.FrameDelayMS) * time.Millisecond
}
