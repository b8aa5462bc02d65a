package config_test

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/GermanButtiero/reaction-time/internal/config"
	"github.com/GermanButtiero/reaction-time/internal/experiment"
	"github.com/m-mizutani/gt"
)

func TestValidateParticipant(t *testing.T) {
	for _, tc := range []struct {
		name string
		p    config.Participant
		ok   bool
	}{
		{"valid", config.Participant{ID: "3", Trial: 1, Age: 20}, true},
		{"missing id", config.Participant{Trial: 1}, false},
		{"zero trial", config.Participant{ID: "3"}, false},
		{"negative age", config.Participant{ID: "3", Trial: 1, Age: -1}, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.New()
			cfg.Participant = tc.p
			err := cfg.ValidateParticipant()
			if tc.ok {
				gt.NoError(t, err)
				return
			}
			gt.True(t, errors.Is(err, config.ErrInvalidConfig))
		})
	}
}

func TestExperimentVariant(t *testing.T) {
	cfg := config.New()
	cfg.Variant = string(experiment.VariantStroopInk)
	cfg.CongruentProbability = 0.5

	v, err := cfg.ExperimentVariant()
	gt.NoError(t, err)
	gt.Equal(t, v.CongruentProbability, 0.5)
	gt.Equal(t, cfg.ResultsPath(), "reaction_times_stroop-ink.csv")
	gt.Equal(t, cfg.FrameDelay(), time.Millisecond)

	cfg.Variant = string(experiment.VariantStroop)
	v, err = cfg.ExperimentVariant()
	gt.NoError(t, err)
	gt.Equal(t, v.CongruentProbability, 0.0)
}

func TestCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.CacheFile)

	empty, err := config.LoadCache(path)
	gt.NoError(t, err)
	gt.Equal(t, empty, config.Cache{})

	cfg := config.New()
	cfg.Participant = config.Participant{ID: "12", Trial: 3, Gender: "M", Age: 27, Group: "exercise"}
	cfg.Variant = "stroop-ink"
	cfg.Practice = true
	gt.NoError(t, config.SaveCache(path, cfg.Cache()))

	cache, err := config.LoadCache(path)
	gt.NoError(t, err)
	gt.Equal(t, cache, cfg.Cache())

	restored := config.New()
	restored.ApplyCache(cache)
	gt.Equal(t, restored.Participant, cfg.Participant)
	gt.Equal(t, restored.Variant, "stroop-ink")
	gt.True(t, restored.Practice)
}
