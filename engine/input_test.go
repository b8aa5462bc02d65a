package engine

import (
	"testing"
	"time"

	"github.com/GermanButtiero/reaction-time/internal/experiment"
	"github.com/m-mizutani/gt"
)

func TestKeyEvent(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, tc := range []struct {
		name string
		want experiment.Event
	}{
		{"Space", experiment.KeyPress(experiment.KeySpace, at)},
		{"Escape", experiment.QuitEvent(at)},
		{"J", experiment.KeyPress("J", at)},
		{"Return", experiment.KeyPress("Return", at)},
		{"", experiment.KeyPress("", at)},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := keyEvent(tc.name, at)
			gt.Equal(t, got, tc.want)
			if tc.name != "Space" {
				gt.NotEqual(t, got, experiment.KeyPress(experiment.KeySpace, at))
			}
		})
	}
}

func TestMixInto(t *testing.T) {
	dst := []int16{0, 100, 32000, -32000}
	mixInto(dst, []int16{5, -50, 1000, -1000})
	gt.Equal(t, dst, []int16{5, 50, 32767, -32768})
}

func TestMixerVoices(t *testing.T) {
	m := NewMixer()
	gt.False(t, m.Play(nil))

	s := &SoundResource{Data: []byte{1, 0, 2, 0, 3, 0}}
	for i := 0; i < maxVoices; i++ {
		gt.True(t, m.Play(s))
	}
	gt.False(t, m.Play(s))

	buf := make([]byte, 4)
	m.fill(buf)
	gt.Equal(t, buf, []byte{maxVoices, 0, 2 * maxVoices, 0})

	m.fill(buf)
	gt.Equal(t, buf, []byte{3 * maxVoices, 0, 0, 0})

	// Every voice ran out and is free again.
	gt.True(t, m.Play(s))
}
