package engine

import (
	"sync"
	"time"
	"unsafe"

	"github.com/GermanButtiero/reaction-time/internal/experiment"
	"github.com/Zyko0/go-sdl3/sdl"
	"github.com/m-mizutani/goerr/v2"
)

const (
	maxVoices    = 8
	scratchBytes = 4096
)

type voice struct {
	sound  *SoundResource
	pos    int
	active bool
}

// Mixer sums the active voices into the SDL stream on the audio thread.
type Mixer struct {
	mu      sync.Mutex
	voices  [maxVoices]voice
	scratch []byte
}

func NewMixer() *Mixer {
	return &Mixer{scratch: make([]byte, scratchBytes)}
}

func (m *Mixer) Callback(stream *sdl.AudioStream, additionalAmount, totalAmount int32) {
	remaining := int(additionalAmount)
	for remaining > 0 {
		chunk := min(remaining, scratchBytes)
		m.fill(m.scratch[:chunk])
		stream.PutData(m.scratch[:chunk])
		remaining -= chunk
	}
}

// fill writes the next len(buf) bytes of the mix into buf.
func (m *Mixer) fill(buf []byte) {
	clear(buf)
	dst := unsafe.Slice((*int16)(unsafe.Pointer(&buf[0])), len(buf)/2)

	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.voices {
		v := &m.voices[i]
		if !v.active {
			continue
		}
		n := min(len(buf), len(v.sound.Data)-v.pos) &^ 1
		if n > 0 {
			src := unsafe.Slice((*int16)(unsafe.Pointer(&v.sound.Data[v.pos])), n/2)
			mixInto(dst, src)
		}
		v.pos += n
		if n == 0 || v.pos >= len(v.sound.Data) {
			v.active = false
		}
	}
}

// mixInto adds src onto dst, clipping to the int16 range.
func mixInto(dst, src []int16) {
	for j := range src {
		val := int32(dst[j]) + int32(src[j])
		if val > 32767 {
			val = 32767
		} else if val < -32768 {
			val = -32768
		}
		dst[j] = int16(val)
	}
}

// Play starts the sound on a free voice. It reports false when all voices
// are busy.
func (m *Mixer) Play(s *SoundResource) bool {
	if s == nil || len(s.Data) == 0 {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.voices {
		if !m.voices[i].active {
			m.voices[i] = voice{sound: s, active: true}
			return true
		}
	}
	return false
}

// AudioCue plays a sound at every stimulus onset.
type AudioCue struct {
	mixer  *Mixer
	sound  *SoundResource
	stream *sdl.AudioStream
}

// OpenAudioCue loads the WAV file and starts a playback stream on the
// default device.
func OpenAudioCue(path string) (*AudioCue, error) {
	sound, err := LoadSound(path)
	if err != nil {
		return nil, err
	}
	mixer := NewMixer()
	cb := sdl.NewAudioStreamCallback(mixer.Callback)
	stream := sdl.AUDIO_DEVICE_DEFAULT_PLAYBACK.OpenAudioDeviceStream(&mixerSpec, cb)
	if stream == nil {
		return nil, goerr.New("open audio stream")
	}
	stream.ResumeDevice()
	return &AudioCue{mixer: mixer, sound: sound, stream: stream}, nil
}

func (c *AudioCue) Close() {
	if c.stream != nil {
		c.stream.Destroy()
	}
}

func (c *AudioCue) TrialStarted(experiment.Trial) {}

func (c *AudioCue) StimulusOnset(experiment.Trial, time.Time) { c.mixer.Play(c.sound) }

func (c *AudioCue) Premature(experiment.Trial, time.Time) {}

func (c *AudioCue) Response(experiment.Trial, experiment.TrialResult) {}
