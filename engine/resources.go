package engine

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/GermanButtiero/reaction-time/internal/experiment"
	"github.com/Zyko0/go-sdl3/sdl"
	"github.com/Zyko0/go-sdl3/ttf"
	"github.com/m-mizutani/goerr/v2"
)

func GetDefaultFontPath() string {
	// Check local fonts directory
	entries, err := os.ReadDir("fonts")
	if err == nil {
		for _, entry := range entries {
			if !entry.IsDir() {
				ext := strings.ToLower(filepath.Ext(entry.Name()))
				if ext == ".ttf" || ext == ".ttc" {
					return filepath.Join("fonts", entry.Name())
				}
			}
		}
	}

	var paths []string
	switch runtime.GOOS {
	case "windows":
		paths = []string{"C:\\Windows\\Fonts\\arial.ttf"}
	case "darwin":
		paths = []string{"/System/Library/Fonts/Helvetica.ttc"}
	default:
		paths = []string{
			"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
			"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
		}
	}

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

type textKey struct {
	text  string
	size  experiment.TextSize
	color experiment.RGBA
}

type textEntry struct {
	texture *sdl.Texture
	w, h    float32
}

// TextCache keeps one texture per rendered string. Screens redraw the same
// handful of labels every frame.
type TextCache struct {
	entries map[textKey]*textEntry
}

func NewTextCache() *TextCache {
	return &TextCache{entries: make(map[textKey]*textEntry)}
}

func (c *TextCache) Get(renderer *sdl.Renderer, font *ttf.Font, key textKey) (*textEntry, error) {
	if e, ok := c.entries[key]; ok {
		return e, nil
	}

	col := key.color
	surf, err := font.RenderTextBlended(key.text, sdl.Color{R: col.R, G: col.G, B: col.B, A: col.A})
	if err != nil {
		return nil, goerr.Wrap(err, "render text", goerr.V("text", key.text))
	}
	defer surf.Destroy()

	tex, err := renderer.CreateTextureFromSurface(surf)
	if err != nil {
		return nil, goerr.Wrap(err, "create text texture", goerr.V("text", key.text))
	}

	e := &textEntry{texture: tex, w: float32(surf.W), h: float32(surf.H)}
	c.entries[key] = e
	return e, nil
}

func (c *TextCache) Len() int { return len(c.entries) }

func (c *TextCache) Destroy() {
	for k, e := range c.entries {
		if e.texture != nil {
			e.texture.Destroy()
		}
		delete(c.entries, k)
	}
}

type SoundResource struct {
	Data []byte
	Spec sdl.AudioSpec
}

var mixerSpec = sdl.AudioSpec{Format: sdl.AUDIO_S16, Channels: 2, Freq: 44100}

// LoadSound reads a WAV file and converts it to the mixer format.
func LoadSound(path string) (*SoundResource, error) {
	spec := &sdl.AudioSpec{}
	data, err := sdl.LoadWAV(path, spec)
	if err != nil {
		return nil, goerr.Wrap(err, "load sound", goerr.V("path", path))
	}
	if spec.Format == mixerSpec.Format && spec.Channels == mixerSpec.Channels && spec.Freq == mixerSpec.Freq {
		return &SoundResource{Data: data, Spec: *spec}, nil
	}

	converted, err := sdl.ConvertAudioSamples(spec, data, &mixerSpec)
	if err != nil {
		return nil, goerr.Wrap(err, "convert sound", goerr.V("path", path))
	}
	return &SoundResource{Data: converted, Spec: mixerSpec}, nil
}
