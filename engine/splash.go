package engine

import (
	"github.com/GermanButtiero/reaction-time/internal/experiment"
	"github.com/Zyko0/go-sdl3/img"
	"github.com/Zyko0/go-sdl3/sdl"
	"go.uber.org/zap"
)

// DisplaySplash shows an image until a key or click. It reports false when
// the window was closed instead.
func DisplaySplash(renderer *sdl.Renderer, filePath string, screenW, screenH int, bg experiment.RGBA, log *zap.Logger) bool {
	if filePath == "" {
		return true
	}
	tex, err := img.LoadTexture(renderer, filePath)
	if err != nil {
		log.Warn("splash image not shown", zap.String("path", filePath), zap.Error(err))
		return true
	}
	defer tex.Destroy()

	tw, th, _ := tex.Size()
	dst := sdl.FRect{
		X: (float32(screenW) - tw) / 2.0,
		Y: (float32(screenH) - th) / 2.0,
		W: tw,
		H: th,
	}

	renderer.SetDrawColor(bg.R, bg.G, bg.B, bg.A)
	renderer.Clear()
	renderer.RenderTexture(tex, nil, &dst)
	renderer.Present()

	for {
		var event sdl.Event
		if err := sdl.WaitEvent(&event); err != nil {
			return true
		}
		switch event.Type {
		case sdl.EVENT_QUIT:
			return false
		case sdl.EVENT_KEY_DOWN, sdl.EVENT_MOUSE_BUTTON_DOWN:
			return true
		}
	}
}
