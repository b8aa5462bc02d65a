package engine

import (
	"github.com/GermanButtiero/reaction-time/internal/config"
	"github.com/Zyko0/go-sdl3/sdl"
	"github.com/Zyko0/go-sdl3/ttf"
	"github.com/m-mizutani/goerr/v2"
	"go.uber.org/zap"
)

// RunGuiSetup shows the participant form and fills cfg from it. It returns
// false when the window was closed before START.
func RunGuiSetup(cfg *config.Config, log *zap.Logger) (bool, error) {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return false, goerr.Wrap(err, "init sdl")
	}
	defer sdl.Quit()

	if err := ttf.Init(); err != nil {
		return false, goerr.Wrap(err, "init ttf")
	}
	defer ttf.Quit()

	window, renderer, err := sdl.CreateWindowAndRenderer("reactlab setup", 800, 750, 0)
	if err != nil {
		return false, goerr.Wrap(err, "create setup window")
	}
	defer window.Destroy()
	defer renderer.Destroy()

	fontPath := GetDefaultFontPath()
	if fontPath == "" {
		return false, goerr.New("no default font found for setup form")
	}
	guiFont, err := ttf.OpenFont(fontPath, 18)
	if err != nil {
		return false, goerr.Wrap(err, "open setup font", goerr.V("path", fontPath))
	}
	defer guiFont.Close()

	form := newSetupForm(cfg)

	window.StartTextInput()
	defer window.StopTextInput()

	for {
		var e sdl.Event
		for sdl.PollEvent(&e) {
			switch e.Type {
			case sdl.EVENT_QUIT:
				return false, nil
			case sdl.EVENT_MOUSE_BUTTON_DOWN:
				me := e.MouseButtonEvent()
				if !form.click(me.X, me.Y) {
					continue
				}
				if err := form.apply(cfg); err != nil {
					form.message = err.Error()
					continue
				}
				if err := config.SaveCache(config.CacheFile, cfg.Cache()); err != nil {
					log.Warn("setup cache not saved", zap.Error(err))
				}
				return true, nil
			case sdl.EVENT_TEXT_INPUT:
				form.typeText(e.TextInputEvent().Text)
			case sdl.EVENT_KEY_DOWN:
				switch e.KeyboardEvent().Key {
				case sdl.K_BACKSPACE:
					form.backspace()
				case sdl.K_TAB:
					form.tab()
				}
			}
		}

		drawSetupForm(renderer, guiFont, form)
		renderer.Present()
		sdl.Delay(10)
	}
}

func drawLabel(renderer *sdl.Renderer, font *ttf.Font, text string, color sdl.Color, x, y float32) {
	if text == "" {
		return
	}
	surf, err := font.RenderTextBlended(text, color)
	if err != nil || surf == nil {
		return
	}
	defer surf.Destroy()
	tex, err := renderer.CreateTextureFromSurface(surf)
	if err != nil {
		return
	}
	defer tex.Destroy()
	r := sdl.FRect{X: x, Y: y, W: float32(surf.W), H: float32(surf.H)}
	renderer.RenderTexture(tex, nil, &r)
}

func drawCheck(renderer *sdl.Renderer, b box, on bool) {
	check := sdl.FRect{X: b.x, Y: b.y, W: 20, H: 20}
	renderer.SetDrawColor(255, 255, 255, 255)
	renderer.RenderFillRect(&check)
	renderer.SetDrawColor(0, 0, 0, 255)
	renderer.RenderRect(&check)
	if on {
		m := checkMarkBox(b)
		mark := sdl.FRect{X: m.x, Y: m.y, W: m.w, H: m.h}
		renderer.SetDrawColor(0, 150, 0, 255)
		renderer.RenderFillRect(&mark)
	}
}

func drawSetupForm(renderer *sdl.Renderer, font *ttf.Font, f *setupForm) {
	renderer.SetDrawColor(240, 240, 240, 255)
	renderer.Clear()
	black := sdl.Color{R: 0, G: 0, B: 0, A: 255}

	for i := 0; i < fieldCount; i++ {
		b := fieldBox(i)
		drawLabel(renderer, font, fieldLabels[i], black, 50, b.y+4)

		rect := sdl.FRect{X: b.x, Y: b.y, W: b.w, H: b.h}
		renderer.SetDrawColor(255, 255, 255, 255)
		renderer.RenderFillRect(&rect)
		if f.focus == i {
			renderer.SetDrawColor(0, 120, 255, 255)
		} else {
			renderer.SetDrawColor(180, 180, 180, 255)
		}
		renderer.RenderRect(&rect)
		drawLabel(renderer, font, f.fields[i], black, b.x+5, b.y+5)
	}

	drawLabel(renderer, font, "Experiment:", black, 50, variantBox(0).y)
	for i, id := range f.variants {
		b := variantBox(i)
		drawCheck(renderer, b, f.variant == i)
		drawLabel(renderer, font, string(id), black, b.x+30, b.y)
	}

	drawCheck(renderer, practiceBox(), f.practice)
	drawLabel(renderer, font, "Practice run (not saved)", black, practiceBox().x+30, practiceBox().y)
	drawCheck(renderer, fullscreenBox(), f.fullscreen)
	drawLabel(renderer, font, "Fullscreen mode", black, fullscreenBox().x+30, fullscreenBox().y)

	if f.message != "" {
		drawLabel(renderer, font, f.message, sdl.Color{R: 200, G: 0, B: 0, A: 255}, 50, 610)
	}

	sb := startButtonBox()
	renderer.SetDrawColor(0, 150, 0, 255)
	startBtn := sdl.FRect{X: sb.x, Y: sb.y, W: sb.w, H: sb.h}
	renderer.RenderFillRect(&startBtn)
	drawLabel(renderer, font, "START", sdl.Color{R: 255, G: 255, B: 255, A: 255}, sb.x+25, sb.y+10)
}
