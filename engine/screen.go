package engine

import (
	"math"

	"github.com/GermanButtiero/reaction-time/internal/experiment"
	"github.com/Zyko0/go-sdl3/sdl"
	"github.com/Zyko0/go-sdl3/ttf"
	"github.com/m-mizutani/goerr/v2"
	"go.uber.org/zap"
)

// Screen draws experiment frames with an SDL renderer.
type Screen struct {
	renderer *sdl.Renderer
	fonts    map[experiment.TextSize]*ttf.Font
	texts    *TextCache
	logger   *zap.Logger
}

// OpenScreen loads the font at three sizes around base.
func OpenScreen(renderer *sdl.Renderer, fontPath string, base int, log *zap.Logger) (*Screen, error) {
	if fontPath == "" {
		fontPath = GetDefaultFontPath()
	}
	if fontPath == "" {
		return nil, goerr.New("no font found, pass a font file")
	}

	s := &Screen{
		renderer: renderer,
		fonts:    make(map[experiment.TextSize]*ttf.Font),
		texts:    NewTextCache(),
		logger:   log,
	}
	for size, scale := range map[experiment.TextSize]float32{
		experiment.TextSmall:  0.6,
		experiment.TextMedium: 1,
		experiment.TextLarge:  1.5,
	} {
		font, err := ttf.OpenFont(fontPath, float32(base)*scale)
		if err != nil {
			s.Close()
			return nil, goerr.Wrap(err, "open font", goerr.V("path", fontPath))
		}
		s.fonts[size] = font
	}
	return s, nil
}

func (s *Screen) Close() {
	s.texts.Destroy()
	for _, f := range s.fonts {
		f.Close()
	}
}

func (s *Screen) setColor(c experiment.RGBA) {
	s.renderer.SetDrawColor(c.R, c.G, c.B, c.A)
}

func (s *Screen) Clear(c experiment.RGBA) {
	s.setColor(c)
	s.renderer.Clear()
}

func (s *Screen) DrawText(text string, c experiment.RGBA, center experiment.Point, size experiment.TextSize) {
	font, ok := s.fonts[size]
	if !ok || text == "" {
		return
	}
	e, err := s.texts.Get(s.renderer, font, textKey{text: text, size: size, color: c})
	if err != nil {
		s.logger.Warn("text not drawn", zap.String("text", text), zap.Error(err))
		return
	}
	dst := sdl.FRect{X: center.X - e.w/2, Y: center.Y - e.h/2, W: e.w, H: e.h}
	s.renderer.RenderTexture(e.texture, nil, &dst)
}

// DrawCircle fills the circle one horizontal line at a time.
func (s *Screen) DrawCircle(c experiment.Circle, fill experiment.RGBA) {
	s.setColor(fill)
	r := c.Radius
	for dy := -r; dy <= r; dy++ {
		half := float32(math.Sqrt(float64(r*r - dy*dy)))
		y := c.Center.Y + dy
		s.renderer.RenderLine(c.Center.X-half, y, c.Center.X+half, y)
	}
}

func (s *Screen) DrawRect(r experiment.Rect, fill, border experiment.RGBA) {
	box := sdl.FRect{X: r.X, Y: r.Y, W: r.W, H: r.H}
	s.setColor(fill)
	s.renderer.RenderFillRect(&box)
	s.setColor(border)
	s.renderer.RenderRect(&box)
}

func (s *Screen) Present() error {
	if err := s.renderer.Present(); err != nil {
		return goerr.Wrap(err, "present frame")
	}
	return nil
}
