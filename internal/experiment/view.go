package experiment

import "fmt"

type TextSize int

const (
	TextSmall TextSize = iota
	TextMedium
	TextLarge
)

// Surface is the drawing capability the presentation layer provides.
type Surface interface {
	Clear(c RGBA)
	DrawText(text string, c RGBA, center Point, size TextSize)
	DrawCircle(c Circle, fill RGBA)
	DrawRect(r Rect, fill, border RGBA)
	Present() error
}

// InputSource drains pending input events.
type InputSource interface {
	Poll() []Event
}

// View draws the machine's current state. It holds no state of its own.
type View struct {
	palette Palette
	layout  Layout
	theme   Theme
}

func NewView(palette Palette, layout Layout, theme Theme) *View {
	return &View{palette: palette, layout: layout, theme: theme}
}

func (v *View) Draw(s Surface, m *Machine) {
	switch m.Variant().ID {
	case VariantSimple:
		v.drawSimple(s, m)
	default:
		v.drawStroop(s, m)
	}
}

func (v *View) drawSimple(s Surface, m *Machine) {
	t := v.theme
	switch m.State() {
	case StateIdle, StateArmed:
		s.Clear(t.Background)
		s.DrawText("Press space to start", t.Text, v.layout.Prompt, TextLarge)
		s.DrawText("Press Escape to finish", t.Text, v.layout.Detail, TextSmall)
	case StateCountdown:
		s.Clear(t.Dark)
		s.DrawText("Wait...", t.Background, v.layout.Prompt, TextLarge)
	case StatePremature:
		s.Clear(t.Background)
		s.DrawText("Too Soon!", t.Warning, v.layout.Prompt, TextLarge)
	case StateMeasuring:
		s.Clear(t.Go)
		s.DrawText("GO!", t.Warning, v.layout.Prompt, TextLarge)
	case StateRecorded:
		s.Clear(t.Background)
		if r, ok := m.LastResult(); ok {
			s.DrawText(fmt.Sprintf("Reaction: %.3f s", r.Seconds()), t.Warning, v.layout.Prompt, TextMedium)
			s.DrawText(fmt.Sprintf("Trial: %d", r.Index), t.Text, v.layout.Detail, TextMedium)
		}
	case StateDone:
		v.drawDone(s)
	}
}

func (v *View) drawStroop(s Surface, m *Machine) {
	t := v.theme
	switch m.State() {
	case StateIdle, StateArmed, StatePremature:
		s.Clear(t.Background)
		if m.Variant().Gate == GateCircle {
			s.DrawCircle(v.layout.StartCircle, t.Dark)
			s.DrawText("Press the black circle to start new trial", t.Text, v.layout.Prompt, TextMedium)
		}
	case StateMeasuring, StateRecorded:
		s.Clear(t.Background)
		trial, ok := m.Trial()
		if !ok {
			return
		}
		v.drawStimulus(s, m.Variant(), trial)
		for _, o := range trial.Options {
			s.DrawRect(o.Region, t.Button, t.Border)
			s.DrawText(string(o.Label), v.color(o.Ink), o.Region.Center(), TextMedium)
		}
	case StateDone:
		v.drawDone(s)
	}
}

func (v *View) drawStimulus(s Surface, variant Variant, trial Trial) {
	if variant.InkStimulus {
		s.DrawText(string(trial.Target), v.color(trial.Ink), v.layout.Stimulus.Center, TextLarge)
		return
	}
	s.DrawCircle(v.layout.Stimulus, v.color(trial.Target))
}

func (v *View) drawDone(s Surface) {
	s.Clear(v.theme.Background)
	s.DrawText("Thank you!", v.theme.Text, v.layout.Prompt, TextLarge)
}

func (v *View) color(name ColorName) RGBA {
	c, err := v.palette.RGBA(name)
	if err != nil {
		return v.theme.Text
	}
	return c
}
