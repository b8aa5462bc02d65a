package engine

import (
	"time"

	"github.com/GermanButtiero/reaction-time/internal/experiment"
	"github.com/Zyko0/go-sdl3/sdl"
)

// Input drains the SDL event queue. Events are stamped when they are
// polled.
type Input struct {
	now func() time.Time
}

func NewInput() *Input {
	return &Input{now: time.Now}
}

func (in *Input) Poll() []experiment.Event {
	var events []experiment.Event
	var e sdl.Event
	for sdl.PollEvent(&e) {
		at := in.now()
		switch e.Type {
		case sdl.EVENT_QUIT:
			events = append(events, experiment.QuitEvent(at))
		case sdl.EVENT_KEY_DOWN:
			ke := e.KeyboardEvent()
			if ke.Key == sdl.K_ESCAPE {
				events = append(events, experiment.QuitEvent(at))
				continue
			}
			events = append(events, keyEvent(ke.Key.KeyName(), at))
		case sdl.EVENT_MOUSE_BUTTON_DOWN:
			me := e.MouseButtonEvent()
			events = append(events, experiment.PointerClick(me.X, me.Y, at))
		}
	}
	return events
}

func keyEvent(name string, at time.Time) experiment.Event {
	switch name {
	case string(experiment.KeyEscape):
		return experiment.QuitEvent(at)
	case "Space", " ":
		return experiment.KeyPress(experiment.KeySpace, at)
	}
	return experiment.KeyPress(experiment.Key(name), at)
}
