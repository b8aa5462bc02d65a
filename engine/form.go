package engine

import (
	"strconv"
	"strings"

	"github.com/GermanButtiero/reaction-time/internal/config"
	"github.com/GermanButtiero/reaction-time/internal/experiment"
	"github.com/m-mizutani/goerr/v2"
)

const (
	fieldID = iota
	fieldTrial
	fieldGender
	fieldAge
	fieldGroup
	fieldCount
)

var fieldLabels = [fieldCount]string{"Participant ID:", "Trial number:", "Gender:", "Age:", "Group:"}

type box struct {
	x, y, w, h float32
}

func (b box) contains(x, y float32) bool {
	return x >= b.x && x <= b.x+b.w && y >= b.y && y <= b.y+b.h
}

func fieldBox(i int) box     { return box{x: 250, y: float32(40 + i*60), w: 450, h: 30} }
func variantBox(i int) box   { return box{x: 250, y: float32(360 + i*40), w: 250, h: 30} }
func practiceBox() box       { return box{x: 250, y: 500, w: 250, h: 30} }
func fullscreenBox() box     { return box{x: 250, y: 550, w: 250, h: 30} }
func startButtonBox() box    { return box{x: 350, y: 650, w: 100, h: 40} }
func checkMarkBox(b box) box { return box{x: b.x + 4, y: b.y + 4, w: 12, h: 12} }

// setupForm is the state of the participant form, kept apart from SDL so
// the editing rules can be exercised directly.
type setupForm struct {
	fields     [fieldCount]string
	variants   []experiment.VariantID
	variant    int
	practice   bool
	fullscreen bool
	focus      int
	message    string
}

func newSetupForm(cfg *config.Config) *setupForm {
	f := &setupForm{focus: -1, practice: cfg.Practice, fullscreen: cfg.Display.Fullscreen}
	p := cfg.Participant
	f.fields[fieldID] = p.ID
	f.fields[fieldGender] = p.Gender
	f.fields[fieldGroup] = p.Group
	if p.Trial > 0 {
		f.fields[fieldTrial] = strconv.Itoa(p.Trial)
	}
	if p.Age > 0 {
		f.fields[fieldAge] = strconv.Itoa(p.Age)
	}
	for i, v := range experiment.Variants() {
		f.variants = append(f.variants, v.ID)
		if string(v.ID) == cfg.Variant {
			f.variant = i
		}
	}
	return f
}

// click handles a mouse press and reports whether the start button was hit.
func (f *setupForm) click(x, y float32) bool {
	f.focus = -1
	for i := 0; i < fieldCount; i++ {
		if fieldBox(i).contains(x, y) {
			f.focus = i
		}
	}
	for i := range f.variants {
		if variantBox(i).contains(x, y) {
			f.variant = i
		}
	}
	if practiceBox().contains(x, y) {
		f.practice = !f.practice
	}
	if fullscreenBox().contains(x, y) {
		f.fullscreen = !f.fullscreen
	}
	return startButtonBox().contains(x, y)
}

func (f *setupForm) typeText(s string) {
	if f.focus < 0 {
		return
	}
	if f.focus == fieldTrial || f.focus == fieldAge {
		s = strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, s)
	}
	f.fields[f.focus] += s
}

func (f *setupForm) backspace() {
	if f.focus < 0 {
		return
	}
	r := []rune(f.fields[f.focus])
	if len(r) > 0 {
		f.fields[f.focus] = string(r[:len(r)-1])
	}
}

// tab moves focus to the next text field.
func (f *setupForm) tab() {
	f.focus = (f.focus + 1) % fieldCount
}

// apply copies the form into cfg, leaving cfg untouched when the
// participant fields do not validate.
func (f *setupForm) apply(cfg *config.Config) error {
	next := *cfg
	next.Participant = config.Participant{
		ID:     strings.TrimSpace(f.fields[fieldID]),
		Gender: strings.TrimSpace(f.fields[fieldGender]),
		Group:  strings.TrimSpace(f.fields[fieldGroup]),
	}
	var err error
	if next.Participant.Trial, err = atoiField(f.fields[fieldTrial]); err != nil {
		return goerr.Wrap(config.ErrInvalidConfig, "trial number is not a number")
	}
	if next.Participant.Age, err = atoiField(f.fields[fieldAge]); err != nil {
		return goerr.Wrap(config.ErrInvalidConfig, "age is not a number")
	}
	next.Variant = string(f.variants[f.variant])
	next.Practice = f.practice
	next.Display.Fullscreen = f.fullscreen

	if err := next.ValidateParticipant(); err != nil {
		return err
	}
	*cfg = next
	return nil
}

func atoiField(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
