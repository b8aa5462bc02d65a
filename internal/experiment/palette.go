package experiment

import (
	"errors"

	"github.com/m-mizutani/goerr/v2"
)

type ColorName string

const (
	Red    ColorName = "RED"
	Green  ColorName = "GREEN"
	Blue   ColorName = "BLUE"
	Yellow ColorName = "YELLOW"
	Purple ColorName = "PURPLE"
	Orange ColorName = "ORANGE"
)

var (
	ErrPaletteTooSmall = errors.New("palette too small")
	ErrUnknownColor    = errors.New("unknown color")
)

type RGBA struct {
	R, G, B, A uint8
}

type PaletteEntry struct {
	Name  ColorName
	Value RGBA
}

// Palette is an ordered, immutable set of named stimulus colors.
type Palette struct {
	names  []ColorName
	values map[ColorName]RGBA
}

func NewPalette(entries ...PaletteEntry) (Palette, error) {
	p := Palette{
		names:  make([]ColorName, 0, len(entries)),
		values: make(map[ColorName]RGBA, len(entries)),
	}
	for _, e := range entries {
		if _, dup := p.values[e.Name]; dup {
			return Palette{}, goerr.New("duplicate palette color", goerr.V("color", e.Name))
		}
		p.names = append(p.names, e.Name)
		p.values[e.Name] = e.Value
	}
	return p, nil
}

func DefaultPalette() Palette {
	p, _ := NewPalette(
		PaletteEntry{Red, RGBA{255, 0, 0, 255}},
		PaletteEntry{Green, RGBA{0, 255, 0, 255}},
		PaletteEntry{Blue, RGBA{0, 0, 255, 255}},
		PaletteEntry{Yellow, RGBA{255, 255, 0, 255}},
		PaletteEntry{Purple, RGBA{128, 0, 128, 255}},
		PaletteEntry{Orange, RGBA{255, 165, 0, 255}},
	)
	return p
}

func (p Palette) Len() int { return len(p.names) }

// Names returns a copy of the palette order.
func (p Palette) Names() []ColorName {
	out := make([]ColorName, len(p.names))
	copy(out, p.names)
	return out
}

func (p Palette) RGBA(name ColorName) (RGBA, error) {
	v, ok := p.values[name]
	if !ok {
		return RGBA{}, goerr.Wrap(ErrUnknownColor, "lookup palette color", goerr.V("color", name))
	}
	return v, nil
}

func (p Palette) Has(name ColorName) bool {
	_, ok := p.values[name]
	return ok
}

// Theme holds the non-stimulus colors used by the view.
type Theme struct {
	Background RGBA
	Text       RGBA
	Dark       RGBA
	Button     RGBA
	Border     RGBA
	Warning    RGBA
	Go         RGBA
}

func DefaultTheme() Theme {
	return Theme{
		Background: RGBA{255, 255, 255, 255},
		Text:       RGBA{0, 0, 0, 255},
		Dark:       RGBA{0, 0, 0, 255},
		Button:     RGBA{200, 200, 200, 255},
		Border:     RGBA{0, 0, 0, 255},
		Warning:    RGBA{255, 0, 0, 255},
		Go:         RGBA{0, 255, 0, 255},
	}
}
