package experiment

import (
	"math/rand/v2"

	"github.com/m-mizutani/goerr/v2"
)

type TrialType string

const (
	TrialNone         TrialType = ""
	TrialCompatible   TrialType = "compatible"
	TrialIncompatible TrialType = "incompatible"
)

type Option struct {
	Label  ColorName
	Ink    ColorName
	Region Rect
}

// Trial is one generated stimulus. The simple variant produces trials
// without target or options.
type Trial struct {
	Index      int
	Target     ColorName
	Ink        ColorName
	Options    []Option
	Compatible bool
	Type       TrialType
	Answer     ColorName
}

func (t Trial) OptionAt(p Point) (Option, bool) {
	for _, o := range t.Options {
		if o.Region.Contains(p) {
			return o, true
		}
	}
	return Option{}, false
}

const optionCount = 4

type Generator struct {
	palette Palette
	variant Variant
	layout  Layout
	rng     *rand.Rand
}

func NewGenerator(palette Palette, variant Variant, layout Layout, rng *rand.Rand) (*Generator, error) {
	if variant.Response == RespondOption {
		if palette.Len() < optionCount+2 {
			return nil, goerr.Wrap(ErrPaletteTooSmall, "create generator",
				goerr.V("size", palette.Len()), goerr.V("required", optionCount+2))
		}
		if len(layout.OptionSlots) < optionCount {
			return nil, goerr.New("layout has too few option slots", goerr.V("slots", len(layout.OptionSlots)))
		}
	}
	return &Generator{palette: palette, variant: variant, layout: layout, rng: rng}, nil
}

// Next builds the trial with the given 1-based index.
func (g *Generator) Next(index int) Trial {
	t := Trial{Index: index, Compatible: true}
	if g.variant.Response != RespondOption {
		return t
	}

	names := g.palette.Names()
	t.Target = names[g.rng.IntN(len(names))]
	t.Ink = t.Target
	t.Answer = t.Target

	if g.variant.InkStimulus {
		t.Compatible = g.rng.Float64() < g.variant.CongruentProbability
		if t.Compatible {
			t.Type = TrialCompatible
		} else {
			others := without(names, t.Target)
			t.Ink = others[g.rng.IntN(len(others))]
			t.Type = TrialIncompatible
		}
		t.Answer = t.Ink
	}

	labels := append(g.sample(without(names, t.Answer), optionCount-1), t.Answer)
	g.rng.Shuffle(len(labels), func(i, j int) { labels[i], labels[j] = labels[j], labels[i] })

	t.Options = make([]Option, len(labels))
	inks := g.inks(names, t)
	for i, label := range labels {
		t.Options[i] = Option{Label: label, Region: g.layout.OptionSlots[i]}
	}

	// Congruent trials pin the correct option to the target's own color.
	if t.Type == TrialCompatible {
		k := 0
		for i := range t.Options {
			if t.Options[i].Label == t.Answer {
				t.Options[i].Ink = t.Target
				continue
			}
			t.Options[i].Ink = inks[k]
			k++
		}
		return t
	}
	for i := range t.Options {
		t.Options[i].Ink = inks[i]
	}
	return t
}

func (g *Generator) inks(names []ColorName, t Trial) []ColorName {
	switch t.Type {
	case TrialCompatible:
		return g.sample(without(names, t.Target), optionCount-1)
	case TrialIncompatible:
		return g.sample(without(names, t.Target, t.Ink), optionCount)
	default:
		return g.sample(without(names, t.Target), optionCount)
	}
}

func (g *Generator) sample(from []ColorName, n int) []ColorName {
	out := make([]ColorName, 0, n)
	for _, i := range g.rng.Perm(len(from))[:n] {
		out = append(out, from[i])
	}
	return out
}

func without(names []ColorName, exclude ...ColorName) []ColorName {
	out := make([]ColorName, 0, len(names))
next:
	for _, n := range names {
		for _, e := range exclude {
			if n == e {
				continue next
			}
		}
		out = append(out, n)
	}
	return out
}
