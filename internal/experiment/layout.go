package experiment

type Point struct {
	X, Y float32
}

type Rect struct {
	X, Y, W, H float32
}

func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

func (r Rect) Center() Point {
	return Point{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

type Circle struct {
	Center Point
	Radius float32
}

func (c Circle) Contains(p Point) bool {
	dx, dy := p.X-c.Center.X, p.Y-c.Center.Y
	return dx*dx+dy*dy <= c.Radius*c.Radius
}

// Layout is the screen geometry of one variant. Option regions are assigned
// to trial options in order.
type Layout struct {
	Width, Height float32
	Stimulus      Circle
	StartCircle   Circle
	Prompt        Point
	Detail        Point
	OptionSlots   []Rect
}

const (
	buttonWidth  = 200
	buttonHeight = 100
)

func DefaultLayout(id VariantID, width, height int) Layout {
	w, h := float32(width), float32(height)
	l := Layout{
		Width:  w,
		Height: h,
		Prompt: Point{X: w / 2, Y: h / 2},
		Detail: Point{X: w / 2, Y: h/2 + 75},
	}

	switch id {
	case VariantStroop:
		l.Stimulus = Circle{Center: Point{X: w / 2, Y: 150}, Radius: 100}
		l.OptionSlots = optionGrid(w, 300, 475)
	case VariantStroopInk:
		l.Stimulus = Circle{Center: Point{X: w / 2, Y: 250}, Radius: 100}
		l.StartCircle = Circle{Center: Point{X: w / 2, Y: 250}, Radius: 100}
		l.Prompt = Point{X: w / 2, Y: 400}
		l.OptionSlots = optionGrid(w, 400, 575)
	}
	return l
}

func optionGrid(w, top, bottom float32) []Rect {
	left := w/2 - buttonWidth/2 - 150
	right := w/2 + buttonWidth/2 - 50
	return []Rect{
		{X: left, Y: top, W: buttonWidth, H: buttonHeight},
		{X: right, Y: top, W: buttonWidth, H: buttonHeight},
		{X: left, Y: bottom, W: buttonWidth, H: buttonHeight},
		{X: right, Y: bottom, W: buttonWidth, H: buttonHeight},
	}
}
