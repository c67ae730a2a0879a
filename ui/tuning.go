package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sph/config"
)

// slider binds one raygui slider to a fluid parameter.
type slider struct {
	label    string
	min, max float32
	format   string
	field    func(*config.FluidConfig) *float64
}

var fluidSliders = []slider{
	{"Gravity", 0, 10, "%.2f", func(f *config.FluidConfig) *float64 { return &f.Gravity }},
	{"Elasticity", 0, 1, "%.2f", func(f *config.FluidConfig) *float64 { return &f.CollisionElasticity }},
	{"Radius", 0.02, 0.3, "%.3f", func(f *config.FluidConfig) *float64 { return &f.DensityRadius }},
	{"Gas constant", 0, 5, "%.3f", func(f *config.FluidConfig) *float64 { return &f.GasConstant }},
	{"Rest density", 10, 3000, "%.0f", func(f *config.FluidConfig) *float64 { return &f.RestDensity }},
	{"Viscosity", 0, 1, "%.3f", func(f *config.FluidConfig) *float64 { return &f.Viscosity }},
}

const (
	sliderHeight = 16
	rowHeight    = 38
	buttonHeight = 24
)

// TuningPanel renders sliders for the tunable fluid parameters.
type TuningPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool

	defaults config.FluidConfig
}

// NewTuningPanel creates a tuning panel. Reset restores defaults.
func NewTuningPanel(x, y, width int32, defaults config.FluidConfig) *TuningPanel {
	return &TuningPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		visible:  true,
		defaults: defaults,
	}
}

// Toggle switches panel visibility.
func (p *TuningPanel) Toggle() bool {
	p.visible = !p.visible
	return p.visible
}

// Contains reports whether a screen point lies on the panel, so clicks on
// it are not treated as picks.
func (p *TuningPanel) Contains(sx, sy float32) bool {
	if !p.visible {
		return false
	}
	return rl.CheckCollisionPointRec(rl.Vector2{X: sx, Y: sy}, p.bounds())
}

func (p *TuningPanel) bounds() rl.Rectangle {
	th := p.renderer.Theme
	height := th.LineHeight + int32(len(fluidSliders))*rowHeight + 2*(buttonHeight+6) + th.Padding*2
	return rl.Rectangle{X: float32(p.x), Y: float32(p.y), Width: float32(p.width), Height: float32(height)}
}

// Draw renders the panel and applies slider edits to tuning and
// colorByDensity. It returns true when a fluid parameter changed.
func (p *TuningPanel) Draw(tuning *config.FluidConfig, colorByDensity *bool) bool {
	if !p.visible {
		return false
	}

	r := p.renderer
	th := r.Theme
	b := p.bounds()
	r.DrawPanel(p.x, p.y, p.width, int32(b.Height))

	x := float32(p.x + th.Padding)
	y := p.y + th.Padding
	y = r.DrawSectionHeader(int32(x), y, "Fluid")

	sliderW := float32(p.width - th.Padding*2 - 60)
	changed := false
	for _, s := range fluidSliders {
		v := s.field(tuning)
		rl.DrawText(s.label, int32(x), y, th.FontSize, th.LabelColor)
		y += th.FontSize + 4

		old := float32(*v)
		next := gui.SliderBar(rl.Rectangle{X: x, Y: float32(y), Width: sliderW, Height: sliderHeight}, "", "", old, s.min, s.max)
		rl.DrawText(fmt.Sprintf(s.format, *v), int32(x+sliderW+6), y+2, th.FontSize, th.ValueColor)
		if next != old {
			*v = float64(next)
			changed = true
		}
		y += rowHeight - th.FontSize - 4
	}

	y += 6
	label := "Color: flat"
	if *colorByDensity {
		label = "Color: density"
	}
	if gui.Button(rl.Rectangle{X: x, Y: float32(y), Width: sliderW, Height: buttonHeight}, label) {
		*colorByDensity = !*colorByDensity
	}
	y += buttonHeight + 6

	if gui.Button(rl.Rectangle{X: x, Y: float32(y), Width: sliderW, Height: buttonHeight}, "Reset") {
		*tuning = p.defaults
		changed = true
	}
	return changed
}
