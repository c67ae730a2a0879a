// Package renderer draws simulation snapshots with raylib.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sph/camera"
	"github.com/pthm-cable/sph/components"
	"github.com/pthm-cable/sph/config"
)

// ParticleRenderer renders fluid particles and the box outline.
type ParticleRenderer struct {
	display     config.DisplayConfig
	restDensity float64
	boundsColor rl.Color
}

// NewParticleRenderer creates a new particle renderer.
func NewParticleRenderer(display config.DisplayConfig, restDensity float64) *ParticleRenderer {
	return &ParticleRenderer{
		display:     display,
		restDensity: restDensity,
		boundsColor: rl.Color{R: 90, G: 100, B: 110, A: 255},
	}
}

// SetColorByDensity toggles density coloring.
func (r *ParticleRenderer) SetColorByDensity(on bool) {
	r.display.ColorByDensity = on
}

// SetRestDensity updates the density mapped to the rest color.
func (r *ParticleRenderer) SetRestDensity(d float64) {
	r.restDensity = d
}

// Draw renders all particles in the snapshot.
func (r *ParticleRenderer) Draw(snap *components.Snapshot, cam *camera.Camera) {
	radius := float32(r.display.ParticleScale)
	px := cam.WorldLength(radius)
	if px < 1 {
		px = 1
	}

	for i, p := range snap.Positions {
		x, y := float32(p.X), float32(p.Y)
		if !cam.IsVisible(x, y, radius) {
			continue
		}

		var color rl.Color
		switch snap.Selection[i] {
		case components.MarkSelected:
			color = toColor(r.display.SelectedColor)
		case components.MarkMulti:
			color = toColor(r.display.MultiSelectedColor)
		default:
			if r.display.ColorByDensity {
				color = r.densityColor(snap.Densities[i])
			} else {
				color = toColor(r.display.ParticleColor)
			}
		}

		sx, sy := cam.WorldToScreen(x, y)
		rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, px, color)
	}
}

// DrawBounds outlines the simulation box.
func (r *ParticleRenderer) DrawBounds(cam *camera.Camera) {
	left, top := cam.WorldToScreen(-cam.WorldW/2, cam.WorldH/2)
	right, bottom := cam.WorldToScreen(cam.WorldW/2, -cam.WorldH/2)
	rl.DrawRectangleLinesEx(rl.Rectangle{X: left, Y: top, Width: right - left, Height: bottom - top}, 2, r.boundsColor)
}

func (r *ParticleRenderer) densityColor(d float64) rl.Color {
	return toColor(DensityColor(d, r.restDensity, r.display))
}

// DensityColor maps a density onto the display palette: below rest it blends
// from the low color to the rest color, above rest it blends toward the high
// color and reaches it at HighDensitySaturation times the rest density.
func DensityColor(d, rest float64, display config.DisplayConfig) config.RGB {
	if !(rest > 0) {
		return display.RestDensityColor
	}
	ratio := d / rest
	if ratio < 1 {
		return lerpRGB(display.LowDensityColor, display.RestDensityColor, max(ratio, 0))
	}
	span := display.HighDensitySaturation - 1
	if !(span > 0) {
		return display.HighDensityColor
	}
	return lerpRGB(display.RestDensityColor, display.HighDensityColor, min((ratio-1)/span, 1))
}

func lerpRGB(a, b config.RGB, t float64) config.RGB {
	var out config.RGB
	for i := range out {
		out[i] = uint8(float64(a[i]) + (float64(b[i])-float64(a[i]))*t + 0.5)
	}
	return out
}

func toColor(c config.RGB) rl.Color {
	return rl.Color{R: c[0], G: c[1], B: c[2], A: 255}
}
