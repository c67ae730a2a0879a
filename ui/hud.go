package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sph/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title     string
	Particles int
	Tick      int32
	SimTime   float64
	FPS       int32
	Paused    bool
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{renderer: NewRenderer()}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Particles: %d | Tick: %d | Time: %.2fs | FPS: %d", data.Particles, data.Tick, data.SimTime, data.FPS),
		10, 35, 16, rl.LightGray,
	)

	if data.Paused {
		rl.DrawText("PAUSED", 10, 55, 16, rl.Yellow)
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// DrawPerf renders per-phase timings from the perf collector.
func (h *HUD) DrawPerf(x, y int32, stats telemetry.PerfStats) {
	r := h.renderer
	width := int32(220)
	height := r.Theme.LineHeight*int32(telemetry.NumPhases+3) + r.Theme.Padding*2
	r.DrawPanel(x, y, width, height)

	x += r.Theme.Padding
	y += r.Theme.Padding
	y = r.DrawSectionHeader(x, y, fmt.Sprintf("Tick %.2fms", float64(stats.AvgTickDuration.Microseconds())/1000))
	y = r.DrawLabelValue(x, y, "ticks/s", fmt.Sprintf("%.0f", stats.TicksPerSecond))
	for p := range telemetry.NumPhases {
		color := r.Theme.ValueColor
		if stats.PhasePct[p] > 40 {
			color = rl.Red
		}
		rl.DrawText(p.String()+":", x, y, r.Theme.FontSize, r.Theme.LabelColor)
		rl.DrawText(fmt.Sprintf("%5.1f%%", stats.PhasePct[p]), x+r.Theme.LabelWidth, y, r.Theme.FontSize, color)
		y += r.Theme.LineHeight
	}
}
