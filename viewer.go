package main

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sph/camera"
	"github.com/pthm-cable/sph/components"
	"github.com/pthm-cable/sph/config"
	"github.com/pthm-cable/sph/renderer"
	"github.com/pthm-cable/sph/sim"
	"github.com/pthm-cable/sph/ui"
)

const controlsLegend = "Space: pause | LMB: pick cell | Shift+LMB: pick radius | H: highlight 0 | Tab: panel | Wheel: zoom | RMB drag: pan | R: reset view"

// viewer is the interactive front end around a Simulation.
type viewer struct {
	sim *sim.Simulation
	dt  float64

	cam       *camera.Camera
	particles *renderer.ParticleRenderer
	hud       *ui.HUD
	tuning    *ui.TuningPanel

	fluid          config.FluidConfig
	colorByDensity bool
	paused         bool
	snap           components.Snapshot
}

func newViewer(s *sim.Simulation, cfg *config.Config) *viewer {
	bounds := s.Bounds()
	return &viewer{
		sim:            s,
		dt:             cfg.Physics.DT,
		cam:            camera.New(float32(rl.GetScreenWidth()), float32(rl.GetScreenHeight()), float32(bounds.X), float32(bounds.Y)),
		particles:      renderer.NewParticleRenderer(cfg.Display, cfg.Fluid.RestDensity),
		hud:            ui.NewHUD(),
		tuning:         ui.NewTuningPanel(int32(rl.GetScreenWidth())-250, 10, 240, cfg.Fluid),
		fluid:          cfg.Fluid,
		colorByDensity: cfg.Display.ColorByDensity,
	}
}

func (v *viewer) run(maxTicks int) {
	for !rl.WindowShouldClose() {
		v.sim.Perf().RecordFrame()
		v.update()
		v.draw()

		if maxTicks > 0 && int(v.sim.Tick()) >= maxTicks {
			break
		}
	}
}

func (v *viewer) update() {
	v.cam.Resize(float32(rl.GetScreenWidth()), float32(rl.GetScreenHeight()))
	v.handleInput()
	if !v.paused {
		v.sim.Step(v.dt)
	}
}

func (v *viewer) handleInput() {
	if rl.IsKeyPressed(rl.KeySpace) {
		v.paused = !v.paused
	}
	if rl.IsKeyPressed(rl.KeyTab) {
		v.tuning.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyR) {
		v.cam.Reset()
	}
	if rl.IsKeyPressed(rl.KeyH) {
		if err := v.sim.Highlight(0); err != nil {
			slog.Warn("highlight failed", "error", err)
		}
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		v.cam.ZoomBy(1 + 0.1*wheel)
	}
	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		d := rl.GetMouseDelta()
		v.cam.Pan(-d.X, -d.Y)
	}

	mouse := rl.GetMousePosition()
	if v.tuning.Contains(mouse.X, mouse.Y) {
		return
	}
	wx, wy := v.cam.ScreenToWorld(mouse.X, mouse.Y)
	p := r2.Vec{X: float64(wx), Y: float64(wy)}

	switch {
	case rl.IsMouseButtonDown(rl.MouseButtonLeft) && shiftDown():
		v.sim.SelectAt(p, sim.PickRadius)
	case rl.IsMouseButtonDown(rl.MouseButtonLeft):
		v.sim.SelectAt(p, sim.PickCell)
	case rl.IsMouseButtonReleased(rl.MouseButtonLeft):
		v.sim.ClearSelection()
	}
}

func shiftDown() bool {
	return rl.IsKeyDown(rl.KeyLeftShift) || rl.IsKeyDown(rl.KeyRightShift)
}

func (v *viewer) draw() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.Color{R: 12, G: 14, B: 18, A: 255})

	v.sim.Snapshot(&v.snap)
	v.particles.DrawBounds(v.cam)
	v.particles.Draw(&v.snap, v.cam)

	v.hud.Draw(ui.HUDData{
		Title:     "SPH Fluid",
		Particles: v.sim.Len(),
		Tick:      v.snap.Tick,
		SimTime:   float64(v.snap.Tick) * v.dt,
		FPS:       rl.GetFPS(),
		Paused:    v.paused,
	})
	v.hud.DrawPerf(10, 80, v.sim.Perf().Stats())
	v.hud.DrawControls(int32(rl.GetScreenHeight()), controlsLegend)

	colorByDensity := v.colorByDensity
	if v.tuning.Draw(&v.fluid, &colorByDensity) {
		v.applyTuning()
	}
	if colorByDensity != v.colorByDensity {
		v.colorByDensity = colorByDensity
		v.particles.SetColorByDensity(colorByDensity)
	}

	rl.EndDrawing()
}

func (v *viewer) applyTuning() {
	if err := v.sim.SetTuning(v.fluid); err != nil {
		slog.Warn("tuning rejected", "error", err)
		v.fluid = v.sim.Config().Fluid
		return
	}
	v.particles.SetRestDensity(v.fluid.RestDensity)
}
