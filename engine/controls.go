package engine

import (
	"github.com/Carmen-Shannon/oxy-sandbox/common"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/camera"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/input"
)

// handleEvent applies one drained input event.
func (e *engine) handleEvent(ev input.Event) {
	switch ev := ev.(type) {
	case input.KeyEvent:
		e.handleKey(ev)
	case input.MouseButtonEvent:
		if ev.Button == common.MouseButtonLeft && ev.Down && !e.Paused() {
			e.spawner.Request(1)
		}
	case input.MouseMoveEvent:
		if !e.Paused() {
			e.camera.Controller().ApplyMouse(ev.X, ev.Y)
		}
	case input.ScrollEvent:
		// scrolling up narrows the view
		e.camera.AddFov(-float32(ev.Delta))
	case input.ResizeEvent:
		e.renderer.Resize(ev.W, ev.H)
		if ev.W > 0 && ev.H > 0 {
			e.camera.SetAspect(float32(ev.W) / float32(ev.H))
		}
	case input.CloseEvent:
		e.Quit()
	case input.TuningEvent:
		e.ApplyTuning(ev.Tuning)
		e.logger.Info("tuning applied",
			"spawnVelocity", ev.Tuning.SpawnVelocity,
			"spawnMass", ev.Tuning.SpawnMass,
			"spawnScale", ev.Tuning.SpawnScale,
			"movementSpeed", ev.Tuning.MovementSpeed,
		)
	}
}

func (e *engine) handleKey(ev input.KeyEvent) {
	e.held[ev.Key] = ev.Down
	if !ev.Down {
		return
	}
	switch ev.Key {
	case common.KeyEsc, common.KeyTab:
		e.SetPaused(!e.Paused())
	case common.KeyQ:
		e.Quit()
	case common.KeyF11:
		e.window.ToggleFullscreen()
	}
}

// moveInput maps the held fly keys onto camera directions.
func (e *engine) moveInput() camera.MoveInput {
	return camera.MoveInput{
		Forward:  e.held[common.KeyW],
		Backward: e.held[common.KeyS],
		Left:     e.held[common.KeyA],
		Right:    e.held[common.KeyD],
		Up:       e.held[common.KeySpace],
		Down:     e.held[common.KeyLeftShift],
	}
}
