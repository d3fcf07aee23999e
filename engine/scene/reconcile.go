package scene

import (
	"github.com/Carmen-Shannon/oxy-sandbox/common"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/game_object"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/physics"
)

// Reconcile copies body transforms into object world matrices.
// Each matrix is rebuilt as Translate * Rotate * Scale from the body pose and the object's fixed
// scale; the previous matrix is never read. Objects without a body, with a stale handle, or
// with a static body are left untouched.
//
// Parameters:
//   - objects: the objects to update
//   - sim: the simulation owning the bodies
//
// Returns:
//   - int: the number of objects updated
func Reconcile(objects []game_object.GameObject, sim physics.Simulation) int {
	updated := 0
	for _, obj := range objects {
		h, ok := obj.Body()
		if !ok {
			continue
		}
		kind, err := sim.Kind(h)
		if err != nil || kind == physics.BodyKindStatic {
			continue
		}
		t, err := sim.Transform(h)
		if err != nil {
			continue
		}
		obj.SetMatrix(common.ComposeTRS(t.Position, t.Orientation, obj.Scale()))
		updated++
	}
	return updated
}
