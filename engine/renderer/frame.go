package renderer

import (
	"github.com/Carmen-Shannon/oxy-sandbox/engine/camera"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/game_object"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// SlotState is the lifecycle state of a frame slot.
type SlotState int

const (
	SlotIdle SlotState = iota
	SlotRecording
	SlotSubmitted
	SlotPresented
)

func (s SlotState) String() string {
	switch s {
	case SlotIdle:
		return "idle"
	case SlotRecording:
		return "recording"
	case SlotSubmitted:
		return "submitted"
	case SlotPresented:
		return "presented"
	default:
		return "unknown"
	}
}

// FrameOutcome reports what DrawFrame did with the frame.
type FrameOutcome int

const (
	// FramePresented means the frame was recorded, submitted and presented.
	FramePresented FrameOutcome = iota

	// FrameSkipped means nothing was submitted, typically because the surface was stale
	// or the window is minimized.
	FrameSkipped
)

func (o FrameOutcome) String() string {
	if o == FramePresented {
		return "presented"
	}
	return "skipped"
}

// SceneSource is the renderable state the coordinator reads at recording time.
// scene.Registry satisfies it.
type SceneSource interface {
	Objects() []game_object.GameObject
	Archetype(key string) (scene.Archetype, bool)
	Geometry() scene.Geometry
}

// FrameInput is everything DrawFrame needs from the rest of the sandbox.
type FrameInput struct {
	Camera camera.GPUCameraUniform
	Scene  SceneSource
}

// DrawCommand is one indexed draw of an object.
type DrawCommand struct {
	// Model is the object's world matrix, pushed per draw.
	Model mgl32.Mat4
	// TextureSlot selects the bound texture.
	TextureSlot int
	// FirstIndex and IndexCount select the archetype's index range.
	FirstIndex uint32
	IndexCount uint32
	// BaseVertex is added to every index, the archetype's vertex offset.
	BaseVertex int32
}

// FrameData is a fully resolved frame handed to RendererBackend.Record.
type FrameData struct {
	Slot       int
	Image      uint32
	ClearColor [4]float64
	Camera     camera.GPUCameraUniform
	Draws      []DrawCommand
}

// buildDraws resolves objects in draw order against their archetypes. Disabled objects and
// objects whose archetype has not loaded are skipped.
func buildDraws(dst []DrawCommand, src SceneSource) []DrawCommand {
	dst = dst[:0]
	if src == nil {
		return dst
	}

	cache := make(map[string]scene.Archetype)
	for _, obj := range src.Objects() {
		if !obj.Enabled() {
			continue
		}
		key := obj.ArchetypeKey()
		arch, ok := cache[key]
		if !ok {
			arch, ok = src.Archetype(key)
			if !ok {
				continue
			}
			cache[key] = arch
		}
		if arch.IndexCount == 0 {
			continue
		}
		dst = append(dst, DrawCommand{
			Model:       obj.Matrix(),
			TextureSlot: arch.TextureSlot,
			FirstIndex:  arch.IndexOffset,
			IndexCount:  arch.IndexCount,
			BaseVertex:  int32(arch.VertexOffset),
		})
	}
	return dst
}
