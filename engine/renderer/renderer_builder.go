package renderer

import "github.com/charmbracelet/log"

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithFramesInFlight sets the number of frame slots. Values outside [1, 4] are ignored.
//
// Parameters:
//   - n: frames the CPU may record ahead of the GPU
//
// Returns:
//   - RendererBuilderOption: a function that applies the option to a renderer
func WithFramesInFlight(n int) RendererBuilderOption {
	return func(r *renderer) {
		if n >= 1 && n <= 4 {
			r.framesInFlight = n
		}
	}
}

// WithClearColor sets the color the render target is cleared to each frame.
//
// Parameters:
//   - rgba: red, green, blue and alpha in [0, 1]
//
// Returns:
//   - RendererBuilderOption: a function that applies the option to a renderer
func WithClearColor(rgba [4]float64) RendererBuilderOption {
	return func(r *renderer) {
		r.clearColor = rgba
	}
}

// WithSize sets the initial framebuffer size.
//
// Parameters:
//   - width, height: the size in pixels
//
// Returns:
//   - RendererBuilderOption: a function that applies the option to a renderer
func WithSize(width, height int) RendererBuilderOption {
	return func(r *renderer) {
		r.width, r.height = width, height
	}
}

// WithLogger sets the logger used for surface rebuilds and stale frames.
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - RendererBuilderOption: a function that applies the option to a renderer
func WithLogger(logger *log.Logger) RendererBuilderOption {
	return func(r *renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}
