package renderer

import "github.com/charmbracelet/log"

// WGPUBackendOption is a functional option applied to the WebGPU backend during construction
// via NewWGPURendererBackend.
type WGPUBackendOption func(*wgpuRendererBackendImpl)

// WithPresentMode sets how frames are presented. Modes the surface does not support fall back to VSync.
//
// Parameters:
//   - mode: the PresentMode
//
// Returns:
//   - WGPUBackendOption: a function that applies the option to the backend
func WithPresentMode(mode PresentMode) WGPUBackendOption {
	return func(b *wgpuRendererBackendImpl) {
		b.presentMode = mode
	}
}

// WithMSAA sets the multisample count. Values other than MSAAOff and MSAA4x are ignored.
//
// Parameters:
//   - count: the sample count
//
// Returns:
//   - WGPUBackendOption: a function that applies the option to the backend
func WithMSAA(count MSAASampleCount) WGPUBackendOption {
	return func(b *wgpuRendererBackendImpl) {
		if count == MSAAOff || count == MSAA4x {
			b.sampleCount = count
		}
	}
}

// WithForceFallbackAdapter requests the software fallback adapter.
//
// Parameters:
//   - force: whether to force the fallback adapter
//
// Returns:
//   - WGPUBackendOption: a function that applies the option to the backend
func WithForceFallbackAdapter(force bool) WGPUBackendOption {
	return func(b *wgpuRendererBackendImpl) {
		b.forceFallbackAdapter = force
	}
}

// WithBackendLogger sets the logger used for device and surface events.
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - WGPUBackendOption: a function that applies the option to the backend
func WithBackendLogger(logger *log.Logger) WGPUBackendOption {
	return func(b *wgpuRendererBackendImpl) {
		if logger != nil {
			b.logger = logger
		}
	}
}
