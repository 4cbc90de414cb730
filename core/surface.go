// Copyright (c) 2026 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import "github.com/devblok/lumen/gfx"

// NewSurfaceState records the bookkeeping half of a presentation surface:
// the weak window reference, the color format chosen at creation, and the
// last configured extent. The initial extent is the window's extent at
// creation time; it does not mean the surface has been configured.
func NewSurfaceState(windows *WindowRegistry, window WindowID, initial gfx.Extent2D, format gfx.Format) SurfaceState {
	return SurfaceState{
		windows: windows,
		window:  window,
		extent:  initial,
		format:  format,
	}
}

// SurfaceState tracks a surface's configured extent against the live
// extent of the window it is bound to. Swapchain implementations embed it
// so the validity semantics stay independent of any graphics API.
type SurfaceState struct {
	windows *WindowRegistry
	window  WindowID
	extent  gfx.Extent2D
	format  gfx.Format
}

// NeedsConfiguration reports true iff the window still resolves and its
// live extent differs from the last configured extent. An unresolvable
// window reports false; invalidation is Valid's job.
func (s *SurfaceState) NeedsConfiguration() bool {
	w, ok := s.windows.Resolve(s.window)
	if !ok {
		return false
	}
	return w.Extent() != s.extent
}

// Valid reports whether the referenced window still resolves. It returns
// false, never panicking, once the window is gone.
func (s *SurfaceState) Valid() bool {
	_, ok := s.windows.Resolve(s.window)
	return ok
}

// Extent returns the extent of the most recent successful configuration.
func (s *SurfaceState) Extent() gfx.Extent2D {
	return s.extent
}

// Format returns the color format chosen when the surface was created.
func (s *SurfaceState) Format() gfx.Format {
	return s.format
}

// ResolveWindow resolves the window behind the weak reference.
func (s *SurfaceState) ResolveWindow() (Window, bool) {
	return s.windows.Resolve(s.window)
}

// MarkConfigured records a successful configure call for the extent.
func (s *SurfaceState) MarkConfigured(extent gfx.Extent2D) {
	s.extent = extent
}
