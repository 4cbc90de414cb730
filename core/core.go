// Copyright (c) 2026 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package core owns the engine lifecycle: the logical graphics device,
// the presentation surface bound to a window, and the state machine that
// sequences initialization, swapchain acquisition and per-frame rendering.
package core

import "github.com/devblok/lumen/gfx"

// Context describes the device context: the single source of GPU
// capability. It owns instance, adapter, logical device and queue.
// Created once at process start, immutable thereafter.
type Context interface {

	// Submit hands the target's command sequence to the device queue.
	// Submission is fire-and-forget; back-pressure comes only from the
	// presentation engine's frame latency cap.
	Submit(Target) error

	// Destroy destroys internal members
	Destroy()
}

// Target is an acquired presentable image handed out by a Surface.
// Present is the terminal operation on a target; no further writes are
// permitted afterward.
type Target interface {

	// Extent returns the pixel size of the target.
	Extent() gfx.Extent2D
}

// Surface describes the presentation surface bound to a window. The
// surface holds the window only as a weak reference and never keeps it
// alive.
type Surface interface {

	// Configure (re)configures the surface for the given extent. Must be
	// called at least once before acquisition, and again whenever
	// NeedsConfiguration reports true.
	Configure(gfx.Extent2D) error

	// NeedsConfiguration reports whether the window is alive and its
	// live extent differs from the last configured extent.
	NeedsConfiguration() bool

	// Valid reports whether the referenced window still resolves.
	Valid() bool

	// Extent returns the last configured extent.
	Extent() gfx.Extent2D

	// Format returns the color format chosen at creation. It never
	// changes for the surface's lifetime.
	Format() gfx.Format

	// Acquire requests the next presentable image. On ErrSurfaceLost or
	// ErrOutOfMemory the caller must reconfigure-and-retry or tear down,
	// never retry blindly.
	Acquire() (Target, error)

	// Present hands the target back to the presentation engine.
	Present(Target) error

	// Destroy destroys internal members
	Destroy()
}

// Window is the opaque handle the engine holds on the windowing toolkit's
// window. The toolkit supplies the live pixel extent and carries redraw
// requests back through its event stream.
type Window interface {

	// Extent returns the window's live drawable extent in pixels.
	Extent() gfx.Extent2D

	// RequestRedraw queues a redraw event on the toolkit's event stream.
	RequestRedraw()

	// Destroy destroys the window
	Destroy()
}

// Platform supplies the engine's external collaborators: the graphics
// binding and the windowing toolkit. Implementations decide how windows
// and surfaces come to be; the engine only sequences them.
type Platform interface {

	// AcquireContext acquires the device context. No retry is performed
	// at this layer.
	AcquireContext(Configuration) (Context, error)

	// CreateWindow creates the presentation window.
	CreateWindow(RendererConfiguration) (Window, error)

	// BindSurface binds a new surface to the window resolved through the
	// registry. Each call is one independent attempt.
	BindSurface(Context, *WindowRegistry, WindowID, RendererConfiguration) (Surface, error)
}

// Event is a windowing toolkit signal dispatched to the engine.
type Event interface{}

// RedrawEvent asks the engine to render one frame.
type RedrawEvent struct{}

// ResizeEvent reports a new window extent. The engine reconfigures but
// does not render; a redraw always follows separately from the toolkit.
type ResizeEvent struct {
	Extent gfx.Extent2D
}

// CloseEvent asks the engine to shut down cooperatively.
type CloseEvent struct{}
