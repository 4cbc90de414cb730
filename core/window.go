// Copyright (c) 2026 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

// WindowID is a lookup handle for a registered window. Holding an ID
// never keeps the window alive; it must be resolved through the registry
// before every use.
type WindowID uint32

// WindowRegistry maps window handles to live windows. It implements the
// weak-reference side of the surface/window relationship: surfaces store
// an ID and resolve it on demand, and resolution fails once the window
// has been removed.
type WindowRegistry struct {
	seq     WindowID
	windows map[WindowID]Window
}

// NewWindowRegistry creates an empty registry.
func NewWindowRegistry() *WindowRegistry {
	return &WindowRegistry{
		windows: make(map[WindowID]Window),
	}
}

// Add registers a window and returns its handle.
func (r *WindowRegistry) Add(w Window) WindowID {
	r.seq++
	r.windows[r.seq] = w
	return r.seq
}

// Resolve looks up a window by handle. The second return is false once
// the window has been removed; callers must treat that as the window no
// longer existing, never cache a previous resolution.
func (r *WindowRegistry) Resolve(id WindowID) (Window, bool) {
	w, ok := r.windows[id]
	return w, ok
}

// Remove unregisters a window. Surfaces holding the handle observe the
// removal on their next resolution.
func (r *WindowRegistry) Remove(id WindowID) {
	delete(r.windows, id)
}
