// Copyright (c) 2026 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"fmt"

	log "github.com/sirupsen/logrus"
)

// State identifies where the engine is in its lifecycle.
type State int

// Engine lifecycle states, in order of progression.
const (
	Uninitialized State = iota
	DeviceReady
	WindowPending
	Renderable
	ShuttingDown
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "Uninitialized"
	case DeviceReady:
		return "DeviceReady"
	case WindowPending:
		return "WindowPending"
	case Renderable:
		return "Renderable"
	case ShuttingDown:
		return "ShuttingDown"
	default:
		return "Unknown"
	}
}

// NewEngine acquires the device context and returns an engine in
// DeviceReady. A context acquisition failure is returned as-is: there is
// nothing the engine can do without a device, the caller must abort.
func NewEngine(cfg Configuration, platform Platform) (*Engine, error) {
	ctx, err := platform.AcquireContext(cfg)
	if err != nil {
		return nil, fmt.Errorf("engine: device context: %w", err)
	}
	return &Engine{
		cfg:      cfg,
		platform: platform,
		ctx:      ctx,
		windows:  NewWindowRegistry(),
		state:    DeviceReady,
	}, nil
}

// Engine is the top-level state machine. It is passive: transitions
// happen only inside Resumed and Handle, which the windowing toolkit's
// dispatch loop invokes. No internal locking; the engine is driven from a
// single thread of control.
type Engine struct {
	cfg      Configuration
	platform Platform

	ctx     Context
	windows *WindowRegistry

	// window and surface are absent before Resumed and always become
	// present together. The surface must never be retained once the
	// window registration has been dropped.
	windowID WindowID
	window   Window
	surface  Surface

	state State
	done  bool
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	return e.state
}

// Done reports whether loop termination has been requested.
func (e *Engine) Done() bool {
	return e.done
}

// Context returns the device context the engine runs on.
func (e *Engine) Context() Context {
	return e.ctx
}

// Surface returns the presentation surface, nil before Resumed.
func (e *Engine) Surface() Surface {
	return e.surface
}

// Windows returns the registry surfaces resolve the window through.
func (e *Engine) Windows() *WindowRegistry {
	return e.windows
}

// Resumed handles the toolkit's resumed/activated signal: it creates the
// window, binds the presentation surface with a bounded retry budget,
// configures it for the window's current extent and requests the first
// redraw. A returned error is fatal; the engine cannot proceed without a
// presentation target.
func (e *Engine) Resumed() error {
	if e.state != DeviceReady {
		log.Warnf("engine: resumed ignored in state %s", e.state)
		return nil
	}
	e.state = WindowPending

	window, err := e.platform.CreateWindow(e.cfg.Renderer)
	if err != nil {
		return fmt.Errorf("engine: window creation: %w", err)
	}
	e.window = window
	e.windowID = e.windows.Add(window)

	retries := e.cfg.Renderer.SurfaceRetries
	if retries <= 0 {
		retries = 3
	}

	var lastErr error
	for attempt := 1; attempt <= retries; attempt++ {
		surface, err := e.platform.BindSurface(e.ctx, e.windows, e.windowID, e.cfg.Renderer)
		if err == nil {
			e.surface = surface
			break
		}
		lastErr = err
		log.Warnf("engine: surface binding attempt %d/%d failed: %s", attempt, retries, err)
	}
	if e.surface == nil {
		e.windows.Remove(e.windowID)
		e.window.Destroy()
		e.window = nil
		return fmt.Errorf("engine: surface binding failed after %d attempts: %w", retries, lastErr)
	}

	if err := e.surface.Configure(window.Extent()); err != nil {
		return fmt.Errorf("engine: initial surface configuration: %w", err)
	}

	window.RequestRedraw()
	e.state = Renderable
	log.Debugf("engine: %s, surface format %s", e.state, e.surface.Format())
	return nil
}

// Handle dispatches one toolkit event. Render failures are logged and the
// frame is dropped; the loop continues and tries again on the next redraw
// request. Only close requests change that.
func (e *Engine) Handle(event Event) error {
	switch ev := event.(type) {
	case CloseEvent:
		if e.state != ShuttingDown {
			e.state = ShuttingDown
			e.done = true
			log.Info("engine: close requested, terminating loop")
		}
	case ResizeEvent:
		// No render here; only reconfigure and queue a redraw. The
		// toolkit does not request redraws on its own, and a frame
		// dropped around the resize would otherwise stall the loop.
		if e.state != Renderable {
			return nil
		}
		if err := e.surface.Configure(ev.Extent); err != nil {
			log.Errorf("engine: surface reconfiguration: %s", err)
		}
		e.window.RequestRedraw()
	case RedrawEvent:
		if e.state != Renderable {
			return nil
		}
		if err := e.render(); err != nil {
			log.Errorf("engine: frame dropped: %s", err)
			return nil
		}
		e.window.RequestRedraw()
	}
	return nil
}

func (e *Engine) render() error {
	target, err := e.surface.Acquire()
	if err != nil {
		return err
	}
	if err := e.ctx.Submit(target); err != nil {
		return err
	}
	return e.surface.Present(target)
}

// Destroy tears down the surface, the window and the device context, in
// that order. Safe to call once after the loop exits.
func (e *Engine) Destroy() {
	if e.surface != nil {
		e.surface.Destroy()
		e.surface = nil
	}
	if e.window != nil {
		e.windows.Remove(e.windowID)
		e.window.Destroy()
		e.window = nil
	}
	if e.ctx != nil {
		e.ctx.Destroy()
		e.ctx = nil
	}
}
