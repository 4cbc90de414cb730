// Copyright (c) 2026 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package wsi is the SDL2 window system glue. It owns window creation,
// Vulkan surface creation and the translation of SDL events into the
// events the engine consumes. Everything here must run on the thread
// that called Init.
package wsi

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/devblok/lumen/core"
	"github.com/devblok/lumen/gfx"
)

// redrawEventType is registered once in Init. RequestRedraw pushes
// events of this type onto the SDL queue.
var redrawEventType uint32

// Init brings up SDL with video and loads the Vulkan library. Call
// Terminate when done.
func Init() error {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return fmt.Errorf("sdl.Init(): %w", err)
	}
	if err := sdl.VulkanLoadLibrary(""); err != nil {
		sdl.Quit()
		return fmt.Errorf("sdl.VulkanLoadLibrary(): %w", err)
	}
	redrawEventType = sdl.RegisterEvents(1)
	return nil
}

// Terminate unloads the Vulkan library and shuts SDL down.
func Terminate() {
	sdl.VulkanUnloadLibrary()
	sdl.Quit()
}

// Window wraps an SDL window created for Vulkan rendering.
type Window struct {
	window *sdl.Window
}

// Extent implements core.Window. Reports the drawable size, which on
// high-DPI displays differs from the logical window size.
func (w *Window) Extent() gfx.Extent2D {
	width, height := w.window.VulkanGetDrawableSize()
	return gfx.Extent2D{
		Width:  uint32(width),
		Height: uint32(height),
	}
}

// RequestRedraw implements core.Window. The request lands on the SDL
// event queue, so redraws interleave with input events instead of
// starving them.
func (w *Window) RequestRedraw() {
	sdl.PushEvent(&sdl.UserEvent{
		Type:     redrawEventType,
		WindowID: w.window.GetID(),
	})
}

// Destroy implements core.Window
func (w *Window) Destroy() {
	w.window.Destroy()
}

// Platform implements core.Platform on top of SDL2.
type Platform struct{}

// NewPlatform returns the SDL platform. Init must have run.
func NewPlatform() *Platform {
	return &Platform{}
}

// AcquireContext implements core.Platform. The required instance
// extensions are queried through a hidden throwaway window, since SDL
// only exposes them per window while the device context exists before
// any visible window does.
func (p *Platform) AcquireContext(cfg core.Configuration) (core.Context, error) {
	probe, err := sdl.CreateWindow("probe",
		sdl.WINDOWPOS_UNDEFINED,
		sdl.WINDOWPOS_UNDEFINED,
		1, 1,
		sdl.WINDOW_VULKAN|sdl.WINDOW_HIDDEN)
	if err != nil {
		return nil, core.Unavailablef("sdl.CreateWindow(probe): %s", err)
	}
	extensions := probe.VulkanGetInstanceExtensions()
	probe.Destroy()

	icfg := core.InstanceConfiguration{
		DebugMode:        cfg.Renderer.DebugMode,
		Extensions:       extensions,
		Layers:           []string{},
		DeviceExtensions: cfg.Renderer.DeviceExtensions,
	}
	return core.AcquireVulkanContext(core.DefaultApplicationInfo, sdl.VulkanGetVkGetInstanceProcAddr(), icfg)
}

// CreateWindow implements core.Platform
func (p *Platform) CreateWindow(cfg core.RendererConfiguration) (core.Window, error) {
	window, err := sdl.CreateWindow("Lumen",
		sdl.WINDOWPOS_UNDEFINED,
		sdl.WINDOWPOS_UNDEFINED,
		int32(cfg.ScreenWidth),
		int32(cfg.ScreenHeight),
		sdl.WINDOW_VULKAN|sdl.WINDOW_RESIZABLE)
	if err != nil {
		return nil, fmt.Errorf("sdl.CreateWindow(): %w", err)
	}
	return &Window{window: window}, nil
}

// BindSurface implements core.Platform. The surface handle is created
// against the resolved window and handed to the swapchain, which owns
// it from then on.
func (p *Platform) BindSurface(ctx core.Context, windows *core.WindowRegistry, id core.WindowID, cfg core.RendererConfiguration) (core.Surface, error) {
	vc, ok := ctx.(*core.VulkanContext)
	if !ok {
		return nil, errors.New("wsi: context is not a Vulkan context")
	}
	win, ok := windows.Resolve(id)
	if !ok {
		return nil, core.Unavailablef("window %d is gone", id)
	}
	sw, ok := win.(*Window)
	if !ok {
		return nil, errors.New("wsi: window was not created by this platform")
	}

	surface, err := sw.window.VulkanCreateSurface(vc.Instance())
	if err != nil {
		return nil, core.Unavailablef("sdl.VulkanCreateSurface(): %s", err)
	}
	return core.NewVulkanSwapchain(vc, unsafe.Pointer(surface), windows, id, cfg)
}

// Translate maps an SDL event to an engine event. The second return is
// false for events the engine has no interest in.
func Translate(event sdl.Event) (core.Event, bool) {
	// Registered event types have no dedicated struct, match by type id.
	if event.GetType() == redrawEventType {
		return core.RedrawEvent{}, true
	}
	switch et := event.(type) {
	case *sdl.QuitEvent:
		return core.CloseEvent{}, true
	case *sdl.KeyboardEvent:
		if et.Keysym.Sym == sdl.K_ESCAPE && et.State == sdl.RELEASED {
			return core.CloseEvent{}, true
		}
	case *sdl.WindowEvent:
		if et.Event == sdl.WINDOWEVENT_SIZE_CHANGED || et.Event == sdl.WINDOWEVENT_RESIZED {
			// Data1/Data2 are logical units; the swapchain works in
			// drawable pixels, which differ on high-DPI displays.
			extent := gfx.Extent2D{
				Width:  uint32(et.Data1),
				Height: uint32(et.Data2),
			}
			if w, err := sdl.GetWindowFromID(et.WindowID); err == nil {
				width, height := w.VulkanGetDrawableSize()
				extent = gfx.Extent2D{
					Width:  uint32(width),
					Height: uint32(height),
				}
			}
			return core.ResizeEvent{Extent: extent}, true
		}
	}
	return nil, false
}

var _ core.Window = (*Window)(nil)
var _ core.Platform = (*Platform)(nil)
