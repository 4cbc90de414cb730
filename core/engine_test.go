// Copyright (c) 2026 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core_test

import (
	"errors"
	"testing"

	"github.com/devblok/lumen/core"
	"github.com/devblok/lumen/gfx"
)

type fakeWindow struct {
	extent    gfx.Extent2D
	redraws   int
	destroyed bool
}

func (w *fakeWindow) Extent() gfx.Extent2D { return w.extent }

func (w *fakeWindow) RequestRedraw() { w.redraws++ }

func (w *fakeWindow) Destroy() { w.destroyed = true }

type fakeTarget struct {
	extent gfx.Extent2D
}

func (t fakeTarget) Extent() gfx.Extent2D { return t.extent }

type fakeContext struct {
	submits   int
	submitErr error
	destroyed bool
}

func (c *fakeContext) Submit(core.Target) error {
	c.submits++
	return c.submitErr
}

func (c *fakeContext) Destroy() { c.destroyed = true }

type fakeSurface struct {
	core.SurfaceState

	configures   []gfx.Extent2D
	configureErr error
	acquireErr   error
	presents     int
	destroyed    bool
}

func (s *fakeSurface) Configure(extent gfx.Extent2D) error {
	if s.configureErr != nil {
		return s.configureErr
	}
	s.configures = append(s.configures, extent)
	s.MarkConfigured(extent)
	return nil
}

func (s *fakeSurface) Acquire() (core.Target, error) {
	if s.acquireErr != nil {
		return nil, s.acquireErr
	}
	return fakeTarget{extent: s.Extent()}, nil
}

func (s *fakeSurface) Present(core.Target) error {
	s.presents++
	return nil
}

func (s *fakeSurface) Destroy() { s.destroyed = true }

// fakePlatform fails surface binding bindFailures times before letting
// it succeed, to exercise the retry budget.
type fakePlatform struct {
	ctx        *fakeContext
	acquireErr error

	window *fakeWindow

	bindFailures int
	bindAttempts int
	surface      *fakeSurface
}

func (p *fakePlatform) AcquireContext(core.Configuration) (core.Context, error) {
	if p.acquireErr != nil {
		return nil, p.acquireErr
	}
	return p.ctx, nil
}

func (p *fakePlatform) CreateWindow(cfg core.RendererConfiguration) (core.Window, error) {
	p.window = &fakeWindow{extent: gfx.Extent2D{Width: cfg.ScreenWidth, Height: cfg.ScreenHeight}}
	return p.window, nil
}

func (p *fakePlatform) BindSurface(_ core.Context, windows *core.WindowRegistry, id core.WindowID, _ core.RendererConfiguration) (core.Surface, error) {
	p.bindAttempts++
	if p.bindAttempts <= p.bindFailures {
		return nil, errors.New("binding refused")
	}
	win, ok := windows.Resolve(id)
	if !ok {
		return nil, errors.New("window gone")
	}
	p.surface = &fakeSurface{
		SurfaceState: core.NewSurfaceState(windows, id, win.Extent(), gfx.FormatBGRA8Unorm),
	}
	return p.surface, nil
}

func newTestEngine(t *testing.T, platform *fakePlatform) *core.Engine {
	t.Helper()
	engine, err := core.NewEngine(core.DefaultConfiguration(), platform)
	if err != nil {
		t.Fatal(err)
	}
	return engine
}

func TestNewEngineRequiresDevice(t *testing.T) {
	platform := &fakePlatform{acquireErr: core.Unavailablef("no adapters")}
	if _, err := core.NewEngine(core.DefaultConfiguration(), platform); !errors.Is(err, core.ErrUnavailable) {
		t.Errorf("expected unavailable error, got %v", err)
	}
}

func TestResumedSucceedsWithinRetryBudget(t *testing.T) {
	platform := &fakePlatform{ctx: &fakeContext{}, bindFailures: 2}
	engine := newTestEngine(t, platform)

	if err := engine.Resumed(); err != nil {
		t.Fatal(err)
	}
	if engine.State() != core.Renderable {
		t.Errorf("state %s, want Renderable", engine.State())
	}
	if platform.bindAttempts != 3 {
		t.Errorf("bind attempts %d, want 3", platform.bindAttempts)
	}
	if platform.window.redraws != 1 {
		t.Errorf("redraw requests %d, want 1", platform.window.redraws)
	}
	want := gfx.Extent2D{Width: 800, Height: 600}
	if len(platform.surface.configures) != 1 || platform.surface.configures[0] != want {
		t.Errorf("surface configured for %v, want one configure at %v", platform.surface.configures, want)
	}
}

func TestResumedFailsWhenBudgetExhausted(t *testing.T) {
	platform := &fakePlatform{ctx: &fakeContext{}, bindFailures: 3}
	engine := newTestEngine(t, platform)

	if err := engine.Resumed(); err == nil {
		t.Fatal("expected error after exhausted retries")
	}
	if platform.bindAttempts != 3 {
		t.Errorf("bind attempts %d, want exactly 3", platform.bindAttempts)
	}
	if engine.State() == core.Renderable {
		t.Error("engine must not become renderable without a surface")
	}
	if !platform.window.destroyed {
		t.Error("window should be destroyed when binding fails for good")
	}
}

func TestResumedIgnoredOutsideDeviceReady(t *testing.T) {
	platform := &fakePlatform{ctx: &fakeContext{}}
	engine := newTestEngine(t, platform)

	if err := engine.Resumed(); err != nil {
		t.Fatal(err)
	}
	if err := engine.Resumed(); err != nil {
		t.Fatal(err)
	}
	if platform.bindAttempts != 1 {
		t.Errorf("second resume must not rebind, attempts %d", platform.bindAttempts)
	}
}

func TestRedrawRendersAndRequestsNext(t *testing.T) {
	platform := &fakePlatform{ctx: &fakeContext{}}
	engine := newTestEngine(t, platform)
	if err := engine.Resumed(); err != nil {
		t.Fatal(err)
	}

	if err := engine.Handle(core.RedrawEvent{}); err != nil {
		t.Fatal(err)
	}
	if platform.ctx.submits != 1 {
		t.Errorf("submits %d, want 1", platform.ctx.submits)
	}
	if platform.surface.presents != 1 {
		t.Errorf("presents %d, want 1", platform.surface.presents)
	}
	if platform.window.redraws != 2 {
		t.Errorf("redraw requests %d, want 2", platform.window.redraws)
	}
}

func TestRenderFailureDropsFrame(t *testing.T) {
	platform := &fakePlatform{ctx: &fakeContext{}}
	engine := newTestEngine(t, platform)
	if err := engine.Resumed(); err != nil {
		t.Fatal(err)
	}
	platform.surface.acquireErr = core.ErrSurfaceLost

	if err := engine.Handle(core.RedrawEvent{}); err != nil {
		t.Errorf("render failure must not propagate, got %v", err)
	}
	if platform.ctx.submits != 0 {
		t.Error("nothing should be submitted after failed acquisition")
	}
	if platform.window.redraws != 1 {
		t.Error("a dropped frame must not request another redraw")
	}
}

func TestResizeReconfiguresWithoutRender(t *testing.T) {
	platform := &fakePlatform{ctx: &fakeContext{}}
	engine := newTestEngine(t, platform)
	if err := engine.Resumed(); err != nil {
		t.Fatal(err)
	}

	resized := gfx.Extent2D{Width: 1024, Height: 768}
	if err := engine.Handle(core.ResizeEvent{Extent: resized}); err != nil {
		t.Fatal(err)
	}
	if platform.surface.Extent() != resized {
		t.Errorf("surface extent %v, want %v", platform.surface.Extent(), resized)
	}
	if platform.ctx.submits != 0 {
		t.Error("resize must not render")
	}
	if platform.window.redraws != 2 {
		t.Errorf("resize must queue exactly one redraw, requests %d", platform.window.redraws)
	}
}

func TestDroppedFrameAfterResizeRecovers(t *testing.T) {
	platform := &fakePlatform{ctx: &fakeContext{}}
	engine := newTestEngine(t, platform)
	if err := engine.Resumed(); err != nil {
		t.Fatal(err)
	}

	// The surface goes bad across the resize; the frame the resize
	// queued gets dropped without requesting a follow-up.
	platform.surface.acquireErr = core.ErrSurfaceLost
	if err := engine.Handle(core.ResizeEvent{Extent: gfx.Extent2D{Width: 1024, Height: 768}}); err != nil {
		t.Fatal(err)
	}
	if err := engine.Handle(core.RedrawEvent{}); err != nil {
		t.Fatal(err)
	}
	if platform.window.redraws != 2 {
		t.Fatalf("redraw requests %d, want 2", platform.window.redraws)
	}

	// Rendering resumes on the next resize-driven redraw once the
	// surface works again; the loop never wedged.
	platform.surface.acquireErr = nil
	if err := engine.Handle(core.ResizeEvent{Extent: gfx.Extent2D{Width: 1280, Height: 720}}); err != nil {
		t.Fatal(err)
	}
	if err := engine.Handle(core.RedrawEvent{}); err != nil {
		t.Fatal(err)
	}
	if platform.ctx.submits != 1 {
		t.Errorf("submits %d, want 1", platform.ctx.submits)
	}
	if platform.window.redraws != 4 {
		t.Errorf("redraw requests %d, want 4", platform.window.redraws)
	}
}

func TestCloseTerminatesLoop(t *testing.T) {
	platform := &fakePlatform{ctx: &fakeContext{}}
	engine := newTestEngine(t, platform)
	if err := engine.Resumed(); err != nil {
		t.Fatal(err)
	}

	if err := engine.Handle(core.CloseEvent{}); err != nil {
		t.Fatal(err)
	}
	if !engine.Done() {
		t.Error("engine should be done after close")
	}
	if engine.State() != core.ShuttingDown {
		t.Errorf("state %s, want ShuttingDown", engine.State())
	}

	// Redraws after close are no-ops.
	if err := engine.Handle(core.RedrawEvent{}); err != nil {
		t.Fatal(err)
	}
	if platform.ctx.submits != 0 {
		t.Error("no rendering after shutdown started")
	}

	// A second close is idempotent.
	if err := engine.Handle(core.CloseEvent{}); err != nil {
		t.Fatal(err)
	}
}

func TestDestroyTearsEverythingDown(t *testing.T) {
	platform := &fakePlatform{ctx: &fakeContext{}}
	engine := newTestEngine(t, platform)
	if err := engine.Resumed(); err != nil {
		t.Fatal(err)
	}
	surface := platform.surface

	engine.Destroy()

	if !surface.destroyed {
		t.Error("surface not destroyed")
	}
	if !platform.window.destroyed {
		t.Error("window not destroyed")
	}
	if !platform.ctx.destroyed {
		t.Error("context not destroyed")
	}
	if surface.Valid() {
		t.Error("surface must not resolve the window after teardown")
	}
}
