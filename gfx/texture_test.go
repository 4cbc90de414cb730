// Copyright (c) 2026 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package gfx_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/devblok/lumen/gfx"
)

type stubAllocation struct {
	size     uint64
	released int
}

func (a *stubAllocation) Handle() interface{} { return nil }

func (a *stubAllocation) AllocationSize() uint64 { return a.size }

func (a *stubAllocation) Release() { a.released++ }

// stubAllocator satisfies gfx.Allocator without touching a device. It
// pads the allocation to model driver alignment overhead.
type stubAllocator struct {
	pad  uint64
	last *stubAllocation
}

func (a *stubAllocator) Alloc(info gfx.TextureCreateInfo, name string) gfx.Allocation {
	a.last = &stubAllocation{size: info.RequestSize() + a.pad}
	return a.last
}

func TestRequestSizeSingleLevel(t *testing.T) {
	c := qt.New(t)

	info := gfx.TextureCreateInfo{
		Extent: gfx.Extent3D{Width: 256, Height: 128},
		Format: gfx.FormatRGBA8Unorm,
	}
	c.Assert(info.RequestSize(), qt.Equals, uint64(256*128*4))
}

func TestRequestSizeMipChain(t *testing.T) {
	c := qt.New(t)

	info := gfx.TextureCreateInfo{
		Extent:    gfx.Extent3D{Width: 4, Height: 4},
		Format:    gfx.FormatR8Unorm,
		MipLevels: 3,
	}
	// 4x4 + 2x2 + 1x1
	c.Assert(info.RequestSize(), qt.Equals, uint64(16+4+1))
}

func TestRequestSizeClampsDegenerateLevels(t *testing.T) {
	c := qt.New(t)

	// A 8x1 chain never drops below one texel per axis.
	info := gfx.TextureCreateInfo{
		Extent:    gfx.Extent3D{Width: 8, Height: 1},
		Format:    gfx.FormatR8Unorm,
		MipLevels: 4,
	}
	c.Assert(info.RequestSize(), qt.Equals, uint64(8+4+2+1))
}

func TestRequestSizeIsDeterministic(t *testing.T) {
	c := qt.New(t)

	info := gfx.TextureCreateInfo{
		Extent:    gfx.Extent3D{Width: 1920, Height: 1080, Depth: 1},
		Format:    gfx.FormatRGBA16Float,
		MipLevels: 5,
	}
	first := info.RequestSize()
	for i := 0; i < 100; i++ {
		c.Assert(info.RequestSize(), qt.Equals, first)
	}
}

func TestTextureReportsBothSizes(t *testing.T) {
	c := qt.New(t)

	allocator := &stubAllocator{pad: 192}
	info := gfx.TextureCreateInfo{
		Extent: gfx.Extent3D{Width: 64, Height: 64},
		Format: gfx.FormatBGRA8Unorm,
		Flags:  gfx.FlagRenderTarget,
	}

	tex := gfx.NewTexture(allocator, info, "albedo")
	defer tex.Release()

	c.Assert(tex.Name(), qt.Equals, "albedo")
	c.Assert(tex.RequestSize(), qt.Equals, uint64(64*64*4))
	c.Assert(tex.AllocationSize(), qt.Equals, uint64(64*64*4+192))
	c.Assert(tex.Flags().Has(gfx.FlagRenderTarget), qt.Equals, true)
	c.Assert(tex.Flags().Has(gfx.FlagAllowUnorderedAccess), qt.Equals, false)
}

func TestViewResolvesWhileParentLives(t *testing.T) {
	c := qt.New(t)

	allocator := &stubAllocator{}
	tex := gfx.NewTexture(allocator, gfx.TextureCreateInfo{
		Extent: gfx.Extent3D{Width: 16, Height: 16},
		Format: gfx.FormatRGBA8Unorm,
	}, "lookup")

	view := tex.CreateView(gfx.TextureViewCreateInfo{MipLevels: 1, Slices: 1})
	res, err := view.Resource()
	c.Assert(err, qt.IsNil)
	c.Assert(res, qt.Equals, gfx.Resource(tex))

	tex.Release()
}

func TestViewOrphanedAfterRelease(t *testing.T) {
	c := qt.New(t)

	allocator := &stubAllocator{}
	tex := gfx.NewTexture(allocator, gfx.TextureCreateInfo{
		Extent: gfx.Extent3D{Width: 16, Height: 16},
		Format: gfx.FormatRGBA8Unorm,
	}, "transient")
	view := tex.CreateView(gfx.TextureViewCreateInfo{MipLevels: 1, Slices: 1})

	tex.Release()

	res, err := view.Resource()
	c.Assert(res, qt.IsNil)
	c.Assert(err, qt.Equals, gfx.ErrOrphan)
	c.Assert(allocator.last.released, qt.Equals, 1)
}

func TestRetainKeepsViewAlive(t *testing.T) {
	c := qt.New(t)

	allocator := &stubAllocator{}
	tex := gfx.NewTexture(allocator, gfx.TextureCreateInfo{
		Extent: gfx.Extent3D{Width: 16, Height: 16},
		Format: gfx.FormatRGBA8Unorm,
	}, "shared")
	view := tex.CreateView(gfx.TextureViewCreateInfo{MipLevels: 1, Slices: 1})

	tex.Retain()
	tex.Release()

	_, err := view.Resource()
	c.Assert(err, qt.IsNil)
	c.Assert(allocator.last.released, qt.Equals, 0)

	tex.Release()

	_, err = view.Resource()
	c.Assert(err, qt.Equals, gfx.ErrOrphan)
	c.Assert(allocator.last.released, qt.Equals, 1)
}

func BenchmarkRequestSizeFullChain(b *testing.B) {
	info := gfx.TextureCreateInfo{
		Extent:    gfx.Extent3D{Width: 4096, Height: 4096},
		Format:    gfx.FormatRGBA8Unorm,
		MipLevels: 13,
	}
	for idx := 0; idx < b.N; idx++ {
		info.RequestSize()
	}
}
