// Copyright (c) 2026 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package gfx

import "sync/atomic"

// TextureCreateInfo describes a texture to be created.
type TextureCreateInfo struct {
	Extent    Extent3D
	Format    Format
	MipLevels uint32
	Flags     ResourceFlag
}

// RequestSize computes the byte size of the full mip chain. It is a pure
// function of format, extent and mip count; no device interaction occurs.
func (ci TextureCreateInfo) RequestSize() uint64 {
	texel := ci.Format.TexelSize()
	levels := ci.MipLevels
	if levels == 0 {
		levels = 1
	}
	depth := ci.Extent.Depth
	if depth == 0 {
		depth = 1
	}

	var total uint64
	for level := uint32(0); level < levels; level++ {
		w := ci.Extent.Width >> level
		if w == 0 {
			w = 1
		}
		h := ci.Extent.Height >> level
		if h == 0 {
			h = 1
		}
		total += uint64(w) * uint64(h) * uint64(depth) * texel
	}
	return total
}

// TextureInfo carries the resolved properties of a created texture.
type TextureInfo struct {
	Base   ResourceInfo
	Extent Extent3D
	Format Format
}

// TextureViewCreateInfo selects the sub-range of a texture a view covers.
type TextureViewCreateInfo struct {
	BaseMip   uint32
	MipLevels uint32
	BaseSlice uint32
	Slices    uint32
}

// NewTexture creates a texture backed by the given allocator. Creation is
// infallible at this layer; allocation failures surface lazily through the
// backing Allocation. The returned texture holds one owning reference.
func NewTexture(allocator Allocator, info TextureCreateInfo, name string) *Texture {
	alloc := allocator.Alloc(info, name)
	return &Texture{
		name:    name,
		refs:    1,
		backing: alloc,
		info: TextureInfo{
			Base: ResourceInfo{
				Flags:          info.Flags,
				RequestSize:    info.RequestSize(),
				AllocationSize: alloc.AllocationSize(),
			},
			Extent: info.Extent,
			Format: info.Format,
		},
	}
}

// Texture is a GPU-resident image resource. The backing allocation's
// lifetime is tied 1:1 to the texture: it is released when the last owning
// reference drops.
type Texture struct {
	name    string
	info    TextureInfo
	refs    int32
	backing Allocation
}

// Retain adds an owning reference. Every Retain must be paired with a
// Release.
func (t *Texture) Retain() {
	atomic.AddInt32(&t.refs, 1)
}

// Release drops an owning reference. The backing allocation is released
// exactly once, when the count reaches zero.
func (t *Texture) Release() {
	if atomic.AddInt32(&t.refs, -1) == 0 {
		t.backing.Release()
	}
}

// CreateView produces a non-owning view over the given sub-range. The view
// does not extend the texture's lifetime.
func (t *Texture) CreateView(info TextureViewCreateInfo) *TextureView {
	return &TextureView{
		parent: t,
		info:   info,
	}
}

// Name returns the debug name given at creation.
func (t *Texture) Name() string {
	return t.name
}

// Info returns the resolved texture properties.
func (t *Texture) Info() TextureInfo {
	return t.info
}

// Backing returns the backing GPU allocation.
func (t *Texture) Backing() Allocation {
	return t.backing
}

// Flags implements Resource.
func (t *Texture) Flags() ResourceFlag {
	return t.info.Base.Flags
}

// RequestSize implements Resource.
func (t *Texture) RequestSize() uint64 {
	return t.info.Base.RequestSize
}

// AllocationSize implements Resource.
func (t *Texture) AllocationSize() uint64 {
	return t.info.Base.AllocationSize
}

func (t *Texture) alive() bool {
	return atomic.LoadInt32(&t.refs) > 0
}

// TextureView observes a sub-range of a Texture without owning it.
type TextureView struct {
	parent *Texture
	info   TextureViewCreateInfo
}

// Resource resolves the parent texture. Returns ErrOrphan once the
// texture's last owning reference has been dropped; never a stale handle.
func (v *TextureView) Resource() (Resource, error) {
	if v.parent == nil || !v.parent.alive() {
		return nil, ErrOrphan
	}
	return v.parent, nil
}

// Info returns the sub-range the view covers.
func (v *TextureView) Info() TextureViewCreateInfo {
	return v.info
}

var (
	_ Resource     = (*Texture)(nil)
	_ ResourceView = (*TextureView)(nil)
)
