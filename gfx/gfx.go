// Copyright (c) 2026 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package gfx defines the resource ownership model shared by all renderers:
// resources exclusively own GPU memory, views observe resources without
// owning them, and every access through a view goes through a fallible
// resolution step.
package gfx

import "errors"

// ErrOrphan is reported when a view's backing resource has been destroyed.
// It is the only way late code can detect a dead resource instead of
// dereferencing freed memory.
var ErrOrphan = errors.New("gfx: view is orphaned, backing resource destroyed")

// Releasable defines any memory-occupying item that can be freed.
type Releasable interface {

	// Release releases memory occupied by the implementing structure.
	Release()
}

// Resource describes a rendering resource that exclusively owns a GPU
// allocation and reports its size and flags.
type Resource interface {

	// Flags returns the creation flags of the resource.
	Flags() ResourceFlag

	// RequestSize returns the byte size computed from the create info.
	// It is a pure function of format, extent and mip count.
	RequestSize() uint64

	// AllocationSize returns the byte size the device actually reserved.
	// Zero when the backing allocator does not report it.
	AllocationSize() uint64
}

// ResourceView observes a Resource without owning it. A view never
// extends the lifetime of its resource.
type ResourceView interface {

	// Resource resolves the backing resource. Returns ErrOrphan once the
	// resource's last owning reference has been dropped.
	Resource() (Resource, error)
}

// ResourceFlag is a bitset of resource capabilities.
type ResourceFlag uint32

// Resource capability flags.
const (
	FlagNone                 ResourceFlag = 0x00000000
	FlagAllowUnorderedAccess ResourceFlag = 0x00000001
	FlagRenderTarget         ResourceFlag = 0x00000002
)

// Has reports whether all bits of f are set.
func (r ResourceFlag) Has(f ResourceFlag) bool {
	return r&f == f
}

// Extent2D describes a two dimensional size in pixels.
type Extent2D struct {
	Width, Height uint32
}

// Extent3D describes a three dimensional size in pixels.
type Extent3D struct {
	Width, Height, Depth uint32
}

// ResourceInfo carries the bookkeeping common to all resources.
type ResourceInfo struct {
	Flags          ResourceFlag
	RequestSize    uint64
	AllocationSize uint64
}

// Allocation is a backing GPU allocation handed out by an Allocator.
// Allocation failures are deferred: a failed allocation still yields a
// usable value whose Handle is nil and whose size is zero.
type Allocation interface {
	Releasable

	// Handle returns the native handle of the underlying API,
	// or nil when the allocation failed.
	Handle() interface{}

	// AllocationSize returns the byte size reserved on the device.
	AllocationSize() uint64
}

// Allocator creates backing allocations for resources. Implementations
// must not fail eagerly; GPU-side errors surface on first use of the
// returned Allocation.
type Allocator interface {
	Alloc(info TextureCreateInfo, name string) Allocation
}
