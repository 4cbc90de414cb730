// Copyright (c) 2026 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package vkr backs the gfx resource model with Vulkan allocations.
package vkr

import (
	"fmt"

	vk "github.com/devblok/vulkan"
	log "github.com/sirupsen/logrus"

	"github.com/devblok/lumen/gfx"
)

// NewAllocator creates a texture allocator for the given logical device.
func NewAllocator(device vk.Device, phyDevice vk.PhysicalDevice) (*Allocator, error) {
	mem, err := NewMemoryAllocator(device, phyDevice)
	if err != nil {
		return nil, err
	}
	return &Allocator{
		device: device,
		memory: mem,
	}, nil
}

// Allocator creates Vulkan-backed texture allocations. It implements
// gfx.Allocator: GPU-side failures are deferred into the returned
// allocation rather than reported eagerly.
type Allocator struct {
	device vk.Device
	memory *MemoryAllocator
}

// Memory returns the underlying memory allocator.
func (a *Allocator) Memory() *MemoryAllocator {
	return a.memory
}

// Alloc creates an image matching the create info and binds device-local
// memory to it. On failure it logs the cause and returns an allocation
// with a nil handle and zero size.
func (a *Allocator) Alloc(info gfx.TextureCreateInfo, name string) gfx.Allocation {
	image, err := a.createImage(info)
	if err != nil {
		log.WithField("texture", name).Errorf("vkr: image creation deferred failure: %s", err)
		return &imageAllocation{err: err}
	}

	var req vk.MemoryRequirements
	vk.GetImageMemoryRequirements(a.device, image, &req)
	req.Deref()

	memory, err := a.memory.Malloc(req, vk.MemoryPropertyDeviceLocalBit)
	if err != nil {
		vk.DestroyImage(a.device, image, nil)
		log.WithField("texture", name).Errorf("vkr: memory allocation deferred failure: %s", err)
		return &imageAllocation{err: err}
	}

	vk.BindImageMemory(a.device, image, memory.Get(), 0)

	return &imageAllocation{
		device: a.device,
		image:  image,
		memory: memory,
	}
}

func (a *Allocator) createImage(info gfx.TextureCreateInfo) (vk.Image, error) {
	mips := info.MipLevels
	if mips == 0 {
		mips = 1
	}
	depth := info.Extent.Depth
	if depth == 0 {
		depth = 1
	}
	usage := vk.ImageUsageFlags(vk.ImageUsageSampledBit | vk.ImageUsageTransferDstBit)
	if info.Flags.Has(gfx.FlagRenderTarget) {
		usage |= vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit)
	}
	if info.Flags.Has(gfx.FlagAllowUnorderedAccess) {
		usage |= vk.ImageUsageFlags(vk.ImageUsageStorageBit)
	}

	createInfo := vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: vk.ImageType2d,
		Extent: vk.Extent3D{
			Width:  info.Extent.Width,
			Height: info.Extent.Height,
			Depth:  depth,
		},
		MipLevels:     mips,
		ArrayLayers:   1,
		Format:        ToVkFormat(info.Format),
		Tiling:        vk.ImageTilingOptimal,
		InitialLayout: vk.ImageLayoutUndefined,
		Usage:         usage,
		SharingMode:   vk.SharingModeExclusive,
		Samples:       vk.SampleCount1Bit,
	}

	var image vk.Image
	if err := vk.Error(vk.CreateImage(a.device, &createInfo, nil, &image)); err != nil {
		return vk.NullImage, fmt.Errorf("vk.CreateImage(): %s", err.Error())
	}
	return image, nil
}

// imageAllocation ties a vulkan image and its memory to a gfx resource.
type imageAllocation struct {
	device vk.Device
	image  vk.Image
	memory Memory
	err    error
}

// Handle implements gfx.Allocation.
func (ia *imageAllocation) Handle() interface{} {
	if ia.err != nil {
		return nil
	}
	return ia.image
}

// AllocationSize implements gfx.Allocation.
func (ia *imageAllocation) AllocationSize() uint64 {
	return ia.memory.Size()
}

// Release implements gfx.Allocation.
func (ia *imageAllocation) Release() {
	if ia.err != nil {
		return
	}
	vk.DestroyImage(ia.device, ia.image, nil)
	ia.memory.Release()
}

// ToVkFormat maps a gfx format onto the Vulkan format enumeration.
func ToVkFormat(f gfx.Format) vk.Format {
	switch f {
	case gfx.FormatR8Unorm:
		return vk.FormatR8Unorm
	case gfx.FormatRG8Unorm:
		return vk.FormatR8g8Unorm
	case gfx.FormatRGBA8Unorm:
		return vk.FormatR8g8b8a8Unorm
	case gfx.FormatRGBA8UnormSRGB:
		return vk.FormatR8g8b8a8Srgb
	case gfx.FormatBGRA8Unorm:
		return vk.FormatB8g8r8a8Unorm
	case gfx.FormatBGRA8UnormSRGB:
		return vk.FormatB8g8r8a8Srgb
	case gfx.FormatRGBA16Float:
		return vk.FormatR16g16b16a16Sfloat
	case gfx.FormatRGBA32Float:
		return vk.FormatR32g32b32a32Sfloat
	case gfx.FormatD16Unorm:
		return vk.FormatD16Unorm
	default:
		return vk.FormatUndefined
	}
}

// FromVkFormat maps a Vulkan format back onto the gfx enumeration.
// Formats outside the supported set map to FormatUndefined.
func FromVkFormat(f vk.Format) gfx.Format {
	switch f {
	case vk.FormatR8Unorm:
		return gfx.FormatR8Unorm
	case vk.FormatR8g8Unorm:
		return gfx.FormatRG8Unorm
	case vk.FormatR8g8b8a8Unorm:
		return gfx.FormatRGBA8Unorm
	case vk.FormatR8g8b8a8Srgb:
		return gfx.FormatRGBA8UnormSRGB
	case vk.FormatB8g8r8a8Unorm:
		return gfx.FormatBGRA8Unorm
	case vk.FormatB8g8r8a8Srgb:
		return gfx.FormatBGRA8UnormSRGB
	case vk.FormatR16g16b16a16Sfloat:
		return gfx.FormatRGBA16Float
	case vk.FormatR32g32b32a32Sfloat:
		return gfx.FormatRGBA32Float
	case vk.FormatD16Unorm:
		return gfx.FormatD16Unorm
	default:
		return gfx.FormatUndefined
	}
}

var _ gfx.Allocator = (*Allocator)(nil)
