// Copyright (c) 2026 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"fmt"
	"math"
	"unsafe"

	vk "github.com/devblok/vulkan"
	"github.com/go-gl/mathgl/mgl32"
	log "github.com/sirupsen/logrus"

	"github.com/devblok/lumen/gfx"
	"github.com/devblok/lumen/gfx/vkr"
)

// NewVulkanSwapchain binds a Vulkan surface to the window resolved
// through the registry. The first supported surface format is selected as
// the working color format; no fallback search is performed. The window's
// current extent is recorded as the initial target size, but the surface
// is NOT configured yet; Configure must run before the first acquisition.
func NewVulkanSwapchain(ctx *VulkanContext, pSurface unsafe.Pointer, windows *WindowRegistry, window WindowID, cfg RendererConfiguration) (*VulkanSwapchain, error) {
	surface := vk.SurfaceFromPointer(uintptr(pSurface))

	var formatCount uint32
	if err := vk.Error(vk.GetPhysicalDeviceSurfaceFormats(ctx.adapter, surface, &formatCount, nil)); err != nil {
		return nil, Unavailablef("vk.GetPhysicalDeviceSurfaceFormats(): %s", err)
	}
	if formatCount == 0 {
		return nil, Unavailablef("surface reports no supported formats")
	}
	surfaceFormats := make([]vk.SurfaceFormat, formatCount)
	if err := vk.Error(vk.GetPhysicalDeviceSurfaceFormats(ctx.adapter, surface, &formatCount, surfaceFormats)); err != nil {
		return nil, Unavailablef("vk.GetPhysicalDeviceSurfaceFormats(): %s", err)
	}
	surfaceFormats[0].Deref()

	win, ok := windows.Resolve(window)
	if !ok {
		return nil, Unavailablef("window is gone before surface binding completed")
	}

	latency := cfg.FrameLatency
	if latency == 0 {
		latency = 2
	}

	s := &VulkanSwapchain{
		SurfaceState: NewSurfaceState(windows, window, win.Extent(), vkr.FromVkFormat(surfaceFormats[0].Format)),
		ctx:          ctx,
		surface:      surface,
		format:       surfaceFormats[0].Format,
		viewFormat:   srgbAlias(surfaceFormats[0].Format),
		colorSpace:   surfaceFormats[0].ColorSpace,
		latency:      latency,
		clear:        cfg.ClearColor,
	}
	log.Infof("swapchain: surface format %s selected", s.Format())

	if err := s.createSynchronization(); err != nil {
		return nil, err
	}
	if err := s.createCommandPool(); err != nil {
		s.destroySynchronization()
		return nil, err
	}
	return s, nil
}

// VulkanSwapchain is the Vulkan presentation surface. It owns the
// OS-level surface handle exclusively; the window is held only through
// the registry handle embedded in SurfaceState.
type VulkanSwapchain struct {
	SurfaceState

	ctx *VulkanContext

	surface    vk.Surface
	format     vk.Format
	viewFormat vk.Format
	colorSpace vk.ColorSpace

	swapchain    vk.Swapchain
	images       []vk.Image
	views        []vk.ImageView
	renderPass   vk.RenderPass
	framebuffers []vk.Framebuffer

	commandPool    vk.CommandPool
	commandBuffers []vk.CommandBuffer

	imageAvailable vk.Semaphore
	renderFinished vk.Semaphore

	latency uint32
	clear   mgl32.Vec4
}

// Configure (re)creates the swapchain for the extent: color-attachment
// usage only, the chosen format with its sRGB alias as the view format,
// FIFO presentation, image count derived from the frame latency cap, and
// the first supported composite alpha mode. The configured extent is
// recorded only on success.
func (s *VulkanSwapchain) Configure(extent gfx.Extent2D) error {
	var caps vk.SurfaceCapabilities
	if err := vk.Error(vk.GetPhysicalDeviceSurfaceCapabilities(s.ctx.adapter, s.surface, &caps)); err != nil {
		return fmt.Errorf("vk.GetPhysicalDeviceSurfaceCapabilities(): %s", err)
	}
	caps.Deref()

	compositeAlpha := vk.CompositeAlphaOpaqueBit
	compositeAlphaFlags := []vk.CompositeAlphaFlagBits{
		vk.CompositeAlphaOpaqueBit,
		vk.CompositeAlphaPreMultipliedBit,
		vk.CompositeAlphaPostMultipliedBit,
		vk.CompositeAlphaInheritBit,
	}
	for i := 0; i < len(compositeAlphaFlags); i++ {
		alphaFlags := vk.CompositeAlphaFlags(compositeAlphaFlags[i])
		if caps.SupportedCompositeAlpha&alphaFlags != 0 {
			compositeAlpha = compositeAlphaFlags[i]
			break
		}
	}

	minImages := s.latency + 1
	if minImages < caps.MinImageCount {
		minImages = caps.MinImageCount
	}
	if caps.MaxImageCount > 0 && minImages > caps.MaxImageCount {
		minImages = caps.MaxImageCount
	}

	scci := vk.SwapchainCreateInfo{
		SType:           vk.StructureTypeSwapchainCreateInfo,
		Surface:         s.surface,
		MinImageCount:   minImages,
		ImageFormat:     s.format,
		ImageColorSpace: s.colorSpace,
		ImageExtent: vk.Extent2D{
			Width:  extent.Width,
			Height: extent.Height,
		},
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		PreTransform:     vk.SurfaceTransformIdentityBit,
		CompositeAlpha:   compositeAlpha,
		PresentMode:      vk.PresentModeFifo,
		Clipped:          vk.True,
		ImageArrayLayers: 1,
		ImageSharingMode: vk.SharingModeExclusive,
		OldSwapchain:     s.swapchain,
	}

	// The previous configuration stays untouched until the replacement
	// swapchain exists, so a failed create leaves a usable surface behind.
	var swapchain vk.Swapchain
	if res := vk.CreateSwapchain(s.ctx.device, &scci, nil, &swapchain); res != vk.Success {
		return fmt.Errorf("vk.CreateSwapchain(): %w", fromResult(res))
	}
	if s.swapchain != vk.NullSwapchain {
		vk.DeviceWaitIdle(s.ctx.device)
		s.releaseFrameResources()
		vk.DestroySwapchain(s.ctx.device, s.swapchain, nil)
	}
	s.swapchain = swapchain

	if err := s.fetchImages(); err != nil {
		return err
	}
	if err := s.createImageViews(); err != nil {
		return err
	}
	if err := s.createRenderPass(); err != nil {
		return err
	}
	if err := s.createFramebuffers(extent); err != nil {
		return err
	}
	if err := s.recordClearBuffers(extent); err != nil {
		return err
	}

	s.MarkConfigured(extent)
	log.Debugf("swapchain: configured for %dx%d with %d images", extent.Width, extent.Height, len(s.images))
	return nil
}

// Acquire implements Surface. A suboptimal swapchain still acquires; the
// mismatch is reported through NeedsConfiguration instead.
func (s *VulkanSwapchain) Acquire() (Target, error) {
	// A surface that was never configured, or whose last reconfiguration
	// failed partway, has no command sequence to submit against. Refuse
	// acquisition so the frame is dropped instead of handing out a
	// target that cannot be rendered.
	if s.swapchain == vk.NullSwapchain || len(s.commandBuffers) == 0 {
		return nil, fmt.Errorf("swapchain not configured: %w", ErrSurfaceLost)
	}

	var index uint32
	res := vk.AcquireNextImage(s.ctx.device, s.swapchain, math.MaxUint64, s.imageAvailable, vk.NullFence, &index)
	if res != vk.Success && res != vk.Suboptimal {
		return nil, fmt.Errorf("vk.AcquireNextImage(): %w", fromResult(res))
	}
	return &vulkanTarget{
		index:     index,
		extent:    s.Extent(),
		swapchain: s,
	}, nil
}

// Present implements Surface. It is the terminal operation on the target.
func (s *VulkanSwapchain) Present(target Target) error {
	t, ok := target.(*vulkanTarget)
	if !ok {
		return fmt.Errorf("%w: foreign target type", ErrUnexpected)
	}

	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{s.renderFinished},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{s.swapchain},
		PImageIndices:      []uint32{t.index},
	}

	res := vk.QueuePresent(s.ctx.queue, &presentInfo)
	if res != vk.Success && res != vk.Suboptimal {
		return fmt.Errorf("vk.QueuePresent(): %w", fromResult(res))
	}
	return nil
}

// Destroy implements Surface
func (s *VulkanSwapchain) Destroy() {
	vk.DeviceWaitIdle(s.ctx.device)

	s.releaseFrameResources()
	s.destroySynchronization()

	if s.commandPool != vk.NullCommandPool {
		vk.DestroyCommandPool(s.ctx.device, s.commandPool, nil)
		s.commandPool = vk.NullCommandPool
	}
	if s.swapchain != vk.NullSwapchain {
		vk.DestroySwapchain(s.ctx.device, s.swapchain, nil)
		s.swapchain = vk.NullSwapchain
	}
	vk.DestroySurface(s.ctx.instance, s.surface, nil)
}

func (s *VulkanSwapchain) fetchImages() error {
	var numImages uint32
	if err := vk.Error(vk.GetSwapchainImages(s.ctx.device, s.swapchain, &numImages, nil)); err != nil {
		return fmt.Errorf("vk.GetSwapchainImages(num): %s", err)
	}
	s.images = make([]vk.Image, numImages)
	if err := vk.Error(vk.GetSwapchainImages(s.ctx.device, s.swapchain, &numImages, s.images)); err != nil {
		return fmt.Errorf("vk.GetSwapchainImages(images): %s", err)
	}
	return nil
}

// createImageViews creates the gamma-corrected views consumers render
// through; the view format is the sRGB alias of the surface format.
func (s *VulkanSwapchain) createImageViews() error {
	s.views = make([]vk.ImageView, 0, len(s.images))
	for idx := 0; idx < len(s.images); idx++ {
		ivci := vk.ImageViewCreateInfo{
			SType:    vk.StructureTypeImageViewCreateInfo,
			Image:    s.images[idx],
			ViewType: vk.ImageViewType2d,
			Format:   s.viewFormat,
			Components: vk.ComponentMapping{
				R: vk.ComponentSwizzleIdentity,
				G: vk.ComponentSwizzleIdentity,
				B: vk.ComponentSwizzleIdentity,
				A: vk.ComponentSwizzleIdentity,
			},
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
				BaseMipLevel:   0,
				LevelCount:     1,
				BaseArrayLayer: 0,
				LayerCount:     1,
			},
		}

		var view vk.ImageView
		if err := vk.Error(vk.CreateImageView(s.ctx.device, &ivci, nil, &view)); err != nil {
			return fmt.Errorf("vk.CreateImageView()[%d]: %s", idx, err)
		}
		s.views = append(s.views, view)
	}
	return nil
}

func (s *VulkanSwapchain) createRenderPass() error {
	attachments := []vk.AttachmentDescription{{
		Format:         s.viewFormat,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutPresentSrc,
	}}

	colorAttachmentRef := []vk.AttachmentReference{{
		Attachment: 0,
		Layout:     vk.ImageLayoutColorAttachmentOptimal,
	}}

	subpass := vk.SubpassDescription{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: uint32(len(colorAttachmentRef)),
		PColorAttachments:    colorAttachmentRef,
	}

	dependency := vk.SubpassDependency{
		SrcSubpass:    vk.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		SrcAccessMask: 0,
		DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentWriteBit),
	}

	rpci := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
		DependencyCount: 1,
		PDependencies:   []vk.SubpassDependency{dependency},
	}

	var renderPass vk.RenderPass
	if err := vk.Error(vk.CreateRenderPass(s.ctx.device, &rpci, nil, &renderPass)); err != nil {
		return fmt.Errorf("vk.CreateRenderPass(): %s", err)
	}
	s.renderPass = renderPass
	return nil
}

func (s *VulkanSwapchain) createFramebuffers(extent gfx.Extent2D) error {
	s.framebuffers = make([]vk.Framebuffer, 0, len(s.views))
	for _, view := range s.views {
		fci := vk.FramebufferCreateInfo{
			SType:           vk.StructureTypeFramebufferCreateInfo,
			RenderPass:      s.renderPass,
			AttachmentCount: 1,
			PAttachments:    []vk.ImageView{view},
			Width:           extent.Width,
			Height:          extent.Height,
			Layers:          1,
		}

		var framebuffer vk.Framebuffer
		if err := vk.Error(vk.CreateFramebuffer(s.ctx.device, &fci, nil, &framebuffer)); err != nil {
			return fmt.Errorf("vk.CreateFramebuffer(): %s", err)
		}
		s.framebuffers = append(s.framebuffers, framebuffer)
	}
	return nil
}

// recordClearBuffers fills one command buffer per swapchain image with
// the placeholder clear: begin the render pass with a clear load op, end
// it. Draw content belongs to layers above this core.
func (s *VulkanSwapchain) recordClearBuffers(extent gfx.Extent2D) error {
	cbai := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        s.commandPool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: uint32(len(s.views)),
	}

	commandBuffers := make([]vk.CommandBuffer, len(s.views))
	if err := vk.Error(vk.AllocateCommandBuffers(s.ctx.device, &cbai, commandBuffers)); err != nil {
		return fmt.Errorf("vk.AllocateCommandBuffers(): %s", err)
	}
	s.commandBuffers = commandBuffers

	clearValues := make([]vk.ClearValue, 1)
	clearValues[0].SetColor([]float32{s.clear.X(), s.clear.Y(), s.clear.Z(), s.clear.W()})

	for idx, commandBuffer := range s.commandBuffers {
		cbbi := vk.CommandBufferBeginInfo{
			SType: vk.StructureTypeCommandBufferBeginInfo,
			Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageSimultaneousUseBit),
		}
		if err := vk.Error(vk.BeginCommandBuffer(commandBuffer, &cbbi)); err != nil {
			return fmt.Errorf("vk.BeginCommandBuffer()[%d]: %s", idx, err)
		}

		rpbi := vk.RenderPassBeginInfo{
			SType:       vk.StructureTypeRenderPassBeginInfo,
			RenderPass:  s.renderPass,
			Framebuffer: s.framebuffers[idx],
			RenderArea: vk.Rect2D{
				Offset: vk.Offset2D{X: 0, Y: 0},
				Extent: vk.Extent2D{
					Width:  extent.Width,
					Height: extent.Height,
				},
			},
			ClearValueCount: 1,
			PClearValues:    clearValues,
		}
		vk.CmdBeginRenderPass(commandBuffer, &rpbi, vk.SubpassContentsInline)
		vk.CmdEndRenderPass(commandBuffer)

		if err := vk.Error(vk.EndCommandBuffer(commandBuffer)); err != nil {
			return fmt.Errorf("vk.EndCommandBuffer()[%d]: %s", idx, err)
		}
	}
	return nil
}

func (s *VulkanSwapchain) createSynchronization() error {
	sci := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}

	var imageAvailable, renderFinished vk.Semaphore
	if err := vk.Error(vk.CreateSemaphore(s.ctx.device, &sci, nil, &imageAvailable)); err != nil {
		return fmt.Errorf("vk.CreateSemaphore(): %s", err)
	}
	if err := vk.Error(vk.CreateSemaphore(s.ctx.device, &sci, nil, &renderFinished)); err != nil {
		vk.DestroySemaphore(s.ctx.device, imageAvailable, nil)
		return fmt.Errorf("vk.CreateSemaphore(): %s", err)
	}

	s.imageAvailable = imageAvailable
	s.renderFinished = renderFinished
	return nil
}

func (s *VulkanSwapchain) destroySynchronization() {
	if s.imageAvailable != vk.NullSemaphore {
		vk.DestroySemaphore(s.ctx.device, s.imageAvailable, nil)
		s.imageAvailable = vk.NullSemaphore
	}
	if s.renderFinished != vk.NullSemaphore {
		vk.DestroySemaphore(s.ctx.device, s.renderFinished, nil)
		s.renderFinished = vk.NullSemaphore
	}
}

func (s *VulkanSwapchain) createCommandPool() error {
	cpci := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: s.ctx.queueFamily,
	}

	var commandPool vk.CommandPool
	if err := vk.Error(vk.CreateCommandPool(s.ctx.device, &cpci, nil, &commandPool)); err != nil {
		return fmt.Errorf("vk.CreateCommandPool(): %s", err)
	}
	s.commandPool = commandPool
	return nil
}

// releaseFrameResources drops everything tied to the current extent.
func (s *VulkanSwapchain) releaseFrameResources() {
	if len(s.commandBuffers) > 0 {
		vk.FreeCommandBuffers(s.ctx.device, s.commandPool, uint32(len(s.commandBuffers)), s.commandBuffers)
		s.commandBuffers = nil
	}
	for _, fb := range s.framebuffers {
		vk.DestroyFramebuffer(s.ctx.device, fb, nil)
	}
	s.framebuffers = nil

	if s.renderPass != vk.NullRenderPass {
		vk.DestroyRenderPass(s.ctx.device, s.renderPass, nil)
		s.renderPass = vk.NullRenderPass
	}
	for _, view := range s.views {
		vk.DestroyImageView(s.ctx.device, view, nil)
	}
	s.views = nil
	s.images = nil
}

// vulkanTarget is one acquired swapchain image.
type vulkanTarget struct {
	index     uint32
	extent    gfx.Extent2D
	swapchain *VulkanSwapchain
}

// Extent implements Target
func (t *vulkanTarget) Extent() gfx.Extent2D {
	return t.extent
}

func srgbAlias(f vk.Format) vk.Format {
	switch f {
	case vk.FormatR8g8b8a8Unorm:
		return vk.FormatR8g8b8a8Srgb
	case vk.FormatB8g8r8a8Unorm:
		return vk.FormatB8g8r8a8Srgb
	default:
		return f
	}
}

var _ Surface = (*VulkanSwapchain)(nil)
var _ Context = (*VulkanContext)(nil)
