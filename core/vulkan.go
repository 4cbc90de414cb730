// Copyright (c) 2026 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"fmt"
	"unsafe"

	vk "github.com/devblok/vulkan"
	log "github.com/sirupsen/logrus"

	"github.com/devblok/lumen/gfx"
	"github.com/devblok/lumen/gfx/vkr"
)

// DefaultApplicationInfo describes the engine to the Vulkan loader
var DefaultApplicationInfo = &vk.ApplicationInfo{
	SType:              vk.StructureTypeApplicationInfo,
	ApiVersion:         vk.MakeVersion(1, 0, 0),
	ApplicationVersion: vk.MakeVersion(1, 0, 0),
	PApplicationName:   "Lumen\x00",
	PEngineName:        "Lumen\x00",
}

// PhysicalDeviceInfo describes available physical properties of a rendering device
type PhysicalDeviceInfo struct {
	ID            int
	VendorID      int
	DriverVersion int
	Name          string
	Invalid       bool
	Extensions    []string
	Layers        []string
	Memory        uint
}

// AcquireVulkanContext performs, in order: instance creation, adapter
// selection with no special constraints, and logical device plus queue
// creation. Each step is independently fallible; any failure is wrapped
// into a single UnavailableError carrying the cause. No retry here;
// retry, if any, belongs to the caller.
func AcquireVulkanContext(appInfo *vk.ApplicationInfo, procAddr unsafe.Pointer, cfg InstanceConfiguration) (*VulkanContext, error) {
	if cfg.DebugMode {
		cfg.Layers = append(cfg.Layers, "VK_LAYER_KHRONOS_validation")
		cfg.Extensions = append(cfg.Extensions, "VK_EXT_debug_report")
	}

	if procAddr == nil {
		if err := vk.SetDefaultGetInstanceProcAddr(); err != nil {
			return nil, Unavailablef("vk.InstanceProcAddr(): %s", err)
		}
	} else {
		vk.SetGetInstanceProcAddr(procAddr)
	}

	if err := vk.Init(); err != nil {
		return nil, Unavailablef("vk.Init(): %s", err)
	}

	instanceInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        appInfo,
		EnabledExtensionCount:   uint32(len(cfg.Extensions)),
		PpEnabledExtensionNames: safeStrings(cfg.Extensions),
		EnabledLayerCount:       uint32(len(cfg.Layers)),
		PpEnabledLayerNames:     safeStrings(cfg.Layers),
	}

	var instance vk.Instance
	if err := vk.Error(vk.CreateInstance(&instanceInfo, nil, &instance)); err != nil {
		return nil, Unavailablef("vk.CreateInstance(): %s", err)
	}
	vk.InitInstance(instance)

	gpus, err := enumerateDevices(instance)
	if err != nil {
		vk.DestroyInstance(instance, nil)
		return nil, Unavailablef("core.enumerateDevices(): %s", err)
	}
	if len(gpus) == 0 {
		vk.DestroyInstance(instance, nil)
		return nil, Unavailablef("no physical devices present")
	}

	// Default adapter preference: the first enumerated device.
	ctx := &VulkanContext{
		configuration: cfg,
		instance:      instance,
		gpus:          gpus,
		adapter:       gpus[0],
	}

	if err := ctx.createDevice(); err != nil {
		vk.DestroyInstance(instance, nil)
		return nil, err
	}
	return ctx, nil
}

// VulkanContext is the Vulkan device context. The adapter, device and
// queue are mutually consistent: the device was created from the adapter
// and the queue belongs to the device.
type VulkanContext struct {
	configuration InstanceConfiguration

	instance vk.Instance
	gpus     []vk.PhysicalDevice
	adapter  vk.PhysicalDevice
	device   vk.Device
	queue    vk.Queue

	queueFamily uint32
	allocator   *vkr.Allocator
}

func enumerateDevices(instance vk.Instance) ([]vk.PhysicalDevice, error) {
	var deviceCount uint32
	if err := vk.Error(vk.EnumeratePhysicalDevices(instance, &deviceCount, nil)); err != nil {
		return nil, fmt.Errorf("vulkan physical device enumeration failed: %s", err)
	}
	availableDevices := make([]vk.PhysicalDevice, deviceCount)
	if err := vk.Error(vk.EnumeratePhysicalDevices(instance, &deviceCount, availableDevices)); err != nil {
		return nil, fmt.Errorf("vulkan physical device enumeration failed: %s", err)
	}
	return availableDevices, nil
}

// createDevice picks a graphics-capable queue family and creates the
// logical device and its queue. Present capability cannot be checked yet:
// the device exists before any surface does, so an adapter that cannot
// present fails later, at swapchain creation.
func (v *VulkanContext) createDevice() error {
	var queueFamilyCount uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(v.adapter, &queueFamilyCount, nil)
	queueFamilies := make([]vk.QueueFamilyProperties, queueFamilyCount)
	vk.GetPhysicalDeviceQueueFamilyProperties(v.adapter, &queueFamilyCount, queueFamilies)

	if queueFamilyCount == 0 {
		return Unavailablef("vk.GetPhysicalDeviceQueueFamilyProperties(): no queue families on GPU")
	}

	var graphicsFound bool
	for i := uint32(0); i < queueFamilyCount; i++ {
		queueFamilies[i].Deref()
		if queueFamilies[i].QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0 {
			v.queueFamily = i
			graphicsFound = true
			break
		}
	}
	if !graphicsFound {
		return Unavailablef("could not find a graphics-capable queue family")
	}

	deviceExtensions := v.configuration.DeviceExtensions
	if len(deviceExtensions) == 0 {
		deviceExtensions = []string{"VK_KHR_swapchain"}
	}
	requiredExtensions := safeStrings(deviceExtensions)

	queueInfos := []vk.DeviceQueueCreateInfo{{
		SType:            vk.StructureTypeDeviceQueueCreateInfo,
		QueueFamilyIndex: v.queueFamily,
		QueueCount:       1,
		PQueuePriorities: []float32{1.0},
	}}

	dci := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledExtensionCount:   uint32(len(requiredExtensions)),
		PpEnabledExtensionNames: requiredExtensions,
	}

	var device vk.Device
	if err := vk.Error(vk.CreateDevice(v.adapter, &dci, nil, &device)); err != nil {
		return Unavailablef("vk.CreateDevice(): %s", err)
	}

	var queue vk.Queue
	vk.GetDeviceQueue(device, v.queueFamily, 0, &queue)

	v.device = device
	v.queue = queue
	return nil
}

// Submit implements Context. It hands the target's prerecorded command
// sequence to the device queue and returns without waiting for the GPU.
func (v *VulkanContext) Submit(target Target) error {
	t, ok := target.(*vulkanTarget)
	if !ok {
		return fmt.Errorf("%w: foreign target type", ErrUnexpected)
	}

	submit := []vk.SubmitInfo{{
		SType:              vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{t.swapchain.imageAvailable},
		PWaitDstStageMask: []vk.PipelineStageFlags{
			vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{t.swapchain.commandBuffers[t.index]},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{t.swapchain.renderFinished},
	}}

	if res := vk.QueueSubmit(v.queue, 1, submit, vk.NullFence); res != vk.Success {
		return fmt.Errorf("vk.QueueSubmit(): %w", fromResult(res))
	}
	return nil
}

// Allocator returns the texture allocator bound to this device.
func (v *VulkanContext) Allocator() (gfx.Allocator, error) {
	if v.allocator == nil {
		alloc, err := vkr.NewAllocator(v.device, v.adapter)
		if err != nil {
			return nil, Unavailablef("vkr.NewAllocator(): %s", err)
		}
		v.allocator = alloc
	}
	return v.allocator, nil
}

// Instance returns the inner vk.Instance
func (v *VulkanContext) Instance() vk.Instance {
	return v.instance
}

// Adapter returns the selected physical device
func (v *VulkanContext) Adapter() vk.PhysicalDevice {
	return v.adapter
}

// Device returns the logical device
func (v *VulkanContext) Device() vk.Device {
	return v.device
}

// Queue returns the device queue used for submission and presentation
func (v *VulkanContext) Queue() vk.Queue {
	return v.queue
}

// QueueFamily returns the queue family index the queue was created from
func (v *VulkanContext) QueueFamily() uint32 {
	return v.queueFamily
}

// PhysicalDevicesInfo returns a struct for each physical device
// along with info about those devices
func (v *VulkanContext) PhysicalDevicesInfo() []PhysicalDeviceInfo {
	pdi := make([]PhysicalDeviceInfo, len(v.gpus))
	for i := 0; i < len(v.gpus); i++ {
		// Get extension info
		var numDeviceExtensions uint32
		if err := vk.Error(vk.EnumerateDeviceExtensionProperties(v.gpus[i], "", &numDeviceExtensions, nil)); err != nil {
			pdi[i].Invalid = true
		}
		deviceExt := make([]vk.ExtensionProperties, numDeviceExtensions)
		if err := vk.Error(vk.EnumerateDeviceExtensionProperties(v.gpus[i], "", &numDeviceExtensions, deviceExt)); err != nil {
			pdi[i].Invalid = true
		}
		for _, ext := range deviceExt {
			ext.Deref()
			pdi[i].Extensions = append(pdi[i].Extensions, vk.ToString(ext.ExtensionName[:]))
		}

		// Get layers info
		var numDeviceLayers uint32
		if err := vk.Error(vk.EnumerateDeviceLayerProperties(v.gpus[i], &numDeviceLayers, nil)); err != nil {
			pdi[i].Invalid = true
		}
		deviceLayers := make([]vk.LayerProperties, numDeviceLayers)
		if err := vk.Error(vk.EnumerateDeviceLayerProperties(v.gpus[i], &numDeviceLayers, deviceLayers)); err != nil {
			pdi[i].Invalid = true
		}
		for _, layer := range deviceLayers {
			layer.Deref()
			pdi[i].Layers = append(pdi[i].Layers, vk.ToString(layer.LayerName[:]))
		}

		// Get memory info
		var memoryProperties vk.PhysicalDeviceMemoryProperties
		vk.GetPhysicalDeviceMemoryProperties(v.gpus[i], &memoryProperties)
		memoryProperties.Deref()
		for iMem := (uint32)(0); iMem < memoryProperties.MemoryHeapCount; iMem++ {
			memoryProperties.MemoryHeaps[iMem].Deref()
			pdi[i].Memory = pdi[i].Memory + uint(memoryProperties.MemoryHeaps[iMem].Size)
		}

		// Get general device info
		var physicalDeviceProperties vk.PhysicalDeviceProperties
		vk.GetPhysicalDeviceProperties(v.gpus[i], &physicalDeviceProperties)
		physicalDeviceProperties.Deref()
		pdi[i].ID = (int)(physicalDeviceProperties.DeviceID)
		pdi[i].VendorID = (int)(physicalDeviceProperties.VendorID)
		pdi[i].Name = vk.ToString(physicalDeviceProperties.DeviceName[:])
		pdi[i].DriverVersion = (int)(physicalDeviceProperties.DriverVersion)
	}
	return pdi
}

// Destroy implements Context
func (v *VulkanContext) Destroy() {
	if v.device != nil {
		vk.DeviceWaitIdle(v.device)
		vk.DestroyDevice(v.device, nil)
		v.device = nil
	}
	if v.instance != nil {
		vk.DestroyInstance(v.instance, nil)
		v.instance = nil
	}
	v.gpus = nil
	log.Debug("vulkan: device context destroyed")
}

// fromResult maps a vulkan result onto the engine error taxonomy.
func fromResult(res vk.Result) error {
	switch res {
	case vk.Success:
		return nil
	case vk.ErrorOutOfHostMemory, vk.ErrorOutOfDeviceMemory:
		return ErrOutOfMemory
	case vk.ErrorDeviceLost:
		return ErrDeviceLost
	case vk.ErrorSurfaceLost, vk.ErrorOutOfDate:
		return ErrSurfaceLost
	default:
		return fmt.Errorf("%w: %s", ErrUnexpected, vk.Error(res))
	}
}

func safeStrings(sgs []string) []string {
	safe := make([]string, 0, len(sgs))
	for _, s := range sgs {
		safe = append(safe, s+"\x00")
	}
	return safe
}
