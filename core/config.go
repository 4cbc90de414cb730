// Copyright (c) 2026 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"strconv"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gobuffalo/envy"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Configuration defines a global engine configuration setting
type Configuration struct {
	Time     TimeConfiguration
	Renderer RendererConfiguration
}

// TimeConfiguration is used to configure time services
type TimeConfiguration struct {
	// FramesPerSecond caps frames per second that is put out
	// To unlimit, set to 0
	FramesPerSecond int
}

// RendererConfiguration is used to configure the renderer
type RendererConfiguration struct {
	ScreenWidth  uint32
	ScreenHeight uint32

	// FrameLatency caps how many submitted frames may queue ahead of
	// presentation. The swapchain image count is derived from it.
	FrameLatency uint32

	// SurfaceRetries bounds how many independent surface binding
	// attempts are made before the engine gives up. No delay between
	// attempts.
	SurfaceRetries int

	ClearColor mgl32.Vec4

	DebugMode        bool
	DeviceExtensions []string
}

// InstanceConfiguration is used to configure the API instance
type InstanceConfiguration struct {
	DebugMode bool

	Extensions []string
	Layers     []string

	// DeviceExtensions are enabled on the logical device created from
	// the selected adapter. Defaults to the swapchain extension.
	DeviceExtensions []string
}

// DefaultConfiguration returns the settings the engine runs with when the
// environment overrides nothing.
func DefaultConfiguration() Configuration {
	return Configuration{
		Time: TimeConfiguration{
			FramesPerSecond: 0,
		},
		Renderer: RendererConfiguration{
			ScreenWidth:    800,
			ScreenHeight:   600,
			FrameLatency:   2,
			SurfaceRetries: 3,
			ClearColor:     mgl32.Vec4{0.0, 1.0, 0.0, 1.0},
			DeviceExtensions: []string{
				"VK_KHR_swapchain",
			},
		},
	}
}

// LoadConfiguration builds a Configuration from the environment on top of
// the defaults. When LUMEN_ENV_FILE names a file, it is loaded first.
func LoadConfiguration() Configuration {
	if path := envy.Get("LUMEN_ENV_FILE", ""); path != "" {
		if err := godotenv.Load(path); err != nil {
			log.Warnf("config: env file %s not loaded: %s", path, err)
		}
	}

	cfg := DefaultConfiguration()
	cfg.Time.FramesPerSecond = envInt("LUMEN_FPS", cfg.Time.FramesPerSecond)
	cfg.Renderer.ScreenWidth = envUint32("LUMEN_WIDTH", cfg.Renderer.ScreenWidth)
	cfg.Renderer.ScreenHeight = envUint32("LUMEN_HEIGHT", cfg.Renderer.ScreenHeight)
	cfg.Renderer.FrameLatency = envUint32("LUMEN_FRAME_LATENCY", cfg.Renderer.FrameLatency)
	cfg.Renderer.SurfaceRetries = envInt("LUMEN_SURFACE_RETRIES", cfg.Renderer.SurfaceRetries)
	cfg.Renderer.DebugMode = envBool("LUMEN_DEBUG", cfg.Renderer.DebugMode)
	return cfg
}

func envInt(key string, def int) int {
	if v, err := strconv.Atoi(envy.Get(key, "")); err == nil {
		return v
	}
	return def
}

func envUint32(key string, def uint32) uint32 {
	if v, err := strconv.ParseUint(envy.Get(key, ""), 10, 32); err == nil {
		return uint32(v)
	}
	return def
}

func envBool(key string, def bool) bool {
	if v, err := strconv.ParseBool(envy.Get(key, "")); err == nil {
		return v
	}
	return def
}
