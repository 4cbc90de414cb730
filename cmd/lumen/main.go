// Copyright (c) 2026 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"flag"
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"

	log "github.com/sirupsen/logrus"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/devblok/lumen/core"
	"github.com/devblok/lumen/wsi"
)

func init() {
	// SDL and Vulkan surface calls must stay on the main thread.
	runtime.LockOSThread()
}

// Profiling
var (
	cpuProfile   = flag.String("cpuprof", "", "Profile CPU usage to file")
	memProfile   = flag.String("memprof", "", "Profile memory usage into a file")
	traceProfile = flag.String("trace", "", "Trace output for profiling")
	debug        = flag.Bool("vkdbg", false, "Load Vulkan validation layers")
)

func main() {
	flag.Parse()

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			log.Fatalf("create cpu profile: %v", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatalf("start cpu profile: %v", err)
		}
		defer pprof.StopCPUProfile()
	}

	if *traceProfile != "" {
		f, err := os.Create(*traceProfile)
		if err != nil {
			log.Fatalf("create trace file: %v", err)
		}
		if err := trace.Start(f); err != nil {
			log.Fatalf("start trace: %v", err)
		}
		defer trace.Stop()
	}

	configuration := core.LoadConfiguration()
	configuration.Renderer.DebugMode = *debug
	if configuration.Renderer.DebugMode {
		log.SetLevel(log.DebugLevel)
	}

	if err := wsi.Init(); err != nil {
		log.Fatalf("window system: %v", err)
	}
	defer wsi.Terminate()

	engine, err := core.NewEngine(configuration, wsi.NewPlatform())
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer engine.Destroy()

	if err := engine.Resumed(); err != nil {
		log.Fatalf("%v", err)
	}

	timeService := core.NewTime(configuration.Time)
	defer timeService.Stop()

	for !engine.Done() {
		<-timeService.FpsTicker().C
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			ev, ok := wsi.Translate(event)
			if !ok {
				continue
			}
			if err := engine.Handle(ev); err != nil {
				log.Errorf("%v", err)
			}
		}
	}

	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err != nil {
			log.Fatalf("create mem profile: %v", err)
		}
		if err := pprof.WriteHeapProfile(f); err != nil {
			log.Fatalf("write heap profile: %v", err)
		}
	}
}
