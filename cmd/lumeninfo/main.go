// Copyright (c) 2026 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"encoding/json"
	"fmt"

	"github.com/devblok/lumen/core"
)

func main() {
	cfg := core.InstanceConfiguration{
		DebugMode:  false,
		Extensions: []string{},
		Layers:     []string{},
	}

	ctx, err := core.AcquireVulkanContext(core.DefaultApplicationInfo, nil, cfg)
	if err != nil {
		panic(err)
	}

	if bytes, err := json.Marshal(ctx.PhysicalDevicesInfo()); err == nil {
		fmt.Printf("%s", bytes)
	} else {
		panic(err)
	}

	ctx.Destroy()
}
