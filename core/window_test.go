// Copyright (c) 2026 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core_test

import (
	"testing"

	"github.com/devblok/lumen/core"
	"github.com/devblok/lumen/gfx"
)

func TestWindowRegistry(t *testing.T) {
	windows := core.NewWindowRegistry()

	first := &fakeWindow{extent: gfx.Extent2D{Width: 100, Height: 100}}
	second := &fakeWindow{extent: gfx.Extent2D{Width: 200, Height: 200}}

	firstID := windows.Add(first)
	secondID := windows.Add(second)
	if firstID == secondID {
		t.Fatal("ids must be unique")
	}

	if got, ok := windows.Resolve(firstID); !ok || got != core.Window(first) {
		t.Error("first window did not resolve")
	}
	if got, ok := windows.Resolve(secondID); !ok || got != core.Window(second) {
		t.Error("second window did not resolve")
	}

	windows.Remove(firstID)
	if _, ok := windows.Resolve(firstID); ok {
		t.Error("removed window still resolves")
	}
	if _, ok := windows.Resolve(secondID); !ok {
		t.Error("removal must not affect other windows")
	}

	// Removing twice is harmless.
	windows.Remove(firstID)
}
