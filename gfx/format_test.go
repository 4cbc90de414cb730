// Copyright (c) 2026 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package gfx_test

import (
	"testing"

	"github.com/devblok/lumen/gfx"
)

func TestTexelSizes(t *testing.T) {
	sizes := map[gfx.Format]uint64{
		gfx.FormatR8Unorm:        1,
		gfx.FormatRG8Unorm:       2,
		gfx.FormatRGBA8Unorm:     4,
		gfx.FormatRGBA8UnormSRGB: 4,
		gfx.FormatBGRA8Unorm:     4,
		gfx.FormatBGRA8UnormSRGB: 4,
		gfx.FormatD16Unorm:       2,
		gfx.FormatRGBA16Float:    8,
		gfx.FormatRGBA32Float:    16,
	}
	for format, want := range sizes {
		if got := format.TexelSize(); got != want {
			t.Errorf("%s: texel size %d, want %d", format, got, want)
		}
	}
}

func TestSRGBAlias(t *testing.T) {
	if gfx.FormatRGBA8Unorm.SRGB() != gfx.FormatRGBA8UnormSRGB {
		t.Error("RGBA8 alias mismatch")
	}
	if gfx.FormatBGRA8Unorm.SRGB() != gfx.FormatBGRA8UnormSRGB {
		t.Error("BGRA8 alias mismatch")
	}
	// Formats without an alias map to themselves.
	if gfx.FormatRGBA16Float.SRGB() != gfx.FormatRGBA16Float {
		t.Error("RGBA16F should not alias")
	}
	if !gfx.FormatBGRA8UnormSRGB.IsSRGB() {
		t.Error("BGRA8 sRGB not recognized")
	}
	if gfx.FormatBGRA8Unorm.IsSRGB() {
		t.Error("BGRA8 unorm wrongly recognized as sRGB")
	}
}
