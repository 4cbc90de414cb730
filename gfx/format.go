// Copyright (c) 2026 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package gfx

// Format identifies a texel format independently of the underlying API.
type Format int

// Supported texel formats.
const (
	FormatUndefined Format = iota
	FormatR8Unorm
	FormatRG8Unorm
	FormatRGBA8Unorm
	FormatRGBA8UnormSRGB
	FormatBGRA8Unorm
	FormatBGRA8UnormSRGB
	FormatRGBA16Float
	FormatRGBA32Float
	FormatD16Unorm
)

// TexelSize returns the byte size of a single texel.
func (f Format) TexelSize() uint64 {
	switch f {
	case FormatR8Unorm:
		return 1
	case FormatRG8Unorm, FormatD16Unorm:
		return 2
	case FormatRGBA8Unorm, FormatRGBA8UnormSRGB, FormatBGRA8Unorm, FormatBGRA8UnormSRGB:
		return 4
	case FormatRGBA16Float:
		return 8
	case FormatRGBA32Float:
		return 16
	default:
		return 0
	}
}

// SRGB returns the gamma-corrected alias of the format, or the format
// itself when no alias exists.
func (f Format) SRGB() Format {
	switch f {
	case FormatRGBA8Unorm:
		return FormatRGBA8UnormSRGB
	case FormatBGRA8Unorm:
		return FormatBGRA8UnormSRGB
	default:
		return f
	}
}

// IsSRGB reports whether the format is gamma corrected.
func (f Format) IsSRGB() bool {
	return f == FormatRGBA8UnormSRGB || f == FormatBGRA8UnormSRGB
}

func (f Format) String() string {
	switch f {
	case FormatR8Unorm:
		return "R8Unorm"
	case FormatRG8Unorm:
		return "RG8Unorm"
	case FormatRGBA8Unorm:
		return "RGBA8Unorm"
	case FormatRGBA8UnormSRGB:
		return "RGBA8UnormSRGB"
	case FormatBGRA8Unorm:
		return "BGRA8Unorm"
	case FormatBGRA8UnormSRGB:
		return "BGRA8UnormSRGB"
	case FormatRGBA16Float:
		return "RGBA16Float"
	case FormatRGBA32Float:
		return "RGBA32Float"
	case FormatD16Unorm:
		return "D16Unorm"
	default:
		return "Undefined"
	}
}
