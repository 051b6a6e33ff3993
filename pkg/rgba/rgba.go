// Package rgba implements the 4-channel color+alpha sample type shared by
// the chunk and painter packages, plus the compositing primitives the
// painter modes are built from.
package rgba

// RGBA is one voxel sample: red, green, blue, alpha, 8 bits each.
// Alpha 0 means the voxel is absent.
type RGBA [4]uint8

// Transparent is the zero value, returned for out-of-range or missing reads.
var Transparent = RGBA{}

// Opaque returns r,g,b at full alpha.
func Opaque(r, g, b uint8) RGBA {
	return RGBA{r, g, b, 255}
}

// Scale multiplies every channel, including alpha, by f (clamped to [0,1]
// on the way in isn't enforced here; callers pass brush coverage in [0,1]).
func (c RGBA) Scale(f float32) RGBA {
	return RGBA{scale8(c[0], f), scale8(c[1], f), scale8(c[2], f), scale8(c[3], f)}
}

func scale8(v uint8, f float32) uint8 {
	return clamp8(float32(v) * f)
}

func clamp8(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v + 0.5)
	}
}

// Max returns the per-channel maximum of a and b.
func Max(a, b RGBA) RGBA {
	var out RGBA
	for i := range out {
		if a[i] > b[i] {
			out[i] = a[i]
		} else {
			out[i] = b[i]
		}
	}
	return out
}

// AlphaOver composites src over dst, with src's own alpha further scaled by
// coverage (the shape's brush alpha, or 1 when compositing two volumes).
func AlphaOver(dst, src RGBA, coverage float32) RGBA {
	srcA := float32(src[3]) / 255 * coverage
	if srcA <= 0 {
		return dst
	}
	dstA := float32(dst[3]) / 255
	outA := srcA + dstA*(1-srcA)
	if outA <= 0 {
		return RGBA{}
	}
	var out RGBA
	for i := 0; i < 3; i++ {
		srcC := float32(src[i]) / 255
		dstC := float32(dst[i]) / 255
		outC := (srcC*srcA + dstC*dstA*(1-srcA)) / outA
		out[i] = clamp8(outC * 255)
	}
	out[3] = clamp8(outA * 255)
	return out
}

// ScaleAlpha scales just the alpha channel by f, keeping color untouched.
func ScaleAlpha(c RGBA, f float32) RGBA {
	return RGBA{c[0], c[1], c[2], scale8(c[3], f)}
}

// AlphaFromUnit converts a brush coverage value in [0,1] to a 0..255 alpha.
func AlphaFromUnit(f float32) uint8 {
	return clamp8(f * 255)
}
