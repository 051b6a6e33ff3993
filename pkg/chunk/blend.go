package chunk

import (
	"github.com/leterax/go-voxels/pkg/painter"
	"github.com/leterax/go-voxels/pkg/rgba"
)

// blendPaint combines an existing sample s with a painter's brush color at
// coverage b in [0,1] (the shape's SDF-derived brush alpha), per mode.
func blendPaint(mode painter.Mode, s, color rgba.RGBA, b float32) rgba.RGBA {
	switch mode {
	case painter.Over:
		return rgba.AlphaOver(s, color, b)
	case painter.Max:
		return rgba.Max(s, color.Scale(b))
	case painter.Replace:
		if b <= 0 {
			return s
		}
		return color.Scale(b)
	case painter.Sub:
		return rgba.ScaleAlpha(s, 1-b)
	case painter.Intersect:
		bi := rgba.AlphaFromUnit(b)
		if bi < s[3] {
			return rgba.RGBA{s[0], s[1], s[2], bi}
		}
		return s
	case painter.MultAlpha:
		return rgba.ScaleAlpha(s, b)
	default:
		return s
	}
}

// blendMerge combines an existing sample s with a peer sample o, treating
// o's own alpha as the coverage term the mode table describes.
func blendMerge(mode painter.Mode, s, o rgba.RGBA) rgba.RGBA {
	b := float32(o[3]) / 255
	switch mode {
	case painter.Over:
		return rgba.AlphaOver(s, rgba.RGBA{o[0], o[1], o[2], 255}, b)
	case painter.Max:
		return rgba.Max(s, o)
	case painter.Replace:
		if o[3] == 0 {
			return s
		}
		return o
	case painter.Sub:
		return rgba.ScaleAlpha(s, 1-b)
	case painter.Intersect:
		if o[3] < s[3] {
			return rgba.RGBA{s[0], s[1], s[2], o[3]}
		}
		return s
	case painter.MultAlpha:
		return rgba.ScaleAlpha(s, b)
	default:
		return s
	}
}
