package compiler

import (
	"strconv"

	"clipforge/internal/scene"
)

// edgeMargin is the pixel inset applied to edge-anchored text presets.
const edgeMargin = 10

// resolveTextX maps a text x-coordinate to a drawtext expression. Literal
// integers pass through; named presets resolve against the rendered text
// width. The fallback is total: anything unrecognized becomes 0 rather
// than failing the compile.
func resolveTextX(c scene.Coord) string {
	if c.Literal {
		return strconv.Itoa(c.Value)
	}
	switch c.Preset {
	case scene.PresetCenter, scene.PresetTop, scene.PresetBottom,
		scene.PresetMidTop, scene.PresetMidBottom:
		return "(w-text_w)/2"
	case scene.PresetLeft, scene.PresetTopLeft, scene.PresetBottomLeft:
		return strconv.Itoa(edgeMargin)
	case scene.PresetRight, scene.PresetTopRight, scene.PresetBottomRight:
		return "w-text_w-" + strconv.Itoa(edgeMargin)
	default:
		return "0"
	}
}

// resolveTextY maps a text y-coordinate to a drawtext expression, with the
// same total fallback as resolveTextX.
func resolveTextY(c scene.Coord) string {
	if c.Literal {
		return strconv.Itoa(c.Value)
	}
	switch c.Preset {
	case scene.PresetCenter, scene.PresetLeft, scene.PresetRight:
		return "(h-text_h)/2"
	case scene.PresetTop, scene.PresetTopLeft, scene.PresetTopRight, scene.PresetMidTop:
		return strconv.Itoa(edgeMargin)
	case scene.PresetBottom, scene.PresetBottomLeft, scene.PresetBottomRight, scene.PresetMidBottom:
		return "h-text_h-" + strconv.Itoa(edgeMargin)
	default:
		return "0"
	}
}

// overlayCoord resolves an overlay coordinate for video and image
// elements. Only literal integers are honored; presets and anything else
// default to 0. The preset expressions above are drawtext-only.
func overlayCoord(c scene.Coord) int {
	if c.Literal {
		return c.Value
	}
	return 0
}
