package compiler

import (
	"fmt"
	"strconv"
	"strings"
)

// normalizeBoxColor converts an rgba(r,g,b,a) color string to #rrggbb hex
// for use as a drawtext box color; the alpha channel is dropped. Any other
// value passes through untouched.
func normalizeBoxColor(color string) string {
	if !strings.HasPrefix(color, "rgba") {
		return color
	}
	hex, ok := rgbaToHex(color)
	if !ok {
		return color
	}
	return hex
}

func rgbaToHex(rgba string) (string, bool) {
	inner := strings.TrimSuffix(strings.TrimPrefix(rgba, "rgba("), ")")
	parts := strings.Split(inner, ",")
	if len(parts) != 4 {
		return "", false
	}
	var channels [3]int
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil || v < 0 || v > 255 {
			return "", false
		}
		channels[i] = int(v)
	}
	return fmt.Sprintf("#%02x%02x%02x", channels[0], channels[1], channels[2]), true
}
