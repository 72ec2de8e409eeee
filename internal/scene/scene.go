// Package scene defines the typed model for one render request: an output
// spec plus an ordered list of timed, positioned, styled elements. Element
// order is significant — it fixes both compositing (z-order) and encoder
// input-index assignment downstream.
package scene

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ElementType discriminates the Element union.
type ElementType string

const (
	TypeVideo ElementType = "video"
	TypeImage ElementType = "image"
	TypeText  ElementType = "text"
	TypeAudio ElementType = "audio"
)

// Format is the output container format.
type Format string

const (
	FormatMP4 Format = "mp4"
	FormatMOV Format = "mov"
	FormatAVI Format = "avi"
)

// Alignment for text elements.
type Alignment string

const (
	AlignLeft   Alignment = "left"
	AlignCenter Alignment = "center"
	AlignRight  Alignment = "right"
)

// Position presets accepted by Coord in place of a literal pixel value.
const (
	PresetCenter      = "center"
	PresetTop         = "top"
	PresetBottom      = "bottom"
	PresetLeft        = "left"
	PresetRight       = "right"
	PresetTopLeft     = "top-left"
	PresetTopRight    = "top-right"
	PresetBottomLeft  = "bottom-left"
	PresetBottomRight = "bottom-right"
	PresetMidTop      = "mid-top"
	PresetMidBottom   = "mid-bottom"
)

// Resolution in pixels.
type Resolution struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Output describes the rendered artifact.
type Output struct {
	Resolution      Resolution `json:"resolution"`
	FrameRate       int        `json:"frame_rate"`
	Format          Format     `json:"format"`
	Duration        float64    `json:"duration"`
	BackgroundColor string     `json:"background_color"`
}

// Timeline places an element on the output timeline. In is the optional
// in-point into the source media.
type Timeline struct {
	Start    float64  `json:"start"`
	Duration float64  `json:"duration"`
	In       *float64 `json:"in,omitempty"`
}

// InPoint returns the in-point, defaulting to 0.
func (t Timeline) InPoint() float64 {
	if t.In != nil {
		return *t.In
	}
	return 0
}

// End returns the exclusive end of the element's timeline window.
func (t Timeline) End() float64 {
	return t.Start + t.Duration
}

// Coord is a single position coordinate: either a literal integer pixel
// value or a named preset string.
type Coord struct {
	Value   int
	Preset  string
	Literal bool
}

// IntCoord returns a literal pixel coordinate.
func IntCoord(v int) Coord {
	return Coord{Value: v, Literal: true}
}

// PresetCoord returns a named-preset coordinate.
func PresetCoord(name string) Coord {
	return Coord{Preset: name}
}

func (c Coord) MarshalJSON() ([]byte, error) {
	if c.Literal {
		return json.Marshal(c.Value)
	}
	return json.Marshal(c.Preset)
}

func (c *Coord) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*c = IntCoord(n)
		return nil
	}
	// JSON numbers arriving as floats are truncated to pixels.
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*c = IntCoord(int(f))
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = PresetCoord(s)
		return nil
	}
	return fmt.Errorf("position coordinate must be an integer or a preset string, got %s", string(data))
}

func (c Coord) String() string {
	if c.Literal {
		return strconv.Itoa(c.Value)
	}
	return c.Preset
}

// Position of an overlay or text draw.
type Position struct {
	X Coord `json:"x"`
	Y Coord `json:"y"`
}

// Transform applies to video, image and text elements.
type Transform struct {
	Position Position `json:"position"`
	Scale    *float64 `json:"scale,omitempty"`
	Opacity  *float64 `json:"opacity,omitempty"`
}

// ScaleOrDefault returns the scale factor, defaulting to 1.0.
func (t *Transform) ScaleOrDefault() float64 {
	if t == nil || t.Scale == nil {
		return 1.0
	}
	return *t.Scale
}

// Style applies to text elements.
type Style struct {
	FontFamily      string    `json:"font_family"`
	FontSize        int       `json:"font_size"`
	Color           string    `json:"color"`
	Alignment       Alignment `json:"alignment"`
	BackgroundColor string    `json:"background_color,omitempty"`
}

// Element is one layer of the scene. Which fields are mandatory depends on
// Type; Validate enforces the cross-field rules so consumers beyond the
// validator can assume a well-formed union.
type Element struct {
	ID       string      `json:"id"`
	Type     ElementType `json:"type"`
	Timeline Timeline    `json:"timeline"`

	// video, image, audio
	Source string `json:"source,omitempty"`

	// text
	Text  string `json:"text,omitempty"`
	Style *Style `json:"style,omitempty"`

	// video, image, text
	Transform *Transform `json:"transform,omitempty"`

	// video: whether to carry the source's embedded audio track
	Audio *bool `json:"audio,omitempty"`

	// audio
	Volume  *float64 `json:"volume,omitempty"`
	FadeIn  float64  `json:"fade_in,omitempty"`
	FadeOut float64  `json:"fade_out,omitempty"`
}

// VolumeOrDefault returns the audio volume, defaulting to 1.0.
func (e *Element) VolumeOrDefault() float64 {
	if e.Volume == nil {
		return 1.0
	}
	return *e.Volume
}

// CarriesAudio reports whether a video element carries its embedded audio
// track.
func (e *Element) CarriesAudio() bool {
	return e.Type == TypeVideo && e.Audio != nil && *e.Audio
}

// Scene is a validated render request.
type Scene struct {
	Output   Output    `json:"output"`
	Elements []Element `json:"elements"`
}

// HasType reports whether any element of the given type is present.
func (s *Scene) HasType(t ElementType) bool {
	for i := range s.Elements {
		if s.Elements[i].Type == t {
			return true
		}
	}
	return false
}
