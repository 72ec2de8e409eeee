package template

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"clipforge/internal/pkg/errors"
	"clipforge/internal/scene"
)

// PartialElement is a user-supplied fragment of an element. Anything left
// unset falls back to the template's defaults for that element type;
// Position and Size are shorthands expanded into a transform fragment that
// sits between user values and template defaults in precedence.
type PartialElement struct {
	Type     scene.ElementType `json:"type"`
	Timeline scene.Timeline    `json:"timeline"`

	Source string `json:"source,omitempty"`
	Text   string `json:"text,omitempty"`

	// Position is a named preset shorthand, e.g. "center" or "bottom-left".
	Position string `json:"position,omitempty"`
	// Size is a scale-factor shorthand, e.g. "0.5".
	Size string `json:"size,omitempty"`

	Transform map[string]any `json:"transform,omitempty"`
	Style     map[string]any `json:"style,omitempty"`

	Audio   *bool    `json:"audio,omitempty"`
	Volume  *float64 `json:"volume,omitempty"`
	FadeIn  *float64 `json:"fade_in,omitempty"`
	FadeOut *float64 `json:"fade_out,omitempty"`
}

// BuildScene merges the partial elements with the template's defaults and
// returns a validated scene. The output duration is inferred as the
// latest element end, falling back to the template's own duration when no
// elements are given.
func BuildScene(tpl *Template, elements []PartialElement) (*scene.Scene, error) {
	out := tpl.Output
	duration := 0.0
	for _, el := range elements {
		if end := el.Timeline.End(); end > duration {
			duration = end
		}
	}
	if duration > 0 {
		out.Duration = duration
	}

	built := make([]scene.Element, 0, len(elements))
	for i, el := range elements {
		merged, err := buildElement(tpl, el, i)
		if err != nil {
			return nil, err
		}
		built = append(built, *merged)
	}

	sc := &scene.Scene{Output: out, Elements: built}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return sc, nil
}

// textStyleFallback sits below template defaults so a caption still
// renders when the template declares no text style at all.
var textStyleFallback = map[string]any{
	"font_family":      "Arial",
	"font_size":        48,
	"color":            "white",
	"alignment":        "center",
	"background_color": "rgba(0,0,0,0.3)",
}

func buildElement(tpl *Template, el PartialElement, ordinal int) (*scene.Element, error) {
	defaults := tpl.DefaultsFor(el.Type)

	raw := map[string]any{
		"type":     el.Type,
		"id":       fmt.Sprintf("%s-%d", el.Type, ordinal),
		"timeline": el.Timeline,
	}

	switch el.Type {
	case scene.TypeVideo, scene.TypeImage, scene.TypeAudio:
		raw["source"] = el.Source
	case scene.TypeText:
		raw["text"] = el.Text
	}

	if el.Type != scene.TypeAudio {
		raw["transform"] = MergeProperty(
			subMap(defaults, "transform"),
			expandShorthand(el),
			el.Transform,
		)
	}

	if el.Type == scene.TypeText {
		raw["style"] = MergeProperty(DeepMerge(textStyleFallback, subMap(defaults, "style")), nil, el.Style)
	}

	if el.Type == scene.TypeVideo {
		switch {
		case el.Audio != nil:
			raw["audio"] = *el.Audio
		case defaults["audio"] != nil:
			raw["audio"] = defaults["audio"]
		default:
			raw["audio"] = true
		}
	}

	if el.Type == scene.TypeAudio {
		setScalar(raw, "volume", el.Volume, defaults["volume"])
		setScalar(raw, "fade_in", el.FadeIn, defaults["fade_in"])
		setScalar(raw, "fade_out", el.FadeOut, defaults["fade_out"])
	}

	// Round-trip through JSON to turn the merged generic maps back into
	// the typed element, reusing the model's own decoding rules (notably
	// the int-or-preset coordinate handling).
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, errors.Wrap(err, "template.build", "failed to encode merged element")
	}
	var typed scene.Element
	if err := json.Unmarshal(data, &typed); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeValidation, "template.build", "merged element is malformed")
	}
	return &typed, nil
}

// expandShorthand turns the position/size shorthands into a transform
// fragment. Unparseable sizes are ignored rather than failing the merge.
func expandShorthand(el PartialElement) map[string]any {
	fragment := map[string]any{}
	if p := strings.TrimSpace(el.Position); p != "" {
		fragment["position"] = map[string]any{"x": p, "y": p}
	}
	if sz := strings.TrimSpace(el.Size); sz != "" {
		if f, err := strconv.ParseFloat(sz, 64); err == nil && f > 0 {
			fragment["scale"] = f
		}
	}
	if len(fragment) == 0 {
		return nil
	}
	return fragment
}

func subMap(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}
	sub, _ := m[key].(map[string]any)
	return sub
}

func setScalar(raw map[string]any, key string, user *float64, def any) {
	switch {
	case user != nil:
		raw[key] = *user
	case def != nil:
		raw[key] = def
	}
}
