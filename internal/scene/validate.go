package scene

import (
	"fmt"

	"clipforge/internal/pkg/errors"
)

var validPresets = map[string]bool{
	PresetCenter:      true,
	PresetTop:         true,
	PresetBottom:      true,
	PresetLeft:        true,
	PresetRight:       true,
	PresetTopLeft:     true,
	PresetTopRight:    true,
	PresetBottomLeft:  true,
	PresetBottomRight: true,
	PresetMidTop:      true,
	PresetMidBottom:   true,
}

// Validate checks all structural invariants of the scene. It performs no
// I/O. On failure it returns a validation error naming the offending field
// and constraint; the compiler assumes a scene that passed this check and
// does not re-verify.
//
// Unknown position presets are deliberately NOT rejected here: the
// compiler's preset resolver has a total fallback, matching the source
// behavior of tolerating garbled presets.
func (s *Scene) Validate() error {
	if err := s.Output.validate(); err != nil {
		return err
	}
	for i := range s.Elements {
		if err := s.Elements[i].validate(); err != nil {
			return err
		}
	}
	return nil
}

func (o Output) validate() error {
	if o.Resolution.Width <= 0 {
		return errors.ValidationField("output.resolution.width", "must be greater than 0")
	}
	if o.Resolution.Height <= 0 {
		return errors.ValidationField("output.resolution.height", "must be greater than 0")
	}
	if o.FrameRate <= 0 {
		return errors.ValidationField("output.frame_rate", "must be greater than 0")
	}
	if o.Duration <= 0 {
		return errors.ValidationField("output.duration", "must be greater than 0")
	}
	switch o.Format {
	case FormatMP4, FormatMOV, FormatAVI:
	default:
		return errors.ValidationField("output.format", fmt.Sprintf("unsupported format %q (want mp4, mov or avi)", o.Format))
	}
	if o.BackgroundColor == "" {
		return errors.ValidationField("output.background_color", "is required")
	}
	return nil
}

func (e *Element) validate() error {
	field := func(name string) string {
		return fmt.Sprintf("elements[%s].%s", e.ID, name)
	}

	if err := e.Timeline.validate(field("timeline")); err != nil {
		return err
	}

	switch e.Type {
	case TypeVideo:
		if e.Source == "" {
			return errors.ValidationField(field("source"), "is required for video elements")
		}
		if e.Audio == nil {
			return errors.ValidationField(field("audio"), "video elements must state whether to carry embedded audio")
		}
		return e.validateTransform(field)

	case TypeImage:
		if e.Source == "" {
			return errors.ValidationField(field("source"), "is required for image elements")
		}
		return e.validateTransform(field)

	case TypeText:
		if e.Text == "" {
			return errors.ValidationField(field("text"), "is required for text elements")
		}
		if e.Style == nil {
			return errors.ValidationField(field("style"), "is required for text elements")
		}
		if err := e.Style.validate(field); err != nil {
			return err
		}
		return e.validateTransform(field)

	case TypeAudio:
		if e.Source == "" {
			return errors.ValidationField(field("source"), "is required for audio elements")
		}
		if e.Volume != nil && *e.Volume < 0 {
			return errors.ValidationField(field("volume"), "must not be negative")
		}
		if e.FadeIn < 0 {
			return errors.ValidationField(field("fade_in"), "must not be negative")
		}
		if e.FadeOut < 0 {
			return errors.ValidationField(field("fade_out"), "must not be negative")
		}
		return nil

	default:
		return errors.ValidationField(field("type"), fmt.Sprintf("unknown element type %q", e.Type))
	}
}

func (t Timeline) validate(field string) error {
	if t.Start < 0 {
		return errors.ValidationField(field+".start", "must not be negative")
	}
	if t.Duration <= 0 {
		return errors.ValidationField(field+".duration", "must be greater than 0")
	}
	if t.In != nil && *t.In < 0 {
		return errors.ValidationField(field+".in", "must not be negative")
	}
	return nil
}

func (e *Element) validateTransform(field func(string) string) error {
	if e.Transform == nil {
		return errors.ValidationField(field("transform"), fmt.Sprintf("is required for %s elements", e.Type))
	}
	if e.Transform.Scale != nil && *e.Transform.Scale <= 0 {
		return errors.ValidationField(field("transform.scale"), "must be greater than 0")
	}
	if e.Transform.Opacity != nil && (*e.Transform.Opacity < 0 || *e.Transform.Opacity > 1) {
		return errors.ValidationField(field("transform.opacity"), "must be within [0,1]")
	}
	return nil
}

func (st *Style) validate(field func(string) string) error {
	if st.FontFamily == "" {
		return errors.ValidationField(field("style.font_family"), "is required")
	}
	if st.FontSize <= 0 {
		return errors.ValidationField(field("style.font_size"), "must be greater than 0")
	}
	if st.Color == "" {
		return errors.ValidationField(field("style.color"), "is required")
	}
	switch st.Alignment {
	case AlignLeft, AlignCenter, AlignRight:
	default:
		return errors.ValidationField(field("style.alignment"), fmt.Sprintf("unsupported alignment %q (want left, center or right)", st.Alignment))
	}
	return nil
}
