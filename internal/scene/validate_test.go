package scene

import (
	"strings"
	"testing"
)

func validScene() *Scene {
	yes := true
	return &Scene{
		Output: Output{
			Resolution:      Resolution{Width: 1080, Height: 1920},
			FrameRate:       30,
			Format:          FormatMP4,
			Duration:        10,
			BackgroundColor: "black",
		},
		Elements: []Element{
			{
				ID:       "main",
				Type:     TypeVideo,
				Timeline: Timeline{Start: 0, Duration: 10},
				Source:   "/media/main.mp4",
				Audio:    &yes,
				Transform: &Transform{
					Position: Position{X: IntCoord(0), Y: IntCoord(0)},
				},
			},
			{
				ID:       "caption",
				Type:     TypeText,
				Timeline: Timeline{Start: 1, Duration: 4},
				Text:     "Hello",
				Style: &Style{
					FontFamily: "Arial",
					FontSize:   48,
					Color:      "white",
					Alignment:  AlignCenter,
				},
				Transform: &Transform{
					Position: Position{X: PresetCoord(PresetCenter), Y: PresetCoord(PresetBottom)},
				},
			},
		},
	}
}

func TestValidateAcceptsWellFormedScene(t *testing.T) {
	if err := validScene().Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	neg := -0.5
	big := 1.5
	tests := []struct {
		name      string
		mutate    func(*Scene)
		wantField string
	}{
		{
			"zero width",
			func(s *Scene) { s.Output.Resolution.Width = 0 },
			"output.resolution.width",
		},
		{
			"zero frame rate",
			func(s *Scene) { s.Output.FrameRate = 0 },
			"output.frame_rate",
		},
		{
			"zero duration",
			func(s *Scene) { s.Output.Duration = 0 },
			"output.duration",
		},
		{
			"unsupported format",
			func(s *Scene) { s.Output.Format = "webm" },
			"output.format",
		},
		{
			"missing background color",
			func(s *Scene) { s.Output.BackgroundColor = "" },
			"output.background_color",
		},
		{
			"negative start",
			func(s *Scene) { s.Elements[0].Timeline.Start = -1 },
			"timeline.start",
		},
		{
			"zero element duration",
			func(s *Scene) { s.Elements[0].Timeline.Duration = 0 },
			"timeline.duration",
		},
		{
			"video without source",
			func(s *Scene) { s.Elements[0].Source = "" },
			"source",
		},
		{
			"video without audio flag",
			func(s *Scene) { s.Elements[0].Audio = nil },
			"audio",
		},
		{
			"video without transform",
			func(s *Scene) { s.Elements[0].Transform = nil },
			"transform",
		},
		{
			"non-positive scale",
			func(s *Scene) { s.Elements[0].Transform.Scale = &neg },
			"transform.scale",
		},
		{
			"opacity above one",
			func(s *Scene) { s.Elements[1].Transform.Opacity = &big },
			"transform.opacity",
		},
		{
			"text without text",
			func(s *Scene) { s.Elements[1].Text = "" },
			"text",
		},
		{
			"text without style",
			func(s *Scene) { s.Elements[1].Style = nil },
			"style",
		},
		{
			"text without font family",
			func(s *Scene) { s.Elements[1].Style.FontFamily = "" },
			"style.font_family",
		},
		{
			"text with zero font size",
			func(s *Scene) { s.Elements[1].Style.FontSize = 0 },
			"style.font_size",
		},
		{
			"text with bad alignment",
			func(s *Scene) { s.Elements[1].Style.Alignment = "justify" },
			"style.alignment",
		},
		{
			"unknown element type",
			func(s *Scene) { s.Elements[0].Type = "hologram" },
			"type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validScene()
			tt.mutate(s)
			err := s.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantField) {
				t.Errorf("error %q does not name field %q", err.Error(), tt.wantField)
			}
		})
	}
}

func TestValidateAudioElement(t *testing.T) {
	neg := -0.1
	s := &Scene{
		Output: validScene().Output,
		Elements: []Element{
			{
				ID:       "music",
				Type:     TypeAudio,
				Timeline: Timeline{Start: 0, Duration: 5},
				Source:   "/media/music.mp3",
				FadeIn:   1,
				FadeOut:  1,
			},
		},
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	s.Elements[0].Volume = &neg
	if err := s.Validate(); err == nil {
		t.Fatal("expected error for negative volume")
	}
}

// Garbled presets are resolved downstream with a total fallback, so
// validation lets them through.
func TestValidateToleratesUnknownPresets(t *testing.T) {
	s := validScene()
	s.Elements[1].Transform.Position.X = PresetCoord("somewhere")
	if err := s.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}
