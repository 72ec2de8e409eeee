package template

import (
	"testing"

	"clipforge/internal/scene"
)

func testTemplate() *Template {
	return &Template{
		ID:   "tpl_1",
		Name: "shorts",
		Output: scene.Output{
			Resolution:      scene.Resolution{Width: 1080, Height: 1920},
			FrameRate:       30,
			Format:          scene.FormatMP4,
			Duration:        30,
			BackgroundColor: "black",
		},
		Defaults: map[string]map[string]any{
			"text": {
				"style": map[string]any{
					"font_family": "Arial",
					"font_size":   48,
					"color":       "white",
					"alignment":   "center",
				},
				"transform": map[string]any{
					"position": map[string]any{"x": "center", "y": "bottom"},
				},
			},
			"video": {
				"audio": false,
				"transform": map[string]any{
					"position": map[string]any{"x": 0, "y": 0},
					"scale":    1.0,
				},
			},
		},
	}
}

func TestBuildSceneInfersDuration(t *testing.T) {
	sc, err := BuildScene(testTemplate(), []PartialElement{
		{
			Type:     scene.TypeVideo,
			Timeline: scene.Timeline{Start: 0, Duration: 8},
			Source:   "/media/a.mp4",
		},
		{
			Type:     scene.TypeText,
			Timeline: scene.Timeline{Start: 5, Duration: 7},
			Text:     "Hello",
		},
	})
	if err != nil {
		t.Fatalf("BuildScene: %v", err)
	}

	// Latest element end wins over the template's own duration.
	if sc.Output.Duration != 12 {
		t.Errorf("duration = %v, want 12", sc.Output.Duration)
	}
}

func TestBuildSceneAppliesDefaults(t *testing.T) {
	sc, err := BuildScene(testTemplate(), []PartialElement{
		{
			Type:     scene.TypeText,
			Timeline: scene.Timeline{Start: 0, Duration: 5},
			Text:     "Styled by defaults",
		},
	})
	if err != nil {
		t.Fatalf("BuildScene: %v", err)
	}

	el := sc.Elements[0]
	if el.ID != "text-0" {
		t.Errorf("id = %q", el.ID)
	}
	if el.Style.FontFamily != "Arial" || el.Style.FontSize != 48 {
		t.Errorf("style = %+v", el.Style)
	}
	if el.Transform.Position.X != scene.PresetCoord("center") {
		t.Errorf("x = %+v", el.Transform.Position.X)
	}
	if el.Transform.Position.Y != scene.PresetCoord("bottom") {
		t.Errorf("y = %+v", el.Transform.Position.Y)
	}
}

func TestBuildSceneTextStyleFallback(t *testing.T) {
	tpl := testTemplate()
	tpl.Defaults = nil

	sc, err := BuildScene(tpl, []PartialElement{
		{
			Type:     scene.TypeText,
			Timeline: scene.Timeline{Start: 0, Duration: 5},
			Text:     "Bare",
		},
	})
	if err != nil {
		t.Fatalf("BuildScene: %v", err)
	}

	// A template with no text defaults still yields a fully styled
	// caption.
	st := sc.Elements[0].Style
	if st.FontFamily != "Arial" || st.FontSize != 48 || st.Color != "white" {
		t.Errorf("style = %+v", st)
	}
	if st.Alignment != scene.AlignCenter {
		t.Errorf("alignment = %q", st.Alignment)
	}
	if st.BackgroundColor != "rgba(0,0,0,0.3)" {
		t.Errorf("background_color = %q", st.BackgroundColor)
	}
}

func TestBuildSceneTemplateStyleBeatsFallback(t *testing.T) {
	tpl := testTemplate()
	tpl.Defaults = map[string]map[string]any{
		"text": {
			"style": map[string]any{"font_size": 60},
		},
	}

	sc, err := BuildScene(tpl, []PartialElement{
		{
			Type:     scene.TypeText,
			Timeline: scene.Timeline{Start: 0, Duration: 5},
			Text:     "Sized",
		},
	})
	if err != nil {
		t.Fatalf("BuildScene: %v", err)
	}

	st := sc.Elements[0].Style
	if st.FontSize != 60 {
		t.Errorf("font_size = %d, want the template default 60", st.FontSize)
	}
	// Keys the template leaves unset still come from the fallback.
	if st.FontFamily != "Arial" || st.Color != "white" {
		t.Errorf("style = %+v", st)
	}
}

func TestBuildSceneUserValuesWin(t *testing.T) {
	sc, err := BuildScene(testTemplate(), []PartialElement{
		{
			Type:     scene.TypeText,
			Timeline: scene.Timeline{Start: 0, Duration: 5},
			Text:     "Custom",
			Style:    map[string]any{"font_size": 72},
			Transform: map[string]any{
				"position": map[string]any{"y": 100},
			},
		},
	})
	if err != nil {
		t.Fatalf("BuildScene: %v", err)
	}

	el := sc.Elements[0]
	if el.Style.FontSize != 72 {
		t.Errorf("font_size = %d, want 72", el.Style.FontSize)
	}
	// Unset keys still come from the defaults.
	if el.Style.FontFamily != "Arial" {
		t.Errorf("font_family = %q", el.Style.FontFamily)
	}
	if el.Transform.Position.Y != scene.IntCoord(100) {
		t.Errorf("y = %+v", el.Transform.Position.Y)
	}
	if el.Transform.Position.X != scene.PresetCoord("center") {
		t.Errorf("x = %+v", el.Transform.Position.X)
	}
}

func TestBuildSceneShorthandSitsBetweenDefaultsAndUser(t *testing.T) {
	sc, err := BuildScene(testTemplate(), []PartialElement{
		{
			Type:     scene.TypeText,
			Timeline: scene.Timeline{Start: 0, Duration: 5},
			Text:     "Placed",
			Position: "top-left",
			Size:     "0.5",
			Transform: map[string]any{
				"position": map[string]any{"y": 300},
			},
		},
	})
	if err != nil {
		t.Fatalf("BuildScene: %v", err)
	}

	el := sc.Elements[0]
	// Shorthand beats the template default for x; the explicit transform
	// beats the shorthand for y.
	if el.Transform.Position.X != scene.PresetCoord("top-left") {
		t.Errorf("x = %+v", el.Transform.Position.X)
	}
	if el.Transform.Position.Y != scene.IntCoord(300) {
		t.Errorf("y = %+v", el.Transform.Position.Y)
	}
	if el.Transform.ScaleOrDefault() != 0.5 {
		t.Errorf("scale = %v", el.Transform.ScaleOrDefault())
	}
}

func TestBuildSceneVideoAudioPrecedence(t *testing.T) {
	yes := true

	// Template default says no embedded audio.
	sc, err := BuildScene(testTemplate(), []PartialElement{
		{
			Type:     scene.TypeVideo,
			Timeline: scene.Timeline{Start: 0, Duration: 5},
			Source:   "/media/a.mp4",
		},
	})
	if err != nil {
		t.Fatalf("BuildScene: %v", err)
	}
	if sc.Elements[0].CarriesAudio() {
		t.Error("template default audio=false should hold")
	}

	// Explicit user flag wins over the default.
	sc, err = BuildScene(testTemplate(), []PartialElement{
		{
			Type:     scene.TypeVideo,
			Timeline: scene.Timeline{Start: 0, Duration: 5},
			Source:   "/media/a.mp4",
			Audio:    &yes,
		},
	})
	if err != nil {
		t.Fatalf("BuildScene: %v", err)
	}
	if !sc.Elements[0].CarriesAudio() {
		t.Error("user audio=true should win")
	}
}

func TestBuildSceneRejectsInvalidResult(t *testing.T) {
	// Text element with no text still fails scene validation after the
	// merge.
	_, err := BuildScene(testTemplate(), []PartialElement{
		{
			Type:     scene.TypeText,
			Timeline: scene.Timeline{Start: 0, Duration: 5},
		},
	})
	if err == nil {
		t.Fatal("expected validation error")
	}
}

func TestBuildSceneIgnoresUnparseableSize(t *testing.T) {
	sc, err := BuildScene(testTemplate(), []PartialElement{
		{
			Type:     scene.TypeVideo,
			Timeline: scene.Timeline{Start: 0, Duration: 5},
			Source:   "/media/a.mp4",
			Size:     "huge",
		},
	})
	if err != nil {
		t.Fatalf("BuildScene: %v", err)
	}
	// Falls back to the template default scale.
	if sc.Elements[0].Transform.ScaleOrDefault() != 1.0 {
		t.Errorf("scale = %v", sc.Elements[0].Transform.ScaleOrDefault())
	}
}
