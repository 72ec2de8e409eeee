package compiler

import (
	"reflect"
	"strings"
	"testing"

	"clipforge/internal/scene"
)

func fptr(v float64) *float64 { return &v }
func bptr(v bool) *bool       { return &v }

func baseOutput() scene.Output {
	return scene.Output{
		Resolution:      scene.Resolution{Width: 1080, Height: 1920},
		FrameRate:       30,
		Format:          scene.FormatMP4,
		Duration:        10,
		BackgroundColor: "black",
	}
}

func textElement(id, text string) scene.Element {
	return scene.Element{
		ID:       id,
		Type:     scene.TypeText,
		Timeline: scene.Timeline{Start: 0, Duration: 5},
		Text:     text,
		Style: &scene.Style{
			FontFamily: "Arial",
			FontSize:   48,
			Color:      "white",
			Alignment:  scene.AlignCenter,
		},
		Transform: &scene.Transform{
			Position: scene.Position{
				X: scene.PresetCoord(scene.PresetCenter),
				Y: scene.PresetCoord(scene.PresetBottom),
			},
		},
	}
}

func TestCompileTextOnlyScene(t *testing.T) {
	s := &scene.Scene{
		Output:   baseOutput(),
		Elements: []scene.Element{textElement("caption", "Hello")},
	}

	argv, err := New(Options{}).Compile(s, "/tmp/out.mp4")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	want := []string{
		"ffmpeg", "-y",
		"-f", "lavfi", "-i", "color=c=black:s=1080x1920:r=30:d=10",
		"-vf", "drawtext=text='Hello':fontsize=48:fontcolor=white:x=(w-text_w)/2:y=h-text_h-10:enable='between(t,0,5)'",
		"-t", "10",
		"-c:v", "libx264",
		"-preset", "medium",
		"-pix_fmt", "yuv420p",
		"/tmp/out.mp4",
	}
	if !reflect.DeepEqual(argv, want) {
		t.Errorf("argv mismatch\n got: %v\nwant: %v", argv, want)
	}
}

func TestCompileEmptySceneIsPlainBackground(t *testing.T) {
	s := &scene.Scene{Output: baseOutput()}

	argv, err := New(Options{}).Compile(s, "/tmp/out.mp4")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	// No elements means no filters, no stream maps and no audio encoder,
	// just the background source encoded as-is.
	want := []string{
		"ffmpeg", "-y",
		"-f", "lavfi", "-i", "color=c=black:s=1080x1920:r=30:d=10",
		"-t", "10",
		"-c:v", "libx264",
		"-preset", "medium",
		"-pix_fmt", "yuv420p",
		"/tmp/out.mp4",
	}
	if !reflect.DeepEqual(argv, want) {
		t.Errorf("argv mismatch\n got: %v\nwant: %v", argv, want)
	}
}

func TestCompileVideoWithEmbeddedAudio(t *testing.T) {
	s := &scene.Scene{
		Output: baseOutput(),
		Elements: []scene.Element{
			{
				ID:       "main",
				Type:     scene.TypeVideo,
				Timeline: scene.Timeline{Start: 0, Duration: 10, In: fptr(2)},
				Source:   "/media/main.mp4",
				Audio:    bptr(true),
				Transform: &scene.Transform{
					Position: scene.Position{X: scene.IntCoord(0), Y: scene.IntCoord(0)},
				},
			},
		},
	}

	argv, err := New(Options{}).Compile(s, "/tmp/out.mp4")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	want := []string{
		"ffmpeg", "-y",
		"-f", "lavfi", "-i", "color=c=black:s=1080x1920:r=30:d=10",
		"-i", "/media/main.mp4",
		"-filter_complex",
		"[1:v]trim=2:12,setpts=PTS-STARTPTS,scale=iw*1:ih*1[v1];" +
			"[0:v][v1]overlay=x=0:y=0:enable='between(t,0,10)'[ov0]",
		"-map", "[ov0]",
		"-map", "1:a?",
		"-t", "10",
		"-c:v", "libx264",
		"-preset", "medium",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-b:a", "128k",
		"/tmp/out.mp4",
	}
	if !reflect.DeepEqual(argv, want) {
		t.Errorf("argv mismatch\n got: %v\nwant: %v", argv, want)
	}
}

func TestCompileStandaloneAudioChain(t *testing.T) {
	s := &scene.Scene{
		Output: baseOutput(),
		Elements: []scene.Element{
			{
				ID:       "music",
				Type:     scene.TypeAudio,
				Timeline: scene.Timeline{Start: 2, Duration: 8},
				Source:   "/media/music.mp3",
				Volume:   fptr(0.5),
				FadeIn:   1,
				FadeOut:  1,
			},
		},
	}

	argv, err := New(Options{}).Compile(s, "/tmp/out.mp4")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	cmd := strings.Join(argv, " ")

	wantChain := "[1:a]atrim=0:8,asetpts=PTS-STARTPTS,volume=0.5," +
		"afade=t=in:st=0:d=1,afade=t=out:st=7:d=1," +
		"adelay=2000|2000,apad=whole_dur=10[a1];[a1]anull[aout]"
	if !strings.Contains(cmd, wantChain) {
		t.Errorf("missing audio chain\n got: %s\nwant substring: %s", cmd, wantChain)
	}
	if !strings.Contains(cmd, "-map [aout]") {
		t.Errorf("expected -map [aout], got: %s", cmd)
	}
	if !strings.Contains(cmd, "-c:a aac -b:a 128k") {
		t.Errorf("expected audio encoding flags, got: %s", cmd)
	}
}

func TestCompileAudioDelayRoundsToNearestMillisecond(t *testing.T) {
	// 8.2*1000 is fractionally below 8200 in float arithmetic; plain
	// truncation would emit adelay=8199.
	s := &scene.Scene{
		Output: baseOutput(),
		Elements: []scene.Element{
			{
				ID:       "sting",
				Type:     scene.TypeAudio,
				Timeline: scene.Timeline{Start: 8.2, Duration: 1},
				Source:   "/media/sting.mp3",
			},
		},
	}

	argv, err := New(Options{}).Compile(s, "/tmp/out.mp4")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	cmd := strings.Join(argv, " ")

	if !strings.Contains(cmd, "adelay=8200|8200") {
		t.Errorf("expected adelay=8200|8200, got: %s", cmd)
	}
}

func TestCompileMixesMultipleAudioElements(t *testing.T) {
	audio := func(id, src string, start float64) scene.Element {
		return scene.Element{
			ID:       id,
			Type:     scene.TypeAudio,
			Timeline: scene.Timeline{Start: start, Duration: 4},
			Source:   src,
		}
	}
	s := &scene.Scene{
		Output: baseOutput(),
		Elements: []scene.Element{
			audio("voice", "/media/voice.mp3", 0),
			audio("music", "/media/music.mp3", 1),
		},
	}

	argv, err := New(Options{}).Compile(s, "/tmp/out.mp4")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	cmd := strings.Join(argv, " ")

	if !strings.Contains(cmd, "[a1][a2]amix=inputs=2:duration=longest[aout]") {
		t.Errorf("expected amix across both elements, got: %s", cmd)
	}
}

// Audio mapping is exclusive: a mixed standalone track wins over any
// embedded video audio.
func TestCompileAudioMappingIsExclusive(t *testing.T) {
	s := &scene.Scene{
		Output: baseOutput(),
		Elements: []scene.Element{
			{
				ID:       "main",
				Type:     scene.TypeVideo,
				Timeline: scene.Timeline{Start: 0, Duration: 10},
				Source:   "/media/main.mp4",
				Audio:    bptr(true),
				Transform: &scene.Transform{
					Position: scene.Position{X: scene.IntCoord(0), Y: scene.IntCoord(0)},
				},
			},
			{
				ID:       "music",
				Type:     scene.TypeAudio,
				Timeline: scene.Timeline{Start: 0, Duration: 10},
				Source:   "/media/music.mp3",
			},
		},
	}

	argv, err := New(Options{}).Compile(s, "/tmp/out.mp4")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	cmd := strings.Join(argv, " ")

	if !strings.Contains(cmd, "-map [aout]") {
		t.Errorf("expected standalone audio mapping, got: %s", cmd)
	}
	if strings.Contains(cmd, ":a?") {
		t.Errorf("embedded audio must not be mapped alongside aout, got: %s", cmd)
	}
}

func TestCompileInputIndicesFollowElementOrder(t *testing.T) {
	s := &scene.Scene{
		Output: baseOutput(),
		Elements: []scene.Element{
			{
				ID: "clip", Type: scene.TypeVideo,
				Timeline: scene.Timeline{Duration: 5},
				Source:   "/media/a.mp4", Audio: bptr(false),
				Transform: &scene.Transform{},
			},
			textElement("caption", "Hi"),
			{
				ID: "logo", Type: scene.TypeImage,
				Timeline:  scene.Timeline{Duration: 5},
				Source:    "/media/logo.png",
				Transform: &scene.Transform{},
			},
			{
				ID: "music", Type: scene.TypeAudio,
				Timeline: scene.Timeline{Duration: 5},
				Source:   "/media/music.mp3",
			},
		},
	}

	argv, err := New(Options{}).Compile(s, "/tmp/out.mp4")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	// Text consumes no input slot: indices 1..3 are video, image, audio in
	// element order.
	var sources []string
	for i, a := range argv {
		if a == "-i" && i > 0 && argv[i-1] != "lavfi" {
			sources = append(sources, argv[i+1])
		}
	}
	wantSources := []string{"/media/a.mp4", "/media/logo.png", "/media/music.mp3"}
	if !reflect.DeepEqual(sources, wantSources) {
		t.Errorf("input order mismatch\n got: %v\nwant: %v", sources, wantSources)
	}

	cmd := strings.Join(argv, " ")
	if !strings.Contains(cmd, "[2:v]scale=") {
		t.Errorf("image should decode from input 2, got: %s", cmd)
	}
	if !strings.Contains(cmd, "[3:a]atrim=") {
		t.Errorf("audio should decode from input 3, got: %s", cmd)
	}
}

func TestCompileIsDeterministic(t *testing.T) {
	s := &scene.Scene{
		Output: baseOutput(),
		Elements: []scene.Element{
			{
				ID: "clip", Type: scene.TypeVideo,
				Timeline: scene.Timeline{Start: 0.5, Duration: 3.25},
				Source:   "/media/a.mp4", Audio: bptr(false),
				Transform: &scene.Transform{
					Position: scene.Position{X: scene.IntCoord(10), Y: scene.IntCoord(20)},
					Scale:    fptr(0.75),
				},
			},
			textElement("caption", "Same every time"),
			{
				ID: "music", Type: scene.TypeAudio,
				Timeline: scene.Timeline{Start: 1, Duration: 6},
				Source:   "/media/music.mp3",
				Volume:   fptr(0.8),
			},
		},
	}

	c := New(Options{})
	first, err := c.Compile(s, "/tmp/out.mp4")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := c.Compile(s, "/tmp/out.mp4")
		if err != nil {
			t.Fatalf("Compile: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differed\nfirst: %v\nagain: %v", i, first, again)
		}
	}
}

func TestCompileGraphLabelsAreUnique(t *testing.T) {
	s := &scene.Scene{
		Output: baseOutput(),
		Elements: []scene.Element{
			{
				ID: "a", Type: scene.TypeVideo,
				Timeline: scene.Timeline{Duration: 5},
				Source:   "/media/a.mp4", Audio: bptr(false),
				Transform: &scene.Transform{},
			},
			{
				ID: "b", Type: scene.TypeImage,
				Timeline:  scene.Timeline{Duration: 5},
				Source:    "/media/b.png",
				Transform: &scene.Transform{},
			},
			textElement("t1", "one"),
			{
				ID: "m1", Type: scene.TypeAudio,
				Timeline: scene.Timeline{Duration: 5},
				Source:   "/media/m1.mp3",
			},
			{
				ID: "m2", Type: scene.TypeAudio,
				Timeline: scene.Timeline{Duration: 5},
				Source:   "/media/m2.mp3",
			},
		},
	}

	inputs := []mediaInput{
		{index: 1, element: &s.Elements[0]},
		{index: 2, element: &s.Elements[1]},
		{index: 3, element: &s.Elements[3]},
		{index: 4, element: &s.Elements[4]},
	}
	c := New(Options{})
	g, _, err := c.buildVideoGraph(s, inputs)
	if err != nil {
		t.Fatalf("buildVideoGraph: %v", err)
	}
	c.buildAudioGraph(g, s.Output.Duration, inputs)

	seen := map[string]bool{}
	for _, label := range g.outputLabels() {
		if seen[label] {
			t.Errorf("duplicate graph label %q", label)
		}
		seen[label] = true
	}
}

func TestCompileEscapesDrawtext(t *testing.T) {
	el := textElement("caption", `it's 12:30`)
	s := &scene.Scene{Output: baseOutput(), Elements: []scene.Element{el}}

	argv, err := New(Options{}).Compile(s, "/tmp/out.mp4")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	cmd := strings.Join(argv, " ")

	if !strings.Contains(cmd, `text='it\'s 12\:30'`) {
		t.Errorf("expected escaped drawtext text, got: %s", cmd)
	}
}

func TestCompileCustomOptions(t *testing.T) {
	s := &scene.Scene{
		Output:   baseOutput(),
		Elements: []scene.Element{textElement("caption", "Hi")},
	}

	argv, err := New(Options{
		Binary:     "/usr/local/bin/ffmpeg",
		VideoCodec: "libx265",
		Preset:     "fast",
	}).Compile(s, "/tmp/out.mp4")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	if argv[0] != "/usr/local/bin/ffmpeg" {
		t.Errorf("binary = %q", argv[0])
	}
	cmd := strings.Join(argv, " ")
	if !strings.Contains(cmd, "-c:v libx265 -preset fast -pix_fmt yuv420p") {
		t.Errorf("expected overridden codec with default pix_fmt, got: %s", cmd)
	}
}

func TestCompileRejectsUnknownElementType(t *testing.T) {
	s := &scene.Scene{
		Output: baseOutput(),
		Elements: []scene.Element{
			{ID: "x", Type: "hologram", Timeline: scene.Timeline{Duration: 5}},
		},
	}

	if _, err := New(Options{}).Compile(s, "/tmp/out.mp4"); err == nil {
		t.Fatal("expected error for unknown element type")
	}
}
