// Package compiler turns a validated scene into a single media-encoder
// invocation: one ordered argument list containing every input, the filter
// graph, the stream mappings and the encoding flags. Compile is pure — no
// I/O, no side effects — so the same scene always produces a byte-identical
// command.
package compiler

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"clipforge/internal/pkg/errors"
	"clipforge/internal/scene"
)

// Options configure the encoder invocation. Zero fields fall back to the
// defaults the service has always used.
type Options struct {
	Binary       string `yaml:"binary"`
	VideoCodec   string `yaml:"video_codec"`
	Preset       string `yaml:"preset"`
	PixelFormat  string `yaml:"pixel_format"`
	AudioCodec   string `yaml:"audio_codec"`
	AudioBitrate string `yaml:"audio_bitrate"`
}

// DefaultOptions returns the stock encoder configuration.
func DefaultOptions() Options {
	return Options{
		Binary:       "ffmpeg",
		VideoCodec:   "libx264",
		Preset:       "medium",
		PixelFormat:  "yuv420p",
		AudioCodec:   "aac",
		AudioBitrate: "128k",
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.Binary == "" {
		o.Binary = def.Binary
	}
	if o.VideoCodec == "" {
		o.VideoCodec = def.VideoCodec
	}
	if o.Preset == "" {
		o.Preset = def.Preset
	}
	if o.PixelFormat == "" {
		o.PixelFormat = def.PixelFormat
	}
	if o.AudioCodec == "" {
		o.AudioCodec = def.AudioCodec
	}
	if o.AudioBitrate == "" {
		o.AudioBitrate = def.AudioBitrate
	}
	return o
}

// Compiler is a stateless command builder; all state lives in the scene
// being compiled.
type Compiler struct {
	opts Options
}

func New(opts Options) *Compiler {
	return &Compiler{opts: opts.withDefaults()}
}

// mediaInput pairs an element with the encoder input index assigned to it.
// Index 0 is always the synthetic background; media inputs count up from 1
// in element order. Text elements are drawn, not decoded, so they never
// consume an input slot.
type mediaInput struct {
	index   int
	element *scene.Element
}

// Compile maps the scene to the full encoder argument list, destination
// path last. The caller is expected to have validated the scene.
func (c *Compiler) Compile(s *scene.Scene, outputPath string) ([]string, error) {
	argv := []string{c.opts.Binary, "-y"}

	out := s.Output
	background := fmt.Sprintf("color=c=%s:s=%dx%d:r=%d:d=%s",
		out.BackgroundColor, out.Resolution.Width, out.Resolution.Height,
		out.FrameRate, num(out.Duration))
	argv = append(argv, "-f", "lavfi", "-i", background)

	var inputs []mediaInput
	for i := range s.Elements {
		el := &s.Elements[i]
		switch el.Type {
		case scene.TypeVideo, scene.TypeImage, scene.TypeAudio:
			argv = append(argv, "-i", el.Source)
			inputs = append(inputs, mediaInput{index: len(inputs) + 1, element: el})
		}
	}

	g, lastVideo, err := c.buildVideoGraph(s, inputs)
	if err != nil {
		return nil, err
	}

	audioLabel := c.buildAudioGraph(g, out.Duration, inputs)
	embeddedAudio := firstEmbeddedAudioInput(inputs)

	switch {
	case len(inputs) > 0:
		argv = append(argv, "-filter_complex", g.render())
		argv = append(argv, "-map", mapRef(lastVideo))
		switch {
		case audioLabel != "":
			argv = append(argv, "-map", "["+audioLabel+"]")
		case embeddedAudio > 0:
			// The ? keeps the encode alive when the source turns out to
			// have no audio track after all.
			argv = append(argv, "-map", fmt.Sprintf("%d:a?", embeddedAudio))
		}
	case !g.empty():
		// Text-only scene: every step is a drawtext on the background, so
		// a plain -vf chain does the job without -filter_complex.
		exprs := make([]string, 0, len(g.steps))
		for _, st := range g.steps {
			exprs = append(exprs, st.expr)
		}
		argv = append(argv, "-vf", strings.Join(exprs, ","))
	}

	argv = append(argv,
		"-t", num(out.Duration),
		"-c:v", c.opts.VideoCodec,
		"-preset", c.opts.Preset,
		"-pix_fmt", c.opts.PixelFormat,
	)
	if audioLabel != "" || embeddedAudio > 0 {
		argv = append(argv, "-c:a", c.opts.AudioCodec, "-b:a", c.opts.AudioBitrate)
	}

	argv = append(argv, outputPath)
	return argv, nil
}

// buildVideoGraph walks the elements in their given order — the order IS
// the z-order — threading the running composite label through each overlay
// and text draw. It returns the graph and the final video label.
func (c *Compiler) buildVideoGraph(s *scene.Scene, inputs []mediaInput) (*graph, string, error) {
	g := &graph{}
	last := "0:v"
	overlays := 0
	indexOf := make(map[*scene.Element]int, len(inputs))
	for _, in := range inputs {
		indexOf[in.element] = in.index
	}

	for i := range s.Elements {
		el := &s.Elements[i]
		switch el.Type {
		case scene.TypeVideo:
			idx := indexOf[el]
			in := el.Timeline.InPoint()
			scaleF := num(el.Transform.ScaleOrDefault())
			prepared := "v" + strconv.Itoa(idx)
			g.add([]string{strconv.Itoa(idx) + ":v"},
				"trim="+num(in)+":"+num(in+el.Timeline.Duration)+
					",setpts=PTS-STARTPTS,scale=iw*"+scaleF+":ih*"+scaleF,
				prepared)
			last = c.overlay(g, last, prepared, el, overlays)
			overlays++

		case scene.TypeImage:
			idx := indexOf[el]
			scaleF := num(el.Transform.ScaleOrDefault())
			prepared := "img" + strconv.Itoa(idx)
			g.add([]string{strconv.Itoa(idx) + ":v"},
				"scale=iw*"+scaleF+":ih*"+scaleF,
				prepared)
			last = c.overlay(g, last, prepared, el, overlays)
			overlays++

		case scene.TypeText:
			label := "txt" + strconv.Itoa(i)
			g.add([]string{last}, drawtext(el), label)
			last = label

		case scene.TypeAudio:
			// handled by buildAudioGraph

		default:
			return nil, "", errors.Newf(errors.CodeInternal,
				"cannot compile element %q: unknown type %q", el.ID, el.Type)
		}
	}
	return g, last, nil
}

// overlay composites a prepared visual stream onto the running label,
// gated to the element's timeline window. Only literal integer positions
// are honored here; see overlayCoord.
func (c *Compiler) overlay(g *graph, last, prepared string, el *scene.Element, n int) string {
	x := overlayCoord(el.Transform.Position.X)
	y := overlayCoord(el.Transform.Position.Y)
	out := "ov" + strconv.Itoa(n)
	g.add([]string{last, prepared},
		"overlay=x="+strconv.Itoa(x)+":y="+strconv.Itoa(y)+
			":enable='"+between(el.Timeline.Start, el.Timeline.Duration)+"'",
		out)
	return out
}

// buildAudioGraph appends the standalone-audio chain: per element trim,
// volume, optional fades, delay to its timeline start and pad to the full
// output duration; then a mix (or relabel) into the single "aout" label.
// Returns "" when the scene has no standalone audio elements.
func (c *Compiler) buildAudioGraph(g *graph, outputDuration float64, inputs []mediaInput) string {
	var labels []string
	for _, mi := range inputs {
		el := mi.element
		if el.Type != scene.TypeAudio {
			continue
		}

		in := el.Timeline.InPoint()
		dur := el.Timeline.Duration
		var expr strings.Builder
		expr.WriteString("atrim=" + num(in) + ":" + num(in+dur))
		expr.WriteString(",asetpts=PTS-STARTPTS")
		expr.WriteString(",volume=" + num(el.VolumeOrDefault()))
		if el.FadeIn > 0 {
			expr.WriteString(",afade=t=in:st=0:d=" + num(el.FadeIn))
		}
		if el.FadeOut > 0 {
			expr.WriteString(",afade=t=out:st=" + num(dur-el.FadeOut) + ":d=" + num(el.FadeOut))
		}
		delayMs := strconv.Itoa(int(math.Round(el.Timeline.Start * 1000)))
		expr.WriteString(",adelay=" + delayMs + "|" + delayMs)
		expr.WriteString(",apad=whole_dur=" + num(outputDuration))

		label := "a" + strconv.Itoa(mi.index)
		g.add([]string{strconv.Itoa(mi.index) + ":a"}, expr.String(), label)
		labels = append(labels, label)
	}

	switch len(labels) {
	case 0:
		return ""
	case 1:
		g.add(labels, "anull", "aout")
	default:
		g.add(labels, "amix=inputs="+strconv.Itoa(len(labels))+":duration=longest", "aout")
	}
	return "aout"
}

// firstEmbeddedAudioInput returns the input index of the first video
// element that carries its embedded audio track, or 0 when none does.
func firstEmbeddedAudioInput(inputs []mediaInput) int {
	for _, in := range inputs {
		if in.element.CarriesAudio() {
			return in.index
		}
	}
	return 0
}

func drawtext(el *scene.Element) string {
	var b strings.Builder
	b.WriteString("drawtext=text='" + escapeDrawtext(el.Text) + "'")
	b.WriteString(":fontsize=" + strconv.Itoa(el.Style.FontSize))
	b.WriteString(":fontcolor=" + el.Style.Color)
	if el.Style.BackgroundColor != "" {
		b.WriteString(":box=1:boxcolor=" + normalizeBoxColor(el.Style.BackgroundColor))
	}
	b.WriteString(":x=" + resolveTextX(el.Transform.Position.X))
	b.WriteString(":y=" + resolveTextY(el.Transform.Position.Y))
	b.WriteString(":enable='" + between(el.Timeline.Start, el.Timeline.Duration) + "'")
	return b.String()
}

var drawtextEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`, `:`, `\:`)

func escapeDrawtext(text string) string {
	return drawtextEscaper.Replace(text)
}

func mapRef(label string) string {
	// Raw input streams like 0:v are referenced bare; graph intermediates
	// need brackets.
	if strings.Contains(label, ":") {
		return label
	}
	return "[" + label + "]"
}
