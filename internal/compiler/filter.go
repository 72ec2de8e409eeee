package compiler

import (
	"strconv"
	"strings"
)

// step is one node of the filter graph: zero or more input labels, the
// filter expression, and the output labels it produces. Keeping the graph
// as typed records until the final render pass keeps ordering and
// label-uniqueness invariants checkable without invoking the encoder.
type step struct {
	inputs  []string
	expr    string
	outputs []string
}

func (s step) render(b *strings.Builder) {
	for _, in := range s.inputs {
		b.WriteByte('[')
		b.WriteString(in)
		b.WriteByte(']')
	}
	b.WriteString(s.expr)
	for _, out := range s.outputs {
		b.WriteByte('[')
		b.WriteString(out)
		b.WriteByte(']')
	}
}

// graph is an ordered sequence of filter steps.
type graph struct {
	steps []step
}

func (g *graph) add(inputs []string, expr string, outputs ...string) {
	g.steps = append(g.steps, step{inputs: inputs, expr: expr, outputs: outputs})
}

func (g *graph) empty() bool {
	return len(g.steps) == 0
}

// outputLabels returns every intermediate label the graph produces, in
// emission order.
func (g *graph) outputLabels() []string {
	var labels []string
	for _, s := range g.steps {
		labels = append(labels, s.outputs...)
	}
	return labels
}

// render joins the steps into the encoder's filter-graph string, semicolon
// separated with no trailing separator.
func (g *graph) render() string {
	var b strings.Builder
	for i, s := range g.steps {
		if i > 0 {
			b.WriteByte(';')
		}
		s.render(&b)
	}
	return b.String()
}

// num formats a float the same way on every call so compiled commands are
// byte-identical for identical scenes.
func num(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// between renders the time-window gate for the half-open window
// [start, start+duration).
func between(start, duration float64) string {
	return "between(t," + num(start) + "," + num(start+duration) + ")"
}
