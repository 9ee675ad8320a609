package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/wiring/pkg/render"
	"github.com/matzehuels/wiring/pkg/wiring"
)

// UnconnectedName names the diagram (and cluster) holding devices that no
// connection references. If a group already uses it, [UnconnectedFallback]
// is used instead, numbered from 2 while that is taken as well.
const (
	UnconnectedName     = "unconnected"
	UnconnectedFallback = "unconnected_devices"
)

const blackValue = "#000000"

// Options configures diagram generation.
type Options struct {
	// Combine draws every group into a single diagram.
	Combine bool
	// Font is the font family for all text.
	Font string
	// Background is the graph background color.
	Background string
	// TitleColor fills the device title cell.
	TitleColor string
}

// DefaultOptions returns the standard look: Roboto on a light grey canvas
// with light blue device titles.
func DefaultOptions() Options {
	return Options{
		Font:       "Roboto",
		Background: "#CCCCCC",
		TitleColor: "lightblue",
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Font == "" {
		o.Font = d.Font
	}
	if o.Background == "" {
		o.Background = d.Background
	}
	if o.TitleColor == "" {
		o.TitleColor = d.TitleColor
	}
	return o
}

// Diagram is the DOT source of one output file.
type Diagram struct {
	// Name is the group the diagram shows, "" for a combined diagram.
	Name string
	// Groups lists the clusters drawn, in order.
	Groups []string
	// Unconnected is set when the diagram draws the unconnected devices.
	Unconnected bool
	DOT         string
}

// FileStem returns the output name for the diagram: stem itself for the
// default group and for combined output, stem_<group> otherwise. Spaces are
// replaced by underscores.
func (d Diagram) FileStem(stem string) string {
	name := stem
	if d.Name != "" && d.Name != wiring.DefaultGroup {
		name = stem + "_" + d.Name
	}
	return strings.ReplaceAll(name, " ", "_")
}

// Diagrams returns the diagrams for doc: one per group in first-use order
// followed by one for unconnected devices, or a single combined diagram when
// opts.Combine is set.
func Diagrams(doc *wiring.Document, opts Options) []Diagram {
	opts = opts.withDefaults()
	groups := doc.GroupNames()
	loose := ""
	if len(doc.UnconnectedDevices()) > 0 {
		loose = UnconnectedClusterName(doc)
	}

	if opts.Combine {
		clusters := slices.Clone(groups)
		if loose != "" {
			clusters = append(clusters, loose)
		}
		return []Diagram{{
			Groups:      clusters,
			Unconnected: loose != "",
			DOT:         toDOT(doc, groups, loose, opts),
		}}
	}

	out := make([]Diagram, 0, len(groups)+1)
	for _, g := range groups {
		out = append(out, Diagram{
			Name:   g,
			Groups: []string{g},
			DOT:    toDOT(doc, []string{g}, "", opts),
		})
	}
	if loose != "" {
		out = append(out, Diagram{
			Name:        loose,
			Groups:      []string{loose},
			Unconnected: true,
			DOT:         toDOT(doc, nil, loose, opts),
		})
	}
	return out
}

// UnconnectedClusterName returns the name used for the unconnected devices
// of doc. The name never matches a group of doc.
func UnconnectedClusterName(doc *wiring.Document) string {
	name := UnconnectedName
	for n := 1; ; n++ {
		if _, taken := doc.Group(name); !taken {
			return name
		}
		name = UnconnectedFallback
		if n > 1 {
			name = fmt.Sprintf("%s_%d", UnconnectedFallback, n)
		}
	}
}

// ToDOT converts the named groups of doc to a single Graphviz DOT graph. The
// name returned by [UnconnectedClusterName] selects the unconnected devices.
// Unknown names are skipped.
//
// The resulting DOT string can be rendered using [RenderSVG], [RenderPDF], or [RenderPNG].
func ToDOT(doc *wiring.Document, groups []string, opts Options) string {
	loose := UnconnectedClusterName(doc)
	var named []string
	var withLoose bool
	for _, g := range groups {
		if g == loose {
			withLoose = true
			continue
		}
		named = append(named, g)
	}
	if !withLoose {
		loose = ""
	}
	return toDOT(doc, named, loose, opts.withDefaults())
}

// toDOT draws groups followed by the unconnected devices under the cluster
// name loose, if loose is not empty.
func toDOT(doc *wiring.Document, groups []string, loose string, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	fmt.Fprintf(&buf, "  graph [rankdir=LR, ranksep=3, bgcolor=%q, nodesep=0.33, fontname=%q];\n", opts.Background, opts.Font)
	fmt.Fprintf(&buf, "  node [shape=box, width=0, height=0, margin=0, style=filled, fillcolor=\"#F0F0F0\", fontname=%q];\n", opts.Font)
	fmt.Fprintf(&buf, "  edge [style=bold, fontname=%q];\n", opts.Font)

	for _, name := range groups {
		g, ok := doc.Group(name)
		if !ok {
			continue
		}
		writeGroup(&buf, doc, g, opts)
	}
	if loose != "" {
		writeUnconnected(&buf, doc, loose, opts)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeGroup(buf *bytes.Buffer, doc *wiring.Document, g wiring.Group, opts Options) {
	openCluster(buf, g.Name)

	seen := make(map[string]bool)
	for _, c := range g.Connections {
		for _, name := range []string{c.FromDevice, c.ToDevice} {
			if seen[name] {
				continue
			}
			seen[name] = true
			if d, ok := doc.Device(name); ok {
				writeNode(buf, g.Name, d, opts)
			}
		}
	}

	for _, c := range g.Connections {
		from, _ := doc.Device(c.FromDevice)
		to, _ := doc.Device(c.ToDevice)
		for _, w := range c.Wires() {
			value := doc.ResolveColor(w.Color)
			if value == "" {
				value = blackValue
			}
			fmt.Fprintf(buf, "    %s -- %s [color=\"%s:%s:%s\", penwidth=2];\n",
				portRef(g.Name, from, w.FromPin, "e"),
				portRef(g.Name, to, w.ToPin, "w"),
				blackValue, value, blackValue)
		}
	}

	buf.WriteString("  }\n")
}

func writeUnconnected(buf *bytes.Buffer, doc *wiring.Document, name string, opts Options) {
	devices := doc.UnconnectedDevices()
	if len(devices) == 0 {
		return
	}
	openCluster(buf, name)
	for _, d := range devices {
		writeNode(buf, name, d, opts)
	}
	buf.WriteString("  }\n")
}

func openCluster(buf *bytes.Buffer, group string) {
	label := group
	if group == wiring.DefaultGroup {
		label = ""
	}
	fmt.Fprintf(buf, "\n  subgraph %q {\n", "cluster_"+group)
	fmt.Fprintf(buf, "    label=%q;\n", label)
}

func nodeID(group, device string) string {
	return group + "_" + device
}

// portRef addresses the pin port on the given side, or the node side
// itself when the wire does not land on a known pin.
func portRef(group string, d *wiring.Device, pin, side string) string {
	id := strconv.Quote(nodeID(group, d.Name))
	if i := d.PinIndex(pin); i >= 0 {
		return fmt.Sprintf("%s:p%d%s:%s", id, i+1, side, side)
	}
	return id + ":" + side
}

func writeNode(buf *bytes.Buffer, group string, d *wiring.Device, opts Options) {
	fmt.Fprintf(buf, "    %q [shape=plaintext, label=<%s>];\n", nodeID(group, d.Name), deviceTable(d, opts))
}

// deviceTable builds the HTML-like label: a title row, an optional info row,
// then one row per pin reading "index | name (count[, color])".
func deviceTable(d *wiring.Device, opts Options) string {
	var b strings.Builder
	b.WriteString(`<table border="1" cellspacing="0" cellpadding="2">`)

	title := html.EscapeString(d.Name)
	if d.Type != "" {
		title += `<br/><font point-size="10">` + html.EscapeString(d.Type) + `</font>`
	}
	fmt.Fprintf(&b, `<tr><td colspan="2" bgcolor="%s">%s</td></tr>`, html.EscapeString(opts.TitleColor), title)
	if d.Info != "" {
		fmt.Fprintf(&b, `<tr><td colspan="2">%s</td></tr>`, html.EscapeString(d.Info))
	}

	colored := len(d.Colors) > 0 && d.ColorsConsistent()
	for i, pin := range d.Pins {
		detail := strconv.Itoa(d.ConnectionCount(pin))
		if colored {
			detail += ", " + d.Colors[i]
		}
		fmt.Fprintf(&b, `<tr><td port="p%[1]dw">%[1]d</td><td port="p%[1]de">%[2]s (%[3]s)</td></tr>`,
			i+1, html.EscapeString(pin), html.EscapeString(detail))
	}

	b.WriteString(`</table>`)
	return b.String()
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(tag))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion. A scale of 2.0
// produces a 2x resolution image.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
