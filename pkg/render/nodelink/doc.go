// Package nodelink renders wiring documents as Graphviz pinout diagrams.
//
// # Overview
//
// Every device becomes a table node listing its pins. Each wire of a
// connection is drawn from the east port of its source pin to the west
// port of its target pin, in the wire's color between two black borders.
// Connections are clustered by group; devices that nothing references are
// collected in an extra "unconnected" cluster.
//
// # Usage
//
// Build the DOT source for every output file, then render:
//
//	for _, d := range nodelink.Diagrams(doc, nodelink.DefaultOptions()) {
//	    svg, err := nodelink.RenderSVG(ctx, d.DOT)
//	    ...
//	    os.WriteFile(d.FileStem("harness")+".svg", svg, 0o644)
//	}
//
// For PDF or PNG output, use the render functions:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)  // 2x scale
//
// # Options
//
// The [Options] struct controls diagram generation:
//
//   - Combine: draw all groups into one diagram instead of one per group
//   - Font, Background, TitleColor: visual defaults, see [DefaultOptions]
//
// # Pin Rows
//
// A pin row reads "index | name (count[, color])" where count is the number
// of wires landing on the pin across the whole document and color is the
// pin's declared wire color. Unnamed pins keep their index with an empty
// name. Ports are named p<index>w and p<index>e so pin names never need
// escaping in port references.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
