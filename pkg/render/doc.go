// Package render converts rendered diagrams between output formats.
//
// Diagrams are produced as SVG by the [nodelink] subpackage. The [ToPDF]
// and [ToPNG] functions convert any SVG to other formats using the external
// rsvg-convert tool (from librsvg):
//
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// [Available] reports whether the converter is installed, so callers can
// fail early instead of after SVG rendering.
//
// [nodelink]: github.com/matzehuels/wiring/pkg/render/nodelink
package render
