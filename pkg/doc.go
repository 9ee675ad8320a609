// Package pkg provides the core libraries for wiring harness documentation.
//
// # Overview
//
// Wiring turns a YAML description of devices and the cables between them into
// a validated model of a wiring harness, and draws one pinout diagram per
// connection group. The pkg directory is organized into four main areas:
//
//  1. [wiring] - Domain logic (devices, connections, groups, validation)
//  2. [io] and [render] - Input decoding, JSON export and diagram output
//  3. [pipeline] - Orchestration (decode → build → render) with caching
//  4. [cache], [errors], [observability] - Shared infrastructure
//
// # Architecture
//
// The typical data flow:
//
//	harness.yaml
//	     ↓
//	[io] package (decode, normalise list/endpoint shapes)
//	     ↓
//	[wiring] package (build devices and connections, validate)
//	     ↓
//	[render/nodelink] package (DOT per group, Graphviz)
//	     ↓
//	SVG/PDF/PNG/DOT/JSON output
//
// # Quick Start
//
// Build and validate a harness:
//
//	decls, _ := io.ImportYAML("harness.yaml")
//	res, err := wiring.Build(decls, wiring.WithPolicy(wiring.Lenient))
//	if err != nil {
//	    log.Fatal(err) // strict abort or undecodable declaration
//	}
//	for _, d := range res.Diagnostics {
//	    fmt.Println(d)
//	}
//
// Render the diagrams:
//
//	for _, d := range nodelink.Diagrams(res.Document, nodelink.DefaultOptions()) {
//	    svg, _ := nodelink.RenderSVG(ctx, d.DOT)
//	    os.WriteFile(d.FileStem("harness")+".svg", svg, 0o644)
//	}
//
// # Main Packages
//
// [wiring] - Devices, connections, groups and the validator. Build applies a
// Lenient or Strict policy: lenient records every diagnostic and creates
// placeholders for undeclared devices; strict stops at the first error.
//
// [color] - The wire color table (short code, long name, display value).
//
// [io] - YAML decoding with source line numbers and the JSON model export.
//
// [render/nodelink] - Graphviz DOT generation and SVG rendering.
//
// [render] - Format conversion (SVG to PDF/PNG) via rsvg-convert.
//
// [pipeline] - The decode → build → render pipeline shared by CLI and API.
//
// [cache] - Artifact caches (file, Redis, null) and key derivation.
//
// [errors] - Structured error codes with HTTP status mapping.
//
// [observability] - Hooks for pipeline, cache and HTTP events.
//
// [buildinfo] - Version information set at build time.
//
// # Testing
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/wiring/...             # Specific package
//	go test -run Example ./pkg/...       # Examples only
//
// [wiring]: https://pkg.go.dev/github.com/matzehuels/wiring/pkg/wiring
// [color]: https://pkg.go.dev/github.com/matzehuels/wiring/pkg/color
// [io]: https://pkg.go.dev/github.com/matzehuels/wiring/pkg/io
// [render]: https://pkg.go.dev/github.com/matzehuels/wiring/pkg/render
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/wiring/pkg/render/nodelink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/wiring/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/wiring/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/wiring/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/wiring/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/wiring/pkg/buildinfo
package pkg
