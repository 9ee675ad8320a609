// Package pipeline provides the decode → build → render pipeline shared by
// the CLI and the HTTP API.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Decode: parse the YAML harness description into declarations
//  2. Build: construct and validate the document under the chosen policy
//  3. Render: generate one artifact per diagram and format (SVG, PNG, PDF,
//     DOT) plus the JSON model export
//
// Rendering runs diagrams concurrently and caches every artifact under a key
// derived from the input bytes and every option that affects the output.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, input, pipeline.Options{
//	    Formats: []string{"svg", "json"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, a := range result.Artifacts {
//	    os.WriteFile(a.FileName("harness"), a.Data, 0o644)
//	}
//
// Run individual stages:
//
//	res, err := runner.Build(ctx, input, opts)
//	artifacts, info, err := runner.Render(ctx, cache.Hash(input), res, opts)
package pipeline

import (
	"encoding/json"
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/wiring/pkg/cache"
	"github.com/matzehuels/wiring/pkg/color"
	werrors "github.com/matzehuels/wiring/pkg/errors"
	"github.com/matzehuels/wiring/pkg/render/nodelink"
	"github.com/matzehuels/wiring/pkg/wiring"
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatDOT  = "dot"
	FormatJSON = "json"
)

// SupportedFormats lists the output formats in display order.
var SupportedFormats = []string{FormatSVG, FormatPDF, FormatPNG, FormatDOT, FormatJSON}

const (
	// DefaultPNGScale renders PNG output at twice the SVG size.
	DefaultPNGScale = 2.0

	// DefaultConcurrency bounds the number of diagrams rendered at once.
	DefaultConcurrency = 4
)

// ContentType returns the MIME type of a format.
func ContentType(format string) string {
	switch format {
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	case FormatPDF:
		return "application/pdf"
	case FormatJSON:
		return "application/json"
	default:
		return "text/vnd.graphviz; charset=utf-8"
	}
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !slices.Contains(SupportedFormats, format) {
		return werrors.New(werrors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)", format, strings.Join(SupportedFormats, ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// Options contains all configuration for a pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Build options
	Strict bool         `json:"strict,omitempty"`
	Colors *color.Table `json:"-"` // nil selects color.Default()

	// Render options
	Formats    []string `json:"formats,omitempty"`
	Combine    bool     `json:"combine,omitempty"`
	Group      string   `json:"group,omitempty"` // render only this diagram
	Font       string   `json:"font,omitempty"`
	Background string   `json:"background,omitempty"`
	TitleColor string   `json:"title_color,omitempty"`
	PNGScale   float64  `json:"png_scale,omitempty"`
	Refresh    bool     `json:"refresh,omitempty"` // ignore cached artifacts

	validated bool
}

// ValidateAndSetDefaults checks the options and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	formats := make([]string, 0, len(o.Formats))
	for _, f := range o.Formats {
		f = strings.ToLower(strings.TrimSpace(f))
		if !slices.Contains(formats, f) {
			formats = append(formats, f)
		}
	}
	o.Formats = formats
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Colors == nil {
		o.Colors = color.Default()
	}
	if o.PNGScale <= 0 {
		o.PNGScale = DefaultPNGScale
	}
	o.validated = true
	return nil
}

// Policy returns the build policy selected by Strict.
func (o *Options) Policy() wiring.Policy {
	return wiring.PolicyFor(o.Strict)
}

// NodelinkOptions returns the diagram options.
func (o *Options) NodelinkOptions() nodelink.Options {
	return nodelink.Options{
		Combine:    o.Combine,
		Font:       o.Font,
		Background: o.Background,
		TitleColor: o.TitleColor,
	}
}

// ArtifactKeyOpts returns cache key options for one artifact.
func (o *Options) ArtifactKeyOpts(format, diagram string) cache.ArtifactKeyOpts {
	key := cache.ArtifactKeyOpts{
		Format:     format,
		Diagram:    diagram,
		Combine:    o.Combine,
		Strict:     o.Strict,
		Palette:    paletteHash(o.Colors),
		Font:       o.Font,
		Background: o.Background,
		TitleColor: o.TitleColor,
	}
	if format == FormatPNG {
		key.Scale = o.PNGScale
	}
	return key
}

func paletteHash(t *color.Table) string {
	if t == nil || t == color.Default() {
		return ""
	}
	data, _ := json.Marshal(t.Entries())
	return cache.Hash(data)
}

// Artifact is one rendered output file.
type Artifact struct {
	// Diagram is the diagram name, "" for combined output and the JSON model.
	Diagram string
	Format  string
	Data    []byte
	Cached  bool
}

// FileName returns the output file name for the given input stem.
func (a Artifact) FileName(stem string) string {
	return nodelink.Diagram{Name: a.Diagram}.FileStem(stem) + "." + a.Format
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Build is the built document and its diagnostics.
	Build *wiring.Result

	// InputHash is the content hash of the input.
	InputHash string

	// Artifacts are the rendered outputs, diagram by diagram in document
	// order, formats in request order.
	Artifacts []Artifact

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks artifact cache usage.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Devices     int
	Connections int
	Diagnostics int
	Diagrams    int
	BuildTime   time.Duration
	RenderTime  time.Duration
}

// CacheInfo counts artifact cache hits and misses.
type CacheInfo struct {
	Hits   int
	Misses int
}
