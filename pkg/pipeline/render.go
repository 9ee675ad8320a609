package pipeline

import (
	"bytes"
	"context"
	"fmt"

	werrors "github.com/matzehuels/wiring/pkg/errors"
	wio "github.com/matzehuels/wiring/pkg/io"
	"github.com/matzehuels/wiring/pkg/render/nodelink"
	"github.com/matzehuels/wiring/pkg/wiring"
)

// SelectDiagrams returns the diagrams of doc selected by opts. With
// opts.Group set, only that group is drawn; an unknown group yields a
// GROUP_NOT_FOUND error.
func SelectDiagrams(doc *wiring.Document, opts Options) ([]nodelink.Diagram, error) {
	nopts := opts.NodelinkOptions()
	if opts.Group == "" {
		return nodelink.Diagrams(doc, nopts), nil
	}

	_, isGroup := doc.Group(opts.Group)
	isLoose := !isGroup && len(doc.UnconnectedDevices()) > 0 &&
		opts.Group == nodelink.UnconnectedClusterName(doc)
	if !isGroup && !isLoose {
		return nil, werrors.New(werrors.ErrCodeGroupNotFound, "group %q not found", opts.Group)
	}
	groups := []string{opts.Group}
	return []nodelink.Diagram{{
		Name:        opts.Group,
		Groups:      groups,
		Unconnected: isLoose,
		DOT:         nodelink.ToDOT(doc, groups, nopts),
	}}, nil
}

// renderArtifact produces one output. JSON exports the whole document and
// ignores the diagram.
func renderArtifact(ctx context.Context, res *wiring.Result, j job, opts Options) ([]byte, error) {
	switch j.format {
	case FormatDOT:
		return []byte(j.dot), nil
	case FormatSVG:
		return nodelink.RenderSVG(ctx, j.dot)
	case FormatPDF:
		return nodelink.RenderPDF(ctx, j.dot)
	case FormatPNG:
		return nodelink.RenderPNG(ctx, j.dot, opts.PNGScale)
	case FormatJSON:
		var buf bytes.Buffer
		if err := wio.WriteJSON(res, &buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", j.format)
	}
}
