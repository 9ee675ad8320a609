package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/wiring/pkg/wiring"
)

type model struct {
	Devices     []device           `json:"devices"`
	Groups      []group            `json:"groups"`
	Diagnostics wiring.Diagnostics `json:"diagnostics"`
	Stats       wiring.Stats       `json:"stats"`
}

type device struct {
	Name        string         `json:"name"`
	Type        string         `json:"type,omitempty"`
	Info        string         `json:"info,omitempty"`
	Pins        []string       `json:"pins"`
	Colors      []string       `json:"colors,omitempty"`
	Unused      []string       `json:"unused,omitempty"`
	Placeholder bool           `json:"placeholder,omitempty"`
	Line        int            `json:"line,omitempty"`
	Connections map[string]int `json:"connections"`
	Total       int            `json:"total"`
}

type group struct {
	Name        string       `json:"name"`
	Connections []connection `json:"connections"`
}

type connection struct {
	From   endpoint `json:"from"`
	To     endpoint `json:"to"`
	Colors []string `json:"colors"`
	Values []string `json:"values"`
	Line   int      `json:"line,omitempty"`
}

type endpoint struct {
	Device string   `json:"device"`
	Pins   []string `json:"pins"`
}

// WriteJSON encodes a built document and its diagnostics as JSON and writes
// it to w.
//
// The output lists devices in document order with their per-pin connection
// counts, groups with their connections, every diagnostic, and summary
// statistics. Each connection carries both the color codes as declared and
// their resolved display values; unknown codes resolve to "".
func WriteJSON(res *wiring.Result, w io.Writer) error {
	doc := res.Document
	out := model{
		Devices:     make([]device, 0, doc.DeviceCount()),
		Groups:      make([]group, 0, len(doc.GroupNames())),
		Diagnostics: res.Diagnostics,
		Stats:       doc.Stats(),
	}
	if out.Diagnostics == nil {
		out.Diagnostics = wiring.Diagnostics{}
	}

	for _, d := range doc.Devices() {
		out.Devices = append(out.Devices, device{
			Name:        d.Name,
			Type:        d.Type,
			Info:        d.Info,
			Pins:        nonNil(d.Pins),
			Colors:      d.Colors,
			Unused:      d.Unused,
			Placeholder: d.Placeholder,
			Line:        d.Line,
			Connections: d.ConnectionCounts(),
			Total:       d.ConnectionCountTotal(),
		})
	}
	for _, g := range doc.Groups() {
		og := group{Name: g.Name, Connections: make([]connection, len(g.Connections))}
		for i, c := range g.Connections {
			values := make([]string, len(c.Colors))
			for j, code := range c.Colors {
				values[j] = doc.ResolveColor(code)
			}
			og.Connections[i] = connection{
				From:   endpoint{Device: c.FromDevice, Pins: nonNil(c.FromPins)},
				To:     endpoint{Device: c.ToDevice, Pins: nonNil(c.ToPins)},
				Colors: c.Colors,
				Values: values,
				Line:   c.Line,
			}
		}
		out.Groups = append(out.Groups, og)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes a built document to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(res *wiring.Result, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(res, f)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
