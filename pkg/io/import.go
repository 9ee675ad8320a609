package io

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	werrors "github.com/matzehuels/wiring/pkg/errors"
	"github.com/matzehuels/wiring/pkg/wiring"
)

// StringList decodes either a YAML sequence or a comma-separated string.
//
// Sequence items must be scalars; integers keep their literal text and a
// null item becomes an empty string (an unnamed pin). A string is split on
// commas and each item trimmed. An empty string decodes to a non-nil empty
// list, so an explicit `color: ""` can be told apart from an absent key.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *StringList) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.ShortTag() == "!!null" {
			*l = nil
			return nil
		}
		items := wiring.SplitList(n.Value)
		if items == nil {
			items = []string{}
		}
		*l = items
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(n.Content))
		for _, item := range n.Content {
			if item.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: list items must be plain values", item.Line)
			}
			if item.ShortTag() == "!!null" {
				out = append(out, "")
				continue
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("line %d: expected a list or a comma-separated string", n.Line)
	}
}

// Endpoint decodes one side of a connection, either as a mapping with
// device and pins keys or as the shorthand string "device, pin1, pin2".
type Endpoint struct {
	Device string     `yaml:"device"`
	Pins   StringList `yaml:"pins"`
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (e *Endpoint) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		ep := wiring.ParseEndpoint(n.Value)
		e.Device, e.Pins = ep.Device, ep.Pins
	case yaml.MappingNode:
		type plain Endpoint
		var p plain
		if err := n.Decode(&p); err != nil {
			return err
		}
		*e = Endpoint(p)
	default:
		return fmt.Errorf("line %d: endpoint must be a mapping or a \"device, pin, ...\" string", n.Line)
	}
	if e.Device == "" {
		return fmt.Errorf("line %d: endpoint has no device", n.Line)
	}
	return nil
}

type deviceNode struct {
	Name   string     `yaml:"name"`
	Type   string     `yaml:"type"`
	Info   string     `yaml:"info"`
	Pins   StringList `yaml:"pins"`
	Colors StringList `yaml:"colors"`
	Unused StringList `yaml:"unused"`

	line int
}

func (d *deviceNode) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: device must be a mapping", n.Line)
	}
	type plain deviceNode
	var p plain
	if err := n.Decode(&p); err != nil {
		return err
	}
	*d = deviceNode(p)
	d.line = n.Line
	if d.Name == "" {
		return fmt.Errorf("line %d: device has no name", n.Line)
	}
	return nil
}

type connectionNode struct {
	From   *Endpoint  `yaml:"from"`
	To     *Endpoint  `yaml:"to"`
	Color  StringList `yaml:"color"`
	Colors StringList `yaml:"colors"` // alias of color
	Group  string     `yaml:"group"`

	line int
}

func (c *connectionNode) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: connection must be a mapping", n.Line)
	}
	type plain connectionNode
	var p plain
	if err := n.Decode(&p); err != nil {
		return err
	}
	*c = connectionNode(p)
	c.line = n.Line
	switch {
	case c.From == nil:
		return fmt.Errorf("line %d: connection has no from endpoint", n.Line)
	case c.To == nil:
		return fmt.Errorf("line %d: connection has no to endpoint", n.Line)
	}
	return nil
}

type document struct {
	Devices     []deviceNode     `yaml:"devices"`
	Connections []connectionNode `yaml:"connections"`
}

// ReadYAML decodes a harness description from r.
//
// The input must be a mapping with optional "devices" and "connections"
// sequences. JSON input is accepted as well. Every declaration records the
// line it starts on so diagnostics can point back into the source.
//
// ReadYAML returns an error with code INVALID_INPUT if the input is
// malformed or a declaration has the wrong shape. It does not validate
// references between declarations; that is the job of [wiring.Build].
func ReadYAML(r io.Reader) (wiring.Declarations, error) {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return wiring.Declarations{}, werrors.Wrap(werrors.ErrCodeInvalidInput, err, "decode harness")
	}
	return doc.declarations(), nil
}

// ParseYAML decodes a harness description held in memory.
func ParseYAML(data []byte) (wiring.Declarations, error) {
	return ReadYAML(bytes.NewReader(data))
}

// ImportYAML reads the harness description at path.
//
// A missing file yields an error with code FILE_NOT_FOUND; decoding errors
// are those of [ReadYAML], prefixed with the path.
func ImportYAML(path string) (wiring.Declarations, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return wiring.Declarations{}, werrors.Wrap(werrors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return wiring.Declarations{}, werrors.Wrap(werrors.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer f.Close()

	decls, err := ReadYAML(f)
	if err != nil {
		return wiring.Declarations{}, werrors.Wrap(werrors.ErrCodeInvalidInput, errors.Unwrap(err), "decode %s", path)
	}
	return decls, nil
}

func (doc *document) declarations() wiring.Declarations {
	var out wiring.Declarations
	for _, d := range doc.Devices {
		out.Devices = append(out.Devices, wiring.DeviceDecl{
			Name:   d.Name,
			Type:   d.Type,
			Info:   d.Info,
			Pins:   d.Pins,
			Colors: d.Colors,
			Unused: d.Unused,
			Line:   d.line,
		})
	}
	for _, c := range doc.Connections {
		colors := c.Color
		if colors == nil {
			colors = c.Colors
		}
		out.Connections = append(out.Connections, wiring.ConnectionDecl{
			From:   wiring.Endpoint{Device: c.From.Device, Pins: c.From.Pins},
			To:     wiring.Endpoint{Device: c.To.Device, Pins: c.To.Pins},
			Colors: colors,
			Group:  c.Group,
			Line:   c.line,
		})
	}
	return out
}
