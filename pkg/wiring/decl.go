package wiring

import (
	"errors"
	"slices"
	"strings"
)

// ErrInvalidDeclaration is returned by [Build] for declarations that cannot
// be interpreted at all, such as a device without a name.
var ErrInvalidDeclaration = errors.New("invalid declaration")

// Declarations is the decoded input of [Build]: device and connection
// declarations in source order. Lists must already be normalised (see
// [SplitList] and [ParseEndpoint]).
type Declarations struct {
	Devices     []DeviceDecl
	Connections []ConnectionDecl
}

// DeviceDecl declares one device.
type DeviceDecl struct {
	Name   string
	Type   string
	Info   string
	Pins   []string // "" marks a numbered but unnamed pin
	Colors []string // per-pin wire colors, aligned with Pins when set
	Unused []string // pins declared as intentionally unconnected
	Line   int
}

// Endpoint is one side of a connection. An empty Pins list addresses the
// device as a whole.
type Endpoint struct {
	Device string
	Pins   []string
}

// ConnectionDecl declares a group of wires between two endpoints.
type ConnectionDecl struct {
	From Endpoint
	To   Endpoint
	// Colors holds one color code per wire. A nil slice means the color was
	// not declared and every wire defaults to color.DefaultCode; a non-nil
	// empty slice is an explicit, empty declaration.
	Colors []string
	Group  string
	Line   int
}

// SplitList splits a comma-separated list and trims each item.
// An empty or all-blank string yields nil.
func SplitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// ParseEndpoint parses the shorthand "device, pin1, pin2, ...". The first
// token names the device; the rest are pins.
func ParseEndpoint(s string) Endpoint {
	parts := SplitList(s)
	if len(parts) == 0 {
		return Endpoint{}
	}
	ep := Endpoint{Device: parts[0]}
	if len(parts) > 1 {
		ep.Pins = parts[1:]
	}
	return ep
}

// String formats the endpoint as "device:[p1 p2]".
func (e Endpoint) String() string {
	return e.Device + ":[" + strings.Join(e.Pins, " ") + "]"
}

func (e Endpoint) clone() Endpoint {
	return Endpoint{Device: e.Device, Pins: slices.Clone(e.Pins)}
}
