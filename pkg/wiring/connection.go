package wiring

import (
	"fmt"
	"strings"
)

// DefaultGroup is the group of connections that do not name one.
const DefaultGroup = "default"

// Connection is a bundle of wires between two devices.
//
// After [Build], len(Colors) == WireCount() always holds.
type Connection struct {
	FromDevice string
	FromPins   []string
	ToDevice   string
	ToPins     []string
	Colors     []string
	Group      string
	Line       int
}

// Wire is one conductor of a connection. FromPin or ToPin is empty when that
// side addresses the whole device.
type Wire struct {
	Index   int
	FromPin string
	ToPin   string
	Color   string
}

// WireCount returns max(len(FromPins), len(ToPins), 1).
func (c *Connection) WireCount() int {
	return wireCount(len(c.FromPins), len(c.ToPins))
}

func wireCount(from, to int) int {
	return max(from, to, 1)
}

// Wires expands the connection into individual wires. When the two sides
// list different numbers of pins, the shorter side yields empty pin names
// for the surplus wires.
func (c *Connection) Wires() []Wire {
	n := c.WireCount()
	out := make([]Wire, n)
	for i := range n {
		w := Wire{Index: i}
		if i < len(c.FromPins) {
			w.FromPin = c.FromPins[i]
		}
		if i < len(c.ToPins) {
			w.ToPin = c.ToPins[i]
		}
		if i < len(c.Colors) {
			w.Color = c.Colors[i]
		}
		out[i] = w
	}
	return out
}

// String formats the connection as "A:[1 2] -> B:[3 4]".
func (c *Connection) String() string {
	return fmt.Sprintf("%s:[%s] -> %s:[%s]",
		c.FromDevice, strings.Join(c.FromPins, " "),
		c.ToDevice, strings.Join(c.ToPins, " "))
}
