package wiring

import (
	"github.com/matzehuels/wiring/pkg/color"
)

// Document is the validated model produced by [Build].
//
// Devices keep declaration order, with placeholders appended in the order
// they were first referenced. Groups keep first-use order and connections
// keep declaration order within their group.
type Document struct {
	devices     map[string]*Device
	deviceOrder []string
	groups      map[string][]*Connection
	groupOrder  []string
	colors      *color.Table
}

// Group is a named partition of connections.
type Group struct {
	Name        string
	Connections []*Connection
}

// Stats summarises a document.
type Stats struct {
	Devices            int `json:"devices"`
	Placeholders       int `json:"placeholders"`
	Groups             int `json:"groups"`
	Connections        int `json:"connections"`
	Wires              int `json:"wires"`
	Pins               int `json:"pins"`
	ConnectedPins      int `json:"connected_pins"`
	UnconnectedDevices int `json:"unconnected_devices"`
}

func newDocument(colors *color.Table) *Document {
	return &Document{
		devices: make(map[string]*Device),
		groups:  make(map[string][]*Connection),
		colors:  colors,
	}
}

func (doc *Document) addDevice(d *Device) {
	doc.devices[d.Name] = d
	doc.deviceOrder = append(doc.deviceOrder, d.Name)
}

func (doc *Document) addConnection(c *Connection) {
	if _, ok := doc.groups[c.Group]; !ok {
		doc.groupOrder = append(doc.groupOrder, c.Group)
	}
	doc.groups[c.Group] = append(doc.groups[c.Group], c)
}

// Colors returns the color table the document was validated against.
func (doc *Document) Colors() *color.Table { return doc.colors }

// Device returns the device with the given name.
func (doc *Document) Device(name string) (*Device, bool) {
	d, ok := doc.devices[name]
	return d, ok
}

// Devices returns all devices in document order.
func (doc *Document) Devices() []*Device {
	out := make([]*Device, len(doc.deviceOrder))
	for i, name := range doc.deviceOrder {
		out[i] = doc.devices[name]
	}
	return out
}

// DeviceCount returns the number of devices, placeholders included.
func (doc *Document) DeviceCount() int { return len(doc.deviceOrder) }

// GroupNames returns group names in first-use order.
func (doc *Document) GroupNames() []string {
	return append([]string(nil), doc.groupOrder...)
}

// Group returns the named group.
func (doc *Document) Group(name string) (Group, bool) {
	conns, ok := doc.groups[name]
	if !ok {
		return Group{}, false
	}
	return Group{Name: name, Connections: append([]*Connection(nil), conns...)}, true
}

// Groups returns all groups in first-use order.
func (doc *Document) Groups() []Group {
	out := make([]Group, 0, len(doc.groupOrder))
	for _, name := range doc.groupOrder {
		g, _ := doc.Group(name)
		out = append(out, g)
	}
	return out
}

// Connections returns every connection, group by group.
func (doc *Document) Connections() []*Connection {
	var out []*Connection
	for _, name := range doc.groupOrder {
		out = append(out, doc.groups[name]...)
	}
	return out
}

// UnconnectedDevices returns the devices no connection references.
func (doc *Document) UnconnectedDevices() []*Device {
	var out []*Device
	for _, d := range doc.Devices() {
		if d.IsUnconnected() {
			out = append(out, d)
		}
	}
	return out
}

// ResolveColor returns the display value of a wire color code. Unknown codes
// yield an empty string.
func (doc *Document) ResolveColor(code string) string {
	v, _, err := doc.colors.Resolve(code)
	if err != nil {
		return ""
	}
	return v
}

// Stats computes summary counts.
func (doc *Document) Stats() Stats {
	s := Stats{
		Devices: len(doc.deviceOrder),
		Groups:  len(doc.groupOrder),
	}
	for _, d := range doc.Devices() {
		if d.Placeholder {
			s.Placeholders++
		}
		if d.IsUnconnected() {
			s.UnconnectedDevices++
		}
		for _, p := range d.Pins {
			if p == "" {
				continue
			}
			s.Pins++
			if d.ConnectionCount(p) > 0 {
				s.ConnectedPins++
			}
		}
	}
	for _, c := range doc.Connections() {
		s.Connections++
		s.Wires += c.WireCount()
	}
	return s
}
