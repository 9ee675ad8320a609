package wiring

import (
	"maps"
	"slices"
)

// Device is a named component with an ordered list of pins.
//
// Exported fields mirror the declaration and are not modified after [Build]
// returns. Connection counters are maintained by Build and exposed through
// [Device.ConnectionCount] and [Device.ConnectionCountTotal].
type Device struct {
	Name   string
	Type   string
	Info   string
	Pins   []string
	Colors []string
	Unused []string

	// Placeholder is set on zero-pin devices synthesized for names that a
	// connection referenced without a declaration.
	Placeholder bool
	Line        int

	counts map[string]int
	total  int
}

func newDevice(d *DeviceDecl) *Device {
	dev := &Device{
		Name:   d.Name,
		Type:   d.Type,
		Info:   d.Info,
		Pins:   slices.Clone(d.Pins),
		Colors: slices.Clone(d.Colors),
		Unused: slices.Clone(d.Unused),
		Line:   d.Line,
		counts: make(map[string]int, len(d.Pins)),
	}
	for _, p := range dev.Pins {
		if p != "" {
			dev.counts[p] = 0
		}
	}
	return dev
}

func newPlaceholder(name string, line int) *Device {
	return &Device{
		Name:        name,
		Placeholder: true,
		Line:        line,
		counts:      map[string]int{},
	}
}

// PinIndex returns the position of pin in Pins, or -1. Unnamed pins are not
// addressable.
func (d *Device) PinIndex(pin string) int {
	if pin == "" {
		return -1
	}
	return slices.Index(d.Pins, pin)
}

// HasPin reports whether pin is one of the device's named pins.
func (d *Device) HasPin(pin string) bool { return d.PinIndex(pin) >= 0 }

// IsUnused reports whether pin was declared as intentionally unconnected.
func (d *Device) IsUnused(pin string) bool { return slices.Contains(d.Unused, pin) }

// ColorsConsistent reports whether per-pin colors can be used, i.e. none are
// declared or there is exactly one per pin.
func (d *Device) ColorsConsistent() bool {
	return len(d.Colors) == 0 || len(d.Colors) == len(d.Pins)
}

// PinColor returns the declared color code of pin. ok is false when the
// device declares no usable colors or the pin does not exist.
func (d *Device) PinColor(pin string) (code string, ok bool) {
	if len(d.Colors) == 0 || !d.ColorsConsistent() {
		return "", false
	}
	i := d.PinIndex(pin)
	if i < 0 {
		return "", false
	}
	return d.Colors[i], true
}

// ConnectionCount returns how many wires attach to pin.
func (d *Device) ConnectionCount(pin string) int { return d.counts[pin] }

// ConnectionCounts returns a copy of the per-pin counters.
func (d *Device) ConnectionCounts() map[string]int { return maps.Clone(d.counts) }

// ConnectionCountTotal returns the sum of pin counters plus one for every
// whole-device link to a device without pins.
func (d *Device) ConnectionCountTotal() int { return d.total }

// IsUnconnected reports whether nothing references the device.
func (d *Device) IsUnconnected() bool { return d.total == 0 }
