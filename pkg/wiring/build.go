package wiring

import (
	"fmt"
	"slices"

	"github.com/matzehuels/wiring/pkg/color"
)

// Option configures [Build].
type Option func(*builder)

// WithPolicy selects the diagnostic policy. The default is [Lenient].
func WithPolicy(p Policy) Option {
	return func(b *builder) { b.policy = p }
}

// WithColorTable validates colors against t instead of [color.Default].
func WithColorTable(t *color.Table) Option {
	return func(b *builder) {
		if t != nil {
			b.colors = t
		}
	}
}

// Result is a successfully built document and the diagnostics raised while
// building it.
type Result struct {
	Document    *Document
	Diagnostics Diagnostics
}

// Build constructs and validates a Document from decls.
//
// Devices are built first, then each connection in order is checked, tallied
// and filed into its group, and finally every pin and device is checked for
// connectivity. Under [Strict] the first non-advisory diagnostic aborts the
// build with a [*FatalError]; under [Lenient] every diagnostic is recorded
// and the offending item is skipped or defaulted.
//
// Declarations that cannot be interpreted (a device without a name, a
// connection endpoint without a device) return an error wrapping
// ErrInvalidDeclaration under either policy.
//
// decls is not modified.
func Build(decls Declarations, opts ...Option) (*Result, error) {
	b := &builder{colors: color.Default()}
	for _, opt := range opts {
		opt(b)
	}
	b.doc = newDocument(b.colors)

	for i := range decls.Devices {
		if err := b.addDevice(&decls.Devices[i]); err != nil {
			return nil, err
		}
	}
	for i := range decls.Connections {
		if err := b.addConnection(&decls.Connections[i]); err != nil {
			return nil, err
		}
	}
	if err := b.checkConnectivity(); err != nil {
		return nil, err
	}

	return &Result{Document: b.doc, Diagnostics: b.diags}, nil
}

type builder struct {
	policy Policy
	colors *color.Table
	doc    *Document
	diags  Diagnostics

	// devices whose colors list disagrees with their pins
	badColors map[string]bool
}

// report records d, or aborts when the policy makes d fatal.
func (b *builder) report(d Diagnostic) error {
	if b.policy == Strict && !d.Kind.Advisory() {
		d.Severity = SeverityError
		return &FatalError{Diagnostic: d, Prior: b.diags}
	}
	d.Severity = SeverityWarning
	b.diags = append(b.diags, d)
	return nil
}

func (b *builder) addDevice(decl *DeviceDecl) error {
	if decl.Name == "" {
		return fmt.Errorf("%w: device without a name (line %d)", ErrInvalidDeclaration, decl.Line)
	}
	if prev, dup := b.doc.devices[decl.Name]; dup {
		return b.report(Diagnostic{
			Kind:    KindDuplicateDevice,
			Device:  decl.Name,
			Line:    decl.Line,
			Message: fmt.Sprintf("duplicate device name %s (first declared on line %d), declaration ignored", decl.Name, prev.Line),
		})
	}

	dev := newDevice(decl)
	b.doc.addDevice(dev)

	if !dev.ColorsConsistent() {
		if b.badColors == nil {
			b.badColors = make(map[string]bool)
		}
		b.badColors[dev.Name] = true
		if err := b.report(Diagnostic{
			Kind:    KindDeviceColorCountMismatch,
			Device:  dev.Name,
			Count:   len(dev.Colors),
			Line:    dev.Line,
			Message: fmt.Sprintf("device %s has %d pins but %d colors, color check disabled", dev.Name, len(dev.Pins), len(dev.Colors)),
		}); err != nil {
			return err
		}
	}

	for i, code := range dev.Colors {
		base := Diagnostic{Device: dev.Name, Line: dev.Line}
		if i < len(dev.Pins) {
			base.Pin = dev.Pins[i]
		}
		if err := b.checkColor(code, base); err != nil {
			return err
		}
	}

	for _, pin := range dev.Unused {
		if !dev.HasPin(pin) {
			if err := b.report(Diagnostic{
				Kind:    KindUnusedDeclarationMismatch,
				Device:  dev.Name,
				Pin:     pin,
				Line:    dev.Line,
				Message: fmt.Sprintf("pin %s of device %s is marked unused but does not exist", pin, dev.Name),
			}); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkColor reports unknown codes and long-name aliases. base carries the
// context fields of the caller.
func (b *builder) checkColor(code string, base Diagnostic) error {
	e, legacy, ok := b.colors.Lookup(code)
	switch {
	case !ok:
		d := base
		d.Kind = KindUnknownColor
		d.Colors = []string{code}
		d.Message = fmt.Sprintf("unknown color code %q%s", code, colorContext(base))
		return b.report(d)
	case legacy:
		d := base
		d.Kind = KindDeprecatedColorAlias
		d.Colors = []string{code, e.ShortCode}
		d.Message = fmt.Sprintf("color %q is deprecated, use %q instead%s", code, e.ShortCode, colorContext(base))
		return b.report(d)
	}
	return nil
}

func colorContext(d Diagnostic) string {
	switch {
	case d.Peer != "":
		return fmt.Sprintf(" in connection %s -> %s", d.Device, d.Peer)
	case d.Device != "":
		return " in device " + d.Device
	}
	return ""
}

func (b *builder) addConnection(decl *ConnectionDecl) error {
	if decl.From.Device == "" || decl.To.Device == "" {
		return fmt.Errorf("%w: connection endpoint without a device (line %d)", ErrInvalidDeclaration, decl.Line)
	}

	from, to := decl.From.clone(), decl.To.clone()
	c := &Connection{
		FromDevice: from.Device,
		FromPins:   from.Pins,
		ToDevice:   to.Device,
		ToPins:     to.Pins,
		Group:      decl.Group,
		Line:       decl.Line,
	}
	if c.Group == "" {
		c.Group = DefaultGroup
	}
	base := Diagnostic{Device: c.FromDevice, Peer: c.ToDevice, Group: c.Group, Line: c.Line}

	if err := b.applyColors(c, decl.Colors, base); err != nil {
		return err
	}

	fromDev, err := b.endpointDevice(c.FromDevice, c, base)
	if err != nil {
		return err
	}
	toDev, err := b.endpointDevice(c.ToDevice, c, base)
	if err != nil {
		return err
	}

	if len(c.FromPins) > 0 && len(c.ToPins) > 0 && len(c.FromPins) != len(c.ToPins) {
		d := base
		d.Kind = KindPinCountMismatch
		d.Message = fmt.Sprintf("connection %s has %d from pins but %d to pins", c, len(c.FromPins), len(c.ToPins))
		if err := b.report(d); err != nil {
			return err
		}
	}

	if err := b.tally(c, fromDev, c.FromPins, base); err != nil {
		return err
	}
	if err := b.tally(c, toDev, c.ToPins, base); err != nil {
		return err
	}

	if err := b.crossCheckColors(c, fromDev, c.FromPins, base); err != nil {
		return err
	}
	if err := b.crossCheckColors(c, toDev, c.ToPins, base); err != nil {
		return err
	}

	b.doc.addConnection(c)
	return nil
}

// applyColors validates the declared colors and sets c.Colors so that it
// holds exactly one code per wire.
func (b *builder) applyColors(c *Connection, declared []string, base Diagnostic) error {
	n := c.WireCount()
	if declared == nil {
		c.Colors = slices.Repeat([]string{color.DefaultCode}, n)
		return nil
	}

	for _, code := range declared {
		if err := b.checkColor(code, base); err != nil {
			return err
		}
	}

	colors := slices.Clone(declared)
	if len(colors) != n {
		d := base
		d.Kind = KindColorCountMismatch
		d.Count = len(colors)
		d.Colors = slices.Clone(declared)
		d.Message = fmt.Sprintf("connection %s has %d wires but %d colors", c, n, len(colors))
		if err := b.report(d); err != nil {
			return err
		}
		if len(colors) > n {
			colors = colors[:n]
		}
		for len(colors) < n {
			colors = append(colors, color.DefaultCode)
		}
	}
	c.Colors = colors
	return nil
}

// endpointDevice returns the named device, synthesizing a placeholder the
// first time an undeclared name is referenced.
func (b *builder) endpointDevice(name string, c *Connection, base Diagnostic) (*Device, error) {
	if d, ok := b.doc.devices[name]; ok {
		return d, nil
	}
	diag := base
	diag.Kind = KindUndeclaredDeviceReference
	diag.Device = name
	diag.Peer = otherEnd(c, name)
	diag.Message = fmt.Sprintf("device %s referenced in connection %s is not declared", name, c)
	if err := b.report(diag); err != nil {
		return nil, err
	}
	d := newPlaceholder(name, c.Line)
	b.doc.addDevice(d)
	return d, nil
}

func otherEnd(c *Connection, name string) string {
	if name == c.FromDevice {
		return c.ToDevice
	}
	return c.FromDevice
}

// tally counts the wires of one side of c against dev.
func (b *builder) tally(c *Connection, dev *Device, pins []string, base Diagnostic) error {
	base.Device = dev.Name
	base.Peer = otherEnd(c, dev.Name)

	if len(pins) == 0 {
		if len(dev.Pins) > 0 {
			d := base
			d.Kind = KindPinCountMismatch
			d.Message = fmt.Sprintf("in connection %s pin not specified but device %s has pins", c, dev.Name)
			return b.report(d)
		}
		dev.total++
		return nil
	}

	for _, pin := range pins {
		if !dev.HasPin(pin) {
			d := base
			d.Kind = KindUnknownPin
			d.Pin = pin
			d.Message = fmt.Sprintf("pin %s not found in device %s (connection %s)", pin, dev.Name, c)
			if err := b.report(d); err != nil {
				return err
			}
			continue
		}
		dev.counts[pin]++
		dev.total++
	}
	return nil
}

// crossCheckColors compares each wire color with the color dev declares for
// the pin it lands on.
func (b *builder) crossCheckColors(c *Connection, dev *Device, pins []string, base Diagnostic) error {
	if len(dev.Colors) == 0 || b.badColors[dev.Name] {
		return nil
	}
	for i, pin := range pins {
		if i >= len(c.Colors) {
			break
		}
		devCode, ok := dev.PinColor(pin)
		if !ok {
			continue
		}
		devValue, _, err := b.colors.Resolve(devCode)
		if err != nil {
			continue
		}
		wireValue, _, err := b.colors.Resolve(c.Colors[i])
		if err != nil {
			continue
		}
		if devValue == wireValue {
			continue
		}
		d := base
		d.Kind = KindColorMismatch
		d.Device = dev.Name
		d.Peer = otherEnd(c, dev.Name)
		d.Pin = pin
		d.Colors = []string{devCode, c.Colors[i]}
		d.Message = fmt.Sprintf("in connection %s color %s doesn't match device %s color %s on pin %s",
			c, c.Colors[i], dev.Name, devCode, pin)
		if err := b.report(d); err != nil {
			return err
		}
	}
	return nil
}

// checkConnectivity runs after every connection has been tallied.
func (b *builder) checkConnectivity() error {
	for _, dev := range b.doc.Devices() {
		for _, pin := range dev.Pins {
			if pin == "" {
				continue
			}
			n := dev.counts[pin]
			unused := dev.IsUnused(pin)
			base := Diagnostic{Device: dev.Name, Pin: pin, Count: n, Line: dev.Line}

			if n == 0 && !unused {
				d := base
				d.Kind = KindUnconnectedPin
				d.Message = fmt.Sprintf("pin %s of device %s is unconnected", pin, dev.Name)
				if err := b.report(d); err != nil {
					return err
				}
			}
			if n > 1 {
				d := base
				d.Kind = KindSharedPin
				d.Message = fmt.Sprintf("pin %s of device %s shares %d connections", pin, dev.Name, n)
				if err := b.report(d); err != nil {
					return err
				}
			}
			if n > 0 && unused {
				d := base
				d.Kind = KindUnusedDeclarationMismatch
				d.Message = fmt.Sprintf("pin %s of device %s is marked unused but is connected", pin, dev.Name)
				if err := b.report(d); err != nil {
					return err
				}
			}
		}

		if dev.IsUnconnected() {
			if err := b.report(Diagnostic{
				Kind:    KindUnconnectedDevice,
				Device:  dev.Name,
				Line:    dev.Line,
				Message: fmt.Sprintf("device %s is not connected", dev.Name),
			}); err != nil {
				return err
			}
		}
	}
	return nil
}
