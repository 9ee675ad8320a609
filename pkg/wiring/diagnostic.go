package wiring

import (
	"errors"
	"fmt"
	"strings"
)

// Kind tags the rule a [Diagnostic] was raised by.
type Kind string

// Diagnostic kinds.
const (
	KindDuplicateDevice           Kind = "DuplicateDevice"
	KindUndeclaredDeviceReference Kind = "UndeclaredDeviceReference"
	KindUnknownPin                Kind = "UnknownPin"
	KindPinCountMismatch          Kind = "PinCountMismatch"
	KindColorCountMismatch        Kind = "ColorCountMismatch"
	KindUnknownColor              Kind = "UnknownColor"
	KindDeprecatedColorAlias      Kind = "DeprecatedColorAlias"
	KindDeviceColorCountMismatch  Kind = "DeviceColorCountMismatch"
	KindColorMismatch             Kind = "ColorMismatch"
	KindUnusedDeclarationMismatch Kind = "UnusedDeclarationMismatch"
	KindSharedPin                 Kind = "SharedPin"
	KindUnconnectedPin            Kind = "UnconnectedPin"
	KindUnconnectedDevice         Kind = "UnconnectedDevice"
)

// AllKinds returns every diagnostic kind in rule order.
func AllKinds() []Kind {
	return []Kind{
		KindDuplicateDevice,
		KindUndeclaredDeviceReference,
		KindUnknownPin,
		KindPinCountMismatch,
		KindColorCountMismatch,
		KindUnknownColor,
		KindDeprecatedColorAlias,
		KindDeviceColorCountMismatch,
		KindColorMismatch,
		KindUnusedDeclarationMismatch,
		KindSharedPin,
		KindUnconnectedPin,
		KindUnconnectedDevice,
	}
}

// Advisory reports whether k is informational under every policy.
func (k Kind) Advisory() bool {
	switch k {
	case KindDeprecatedColorAlias, KindColorMismatch, KindSharedPin,
		KindUnconnectedPin, KindUnconnectedDevice:
		return true
	}
	return false
}

// Severity is how a diagnostic was treated.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

// String returns "warning" or "error".
func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// MarshalText encodes the severity by name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes "warning" or "error".
func (s *Severity) UnmarshalText(b []byte) error {
	switch string(b) {
	case "warning":
		*s = SeverityWarning
	case "error":
		*s = SeverityError
	default:
		return fmt.Errorf("unknown severity %q", b)
	}
	return nil
}

// Diagnostic is one finding of [Build]. The context fields that apply to the
// kind are set; the rest are zero.
type Diagnostic struct {
	Kind     Kind     `json:"kind"`
	Severity Severity `json:"severity"`
	Device   string   `json:"device,omitempty"`
	Peer     string   `json:"peer,omitempty"` // other endpoint of the connection
	Pin      string   `json:"pin,omitempty"`
	Group    string   `json:"group,omitempty"`
	Colors   []string `json:"colors,omitempty"`
	Count    int      `json:"count,omitempty"`
	Line     int      `json:"line,omitempty"`
	Message  string   `json:"message"`
}

// String formats the diagnostic as "severity: message (line N)".
func (d Diagnostic) String() string {
	var b strings.Builder
	b.WriteString(d.Severity.String())
	b.WriteString(": ")
	b.WriteString(d.Message)
	if d.Line > 0 {
		fmt.Fprintf(&b, " (line %d)", d.Line)
	}
	return b.String()
}

// Diagnostics is an ordered list of findings.
type Diagnostics []Diagnostic

// Count returns how many diagnostics have kind k.
func (ds Diagnostics) Count(k Kind) int {
	n := 0
	for _, d := range ds {
		if d.Kind == k {
			n++
		}
	}
	return n
}

// OfKind returns the diagnostics with kind k, in order.
func (ds Diagnostics) OfKind(k Kind) Diagnostics {
	var out Diagnostics
	for _, d := range ds {
		if d.Kind == k {
			out = append(out, d)
		}
	}
	return out
}

// ForDevice returns the diagnostics that name device as subject or peer.
func (ds Diagnostics) ForDevice(device string) Diagnostics {
	var out Diagnostics
	for _, d := range ds {
		if d.Device == device || d.Peer == device {
			out = append(out, d)
		}
	}
	return out
}

// Kinds returns the kind of each diagnostic, in order.
func (ds Diagnostics) Kinds() []Kind {
	out := make([]Kind, len(ds))
	for i, d := range ds {
		out[i] = d.Kind
	}
	return out
}

// ErrAborted is wrapped by every [*FatalError].
var ErrAborted = errors.New("wiring: build aborted")

// FatalError is returned by [Build] under [Strict] when a non-advisory
// diagnostic is raised.
type FatalError struct {
	// Diagnostic is the finding that stopped the build.
	Diagnostic Diagnostic
	// Prior holds the advisory diagnostics recorded before the abort.
	Prior Diagnostics
}

// Error implements the error interface.
func (e *FatalError) Error() string {
	msg := e.Diagnostic.Message
	if e.Diagnostic.Line > 0 {
		msg = fmt.Sprintf("%s (line %d)", msg, e.Diagnostic.Line)
	}
	return fmt.Sprintf("%s: %s", e.Diagnostic.Kind, msg)
}

// Unwrap returns ErrAborted.
func (e *FatalError) Unwrap() error { return ErrAborted }
