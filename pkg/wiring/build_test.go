package wiring

import (
	"errors"
	"maps"
	"reflect"
	"slices"
	"testing"

	"github.com/matzehuels/wiring/pkg/color"
)

func dev(name string, pins ...string) DeviceDecl {
	return DeviceDecl{Name: name, Pins: pins}
}

func conn(from, to string, colors ...string) ConnectionDecl {
	c := ConnectionDecl{From: ParseEndpoint(from), To: ParseEndpoint(to)}
	if colors != nil {
		c.Colors = colors
	}
	return c
}

func mustBuild(t *testing.T, decls Declarations, opts ...Option) *Result {
	t.Helper()
	res, err := Build(decls, opts...)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	return res
}

func TestBuildClean(t *testing.T) {
	decls := Declarations{
		Devices:     []DeviceDecl{dev("A", "1", "2"), dev("B", "1", "2")},
		Connections: []ConnectionDecl{conn("A,1,2", "B,1,2", "RD", "BU")},
	}
	res := mustBuild(t, decls)
	doc := res.Document

	if len(res.Diagnostics) != 0 {
		t.Fatalf("diagnostics = %v, want none", res.Diagnostics)
	}
	if doc.DeviceCount() != 2 {
		t.Errorf("DeviceCount() = %d, want 2", doc.DeviceCount())
	}
	if got := doc.GroupNames(); !slices.Equal(got, []string{DefaultGroup}) {
		t.Errorf("GroupNames() = %v, want [default]", got)
	}
	g, _ := doc.Group(DefaultGroup)
	if len(g.Connections) != 1 {
		t.Fatalf("default group has %d connections, want 1", len(g.Connections))
	}

	for _, name := range []string{"A", "B"} {
		d, ok := doc.Device(name)
		if !ok {
			t.Fatalf("device %s missing", name)
		}
		want := map[string]int{"1": 1, "2": 1}
		if got := d.ConnectionCounts(); !maps.Equal(got, want) {
			t.Errorf("%s counts = %v, want %v", name, got, want)
		}
		if d.ConnectionCountTotal() != 2 {
			t.Errorf("%s total = %d, want 2", name, d.ConnectionCountTotal())
		}
	}
}

func TestBuildUndeclaredLenient(t *testing.T) {
	decls := Declarations{
		Devices:     []DeviceDecl{dev("A", "1")},
		Connections: []ConnectionDecl{conn("A,1", "C")},
	}
	res := mustBuild(t, decls)

	c, ok := res.Document.Device("C")
	if !ok {
		t.Fatal("placeholder C missing")
	}
	if !c.Placeholder || len(c.Pins) != 0 {
		t.Errorf("C = %+v, want pinless placeholder", c)
	}
	if c.ConnectionCountTotal() != 1 {
		t.Errorf("C total = %d, want 1", c.ConnectionCountTotal())
	}
	if n := res.Diagnostics.Count(KindUndeclaredDeviceReference); n != 1 {
		t.Errorf("UndeclaredDeviceReference count = %d, want 1", n)
	}
	if len(res.Document.Connections()) != 1 {
		t.Error("connection to placeholder was dropped")
	}
}

func TestBuildUndeclaredStrict(t *testing.T) {
	decls := Declarations{
		Devices:     []DeviceDecl{dev("A", "1")},
		Connections: []ConnectionDecl{conn("A,1", "C")},
	}
	res, err := Build(decls, WithPolicy(Strict))
	if res != nil {
		t.Errorf("Build() returned a result on abort")
	}
	if !errors.Is(err, ErrAborted) {
		t.Fatalf("Build() error = %v, want ErrAborted", err)
	}
	var fe *FatalError
	if !errors.As(err, &fe) {
		t.Fatalf("error %T is not *FatalError", err)
	}
	if fe.Diagnostic.Kind != KindUndeclaredDeviceReference {
		t.Errorf("fatal kind = %s", fe.Diagnostic.Kind)
	}
	if fe.Diagnostic.Severity != SeverityError {
		t.Errorf("fatal severity = %s, want error", fe.Diagnostic.Severity)
	}
	if fe.Diagnostic.Device != "C" {
		t.Errorf("fatal device = %q, want C", fe.Diagnostic.Device)
	}
}

func TestBuildColorMismatch(t *testing.T) {
	a := dev("A", "1", "2")
	a.Colors = []string{"RD", "BU"}
	decls := Declarations{
		Devices:     []DeviceDecl{a, dev("B", "1")},
		Connections: []ConnectionDecl{conn("A,1", "B,1", "GN")},
	}
	res := mustBuild(t, decls)

	got := res.Diagnostics.OfKind(KindColorMismatch)
	if len(got) != 1 {
		t.Fatalf("ColorMismatch = %v, want one", got)
	}
	d := got[0]
	if d.Device != "A" || d.Pin != "1" {
		t.Errorf("mismatch on %s pin %s, want A pin 1", d.Device, d.Pin)
	}
	if !slices.Equal(d.Colors, []string{"RD", "GN"}) {
		t.Errorf("colors = %v, want [RD GN]", d.Colors)
	}
	if d.Severity != SeverityWarning {
		t.Errorf("severity = %s, want warning", d.Severity)
	}

	// advisory under strict as well
	if _, err := Build(decls, WithPolicy(Strict)); err != nil {
		t.Errorf("strict Build() error: %v", err)
	}
}

func TestBuildDeprecatedAlias(t *testing.T) {
	decls := Declarations{
		Devices:     []DeviceDecl{dev("A", "1"), dev("B", "1")},
		Connections: []ConnectionDecl{conn("A,1", "B,1", "green")},
	}
	for _, p := range []Policy{Lenient, Strict} {
		t.Run(p.String(), func(t *testing.T) {
			res := mustBuild(t, decls, WithPolicy(p))
			got := res.Diagnostics.OfKind(KindDeprecatedColorAlias)
			if len(got) != 1 {
				t.Fatalf("DeprecatedColorAlias = %v, want one", got)
			}
			if !slices.Equal(got[0].Colors, []string{"green", "GN"}) {
				t.Errorf("colors = %v, want [green GN]", got[0].Colors)
			}
			c := res.Document.Connections()[0]
			if c.Colors[0] != "green" {
				t.Errorf("wire color = %q, want the declared token", c.Colors[0])
			}
			if v := res.Document.ResolveColor(c.Colors[0]); v != "#008000" {
				t.Errorf("wire resolves to %q, want #008000", v)
			}
		})
	}
}

func TestBuildLenientDiagnostics(t *testing.T) {
	tests := []struct {
		name  string
		decls Declarations
		want  []Kind
	}{
		{
			name: "duplicate device",
			decls: Declarations{
				Devices: []DeviceDecl{dev("A"), dev("A", "1")},
			},
			want: []Kind{KindDuplicateDevice, KindUnconnectedDevice},
		},
		{
			name: "unknown pin",
			decls: Declarations{
				Devices:     []DeviceDecl{dev("A", "1"), dev("B", "1")},
				Connections: []ConnectionDecl{conn("A,1", "B,9")},
			},
			want: []Kind{KindUnknownPin, KindUnconnectedPin, KindUnconnectedDevice},
		},
		{
			name: "pin count mismatch",
			decls: Declarations{
				Devices:     []DeviceDecl{dev("A", "1", "2"), dev("B", "1")},
				Connections: []ConnectionDecl{conn("A,1,2", "B,1", "RD", "BU")},
			},
			want: []Kind{KindPinCountMismatch},
		},
		{
			name: "whole device side on pinned device",
			decls: Declarations{
				Devices:     []DeviceDecl{dev("A", "1"), dev("B")},
				Connections: []ConnectionDecl{conn("A", "B")},
			},
			want: []Kind{KindPinCountMismatch, KindUnconnectedPin, KindUnconnectedDevice},
		},
		{
			name: "color count mismatch",
			decls: Declarations{
				Devices:     []DeviceDecl{dev("A", "1", "2"), dev("B", "1", "2")},
				Connections: []ConnectionDecl{conn("A,1,2", "B,1,2", "RD")},
			},
			want: []Kind{KindColorCountMismatch},
		},
		{
			name: "explicit empty colors",
			decls: Declarations{
				Devices:     []DeviceDecl{dev("A"), dev("B")},
				Connections: []ConnectionDecl{conn("A", "B", []string{}...)},
			},
			want: []Kind{KindColorCountMismatch},
		},
		{
			name: "unknown color",
			decls: Declarations{
				Devices:     []DeviceDecl{dev("A"), dev("B")},
				Connections: []ConnectionDecl{conn("A", "B", "XX")},
			},
			want: []Kind{KindUnknownColor},
		},
		{
			name: "device color count",
			decls: Declarations{
				Devices:     []DeviceDecl{{Name: "A", Pins: []string{"1", "2"}, Colors: []string{"RD"}}, dev("B", "1")},
				Connections: []ConnectionDecl{conn("A,1", "B,1", "GN")},
			},
			want: []Kind{KindDeviceColorCountMismatch, KindUnconnectedPin},
		},
		{
			name: "unused pin that does not exist",
			decls: Declarations{
				Devices:     []DeviceDecl{{Name: "A", Pins: []string{"1"}, Unused: []string{"7"}}, dev("B", "1")},
				Connections: []ConnectionDecl{conn("A,1", "B,1")},
			},
			want: []Kind{KindUnusedDeclarationMismatch},
		},
		{
			name: "unused pin that is connected",
			decls: Declarations{
				Devices:     []DeviceDecl{{Name: "A", Pins: []string{"1"}, Unused: []string{"1"}}, dev("B", "1")},
				Connections: []ConnectionDecl{conn("A,1", "B,1")},
			},
			want: []Kind{KindUnusedDeclarationMismatch},
		},
		{
			name: "unused pin left unconnected",
			decls: Declarations{
				Devices:     []DeviceDecl{{Name: "A", Pins: []string{"1", "2"}, Unused: []string{"2"}}, dev("B", "1")},
				Connections: []ConnectionDecl{conn("A,1", "B,1")},
			},
			want: nil,
		},
		{
			name: "shared pin",
			decls: Declarations{
				Devices: []DeviceDecl{dev("A", "1"), dev("B", "1"), dev("C", "1")},
				Connections: []ConnectionDecl{
					conn("A,1", "B,1"),
					conn("A,1", "C,1"),
				},
			},
			want: []Kind{KindSharedPin},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := mustBuild(t, tt.decls)
			if got := res.Diagnostics.Kinds(); !slices.Equal(got, tt.want) {
				t.Errorf("kinds = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildStrictAborts(t *testing.T) {
	tests := []struct {
		name  string
		decls Declarations
		want  Kind
	}{
		{
			name:  "duplicate device",
			decls: Declarations{Devices: []DeviceDecl{dev("A"), dev("A")}},
			want:  KindDuplicateDevice,
		},
		{
			name: "unknown pin",
			decls: Declarations{
				Devices:     []DeviceDecl{dev("A", "1"), dev("B", "1")},
				Connections: []ConnectionDecl{conn("A,1", "B,2")},
			},
			want: KindUnknownPin,
		},
		{
			name: "unknown color",
			decls: Declarations{
				Devices:     []DeviceDecl{dev("A"), dev("B")},
				Connections: []ConnectionDecl{conn("A", "B", "XX")},
			},
			want: KindUnknownColor,
		},
		{
			name: "connected unused pin",
			decls: Declarations{
				Devices:     []DeviceDecl{{Name: "A", Pins: []string{"1"}, Unused: []string{"1"}}, dev("B", "1")},
				Connections: []ConnectionDecl{conn("A,1", "B,1")},
			},
			want: KindUnusedDeclarationMismatch,
		},
		{
			name: "unequal pin counts",
			decls: Declarations{
				Devices:     []DeviceDecl{dev("A", "1", "2"), dev("B", "1")},
				Connections: []ConnectionDecl{conn("A,1,2", "B,1")},
			},
			want: KindPinCountMismatch,
		},
		{
			name: "pin not specified on device with pins",
			decls: Declarations{
				Devices:     []DeviceDecl{dev("A", "1"), dev("B")},
				Connections: []ConnectionDecl{conn("A", "B")},
			},
			want: KindPinCountMismatch,
		},
		{
			name: "wire color count",
			decls: Declarations{
				Devices:     []DeviceDecl{dev("A", "1", "2"), dev("B", "1", "2")},
				Connections: []ConnectionDecl{conn("A,1,2", "B,1,2", "RD")},
			},
			want: KindColorCountMismatch,
		},
		{
			name: "device color count",
			decls: Declarations{
				Devices: []DeviceDecl{{Name: "A", Pins: []string{"1", "2"}, Colors: []string{"RD"}}},
			},
			want: KindDeviceColorCountMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.decls, WithPolicy(Strict))
			var fe *FatalError
			if !errors.As(err, &fe) {
				t.Fatalf("Build() error = %v, want *FatalError", err)
			}
			if fe.Diagnostic.Kind != tt.want {
				t.Errorf("kind = %s, want %s", fe.Diagnostic.Kind, tt.want)
			}
		})
	}
}

func TestBuildStrictAdvisoriesDoNotAbort(t *testing.T) {
	decls := Declarations{
		Devices: []DeviceDecl{dev("A", "1", "2"), dev("B", "1"), dev("C", "1")},
		Connections: []ConnectionDecl{
			conn("A,1", "B,1"),
			conn("A,1", "C,1"),
		},
	}
	res := mustBuild(t, decls, WithPolicy(Strict))

	for _, k := range []Kind{KindSharedPin, KindUnconnectedPin} {
		if res.Diagnostics.Count(k) != 1 {
			t.Errorf("%s count = %d, want 1 (all: %v)", k, res.Diagnostics.Count(k), res.Diagnostics.Kinds())
		}
	}
}

func TestBuildStrictKeepsPriorAdvisories(t *testing.T) {
	decls := Declarations{
		Devices: []DeviceDecl{dev("A", "1"), dev("B", "1")},
		Connections: []ConnectionDecl{
			conn("A,1", "B,1", "red"),
			conn("A,1", "Z,1"),
		},
	}
	_, err := Build(decls, WithPolicy(Strict))
	var fe *FatalError
	if !errors.As(err, &fe) {
		t.Fatalf("Build() error = %v", err)
	}
	if got := fe.Prior.Kinds(); !slices.Equal(got, []Kind{KindDeprecatedColorAlias}) {
		t.Errorf("prior = %v", got)
	}
}

func TestBuildColorPadding(t *testing.T) {
	tests := []struct {
		name   string
		colors []string
		want   []string
	}{
		{"absent", nil, []string{"BK", "BK", "BK"}},
		{"short", []string{"RD"}, []string{"RD", "BK", "BK"}},
		{"long", []string{"RD", "BU", "GN", "YE"}, []string{"RD", "BU", "GN"}},
		{"exact", []string{"RD", "BU", "GN"}, []string{"RD", "BU", "GN"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := conn("A,1,2,3", "B,1,2,3")
			c.Colors = tt.colors
			res := mustBuild(t, Declarations{
				Devices:     []DeviceDecl{dev("A", "1", "2", "3"), dev("B", "1", "2", "3")},
				Connections: []ConnectionDecl{c},
			})
			got := res.Document.Connections()[0].Colors
			if !slices.Equal(got, tt.want) {
				t.Errorf("colors = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildGroups(t *testing.T) {
	withGroup := func(c ConnectionDecl, g string) ConnectionDecl {
		c.Group = g
		return c
	}
	decls := Declarations{
		Devices: []DeviceDecl{dev("A", "1", "2", "3"), dev("B", "1", "2", "3")},
		Connections: []ConnectionDecl{
			withGroup(conn("A,1", "B,1"), "power"),
			conn("A,2", "B,2"),
			withGroup(conn("A,3", "B,3"), "power"),
		},
	}
	doc := mustBuild(t, decls).Document

	if got := doc.GroupNames(); !slices.Equal(got, []string{"power", DefaultGroup}) {
		t.Errorf("GroupNames() = %v", got)
	}
	g, _ := doc.Group("power")
	if len(g.Connections) != 2 || g.Connections[1].FromPins[0] != "3" {
		t.Errorf("power group = %v", g.Connections)
	}
	if _, ok := doc.Group("missing"); ok {
		t.Error("Group(missing) found")
	}
}

func TestBuildPlaceholderIdempotent(t *testing.T) {
	decls := Declarations{
		Connections: []ConnectionDecl{
			conn("X", "Y"),
			conn("Y", "X"),
			conn("X", "Z"),
		},
	}
	res := mustBuild(t, decls)

	if n := res.Diagnostics.Count(KindUndeclaredDeviceReference); n != 3 {
		t.Errorf("UndeclaredDeviceReference = %d, want 3", n)
	}
	var names []string
	for _, d := range res.Document.Devices() {
		names = append(names, d.Name)
	}
	if !slices.Equal(names, []string{"X", "Y", "Z"}) {
		t.Errorf("devices = %v, want [X Y Z]", names)
	}
	x, _ := res.Document.Device("X")
	if x.ConnectionCountTotal() != 3 {
		t.Errorf("X total = %d, want 3", x.ConnectionCountTotal())
	}
}

func TestBuildCounterConsistency(t *testing.T) {
	decls := Declarations{
		Devices: []DeviceDecl{dev("A", "1", "2", "", "4"), dev("B", "1", "2"), dev("P")},
		Connections: []ConnectionDecl{
			conn("A,1,2", "B,1,2"),
			conn("A,4", "B,2"),
			conn("A,9", "P"),
			conn("P", "B"),
		},
	}
	res := mustBuild(t, decls)

	for _, d := range res.Document.Devices() {
		sum := 0
		for _, n := range d.ConnectionCounts() {
			sum += n
		}
		if len(d.Pins) > 0 && sum != d.ConnectionCountTotal() {
			t.Errorf("%s: pin sum %d != total %d", d.Name, sum, d.ConnectionCountTotal())
		}
	}
	p, _ := res.Document.Device("P")
	if p.ConnectionCountTotal() != 2 {
		t.Errorf("P total = %d, want 2", p.ConnectionCountTotal())
	}
	a, _ := res.Document.Device("A")
	if a.ConnectionCount("") != 0 {
		t.Error("unnamed pin should not be counted")
	}
	if a.HasPin("") {
		t.Error("unnamed pin should not be addressable")
	}
}

func TestBuildInvariants(t *testing.T) {
	decls := Declarations{
		Devices: []DeviceDecl{dev("A", "1", "2", "3"), dev("B", "1", "2")},
		Connections: []ConnectionDecl{
			conn("A,1,2,3", "B,1,2", "RD"),
			conn("A", "B", "GN", "BU"),
			conn("A,1", "Q"),
		},
	}
	res := mustBuild(t, decls)

	for _, c := range res.Document.Connections() {
		if len(c.Colors) != c.WireCount() {
			t.Errorf("%s: %d colors for %d wires", c, len(c.Colors), c.WireCount())
		}
		for _, code := range c.Colors {
			if res.Document.ResolveColor(code) == "" {
				t.Errorf("%s: unresolvable color %q", c, code)
			}
		}
		if _, ok := res.Document.Device(c.FromDevice); !ok {
			t.Errorf("%s: from device missing", c)
		}
		if _, ok := res.Document.Device(c.ToDevice); !ok {
			t.Errorf("%s: to device missing", c)
		}
	}

	// pin count mismatch is symmetric
	swapped := Declarations{
		Devices:     decls.Devices,
		Connections: []ConnectionDecl{conn("B,1,2", "A,1,2,3", "RD")},
	}
	a := mustBuild(t, Declarations{Devices: decls.Devices, Connections: decls.Connections[:1]})
	b := mustBuild(t, swapped)
	if a.Diagnostics.Count(KindPinCountMismatch) != b.Diagnostics.Count(KindPinCountMismatch) {
		t.Error("PinCountMismatch depends on endpoint order")
	}
}

func TestBuildDeterministic(t *testing.T) {
	decls := Declarations{
		Devices: []DeviceDecl{dev("A", "1", "2"), dev("B", "1"), dev("C")},
		Connections: []ConnectionDecl{
			conn("A,1", "B,1", "red"),
			conn("A,2", "D"),
			conn("A,1", "B,7", "XX"),
		},
	}
	first := mustBuild(t, decls)
	for range 5 {
		again := mustBuild(t, decls)
		if !reflect.DeepEqual(first.Diagnostics, again.Diagnostics) {
			t.Fatalf("diagnostics differ:\n%v\n%v", first.Diagnostics, again.Diagnostics)
		}
		if !reflect.DeepEqual(first.Document.Stats(), again.Document.Stats()) {
			t.Fatal("stats differ")
		}
	}
}

func TestBuildDoesNotMutateInput(t *testing.T) {
	fresh := func() Declarations {
		a := dev("A", "1", "2")
		a.Colors = []string{"RD", "BU"}
		return Declarations{
			Devices:     []DeviceDecl{a, dev("B", "1", "2")},
			Connections: []ConnectionDecl{conn("A,1,2", "B,1,2", "RD")},
		}
	}
	decls := fresh()
	res := mustBuild(t, decls)
	res.Document.Connections()[0].Colors[0] = "GN"
	res.Document.Connections()[0].FromPins[0] = "x"
	a, _ := res.Document.Device("A")
	a.Pins[0] = "y"

	if !reflect.DeepEqual(decls, fresh()) {
		t.Errorf("input modified: %+v", decls)
	}
}

func TestBuildInvalidDeclaration(t *testing.T) {
	tests := []Declarations{
		{Devices: []DeviceDecl{{Name: ""}}},
		{Connections: []ConnectionDecl{{From: Endpoint{Device: "A"}}}},
	}
	for _, decls := range tests {
		for _, p := range []Policy{Lenient, Strict} {
			if _, err := Build(decls, WithPolicy(p)); !errors.Is(err, ErrInvalidDeclaration) {
				t.Errorf("%s: Build() error = %v, want ErrInvalidDeclaration", p, err)
			}
		}
	}
}

func TestBuildCustomColorTable(t *testing.T) {
	tbl, err := color.New([]color.Entry{
		{ShortCode: "BK", LongName: "black", Value: "#000000"},
		{ShortCode: "PU", LongName: "purple", Value: "#800080"},
	})
	if err != nil {
		t.Fatal(err)
	}
	decls := Declarations{
		Devices:     []DeviceDecl{dev("A"), dev("B")},
		Connections: []ConnectionDecl{conn("A", "B", "PU"), conn("B", "A", "RD")},
	}
	res := mustBuild(t, decls, WithColorTable(tbl))
	if got := res.Diagnostics.Kinds(); !slices.Equal(got, []Kind{KindUnknownColor}) {
		t.Errorf("kinds = %v", got)
	}
	if res.Document.Colors() != tbl {
		t.Error("document does not carry the custom table")
	}
}
