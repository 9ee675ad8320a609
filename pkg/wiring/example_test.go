package wiring_test

import (
	"errors"
	"fmt"

	"github.com/matzehuels/wiring/pkg/wiring"
)

func ExampleBuild() {
	decls := wiring.Declarations{
		Devices: []wiring.DeviceDecl{
			{Name: "PSU", Pins: []string{"V+", "GND"}},
			{Name: "MCU", Pins: []string{"VCC", "GND", "TX"}, Unused: []string{"TX"}},
		},
		Connections: []wiring.ConnectionDecl{
			{
				From:   wiring.ParseEndpoint("PSU, V+, GND"),
				To:     wiring.ParseEndpoint("MCU, VCC, GND"),
				Colors: []string{"RD", "BK"},
				Group:  "power",
			},
		},
	}

	res, err := wiring.Build(decls)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	for _, g := range res.Document.Groups() {
		for _, c := range g.Connections {
			fmt.Println(g.Name, c)
		}
	}
	mcu, _ := res.Document.Device("MCU")
	fmt.Println("MCU wires:", mcu.ConnectionCountTotal())
	fmt.Println("diagnostics:", len(res.Diagnostics))
	// Output:
	// power PSU:[V+ GND] -> MCU:[VCC GND]
	// MCU wires: 2
	// diagnostics: 0
}

func ExampleBuild_strict() {
	decls := wiring.Declarations{
		Devices: []wiring.DeviceDecl{{Name: "A", Pins: []string{"1"}}},
		Connections: []wiring.ConnectionDecl{
			{From: wiring.ParseEndpoint("A, 1"), To: wiring.ParseEndpoint("B"), Line: 7},
		},
	}

	_, err := wiring.Build(decls, wiring.WithPolicy(wiring.Strict))
	fmt.Println(errors.Is(err, wiring.ErrAborted))
	fmt.Println(err)
	// Output:
	// true
	// UndeclaredDeviceReference: device B referenced in connection A:[1] -> B:[] is not declared (line 7)
}
