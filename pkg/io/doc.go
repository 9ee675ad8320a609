// Package io decodes harness descriptions from YAML and exports built
// documents as JSON.
//
// # Input Format
//
// A harness description is a YAML (or JSON) mapping with two optional
// top-level sequences:
//
//	devices:
//	  - name: PSU
//	    type: LRS-35
//	    pins: [V+, GND]
//	    colors: RD, BK
//	  - name: MCU
//	    pins: [1, 2, ~, 4]
//	    unused: [4]
//	connections:
//	  - from: {device: PSU, pins: [V+, GND]}
//	    to: MCU, 1, 2
//	    color: [RD, BK]
//	    group: power
//
// # Device Fields
//
// Required:
//   - name: unique device name
//
// Optional:
//   - type, info: free text shown on the diagram
//   - pins: ordered pin names; a null entry is a numbered but unnamed pin
//   - colors: one wire color per pin
//   - unused: pins that are intentionally left unconnected
//
// Every list accepts a sequence or a comma-separated string. Integers keep
// their literal text, so `pins: [1, 2]` and `pins: "1, 2"` are equivalent.
//
// # Connection Fields
//
// Required:
//   - from, to: either a mapping {device, pins} or the shorthand string
//     "device, pin1, pin2". Omitting pins addresses the whole device.
//
// Optional:
//   - color (or colors): one color code per wire, defaulting to black
//   - group: diagram group, defaulting to "default"
//
// # Import
//
// Use [ImportYAML] to read a file, or [ReadYAML] and [ParseYAML] for readers
// and byte slices. Shape errors are reported with the source line; checks
// between declarations are left to [wiring.Build].
//
// # Export
//
// [WriteJSON] and [ExportJSON] write the validated model: devices with
// connection counts, groups with connections and resolved color values,
// diagnostics and statistics.
package io
