// Package color provides the wire color registry used to resolve color codes
// to display values.
//
// # Overview
//
// Wire colors are written as two-letter short codes ("RD", "BU", "GN") as
// used on harness drawings. Older input files spell them out as long names
// ("red", "blue", "green"); those still resolve, but [Table.Resolve] flags
// them as legacy aliases so callers can recommend the short code.
//
// # Usage
//
//	t := color.Default()
//	value, legacy, err := t.Resolve("green")
//	// value == "#008000", legacy == true, err == nil
//
// A [Table] is immutable once built. Alternate registries can be loaded from
// TOML with [Load] or [LoadFile]:
//
//	[[color]]
//	code = "RD"
//	name = "red"
//	value = "#ff0000"
//
// Lookups are case-sensitive: "rd" is not a valid code.
package color
