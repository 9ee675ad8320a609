// Package wiring builds validated wiring-harness models from device and
// connection declarations.
//
// # Overview
//
// A harness description lists devices (each with an ordered list of pins and
// optional per-pin wire colors) and connections between them. [Build] turns
// those [Declarations] into a [Document]: every device keyed by name, every
// connection filed into its named [Group], and a connection counter on every
// pin. While building, each inconsistency is classified into a [Kind] and
// reported as a [Diagnostic].
//
// # Policies
//
// Two policies decide what happens to a diagnostic:
//
//   - [Lenient] records it, skips or defaults the offending item, and keeps
//     going. Undeclared devices are synthesized as zero-pin placeholders.
//   - [Strict] aborts at the first diagnostic whose kind is not advisory and
//     returns a [*FatalError] carrying it. No Document is returned.
//
// Advisory kinds ([KindDeprecatedColorAlias], [KindColorMismatch],
// [KindSharedPin], [KindUnconnectedPin], [KindUnconnectedDevice]) never abort.
//
// # Usage
//
//	res, err := wiring.Build(decls, wiring.WithPolicy(wiring.Strict))
//	var fatal *wiring.FatalError
//	if errors.As(err, &fatal) {
//	    fmt.Println(fatal.Diagnostic)
//	}
//	for _, d := range res.Diagnostics {
//	    fmt.Println(d)
//	}
//
// # Input Shapes
//
// Pin, color and unused lists may be written either as sequences or as one
// comma-separated string; endpoints may be a {device, pins} mapping or the
// shorthand "device, pin, pin". Decoders normalise both shapes with
// [SplitList] and [ParseEndpoint] before calling Build, so validation never
// depends on how the input was spelled.
//
// # Concurrency
//
// Build is synchronous and performs no I/O. The returned Document is not
// modified afterwards and may be read from multiple goroutines.
package wiring
