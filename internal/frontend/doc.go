// Package frontend reads storyboard YAML files and lowers them to
// vnmodel IR.
//
// ARCHITECTURE
//
// Loading is two phases. Parse decodes the YAML into a Storyboard with
// strict field validation, keeping the position of every declaration
// and step. Lower then builds the ModelOp: declarations first so script
// steps can resolve symbols, then each function's blocks, then the
// instructions. Every node gets a source location interned from the
// YAML position it came from.
//
// Lowering never aborts on a bad reference. An unknown character,
// scene, asset, function, or block label becomes an ErrorOp at the spot
// the reference occurred, and the rest of the story still lowers. The
// caller decides whether the collected errors are fatal.
package frontend
