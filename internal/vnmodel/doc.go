// Package vnmodel is the visual-novel instruction set, layered on the
// generic core in internal/ir.
//
// ARCHITECTURE
//
// A ModelOp is the top of an ownership tree. It carries four symbol
// tables (characters, scenes, assets, functions) and a plain problems
// region for diagnostics; each FunctionOp owns a body region whose
// blocks hold the instructions. Symbols define a
// self-reference value, so instructions point at their character, scene,
// or callee through ordinary operand edges: rename a character and every
// say line follows, destroy it and they degrade to Undef markers instead
// of dangling.
//
// Every kind registers with the core's op-kind registry, so cloning and
// JSON round-trips work on models with no code here.
package vnmodel
