// Package ir provides the mutable intermediate representation that every
// other part of Calliope is built on: frontends construct it, analyses and
// rewrites mutate it, emitters walk it.
//
// This package imports only internal/ilist; all other internal packages
// import ir. This keeps the IR the foundational layer with no circular
// dependencies.
//
// ARCHITECTURE:
//
// A program is two overlaid structures. The ownership tree: an Operation
// exclusively owns named Regions, a Region owns an ordered list of Blocks,
// a Block owns an ordered list of Operations plus named BlockArguments, and
// an Operation owns its named operand slots and results. The def-use graph:
// every Value carries a use-list, every operand slot owns Use edges, and a
// Use is simultaneously a member of its value's use-list and of exactly one
// slot. The two structures are kept consistent by construction; a dangling
// operand reference is structurally impossible.
//
// All uniqued constructs (types, literals, constant expressions, interned
// source locations) live in a Context, one per compilation. Within a
// Context, equal content means identical object, so identity comparison
// substitutes for value comparison and a single use-list per canonical
// value makes ReplaceAllUsesWith-based rewriting sound.
//
// CONTRACT:
//
// Two failure classes only. Programming errors (duplicate symbol names,
// inserting an owned node, operand name collisions, type mismatch on
// ReplaceAllUsesWith) panic immediately; tolerating them would corrupt
// list or use-list invariants. Data-integrity fallbacks never panic:
// destroying a value that still has live non-constant consumers rewrites
// those uses to an UndefLiteral carrying a diagnostic description, so that
// destruction always completes mid-rewrite. Context.SetStrictDestroy turns
// the fallback into a hard failure for tests.
//
// The package is single-threaded: one compilation pipeline owns one
// Context and mutates it; nothing here locks.
package ir
