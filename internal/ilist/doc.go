// Package ilist provides the intrusive doubly-linked ownership list that
// underpins the IR: operation lists in blocks, block lists in regions, and
// the use-lists on values all share this one container.
//
// Elements are the list nodes themselves. A type joins a list by embedding
// Elem and calling Attach once; no per-node wrapper is ever allocated. All
// structural mutations (PushBack, PushFront, InsertBefore, Remove) are O(1)
// given a node reference.
//
// MergeInto hands the entire remaining chain of one list to another in O(1)
// total. Ownership is tracked through a shared indirection box rather than a
// per-element list pointer, so splicing never visits individual elements.
// This is what keeps Value.ReplaceAllUsesWith constant-time regardless of
// use count.
//
// Misuse is a contract violation, not a recoverable error: inserting a node
// that already has an owner, or removing one that has none, panics.
package ilist
