// Package irjson serializes operation trees to JSON and back.
//
// ARCHITECTURE
//
// The document has two parts. A flat "values" table defines every
// context-owned value the tree references (literals, constant
// expressions, assets), each under a numeric id, ordered so entries only
// reference earlier ids. The "root" object then mirrors the ownership
// tree structurally; values defined by the tree itself (results, blocks,
// block arguments) carry their ids inline at the definition point.
// Operand lists reference everything by id.
//
// Import resolves forward references with placeholder values: a
// reference to a not-yet-defined id binds to a placeholder, and when the
// definition arrives its uses transfer to the real value in one splice.
// Freed placeholders are recycled within the import.
//
// Serialization is canonical (RFC 8785): NFC-normalized strings, keys in
// UTF-16 code unit order, no floats. Equal trees therefore serialize to
// identical bytes, and ContentKey over those bytes is a stable identity
// usable for caching.
package irjson
