package ir

import "fmt"

// Type is the interface of every value type. Types are uniqued per Context:
// two types with the same TypeKey obtained from the same Context are the
// same object, so == is type equality.
type Type interface {
	// Context returns the owning compilation context.
	Context() *Context
	// TypeKey is the canonical key the uniquing table indexes by. Unique
	// across all type kinds within one Context.
	TypeKey() string
	String() string
}

type typeBase struct {
	ctx *Context
	key string
}

func (t *typeBase) Context() *Context { return t.ctx }
func (t *typeBase) TypeKey() string   { return t.key }
func (t *typeBase) String() string    { return t.key }

// Stateless type kinds. Each is memoized per Context; the Context accessor
// is the only way to obtain an instance.

// VoidType is the type of placeholder values and of nothing in particular.
type VoidType struct{ typeBase }

// IntType is the type of integer literals. Always int64-backed; the IR has
// no float kind (fractional values travel as rational attribute pairs).
type IntType struct{ typeBase }

// BoolType is the type of boolean literals.
type BoolType struct{ typeBase }

// StringType is the type of plain, unstyled string literals.
type StringType struct{ typeBase }

// TextType is the type of styled text: fragments and fragment sequences.
type TextType struct{ typeBase }

// TextStyleType is the type of text style literals.
type TextStyleType struct{ typeBase }

// ImageType is the type of image asset references.
type ImageType struct{ typeBase }

// AudioType is the type of audio asset references.
type AudioType struct{ typeBase }

// BlockRefType is the type every Block has as a Value, letting operations
// reference a block as a branch target.
type BlockRefType struct{ typeBase }

// AssetRefType is the type of AssetData values (the internal reference
// from an asset user to its backing bytes).
type AssetRefType struct{ typeBase }

func (c *Context) VoidType() *VoidType {
	return c.statelessType("void", func(b typeBase) Type { return &VoidType{b} }).(*VoidType)
}

func (c *Context) IntType() *IntType {
	return c.statelessType("int", func(b typeBase) Type { return &IntType{b} }).(*IntType)
}

func (c *Context) BoolType() *BoolType {
	return c.statelessType("bool", func(b typeBase) Type { return &BoolType{b} }).(*BoolType)
}

func (c *Context) StringType() *StringType {
	return c.statelessType("string", func(b typeBase) Type { return &StringType{b} }).(*StringType)
}

func (c *Context) TextType() *TextType {
	return c.statelessType("text", func(b typeBase) Type { return &TextType{b} }).(*TextType)
}

func (c *Context) TextStyleType() *TextStyleType {
	return c.statelessType("textstyle", func(b typeBase) Type { return &TextStyleType{b} }).(*TextStyleType)
}

func (c *Context) ImageType() *ImageType {
	return c.statelessType("image", func(b typeBase) Type { return &ImageType{b} }).(*ImageType)
}

func (c *Context) AudioType() *AudioType {
	return c.statelessType("audio", func(b typeBase) Type { return &AudioType{b} }).(*AudioType)
}

func (c *Context) BlockRefType() *BlockRefType {
	return c.statelessType("blockref", func(b typeBase) Type { return &BlockRefType{b} }).(*BlockRefType)
}

func (c *Context) AssetRefType() *AssetRefType {
	return c.statelessType("assetref", func(b typeBase) Type { return &AssetRefType{b} }).(*AssetRefType)
}

// OptionalType wraps an element type; either the element or nothing.
// Parameterized: uniqued by the element's canonical key. Optional of
// optional degenerates to the inner optional.
type OptionalType struct {
	typeBase
	elem Type
}

// Elem returns the wrapped element type.
func (t *OptionalType) Elem() Type { return t.elem }

func (t *OptionalType) String() string { return fmt.Sprintf("optional<%s>", t.elem) }

func (c *Context) OptionalType(elem Type) *OptionalType {
	if opt, ok := elem.(*OptionalType); ok {
		return opt
	}
	key := "optional<" + elem.TypeKey() + ">"
	return c.parameterizedType(key, func(b typeBase) Type {
		return &OptionalType{typeBase: b, elem: elem}
	}).(*OptionalType)
}

// EnumType identifies a closed set of named cases, parameterized by the
// set's registered name. Domain layers use it for things like transition
// kinds, where the IR only needs identity, not case semantics.
type EnumType struct {
	typeBase
	enumName string
}

// EnumName returns the registered name of the case set.
func (t *EnumType) EnumName() string { return t.enumName }

func (t *EnumType) String() string { return fmt.Sprintf("enum<%s>", t.enumName) }

func (c *Context) EnumType(enumName string) *EnumType {
	key := "enum<" + enumName + ">"
	return c.parameterizedType(key, func(b typeBase) Type {
		return &EnumType{typeBase: b, enumName: enumName}
	}).(*EnumType)
}

// SymbolRefType is the type of a symbol operation's self-reference
// value, parameterized by symbol kind so a character reference can never
// slot where a function reference belongs.
type SymbolRefType struct {
	typeBase
	symbolKind string
}

// SymbolKind returns the symbol kind this reference type binds to.
func (t *SymbolRefType) SymbolKind() string { return t.symbolKind }

func (t *SymbolRefType) String() string { return fmt.Sprintf("symref<%s>", t.symbolKind) }

func (c *Context) SymbolRefType(symbolKind string) *SymbolRefType {
	key := "symref<" + symbolKind + ">"
	return c.parameterizedType(key, func(b typeBase) Type {
		return &SymbolRefType{typeBase: b, symbolKind: symbolKind}
	}).(*SymbolRefType)
}

// ParseTypeKey resolves a canonical type key back to the uniqued type
// instance, the inverse of TypeKey. Serialized forms carry type keys.
func ParseTypeKey(c *Context, key string) (Type, error) {
	switch key {
	case "void":
		return c.VoidType(), nil
	case "int":
		return c.IntType(), nil
	case "bool":
		return c.BoolType(), nil
	case "string":
		return c.StringType(), nil
	case "text":
		return c.TextType(), nil
	case "textstyle":
		return c.TextStyleType(), nil
	case "image":
		return c.ImageType(), nil
	case "audio":
		return c.AudioType(), nil
	case "blockref":
		return c.BlockRefType(), nil
	case "assetref":
		return c.AssetRefType(), nil
	}
	if inner, ok := paramOf(key, "optional"); ok {
		elem, err := ParseTypeKey(c, inner)
		if err != nil {
			return nil, err
		}
		return c.OptionalType(elem), nil
	}
	if name, ok := paramOf(key, "enum"); ok {
		return c.EnumType(name), nil
	}
	if kind, ok := paramOf(key, "symref"); ok {
		return c.SymbolRefType(kind), nil
	}
	return nil, fmt.Errorf("ir: unknown type key %q", key)
}

func paramOf(key, kind string) (string, bool) {
	prefix := kind + "<"
	if len(key) > len(prefix)+1 && key[:len(prefix)] == prefix && key[len(key)-1] == '>' {
		return key[len(prefix) : len(key)-1], true
	}
	return "", false
}
