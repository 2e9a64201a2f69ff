package ir

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/calliope-vn/calliope/internal/ilist"
)

// AssetData is an identity value carrying binary payload: an image, an
// audio clip, any blob the tree references but never inspects. Unlike
// literals, two assets with identical bytes stay distinct; the handle is
// the stable identity across export and import. Payload lives either in
// memory or behind a backing file, never both.
type AssetData struct {
	ValueBase
	ilist.Elem[*AssetData]
	handle      uuid.UUID
	data        []byte
	backingPath string
}

// NewAssetData registers an in-memory asset of the given type with the
// context.
func NewAssetData(ctx *Context, ty Type, data []byte) *AssetData {
	a := &AssetData{handle: uuid.New(), data: data}
	a.initValue(a, ty)
	a.Attach(a)
	ctx.assets.PushBack(a)
	return a
}

// NewFileAssetData registers an asset whose payload stays in the file at
// path. The file must outlive the context or be moved in with
// SaveToBacking.
func NewFileAssetData(ctx *Context, ty Type, path string) *AssetData {
	a := &AssetData{handle: uuid.New(), backingPath: path}
	a.initValue(a, ty)
	a.Attach(a)
	ctx.assets.PushBack(a)
	return a
}

// ImportAssetData rebuilds an asset under a known handle, preserving
// identity across serialization. Deserializers are the only intended
// callers; fresh assets go through NewAssetData.
func ImportAssetData(ctx *Context, ty Type, handle uuid.UUID, data []byte) *AssetData {
	a := &AssetData{handle: handle, data: data}
	a.initValue(a, ty)
	a.Attach(a)
	ctx.assets.PushBack(a)
	return a
}

// Handle returns the asset's stable identity.
func (a *AssetData) Handle() uuid.UUID { return a.handle }

// InMemory reports whether the payload is held in memory rather than a
// backing file.
func (a *AssetData) InMemory() bool { return a.backingPath == "" }

// BackingPath returns the payload file, or "" for in-memory assets.
func (a *AssetData) BackingPath() string { return a.backingPath }

func (a *AssetData) Describe() string {
	return fmt.Sprintf("asset<%s>(%s)", a.Type(), a.handle)
}

// Load returns the payload bytes, reading the backing file when the
// asset is not in memory.
func (a *AssetData) Load() ([]byte, error) {
	if a.InMemory() {
		return a.data, nil
	}
	b, err := os.ReadFile(a.backingPath)
	if err != nil {
		return nil, fmt.Errorf("load asset %s: %w", a.handle, err)
	}
	return b, nil
}

// Export writes the payload to destPath, creating parent directories.
// Exporting a file-backed asset onto its own backing file is a no-op
// rather than a self-truncating copy.
func (a *AssetData) Export(destPath string) error {
	if !a.InMemory() {
		if same, err := sameFile(a.backingPath, destPath); err == nil && same {
			return nil
		}
	}
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("export asset %s: %w", a.handle, err)
	}
	if a.InMemory() {
		if err := os.WriteFile(destPath, a.data, 0o644); err != nil {
			return fmt.Errorf("export asset %s: %w", a.handle, err)
		}
		return nil
	}
	if err := copyFile(a.backingPath, destPath); err != nil {
		return fmt.Errorf("export asset %s: %w", a.handle, err)
	}
	return nil
}

// SaveToBacking moves an in-memory payload into the context's backing
// directory and switches the asset to file backing, freeing the bytes.
// File-backed assets are untouched.
func (a *AssetData) SaveToBacking(ctx *Context) error {
	if !a.InMemory() {
		return nil
	}
	path, err := ctx.CreateBackingPath(a.handle.String())
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, a.data, 0o644); err != nil {
		return fmt.Errorf("save asset %s: %w", a.handle, err)
	}
	a.backingPath = path
	a.data = nil
	return nil
}

// Destroy unregisters the asset from its context and runs the usual
// value destruction, Undef-substituting any remaining references.
func (a *AssetData) Destroy() {
	if a.Owner() != nil {
		a.RemoveFromOwner()
	}
	a.DestroyValue()
	a.data = nil
}

func sameFile(a, b string) (bool, error) {
	ai, err := os.Stat(a)
	if err != nil {
		return false, err
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false, err
	}
	return os.SameFile(ai, bi), nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
