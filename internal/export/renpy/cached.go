package renpy

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/calliope-vn/calliope/internal/exportcache"
	"github.com/calliope-vn/calliope/internal/ir"
	"github.com/calliope-vn/calliope/internal/irjson"
	"github.com/calliope-vn/calliope/internal/vnmodel"
)

// ExportCached returns the script for m, reusing the cache when an
// artifact for the same model content already exists. The second result
// reports whether the script came from the cache.
func ExportCached(ctx context.Context, cache *exportcache.Cache, m *vnmodel.ModelOp) ([]byte, bool, error) {
	key, err := irjson.ExportContentKey(m)
	if err != nil {
		return nil, false, fmt.Errorf("content key: %w", err)
	}

	cached, err := cache.Get(ctx, key, Target)
	if err == nil {
		return cached, true, nil
	}
	if !errors.Is(err, exportcache.ErrMiss) {
		return nil, false, err
	}

	script, err := Export(m)
	if err != nil {
		return nil, false, err
	}
	if err := cache.Put(ctx, key, Target, script); err != nil {
		return nil, false, err
	}
	return script, false, nil
}

// WriteAssets materializes every asset the model declares into dir,
// named the way scene image statements reference them. File-backed
// assets copy, in-memory assets write out.
func WriteAssets(m *vnmodel.ModelOp, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("write assets: %w", err)
	}
	var firstErr error
	m.Assets().ForEachSymbol(func(s ir.SymbolOp) {
		asset := s.(*vnmodel.AssetSymbol)
		dest := filepath.Join(dir, AssetFileName(asset))
		if err := asset.Data().Export(dest); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("asset %q: %w", asset.SymbolName(), err)
		}
	})
	return firstErr
}
