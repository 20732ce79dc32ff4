package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"GeoDB/btreestore/bufferpool"
	diskmanager "GeoDB/btreestore/diskmanager"
	"GeoDB/btreestore/indexstore"
	"GeoDB/geo"
)

const geoField = "loc"
const bufferPoolCapacity = 64

type descriptorConfig struct {
	Bits     uint8
	Min, Max float64
}

func descriptorConfigPath(dir string) string {
	return filepath.Join(dir, "descriptor.json")
}

func loadOrCreateDescriptor(dir string, bits uint8, min, max float64) (*geo.IndexDescriptor, error) {
	path := descriptorConfigPath(dir)
	cfg := descriptorConfig{Bits: bits, Min: min, Max: max}

	if raw, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read %s: %w", path, err)
	} else {
		raw, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(path, raw, 0644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
	}

	return geo.NewIndexDescriptor(geoField, nil, cfg.Bits, cfg.Min, cfg.Max)
}

// indexEnv bundles everything geowalk's subcommands need: the descriptor,
// the on-disk B+Tree cursor, and the flat document store it sits beside.
type indexEnv struct {
	desc   *geo.IndexDescriptor
	cursor *indexstore.Cursor
	docs   *fileDocStore
	tree   *indexstore.IndexStore
}

func openIndexEnv(dir string, bits uint8, min, max float64) (*indexEnv, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}

	desc, err := loadOrCreateDescriptor(dir, bits, min, max)
	if err != nil {
		return nil, err
	}

	dm := diskmanager.NewDiskManager()
	bp := bufferpool.NewBufferPool(bufferPoolCapacity, dm)
	store := indexstore.NewIndexStore(dir, bp, dm)

	tree, err := store.GetOrCreateIndex(geoField)
	if err != nil {
		return nil, err
	}

	docs, err := openFileDocStore(filepath.Join(dir, "documents.json"))
	if err != nil {
		return nil, err
	}

	return &indexEnv{
		desc:   desc,
		cursor: indexstore.NewCursor(tree),
		docs:   docs,
		tree:   store,
	}, nil
}

func (e *indexEnv) Close() error {
	return e.tree.CloseAll()
}

// acceptAllMatcher treats every candidate as satisfying the (nonexistent)
// residual predicate; geowalk only ever queries the geo portion of a key.
type acceptAllMatcher struct{}

func (acceptAllMatcher) Match(key []byte, ref geo.DocRef) (bool, bool, error) {
	return true, false, nil
}
