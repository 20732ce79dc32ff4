package indexstore

import (
	"fmt"
	"path/filepath"

	"GeoDB/btreestore/bplustree"
	"GeoDB/btreestore/bufferpool"
	diskmanager "GeoDB/btreestore/diskmanager"
)

func NewIndexStore(baseDir string, bp *bufferpool.BufferPool, dm *diskmanager.DiskManager) *IndexStore {
	return &IndexStore{
		baseDir:     baseDir,
		indexes:     make(map[string]*bplustree.BPlusTree),
		fileIDs:     make(map[string]uint32),
		nextFileID:  1,
		bufferPool:  bp,
		diskManager: dm,
	}
}

// GetOrCreateIndex returns the B+Tree backing fieldName, opening or
// creating its .idx file on first use.
func (s *IndexStore) GetOrCreateIndex(fieldName string) (*bplustree.BPlusTree, error) {
	s.mu.RLock()
	if tree, ok := s.indexes[fieldName]; ok {
		s.mu.RUnlock()
		return tree, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if tree, ok := s.indexes[fieldName]; ok {
		return tree, nil
	}

	fileID, ok := s.fileIDs[fieldName]
	if !ok {
		fileID = s.nextFileID
		s.nextFileID++
		s.fileIDs[fieldName] = fileID
	}

	indexPath := filepath.Join(s.baseDir, fieldName+"_2d.idx")
	tree, err := bplustree.OpenBPlusTree(indexPath, fileID, s.bufferPool, s.diskManager)
	if err != nil {
		return nil, fmt.Errorf("failed to open index for field %q: %w", fieldName, err)
	}

	s.indexes[fieldName] = tree
	return tree, nil
}

func (s *IndexStore) CloseIndex(fieldName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tree, ok := s.indexes[fieldName]
	if !ok {
		return nil
	}
	if err := tree.Close(); err != nil {
		return fmt.Errorf("failed to close index for field %q: %w", fieldName, err)
	}
	delete(s.indexes, fieldName)
	return nil
}

func (s *IndexStore) CloseAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var lastErr error
	for fieldName, tree := range s.indexes {
		if err := tree.Close(); err != nil {
			lastErr = err
		}
		delete(s.indexes, fieldName)
	}
	return lastErr
}
