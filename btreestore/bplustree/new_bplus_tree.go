package bplustree

import (
	"bytes"
	"fmt"
	"os"

	"GeoDB/btreestore/bufferpool"
	diskmanager "GeoDB/btreestore/diskmanager"
	"GeoDB/btreestore/page"
)

// OpenBPlusTree opens an existing index file or creates a fresh one with an
// empty root leaf.
func OpenBPlusTree(indexPath string, fileID uint32, bp *bufferpool.BufferPool, dm *diskmanager.DiskManager) (*BPlusTree, error) {
	_, statErr := os.Stat(indexPath)
	isNew := os.IsNotExist(statErr)

	if _, err := dm.OpenFileWithID(indexPath, fileID); err != nil {
		return nil, fmt.Errorf("failed to open index file: %w", err)
	}

	t := &BPlusTree{
		fileID:      fileID,
		root:        -1,
		bufferPool:  bp,
		diskManager: dm,
		cmp:         bytes.Compare,
	}

	if isNew {
		if _, err := dm.AllocatePage(fileID, page.PageTypeMetadata); err != nil {
			return nil, fmt.Errorf("failed to allocate metadata page: %w", err)
		}
		root, err := t.newNode(NodeLeaf)
		if err != nil {
			return nil, fmt.Errorf("failed to create root leaf: %w", err)
		}
		t.root = root.pageID
		if err := t.writeNode(root); err != nil {
			return nil, fmt.Errorf("failed to write root leaf: %w", err)
		}
		if err := t.saveRoot(); err != nil {
			return nil, fmt.Errorf("failed to persist root id: %w", err)
		}
		return t, nil
	}

	totalPages, err := dm.GetTotalPages(indexPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat index file: %w", err)
	}
	for local := int64(1); local < totalPages; local++ {
		if err := dm.RegisterPage(fileID, local); err != nil {
			return nil, fmt.Errorf("failed to register page %d: %w", local, err)
		}
	}

	localRoot, err := dm.ReadRootID(fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to read root id: %w", err)
	}
	globalRoot, err := dm.GetGlobalPageID(fileID, localRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root page: %w", err)
	}
	t.root = globalRoot

	return t, nil
}

func (t *BPlusTree) saveRoot() error {
	localID := t.root & 0xFFFFFFFF
	return t.diskManager.WriteRootID(t.fileID, localID)
}

// Close flushes every buffered page belonging to this tree's file and syncs
// the underlying file descriptor.
func (t *BPlusTree) Close() error {
	if err := t.bufferPool.FlushAllPages(); err != nil {
		return fmt.Errorf("failed to flush pages: %w", err)
	}
	if err := t.diskManager.Sync(); err != nil {
		return fmt.Errorf("failed to sync disk manager: %w", err)
	}
	return nil
}
