package indexstore

import (
	"sync"

	"GeoDB/btreestore/bplustree"
	"GeoDB/btreestore/bufferpool"
	diskmanager "GeoDB/btreestore/diskmanager"
)

// IndexStore owns one B+Tree per geo field that has been indexed, each
// backed by its own .idx file. Where the teacher's indexfile_manager keyed
// trees by table name, a geo index keys them by field name — a document
// store can carry several independently indexed location fields.
type IndexStore struct {
	baseDir     string
	indexes     map[string]*bplustree.BPlusTree
	fileIDs     map[string]uint32
	nextFileID  uint32
	bufferPool  *bufferpool.BufferPool
	diskManager *diskmanager.DiskManager
	mu          sync.RWMutex
}
