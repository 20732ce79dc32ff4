package bplustree

import (
	"sync"

	"GeoDB/btreestore/bufferpool"
	diskmanager "GeoDB/btreestore/diskmanager"
)

type NodeType int

const (
	NodeInternal NodeType = iota
	NodeLeaf
)

const (
	MaxKeys   = 32
	MinKeys   = MaxKeys / 2
	MaxKeyLen = 256
	MaxValLen = 4096
)

// Node is one page's worth of B+Tree state: a leaf holds key/value pairs
// with a sibling pointer for ordered iteration, an internal node holds
// keys with one more child pointer than key.
type Node struct {
	pageID   int64
	nodeType NodeType
	keys     [][]byte
	children []int64
	values   [][]byte
	next     int64
	parent   int64
	isDirty  bool
	pincnt   int16
	mu       sync.RWMutex
}

// BPlusTree is an ordered index over one .idx file, keyed by an
// arbitrary byte-comparable key (geohash cell bits followed by a
// document reference for uniqueness).
type BPlusTree struct {
	fileID      uint32
	root        int64
	bufferPool  *bufferpool.BufferPool
	diskManager *diskmanager.DiskManager
	cmp         func(a, b []byte) int
	mu          sync.RWMutex
}
