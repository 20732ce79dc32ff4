package bufferpool

import (
	"sync"

	diskmanager "GeoDB/btreestore/diskmanager"
	"GeoDB/btreestore/page"
)

// WALFlushedLSNGetter is the narrow slice of the journal manager the buffer
// pool needs: how far the durable log has advanced, so a dirty page is never
// flushed to the index file ahead of the journal record that protects it.
type WALFlushedLSNGetter interface {
	GetFlushedLSN() uint64
}

type BufferPool struct {
	pages       map[int64]*page.Page
	capacity    int
	diskManager *diskmanager.DiskManager
	walManager  WALFlushedLSNGetter
	accessOrder []int64
	mu          sync.Mutex
}

type BufferPoolStats struct {
	TotalPages  int
	PinnedPages int
	DirtyPages  int
	Capacity    int
	HitRate     float64
}
