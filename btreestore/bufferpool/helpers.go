package bufferpool

import (
	"fmt"

	"GeoDB/btreestore/page"
)

func (bp *BufferPool) GetStats() BufferPoolStats {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	stats := BufferPoolStats{
		TotalPages: len(bp.pages),
		Capacity:   bp.capacity,
	}
	for _, pg := range bp.pages {
		if pg.PinCount > 0 {
			stats.PinnedPages++
		}
		if pg.IsDirty {
			stats.DirtyPages++
		}
	}
	return stats
}

// Reset flushes every dirty page and empties the pool. Used between test
// cases and when an index is closed cleanly.
func (bp *BufferPool) Reset() error {
	if err := bp.FlushAllPages(); err != nil {
		return err
	}
	bp.mu.Lock()
	defer bp.mu.Unlock()
	bp.pages = make(map[int64]*page.Page)
	bp.accessOrder = bp.accessOrder[:0]
	return nil
}

func (bp *BufferPool) Size() int {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	return len(bp.pages)
}

func (bp *BufferPool) Capacity() int {
	return bp.capacity
}

// GetPage returns a cached page without touching disk; nil if not resident.
func (bp *BufferPool) GetPage(pageID int64) *page.Page {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	return bp.pages[pageID]
}

func (bp *BufferPool) MarkDirty(pageID int64) error {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	pg, ok := bp.pages[pageID]
	if !ok {
		return fmt.Errorf("page %d not in buffer pool", pageID)
	}
	pg.IsDirty = true
	return nil
}
