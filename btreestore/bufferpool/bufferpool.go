package bufferpool

import (
	"fmt"

	diskmanager "GeoDB/btreestore/diskmanager"
	"GeoDB/btreestore/page"
)

/*
BufferPool is a pinned-page LRU cache in front of the disk manager. Every
page that the B+Tree touches goes through here first; a miss triggers a
disk read (or a fresh allocation), a hit returns the cached page without
touching the file.

Flushing is gated on the journal: a dirty page cannot be written back, or
evicted, until the journal manager reports that the log covering its LSN
has been fsynced. Without a WAL manager attached, gating is skipped —
that is the expected mode for tests and any index that opted out of the
journal entirely.
*/

func NewBufferPool(capacity int, dm *diskmanager.DiskManager) *BufferPool {
	return &BufferPool{
		pages:       make(map[int64]*page.Page),
		capacity:    capacity,
		diskManager: dm,
		accessOrder: make([]int64, 0, capacity),
	}
}

func (bp *BufferPool) SetWALManager(wal WALFlushedLSNGetter) {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	bp.walManager = wal
}

// FetchPage returns the page, loading it from disk on a cache miss.
func (bp *BufferPool) FetchPage(pageID int64) (*page.Page, error) {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	if pg, ok := bp.pages[pageID]; ok {
		pg.PinCount++
		bp.updateAccessOrder(pageID)
		return pg, nil
	}

	pg, err := bp.diskManager.ReadPage(pageID)
	if err != nil {
		return nil, fmt.Errorf("buffer pool miss: %w", err)
	}
	if pg.PageType == page.PageTypeHeapData && len(pg.Data) >= 8 {
		pg.LSN = uint64(pg.Data[0]) | uint64(pg.Data[1])<<8 | uint64(pg.Data[2])<<16 | uint64(pg.Data[3])<<24 |
			uint64(pg.Data[4])<<32 | uint64(pg.Data[5])<<40 | uint64(pg.Data[6])<<48 | uint64(pg.Data[7])<<56
	}
	pg.PinCount = 1

	bp.addPage(pg)
	return pg, nil
}

// NewPage allocates a fresh page via the disk manager and pins it in the
// pool, ready for the caller to populate.
func (bp *BufferPool) NewPage(fileID uint32, pageType page.PageType) (*page.Page, error) {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	pageID, err := bp.diskManager.AllocatePage(fileID, pageType)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate page: %w", err)
	}

	pg := diskmanager.NewPage(pageID, fileID, pageType)
	pg.PinCount = 1
	pg.IsDirty = true

	bp.addPage(pg)
	return pg, nil
}

// UnpinPage decrements a page's pin count, optionally marking it dirty.
func (bp *BufferPool) UnpinPage(pageID int64, isDirty bool) error {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	pg, ok := bp.pages[pageID]
	if !ok {
		return fmt.Errorf("page %d not in buffer pool", pageID)
	}
	if pg.PinCount > 0 {
		pg.PinCount--
	}
	if isDirty {
		pg.IsDirty = true
	}
	return nil
}

// FlushPage writes a single page back to disk if the journal has durably
// recorded everything up to its LSN.
func (bp *BufferPool) FlushPage(pageID int64) error {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	pg, ok := bp.pages[pageID]
	if !ok {
		return fmt.Errorf("page %d not in buffer pool", pageID)
	}
	if !pg.IsDirty {
		return nil
	}
	if bp.walManager != nil && pg.LSN > bp.walManager.GetFlushedLSN() {
		return fmt.Errorf("page %d not flushed: LSN %d ahead of durable log", pageID, pg.LSN)
	}

	if err := bp.diskManager.WritePage(pg); err != nil {
		return fmt.Errorf("failed to flush page %d: %w", pageID, err)
	}
	pg.IsDirty = false
	return nil
}

// FlushAllPages writes every dirty, journal-covered page back to disk.
func (bp *BufferPool) FlushAllPages() error {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	for pageID, pg := range bp.pages {
		if !pg.IsDirty {
			continue
		}
		if bp.walManager != nil && pg.LSN > bp.walManager.GetFlushedLSN() {
			continue
		}
		if err := bp.diskManager.WritePage(pg); err != nil {
			return fmt.Errorf("failed to flush page %d: %w", pageID, err)
		}
		pg.IsDirty = false
	}
	return nil
}

func (bp *BufferPool) addPage(pg *page.Page) {
	if len(bp.pages) >= bp.capacity {
		bp.evictLRU()
	}
	bp.pages[pg.ID] = pg
	bp.updateAccessOrder(pg.ID)
}

func (bp *BufferPool) evictLRU() {
	for i, pageID := range bp.accessOrder {
		pg, ok := bp.pages[pageID]
		if !ok {
			continue
		}
		if pg.PinCount > 0 {
			continue
		}
		if pg.IsDirty {
			if bp.walManager != nil && pg.LSN > bp.walManager.GetFlushedLSN() {
				continue
			}
			if err := bp.diskManager.WritePage(pg); err != nil {
				continue
			}
		}
		delete(bp.pages, pageID)
		bp.accessOrder = append(bp.accessOrder[:i], bp.accessOrder[i+1:]...)
		return
	}
}

func (bp *BufferPool) updateAccessOrder(pageID int64) {
	for i, id := range bp.accessOrder {
		if id == pageID {
			bp.accessOrder = append(bp.accessOrder[:i], bp.accessOrder[i+1:]...)
			break
		}
	}
	bp.accessOrder = append(bp.accessOrder, pageID)
}

func (bp *BufferPool) DeletePage(pageID int64) {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	delete(bp.pages, pageID)
	for i, id := range bp.accessOrder {
		if id == pageID {
			bp.accessOrder = append(bp.accessOrder[:i], bp.accessOrder[i+1:]...)
			break
		}
	}
}
