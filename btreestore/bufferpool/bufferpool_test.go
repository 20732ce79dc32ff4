package bufferpool

import (
	"os"
	"path/filepath"
	"testing"

	diskmanager "GeoDB/btreestore/diskmanager"
	"GeoDB/btreestore/page"
)

func newTestPool(t *testing.T, capacity int) (*BufferPool, uint32) {
	t.Helper()
	testDir := filepath.Join(os.TempDir(), "geodb_bufferpool_test")
	os.MkdirAll(testDir, 0755)
	t.Cleanup(func() { os.RemoveAll(testDir) })

	dm := diskmanager.NewDiskManager()
	filePath := filepath.Join(testDir, t.Name()+".idx")
	fileID, err := dm.OpenFileWithID(filePath, 1)
	if err != nil {
		t.Fatalf("OpenFileWithID failed: %v", err)
	}
	return NewBufferPool(capacity, dm), fileID
}

func TestBufferPoolNewPageIsPinnedAndDirty(t *testing.T) {
	bp, fileID := newTestPool(t, 4)

	pg, err := bp.NewPage(fileID, page.PageTypeBPlusNode)
	if err != nil {
		t.Fatalf("NewPage failed: %v", err)
	}
	if pg.PinCount != 1 {
		t.Errorf("expected freshly allocated page to be pinned once, got %d", pg.PinCount)
	}
	if !pg.IsDirty {
		t.Errorf("expected freshly allocated page to be dirty")
	}
}

func TestBufferPoolFetchReturnsCachedPageOnHit(t *testing.T) {
	bp, fileID := newTestPool(t, 4)

	pg, err := bp.NewPage(fileID, page.PageTypeBPlusNode)
	if err != nil {
		t.Fatalf("NewPage failed: %v", err)
	}
	if err := bp.UnpinPage(pg.ID, false); err != nil {
		t.Fatalf("UnpinPage failed: %v", err)
	}

	fetched, err := bp.FetchPage(pg.ID)
	if err != nil {
		t.Fatalf("FetchPage failed: %v", err)
	}
	if fetched != pg {
		t.Errorf("expected FetchPage to return the same cached page object")
	}
}

func TestBufferPoolEvictsUnpinnedPageWhenFull(t *testing.T) {
	bp, fileID := newTestPool(t, 2)

	first, err := bp.NewPage(fileID, page.PageTypeBPlusNode)
	if err != nil {
		t.Fatalf("NewPage failed: %v", err)
	}
	bp.UnpinPage(first.ID, false)

	second, err := bp.NewPage(fileID, page.PageTypeBPlusNode)
	if err != nil {
		t.Fatalf("NewPage failed: %v", err)
	}
	bp.UnpinPage(second.ID, false)

	third, err := bp.NewPage(fileID, page.PageTypeBPlusNode)
	if err != nil {
		t.Fatalf("NewPage failed: %v", err)
	}
	bp.UnpinPage(third.ID, false)

	if bp.Size() > bp.Capacity() {
		t.Errorf("expected pool size to stay within capacity %d, got %d", bp.Capacity(), bp.Size())
	}
	if bp.GetPage(first.ID) != nil {
		t.Errorf("expected the least recently used page to have been evicted")
	}
}

func TestBufferPoolFlushPageClearsDirtyFlag(t *testing.T) {
	bp, fileID := newTestPool(t, 4)

	pg, err := bp.NewPage(fileID, page.PageTypeBPlusNode)
	if err != nil {
		t.Fatalf("NewPage failed: %v", err)
	}

	if err := bp.FlushPage(pg.ID); err != nil {
		t.Fatalf("FlushPage failed: %v", err)
	}
	if pg.IsDirty {
		t.Errorf("expected page to be clean after flush")
	}
}

type stubWAL struct{ flushedLSN uint64 }

func (s stubWAL) GetFlushedLSN() uint64 { return s.flushedLSN }

func TestBufferPoolFlushIsGatedByWALLSN(t *testing.T) {
	bp, fileID := newTestPool(t, 4)
	bp.SetWALManager(stubWAL{flushedLSN: 0})

	pg, err := bp.NewPage(fileID, page.PageTypeBPlusNode)
	if err != nil {
		t.Fatalf("NewPage failed: %v", err)
	}
	pg.LSN = 10

	if err := bp.FlushPage(pg.ID); err == nil {
		t.Errorf("expected flush to be refused while the WAL has not covered the page's LSN")
	}
}
