package diskmanager

import (
	"os"
	"path/filepath"
	"testing"

	"GeoDB/btreestore/page"
)

func TestDiskManagerAllocateWriteReadRoundTrip(t *testing.T) {
	testDir := filepath.Join(os.TempDir(), "geodb_diskmanager_test")
	os.MkdirAll(testDir, 0755)
	defer os.RemoveAll(testDir)

	dm := NewDiskManager()
	filePath := filepath.Join(testDir, "field.idx")

	fileID, err := dm.OpenFileWithID(filePath, 7)
	if err != nil {
		t.Fatalf("OpenFileWithID failed: %v", err)
	}
	if fileID != 7 {
		t.Errorf("expected caller-assigned file id 7, got %d", fileID)
	}

	pageID, err := dm.AllocatePage(fileID, page.PageTypeBPlusNode)
	if err != nil {
		t.Fatalf("AllocatePage failed: %v", err)
	}

	pg := NewPage(pageID, fileID, page.PageTypeBPlusNode)
	// byte 8 carries the page-type stamp WritePage writes, so the payload
	// starts after it.
	copy(pg.Data[9:], []byte("hello geo index"))

	if err := dm.WritePage(pg); err != nil {
		t.Fatalf("WritePage failed: %v", err)
	}

	readBack, err := dm.ReadPage(pageID)
	if err != nil {
		t.Fatalf("ReadPage failed: %v", err)
	}
	if readBack.PageType != page.PageTypeBPlusNode {
		t.Errorf("expected page type to round-trip, got %v", readBack.PageType)
	}
	if string(readBack.Data[9:24]) != "hello geo index" {
		t.Errorf("unexpected page contents: %q", readBack.Data[9:24])
	}
}

func TestDiskManagerOpenFileWithIDIsIdempotentByPath(t *testing.T) {
	testDir := filepath.Join(os.TempDir(), "geodb_diskmanager_test2")
	os.MkdirAll(testDir, 0755)
	defer os.RemoveAll(testDir)

	dm := NewDiskManager()
	filePath := filepath.Join(testDir, "loc.idx")

	id1, err := dm.OpenFileWithID(filePath, 3)
	if err != nil {
		t.Fatalf("first open failed: %v", err)
	}
	id2, err := dm.OpenFileWithID(filePath, 99)
	if err != nil {
		t.Fatalf("second open failed: %v", err)
	}
	if id1 != id2 {
		t.Errorf("expected reopening the same path to return the same file id, got %d and %d", id1, id2)
	}
}

func TestDiskManagerRootIDPersistsAcrossReopen(t *testing.T) {
	testDir := filepath.Join(os.TempDir(), "geodb_diskmanager_test3")
	os.MkdirAll(testDir, 0755)
	defer os.RemoveAll(testDir)

	filePath := filepath.Join(testDir, "root.idx")

	dm := NewDiskManager()
	fileID, err := dm.OpenFileWithID(filePath, 1)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if err := dm.WriteRootID(fileID, 42); err != nil {
		t.Fatalf("WriteRootID failed: %v", err)
	}
	if err := dm.Sync(); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	got, err := dm.ReadRootID(fileID)
	if err != nil {
		t.Fatalf("ReadRootID failed: %v", err)
	}
	if got != 42 {
		t.Errorf("expected root id 42, got %d", got)
	}
}

func TestDiskManagerGlobalPageIDEncodesFileID(t *testing.T) {
	dm := NewDiskManager()
	global, err := dm.GetGlobalPageID(5, 3)
	if err != nil {
		t.Fatalf("GetGlobalPageID failed: %v", err)
	}
	local, err := dm.GetLocalPageID(5, global)
	if err != nil {
		t.Fatalf("GetLocalPageID failed: %v", err)
	}
	if local != 3 {
		t.Errorf("expected local page id 3, got %d", local)
	}
}
