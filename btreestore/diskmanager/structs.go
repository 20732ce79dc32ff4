package diskmanager

import (
	"os"
	"sync"
)

type PageKey struct {
	FileID   uint32
	LocalNum int64
}

// FileDescriptor represents an open file managed by the disk manager.
type FileDescriptor struct {
	FileID     uint32
	FilePath   string
	File       *os.File
	NextPageID int64 // next available page ID within this file
	mu         sync.RWMutex
}

// DiskManager manages all disk I/O operations and file handles for the
// index store's underlying .idx files.
type DiskManager struct {
	files      map[uint32]*FileDescriptor // fileID -> file descriptor
	nextFileID uint32

	globalPageMap map[int64]uint32  // globalPageID -> fileID
	localToGlobal map[PageKey]int64 // (fileID, localNum) -> globalPageID
	mu            sync.RWMutex
}
