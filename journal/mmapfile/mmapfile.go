// Package mmapfile is the default journal.FileService: it maps data files
// with github.com/edsrzf/mmap-go instead of copying them through read/write
// syscalls, so ReplayEngine's applyBasic/applyObjAppend write straight into
// the page cache.
package mmapfile

import (
	"os"
	"sync"

	"github.com/edsrzf/mmap-go"

	"GeoDB/journal"
)

// Region is one mapped data file.
type Region struct {
	f *os.File
	m mmap.MMap
}

var _ journal.MappedRegion = (*Region)(nil)

func (r *Region) Base() []byte   { return r.m }
func (r *Region) Length() int64  { return int64(len(r.m)) }
func (r *Region) Flush() error   { return r.m.Flush() }

func (r *Region) Close() error {
	if err := r.m.Unmap(); err != nil {
		r.f.Close()
		return err
	}
	return r.f.Close()
}

// Service maps data files on demand and tracks every region it has opened
// so FlushAll can sync them all before replay deletes the journal.
type Service struct {
	mu      sync.Mutex
	regions []*Region
}

var _ journal.FileService = (*Service)(nil)

func New() *Service {
	return &Service{}
}

func (s *Service) Map(path string, writable bool) (journal.MappedRegion, error) {
	flag := os.O_RDONLY
	mode := mmap.RDONLY
	if writable {
		flag = os.O_RDWR
		mode = mmap.RDWR
	}

	f, err := os.OpenFile(path, flag, 0644)
	if err != nil {
		return nil, err
	}

	m, err := mmap.Map(f, mode, 0)
	if err != nil {
		f.Close()
		return nil, err
	}

	r := &Region{f: f, m: m}
	s.mu.Lock()
	s.regions = append(s.regions, r)
	s.mu.Unlock()
	return r, nil
}

// FlushAll syncs every region mapped so far back to disk.
func (s *Service) FlushAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.regions {
		if err := r.m.Flush(); err != nil {
			return err
		}
	}
	return nil
}
