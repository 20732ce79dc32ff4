package journal

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

const journalFilePrefix = "j._"

// JournalDir lists a directory's journal files in replay order. A gap or a
// duplicate sequence number means the directory was interfered with between
// crash and recovery and is reported as corruption rather than silently
// reordered around.
func JournalDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, newIOError("readdir", dir, err)
	}

	type numbered struct {
		seq  int64
		path string
	}
	var files []numbered
	seen := make(map[int64]bool)

	for _, de := range entries {
		if de.IsDir() || !strings.HasPrefix(de.Name(), journalFilePrefix) {
			continue
		}
		suffix := strings.TrimPrefix(de.Name(), journalFilePrefix)
		seq, err := strconv.ParseInt(suffix, 10, 64)
		if err != nil {
			return nil, newCorruptionError("unexpected file in journal directory: "+de.Name(), dir)
		}
		if seen[seq] {
			return nil, newCorruptionError("duplicate journal sequence number "+suffix, dir)
		}
		seen[seq] = true
		files = append(files, numbered{seq: seq, path: filepath.Join(dir, de.Name())})
	}

	if len(files) == 0 {
		return nil, nil
	}

	sort.Slice(files, func(i, j int) bool { return files[i].seq < files[j].seq })

	for i, f := range files {
		if f.seq != files[0].seq+int64(i) {
			return nil, newCorruptionError("journal sequence has a gap before "+strconv.FormatInt(f.seq, 10), dir)
		}
	}

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.path
	}
	return paths, nil
}
