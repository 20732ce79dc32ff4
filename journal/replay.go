package journal

import (
	"fmt"
	"os"
	"path/filepath"
)

// Options controls non-default replay behavior.
type Options struct {
	// DumpJournal logs every entry before applying it (with ScanOnly set,
	// entries are logged and not applied).
	DumpJournal bool
	// ScanOnly parses and verifies every file without mutating any data
	// file and without deleting the journal afterward.
	ScanOnly bool
}

type fileKey struct {
	fileNo int32
	dbName string
}

// ReplayEngine applies a recovered journal's entries to a directory of data
// files, opening each data file lazily and at most once per run.
type ReplayEngine struct {
	dataDir string
	fs      FileService
	opts    Options
	open    map[fileKey]MappedRegion
	logf    func(format string, args ...any)
}

// NewReplayEngine builds an engine that maps data files under dataDir
// through fs.
func NewReplayEngine(dataDir string, fs FileService, opts Options) *ReplayEngine {
	return &ReplayEngine{
		dataDir: dataDir,
		fs:      fs,
		opts:    opts,
		open:    make(map[fileKey]MappedRegion),
		logf:    func(string, ...any) {},
	}
}

// SetLogger installs a callback used only when opts.DumpJournal is set.
func (e *ReplayEngine) SetLogger(logf func(format string, args ...any)) {
	if logf != nil {
		e.logf = logf
	}
}

func dataFileName(dbName string, fileNo int32) string {
	if fileNo == -1 {
		return dbName + ".ns"
	}
	return fmt.Sprintf("%s.%d", dbName, fileNo)
}

func (e *ReplayEngine) openFile(dbName string, fileNo int32) (MappedRegion, error) {
	key := fileKey{fileNo: fileNo, dbName: dbName}
	if r, ok := e.open[key]; ok {
		return r, nil
	}
	path := filepath.Join(e.dataDir, dataFileName(dbName, fileNo))
	r, err := e.fs.Map(path, !e.opts.ScanOnly)
	if err != nil {
		return nil, newIOError("map", path, err)
	}
	e.open[key] = r
	return r, nil
}

func (e *ReplayEngine) closeDb(dbName string) error {
	for key, r := range e.open {
		if key.dbName != dbName {
			continue
		}
		if err := r.Close(); err != nil {
			return newIOError("close", dataFileName(dbName, key.fileNo), err)
		}
		delete(e.open, key)
	}
	return nil
}

func (e *ReplayEngine) flushAllAndClose() error {
	if err := e.fs.FlushAll(); err != nil {
		return err
	}
	for key, r := range e.open {
		if err := r.Close(); err != nil {
			return newIOError("close", dataFileName(key.dbName, key.fileNo), err)
		}
		delete(e.open, key)
	}
	return nil
}

// Run replays every section of every file in journalDir against dataDir, in
// sequence-number order, then removes the journal files once every section
// has been durably applied. ScanOnly skips both the mutation and the
// cleanup, leaving the journal untouched.
func (e *ReplayEngine) Run(journalDir string) error {
	files, err := JournalDir(journalDir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return nil
	}

	for i, path := range files {
		isLast := i == len(files)-1
		if err := e.replayFile(path, isLast); err != nil {
			return err
		}
	}

	if err := e.flushAllAndClose(); err != nil {
		return err
	}

	if e.opts.ScanOnly {
		return nil
	}
	for _, path := range files {
		if err := os.Remove(path); err != nil {
			return newIOError("remove", path, err)
		}
	}
	return nil
}

func (e *ReplayEngine) replayFile(path string, isLast bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return newIOError("read", path, err)
	}

	sr, err := NewSectionReader(data, filepath.Base(path))
	if err != nil {
		return err
	}

	for !sr.AtEOF() {
		entries, err := sr.NextSection()
		if err != nil {
			if _, abrupt := err.(*AbruptEndError); abrupt && isLast {
				return nil
			}
			return err
		}
		if err := e.applyEntries(entries); err != nil {
			return err
		}
	}
	return nil
}

func (e *ReplayEngine) applyEntries(entries []ParsedEntry) error {
	for _, entry := range entries {
		if e.opts.DumpJournal {
			e.logf("%s %+v", entry.DBName, entry)
		}
		if e.opts.ScanOnly {
			continue
		}
		if err := e.applyEntry(entry); err != nil {
			return err
		}
	}
	return nil
}

func (e *ReplayEngine) applyEntry(entry ParsedEntry) error {
	switch entry.Kind {
	case EntryBasic:
		return e.applyBasic(entry.DBName, entry.Basic)
	case EntryObjAppend:
		return e.applyObjAppend(entry.DBName, entry.ObjAppend)
	case EntryFileCreated:
		return e.applyFileCreated(entry.FileCreated)
	case EntryDropDb:
		return e.closeDb(entry.DropDb.DBName)
	default:
		return fmt.Errorf("unhandled entry kind %d", entry.Kind)
	}
}

func (e *ReplayEngine) applyBasic(dbName string, b *BasicEntry) error {
	region, err := e.openFile(dbName, b.FileNo)
	if err != nil {
		return err
	}
	base := region.Base()
	end := int64(b.Ofs) + int64(len(b.Src))
	if end > region.Length() || end > int64(len(base)) {
		return newCorruptionError(fmt.Sprintf("basic write at offset %d length %d exceeds file bounds", b.Ofs, len(b.Src)), "")
	}
	copy(base[b.Ofs:], b.Src)
	return nil
}

// applyObjAppend copies a source byte range into the destination file and
// frames it as a one-element BSON object {o: <copy>}: a 3-byte element
// header immediately before the copy and a terminating NUL immediately
// after, mirroring how the source object was embedded in an oplog entry.
// The destination is always the local database: this opcode exists to
// journal an oplog write alongside a data write in a different db, so
// dbName (the section's current db context) names the source, not the
// destination.
func (e *ReplayEngine) applyObjAppend(dbName string, a *ObjAppendEntry) error {
	src, err := e.openFile(dbName, a.SrcFileNo)
	if err != nil {
		return err
	}
	dst, err := e.openFile("local", a.DstFileNo)
	if err != nil {
		return err
	}

	srcBase := src.Base()
	dstBase := dst.Base()

	if int64(a.SrcOfs)+int64(a.Len) > int64(len(srcBase)) {
		return newCorruptionError("obj-append source range exceeds file bounds", "")
	}
	if a.DstOfs < 3 || int64(a.DstOfs)+int64(a.Len)+1 > int64(len(dstBase)) {
		return newCorruptionError("obj-append destination range exceeds file bounds", "")
	}

	copy(dstBase[a.DstOfs:], srcBase[a.SrcOfs:a.SrcOfs+a.Len])

	const bsonTypeObject = 0x03
	dstBase[a.DstOfs-3] = bsonTypeObject
	dstBase[a.DstOfs-2] = 'o'
	dstBase[a.DstOfs-1] = 0
	dstBase[a.DstOfs+a.Len] = 0 // EOO terminator

	return nil
}

func (e *ReplayEngine) applyFileCreated(f *FileCreatedEntry) error {
	path := filepath.Join(e.dataDir, dataFileName(f.DBName, f.FileNo))
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return newIOError("create", path, err)
	}
	defer file.Close()
	if err := file.Truncate(f.Length); err != nil {
		return newIOError("truncate", path, err)
	}
	return nil
}
