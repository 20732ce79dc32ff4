package journal

import "fmt"

// EntryKind tags which union member a ParsedEntry carries.
type EntryKind int

const (
	EntryBasic EntryKind = iota
	EntryObjAppend
	EntryFileCreated
	EntryDropDb
)

// Opcodes live at the top of the u32 range so any smaller value read where
// an opcode is expected is instead a Basic entry's payload length.
const (
	opCodeFooter      uint32 = 0xFFFFFFFF
	opCodeFileCreated uint32 = 0xFFFFFFFE
	opCodeDropDb      uint32 = 0xFFFFFFFD
	opCodeDbContext   uint32 = 0xFFFFFFFC
	opCodeObjAppend   uint32 = 0xFFFFFFFB
	minOpCode         uint32 = opCodeObjAppend
)

// localDbFlag is set on a Basic entry's fileNo field to say "this write
// targets the local database regardless of the section's current DbContext."
const localDbFlag int32 = 1 << 30

// BasicEntry is a single in-place write: copy Src into openFile(dbName,
// FileNo) at offset Ofs.
type BasicEntry struct {
	FileNo int32
	Ofs    uint32
	Len    uint32
	Src    []byte
	Local  bool
}

// ObjAppendEntry copies a byte range from one mapped file into another and
// frames it as an oplog-style appended object.
type ObjAppendEntry struct {
	SrcFileNo int32
	SrcOfs    uint32
	DstFileNo int32
	DstOfs    uint32
	Len       uint32
}

// FileCreatedEntry records that a data file was created with the given
// preallocated length, before any Basic writes into it.
type FileCreatedEntry struct {
	DBName string
	FileNo int32
	Length int64
}

// DropDbEntry records that a database's files should be closed and
// abandoned during replay.
type DropDbEntry struct {
	DBName string
}

// ParsedEntry is what EntryIterator.Next emits: a fully resolved entry with
// its target database name already attached.
type ParsedEntry struct {
	Kind        EntryKind
	DBName      string
	Basic       *BasicEntry
	ObjAppend   *ObjAppendEntry
	FileCreated *FileCreatedEntry
	DropDb      *DropDbEntry
}

// EntryIterator streams entries out of one section's byte range, resolving
// DbContext into the database name carried on every subsequent Basic or
// ObjAppend entry. currentDbName is reset by the caller at each section
// boundary by constructing a fresh iterator.
type EntryIterator struct {
	r             *bufReader
	currentDbName string
}

func newEntryIterator(r *bufReader) *EntryIterator {
	return &EntryIterator{r: r}
}

// Next returns the next entry. ok is false exactly at a clean section end
// (the Footer opcode was seen and the reader was rewound to it, ready for
// SectionReader to compute the digest); an error means corruption or an
// abrupt end.
func (it *EntryIterator) Next() (ParsedEntry, bool, error) {
	for {
		lenOrOpCode, err := it.r.readUint32()
		if err != nil {
			return ParsedEntry{}, false, err
		}

		switch lenOrOpCode {
		case opCodeFooter:
			if err := it.r.rewind(4); err != nil {
				return ParsedEntry{}, false, err
			}
			return ParsedEntry{}, false, nil

		case opCodeFileCreated:
			dbName, err := it.r.readCString(MaxNsLen)
			if err != nil {
				return ParsedEntry{}, false, newCorruptionError("unterminated FileCreated db name", "")
			}
			fileNo, err := it.r.readInt32()
			if err != nil {
				return ParsedEntry{}, false, err
			}
			length, err := it.r.readInt64()
			if err != nil {
				return ParsedEntry{}, false, err
			}
			return ParsedEntry{
				Kind:        EntryFileCreated,
				DBName:      dbName,
				FileCreated: &FileCreatedEntry{DBName: dbName, FileNo: fileNo, Length: length},
			}, true, nil

		case opCodeDropDb:
			dbName, err := it.r.readCString(MaxNsLen)
			if err != nil {
				return ParsedEntry{}, false, newCorruptionError("unterminated DropDb db name", "")
			}
			return ParsedEntry{Kind: EntryDropDb, DBName: dbName, DropDb: &DropDbEntry{DBName: dbName}}, true, nil

		case opCodeDbContext:
			dbName, err := it.r.readCString(MaxNsLen)
			if err != nil {
				return ParsedEntry{}, false, newCorruptionError("unterminated DbContext", "")
			}
			it.currentDbName = dbName
			continue // a Basic or ObjAppend entry always follows a DbContext

		case opCodeObjAppend:
			srcFileNo, err := it.r.readInt32()
			if err != nil {
				return ParsedEntry{}, false, err
			}
			srcOfs, err := it.r.readUint32()
			if err != nil {
				return ParsedEntry{}, false, err
			}
			dstFileNo, err := it.r.readInt32()
			if err != nil {
				return ParsedEntry{}, false, err
			}
			dstOfs, err := it.r.readUint32()
			if err != nil {
				return ParsedEntry{}, false, err
			}
			length, err := it.r.readUint32()
			if err != nil {
				return ParsedEntry{}, false, err
			}
			e := &ObjAppendEntry{SrcFileNo: srcFileNo, SrcOfs: srcOfs, DstFileNo: dstFileNo, DstOfs: dstOfs, Len: length}
			return ParsedEntry{Kind: EntryObjAppend, DBName: it.currentDbName, ObjAppend: e}, true, nil

		default:
			if lenOrOpCode >= minOpCode {
				return ParsedEntry{}, false, newCorruptionError(fmt.Sprintf("unknown journal opcode %#x", lenOrOpCode), "")
			}

			fileNo, err := it.r.readInt32()
			if err != nil {
				return ParsedEntry{}, false, err
			}
			ofs, err := it.r.readUint32()
			if err != nil {
				return ParsedEntry{}, false, err
			}
			src, err := it.r.readBytes(int(lenOrOpCode))
			if err != nil {
				return ParsedEntry{}, false, err
			}

			local := fileNo&localDbFlag != 0
			dbName := it.currentDbName
			if local {
				dbName = "local"
				fileNo &^= localDbFlag
			}
			return ParsedEntry{
				Kind:   EntryBasic,
				DBName: dbName,
				Basic:  &BasicEntry{FileNo: fileNo, Ofs: ofs, Len: lenOrOpCode, Src: src, Local: local},
			}, true, nil
		}
	}
}
