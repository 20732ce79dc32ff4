package journal

import (
	"bytes"
	"crypto/md5"
	"fmt"
)

const (
	// MaxNsLen bounds a DbContext/FileCreated/DropDb database name, the same
	// way a namespace string is bounded.
	MaxNsLen = 128
	// Alignment is the page multiple every section starts and ends on.
	Alignment = 8192

	sectionHeaderSize = 8
	footerSize        = 4 + 16 // opcode sentinel + 128-bit digest
)

var fileMagic = [8]byte{'G', 'E', 'O', 'J', 'R', 'N', 'L', 0}

const fileVersion uint32 = 1

// SectionHeader is the fixed-size record at the start of every group-commit
// section. SeqNumber lets a reader sanity-check section ordering; it is not
// required for replay correctness since sections are applied strictly in
// file order.
type SectionHeader struct {
	SeqNumber uint64
}

// SectionReader parses one journal file's sections in order: file header
// once, then repeated [SectionHeader, entries..., Footer] records, each
// digest-checked and padded out to Alignment.
type SectionReader struct {
	r        *bufReader
	fileName string
}

// NewSectionReader validates the file header (magic + version) and
// positions the reader at the first section.
func NewSectionReader(data []byte, fileName string) (*SectionReader, error) {
	r := newBufReader(data)

	raw, err := r.readBytes(8)
	if err != nil {
		return nil, newCorruptionError("truncated journal file header", fileName)
	}
	var magic [8]byte
	copy(magic[:], raw)
	if magic != fileMagic {
		return nil, newCorruptionError("bad journal file magic", fileName)
	}

	version, err := r.readUint32()
	if err != nil {
		return nil, newCorruptionError("truncated journal file header", fileName)
	}
	if version != fileVersion {
		return nil, newCorruptionError(fmt.Sprintf("unsupported journal version %d", version), fileName)
	}

	return &SectionReader{r: r, fileName: fileName}, nil
}

// AtEOF reports whether the file has been fully consumed, valid to check
// only between sections.
func (sr *SectionReader) AtEOF() bool {
	return sr.r.eof()
}

// NextSection reads one section's header and entries, verifies its footer
// digest, and advances past the section's trailing alignment padding. The
// returned entries are one group-commit batch, to be applied atomically.
func (sr *SectionReader) NextSection() ([]ParsedEntry, error) {
	sectionStart := sr.r.pos

	if err := sr.r.skip(sectionHeaderSize); err != nil {
		return nil, newAbruptEndError(sr.fileName)
	}

	it := newEntryIterator(sr.r)
	var entries []ParsedEntry
	for {
		entry, ok, err := it.Next()
		if err != nil {
			if isUnexpectedEOF(err) {
				return nil, newAbruptEndError(sr.fileName)
			}
			if ce, isCorrupt := err.(*CorruptionError); isCorrupt {
				ce.File = sr.fileName
				return nil, ce
			}
			return nil, err
		}
		if !ok {
			break
		}
		entries = append(entries, entry)
	}

	footerStart := sr.r.pos
	if err := sr.r.skip(4); err != nil { // footer opcode sentinel, already verified by EntryIterator
		return nil, newAbruptEndError(sr.fileName)
	}
	digest, err := sr.r.readBytes(16)
	if err != nil {
		return nil, newAbruptEndError(sr.fileName)
	}

	sum := md5.Sum(sr.r.data[sectionStart:footerStart])
	if !bytes.Equal(sum[:], digest) {
		return nil, newCorruptionError("footer checksum mismatch", sr.fileName)
	}

	if err := sr.r.align(Alignment); err != nil {
		// No trailing padding left: only acceptable if this was genuinely
		// the last byte of the file, which the caller checks via AtEOF.
		sr.r.pos = len(sr.r.data)
	}

	return entries, nil
}
