package journal

import (
	"crypto/md5"
	"encoding/binary"
)

// sectionBuilder assembles one valid [header, entries, footer, padding]
// journal file byte-for-byte, the way a real journal writer would, so tests
// can drive SectionReader/ReplayEngine without a live WAL writer.
type sectionBuilder struct {
	buf []byte
}

func newJournalFile() *sectionBuilder {
	b := &sectionBuilder{}
	b.buf = append(b.buf, fileMagic[:]...)
	b.buf = appendUint32(b.buf, fileVersion)
	return b
}

func appendUint32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendInt32(buf []byte, v int32) []byte {
	return appendUint32(buf, uint32(v))
}

func appendUint64(buf []byte, v uint64) []byte {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendInt64(buf []byte, v int64) []byte {
	return appendUint64(buf, uint64(v))
}

func appendCString(buf []byte, s string) []byte {
	buf = append(buf, []byte(s)...)
	return append(buf, 0)
}

type entryWriter struct {
	buf []byte
}

func (w *entryWriter) basic(fileNo int32, ofs uint32, src []byte) *entryWriter {
	w.buf = appendUint32(w.buf, uint32(len(src)))
	w.buf = appendInt32(w.buf, fileNo)
	w.buf = appendUint32(w.buf, ofs)
	w.buf = append(w.buf, src...)
	return w
}

func (w *entryWriter) dbContext(name string) *entryWriter {
	w.buf = appendUint32(w.buf, opCodeDbContext)
	w.buf = appendCString(w.buf, name)
	return w
}

func (w *entryWriter) fileCreated(name string, fileNo int32, length int64) *entryWriter {
	w.buf = appendUint32(w.buf, opCodeFileCreated)
	w.buf = appendCString(w.buf, name)
	w.buf = appendInt32(w.buf, fileNo)
	w.buf = appendInt64(w.buf, length)
	return w
}

func (w *entryWriter) dropDb(name string) *entryWriter {
	w.buf = appendUint32(w.buf, opCodeDropDb)
	w.buf = appendCString(w.buf, name)
	return w
}

func (w *entryWriter) objAppend(srcFileNo int32, srcOfs uint32, dstFileNo int32, dstOfs uint32, length uint32) *entryWriter {
	w.buf = appendUint32(w.buf, opCodeObjAppend)
	w.buf = appendInt32(w.buf, srcFileNo)
	w.buf = appendUint32(w.buf, srcOfs)
	w.buf = appendInt32(w.buf, dstFileNo)
	w.buf = appendUint32(w.buf, dstOfs)
	w.buf = appendUint32(w.buf, length)
	return w
}

// section appends one group-commit section built from w's entries, with a
// correct footer digest and alignment padding.
func (b *sectionBuilder) section(seq uint64, w *entryWriter) *sectionBuilder {
	sectionStart := len(b.buf)
	b.buf = appendUint64(b.buf, seq)
	b.buf = append(b.buf, w.buf...)

	footerStart := len(b.buf)
	sum := md5.Sum(b.buf[sectionStart:footerStart])
	b.buf = appendUint32(b.buf, opCodeFooter)
	b.buf = append(b.buf, sum[:]...)

	rem := len(b.buf) % Alignment
	if rem != 0 {
		b.buf = append(b.buf, make([]byte, Alignment-rem)...)
	}
	return b
}

func (b *sectionBuilder) truncateLastBytes(n int) *sectionBuilder {
	b.buf = b.buf[:len(b.buf)-n]
	return b
}

func (b *sectionBuilder) bytes() []byte { return b.buf }
