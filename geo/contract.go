package geo

import "github.com/google/uuid"

// DocRef identifies a document stored by the host. The index never
// interprets it beyond equality and ordering for dedup bookkeeping — it is
// handed back verbatim to DocumentStore.Load and ResidualMatcher.Match.
type DocRef struct {
	ID uuid.UUID
}

func (r DocRef) String() string {
	return r.ID.String()
}

// NewDocRef mints a fresh reference, used by test fixtures and by the
// in-process default cursor to stand in for a host-assigned document id.
func NewDocRef() DocRef {
	return DocRef{ID: uuid.New()}
}

// Position is an opaque cursor position returned by BtreeCursor. Callers
// must not construct or compare it except by round-tripping values already
// handed to them by the same cursor.
type Position struct {
	Bucket int64
	Slot   int
}

// KeyNode is one (index key, document reference) pair visited while
// walking the index, decoded enough to recover the GeoHash it was filed
// under.
type KeyNode struct {
	Hash GeoHash
	Raw  []byte
	Ref  DocRef
}

// BtreeCursor is the ordered key-value store the index is built over. The
// host owns storage and concurrency; the index only ever locates a key and
// walks forward (dir=+1) or backward (dir=-1) from it.
type BtreeCursor interface {
	Locate(key []byte, dir int) (pos Position, found bool, err error)
	Advance(pos Position, dir int) (next Position, ok bool, err error)
	KeyAt(pos Position) ([]byte, DocRef, error)
}

// DocumentStore loads the full document a DocRef points to, used when a
// query has a residual (non-geo) predicate that can't be answered from the
// index key alone.
type DocumentStore interface {
	Load(ref DocRef) ([]byte, error)
}

// ResidualMatcher evaluates the non-geo portion of a query against a
// document. loadedObject reports whether it had to call DocumentStore to
// decide, so callers can distinguish "matched from the key alone" from
// "matched after a document fetch" for accounting purposes.
type ResidualMatcher interface {
	Match(key []byte, ref DocRef) (matched bool, loadedObject bool, err error)
}
