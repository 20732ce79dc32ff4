package geo

import (
	"bytes"
	"encoding/json"
	"errors"
	"sort"
)

// memEntry is one (key, doc reference) pair in a fakeCursor's sorted table.
type memEntry struct {
	key []byte
	ref DocRef
}

// fakeCursor is an in-memory BtreeCursor over a sorted key table, used by
// tests to exercise NearSearch and RegionBrowse without a real on-disk
// index.
type fakeCursor struct {
	entries []memEntry
}

func newFakeCursor(entries []memEntry) *fakeCursor {
	sorted := append([]memEntry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool { return bytes.Compare(sorted[i].key, sorted[j].key) < 0 })
	return &fakeCursor{entries: sorted}
}

func (c *fakeCursor) Locate(key []byte, dir int) (Position, bool, error) {
	idx := sort.Search(len(c.entries), func(i int) bool { return bytes.Compare(c.entries[i].key, key) >= 0 })
	found := idx < len(c.entries) && bytes.Equal(c.entries[idx].key, key)

	if dir > 0 {
		if idx >= len(c.entries) {
			return Position{}, false, errors.New("fakeCursor: no key >= target")
		}
		return Position{Slot: idx}, found, nil
	}

	if found {
		return Position{Slot: idx}, true, nil
	}
	j := idx - 1
	if j < 0 {
		return Position{}, false, errors.New("fakeCursor: no key <= target")
	}
	return Position{Slot: j}, false, nil
}

func (c *fakeCursor) Advance(pos Position, dir int) (Position, bool, error) {
	next := pos.Slot + dir
	if next < 0 || next >= len(c.entries) {
		return Position{}, false, nil
	}
	return Position{Slot: next}, true, nil
}

func (c *fakeCursor) KeyAt(pos Position) ([]byte, DocRef, error) {
	if pos.Slot < 0 || pos.Slot >= len(c.entries) {
		return nil, DocRef{}, errors.New("fakeCursor: position out of range")
	}
	e := c.entries[pos.Slot]
	return e.key, e.ref, nil
}

// fakeDocStore is an in-memory DocumentStore keyed by DocRef.
type fakeDocStore struct {
	docs map[string][]byte
}

func newFakeDocStore() *fakeDocStore {
	return &fakeDocStore{docs: make(map[string][]byte)}
}

func (s *fakeDocStore) put(ref DocRef, doc map[string]interface{}) {
	raw, err := json.Marshal(doc)
	if err != nil {
		panic(err)
	}
	s.docs[ref.String()] = raw
}

func (s *fakeDocStore) Load(ref DocRef) ([]byte, error) {
	raw, ok := s.docs[ref.String()]
	if !ok {
		return nil, errors.New("fakeDocStore: no such document")
	}
	return raw, nil
}

// acceptAllMatcher treats every candidate as matching the residual
// predicate, for tests that only care about the geo portion of a query.
type acceptAllMatcher struct{}

func (acceptAllMatcher) Match(key []byte, ref DocRef) (bool, bool, error) { return true, false, nil }
