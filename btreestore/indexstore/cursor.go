package indexstore

import (
	"fmt"

	"github.com/google/uuid"

	"GeoDB/btreestore/bplustree"
	"GeoDB/geo"
)

// Cursor adapts a *bplustree.BPlusTree to geo.BtreeCursor. On-disk keys are
// the geohash-prefixed index key followed by the 16-byte document reference
// that disambiguates documents sharing a cell, so every stored key is
// unique even though the geo key alone is not.
type Cursor struct {
	tree *bplustree.BPlusTree
}

var _ geo.BtreeCursor = (*Cursor)(nil)

func NewCursor(tree *bplustree.BPlusTree) *Cursor {
	return &Cursor{tree: tree}
}

// EncodeKey appends ref's bytes to raw to form the tree's on-disk key.
func EncodeKey(raw []byte, ref geo.DocRef) []byte {
	idBytes, _ := ref.ID.MarshalBinary()
	out := make([]byte, 0, len(raw)+len(idBytes))
	out = append(out, raw...)
	out = append(out, idBytes...)
	return out
}

func decodeKey(stored []byte) ([]byte, geo.DocRef, error) {
	if len(stored) < 16 {
		return nil, geo.DocRef{}, fmt.Errorf("stored key too short to hold a document reference: %d bytes", len(stored))
	}
	split := len(stored) - 16
	id, err := uuid.FromBytes(stored[split:])
	if err != nil {
		return nil, geo.DocRef{}, fmt.Errorf("malformed document reference in key: %w", err)
	}
	return stored[:split], geo.DocRef{ID: id}, nil
}

// Insert files ref under raw's geo key, disambiguated by ref itself.
func (c *Cursor) Insert(raw []byte, ref geo.DocRef, value []byte) error {
	return c.tree.Insertion(EncodeKey(raw, ref), value)
}

func (c *Cursor) Delete(raw []byte, ref geo.DocRef) error {
	return c.tree.Delete(EncodeKey(raw, ref))
}

func (c *Cursor) Locate(key []byte, dir int) (geo.Position, bool, error) {
	leafID, slot, ok := c.tree.LocateLeaf(key, dir)
	if !ok {
		return geo.Position{}, false, nil
	}
	return geo.Position{Bucket: leafID, Slot: slot}, true, nil
}

func (c *Cursor) Advance(pos geo.Position, dir int) (geo.Position, bool, error) {
	leafID, slot, ok := c.tree.AdvanceLeaf(pos.Bucket, pos.Slot, dir)
	if !ok {
		return geo.Position{}, false, nil
	}
	return geo.Position{Bucket: leafID, Slot: slot}, true, nil
}

func (c *Cursor) KeyAt(pos geo.Position) ([]byte, geo.DocRef, error) {
	stored, _, ok := c.tree.KeyValueAt(pos.Bucket, pos.Slot)
	if !ok {
		return nil, geo.DocRef{}, fmt.Errorf("position (%d, %d) not found", pos.Bucket, pos.Slot)
	}
	return decodeKey(stored)
}
