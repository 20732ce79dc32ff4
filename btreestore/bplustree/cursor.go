package bplustree

// LocateLeaf finds the leaf/slot nearest target in the given direction
// (dir=+1: first key >= target, dir=-1: last key <= target) and returns it
// as a (leafPageID, slot) pair that can be round-tripped through AdvanceLeaf
// and KeyValueAt. This is the low-level primitive the cursor adapter builds
// geo.BtreeCursor on top of.
func (t *BPlusTree) LocateLeaf(target []byte, dir int) (leafID int64, slot int, ok bool) {
	var it *Iterator
	if dir >= 0 {
		it = t.SeekGE(target)
	} else {
		it = t.SeekLE(target)
	}
	defer it.Close()

	if !it.valid {
		return 0, 0, false
	}
	return it.leaf.pageID, it.index, true
}

// AdvanceLeaf steps one entry from (leafID, slot) in the given direction.
func (t *BPlusTree) AdvanceLeaf(leafID int64, slot int, dir int) (nextLeafID int64, nextSlot int, ok bool) {
	t.mu.RLock()
	leaf, err := t.fetchNode(leafID)
	t.mu.RUnlock()
	if err != nil {
		return 0, 0, false
	}
	it := &Iterator{tree: t, leaf: leaf, index: slot, valid: true}

	var moved bool
	if dir >= 0 {
		moved = it.Next()
	} else {
		moved = it.Prev()
	}
	if !moved {
		return 0, 0, false
	}
	defer it.Close()
	return it.leaf.pageID, it.index, true
}

// KeyValueAt returns the key and value stored at (leafID, slot).
func (t *BPlusTree) KeyValueAt(leafID int64, slot int) (key, value []byte, ok bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	leaf, err := t.fetchNode(leafID)
	if err != nil {
		return nil, nil, false
	}
	defer t.releaseNode(leaf, false)

	if slot < 0 || slot >= len(leaf.keys) {
		return nil, nil, false
	}
	return leaf.keys[slot], leaf.values[slot], true
}
