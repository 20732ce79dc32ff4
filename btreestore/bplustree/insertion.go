package bplustree

import "fmt"

// Insertion inserts or updates key/value. Geo index keys are
// geohash-cell-plus-document-reference composites, so true duplicates
// never occur in practice, but an exact repeat key updates the existing
// entry rather than appending a second one.
func (t *BPlusTree) Insertion(key, value []byte) error {
	if len(key) > MaxKeyLen {
		return fmt.Errorf("key length %d exceeds max %d", len(key), MaxKeyLen)
	}
	if len(value) > MaxValLen {
		return fmt.Errorf("value length %d exceeds max %d", len(value), MaxValLen)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.root == -1 {
		root, err := t.newNode(NodeLeaf)
		if err != nil {
			return err
		}
		root.keys = [][]byte{key}
		root.values = [][]byte{value}
		if err := t.writeNode(root); err != nil {
			return err
		}
		t.root = root.pageID
		return t.saveRoot()
	}

	leaf, err := t.FindLeaf(t.root, key)
	if err != nil {
		return err
	}

	if idx := binarySearch(leaf.keys, key, t.cmp); idx >= 0 {
		leaf.values[idx] = value
		err = t.writeNode(leaf)
		t.releaseNode(leaf, false)
		return err
	}

	idx := lowerBound(leaf.keys, key, t.cmp)
	leaf.keys = insert(leaf.keys, idx, key)
	leaf.values = insert(leaf.values, idx, value)

	if err := t.writeNode(leaf); err != nil {
		t.releaseNode(leaf, false)
		return err
	}

	if len(leaf.keys) > MaxKeys {
		err = t.SplitLeaf(leaf)
		t.releaseNode(leaf, false)
		return err
	}

	t.releaseNode(leaf, false)
	return nil
}
