package bplustree

// FindLeaf descends from nodeId to the leaf that would hold key, unpinning
// every internal node it passes through and returning the pinned leaf.
func (t *BPlusTree) FindLeaf(nodeId int64, key []byte) (*Node, error) {
	n, err := t.fetchNode(nodeId)
	if err != nil {
		return nil, err
	}

	for n.nodeType == NodeInternal {
		idx := lowerBound(n.keys, key, t.cmp)
		if idx < len(n.keys) && t.cmp(n.keys[idx], key) == 0 {
			idx++
		}
		childID := n.children[idx]
		t.releaseNode(n, false)

		n, err = t.fetchNode(childID)
		if err != nil {
			return nil, err
		}
	}

	return n, nil
}
