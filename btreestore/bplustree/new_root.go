package bplustree

func (t *BPlusTree) createNewRoot(leftPageID int64, promoteKey []byte, rightPageID int64) error {
	root, err := t.newNode(NodeInternal)
	if err != nil {
		return err
	}
	root.keys = [][]byte{promoteKey}
	root.children = []int64{leftPageID, rightPageID}

	if err := t.writeNode(root); err != nil {
		return err
	}

	for _, childID := range []int64{leftPageID, rightPageID} {
		child, err := t.fetchNode(childID)
		if err != nil {
			return err
		}
		child.parent = root.pageID
		if err := t.writeNode(child); err != nil {
			t.releaseNode(child, false)
			return err
		}
		t.releaseNode(child, false)
	}

	t.root = root.pageID
	return t.saveRoot()
}
