package bplustree

import "fmt"

func (t *BPlusTree) insertIntoParent(parentId, leftId int64, sepKey []byte, rightId int64) error {
	parent, err := t.fetchNode(parentId)
	if err != nil {
		return err
	}

	pos := -1
	for i, c := range parent.children {
		if c == leftId {
			pos = i
			break
		}
	}
	if pos < 0 {
		t.releaseNode(parent, false)
		return fmt.Errorf("left child %d not found under parent %d", leftId, parentId)
	}

	parent.keys = insert(parent.keys, pos, sepKey)
	parent.children = insert(parent.children, pos+1, rightId)

	rightChild, err := t.fetchNode(rightId)
	if err != nil {
		t.releaseNode(parent, false)
		return err
	}
	rightChild.parent = parentId
	if err := t.writeNode(rightChild); err != nil {
		t.releaseNode(rightChild, false)
		t.releaseNode(parent, false)
		return err
	}
	t.releaseNode(rightChild, false)

	if err := t.writeNode(parent); err != nil {
		t.releaseNode(parent, false)
		return err
	}

	if len(parent.keys) > MaxKeys {
		err = t.splitInternal(parent)
		t.releaseNode(parent, false)
		return err
	}

	t.releaseNode(parent, false)
	return nil
}
