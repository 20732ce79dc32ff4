package bplustree

import (
	"fmt"

	"GeoDB/btreestore/page"
)

func (t *BPlusTree) newNode(nodeType NodeType) (*Node, error) {
	pg, err := t.bufferPool.NewPage(t.fileID, page.PageTypeBPlusNode)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate node page: %w", err)
	}

	n := &Node{
		pageID:   pg.ID,
		nodeType: nodeType,
		keys:     [][]byte{},
		children: []int64{},
		values:   [][]byte{},
		next:     -1,
		parent:   -1,
		isDirty:  true,
		pincnt:   1,
	}

	if err := SerializeNode(n, pg.Data); err != nil {
		return nil, fmt.Errorf("failed to serialize new node: %w", err)
	}
	return n, nil
}

func (t *BPlusTree) writeNode(n *Node) error {
	pg, err := t.bufferPool.FetchPage(n.pageID)
	if err != nil {
		return fmt.Errorf("failed to fetch page for write: %w", err)
	}
	if err := SerializeNode(n, pg.Data); err != nil {
		return fmt.Errorf("failed to serialize node: %w", err)
	}
	if err := t.bufferPool.MarkDirty(n.pageID); err != nil {
		return fmt.Errorf("failed to mark dirty: %w", err)
	}
	return t.bufferPool.UnpinPage(n.pageID, true)
}

func (t *BPlusTree) fetchNode(pageID int64) (*Node, error) {
	pg, err := t.bufferPool.FetchPage(pageID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page %d: %w", pageID, err)
	}
	n, err := DeserializeNode(pg.Data, t.fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize node %d: %w", pageID, err)
	}
	n.pageID = pageID
	n.pincnt = 1
	return n, nil
}

func (t *BPlusTree) releaseNode(n *Node, dirty bool) {
	t.bufferPool.UnpinPage(n.pageID, dirty)
	n.pincnt = 0
}
