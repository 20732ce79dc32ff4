package bplustree

import (
	"encoding/binary"
	"fmt"

	"GeoDB/btreestore/page"
)

/*
On-disk node layout (page.PageSize bytes):

	[0:8)   localPageID int64
	[8)     reserved (page-type stamp, owned by the disk manager)
	[9)     isLeaf byte
	[10:12) numKeys int16
	[12:20) localParent int64
	[20:28) localNext int64
	[28:35) reserved

	then numKeys entries of: uint16 keyLen | key bytes

	then, for a leaf: numKeys entries of uint16 valLen | val bytes
	     for internal: numKeys+1 entries of int64 local child page ID

All page IDs on disk are LOCAL (masked to the low 32 bits); global IDs are
reconstructed on load by combining with the file ID.
*/

const nodeHeaderSize = 35

func SerializeNode(node *Node, data []byte) error {
	if len(data) < page.PageSize {
		return fmt.Errorf("buffer too small for node page")
	}
	for i := range data {
		data[i] = 0
	}

	localID := node.pageID & 0xFFFFFFFF
	binary.LittleEndian.PutUint64(data[0:8], uint64(localID))

	if node.nodeType == NodeLeaf {
		data[9] = 1
	} else {
		data[9] = 0
	}
	binary.LittleEndian.PutUint16(data[10:12], uint16(len(node.keys)))
	binary.LittleEndian.PutUint64(data[12:20], uint64(node.parent&0xFFFFFFFF))
	binary.LittleEndian.PutUint64(data[20:28], uint64(node.next&0xFFFFFFFF))

	offset := nodeHeaderSize
	for _, k := range node.keys {
		if len(k) > MaxKeyLen {
			return fmt.Errorf("key length %d exceeds max %d", len(k), MaxKeyLen)
		}
		if offset+2+len(k) > len(data) {
			return fmt.Errorf("node page overflow while writing keys")
		}
		binary.LittleEndian.PutUint16(data[offset:offset+2], uint16(len(k)))
		offset += 2
		copy(data[offset:], k)
		offset += len(k)
	}

	if node.nodeType == NodeLeaf {
		for _, v := range node.values {
			if len(v) > MaxValLen {
				return fmt.Errorf("value length %d exceeds max %d", len(v), MaxValLen)
			}
			if offset+2+len(v) > len(data) {
				return fmt.Errorf("node page overflow while writing values")
			}
			binary.LittleEndian.PutUint16(data[offset:offset+2], uint16(len(v)))
			offset += 2
			copy(data[offset:], v)
			offset += len(v)
		}
	} else {
		for _, c := range node.children {
			if offset+8 > len(data) {
				return fmt.Errorf("node page overflow while writing children")
			}
			binary.LittleEndian.PutUint64(data[offset:offset+8], uint64(c&0xFFFFFFFF))
			offset += 8
		}
	}

	return nil
}

func DeserializeNode(data []byte, fileID uint32) (*Node, error) {
	if len(data) < nodeHeaderSize {
		return nil, fmt.Errorf("node page too short")
	}

	localID := int64(binary.LittleEndian.Uint64(data[0:8]))
	isLeaf := data[9] == 1
	numKeys := int(binary.LittleEndian.Uint16(data[10:12]))
	localParent := int64(binary.LittleEndian.Uint64(data[12:20]))
	localNext := int64(binary.LittleEndian.Uint64(data[20:28]))

	toGlobal := func(local int64) int64 {
		if local == 0xFFFFFFFF || local < 0 {
			return -1
		}
		return int64(fileID)<<32 | (local & 0xFFFFFFFF)
	}

	n := &Node{
		pageID: toGlobal(localID),
		parent: toGlobal(localParent),
		next:   toGlobal(localNext),
	}
	if isLeaf {
		n.nodeType = NodeLeaf
	} else {
		n.nodeType = NodeInternal
	}

	offset := nodeHeaderSize
	n.keys = make([][]byte, 0, numKeys)
	for i := 0; i < numKeys; i++ {
		if offset+2 > len(data) {
			return nil, fmt.Errorf("truncated node page reading key length")
		}
		klen := int(binary.LittleEndian.Uint16(data[offset : offset+2]))
		offset += 2
		if offset+klen > len(data) {
			return nil, fmt.Errorf("truncated node page reading key bytes")
		}
		key := make([]byte, klen)
		copy(key, data[offset:offset+klen])
		offset += klen
		n.keys = append(n.keys, key)
	}

	if isLeaf {
		n.values = make([][]byte, 0, numKeys)
		for i := 0; i < numKeys; i++ {
			if offset+2 > len(data) {
				return nil, fmt.Errorf("truncated node page reading value length")
			}
			vlen := int(binary.LittleEndian.Uint16(data[offset : offset+2]))
			offset += 2
			if offset+vlen > len(data) {
				return nil, fmt.Errorf("truncated node page reading value bytes")
			}
			val := make([]byte, vlen)
			copy(val, data[offset:offset+vlen])
			offset += vlen
			n.values = append(n.values, val)
		}
		n.children = []int64{}
	} else {
		n.children = make([]int64, 0, numKeys+1)
		for i := 0; i < numKeys+1; i++ {
			if offset+8 > len(data) {
				break
			}
			localChild := int64(binary.LittleEndian.Uint64(data[offset : offset+8]))
			offset += 8
			n.children = append(n.children, toGlobal(localChild))
		}
		n.values = [][]byte{}
	}

	return n, nil
}
