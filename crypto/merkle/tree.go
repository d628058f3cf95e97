package merkle

import (
	"encoding/hex"
	"math/bits"
)

// HashFromByteSlices computes a Merkle tree where the leaves are the byte slice,
// in the provided order. It follows RFC-6962.
func HashFromByteSlices(items [][]byte) []byte {
	switch len(items) {
	case 0:
		return emptyHash()
	case 1:
		return leafHash(items[0])
	default:
		k := getSplitPoint(int64(len(items)))
		left := HashFromByteSlices(items[:k])
		right := HashFromByteSlices(items[k:])
		return innerHash(left, right)
	}
}

// HashFromByteSlicesIterative computes the same root as HashFromByteSlices
// bottom-up, without recursion. Pairing adjacent nodes level by level yields
// the same shape as splitting at the largest power of two.
func HashFromByteSlicesIterative(input [][]byte) []byte {
	items := make([][]byte, len(input))

	for i, leaf := range input {
		items[i] = leafHash(leaf)
	}

	size := len(items)
	for {
		switch size {
		case 0:
			return emptyHash()
		case 1:
			return items[0]
		default:
			rp := 0 // read position
			wp := 0 // write position
			for rp < size {
				if rp+1 < size {
					items[wp] = innerHash(items[rp], items[rp+1])
					rp += 2
				} else {
					items[wp] = items[rp]
					rp++
				}
				wp++
			}
			size = wp
		}
	}
}

// Node is a node of a materialized tree. Leaves have no children.
type Node struct {
	Hash   []byte
	Left   *Node
	Right  *Node
	Parent *Node
}

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool { return n.Left == nil && n.Right == nil }

// Tree is a fully materialized Merkle tree together with an index from leaf
// hash to leaf position.
type Tree struct {
	Root   *Node
	Leaves []*Node

	index map[string]int
}

// BuildTree materializes the tree over items. The root hash equals
// HashFromByteSlices(items). Duplicate leaves resolve to their first position.
func BuildTree(items [][]byte) *Tree {
	t := &Tree{
		Leaves: make([]*Node, 0, len(items)),
		index:  make(map[string]int, len(items)),
	}
	if len(items) == 0 {
		t.Root = &Node{Hash: emptyHash()}
		return t
	}
	t.Root = t.build(items)
	return t
}

func (t *Tree) build(items [][]byte) *Node {
	if len(items) == 1 {
		n := &Node{Hash: leafHash(items[0])}
		key := hex.EncodeToString(n.Hash)
		if _, ok := t.index[key]; !ok {
			t.index[key] = len(t.Leaves)
		}
		t.Leaves = append(t.Leaves, n)
		return n
	}
	k := getSplitPoint(int64(len(items)))
	left := t.build(items[:k])
	right := t.build(items[k:])
	n := &Node{Hash: innerHash(left.Hash, right.Hash), Left: left, Right: right}
	left.Parent, right.Parent = n, n
	return n
}

// RootHash returns the hash of the root node.
func (t *Tree) RootHash() []byte { return t.Root.Hash }

// IndexOf returns the position of the first leaf whose content is item, or -1.
func (t *Tree) IndexOf(item []byte) int {
	i, ok := t.index[hex.EncodeToString(leafHash(item))]
	if !ok {
		return -1
	}
	return i
}

// getSplitPoint returns the largest power of 2 less than length
func getSplitPoint(length int64) int64 {
	if length < 1 {
		panic("Trying to split a tree with size < 1")
	}
	uLength := uint(length)
	bitlen := bits.Len(uLength)
	k := int64(1 << uint(bitlen-1))
	if k == length {
		k >>= 1
	}
	return k
}
