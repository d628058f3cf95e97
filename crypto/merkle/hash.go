package merkle

import (
	"crypto/sha256"
)

// Domain separation prefixes; a leaf can never collide with an inner node.
var (
	leafPrefix  = []byte{0}
	innerPrefix = []byte{1}
)

// returns SHA256("")
func emptyHash() []byte {
	h := sha256.Sum256(nil)
	return h[:]
}

// returns SHA256(0x00 || leaf)
func leafHash(leaf []byte) []byte {
	h := sha256.New()
	h.Write(leafPrefix)
	h.Write(leaf)
	return h.Sum(nil)
}

// returns SHA256(0x01 || left || right)
func innerHash(left []byte, right []byte) []byte {
	h := sha256.New()
	h.Write(innerPrefix)
	h.Write(left)
	h.Write(right)
	return h.Sum(nil)
}

// LeafHash is exported for callers that fold proofs themselves.
func LeafHash(leaf []byte) []byte { return leafHash(leaf) }

// InnerHash is exported for callers that fold proofs themselves.
func InnerHash(left, right []byte) []byte { return innerHash(left, right) }
