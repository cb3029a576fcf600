package orion

import (
	"bytes"

	"github.com/vybium/expander/internal/expander/transcript"
)

// merkleTree is a binary Merkle tree over byte leaves, grounded on the
// teacher's core/merkle.go (pairwise hashing, odd-node self-duplication),
// generalized to take its hash function from a transcript.Hasher instead of
// a hardcoded Poseidon/SHA-256 fallback chain.
type merkleTree struct {
	hasher transcript.Hasher
	leaves [][]byte
	levels [][][]byte
}

// proofNode is one step of a Merkle authentication path: the sibling hash
// and which side it sits on.
type proofNode struct {
	Hash    []byte
	IsRight bool
}

func newMerkleTree(hasher transcript.Hasher, leaves [][]byte) *merkleTree {
	levels := [][][]byte{leaves}
	current := leaves
	for len(current) > 1 {
		next := make([][]byte, 0, (len(current)+1)/2)
		for i := 0; i < len(current); i += 2 {
			if i+1 < len(current) {
				next = append(next, hasher.Hash(append(append([]byte{}, current[i]...), current[i+1]...)))
			} else {
				next = append(next, hasher.Hash(append(append([]byte{}, current[i]...), current[i]...)))
			}
		}
		levels = append(levels, next)
		current = next
	}
	return &merkleTree{hasher: hasher, leaves: leaves, levels: levels}
}

func (mt *merkleTree) root() []byte {
	return mt.levels[len(mt.levels)-1][0]
}

func (mt *merkleTree) proof(index int) []proofNode {
	var path []proofNode
	idx := index
	for level := 0; level < len(mt.levels)-1; level++ {
		cur := mt.levels[level]
		var siblingIdx int
		var isRight bool
		if idx%2 == 0 {
			siblingIdx = idx + 1
			isRight = true
		} else {
			siblingIdx = idx - 1
			isRight = false
		}
		if siblingIdx < len(cur) {
			path = append(path, proofNode{Hash: cur[siblingIdx], IsRight: isRight})
		} else {
			path = append(path, proofNode{Hash: cur[idx], IsRight: true})
		}
		idx /= 2
	}
	return path
}

// verifyMerklePath checks that leaf, reduced up path starting at index,
// reproduces root.
func verifyMerklePath(hasher transcript.Hasher, root, leaf []byte, path []proofNode, index int) bool {
	hash := leaf
	idx := index
	for _, node := range path {
		var combined []byte
		if node.IsRight {
			combined = append(append([]byte{}, hash...), node.Hash...)
		} else {
			combined = append(append([]byte{}, node.Hash...), hash...)
		}
		hash = hasher.Hash(combined)
		idx /= 2
	}
	return bytes.Equal(hash, root)
}
