package folding

import (
	"github.com/gostonefire/foldhashmap/scramble"
)

// Folder - Maps keys to slot positions in a folded binary tree address space.
// The tree has no root node, at depth d (for d > offset) there are 2^d nodes addressed by the
// d least significant bits of the hash. Folding the tree means putting all depths in one
// sequence, which gives every (fold, depth) pair its own slot position:
//
//	node(h,d,o) = 2^d - 2^(o+1) + (h & (2^d - 1))
//
// Every additional depth only adds new address space, so the probe sequence of a key never
// collides with itself before all depths are exhausted and the hash is scrambled.
type Folder struct {
	offset    int64
	maxDepth  int64
	scrambler scramble.Scrambler
}

// NewFolder - Returns a pointer to a new Folder instance
//   - offset is the number of low depths skipped, probing starts at depth offset+1
//   - maxDepth is the deepest probe level before the hash is scrambled
//   - scrambler derives a new pseudo hash once maxDepth is exhausted
func NewFolder(offset, maxDepth int64, scrambler scramble.Scrambler) *Folder {
	return &Folder{offset: offset, maxDepth: maxDepth, scrambler: scrambler}
}

// Probe - Carries the state of one walk through candidate slots for a key.
// It lives for the duration of a single get or put and is never persisted.
type Probe struct {
	key    int64
	hash   int64
	depth  int64
	cycles int64
}

// NewProbe - Returns a probe for key, positioned at the first candidate depth
func (F *Folder) NewProbe(key int64) *Probe {
	return &Probe{key: key, hash: key, depth: F.offset + 1}
}

// Fold - Masks hash to its depth least significant bits
func (F *Folder) Fold(hash, depth int64) int64 {
	return hash & (int64(1)<<depth - 1)
}

// NodeIndex - Returns the slot position the probe currently addresses
func (F *Folder) NodeIndex(p *Probe) int64 {
	return int64(1)<<p.depth - int64(1)<<(F.offset+1) + F.Fold(p.hash, p.depth)
}

// Advance - Moves the probe to the next depth. When the maximum depth is exhausted the
// hash is scrambled, the depth restarts at offset+1 and the cycle counter is incremented.
func (F *Folder) Advance(p *Probe) {
	p.depth++
	if p.depth > F.maxDepth {
		p.depth = F.offset + 1
		p.hash = F.scrambler.Scramble(p.hash)
		p.cycles++
	}
}

// Key - Returns the key the probe was created for
func (p *Probe) Key() int64 {
	return p.key
}

// Depth - Returns the current probe depth
func (p *Probe) Depth() int64 {
	return p.depth
}

// Cycles - Returns the number of scramble cycles the probe has gone through
func (p *Probe) Cycles() int64 {
	return p.cycles
}
