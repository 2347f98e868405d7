package scramble

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Scrambler - Interface that permits an implementation using the FoldHashMap to supply a custom
// hash scrambling step suited for its particular distribution of keys.
// The scrambler is invoked whenever a probe has exhausted all depths of the folded address space
// for its current pseudo hash, and the hash map restarts probing from the minimum depth using
// the new pseudo hash.
type Scrambler interface {
	// Scramble - Given the current pseudo hash it derives a new one.
	// The function must be deterministic, the whole probe sequence of a key depends on it.
	Scramble(hash int64) int64
}

// Affine - The default scrambler, applying the integer transform (5*h - 7) / 3 + 13 with
// truncating division. The transform is cheap and reproducible across platforms, hence table
// files written with it fold identically wherever they are reopened.
type Affine struct{}

// Scramble - Derives a new pseudo hash from the current one
func (A Affine) Scramble(hash int64) int64 {
	return (5*hash-7)/3 + 13
}

// XXHash - A scrambler based on xxhash, giving a much better spread of pseudo hashes over the
// folded address space than Affine does. Tables written with one scrambler can not be reopened
// with another, so pick one and stay with it for the lifetime of the table file.
type XXHash struct{}

// Scramble - Derives a new pseudo hash from the current one
func (X XXHash) Scramble(hash int64) int64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(hash))
	return int64(xxhash.Sum64(buf[:]))
}
