package folding

import (
	"fmt"
	"math/bits"
)

// maxSizeLimit - Upper limit on requested max size, keeps all shift arithmetic within int64
const maxSizeLimit int64 = 1 << 61

// MaxDepth - Derives the maximum probe depth for a requested max size and offset, such that
// no slot position the Folder can ever produce reaches maxSize. It starts at ceil(log2(maxSize))
// and backs down until the worst case position at the final depth, 2^(maxDepth+1) - 2^(offset+1) - 1,
// stays below maxSize. The resulting address space is given by Capacity and is usually somewhat
// smaller than maxSize, never larger.
func MaxDepth(maxSize, offset int64) (maxDepth int64, err error) {
	if maxSize <= 0 {
		err = fmt.Errorf("max size must be a positive value higher than 0 (zero)")
		return
	}
	if maxSize >= maxSizeLimit {
		err = fmt.Errorf("max size must be less than %d", maxSizeLimit)
		return
	}
	if offset < 0 || offset > 59 {
		err = fmt.Errorf("offset must be in the range 0 to 59")
		return
	}

	maxDepth = ceilLog2(maxSize)
	if maxDepth < offset+1 {
		maxDepth = offset + 1
	}

	for maxDepth > offset+1 && maxNodeIndex(maxDepth, offset) >= maxSize {
		maxDepth--
	}

	if maxNodeIndex(maxDepth, offset) >= maxSize {
		err = fmt.Errorf("max size %d is too small to address any slot with offset %d", maxSize, offset)
		maxDepth = 0
		return
	}

	return
}

// Capacity - Returns the number of addressable slots given a maximum depth and offset.
// This is the actual maximum number of entries the table can hold, as opposed to the
// requested max size the depth was derived from.
func Capacity(maxDepth, offset int64) int64 {
	return int64(1)<<(maxDepth+1) - int64(1)<<(offset+1)
}

// maxNodeIndex - Returns the highest slot position any probe can produce at the given depth
func maxNodeIndex(depth, offset int64) int64 {
	return int64(1)<<(depth+1) - int64(1)<<(offset+1) - 1
}

// ceilLog2 - Returns ceil(log2(x)) for positive x
func ceilLog2(x int64) int64 {
	if x <= 1 {
		return 0
	}
	return int64(bits.Len64(uint64(x - 1)))
}
