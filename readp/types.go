package readp

import (
	"math"
)

type Tfd int
type Tvirt uint64
type Tsize uint64
type Toffset int64
type Tlength uint64

const (
	NoFd Tfd = -1

	// MaxTransfer bounds one transfer to the largest byte count
	// representable as a signed size.
	MaxTransfer Tsize = math.MaxInt64

	// MaxVecTotal bounds the sum of all segment lengths of one
	// vectorized call to a signed 32-bit count.
	MaxVecTotal uint64 = math.MaxInt32

	// IovSize is the in-memory layout size of one segment descriptor:
	// base address (8 bytes) followed by length (8 bytes).
	IovSize Tsize = 16
)
