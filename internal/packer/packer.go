// Package packer packs finite-domain state variables into a compact bit
// buffer using first-fit descending bin packing on bit width.
package packer

import (
	"fmt"
	"math/bits"

	"github.com/sasplan/planner/internal/buf"
)

// wordBits is the width of one packing bin; all of a bin's bits are used.
// A single variable may take at most wordBits-1 bits, which SAS+ tasks
// never come close to needing.
const wordBits = 64

// field locates one variable's bits within its bin.
type field struct {
	bin    int
	offset uint
	width  uint
	mask   uint64
}

// Packer packs/unpacks a fixed set of finite-domain variables into a slice
// of uint64 "bins". Construction fails if any single variable needs more
// than wordBits-1 bits.
type Packer struct {
	fields  []field
	numBins int
}

// New builds a Packer for variables with the given domain sizes (ranges),
// using first-fit descending bin packing: variables are packed widest
// first; each is placed in the first bin with enough free bits, opening a
// new bin when none fits.
func New(ranges []int) (*Packer, error) {
	widths := make([]uint, len(ranges))
	for i, r := range ranges {
		if r <= 0 {
			return nil, fmt.Errorf("packer: variable %d has non-positive range %d", i, r)
		}
		w := bitWidth(r)
		if w > wordBits-1 {
			return nil, fmt.Errorf("packer: variable %d needs %d bits, exceeding %d-bit bin capacity", i, w, wordBits-1)
		}
		widths[i] = w
	}

	order := make([]int, len(ranges))
	for i := range order {
		order[i] = i
	}
	// Stable descending sort by width (first-fit descending).
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && widths[order[j]] > widths[order[j-1]]; j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}

	fields := make([]field, len(ranges))
	binFree := make([]uint, 0, len(ranges))
	for _, idx := range order {
		w := widths[idx]
		bin := -1
		for b, free := range binFree {
			if free >= w {
				bin = b
				break
			}
		}
		if bin == -1 {
			bin = len(binFree)
			binFree = append(binFree, wordBits)
		}
		offset := wordBits - binFree[bin]
		fields[idx] = field{bin: bin, offset: offset, width: w, mask: lowMask(w)}
		binFree[bin] -= w
	}

	return &Packer{fields: fields, numBins: len(binFree)}, nil
}

// bitWidth returns ceil(log2(r)), with a floor of 1 bit for r == 1.
func bitWidth(r int) uint {
	if r <= 1 {
		return 1
	}
	return uint(bits.Len(uint(r - 1)))
}

func lowMask(w uint) uint64 {
	if w >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << w) - 1
}

// BinsPerState returns how many uint64 bins one packed state occupies.
func (p *Packer) BinsPerState() int { return p.numBins }

// NewBuffer allocates a zeroed packed-state buffer sized for this packer.
func (p *Packer) NewBuffer() []uint64 {
	return make([]uint64, p.numBins)
}

// Get reads variable v's value out of a packed buffer.
func (p *Packer) Get(buffer []uint64, v int) int {
	f := p.fields[v]
	return int((buffer[f.bin] >> f.offset) & f.mask)
}

// Set writes val into variable v's field of a packed buffer, clearing any
// previous value first.
func (p *Packer) Set(buffer []uint64, v int, val int) {
	f := p.fields[v]
	buffer[f.bin] &^= f.mask << f.offset
	buffer[f.bin] |= (uint64(val) & f.mask) << f.offset
}

// Bytes reinterprets a packed buffer as a little-endian byte slice, the
// form the state registry hashes and compares for canonicalization.
func Bytes(buffer []uint64) []byte {
	out := make([]byte, len(buffer)*8)
	for i, w := range buffer {
		putU64LE(out[i*8:], w)
	}
	return out
}

func putU64LE(b []byte, w uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(w >> (8 * i))
	}
}

// FromBytes decodes a byte slice produced by Bytes back into bins, reusing
// buf's bounds-checked little-endian readers.
func FromBytes(b []byte, numBins int) []uint64 {
	out := make([]uint64, numBins)
	for i := range out {
		chunk, ok := buf.Slice(b, i*8, 8)
		if !ok {
			break
		}
		out[i] = buf.U64LE(chunk)
	}
	return out
}
