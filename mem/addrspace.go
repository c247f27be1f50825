package mem

import (
	"sync"

	db "kread/debug"
	rp "kread/readp"
	"kread/serr"
)

// One contiguous accessible range of a user address space.
type region struct {
	start rp.Tvirt
	data  []byte
}

func (r *region) contains(addr rp.Tvirt, n rp.Tsize) bool {
	if addr < r.start {
		return false
	}
	off := rp.Tsize(addr - r.start)
	return off <= rp.Tsize(len(r.data)) && n <= rp.Tsize(len(r.data))-off
}

// AddrSpace tracks which ranges of a process's address space are
// accessible. The read path only queries it; mapping is done by the
// process-setup side.
type AddrSpace struct {
	sync.Mutex
	regions []*region
}

func NewAddrSpace() *AddrSpace {
	return &AddrSpace{}
}

// Map makes [addr, addr+n) accessible.
func (as *AddrSpace) Map(addr rp.Tvirt, n rp.Tsize) {
	as.Lock()
	defer as.Unlock()

	as.regions = append(as.regions, &region{addr, make([]byte, n)})
}

// Caller must hold as lock. Ranges straddling two regions don't
// validate even if both are mapped; regions are deliberately disjoint.
func (as *AddrSpace) lookupL(addr rp.Tvirt, n rp.Tsize) *region {
	for _, r := range as.regions {
		if r.contains(addr, n) {
			return r
		}
	}
	return nil
}

// ValidateRange wraps [addr, addr+n) into a checked transfer target, or
// faults without touching it. A zero-length range always validates; it
// names no byte that could fault. The result is good for the current
// call only; nothing is cached.
func (as *AddrSpace) ValidateRange(addr rp.Tvirt, n rp.Tsize) (*UserBuffer, *serr.Err) {
	as.Lock()
	defer as.Unlock()

	if n == 0 {
		return &UserBuffer{nil, addr}, nil
	}
	r := as.lookupL(addr, n)
	if r == nil {
		db.DPrintf(db.MEM, "ValidateRange fault addr %#x n %v", addr, n)
		return nil, serr.NewErr(serr.TErrFault, addr)
	}
	i := int(addr - r.start)
	return &UserBuffer{r.data[i : i+int(n)], addr}, nil
}

// CopyIn copies n bytes at addr into a kernel-owned buffer.
func (as *AddrSpace) CopyIn(addr rp.Tvirt, n rp.Tsize) ([]byte, *serr.Err) {
	as.Lock()
	defer as.Unlock()

	if n == 0 {
		return nil, nil
	}
	r := as.lookupL(addr, n)
	if r == nil {
		db.DPrintf(db.MEM, "CopyIn fault addr %#x n %v", addr, n)
		return nil, serr.NewErr(serr.TErrFault, addr)
	}
	i := int(addr - r.start)
	b := make([]byte, n)
	copy(b, r.data[i:i+int(n)])
	return b, nil
}

// CopyOut copies b to addr. Setup-side API for populating user memory.
func (as *AddrSpace) CopyOut(addr rp.Tvirt, b []byte) *serr.Err {
	as.Lock()
	defer as.Unlock()

	r := as.lookupL(addr, rp.Tsize(len(b)))
	if r == nil {
		return serr.NewErr(serr.TErrFault, addr)
	}
	copy(r.data[int(addr-r.start):], b)
	return nil
}
