package mem

import (
	"encoding/binary"

	rp "kread/readp"
	"kread/serr"
)

// Iovec describes one destination segment of a vectorized transfer.
// Segments are filled in order; lengths may be zero.
type Iovec struct {
	Base rp.Tvirt
	Len  rp.Tsize
}

// PutIovec encodes iov at b in its user-memory layout.
func PutIovec(b []byte, iov Iovec) {
	binary.LittleEndian.PutUint64(b, uint64(iov.Base))
	binary.LittleEndian.PutUint64(b[8:], uint64(iov.Len))
}

// CopyInIovecs copies cnt segment descriptors from the user array at
// addr into a kernel-owned sequence, so a caller mutating the array
// mid-call can't outrun later checks. Descriptors fit in scratch when
// cnt is small; bigger arrays fall back to a fresh allocation.
func CopyInIovecs(as *AddrSpace, addr rp.Tvirt, cnt int, scratch []Iovec) ([]Iovec, *serr.Err) {
	if cnt == 0 {
		return nil, nil
	}
	if uint64(cnt) > uint64(rp.MaxTransfer)/uint64(rp.IovSize) {
		return nil, serr.NewErr(serr.TErrNomem, cnt)
	}
	sz := uint64(cnt) * uint64(rp.IovSize)
	raw, err := as.CopyIn(addr, rp.Tsize(sz))
	if err != nil {
		return nil, err
	}
	var iovs []Iovec
	if cnt <= cap(scratch) {
		iovs = scratch[:cnt]
	} else {
		iovs = make([]Iovec, cnt)
	}
	for i := 0; i < cnt; i++ {
		b := raw[i*int(rp.IovSize):]
		iovs[i].Base = rp.Tvirt(binary.LittleEndian.Uint64(b))
		iovs[i].Len = rp.Tsize(binary.LittleEndian.Uint64(b[8:]))
	}
	return iovs, nil
}
