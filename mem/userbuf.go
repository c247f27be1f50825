package mem

import (
	"fmt"

	rp "kread/readp"
	"kread/serr"
)

// UserBuffer is a checked view over a validated user range. It exists
// only after validation succeeds, and every access through it is bounds
// checked again. It is valid only for the duration of the current call.
type UserBuffer struct {
	data []byte
	addr rp.Tvirt
}

func (ub *UserBuffer) Addr() rp.Tvirt {
	return ub.addr
}

func (ub *UserBuffer) Size() rp.Tsize {
	return rp.Tsize(len(ub.data))
}

// Write copies p into the range starting at off and returns the count
// written.
func (ub *UserBuffer) Write(off rp.Tsize, p []byte) (rp.Tsize, *serr.Err) {
	if off > ub.Size() || rp.Tsize(len(p)) > ub.Size()-off {
		return 0, serr.NewErr(serr.TErrFault, ub)
	}
	copy(ub.data[off:], p)
	return rp.Tsize(len(p)), nil
}

func (ub *UserBuffer) String() string {
	return fmt.Sprintf("{ub addr %#x sz %v}", ub.addr, ub.Size())
}
