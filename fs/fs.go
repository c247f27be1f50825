package fs

import (
	"kread/mem"
	rp "kread/readp"
	"kread/sched"
	"kread/serr"
)

type CtxI interface {
	Uname() string
}

// File is the byte-producing side of an open description. Read
// transfers up to cnt bytes into dst; off is the cursor maintained by
// the description and is ignored by unseekable files. A zero count
// with a nil error is end of file. Readiness is transient: it may
// change between Ready and Read, so callers re-check per attempt.
type File interface {
	Ready() bool
	Seekable() bool
	WaitQ() *sched.WaitQ
	Read(ctx CtxI, dst *mem.UserBuffer, off rp.Toffset, cnt rp.Tsize) (rp.Tsize, *serr.Err)
}
