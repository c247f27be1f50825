package desc

import (
	"fmt"

	"kread/fs"
	"kread/mem"
	rp "kread/readp"
	"kread/sched"
	"kread/serr"
)

type Tflag uint32

const (
	FRead Tflag = 1 << iota
	FWrite
	FDir
	FNonblock
)

// Desc is one open file description: mode flags and a read cursor over
// a backing file. Threads of one process are serialized across a whole
// call by the caller's locking discipline, so the cursor has no lock of
// its own. A description is referenced, never owned, by the read path,
// and must outlive the call.
type Desc struct {
	flags Tflag
	off   rp.Toffset
	f     fs.File
}

func NewDesc(f fs.File, flags Tflag) *Desc {
	return &Desc{flags: flags, f: f}
}

func (d *Desc) IsReadable() bool {
	return d.flags&FRead != 0
}

func (d *Desc) IsDirectory() bool {
	return d.flags&FDir != 0
}

func (d *Desc) IsBlocking() bool {
	return d.flags&FNonblock == 0
}

func (d *Desc) DataReady() bool {
	return d.f.Ready()
}

func (d *Desc) Seekable() bool {
	return d.f.Seekable()
}

func (d *Desc) WaitQ() *sched.WaitQ {
	return d.f.WaitQ()
}

func (d *Desc) File() fs.File {
	return d.f
}

func (d *Desc) Offset() rp.Toffset {
	return d.off
}

// Read pulls up to cnt bytes at the description's cursor, advancing it
// by the count actually read. A short count is not an error.
func (d *Desc) Read(ctx fs.CtxI, dst *mem.UserBuffer, cnt rp.Tsize) (rp.Tsize, *serr.Err) {
	n, err := d.f.Read(ctx, dst, d.off, cnt)
	if err != nil {
		return 0, err
	}
	d.off += rp.Toffset(n)
	return n, nil
}

// ReadAt pulls up to cnt bytes at off, leaving the cursor untouched.
func (d *Desc) ReadAt(ctx fs.CtxI, dst *mem.UserBuffer, off rp.Toffset, cnt rp.Tsize) (rp.Tsize, *serr.Err) {
	return d.f.Read(ctx, dst, off, cnt)
}

func (d *Desc) String() string {
	return fmt.Sprintf("{desc fl %b off %v}", d.flags, d.off)
}
