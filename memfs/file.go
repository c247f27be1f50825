package memfs

import (
	"sync"

	"kread/fs"
	"kread/mem"
	rp "kread/readp"
	"kread/sched"
	"kread/serr"
)

// File is a seekable in-memory file. It always has data ready; reads
// past the end are short or empty, never errors.
type File struct {
	mu   sync.Mutex
	wq   *sched.WaitQ
	data []byte
}

func NewFile(data []byte) *File {
	return &File{wq: sched.NewWaitQ(), data: data}
}

func (f *File) Size() rp.Tlength {
	f.mu.Lock()
	defer f.mu.Unlock()

	return rp.Tlength(len(f.data))
}

func (f *File) Ready() bool {
	return true
}

func (f *File) Seekable() bool {
	return true
}

func (f *File) WaitQ() *sched.WaitQ {
	return f.wq
}

func (f *File) Read(ctx fs.CtxI, dst *mem.UserBuffer, off rp.Toffset, cnt rp.Tsize) (rp.Tsize, *serr.Err) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if off >= rp.Toffset(len(f.data)) {
		return 0, nil
	}
	rest := rp.Tsize(rp.Toffset(len(f.data)) - off)
	if cnt > rest {
		cnt = rest
	}
	return dst.Write(0, f.data[off:off+rp.Toffset(cnt)])
}
