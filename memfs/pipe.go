package memfs

import (
	"sync"

	db "kread/debug"
	"kread/fs"
	"kread/mem"
	rp "kread/readp"
	"kread/sched"
	"kread/serr"
)

const PIPESZ = 8192

// Pipe is a bounded FIFO. The writer side wakes blocked readers through
// the pipe's wait queue; an empty pipe with a live writer would block.
type Pipe struct {
	mu      sync.Mutex
	wq      *sched.WaitQ
	buf     []byte
	wclosed bool
}

func NewPipe() *Pipe {
	pipe := &Pipe{}
	pipe.wq = sched.NewWaitQ()
	pipe.buf = make([]byte, 0, PIPESZ)
	return pipe
}

func (p *Pipe) Ready() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.buf) > 0 || p.wclosed
}

func (p *Pipe) Seekable() bool {
	return false
}

func (p *Pipe) WaitQ() *sched.WaitQ {
	return p.wq
}

func (p *Pipe) NBytes() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.buf)
}

func (p *Pipe) Read(ctx fs.CtxI, dst *mem.UserBuffer, off rp.Toffset, cnt rp.Tsize) (rp.Tsize, *serr.Err) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.buf) == 0 {
		if p.wclosed {
			return 0, nil
		}
		return 0, serr.NewErr(serr.TErrWouldBlock, "pipe")
	}
	n := rp.Tsize(len(p.buf))
	if cnt < n {
		n = cnt
	}
	m, err := dst.Write(0, p.buf[:n])
	if err != nil {
		return 0, err
	}
	p.buf = p.buf[m:]
	db.DPrintf(db.MEMFS, "%v: pipe read %v left %v", ctx.Uname(), m, len(p.buf))
	return m, nil
}

// Write appends b, up to the pipe's capacity, and signals
// read-readiness. Producer-side API; runs without the reader's process
// lock.
func (p *Pipe) Write(b []byte) rp.Tsize {
	p.mu.Lock()
	n := PIPESZ - len(p.buf)
	if n > len(b) {
		n = len(b)
	}
	p.buf = append(p.buf, b[:n]...)
	p.mu.Unlock()

	p.wq.WakeupRead()
	return rp.Tsize(n)
}

// CloseWrite ends the stream; readers drain what's buffered and then
// see end of file.
func (p *Pipe) CloseWrite() {
	p.mu.Lock()
	p.wclosed = true
	p.mu.Unlock()

	p.wq.WakeupRead()
}
