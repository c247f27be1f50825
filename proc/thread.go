package proc

import (
	"sync"

	db "kread/debug"
)

// Thread is one calling context of a proc. It carries the
// pending-signal state that can cut a blocking read short; wakes are
// driven asynchronously by Interrupt.
type Thread struct {
	p          *Proc
	mu         sync.Mutex
	sigpending bool
	intr       func()
}

func (p *Proc) NewThread() *Thread {
	return &Thread{p: p}
}

func (t *Thread) Proc() *Proc {
	return t.p
}

func (t *Thread) Uname() string {
	return t.p.uname
}

// Interrupt delivers a signal to t, waking it if it is blocked. The
// signal stays pending until SigClear; a thread with a pending signal
// won't go back to sleep.
func (t *Thread) Interrupt() {
	t.mu.Lock()
	t.sigpending = true
	intr := t.intr
	t.mu.Unlock()

	db.DPrintf(db.SCHED, "%v: Interrupt blocked %v", t.Uname(), intr != nil)
	if intr != nil {
		intr()
	}
}

// SigClear consumes the pending signal; delivery itself happens outside
// the read path.
func (t *Thread) SigClear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.sigpending = false
}

func (t *Thread) SleepStart(intr func()) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.sigpending {
		return false
	}
	t.intr = intr
	return true
}

func (t *Thread) SleepDone() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.intr = nil
}
