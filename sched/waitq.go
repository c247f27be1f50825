package sched

import (
	"sync"

	db "kread/debug"
)

type Twake int

const (
	WakeReady       Twake = iota + 1 // read-readiness was signaled
	WakeSpurious                     // woken without read-readiness
	WakeInterrupted                  // sleep cut short by signal delivery
)

func (w Twake) String() string {
	switch w {
	case WakeReady:
		return "ready"
	case WakeSpurious:
		return "spurious"
	case WakeInterrupted:
		return "interrupted"
	default:
		return "unknown"
	}
}

// Thread is the suspendable calling context, seen through the narrow
// contract the wait queue needs. SleepStart registers intr to run on
// signal delivery and reports false if a signal is already pending, in
// which case the thread must not go to sleep at all.
type Thread interface {
	SleepStart(intr func()) bool
	SleepDone()
}

// One cond per blocked thread, so a wake reason can be delivered to a
// single waiter without disturbing the others.
type waiter struct {
	c    *sync.Cond
	wake Twake
}

// WaitQ is the wait queue for read-readiness on one open description.
// The producing side signals it; the read path sleeps on it.
type WaitQ struct {
	mu sync.Mutex
	ws []*waiter
}

func NewWaitQ() *WaitQ {
	return &WaitQ{}
}

// WaitRead suspends the calling thread until read-readiness is
// signaled, the thread is interrupted, or the queue is disturbed by an
// alternate wake. ready is re-checked after enqueueing, so a wakeup
// racing with the caller's own readiness check is not lost.
func (wq *WaitQ) WaitRead(t Thread, ready func() bool) Twake {
	w := &waiter{}
	if !t.SleepStart(func() { wq.wake1(w, WakeInterrupted) }) {
		return WakeInterrupted
	}
	wq.mu.Lock()
	if w.wake != 0 {
		// Interrupted before we got on the queue.
		wq.mu.Unlock()
		t.SleepDone()
		return w.wake
	}
	if ready != nil && ready() {
		wq.mu.Unlock()
		t.SleepDone()
		return WakeReady
	}
	w.c = sync.NewCond(&wq.mu)
	wq.ws = append(wq.ws, w)
	db.DPrintf(db.SCHED, "WaitRead sleep %p nw %v", w, len(wq.ws))
	for w.wake == 0 {
		w.c.Wait()
	}
	wq.removeL(w)
	wq.mu.Unlock()
	t.SleepDone()
	db.DPrintf(db.SCHED, "WaitRead wake %p %v", w, w.wake)
	return w.wake
}

// WakeupRead signals read-readiness to every blocked waiter.
func (wq *WaitQ) WakeupRead() {
	wq.wakeAll(WakeReady)
}

// Disturb wakes every blocked waiter without signaling readiness; they
// resume as spurious.
func (wq *WaitQ) Disturb() {
	wq.wakeAll(WakeSpurious)
}

// NWaiter reports how many threads are blocked on wq.
func (wq *WaitQ) NWaiter() int {
	wq.mu.Lock()
	defer wq.mu.Unlock()

	return len(wq.ws)
}

func (wq *WaitQ) wakeAll(r Twake) {
	wq.mu.Lock()
	defer wq.mu.Unlock()

	for _, w := range wq.ws {
		if w.wake == 0 {
			w.wake = r
			w.c.Signal()
		}
	}
	wq.ws = nil
}

func (wq *WaitQ) wake1(w *waiter, r Twake) {
	wq.mu.Lock()
	defer wq.mu.Unlock()

	if w.wake == 0 {
		w.wake = r
		// Not yet asleep if c is nil; WaitRead will see wake set.
		if w.c != nil {
			w.c.Signal()
		}
	}
}

// Caller must hold wq lock. The waiter may already be gone if a wakeAll
// cleared the queue.
func (wq *WaitQ) removeL(w *waiter) {
	for i, w1 := range wq.ws {
		if w1 == w {
			wq.ws = append(wq.ws[:i], wq.ws[i+1:]...)
			return
		}
	}
}
