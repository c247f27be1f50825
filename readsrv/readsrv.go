package readsrv

import (
	"time"

	db "kread/debug"
	"kread/desc"
	"kread/mem"
	"kread/param"
	"kread/proc"
	rp "kread/readp"
	"kread/sched"
	"kread/serr"
	"kread/stats"
)

// ReadSrv dispatches the three read-family calls: Read, Readv, and
// Pread. It resolves the descriptor, runs the blocking protocol, and
// transfers through a validated buffer; the bytes themselves come from
// the description's backing file. Every call is all-or-error: the first
// error encountered aborts it, with no partial count reported.
type ReadSrv struct {
	st *stats.StatInfo
}

func NewReadSrv() *ReadSrv {
	return &ReadSrv{st: stats.NewStatInfo()}
}

func (rs *ReadSrv) Stats() *stats.StatInfo {
	return rs.st
}

// ensureReadable guarantees that by the time it returns nil, either
// data can be pulled or pulling won't wait (non-blocking mode). If the
// description blocks and has no data, the calling thread suspends with
// interest in read-readiness only; the wake reason decides the outcome.
// One suspension per attempt, no retry loop.
func (rs *ReadSrv) ensureReadable(t *proc.Thread, d *desc.Desc) *serr.Err {
	if !d.IsBlocking() || d.DataReady() {
		return nil
	}
	rs.st.Nblock.Inc(1)
	switch d.WaitQ().WaitRead(t, d.DataReady) {
	case sched.WakeInterrupted:
		rs.st.Nintr.Inc(1)
		return serr.NewErr(serr.TErrIntr, d)
	case sched.WakeSpurious:
		rs.st.Nwouldblock.Inc(1)
		return serr.NewErr(serr.TErrWouldBlock, d)
	}
	return nil
}

// Read transfers up to sz bytes from fd into [addr, addr+sz) and
// returns the count actually read; a short count is not an error.
// A zero-length read succeeds before the descriptor is resolved, so it
// can't fail with a descriptor error.
func (rs *ReadSrv) Read(t *proc.Thread, fd rp.Tfd, addr rp.Tvirt, sz rp.Tsize) (rp.Tsize, *serr.Err) {
	rs.st.Nread.Inc(1)
	if sz == 0 {
		return 0, nil
	}
	if sz > rp.MaxTransfer {
		return 0, serr.NewErr(serr.TErrInval, sz)
	}
	db.DPrintf(db.READSRV, "%v: Read %v addr %#x sz %v", t.Uname(), fd, addr, sz)
	d, err := t.Proc().FdTable().LookupReadable(fd)
	if err != nil {
		return 0, err
	}
	if err := rs.ensureReadable(t, d); err != nil {
		return 0, err
	}
	ub, err := t.Proc().AddrSpace().ValidateRange(addr, sz)
	if err != nil {
		return 0, err
	}
	s := time.Now()
	n, err := d.Read(t, ub, sz)
	if err != nil {
		db.DPrintf(db.READSRV_ERR, "%v: Read %v err %v", t.Uname(), fd, err)
		return 0, err
	}
	rs.st.Tbytes.Inc(int64(n))
	rs.st.Lat.Record(time.Since(s))
	return n, nil
}

// Readv transfers into iovcnt segments, in order, described by the
// user array at iov. The segment descriptors are copied in before
// anything else so the total-length check and the per-segment loop see
// a stable, kernel-owned view. Each segment runs the blocking protocol
// afresh; readiness can change between segments. The first per-segment
// error aborts the call and discards the accumulated count.
func (rs *ReadSrv) Readv(t *proc.Thread, fd rp.Tfd, iov rp.Tvirt, iovcnt int) (rp.Tsize, *serr.Err) {
	rs.st.Nreadv.Inc(1)
	if iovcnt < 0 {
		return 0, serr.NewErr(serr.TErrInval, iovcnt)
	}
	// Arbitrary pain threshold.
	if iovcnt > param.Conf.Readv.MAX_IOV {
		return 0, serr.NewErr(serr.TErrFault, iovcnt)
	}
	db.DPrintf(db.READSRV, "%v: Readv %v iov %#x cnt %v", t.Uname(), fd, iov, iovcnt)
	scratch := make([]mem.Iovec, 0, param.Conf.Readv.SCRATCH_IOV)
	iovs, err := mem.CopyInIovecs(t.Proc().AddrSpace(), iov, iovcnt, scratch)
	if err != nil {
		return 0, err
	}
	// A too-large total is rejected up front, even if the early
	// segments are individually fine.
	var total uint64
	for _, v := range iovs {
		total += uint64(v.Len)
		if total > rp.MaxVecTotal {
			return 0, serr.NewErr(serr.TErrInval, total)
		}
	}
	d, err := t.Proc().FdTable().LookupReadable(fd)
	if err != nil {
		return 0, err
	}
	nread := rp.Tsize(0)
	for _, v := range iovs {
		if err := rs.ensureReadable(t, d); err != nil {
			return 0, err
		}
		ub, err := t.Proc().AddrSpace().ValidateRange(v.Base, v.Len)
		if err != nil {
			return 0, err
		}
		n, err := d.Read(t, ub, v.Len)
		if err != nil {
			db.DPrintf(db.READSRV_ERR, "%v: Readv %v seg %v err %v", t.Uname(), fd, v, err)
			return 0, err
		}
		nread += n
	}
	rs.st.Tbytes.Inc(int64(nread))
	return nread, nil
}

// Pread transfers up to sz bytes at off, leaving the description's
// cursor untouched. The underlying object must be seekable.
func (rs *ReadSrv) Pread(t *proc.Thread, fd rp.Tfd, addr rp.Tvirt, sz rp.Tsize, off rp.Toffset) (rp.Tsize, *serr.Err) {
	rs.st.Npread.Inc(1)
	if sz == 0 {
		return 0, nil
	}
	if sz > rp.MaxTransfer {
		return 0, serr.NewErr(serr.TErrInval, sz)
	}
	if off < 0 {
		return 0, serr.NewErr(serr.TErrInval, off)
	}
	db.DPrintf(db.READSRV, "%v: Pread %v addr %#x sz %v off %v", t.Uname(), fd, addr, sz, off)
	d, err := t.Proc().FdTable().LookupReadable(fd)
	if err != nil {
		return 0, err
	}
	if !d.Seekable() {
		return 0, serr.NewErr(serr.TErrInval, d)
	}
	if err := rs.ensureReadable(t, d); err != nil {
		return 0, err
	}
	ub, err := t.Proc().AddrSpace().ValidateRange(addr, sz)
	if err != nil {
		return 0, err
	}
	s := time.Now()
	n, err := d.ReadAt(t, ub, off, sz)
	if err != nil {
		db.DPrintf(db.READSRV_ERR, "%v: Pread %v err %v", t.Uname(), fd, err)
		return 0, err
	}
	rs.st.Tbytes.Inc(int64(n))
	rs.st.Lat.Record(time.Since(s))
	return n, nil
}
