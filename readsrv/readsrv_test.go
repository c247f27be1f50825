package readsrv_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	db "kread/debug"
	"kread/desc"
	"kread/mem"
	"kread/memfs"
	"kread/param"
	"kread/proc"
	rp "kread/readp"
	"kread/readsrv"
	"kread/sched"
	"kread/serr"
)

const (
	BUFA rp.Tvirt = 0x10000
	BUFB rp.Tvirt = 0x20000
	IOVA rp.Tvirt = 0x30000
	BAD  rp.Tvirt = 0xdead0000
)

func newTest(t *testing.T) (*readsrv.ReadSrv, *proc.Proc, *proc.Thread) {
	p := proc.NewProc("test")
	p.AddrSpace().Map(BUFA, 4096)
	p.AddrSpace().Map(BUFB, 4096)
	p.AddrSpace().Map(IOVA, 4096)
	return readsrv.NewReadSrv(), p, p.NewThread()
}

func allocFile(p *proc.Proc, data []byte, fl desc.Tflag) (rp.Tfd, *memfs.File) {
	f := memfs.NewFile(data)
	return p.FdTable().Alloc(desc.NewDesc(f, fl)), f
}

func allocPipe(p *proc.Proc, fl desc.Tflag) (rp.Tfd, *memfs.Pipe) {
	pp := memfs.NewPipe()
	return p.FdTable().Alloc(desc.NewDesc(pp, fl)), pp
}

func putIovecs(t *testing.T, p *proc.Proc, addr rp.Tvirt, iovs []mem.Iovec) {
	b := make([]byte, len(iovs)*int(rp.IovSize))
	for i, v := range iovs {
		mem.PutIovec(b[i*int(rp.IovSize):], v)
	}
	assert.Nil(t, p.AddrSpace().CopyOut(addr, b))
}

func readBack(t *testing.T, p *proc.Proc, addr rp.Tvirt, n rp.Tsize) []byte {
	b, err := p.AddrSpace().CopyIn(addr, n)
	assert.Nil(t, err)
	return b
}

func waitNWaiter(t *testing.T, wq *sched.WaitQ, n int) {
	for i := 0; i < 5000; i++ {
		if wq.NWaiter() == n {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("waitNWaiter %v never reached", n)
}

func TestReadZeroLength(t *testing.T) {
	rs, p, th := newTest(t)

	// zero-length short-circuits before the descriptor is resolved;
	// even a never-opened handle succeeds
	n, err := rs.Read(th, rp.Tfd(42), BUFA, 0)
	assert.Nil(t, err)
	assert.Equal(t, rp.Tsize(0), n)

	// and an empty blocking pipe doesn't suspend
	fd, _ := allocPipe(p, desc.FRead)
	n, err = rs.Read(th, fd, BUFA, 0)
	assert.Nil(t, err)
	assert.Equal(t, rp.Tsize(0), n)
	assert.Equal(t, int64(0), rs.Stats().Nblock.Read())
}

func TestReadTooBig(t *testing.T) {
	rs, p, th := newTest(t)
	fd, _ := allocFile(p, []byte("x"), desc.FRead)
	_, err := rs.Read(th, fd, BUFA, rp.MaxTransfer+1)
	assert.Equal(t, serr.TErrInval, err.Code())
}

func TestReadBadFd(t *testing.T) {
	rs, p, th := newTest(t)
	_, err := rs.Read(th, rp.Tfd(3), BUFA, 10)
	assert.Equal(t, serr.TErrBadFd, err.Code())

	fd, _ := allocFile(p, []byte("x"), desc.FRead)
	assert.Nil(t, p.FdTable().Close(fd))
	_, err = rs.Read(th, fd, BUFA, 10)
	assert.Equal(t, serr.TErrBadFd, err.Code())
}

func TestNotReadable(t *testing.T) {
	rs, p, th := newTest(t)

	// independent of blocking mode and of data availability
	for _, fl := range []desc.Tflag{desc.FWrite, desc.FWrite | desc.FNonblock} {
		for _, data := range []bool{false, true} {
			fd, pp := allocPipe(p, fl)
			if data {
				pp.Write([]byte("abc"))
			}
			_, err := rs.Read(th, fd, BUFA, 10)
			assert.Equal(t, serr.TErrNotReadable, err.Code(), "fl %b data %v", fl, data)
		}
	}
}

func TestIsDir(t *testing.T) {
	rs, p, th := newTest(t)
	fd, _ := allocFile(p, []byte("dirent bytes"), desc.FRead|desc.FDir)
	_, err := rs.Read(th, fd, BUFA, 10)
	assert.Equal(t, serr.TErrIsDir, err.Code())
}

func TestReadShort(t *testing.T) {
	rs, p, th := newTest(t)
	data := make([]byte, 40)
	for i := range data {
		data[i] = byte(i)
	}
	fd, _ := allocFile(p, data, desc.FRead)

	// 100 requested, 40 available: short transfer is not an error
	n, err := rs.Read(th, fd, BUFA, 100)
	assert.Nil(t, err)
	assert.Equal(t, rp.Tsize(40), n)
	assert.Equal(t, data, readBack(t, p, BUFA, 40))
}

func TestReadFault(t *testing.T) {
	rs, p, th := newTest(t)
	fd, _ := allocFile(p, []byte("hello"), desc.FRead)
	_, err := rs.Read(th, fd, BAD, 5)
	assert.Equal(t, serr.TErrFault, err.Code())
}

func TestNonblockEmptyPipe(t *testing.T) {
	rs, p, th := newTest(t)
	fd, _ := allocPipe(p, desc.FRead|desc.FNonblock)
	_, err := rs.Read(th, fd, BUFA, 10)
	assert.Equal(t, serr.TErrWouldBlock, err.Code())
	// returned immediately; no suspension happened
	assert.Equal(t, int64(0), rs.Stats().Nblock.Read())
}

func TestBlockingReadGetsData(t *testing.T) {
	rs, p, th := newTest(t)
	fd, pp := allocPipe(p, desc.FRead)

	ch := make(chan rp.Tsize)
	go func() {
		n, err := rs.Read(th, fd, BUFA, 100)
		assert.Nil(t, err)
		ch <- n
	}()
	waitNWaiter(t, pp.WaitQ(), 1)
	pp.Write([]byte("0123456789"))
	assert.Equal(t, rp.Tsize(10), <-ch)
	assert.Equal(t, []byte("0123456789"), readBack(t, p, BUFA, 10))
	assert.Equal(t, int64(1), rs.Stats().Nblock.Read())
}

func TestBlockingReadInterrupted(t *testing.T) {
	rs, p, th := newTest(t)
	fd, pp := allocPipe(p, desc.FRead)

	ch := make(chan *serr.Err)
	go func() {
		_, err := rs.Read(th, fd, BUFA, 100)
		ch <- err
	}()
	waitNWaiter(t, pp.WaitQ(), 1)
	th.Interrupt()
	err := <-ch
	assert.Equal(t, serr.TErrIntr, err.Code())
	assert.Equal(t, int64(1), rs.Stats().Nintr.Read())
}

func TestBlockingReadDisturbed(t *testing.T) {
	rs, p, th := newTest(t)
	fd, pp := allocPipe(p, desc.FRead)

	ch := make(chan *serr.Err)
	go func() {
		_, err := rs.Read(th, fd, BUFA, 100)
		ch <- err
	}()
	waitNWaiter(t, pp.WaitQ(), 1)
	// woken without read-readiness
	pp.WaitQ().Disturb()
	err := <-ch
	assert.Equal(t, serr.TErrWouldBlock, err.Code())
}

func TestPendingSignalShortCircuit(t *testing.T) {
	rs, p, th := newTest(t)
	fd, pp := allocPipe(p, desc.FRead)

	th.Interrupt()
	_, err := rs.Read(th, fd, BUFA, 10)
	assert.Equal(t, serr.TErrIntr, err.Code())
	assert.Equal(t, 0, pp.WaitQ().NWaiter())

	th.SigClear()
	pp.Write([]byte("ab"))
	n, err := rs.Read(th, fd, BUFA, 10)
	assert.Nil(t, err)
	assert.Equal(t, rp.Tsize(2), n)
}

func TestReadvNegativeCount(t *testing.T) {
	rs, p, th := newTest(t)
	fd, _ := allocFile(p, []byte("x"), desc.FRead)
	_, err := rs.Readv(th, fd, IOVA, -1)
	assert.Equal(t, serr.TErrInval, err.Code())
}

func TestReadvCeiling(t *testing.T) {
	rs, p, th := newTest(t)
	fd, _ := allocFile(p, []byte("x"), desc.FRead)
	_, err := rs.Readv(th, fd, IOVA, param.Conf.Readv.MAX_IOV+1)
	assert.Equal(t, serr.TErrFault, err.Code())
}

func TestReadvBadIovAddr(t *testing.T) {
	rs, p, th := newTest(t)
	fd, _ := allocFile(p, []byte("x"), desc.FRead)
	_, err := rs.Readv(th, fd, BAD, 2)
	assert.Equal(t, serr.TErrFault, err.Code())

	// the descriptor array is copied in before the handle is resolved
	_, err = rs.Readv(th, rp.Tfd(42), BAD, 2)
	assert.Equal(t, serr.TErrFault, err.Code())
}

func TestReadvTotalOverflow(t *testing.T) {
	rs, p, th := newTest(t)
	fd, pp := allocPipe(p, desc.FRead)
	pp.Write([]byte("untouched"))

	putIovecs(t, p, IOVA, []mem.Iovec{
		{Base: BUFA, Len: rp.Tsize(rp.MaxVecTotal)},
		{Base: BUFB, Len: 1},
	})
	_, err := rs.Readv(th, fd, IOVA, 2)
	assert.Equal(t, serr.TErrInval, err.Code())
	// rejected before any transfer began
	assert.Equal(t, 9, pp.NBytes())
}

func TestReadvBasic(t *testing.T) {
	rs, p, th := newTest(t)
	data := make([]byte, 100)
	for i := range data {
		data[i] = byte(i)
	}
	fd, _ := allocFile(p, data, desc.FRead)

	putIovecs(t, p, IOVA, []mem.Iovec{
		{Base: BUFA, Len: 30},
		{Base: BUFB, Len: 70},
	})
	n, err := rs.Readv(th, fd, IOVA, 2)
	assert.Nil(t, err)
	assert.Equal(t, rp.Tsize(100), n)
	assert.Equal(t, data[0:30], readBack(t, p, BUFA, 30))
	assert.Equal(t, data[30:100], readBack(t, p, BUFB, 70))
}

func TestReadvZeroLenSegment(t *testing.T) {
	rs, p, th := newTest(t)
	fd, _ := allocFile(p, []byte("abcdef"), desc.FRead)

	putIovecs(t, p, IOVA, []mem.Iovec{
		{Base: BUFA, Len: 0},
		{Base: BUFA, Len: 6},
	})
	n, err := rs.Readv(th, fd, IOVA, 2)
	assert.Nil(t, err)
	assert.Equal(t, rp.Tsize(6), n)
	assert.Equal(t, []byte("abcdef"), readBack(t, p, BUFA, 6))
}

func TestReadvSecondSegmentFault(t *testing.T) {
	rs, p, th := newTest(t)
	fd, pp := allocPipe(p, desc.FRead)
	data := make([]byte, 100)
	for i := range data {
		data[i] = byte(i)
	}
	pp.Write(data)

	putIovecs(t, p, IOVA, []mem.Iovec{
		{Base: BUFA, Len: 50},
		{Base: BAD, Len: 50},
	})
	_, err := rs.Readv(th, fd, IOVA, 2)
	assert.Equal(t, serr.TErrFault, err.Code())

	// the first segment's transfer had committed, but no count reports it
	assert.Equal(t, data[0:50], readBack(t, p, BUFA, 50))
	assert.Equal(t, 50, pp.NBytes())
}

func TestReadvBlocksPerSegment(t *testing.T) {
	rs, p, th := newTest(t)
	fd, pp := allocPipe(p, desc.FRead)

	putIovecs(t, p, IOVA, []mem.Iovec{
		{Base: BUFA, Len: 50},
		{Base: BUFB, Len: 50},
	})
	ch := make(chan rp.Tsize)
	go func() {
		n, err := rs.Readv(th, fd, IOVA, 2)
		assert.Nil(t, err)
		ch <- n
	}()

	first := make([]byte, 50)
	second := make([]byte, 50)
	for i := range first {
		first[i] = 'a'
		second[i] = 'b'
	}

	// the producer delivers one segment's worth at a time; the reader
	// must re-enter the blocking protocol between segments
	waitNWaiter(t, pp.WaitQ(), 1)
	pp.Write(first)
	waitNWaiter(t, pp.WaitQ(), 1)
	pp.Write(second)

	assert.Equal(t, rp.Tsize(100), <-ch)
	assert.Equal(t, first, readBack(t, p, BUFA, 50))
	assert.Equal(t, second, readBack(t, p, BUFB, 50))
	assert.Equal(t, int64(2), rs.Stats().Nblock.Read())
}

func TestPreadZeroLength(t *testing.T) {
	rs, _, th := newTest(t)
	n, err := rs.Pread(th, rp.Tfd(42), BUFA, 0, 0)
	assert.Nil(t, err)
	assert.Equal(t, rp.Tsize(0), n)
}

func TestPreadNegativeOffset(t *testing.T) {
	rs, p, th := newTest(t)
	// argument checks precede descriptor resolution: a bad handle with
	// a negative offset still reports the offset
	_, err := rs.Pread(th, rp.Tfd(42), BUFA, 10, -1)
	assert.Equal(t, serr.TErrInval, err.Code())

	fd, _ := allocFile(p, []byte("x"), desc.FRead)
	_, err = rs.Pread(th, fd, BUFA, 10, -1)
	assert.Equal(t, serr.TErrInval, err.Code())
}

func TestPreadNonSeekable(t *testing.T) {
	rs, p, th := newTest(t)
	fd, pp := allocPipe(p, desc.FRead)
	pp.Write([]byte("data ready"))

	_, err := rs.Pread(th, fd, BUFA, 4, 0)
	assert.Equal(t, serr.TErrInval, err.Code())
	// the transfer was never attempted
	assert.Equal(t, 10, pp.NBytes())
}

func TestPreadLeavesCursor(t *testing.T) {
	rs, p, th := newTest(t)
	fd, _ := allocFile(p, []byte("0123456789"), desc.FRead)

	n, err := rs.Pread(th, fd, BUFA, 4, 6)
	assert.Nil(t, err)
	assert.Equal(t, rp.Tsize(4), n)
	assert.Equal(t, []byte("6789"), readBack(t, p, BUFA, 4))

	// the unpositioned cursor still starts at the beginning
	n, err = rs.Read(th, fd, BUFB, 4)
	assert.Nil(t, err)
	assert.Equal(t, rp.Tsize(4), n)
	assert.Equal(t, []byte("0123"), readBack(t, p, BUFB, 4))
}

func TestPreadPastEnd(t *testing.T) {
	rs, p, th := newTest(t)
	fd, _ := allocFile(p, []byte("short"), desc.FRead)
	n, err := rs.Pread(th, fd, BUFA, 10, 1000)
	assert.Nil(t, err)
	assert.Equal(t, rp.Tsize(0), n)
}

func TestStats(t *testing.T) {
	rs, p, th := newTest(t)
	fd, _ := allocFile(p, []byte("0123456789"), desc.FRead)

	for i := 0; i < 5; i++ {
		_, err := rs.Pread(th, fd, BUFA, 10, 0)
		assert.Nil(t, err)
	}
	st := rs.Stats()
	db.DPrintf(db.TEST, "stats %v", st)
	assert.Equal(t, int64(5), st.Npread.Read())
	assert.Equal(t, int64(50), st.Tbytes.Read())
	assert.Equal(t, 5, st.Lat.N())
	assert.True(t, st.Lat.Percentile(99) >= st.Lat.Percentile(50))
}
