package stats

import (
	"fmt"
	"sync/atomic"
)

const STATS = true

type Tcounter int64

func (c *Tcounter) Inc(v int64) {
	if STATS {
		atomic.AddInt64((*int64)(c), v)
	}
}

func (c *Tcounter) Read() int64 {
	if STATS {
		return atomic.LoadInt64((*int64)(c))
	}
	return 0
}

// StatInfo counts read-path operations and their outcomes.
type StatInfo struct {
	Nread       Tcounter
	Nreadv      Tcounter
	Npread      Tcounter
	Nblock      Tcounter
	Nintr       Tcounter
	Nwouldblock Tcounter
	Tbytes      Tcounter

	Lat Tlatency
}

func NewStatInfo() *StatInfo {
	return &StatInfo{}
}

func (si *StatInfo) String() string {
	return fmt.Sprintf("{Nread: %v Nreadv: %v Npread: %v Nblock: %v Nintr: %v Nwouldblock: %v Tbytes: %v Lat: %v}",
		si.Nread.Read(), si.Nreadv.Read(), si.Npread.Read(), si.Nblock.Read(),
		si.Nintr.Read(), si.Nwouldblock.Read(), si.Tbytes.Read(), si.Lat.String())
}
