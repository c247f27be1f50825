package proc

import (
	"sync"

	"kread/desc"
	"kread/mem"
)

// Proc owns the per-process state the read path consumes: the
// descriptor table and the address space. The embedded mutex is the
// process big lock; the caller holds it across a whole call by
// convention, so no other thread of the same process mutates the table
// or a description's cursor mid-call.
type Proc struct {
	sync.Mutex
	uname string
	fdt   *desc.Table
	as    *mem.AddrSpace
}

func NewProc(uname string) *Proc {
	return &Proc{uname: uname, fdt: desc.NewTable(), as: mem.NewAddrSpace()}
}

func (p *Proc) Uname() string {
	return p.uname
}

func (p *Proc) FdTable() *desc.Table {
	return p.fdt
}

func (p *Proc) AddrSpace() *mem.AddrSpace {
	return p.as
}
