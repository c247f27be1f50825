package desc

import (
	"sync"

	rp "kread/readp"
	"kread/serr"
)

const (
	MAXFD = 20
)

// Table maps a process's numeric handles to open descriptions.
type Table struct {
	sync.Mutex
	fds     []*Desc
	freefds map[int]bool
}

func NewTable() *Table {
	ft := &Table{}
	ft.fds = make([]*Desc, 0, MAXFD)
	ft.freefds = make(map[int]bool)
	return ft
}

// Alloc hands out a closed slot, growing the table if none is free.
func (ft *Table) Alloc(d *Desc) rp.Tfd {
	ft.Lock()
	defer ft.Unlock()

	if len(ft.freefds) > 0 {
		for i := range ft.freefds {
			delete(ft.freefds, i)
			ft.fds[i] = d
			return rp.Tfd(i)
		}
	}

	// no free one
	ft.fds = append(ft.fds, d)
	return rp.Tfd(len(ft.fds) - 1)
}

func (ft *Table) Close(fd rp.Tfd) *serr.Err {
	ft.Lock()
	defer ft.Unlock()

	if _, err := ft.lookupL(fd); err != nil {
		return err
	}
	ft.fds[fd] = nil
	ft.freefds[int(fd)] = true
	return nil
}

// Caller must hold ft lock.
func (ft *Table) lookupL(fd rp.Tfd) (*Desc, *serr.Err) {
	if fd < 0 || int(fd) >= len(ft.fds) || ft.fds[fd] == nil {
		return nil, serr.NewErr(serr.TErrBadFd, fd)
	}
	return ft.fds[fd], nil
}

func (ft *Table) Lookup(fd rp.Tfd) (*Desc, *serr.Err) {
	ft.Lock()
	defer ft.Unlock()

	return ft.lookupL(fd)
}

// LookupReadable resolves fd to a description that may legally be read
// from: open, readable, and not a directory, checked in that order.
// Reading directory bytes is never permitted through this path.
func (ft *Table) LookupReadable(fd rp.Tfd) (*Desc, *serr.Err) {
	d, err := ft.Lookup(fd)
	if err != nil {
		return nil, err
	}
	if !d.IsReadable() {
		return nil, serr.NewErr(serr.TErrNotReadable, fd)
	}
	if d.IsDirectory() {
		return nil, serr.NewErr(serr.TErrIsDir, fd)
	}
	return d, nil
}
