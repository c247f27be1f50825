package serr

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// Errno maps the taxonomy to the platform's error-reporting convention
// for the syscall entry layer. A description open without read
// permission reports EBADF, like a closed descriptor.
func (err *Err) Errno() syscall.Errno {
	switch err.Code() {
	case TErrBadFd, TErrNotReadable:
		return unix.EBADF
	case TErrIsDir:
		return unix.EISDIR
	case TErrInval:
		return unix.EINVAL
	case TErrFault:
		return unix.EFAULT
	case TErrNomem:
		return unix.ENOMEM
	case TErrWouldBlock:
		return unix.EAGAIN
	case TErrIntr:
		return unix.EINTR
	default:
		return unix.EIO
	}
}
