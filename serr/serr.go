package serr

import (
	"errors"
	"fmt"
)

type Terror uint32

const (
	TErrNoError Terror = iota
	TErrBadFd
	TErrNotReadable
	TErrIsDir
	TErrInval
	TErrFault
	TErrNomem
	TErrWouldBlock
	TErrIntr

	// A non-read-path error from a collaborator, wrapped.
	TErrError
)

func (err Terror) String() string {
	switch err {
	case TErrNoError:
		return "no error"
	case TErrBadFd:
		return "bad file descriptor"
	case TErrNotReadable:
		return "not open for reading"
	case TErrIsDir:
		return "is a directory"
	case TErrInval:
		return "invalid argument"
	case TErrFault:
		return "bad address"
	case TErrNomem:
		return "out of memory"
	case TErrWouldBlock:
		return "would block"
	case TErrIntr:
		return "interrupted"
	case TErrError:
		return "error"
	default:
		return "unknown error"
	}
}

type Err struct {
	ErrCode Terror
	Obj     string
	Err     error
}

func NewErr(code Terror, obj interface{}) *Err {
	return &Err{code, fmt.Sprintf("%v", obj), nil}
}

func NewErrError(error error) *Err {
	return &Err{TErrError, "", error}
}

func (err *Err) Code() Terror {
	return err.ErrCode
}

func (err *Err) Unwrap() error {
	return err.Err
}

func (err *Err) Error() string {
	if err.Err != nil {
		return fmt.Sprintf("%v %v (%v)", err.ErrCode, err.Obj, err.Err)
	}
	return fmt.Sprintf("%v %v", err.ErrCode, err.Obj)
}

func (err *Err) IsErrBadFd() bool {
	return err.Code() == TErrBadFd
}

func (err *Err) IsErrWouldBlock() bool {
	return err.Code() == TErrWouldBlock
}

func (err *Err) IsErrIntr() bool {
	return err.Code() == TErrIntr
}

func (err *Err) IsErrFault() bool {
	return err.Code() == TErrFault
}

func IsErrCode(err error, code Terror) bool {
	var serr *Err
	if errors.As(err, &serr) {
		return serr.Code() == code
	}
	return false
}
