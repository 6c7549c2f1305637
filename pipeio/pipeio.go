// File: pipeio/pipeio.go
//
// Package pipeio wraps the FIFO lifecycle and open-ordering rules of
// spec.md §4.5/§6, grounded on the original server's host_thread_func
// and the client's pacman_connect: create with mkfifo after removing any
// stale file, open the rendezvous pipe read-write so the server's read
// end never observes EOF, and open a session's notif pipe for writing
// before its request pipe (opened non-blocking) for reading.
package pipeio

import (
	"errors"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// CreateFIFO removes any stale file at path and creates a fresh FIFO
// with mode 0666, matching spec.md §6's filesystem contract.
func CreateFIFO(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return unix.Mkfifo(path, 0666)
}

// OpenRendezvous opens the registration FIFO read-write. Opening for
// read-write (rather than read-only) keeps a writer end perpetually
// open on the server side, so the read end never sees EOF when the
// last connecting client closes its own write end.
func OpenRendezvous(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_RDWR, 0)
}

// OpenNotifForWrite opens a session's notif pipe for writing. Must be
// called before OpenRequestForRead for the same session: the client
// blocks on its own notif-pipe open until the server performs this
// open, and only then does the client's connect call return.
func OpenNotifForWrite(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_WRONLY, 0)
}

// OpenRequestForRead opens a session's request pipe non-blocking, so
// the session's dispatch loop can poll it every tick without blocking
// when the client has not yet written anything.
func OpenRequestForRead(path string) (*os.File, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, err
	}
	return os.NewFile(uintptr(fd), path), nil
}

// IsBrokenPipe reports whether err represents a broken-pipe write
// failure, the terminal (but not fatal-to-the-process) condition
// spec.md §4.3 says must flip a session to its stopped state.
func IsBrokenPipe(err error) bool {
	return errors.Is(err, syscall.EPIPE)
}

// IsWouldBlock reports whether err is the "no data available right
// now" condition a non-blocking read on an empty pipe returns, treated
// by spec.md §5 as "no input this tick" rather than an error.
func IsWouldBlock(err error) bool {
	return errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.EWOULDBLOCK)
}

// Unlink removes the FIFO at path, ignoring a not-exist error. Used for
// best-effort cleanup on process exit (spec.md §6).
func Unlink(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
