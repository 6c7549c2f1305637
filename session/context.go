// File: session/context.go
//
// Package session implements the registrar, the bounded queue's consumer
// side (worker pool), the per-level dispatch loop, and the pacman/ghost
// tick actors of spec.md §4.5-§4.8.
package session

import "io"

// Context is the session context of spec.md §3: the client identity,
// its two open pipe endpoints, the absolute paths (kept for cleanup),
// and the levels directory it will play through. The registrar
// allocates one and enqueues it; the worker pool destroys it when the
// session finishes. The pipe endpoints are narrowed to io.ReadCloser /
// io.WriteCloser rather than *os.File so the dispatch loop can be
// exercised against fakes in tests without real FIFOs.
type Context struct {
	ClientID int

	RequestFile io.ReadCloser  // request-read, opened non-blocking
	NotifFile   io.WriteCloser // notif-write

	RequestPipePath string
	NotifPipePath   string

	LevelsDir string
}

// Close releases both pipe file descriptors. Safe to call once; callers
// must not reuse a Context afterward.
func (c *Context) Close() {
	if c.RequestFile != nil {
		c.RequestFile.Close()
	}
	if c.NotifFile != nil {
		c.NotifFile.Close()
	}
}
