package resource

import (
	"context"
	"io"
	"sync"
)

// Console is the shared debug console. Every Open returns an independent
// handle; reads and writes on all handles are serialised.
type Console struct {
	mux sync.Mutex
	in  io.Reader
	out io.Writer
}

// NewConsole creates a console reading from in and writing to out.
func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{in: in, out: out}
}

// Open returns a new console handle.
func (c *Console) Open(_ context.Context, URL string) (Resource, error) {
	return &consoleHandle{console: c, location: URL}, nil
}

type consoleHandle struct {
	console  *Console
	location string
	mux      sync.Mutex
	closed   bool
}

func (h *consoleHandle) URL() string { return h.location }

func (h *consoleHandle) Read(p []byte) (int, error) {
	if h.isClosed() {
		return 0, ErrClosed
	}
	if h.console.in == nil {
		return 0, io.EOF
	}
	h.console.mux.Lock()
	defer h.console.mux.Unlock()
	return h.console.in.Read(p)
}

func (h *consoleHandle) Write(p []byte) (int, error) {
	if h.isClosed() {
		return 0, ErrClosed
	}
	if h.console.out == nil {
		return len(p), nil
	}
	h.console.mux.Lock()
	defer h.console.mux.Unlock()
	return h.console.out.Write(p)
}

func (h *consoleHandle) Close() error {
	h.mux.Lock()
	defer h.mux.Unlock()
	h.closed = true
	return nil
}

func (h *consoleHandle) isClosed() bool {
	h.mux.Lock()
	defer h.mux.Unlock()
	return h.closed
}
