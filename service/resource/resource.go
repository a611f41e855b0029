// Package resource opens named byte sources. URLs are resolved by scheme:
// registered handlers (such as the debug:// console) take precedence, every
// other scheme is delegated to github.com/viant/afs.
package resource

import (
	"context"
	"errors"
	"io"
)

// ConsoleScheme names the console resource used for standard streams.
const ConsoleScheme = "debug"

var (
	// ErrReadOnly is returned by Write on resources opened for reading only.
	ErrReadOnly = errors.New("resource: read-only")

	// ErrClosed is returned by operations on a closed resource.
	ErrClosed = errors.New("resource: closed")
)

// Resource is an open byte stream.
type Resource interface {
	io.ReadWriteCloser

	// URL returns the location the resource was opened from.
	URL() string
}

// Opener opens resources by URL. The boolean result is false when the
// resource cannot be opened.
type Opener interface {
	Open(ctx context.Context, URL string) (Resource, bool)
}

// Handler opens a resource for a registered scheme.
type Handler func(ctx context.Context, URL string) (Resource, error)

// stream adapts a read-only afs reader.
type stream struct {
	location string
	reader   io.ReadCloser
	closed   bool
}

func (s *stream) URL() string { return s.location }

func (s *stream) Read(p []byte) (int, error) {
	if s.closed {
		return 0, ErrClosed
	}
	return s.reader.Read(p)
}

func (s *stream) Write([]byte) (int, error) {
	return 0, ErrReadOnly
}

func (s *stream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.reader.Close()
}

// NewStream wraps reader as a read-only resource located at URL.
func NewStream(URL string, reader io.ReadCloser) Resource {
	return &stream{location: URL, reader: reader}
}
