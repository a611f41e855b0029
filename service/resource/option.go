package resource

import (
	"io"
	"strings"

	"github.com/viant/afs"
)

// Option configures a resource service
type Option func(s *Service)

// WithFs sets the file system used for non-registered schemes
func WithFs(fs afs.Service) Option {
	return func(s *Service) {
		s.fs = fs
	}
}

// WithConsole sets the streams backing debug:// resources
func WithConsole(in io.Reader, out io.Writer) Option {
	return func(s *Service) {
		s.console = NewConsole(in, out)
	}
}

// WithHandler registers a handler for scheme
func WithHandler(scheme string, handler Handler) Option {
	return func(s *Service) {
		s.handlers[strings.ToLower(scheme)] = handler
	}
}
