package resource

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
)

// Service resolves URLs to resources.
type Service struct {
	fs       afs.Service
	console  *Console
	handlers map[string]Handler
	mux      sync.RWMutex
}

var _ Opener = (*Service)(nil)

// Open opens URL, reporting false when it cannot be opened.
func (s *Service) Open(ctx context.Context, URL string) (Resource, bool) {
	ret, err := s.OpenResource(ctx, URL)
	if err != nil {
		return nil, false
	}
	return ret, true
}

// OpenResource opens URL and reports why it failed.
func (s *Service) OpenResource(ctx context.Context, URL string) (Resource, error) {
	if URL == "" {
		return nil, fmt.Errorf("resource URL was empty")
	}
	scheme := url.Scheme(URL, file.Scheme)
	if handler := s.handler(scheme); handler != nil {
		ret, err := handler(ctx, URL)
		if err != nil {
			return nil, err
		}
		if ret == nil {
			return nil, fmt.Errorf("%v handler returned no resource for %v", scheme, URL)
		}
		return ret, nil
	}
	reader, err := s.fs.OpenURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open %v: %w", URL, err)
	}
	return &stream{location: URL, reader: reader}, nil
}

// Register installs handler for scheme, replacing any previous one.
func (s *Service) Register(scheme string, handler Handler) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.handlers[strings.ToLower(scheme)] = handler
}

// Fs returns the underlying file system service.
func (s *Service) Fs() afs.Service {
	return s.fs
}

func (s *Service) handler(scheme string) Handler {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.handlers[strings.ToLower(scheme)]
}

// New creates a resource service
func New(options ...Option) *Service {
	ret := &Service{handlers: map[string]Handler{}}
	for _, option := range options {
		option(ret)
	}
	if ret.fs == nil {
		ret.fs = afs.New()
	}
	if ret.console == nil {
		ret.console = NewConsole(os.Stdin, os.Stdout)
	}
	if _, ok := ret.handlers[ConsoleScheme]; !ok {
		ret.handlers[ConsoleScheme] = ret.console.Open
	}
	return ret
}
