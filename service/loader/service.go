// Package loader creates processes: it reads an executable image, copies its
// loadable payload into a fresh physical region, validates the entry point
// against that region, assembles an execution context and hands it to the
// scheduler.
//
// Execute never reports failure to its caller. An image that cannot be read,
// parsed, placed or validated simply produces no context; any physical region
// allocated on the way is released before Execute returns.
package loader

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/viant/procexec/runtime/execution"
	"github.com/viant/procexec/service/image"
	"github.com/viant/procexec/service/memory"
	"github.com/viant/procexec/service/resource"
	"github.com/viant/procexec/service/scheduler"
	"github.com/viant/procexec/tracing"
	"golang.org/x/crypto/blake2b"
)

const (
	outcomeCreated  = "created"
	outcomeRejected = "rejected"
)

var (
	// ErrSourceUnavailable is returned when the image source cannot be opened.
	ErrSourceUnavailable = errors.New("loader: image source unavailable")

	// ErrImageTooSmall is returned when the image does not extend past its header page.
	ErrImageTooSmall = errors.New("loader: image has no payload")

	// ErrEntryOutOfBounds is returned when the entry point lies outside the mapped region.
	ErrEntryOutOfBounds = errors.New("loader: entry point outside mapped region")
)

// Service loads executable images into new contexts
type Service struct {
	config    Config
	memory    memory.Memory
	resources resource.Opener
	registrar scheduler.Registrar
}

// placement is the result of copying an image payload into physical memory.
type placement struct {
	physical    memory.Addr
	virtualSize uint64
	entry       uint64
	digest      string
}

// Execute loads source and, when the image is valid, registers a new context
// running in workingDirectory with args.
func (s *Service) Execute(ctx context.Context, source, workingDirectory string, args []string) {
	ctx, span := tracing.StartSpan(ctx, "loader.execute", "INTERNAL")
	aContext, err := s.execute(ctx, source, workingDirectory, args)
	attrs := map[string]string{"source": source, "outcome": outcomeCreated}
	if err != nil {
		attrs["outcome"] = outcomeRejected
		if s.config.Debug {
			log.Printf("loader: %v: %v", source, err)
		}
	} else {
		attrs["context.id"] = aContext.ID
	}
	span.WithAttributes(attrs)
	tracing.EndSpan(span, err)
}

func (s *Service) execute(ctx context.Context, source, workingDirectory string, args []string) (*execution.Context, error) {
	loaded, err := s.place(ctx, source)
	if err != nil {
		loaded = &placement{}
	}
	virtualAddress := s.config.VirtualAddress
	region := &execution.Region{
		PhysicalAddress: loaded.physical,
		VirtualAddress:  virtualAddress,
		VirtualSize:     loaded.virtualSize,
	}
	if loaded.physical == 0 || virtualAddress == 0 || loaded.virtualSize == 0 || !region.Contains(loaded.entry) {
		if loaded.physical != 0 {
			s.memory.Unalloc(loaded.physical)
		}
		if err == nil {
			err = fmt.Errorf("%w: entry %#x, region [%#x, +%#x)", ErrEntryOutOfBounds, loaded.entry, virtualAddress, loaded.virtualSize)
		}
		return nil, err
	}

	aContext, err := s.assemble(ctx, source, workingDirectory, args, loaded, region)
	if err != nil {
		s.memory.Unalloc(loaded.physical)
		return nil, err
	}
	s.registrar.Register(aContext)
	return aContext, nil
}

// place reads source into an allocator-backed buffer, validates it and copies
// the payload following the header page into a new physical region.
func (s *Service) place(ctx context.Context, source string) (*placement, error) {
	stream, ok := s.resources.Open(ctx, source)
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, source)
	}
	defer stream.Close()

	buffer := memory.NewBuffer(s.memory)
	defer buffer.Release()
	if _, err := buffer.ReadFrom(stream); err != nil {
		return nil, fmt.Errorf("failed to read %v: %w", source, err)
	}
	data, err := buffer.Bytes()
	if err != nil {
		return nil, err
	}
	img, err := image.Parse(buffer.Addr(), data)
	if err != nil {
		return nil, err
	}
	digest := blake2b.Sum256(data)

	headerSize := s.config.HeaderSize
	allocated := s.memory.AllocSize(img.Base)
	if allocated <= headerSize {
		return nil, fmt.Errorf("%w: %d bytes allocated, header takes %d", ErrImageTooSmall, allocated, headerSize)
	}
	ret := &placement{
		virtualSize: allocated - headerSize,
		entry:       img.Entry(),
		digest:      hex.EncodeToString(digest[:]),
	}
	src := img.Base + memory.Addr(headerSize)
	ret.physical = s.memory.Alloc(ret.virtualSize)
	if ret.physical == 0 {
		return nil, fmt.Errorf("failed to allocate %d bytes: %w", ret.virtualSize, memory.ErrOutOfMemory)
	}
	if err = s.memory.Copy(ret.physical, src, ret.virtualSize); err != nil {
		s.memory.Unalloc(ret.physical)
		return nil, fmt.Errorf("failed to copy payload: %w", err)
	}
	return ret, nil
}

// assemble builds the context. Every resource it acquires is released when it
// returns an error.
func (s *Service) assemble(ctx context.Context, source, workingDirectory string, args []string, loaded *placement, region *execution.Region) (*execution.Context, error) {
	stack, err := execution.NewStack(s.memory, source, args)
	if err != nil {
		return nil, fmt.Errorf("failed to build argument layout: %w", err)
	}
	aContext := execution.NewContext(loaded.entry, stack)
	aContext.AddRegion(region)
	aContext.Cwd = strings.Clone(workingDirectory)
	aContext.Path = strings.Clone(source)
	aContext.Args = append([]string(nil), args...)
	aContext.ImageDigest = loaded.digest
	for fd := 0; fd < 3; fd++ {
		if stdio, ok := s.resources.Open(ctx, s.config.ConsoleURL); ok {
			aContext.AddFile(fd, stdio)
		}
	}
	return aContext, nil
}

// New creates a loader
func New(mem memory.Memory, resources resource.Opener, registrar scheduler.Registrar, options ...Option) *Service {
	ret := &Service{
		config:    DefaultConfig(),
		memory:    mem,
		resources: resources,
		registrar: registrar,
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}
