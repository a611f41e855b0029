package procexec

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/viant/procexec/runtime/execution"
	"github.com/viant/procexec/service/dao"
	"github.com/viant/procexec/service/dao/snapshot"
	"github.com/viant/procexec/service/event"
	sfs "github.com/viant/procexec/service/dao/snapshot/fs"
	smemory "github.com/viant/procexec/service/dao/snapshot/memory"
	"github.com/viant/procexec/service/loader"
	"github.com/viant/procexec/service/memory"
	"github.com/viant/procexec/service/messaging"
	mmemory "github.com/viant/procexec/service/messaging/memory"
	"github.com/viant/procexec/service/processor"
	"github.com/viant/procexec/service/resource"
	"github.com/viant/procexec/service/scheduler"
)

// Service wires the loader to memory, resources and the scheduler.
type Service struct {
	config    *Config
	memory    memory.Memory
	resources *resource.Service
	section   *scheduler.Section
	scheduler *scheduler.Service
	loader    *loader.Service
	queue     messaging.Queue[processor.Request]
	processor *processor.Service
	snapshots snapshot.Service
	events    *event.Service
	onCreated func(*event.Event[execution.Snapshot])
	wg        sync.WaitGroup
}

// notifier publishes a created event after each registration. Events that do
// not fit the queue are dropped so registration never waits on a listener.
type notifier struct {
	scheduler.Registrar
	publisher *event.Publisher[execution.Snapshot]
}

func (n *notifier) Register(aContext *execution.Context) {
	n.Registrar.Register(aContext)
	created := event.NewEvent(&event.Context{ContextID: aContext.ID, EventType: event.TypeCreated, Service: "loader"}, *aContext.Snapshot())
	if err := n.publisher.TryPublish(created); err != nil {
		log.Printf("failed to publish created event for %v: %v", aContext.ID, err)
	}
}

// Execute loads source and registers a new context when the image is valid.
// Rejected images leave no trace.
func (s *Service) Execute(ctx context.Context, source, workingDirectory string, args []string) {
	s.loader.Execute(ctx, source, workingDirectory, args)
}

// Spawn queues an Execute request for the processor workers started by Start.
func (s *Service) Spawn(ctx context.Context, source, workingDirectory string, args []string) error {
	return s.processor.Submit(ctx, &processor.Request{
		Source:           source,
		WorkingDirectory: workingDirectory,
		Args:             append([]string(nil), args...),
	})
}

// Contexts returns the run set
func (s *Service) Contexts() []*execution.Context {
	return s.scheduler.Contexts()
}

// Snapshot records the current run set in the snapshot store and returns
// the stored records matching parameters.
func (s *Service) Snapshot(ctx context.Context, parameters ...*dao.Parameter) ([]*execution.Snapshot, error) {
	for _, aContext := range s.scheduler.Contexts() {
		if err := s.snapshots.Save(ctx, aContext.Snapshot()); err != nil {
			return nil, fmt.Errorf("failed to save context %v: %w", aContext.ID, err)
		}
	}
	return s.snapshots.List(ctx, parameters...)
}

// Start launches the processor workers and the preemption loop; it returns
// immediately.
func (s *Service) Start(ctx context.Context) error {
	if err := s.processor.Start(ctx); err != nil {
		return err
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.scheduler.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("scheduler stopped: %v", err)
		}
	}()
	return nil
}

// Shutdown stops the workers and the preemption loop.
func (s *Service) Shutdown() {
	s.processor.Shutdown()
	s.scheduler.Shutdown()
	s.wg.Wait()
	s.events.StopListeners()
}

// Config returns the effective configuration
func (s *Service) Config() *Config {
	return s.config
}

// Scheduler returns the scheduler
func (s *Service) Scheduler() *scheduler.Service {
	return s.scheduler
}

// Memory returns physical memory
func (s *Service) Memory() memory.Memory {
	return s.memory
}

// Resources returns the resource service
func (s *Service) Resources() *resource.Service {
	return s.resources
}

// Snapshots returns the snapshot store
func (s *Service) Snapshots() snapshot.Service {
	return s.snapshots
}

func (s *Service) init(options []Option) error {
	for _, option := range options {
		option(s)
	}
	if err := s.config.Validate(); err != nil {
		return err
	}
	if s.memory == nil {
		s.memory = memory.New(s.config.Memory)
	}
	if s.resources == nil {
		s.resources = resource.New()
	}
	if s.section == nil {
		s.section = scheduler.Default
	}
	if s.queue == nil {
		s.queue = mmemory.NewQueue[processor.Request](s.config.Queue)
	}
	if s.snapshots == nil {
		if err := s.ensureSnapshots(); err != nil {
			return err
		}
	}
	s.scheduler = scheduler.New(scheduler.WithConfig(s.config.Scheduler), scheduler.WithSection(s.section))
	s.events = event.New(event.WithQueueConfig(func(string) mmemory.Config { return s.config.Queue }))
	var registrar scheduler.Registrar = s.scheduler
	if s.onCreated != nil {
		registrar = &notifier{Registrar: s.scheduler, publisher: event.PublisherOf[execution.Snapshot](s.events)}
		event.SetListenerOf(s.events, s.onCreated)
	}
	s.loader = loader.New(s.memory, s.resources, registrar, loader.WithConfig(s.config.Loader))
	var err error
	s.processor, err = processor.New(
		processor.WithExecutor(s.loader),
		processor.WithMessageQueue(s.queue),
		processor.WithConfig(s.config.Processor),
	)
	return err
}

func (s *Service) ensureSnapshots() error {
	if s.config.SnapshotURL == "" {
		s.snapshots = smemory.New()
		return nil
	}
	snapshots, err := sfs.New(s.resources.Fs(), s.config.SnapshotURL)
	if err != nil {
		return err
	}
	s.snapshots = snapshots
	return nil
}

// New creates a service with DefaultConfig
func New(options ...Option) (*Service, error) {
	return NewFromConfig(DefaultConfig(), options...)
}

// NewFromConfig creates a service from config; options are applied on top of it.
func NewFromConfig(config *Config, options ...Option) (*Service, error) {
	if config == nil {
		config = DefaultConfig()
	}
	cloned := *config
	ret := &Service{config: &cloned}
	if err := ret.init(options); err != nil {
		return nil, err
	}
	return ret, nil
}
