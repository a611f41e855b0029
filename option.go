package procexec

import (
	"github.com/viant/procexec/runtime/execution"
	"github.com/viant/procexec/service/dao/snapshot"
	"github.com/viant/procexec/service/event"
	"github.com/viant/procexec/service/memory"
	"github.com/viant/procexec/service/messaging"
	"github.com/viant/procexec/service/processor"
	"github.com/viant/procexec/service/resource"
	"github.com/viant/procexec/service/scheduler"
	"github.com/viant/procexec/tracing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option configures a Service
type Option func(s *Service)

// WithMemory sets the physical memory used for images, regions and argument strings
func WithMemory(mem memory.Memory) Option {
	return func(s *Service) {
		s.memory = mem
	}
}

// WithResources sets the resource service images and consoles are opened with
func WithResources(resources *resource.Service) Option {
	return func(s *Service) {
		s.resources = resources
	}
}

// WithSection sets the critical section guarding the run set
func WithSection(section *scheduler.Section) Option {
	return func(s *Service) {
		s.section = section
	}
}

// WithQueue sets the spawn request queue
func WithQueue(queue messaging.Queue[processor.Request]) Option {
	return func(s *Service) {
		s.queue = queue
	}
}

// WithSnapshotDAO sets the snapshot store
func WithSnapshotDAO(dao snapshot.Service) Option {
	return func(s *Service) {
		s.snapshots = dao
	}
}

// WithCreatedListener receives a snapshot of every context the loader registers
func WithCreatedListener(handler func(*event.Event[execution.Snapshot])) Option {
	return func(s *Service) {
		s.onCreated = handler
	}
}

// WithProcessorWorkers sets the number of spawn workers
func WithProcessorWorkers(count int) Option {
	return func(s *Service) {
		s.config.Processor.WorkerCount = count
	}
}

// WithDebug logs the reason each rejected load was rejected
func WithDebug(debug bool) Option {
	return func(s *Service) {
		s.config.Loader.Debug = debug
	}
}

// WithTracing configures OpenTelemetry tracing for the service. If outputFile is empty the
// stdout exporter is used; otherwise traces are written to the supplied file path. The first
// successful initialisation wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		_ = tracing.Init(serviceName, serviceVersion, outputFile)
	}
}

// WithTracingExporter configures OpenTelemetry tracing using a custom SpanExporter.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		_ = tracing.InitWithExporter(serviceName, serviceVersion, exporter)
	}
}
