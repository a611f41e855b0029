package procexec

import (
	"context"
	"fmt"

	"github.com/viant/afs"
	"github.com/viant/procexec/internal/env"
	"github.com/viant/procexec/service/loader"
	"github.com/viant/procexec/service/memory"
	mmemory "github.com/viant/procexec/service/messaging/memory"
	"github.com/viant/procexec/service/processor"
	"github.com/viant/procexec/service/scheduler"
	"gopkg.in/yaml.v3"
)

// Config is a serialisable representation of the service configuration. It
// can be populated from JSON or YAML; DefaultConfig values apply to every
// field the document omits.
type Config struct {
	Loader    loader.Config    `json:"loader" yaml:"loader"`
	Memory    memory.Config    `json:"memory" yaml:"memory"`
	Scheduler scheduler.Config `json:"scheduler" yaml:"scheduler"`
	Processor processor.Config `json:"processor" yaml:"processor"`
	Queue     mmemory.Config   `json:"queue" yaml:"queue"`
	// SnapshotURL selects the file snapshot store; empty keeps snapshots in memory.
	SnapshotURL string `json:"snapshotURL,omitempty" yaml:"snapshotURL,omitempty"`
}

// DefaultConfig returns a Config populated with the package defaults.
func DefaultConfig() *Config {
	return &Config{
		Loader:    loader.DefaultConfig(),
		Memory:    memory.DefaultConfig(),
		Scheduler: scheduler.DefaultConfig(),
		Processor: processor.DefaultConfig(),
		Queue:     mmemory.DefaultConfig(),
	}
}

// Validate returns an error describing the first invalid setting or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if err := c.Loader.Validate(); err != nil {
		return err
	}
	if c.Memory.Base == 0 {
		return fmt.Errorf("memory.base must be non-zero")
	}
	if c.Memory.Size < memory.ClusterSize {
		return fmt.Errorf("memory.size must be at least %d", memory.ClusterSize)
	}
	if c.Scheduler.Quantum <= 0 {
		return fmt.Errorf("scheduler.quantum must be > 0")
	}
	if c.Processor.WorkerCount <= 0 {
		return fmt.Errorf("processor.workers must be > 0")
	}
	if c.Queue.QueueBuffer <= 0 {
		return fmt.Errorf("queue.queueBuffer must be > 0")
	}
	if c.Queue.MaxRetries < 0 {
		return fmt.Errorf("queue.maxRetries must be >= 0")
	}
	return nil
}

// LoadConfig reads a YAML configuration from URL on top of DefaultConfig.
// ${env.KEY} references are replaced with environment values before decoding.
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	data, err := afs.New().DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %v: %w", URL, err)
	}
	ret := DefaultConfig()
	if err = yaml.Unmarshal([]byte(env.Expand(string(data))), ret); err != nil {
		return nil, fmt.Errorf("failed to decode config %v: %w", URL, err)
	}
	if err = ret.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %v: %w", URL, err)
	}
	return ret, nil
}
