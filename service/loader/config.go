package loader

import (
	"fmt"

	"github.com/viant/procexec/service/memory"
	"github.com/viant/procexec/service/resource"
)

// Config represents loader configuration
type Config struct {
	// VirtualAddress is where the loadable segment is mapped in every process.
	VirtualAddress uint64 `json:"virtualAddress" yaml:"virtualAddress"`

	// HeaderSize is the number of leading image bytes that are never mapped.
	HeaderSize uint64 `json:"headerSize" yaml:"headerSize"`

	// ConsoleURL is opened for descriptors 0, 1 and 2.
	ConsoleURL string `json:"consoleURL" yaml:"consoleURL"`

	// Debug logs the reason a load was rejected.
	Debug bool `json:"debug" yaml:"debug"`
}

// DefaultConfig returns the default loader configuration
func DefaultConfig() Config {
	return Config{
		VirtualAddress: 0x80000000,
		HeaderSize:     memory.ClusterSize,
		ConsoleURL:     resource.ConsoleScheme + "://",
	}
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if c.VirtualAddress == 0 {
		return fmt.Errorf("loader.virtualAddress must be non-zero")
	}
	if c.HeaderSize == 0 {
		return fmt.Errorf("loader.headerSize must be > 0")
	}
	if c.ConsoleURL == "" {
		return fmt.Errorf("loader.consoleURL was empty")
	}
	return nil
}
