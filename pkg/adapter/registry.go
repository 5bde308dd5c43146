package adapter

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// Factory builds a loader from its configuration.
type Factory func(cfg Config, logger *slog.Logger) Loader

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register adds a loader factory to the registry.
// Called by loader implementations in their init() functions.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// Get retrieves a loader factory by name.
func Get(name string) (Factory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[name]
	return f, ok
}

// NewLoader creates a new loader instance based on config type.
// The logger parameter is passed to the loader constructor (nil uses discard logger).
func NewLoader(cfg Config, logger *slog.Logger) (Loader, error) {
	if cfg.Type == "" {
		return nil, fmt.Errorf("loader type not specified")
	}

	factory, ok := Get(cfg.Type)
	if !ok {
		return nil, &UnknownLoaderError{
			Type:      cfg.Type,
			Available: ListLoaders(),
		}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return factory(cfg, logger), nil
}

// ListLoaders returns all registered loader names (sorted).
func ListLoaders() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks if a loader type is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[name]
	return ok
}

// UnknownLoaderError is returned when an unknown loader type is requested.
type UnknownLoaderError struct {
	Type      string
	Available []string
}

func (e *UnknownLoaderError) Error() string {
	return fmt.Sprintf("unknown loader type %q\nAvailable loaders: %v\nHint: Check loader in leapprep.yaml or the --loader flag", e.Type, e.Available)
}
