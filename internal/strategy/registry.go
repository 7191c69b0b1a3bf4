package strategy

import (
	"fmt"
	"sort"
	"sync"

	"github.com/jky-sys/Screener-3.0/internal/provider"
)

// StrategyFactory builds a strategy bound to a provider
type StrategyFactory func(p provider.Provider, cfg TrinityConfig) Strategy

var (
	registry     = make(map[string]StrategyFactory)
	registryLock sync.RWMutex
)

// Register adds a strategy factory under name
func Register(name string, factory StrategyFactory) {
	registryLock.Lock()
	defer registryLock.Unlock()
	registry[name] = factory
}

// Get builds the named strategy
func Get(name string, p provider.Provider, cfg TrinityConfig) (Strategy, error) {
	registryLock.RLock()
	factory, ok := registry[name]
	registryLock.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown strategy: %s (available: %v)", name, List())
	}

	return factory(p, cfg), nil
}

// List returns registered strategy names in sorted order
func List() []string {
	registryLock.RLock()
	defer registryLock.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	Register("trinity", func(p provider.Provider, cfg TrinityConfig) Strategy {
		return NewTrinityStrategy(cfg, p)
	})
}
