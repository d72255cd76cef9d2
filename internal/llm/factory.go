package llm

import (
	"fmt"

	"starlift/internal/config"
)

// Provider constructors register themselves by name (from their own
// package init) so the factory can stay on the interface side of the
// package boundary.
var constructors = map[string]func(*config.Config) Provider{}

// RegisterProvider registers a provider constructor under a name
func RegisterProvider(name string, fn func(*config.Config) Provider) {
	constructors[name] = fn
}

// Factory creates extraction provider instances
type Factory struct {
	config *config.Config
}

// NewFactory creates a new provider factory instance
func NewFactory(cfg *config.Config) *Factory {
	return &Factory{
		config: cfg,
	}
}

// CreateProvider creates a provider for the configured name
func (f *Factory) CreateProvider() (Provider, error) {
	fn, ok := constructors[f.config.LLM.Provider]
	if !ok {
		return nil, fmt.Errorf("unsupported extraction provider: %s", f.config.LLM.Provider)
	}
	return fn(f.config), nil
}

// GetSupportedProviders returns the list of registered provider names
func (f *Factory) GetSupportedProviders() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	return names
}
