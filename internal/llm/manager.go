package llm

import (
	"context"
	"fmt"
	"sync"

	"starlift/internal/config"
	"starlift/internal/logging"
)

// Manager manages the extraction provider and its lifecycle. When no
// provider is available (typically: no API key configured) the pipeline
// keeps running in deterministic-only mode, so the manager degrades
// instead of failing.
type Manager struct {
	config   *config.Config
	factory  *Factory
	provider Provider
	logger   logging.Logger
	mu       sync.RWMutex
	healthy  bool
}

// NewManager creates a new extraction manager instance
func NewManager(cfg *config.Config) *Manager {
	return &Manager{
		config:  cfg,
		factory: NewFactory(cfg),
		logger:  logging.GetGlobalLogger(),
	}
}

// Start initializes the manager and creates the provider
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.logger.Info("Starting extraction manager", map[string]interface{}{
		"provider": m.config.LLM.Provider,
	})

	provider, err := m.factory.CreateProvider()
	if err != nil {
		return fmt.Errorf("failed to create extraction provider: %w", err)
	}

	m.provider = provider

	ctx, cancel := context.WithTimeout(context.Background(), m.config.LLM.Timeout)
	defer cancel()

	if err := m.provider.IsHealthy(ctx); err != nil {
		m.logger.Warn("Extraction provider health check failed - running deterministic-only", map[string]interface{}{
			"error": err.Error(),
		})
		m.healthy = false
		// Not an error: the selector falls back to deterministic extraction
	} else {
		m.healthy = true
		m.logger.Info("Extraction manager started successfully", map[string]interface{}{
			"provider": m.provider.GetProviderName(),
		})
	}

	return nil
}

// Stop shuts down the manager
func (m *Manager) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.logger.Info("Stopping extraction manager")
	m.provider = nil
	m.healthy = false
	return nil
}

// Available reports whether structured extraction can be attempted
func (m *Manager) Available() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.healthy && m.provider != nil
}

// Extract extracts a record from an HTML fragment using the configured
// provider. Callers should check Available first; an unavailable
// service is a normal operating mode, not an error condition.
func (m *Manager) Extract(ctx context.Context, fragment string, schema Schema) (map[string]interface{}, error) {
	m.mu.RLock()
	provider := m.provider
	healthy := m.healthy
	m.mu.RUnlock()

	if provider == nil {
		return nil, fmt.Errorf("extraction manager not started or provider not available")
	}

	if !healthy {
		return nil, fmt.Errorf("extraction provider is not available - check API key configuration (set LLM_API_KEY environment variable)")
	}

	return provider.Extract(ctx, fragment, schema)
}

// GetProviderName returns the name of the current provider
func (m *Manager) GetProviderName() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.provider != nil {
		return m.provider.GetProviderName()
	}
	return "none"
}
