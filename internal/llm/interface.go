package llm

import "context"

// Property describes one field of an extraction schema. Array
// properties may carry item properties for arrays of objects; without
// them the array is rendered as an array of strings.
type Property struct {
	Name  string     `json:"name"`
	Type  string     `json:"type"` // string, number, integer, boolean, array
	Items []Property `json:"items,omitempty"`
}

// Schema is the field schema handed to the structured extraction
// service. The service boundary speaks schema-as-data; callers convert
// results into typed candidate records immediately.
type Schema struct {
	Name       string     `json:"name"`
	Properties []Property `json:"properties"`
}

// Keys returns the property names of the schema
func (s Schema) Keys() []string {
	keys := make([]string, 0, len(s.Properties))
	for _, p := range s.Properties {
		keys = append(keys, p.Name)
	}
	return keys
}

// Provider defines the interface for structured extraction providers
type Provider interface {
	// Extract processes an HTML fragment and returns a best-effort
	// key/value record matching the schema
	Extract(ctx context.Context, fragment string, schema Schema) (map[string]interface{}, error)

	// IsHealthy checks if the provider is healthy and available
	IsHealthy(ctx context.Context) error

	// GetProviderName returns the name of the provider
	GetProviderName() string
}
