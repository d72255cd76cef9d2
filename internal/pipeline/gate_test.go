package pipeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGateNeverTripsWithZeroFound(t *testing.T) {
	gate := NewQualityGate("products", 0.05)
	assert.NoError(t, gate.Check())
}

func TestGateTripsAboveThreshold(t *testing.T) {
	gate := NewQualityGate("products", 0.05)
	gate.RecordFound(100)
	gate.RecordAccepted(94)

	err := gate.Check()
	require.Error(t, err)

	var skipErr *SkipRateError
	require.True(t, errors.As(err, &skipErr))
	assert.Equal(t, 100, skipErr.Found)
	assert.Equal(t, 94, skipErr.Accepted)
	assert.InDelta(t, 0.06, skipErr.Rate(), 1e-9)
	assert.Contains(t, err.Error(), "found 100")
	assert.Contains(t, err.Error(), "accepted 94")
}

func TestGateHoldsAtThreshold(t *testing.T) {
	gate := NewQualityGate("books", 0.05)
	gate.RecordFound(100)
	gate.RecordAccepted(95)

	assert.NoError(t, gate.Check())
}

func TestGateAggregatesAcrossUnits(t *testing.T) {
	gate := NewQualityGate("films", 0.05)

	// A tiny unit with a 50% local skip rate must not trip the gate
	// when the rest of the run is clean.
	gate.RecordFound(2)
	gate.RecordAccepted(1)
	gate.RecordFound(98)
	gate.RecordAccepted(98)

	assert.NoError(t, gate.Check())
	assert.Equal(t, 100, gate.Found())
	assert.Equal(t, 99, gate.Accepted())
}

func TestGateCapsDiagnosticSamples(t *testing.T) {
	gate := NewQualityGate("products", 0.05)
	gate.RecordFound(50)
	gate.RecordAccepted(10)

	for i := 0; i < 8; i++ {
		gate.AddSamples([]map[string]interface{}{
			{"name": "a"}, {"name": "b"},
		})
	}

	err := gate.Check()
	require.Error(t, err)

	var skipErr *SkipRateError
	require.True(t, errors.As(err, &skipErr))
	assert.Len(t, skipErr.Samples, maxGateSamples)
}

func TestGateSamplesAppearInError(t *testing.T) {
	gate := NewQualityGate("products", 0.05)
	gate.RecordFound(10)
	gate.RecordAccepted(1)
	gate.AddSamples([]map[string]interface{}{{"name": "Login", "price": 0}})

	err := gate.Check()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Login")
}
