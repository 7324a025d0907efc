package handlers

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewAnalytics(t *testing.T) {
	a := NewAnalytics(" g-abc123 ", true)
	require.True(t, a.Enabled())
	require.Equal(t, "G-ABC123", a.GA4MeasurementID)
	require.True(t, a.Debug)

	require.False(t, NewAnalytics("", true).Enabled())
	require.False(t, NewAnalytics("UA-1234-1", false).Enabled())
	require.False(t, NewAnalytics("G-", false).Enabled())
}
