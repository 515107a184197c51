package apiclient

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAdmitDeniesAtCeiling(t *testing.T) {
	gate := newAdmissionGate(time.Minute, 3)

	require.NoError(t, gate.Admit("/articles"))
	require.NoError(t, gate.Admit("/articles"))
	require.NoError(t, gate.Admit("/categories"))

	err := gate.Admit("/articles")
	require.Error(t, err)
	require.Equal(t, KindRateLimited, KindOf(err))
}

func TestAdmitAllowsAfterWindowExpires(t *testing.T) {
	now := time.Now()
	gate := newAdmissionGate(time.Minute, 2)
	gate.now = func() time.Time { return now }

	require.NoError(t, gate.Admit("/articles"))
	require.NoError(t, gate.Admit("/articles"))
	require.Error(t, gate.Admit("/articles"))

	// Old records fall out of the trailing window.
	now = now.Add(61 * time.Second)
	require.NoError(t, gate.Admit("/articles"))
}

func TestAdmitNeverDeniesCriticalEndpoints(t *testing.T) {
	gate := newAdmissionGate(time.Minute, 1)
	require.NoError(t, gate.Admit("/articles"))
	require.Error(t, gate.Admit("/articles"))

	for range 10 {
		require.NoError(t, gate.Admit(PathLogin))
		require.NoError(t, gate.Admit(PathRefresh))
		require.NoError(t, gate.Admit(PathHealth))
	}
}

func TestAdmitPurgesBeforeCounting(t *testing.T) {
	now := time.Now()
	gate := newAdmissionGate(time.Minute, 2)
	gate.now = func() time.Time { return now }

	require.NoError(t, gate.Admit("/a"))
	now = now.Add(30 * time.Second)
	require.NoError(t, gate.Admit("/b"))
	require.Equal(t, 2, gate.Pending())

	// The first record expires; only one slot is occupied.
	now = now.Add(31 * time.Second)
	require.NoError(t, gate.Admit("/c"))
	require.Equal(t, 2, gate.Pending())
}
