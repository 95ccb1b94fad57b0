package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/krotov"
)

func sampleResult() *krotov.Result {
	return &krotov.Result{
		Tlist:             []float64{0, 1, 2, 3},
		IterStart:         0,
		IterStop:          10,
		Iter:              7,
		JT:                4.2e-4,
		GuessControls:     [][]float64{{0.1, 0.2, 0.3}},
		OptimizedControls: [][]float64{{0.15, 0.35, 0.25}},
		StartLocalTime:    time.Now(),
		EndLocalTime:      time.Now(),
		Converged:         true,
		Message:           "J_T < 1e-3",
	}
}

func TestSaveAndList(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	runID, err := st.Save("tls", "square_modulus", "expm", []string{"eps"}, sampleResult())
	require.NoError(t, err)
	assert.Contains(t, runID, "tls_")

	runs, err := st.List()
	require.NoError(t, err)
	require.Len(t, runs, 1)

	meta := runs[0]
	assert.Equal(t, runID, meta.ID)
	assert.Equal(t, "tls", meta.Model)
	assert.Equal(t, 7, meta.Iter)
	assert.InDelta(t, 4.2e-4, meta.JT, 1e-12)
	assert.True(t, meta.Converged)
	assert.Equal(t, "J_T < 1e-3", meta.Message)
}

func TestLoadPulses(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	runID, err := st.Save("tls", "square_modulus", "expm", []string{"eps"}, sampleResult())
	require.NoError(t, err)

	times, columns, err := st.LoadPulses(runID)
	require.NoError(t, err)

	// Midpoints of {0, 1, 2, 3}.
	require.Len(t, times, 3)
	assert.InDelta(t, 0.5, times[0], 1e-9)
	assert.InDelta(t, 2.5, times[2], 1e-9)

	require.Contains(t, columns, "guess_eps")
	require.Contains(t, columns, "opt_eps")
	assert.InDelta(t, 0.2, columns["guess_eps"][1], 1e-12)
	assert.InDelta(t, 0.35, columns["opt_eps"][1], 1e-12)
}

func TestListEmpty(t *testing.T) {
	st := New(t.TempDir() + "/nonexistent")
	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestLoadPulsesMissingRun(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())
	_, _, err := st.LoadPulses("nope_123")
	assert.Error(t, err)
}
