package selector

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWeighted(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
		wantErr error
	}{
		{
			name:    "valid entries",
			entries: []Entry{{Value: "NL", Weight: 20}, {Value: "DE", Weight: 35}},
		},
		{
			name:    "no entries",
			entries: nil,
			wantErr: ErrNoEntries,
		},
		{
			name:    "zero weight",
			entries: []Entry{{Value: "NL", Weight: 0}},
			wantErr: ErrInvalidWeight,
		},
		{
			name:    "negative weight",
			entries: []Entry{{Value: "NL", Weight: -5}},
			wantErr: ErrInvalidWeight,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := NewWeighted(tt.entries)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, w)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, w)
		})
	}
}

func TestWeightedPick(t *testing.T) {
	w, err := NewWeighted([]Entry{
		{Value: "NL", Weight: 20},
		{Value: "DE", Weight: 35},
		{Value: "FR", Weight: 25},
		{Value: "BE", Weight: 15},
		{Value: "LU", Weight: 5},
	})
	require.NoError(t, err)
	assert.Equal(t, 100, w.TotalWeight())

	t.Run("all values reachable", func(t *testing.T) {
		rng := rand.New(rand.NewSource(42))
		counts := make(map[string]int)
		for i := 0; i < 10000; i++ {
			counts[w.Pick(rng)]++
		}

		for _, value := range w.Values() {
			assert.Greater(t, counts[value], 0, "value %s never picked", value)
		}
		// The heaviest entry must dominate the lightest over this many picks.
		assert.Greater(t, counts["DE"], counts["LU"])
	})

	t.Run("deterministic for a fixed seed", func(t *testing.T) {
		first := make([]string, 100)
		second := make([]string, 100)

		rng := rand.New(rand.NewSource(7))
		for i := range first {
			first[i] = w.Pick(rng)
		}
		rng = rand.New(rand.NewSource(7))
		for i := range second {
			second[i] = w.Pick(rng)
		}

		assert.Equal(t, first, second)
	})
}

func TestWeightedSingleEntry(t *testing.T) {
	w, err := NewWeighted([]Entry{{Value: "only", Weight: 1}})
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 10; i++ {
		assert.Equal(t, "only", w.Pick(rng))
	}
}
