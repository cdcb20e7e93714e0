package ordering

import (
	"testing"

	"backend/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func TestCompute(t *testing.T) {
	tests := []struct {
		name string
		prev *float64
		next *float64
		want float64
	}{
		{"empty collection", nil, nil, 1000},
		{"append after tail", f(1000), nil, 2000},
		{"prepend before head", nil, f(2000), 1000},
		{"midpoint between neighbors", f(1000), f(2000), 1500},
		{"midpoint of narrow gap", f(1000), f(1001), 1000.5},
		{"append after fractional tail", f(1500), nil, 2500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compute(tt.prev, tt.next)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeRejectsInvertedNeighbors(t *testing.T) {
	_, err := Compute(f(1500), f(1000))
	assert.ErrorIs(t, err, apperr.ErrInvalidOrder)

	_, err = Compute(f(1000), f(1000))
	assert.ErrorIs(t, err, apperr.ErrInvalidOrder)
}

func TestComputeRepeatedMidpointsStayOrdered(t *testing.T) {
	// Inserting repeatedly between the same neighbors halves the gap each
	// time but must keep strict ordering for a long while.
	lo, hi := 1000.0, 2000.0
	for i := 0; i < 40; i++ {
		mid, err := Compute(&lo, &hi)
		require.NoError(t, err)
		require.Greater(t, mid, lo)
		require.Less(t, mid, hi)
		hi = mid
	}
}
