package domain

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitCommission(t *testing.T) {
	tests := []struct {
		total      int64
		rateBps    int64
		commission int64
		net        int64
	}{
		{total: 2100, rateBps: 1500, commission: 315, net: 1785},
		{total: 2950, rateBps: 1500, commission: 443, net: 2507}, // 442.5 -> 443
		{total: 1, rateBps: 1500, commission: 0, net: 1},
		{total: 10, rateBps: 1500, commission: 2, net: 8}, // 1.5 -> 2
		{total: 0, rateBps: 1500, commission: 0, net: 0},
		{total: 999, rateBps: 0, commission: 0, net: 999},
	}

	for _, tt := range tests {
		commission, net := SplitCommission(tt.total, tt.rateBps)
		assert.Equal(t, tt.commission, commission, "total=%d", tt.total)
		assert.Equal(t, tt.net, net, "total=%d", tt.total)
	}
}

func TestSplitCommission_PropertySumsToTotal(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 5000; i++ {
		total := rng.Int63n(10_000_000)
		rate := rng.Int63n(10001)

		commission, net := SplitCommission(total, rate)

		assert.Equal(t, total, commission+net)
		assert.GreaterOrEqual(t, commission, int64(0))
		assert.GreaterOrEqual(t, net, int64(0))
	}
}
