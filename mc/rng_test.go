package mc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRunKey(t *testing.T) {
	tests := []struct {
		name string
		seed int64
	}{
		{"positive seed", 42},
		{"zero seed", 0},
		{"negative seed", -1},
		{"max int64", math.MaxInt64},
		{"min int64", math.MinInt64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := NewRunKey(tt.seed)
			assert.Equal(t, tt.seed, int64(key))
		})
	}
}

func TestRunKey_DeterministicDerivation(t *testing.T) {
	a := NewRunKey(42).Rand(SubsystemSystem(3))
	b := NewRunKey(42).Rand(SubsystemSystem(3))
	for i := 0; i < 5; i++ {
		assert.Equal(t, a.Float64(), b.Float64())
	}
}

func TestRunKey_ContextIsolation(t *testing.T) {
	key := NewRunKey(42)
	assert.NotEqual(t, key.SeedFor(SubsystemSystem(0)), key.SeedFor(SubsystemSystem(1)))
	assert.NotEqual(t, key.SeedFor(SubsystemEngine), key.SeedFor(SubsystemSystem(0)))
	assert.NotEqual(t, key.SeedFor(SubsystemOptimize(0, 0)), key.SeedFor(SubsystemOptimize(0, 1)))
}

func TestRunKey_SeedChangesStream(t *testing.T) {
	a := NewRunKey(1).Rand(SubsystemEngine)
	b := NewRunKey(2).Rand(SubsystemEngine)

	same := true
	for i := 0; i < 5; i++ {
		if a.Float64() != b.Float64() {
			same = false
			break
		}
	}
	assert.False(t, same, "different run keys must produce different streams")
}
