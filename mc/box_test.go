package mc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBox(t *testing.T) {
	b := NewBox(100)
	assert.Equal(t, 100, b.Cells())
	assert.Equal(t, 100, b.FreeCells())
	assert.Equal(t, 0, b.NumSpecies())
}

func TestAddSpecies(t *testing.T) {
	b := NewBox(50)
	require.NoError(t, b.AddSpecies([]int{10}, false, "host", "host.pdb"))
	require.NoError(t, b.AddSpecies([]int{5, 20}, true, "guest", ""))

	assert.Equal(t, 2, b.NumSpecies())
	// Free cells shrink by the largest sweep value.
	assert.Equal(t, 50-10-20, b.FreeCells())

	species := b.Species()
	assert.Equal(t, 0, species[0].ID)
	assert.Equal(t, []int{10}, species[0].Counts)
	assert.False(t, species[0].Movable)
	assert.Equal(t, "host", species[0].Label)
	assert.Equal(t, "host.pdb", species[0].StructureRef)
	assert.Equal(t, []int{5, 20}, species[1].Counts)
	assert.True(t, species[1].Movable)
}

func TestAddSpecies_ExtendsInteractionMatrix(t *testing.T) {
	b := NewBox(10)
	require.NoError(t, b.AddSpecies([]int{1}, true, "a", ""))
	require.NoError(t, b.AddSpecies([]int{1}, true, "b", ""))
	require.NoError(t, b.AddSpecies([]int{1}, true, "c", ""))

	im := b.InteractionMatrix()
	require.Len(t, im, 3)
	for i, row := range im {
		require.Len(t, row, 3)
		for j, e := range row {
			assert.Zerof(t, e, "entry (%d, %d)", i, j)
		}
	}
}

func TestAddSpecies_CapacityGuardIdempotent(t *testing.T) {
	b := NewBox(10)
	require.NoError(t, b.AddSpecies([]int{8}, true, "a", ""))
	require.NoError(t, b.SetInteraction(0, 0, -3))

	speciesBefore := b.Species()
	imBefore := b.InteractionMatrix()
	freeBefore := b.FreeCells()

	err := b.AddSpecies([]int{3}, true, "too-big", "")
	require.Error(t, err)

	assert.Equal(t, speciesBefore, b.Species())
	assert.Equal(t, imBefore, b.InteractionMatrix())
	assert.Equal(t, freeBefore, b.FreeCells())
	assert.Equal(t, 1, b.NumSpecies())
}

func TestAddSpecies_InvalidCounts(t *testing.T) {
	b := NewBox(10)
	assert.Error(t, b.AddSpecies(nil, true, "empty", ""))
	assert.Error(t, b.AddSpecies([]int{-1}, true, "negative", ""))
}

func TestSetInteraction_Symmetric(t *testing.T) {
	b := NewBox(10)
	require.NoError(t, b.AddSpecies([]int{1}, true, "a", ""))
	require.NoError(t, b.AddSpecies([]int{1}, true, "b", ""))

	require.NoError(t, b.SetInteraction(0, 1, -15))

	e01, err := b.Interaction(0, 1)
	require.NoError(t, err)
	e10, err := b.Interaction(1, 0)
	require.NoError(t, err)
	assert.Equal(t, -15.0, e01)
	assert.Equal(t, -15.0, e10)
}

func TestInteraction_OutOfRange(t *testing.T) {
	b := NewBox(10)
	require.NoError(t, b.AddSpecies([]int{1}, true, "a", ""))

	tests := []struct {
		name string
		i, j int
	}{
		{"negative first", -1, 0},
		{"negative second", 0, -1},
		{"unregistered first", 1, 0},
		{"unregistered second", 0, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, b.SetInteraction(tt.i, tt.j, 1))
			_, err := b.Interaction(tt.i, tt.j)
			assert.Error(t, err)
		})
	}
}

func TestSetInteractionMatrix(t *testing.T) {
	b := NewBox(10)
	require.NoError(t, b.AddSpecies([]int{1}, true, "a", ""))
	require.NoError(t, b.AddSpecies([]int{1}, true, "b", ""))

	assert.Error(t, b.SetInteractionMatrix([][]float64{{0}}), "wrong row count")
	assert.Error(t, b.SetInteractionMatrix([][]float64{{0, 1}, {1}}), "ragged row")
	assert.Error(t, b.SetInteractionMatrix([][]float64{{0, 1}, {2, 0}}), "asymmetric")

	im := [][]float64{{-1, -15}, {-15, 0}}
	require.NoError(t, b.SetInteractionMatrix(im))

	got := b.InteractionMatrix()
	assert.Equal(t, im, got)

	// Returned matrices are copies; mutating them must not touch the Box.
	got[0][1] = 99
	im[1][0] = 99
	e, err := b.Interaction(0, 1)
	require.NoError(t, err)
	assert.Equal(t, -15.0, e)
}

func TestSnapshot_Isolated(t *testing.T) {
	b := NewBox(10)
	require.NoError(t, b.AddSpecies([]int{2}, true, "a", ""))
	require.NoError(t, b.SetInteraction(0, 0, -5))

	snap := b.Snapshot()
	require.NoError(t, b.SetInteraction(0, 0, 7))
	b.Species()[0].Counts[0] = 99

	assert.Equal(t, -5.0, snap.IM[0][0])
	assert.Equal(t, []int{2}, snap.Species[0].Counts)
}
