package mc

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Box is the validated lattice configuration consumed by the engine: the
// species registry, the symmetric pairwise interaction matrix (kJ/mol), and
// the remaining free-cell budget. A Box has no dynamics of its own.
type Box struct {
	cells   int
	free    int
	species []Species
	im      [][]float64
}

// NewBox creates a Box with the given number of lattice cells.
func NewBox(cells int) *Box {
	return &Box{cells: cells, free: cells}
}

// AddSpecies registers a new species. counts carries either a single fixed
// population or an ordered list of sweep values. The registration is refused
// when the largest count exceeds the remaining free cells; in that case the
// registry, the interaction matrix, and the free-cell budget are left
// untouched.
func (b *Box) AddSpecies(counts []int, movable bool, label, structureRef string) error {
	if len(counts) == 0 {
		return fmt.Errorf("species %q: no counts given", label)
	}
	for _, n := range counts {
		if n < 0 {
			return fmt.Errorf("species %q: negative count %d", label, n)
		}
	}
	sp := Species{
		ID:           len(b.species),
		Counts:       append([]int(nil), counts...),
		Movable:      movable,
		Label:        label,
		StructureRef: structureRef,
	}
	if need := sp.MaxCount(); need > b.free {
		logrus.Warnf("species %q needs %d cells but only %d remain free", label, need, b.free)
		return fmt.Errorf("species %q: %d instances exceed %d remaining free cells", label, need, b.free)
	}

	b.free -= sp.MaxCount()
	for i := range b.im {
		b.im[i] = append(b.im[i], 0)
	}
	b.im = append(b.im, make([]float64, sp.ID+1))
	b.species = append(b.species, sp)
	return nil
}

func (b *Box) checkPair(i, j int) error {
	if i < 0 || i >= len(b.species) || j < 0 || j >= len(b.species) {
		return fmt.Errorf("species pair (%d, %d) out of range: %d species registered", i, j, len(b.species))
	}
	return nil
}

// SetInteraction stores the binding free energy (kJ/mol) between species i
// and j. The matrix stays symmetric: writing (i, j) also writes (j, i). Zero
// means the two species cannot bind.
func (b *Box) SetInteraction(i, j int, energy float64) error {
	if err := b.checkPair(i, j); err != nil {
		return err
	}
	b.im[i][j] = energy
	b.im[j][i] = energy
	return nil
}

// Interaction returns the binding free energy between species i and j.
func (b *Box) Interaction(i, j int) (float64, error) {
	if err := b.checkPair(i, j); err != nil {
		return 0, err
	}
	return b.im[i][j], nil
}

// SetInteractionMatrix replaces the whole interaction matrix. The matrix must
// be square over the registered species and symmetric.
func (b *Box) SetInteractionMatrix(im [][]float64) error {
	n := len(b.species)
	if len(im) != n {
		return fmt.Errorf("interaction matrix has %d rows, want %d", len(im), n)
	}
	for i, row := range im {
		if len(row) != n {
			return fmt.Errorf("interaction matrix row %d has %d entries, want %d", i, len(row), n)
		}
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if im[i][j] != im[j][i] {
				return fmt.Errorf("interaction matrix is not symmetric at (%d, %d)", i, j)
			}
		}
	}
	b.im = copyMatrix(im)
	return nil
}

// InteractionMatrix returns a deep copy of the interaction matrix.
func (b *Box) InteractionMatrix() [][]float64 {
	return copyMatrix(b.im)
}

// Cells returns the total number of lattice cells.
func (b *Box) Cells() int { return b.cells }

// FreeCells returns the number of cells not yet reserved by registered species.
func (b *Box) FreeCells() int { return b.free }

// NumSpecies returns the number of registered species.
func (b *Box) NumSpecies() int { return len(b.species) }

// Species returns deep copies of the registered species in registration order.
func (b *Box) Species() []Species {
	out := make([]Species, len(b.species))
	for i, sp := range b.species {
		out[i] = sp.clone()
	}
	return out
}

// Snapshot is the immutable configuration handed to an engine. Mutating the
// Box after taking a snapshot does not affect engines built from it.
type Snapshot struct {
	Cells   int
	Species []Species
	IM      [][]float64
}

// Snapshot deep-copies the species registry and interaction matrix.
func (b *Box) Snapshot() Snapshot {
	return Snapshot{
		Cells:   b.cells,
		Species: b.Species(),
		IM:      copyMatrix(b.im),
	}
}

func copyMatrix(im [][]float64) [][]float64 {
	out := make([][]float64, len(im))
	for i, row := range im {
		out[i] = append([]float64(nil), row...)
	}
	return out
}
