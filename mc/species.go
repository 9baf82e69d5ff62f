package mc

// Species is a molecular species registered in a Box. The record is fixed at
// registration time; IDs are sequential in registration order.
type Species struct {
	ID      int
	Counts  []int // single value = fixed population, several values = sweep axis
	Movable bool  // immovable species act as fixed binding sites
	Label   string
	// StructureRef is a link to a structure file. Metadata only, no engine effect.
	StructureRef string
}

// MaxCount returns the largest population across the species' count values.
func (s Species) MaxCount() int {
	m := 0
	for _, n := range s.Counts {
		if n > m {
			m = n
		}
	}
	return m
}

// FixedCount returns the population of a fully specified species. ok is false
// when the species still carries a multi-valued sweep axis.
func (s Species) FixedCount() (int, bool) {
	if len(s.Counts) != 1 {
		return 0, false
	}
	return s.Counts[0], true
}

// clone deep-copies the record so callers cannot mutate registry state.
func (s Species) clone() Species {
	c := s
	c.Counts = append([]int(nil), s.Counts...)
	return c
}

// BindingPair names the host and guest species whose co-occupancy defines a
// binding event of interest.
type BindingPair struct {
	Host  int `yaml:"host"`
	Guest int `yaml:"guest"`
}
