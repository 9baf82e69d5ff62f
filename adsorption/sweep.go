package adsorption

import (
	"runtime"
	"strconv"
	"strings"

	"github.com/Ajax23/hgana/mc"
)

// Composition is one assignment of instance counts to every species, in
// registration order.
type Composition []int

// Key renders the composition as a stable string for use as a map key.
func (c Composition) Key() string {
	parts := make([]string, len(c))
	for i, n := range c {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

// system pairs a composition point with its position in sweep order. The
// position seeds the point's random stream, so chunking never affects results.
type system struct {
	index int
	comp  Composition
}

// enumerate builds the Cartesian product of the species' count lists, last
// axis varying fastest.
func enumerate(species []mc.Species) []system {
	combos := []Composition{{}}
	for _, sp := range species {
		next := make([]Composition, 0, len(combos)*len(sp.Counts))
		for _, c := range combos {
			for _, n := range sp.Counts {
				grown := make(Composition, len(c)+1)
				copy(grown, c)
				grown[len(c)] = n
				next = append(next, grown)
			}
		}
		combos = next
	}
	systems := make([]system, len(combos))
	for i, c := range combos {
		systems[i] = system{index: i, comp: c}
	}
	return systems
}

// resolveWorkers bounds the requested worker count by available hardware
// concurrency. A non-positive request means "use all cores".
func resolveWorkers(requested int) int {
	workers := runtime.NumCPU()
	if requested > 0 && requested < workers {
		workers = requested
	}
	return workers
}

// partition splits systems into at most workers contiguous chunks of
// floor(len/workers) systems, folding the remainder into the last chunk.
// With fewer systems than workers every system becomes its own chunk.
func partition(systems []system, workers int) [][]system {
	per := len(systems) / workers
	if per == 0 {
		chunks := make([][]system, len(systems))
		for i := range systems {
			chunks[i] = systems[i : i+1]
		}
		return chunks
	}
	chunks := make([][]system, workers)
	for i := 0; i < workers; i++ {
		start := i * per
		end := start + per
		if i == workers-1 {
			end = len(systems)
		}
		chunks[i] = systems[start:end]
	}
	return chunks
}

// mergeResults combines per-worker partial maps into one. Composition keys
// never collide across chunks, so merging is a plain union.
func mergeResults(partials []ResultMap) ResultMap {
	merged := make(ResultMap)
	for _, part := range partials {
		for k, v := range part {
			merged[k] = v
		}
	}
	return merged
}
