// Package adsorption sweeps composition grids through the Monte Carlo engine
// to build adsorption isotherms.
//
// The Driver owns a Box whose species may carry multi-valued count lists; the
// Cartesian product of those lists is the ordered set of composition points.
// Each point is simulated by a fresh, independently seeded Box+Engine pair,
// either sequentially or fanned out over a fixed set of workers that share no
// mutable state (fork/join). Results merge into one map and persist as a yaml
// artifact consumed by downstream analysis tooling.
//
// The package also exposes a derivative-free box-size optimizer that treats a
// short simulation run as a black-box objective.
package adsorption
