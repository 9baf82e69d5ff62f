// Package mc provides the lattice container and Metropolis Monte Carlo engine
// for host-guest binding simulations.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - box.go: species registry, interaction matrix, and free-cell accounting
//   - engine.go: the Metropolis chain (move proposal, acceptance, relocation)
//   - rng.go: deterministic per-context random seeding
//
// # Architecture
//
// A Box is a validated configuration object with no dynamics. An Engine takes
// an immutable snapshot of a Box and owns the lattice occupancy state it
// evolves; engines never share state, even when derived from the same Box.
// Sweeping many compositions through engines, in parallel, lives in the
// adsorption package.
//
// The Markov chain inside a single Engine is strictly sequential: each step's
// acceptance depends on the state left by the previous step. Parallelism only
// ever exists across independent Engine instances.
package mc
