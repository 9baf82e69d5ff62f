package mc

import (
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"
)

// GasConstant is R in kJ/mol/K.
const GasConstant = 8.314e-3

// PhaseResult carries the statistics of one Monte Carlo phase.
type PhaseResult struct {
	Accepted int64
	Rejected int64
	// Probability holds, per requested binding pair, the sampled time series
	// of instantaneous binding probabilities. Nil when reporting was disabled.
	Probability map[BindingPair][]float64
}

// Engine evolves lattice occupancy via a Metropolis Markov chain and reports
// binding statistics. It owns its lattice state and random source exclusively.
//
// Thread-safety: NOT thread-safe. The chain is strictly sequential; every
// acceptance probability depends on the state left by the previous step.
type Engine struct {
	temperature float64
	beta        float64 // 1/(R*T), mol/kJ
	cells       int
	species     []Species
	im          [][]float64
	counts      []int // fixed population per species
	movable     []int // ids of movable species with at least one instance

	lattice  [][]int // cell id -> occupant species ids, at most two
	occupied [][]int // species id -> cell ids currently holding an instance

	rng    *rand.Rand
	status io.Writer
}

// NewEngine builds an engine from a Box snapshot at the given temperature (K),
// seeded from seed. Every species in the Box must carry a single fixed count;
// sweep axes belong to the adsorption driver. Instances are initially placed
// into distinct, sequentially assigned cells.
func NewEngine(box *Box, temperature float64, seed int64) (*Engine, error) {
	snap := box.Snapshot()
	if snap.Cells <= 0 {
		return nil, fmt.Errorf("box has %d cells, need at least one", snap.Cells)
	}
	if temperature <= 0 {
		return nil, fmt.Errorf("temperature %g K is not positive", temperature)
	}

	e := &Engine{
		temperature: temperature,
		beta:        1 / (GasConstant * temperature),
		cells:       snap.Cells,
		species:     snap.Species,
		im:          snap.IM,
		counts:      make([]int, len(snap.Species)),
		lattice:     make([][]int, snap.Cells),
		occupied:    make([][]int, len(snap.Species)),
		rng:         rand.New(rand.NewSource(seed)),
		status:      os.Stdout,
	}

	total := 0
	for i, sp := range snap.Species {
		n, ok := sp.FixedCount()
		if !ok {
			return nil, fmt.Errorf("species %d still carries a sweep axis %v, engines need a fixed composition", sp.ID, sp.Counts)
		}
		e.counts[i] = n
		total += n
		if sp.Movable && n > 0 {
			e.movable = append(e.movable, sp.ID)
		}
	}
	if total > snap.Cells {
		return nil, fmt.Errorf("%d instances do not fit into %d cells", total, snap.Cells)
	}
	if len(e.movable) == 0 {
		return nil, fmt.Errorf("no movable species, the chain cannot propose moves")
	}

	cell := 0
	for id, n := range e.counts {
		for i := 0; i < n; i++ {
			e.lattice[cell] = append(e.lattice[cell], id)
			e.occupied[id] = append(e.occupied[id], cell)
			cell++
		}
	}
	return e, nil
}

// SetStatusWriter redirects the overwritable progress line. The default is
// os.Stdout; pass io.Discard to silence progress without disabling sampling.
func (e *Engine) SetStatusWriter(w io.Writer) {
	e.status = w
}

// Temperature returns the simulation temperature in Kelvin.
func (e *Engine) Temperature() float64 { return e.temperature }

// metropolis applies the acceptance rule: accept unconditionally when dE <= 0,
// otherwise with probability exp(-beta*dE).
func (e *Engine) metropolis(dE float64) bool {
	if dE <= 0 {
		return true
	}
	return e.rng.Float64() < math.Exp(-e.beta*dE)
}

// accept evaluates moving one instance of species mol from oldCell to
// newCell by case analysis on the two cell states. It may consume Metropolis
// draws but never mutates the lattice.
func (e *Engine) accept(mol, oldCell, newCell int) bool {
	src := e.lattice[oldCell]
	dst := e.lattice[newCell]

	if len(dst) == 0 {
		if len(src) == 1 {
			// Free diffusion of an unbound instance.
			return true
		}
		// Unbinding: breaking the bond costs the negative of the stored energy.
		return e.metropolis(-e.im[src[0]][src[1]])
	}
	if len(dst) == 1 {
		if len(src) == 1 {
			// Binding: a zero entry means the species cannot interact.
			if e.im[mol][dst[0]] == 0 {
				return false
			}
			return e.metropolis(e.im[mol][dst[0]])
		}
		// Composite move: unbind first, then bind. Both sub-steps must pass
		// before the relocation is applied; there is no partial rollback.
		if !e.metropolis(-e.im[src[0]][src[1]]) {
			return false
		}
		return e.metropolis(e.im[mol][dst[0]])
	}
	// Destination already holds a complex.
	return false
}

// relocate moves the instance of mol recorded at position idx of its
// occupancy list into newCell. The occupancy slot is overwritten in place,
// cell occupant lists hold at most two entries, so the whole update is O(1).
func (e *Engine) relocate(mol, idx, newCell int) {
	oldCell := e.occupied[mol][idx]
	occ := e.lattice[oldCell]
	for i, id := range occ {
		if id == mol {
			e.lattice[oldCell] = append(occ[:i], occ[i+1:]...)
			break
		}
	}
	e.lattice[newCell] = append(e.lattice[newCell], mol)
	e.occupied[mol][idx] = newCell
}

// step proposes one move and applies it when accepted. Returns true on
// acceptance. The proposal draws a movable species, one of its instances, and
// a destination cell uniformly from all cells, the source cell included.
func (e *Engine) step() bool {
	mol := e.movable[e.rng.Intn(len(e.movable))]
	idx := e.rng.Intn(len(e.occupied[mol]))
	oldCell := e.occupied[mol][idx]
	newCell := e.rng.Intn(e.cells)

	if !e.accept(mol, oldCell, newCell) {
		return false
	}
	e.relocate(mol, idx, newCell)
	return true
}

// BindingProbability returns the fraction of host instances currently sharing
// a cell with a guest instance.
func (e *Engine) BindingProbability(p BindingPair) float64 {
	hosts := e.counts[p.Host]
	if hosts == 0 {
		return 0
	}
	bound := 0
	seen := make(map[int]bool, len(e.occupied[p.Host]))
	for _, cell := range e.occupied[p.Host] {
		if seen[cell] {
			continue
		}
		seen[cell] = true
		occ := e.lattice[cell]
		if len(occ) != 2 {
			continue
		}
		other := occ[0]
		if occ[0] == p.Host {
			other = occ[1]
		}
		if other == p.Guest {
			bound++
		}
	}
	return float64(bound) / float64(hosts)
}

// RunPhase executes the Metropolis loop for the given number of steps.
// When reportInterval > 0, the binding probability of every requested pair is
// sampled on the first step, the last step, and every reportInterval-th step,
// and an overwritable status line is emitted at each sample.
func (e *Engine) RunPhase(steps int, pairs []BindingPair, reportInterval int) PhaseResult {
	res := PhaseResult{}
	if reportInterval > 0 {
		res.Probability = make(map[BindingPair][]float64, len(pairs))
		for _, p := range pairs {
			res.Probability[p] = nil
		}
	}
	width := len(strconv.Itoa(steps))

	for stepID := 0; stepID < steps; stepID++ {
		if e.step() {
			res.Accepted++
		} else {
			res.Rejected++
		}

		if reportInterval > 0 && (stepID == 0 || stepID == steps-1 || (stepID+1)%reportInterval == 0) {
			for _, p := range pairs {
				res.Probability[p] = append(res.Probability[p], e.BindingProbability(p))
			}
			e.printStatus(width, stepID+1, steps, &res, pairs)
		}
	}
	if reportInterval > 0 {
		fmt.Fprintln(e.status)
	}
	return res
}

// printStatus writes the overwritable progress line: step counter, acceptance
// and rejection counts, and the running mean/stddev of the first requested
// pair's series. Purely observational, never a synchronization signal.
func (e *Engine) printStatus(width, step, steps int, res *PhaseResult, pairs []BindingPair) {
	if len(pairs) == 0 {
		fmt.Fprintf(e.status, "\r%*d/%*d - n_acc = %5d, n_rej = %5d",
			width, step, width, steps, res.Accepted, res.Rejected)
		return
	}
	ref := pairs[0]
	series := res.Probability[ref]
	mean := stat.Mean(series, nil)
	std := 0.0
	if len(series) > 1 {
		std = stat.StdDev(series, nil)
	}
	fmt.Fprintf(e.status, "\r%*d/%*d - n_acc = %5d, n_rej = %5d, mean(%d, %d) = %.5f, std(%d, %d) = %.5f",
		width, step, width, steps, res.Accepted, res.Rejected,
		ref.Host, ref.Guest, mean, ref.Host, ref.Guest, std)
}

// Run executes an equilibration phase with reporting disabled (its statistics
// are discarded) followed by a production phase with reporting enabled, and
// returns the production result.
func (e *Engine) Run(stepsEqui, stepsProd int, pairs []BindingPair, reportInterval int) PhaseResult {
	logrus.Debugf("equilibration: %d steps at T=%gK", stepsEqui, e.temperature)
	e.RunPhase(stepsEqui, pairs, 0)
	logrus.Debugf("production: %d steps, report interval %d", stepsProd, reportInterval)
	return e.RunPhase(stepsProd, pairs, reportInterval)
}
