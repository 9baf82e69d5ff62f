package adsorption

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/Ajax23/hgana/mc"
)

// Result carries the production-phase statistics of one composition point.
type Result struct {
	Composition Composition
	Accepted    int64
	Rejected    int64
	Probability map[mc.BindingPair][]float64
}

// ResultMap maps composition keys (Composition.Key) to their results.
type ResultMap map[string]Result

// RunConfig groups the sweep parameters.
type RunConfig struct {
	Temperature        float64 // Kelvin
	StepsEquilibration int
	StepsProduction    int
	OutputPath         string // artifact destination; empty disables persistence
	BindingPairs       []mc.BindingPair
	ReportInterval     int // 0 disables sampling and status lines
	Workers            int // <= 0 means all cores; only honored with Parallel
	Parallel           bool
	Seed               int64
}

// Driver runs the Monte Carlo engine across a grid of compositions. It owns a
// Box whose species may carry multi-valued count lists (the sweep axes).
type Driver struct {
	box *mc.Box
}

// New creates a Driver over a lattice with the given number of cells.
func New(cells int) *Driver {
	return &Driver{box: mc.NewBox(cells)}
}

// AddSpecies registers a species; counts may be a sweep list. Same capacity
// contract as Box.AddSpecies.
func (d *Driver) AddSpecies(counts []int, movable bool, label, structureRef string) error {
	return d.box.AddSpecies(counts, movable, label, structureRef)
}

// SetInteraction delegates to the underlying Box.
func (d *Driver) SetInteraction(i, j int, energy float64) error {
	return d.box.SetInteraction(i, j, energy)
}

// SetInteractionMatrix delegates to the underlying Box.
func (d *Driver) SetInteractionMatrix(im [][]float64) error {
	return d.box.SetInteractionMatrix(im)
}

// Box exposes the underlying configuration for inspection.
func (d *Driver) Box() *mc.Box { return d.box }

// Run enumerates every composition point, simulates each with a fresh
// Box+Engine pair, merges the per-point results, persists the artifact when
// OutputPath is set, and returns the merged map.
//
// Workers share no mutable state; each one owns its chunk of composition
// points and an isolated random stream per point, so the parallel and
// sequential paths produce identical results for the same seed.
func (d *Driver) Run(cfg RunConfig) (ResultMap, error) {
	if cfg.Temperature <= 0 {
		return nil, fmt.Errorf("temperature %g K is not positive", cfg.Temperature)
	}
	if d.box.NumSpecies() == 0 {
		return nil, fmt.Errorf("no species registered")
	}

	systems := enumerate(d.box.Species())
	key := mc.NewRunKey(cfg.Seed)

	var merged ResultMap
	if cfg.Parallel {
		chunks := partition(systems, resolveWorkers(cfg.Workers))
		logrus.Infof("sweeping %d composition points across %d workers", len(systems), len(chunks))

		partials := make([]ResultMap, len(chunks))
		errs := make([]error, len(chunks))
		var wg sync.WaitGroup
		for i, chunk := range chunks {
			wg.Add(1)
			go func(i int, chunk []system) {
				defer wg.Done()
				// Interleaved status lines from concurrent engines are
				// useless, silence them; sampling is unaffected.
				partials[i], errs[i] = d.runSystems(chunk, cfg, key, io.Discard)
			}(i, chunk)
		}
		wg.Wait()
		for _, err := range errs {
			if err != nil {
				return nil, err
			}
		}
		merged = mergeResults(partials)
	} else {
		logrus.Infof("sweeping %d composition points sequentially", len(systems))
		var err error
		merged, err = d.runSystems(systems, cfg, key, os.Stdout)
		if err != nil {
			return nil, err
		}
	}

	if cfg.OutputPath != "" {
		if err := Save(d.artifact(merged), cfg.OutputPath); err != nil {
			return merged, fmt.Errorf("persisting results: %w", err)
		}
		logrus.Infof("results written to %s", cfg.OutputPath)
	}
	return merged, nil
}

// runSystems simulates a slice of composition points sequentially, one fresh
// Box+Engine pair per point.
func (d *Driver) runSystems(systems []system, cfg RunConfig, key mc.RunKey, status io.Writer) (ResultMap, error) {
	out := make(ResultMap, len(systems))
	species := d.box.Species()
	im := d.box.InteractionMatrix()

	for _, sys := range systems {
		box := mc.NewBox(d.box.Cells())
		for _, sp := range species {
			if err := box.AddSpecies([]int{sys.comp[sp.ID]}, sp.Movable, sp.Label, sp.StructureRef); err != nil {
				return nil, fmt.Errorf("system %v: %w", sys.comp, err)
			}
		}
		if err := box.SetInteractionMatrix(im); err != nil {
			return nil, fmt.Errorf("system %v: %w", sys.comp, err)
		}

		engine, err := mc.NewEngine(box, cfg.Temperature, key.SeedFor(mc.SubsystemSystem(sys.index)))
		if err != nil {
			return nil, fmt.Errorf("system %v: %w", sys.comp, err)
		}
		engine.SetStatusWriter(status)

		res := engine.Run(cfg.StepsEquilibration, cfg.StepsProduction, cfg.BindingPairs, cfg.ReportInterval)
		out[sys.comp.Key()] = Result{
			Composition: sys.comp,
			Accepted:    res.Accepted,
			Rejected:    res.Rejected,
			Probability: res.Probability,
		}
		logrus.Debugf("system %v done: n_acc=%d, n_rej=%d", sys.comp, res.Accepted, res.Rejected)
	}
	return out, nil
}
