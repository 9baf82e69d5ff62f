package adsorption

import (
	"fmt"
	"io"
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"

	"github.com/Ajax23/hgana/mc"
)

const (
	// referenceVolume is the standard-state volume per molecule in nm^3.
	referenceVolume = 1.661

	// optimizeStepsEquilibration is the short fixed equilibration used before
	// every objective evaluation.
	optimizeStepsEquilibration = 1000

	// defaultMaxEvaluations bounds the objective-call budget; the landscape is
	// stochastic, so the simplex may wander without a cap.
	defaultMaxEvaluations = 100
)

// OptimizeConfig groups the box-size search parameters.
type OptimizeConfig struct {
	Temperature      float64        // Kelvin
	TargetVolume     float64        // simulation box volume in nm^3, reported only
	TargetFreeEnergy float64        // binding free energy in kJ/mol, reported only
	TargetBoundRatio float64        // N_b/N_u ratio the lattice should reproduce
	Composition      Composition    // fixed composition of the probe system
	BindingPair      mc.BindingPair // pair whose probability defines p_b
	InitialGuess     float64        // starting cell count
	StepsProduction  int
	// Repeats averages this many objective evaluations per trial size.
	// Zero or one keeps the single noisy evaluation per trial.
	Repeats         int
	MaxEvaluations  int // 0 means defaultMaxEvaluations
	Seed            int64
}

// OptimizeResult reports the minimizer outcome.
type OptimizeResult struct {
	Cells       int     // optimized lattice cell count
	Objective   float64 // |targetBoundRatio - p_b/(1-p_b)| at the optimum
	Evaluations int     // objective evaluations spent, each costing Repeats simulation runs
}

// OptimizeSize searches the lattice cell count that reproduces the target
// bound/unbound ratio, minimizing |targetBoundRatio - p_b/(1-p_b)| with
// derivative-free Nelder-Mead. Every objective evaluation is a full short
// simulation, so the landscape is stochastic; the optimizer runs evaluations
// strictly sequentially.
func (d *Driver) OptimizeSize(cfg OptimizeConfig) (OptimizeResult, error) {
	if cfg.Temperature <= 0 {
		return OptimizeResult{}, fmt.Errorf("temperature %g K is not positive", cfg.Temperature)
	}
	if len(cfg.Composition) != d.box.NumSpecies() {
		return OptimizeResult{}, fmt.Errorf("composition has %d entries, %d species registered",
			len(cfg.Composition), d.box.NumSpecies())
	}
	if cfg.InitialGuess <= 0 {
		return OptimizeResult{}, fmt.Errorf("initial guess %g is not positive", cfg.InitialGuess)
	}
	if cfg.StepsProduction <= 0 {
		return OptimizeResult{}, fmt.Errorf("production steps %d is not positive", cfg.StepsProduction)
	}
	repeats := cfg.Repeats
	if repeats < 1 {
		repeats = 1
	}
	maxEvals := cfg.MaxEvaluations
	if maxEvals <= 0 {
		maxEvals = defaultMaxEvaluations
	}

	minSize := 0
	for _, n := range cfg.Composition {
		minSize += n
	}

	key := mc.NewRunKey(cfg.Seed)
	evals := 0
	objective := func(x []float64) float64 {
		size := int(math.Round(x[0]))
		if size < minSize {
			// Infeasible lattice; slope the penalty back toward feasibility.
			return math.Abs(cfg.TargetBoundRatio) + float64(minSize-size)
		}

		var pb float64
		for r := 0; r < repeats; r++ {
			p, err := d.sample(size, cfg, key.SeedFor(mc.SubsystemOptimize(evals, r)))
			if err != nil {
				logrus.Warnf("objective evaluation at size %d failed: %v", size, err)
				return math.Abs(cfg.TargetBoundRatio) + float64(minSize)
			}
			pb += p
		}
		pb /= float64(repeats)
		evals++

		pb = math.Min(math.Max(pb, 1e-9), 1-1e-9)
		ratio := pb / (1 - pb)
		diff := math.Abs(cfg.TargetBoundRatio - ratio)
		vbox := referenceVolume * math.Exp(cfg.TargetFreeEnergy/(-mc.GasConstant*cfg.Temperature)) * (1 - pb) / pb
		logrus.Infof("size = %5d, p_b = %5.2f, p_b/p_u = %5.2f, diff = %5.2f, Vbox = %5.2f",
			size, pb, ratio, diff, vbox)
		return diff
	}

	problem := optimize.Problem{Func: objective}
	settings := &optimize.Settings{FuncEvaluations: maxEvals}
	result, err := optimize.Minimize(problem, []float64{cfg.InitialGuess}, settings, &optimize.NelderMead{})
	if err != nil {
		return OptimizeResult{}, fmt.Errorf("size optimization: %w", err)
	}

	return OptimizeResult{
		Cells:       int(math.Round(result.X[0])),
		Objective:   result.F,
		Evaluations: evals,
	}, nil
}

// sample runs one short simulation of the probe composition at the trial size
// and returns the mean production binding probability. The probability is
// sampled every production step, matching the reference evaluation the target
// ratio comes from.
func (d *Driver) sample(size int, cfg OptimizeConfig, seed int64) (float64, error) {
	box := mc.NewBox(size)
	for _, sp := range d.box.Species() {
		if err := box.AddSpecies([]int{cfg.Composition[sp.ID]}, sp.Movable, sp.Label, sp.StructureRef); err != nil {
			return 0, err
		}
	}
	if err := box.SetInteractionMatrix(d.box.InteractionMatrix()); err != nil {
		return 0, err
	}

	engine, err := mc.NewEngine(box, cfg.Temperature, seed)
	if err != nil {
		return 0, err
	}
	engine.SetStatusWriter(io.Discard)

	res := engine.Run(optimizeStepsEquilibration, cfg.StepsProduction, []mc.BindingPair{cfg.BindingPair}, 1)
	return stat.Mean(res.Probability[cfg.BindingPair], nil), nil
}
