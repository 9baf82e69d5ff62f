package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Ajax23/hgana/adsorption"
	"github.com/Ajax23/hgana/mc"
)

var (
	optTargetRatio float64 // Bound/unbound ratio from the reference simulation
	optVolume      float64 // Reference simulation box volume in nm^3
	optFreeEnergy  float64 // Reference binding free energy in kJ/mol
	optComposition []int   // Probe composition, one count per species
	optHost        int
	optGuest       int
	optGuess       float64
	optStepsProd   int
	optRepeats     int
)

// optimizeCmd searches the lattice size reproducing a reference bound/unbound ratio
var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Optimize the lattice cell count against a target bound/unbound ratio",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := LoadSystemConfig(configPath)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		driver, err := cfg.BuildDriver()
		if err != nil {
			logrus.Fatalf("building system: %v", err)
		}

		composition := optComposition
		if len(composition) == 0 {
			// Default probe: the first sweep value of every species.
			for _, sp := range driver.Box().Species() {
				composition = append(composition, sp.Counts[0])
			}
		}

		res, err := driver.OptimizeSize(adsorption.OptimizeConfig{
			Temperature:      temperature,
			TargetVolume:     optVolume,
			TargetFreeEnergy: optFreeEnergy,
			TargetBoundRatio: optTargetRatio,
			Composition:      composition,
			BindingPair:      mc.BindingPair{Host: optHost, Guest: optGuest},
			InitialGuess:     optGuess,
			StepsProduction:  optStepsProd,
			Repeats:          optRepeats,
			Seed:             seed,
		})
		if err != nil {
			logrus.Fatalf("optimization failed: %v", err)
		}
		logrus.Infof("optimized size: %d cells (objective %.4f after %d simulation runs)",
			res.Cells, res.Objective, res.Evaluations)
	},
}

func init() {
	optimizeCmd.Flags().StringVar(&configPath, "config", "system.yaml", "System description yaml file")
	optimizeCmd.Flags().Float64Var(&temperature, "temperature", 298.0, "Simulation temperature in Kelvin")
	optimizeCmd.Flags().Float64Var(&optTargetRatio, "target-ratio", 1.0, "Target bound/unbound ratio N_b/N_u")
	optimizeCmd.Flags().Float64Var(&optVolume, "volume", 0.0, "Reference box volume in nm^3 (reported only)")
	optimizeCmd.Flags().Float64Var(&optFreeEnergy, "free-energy", 0.0, "Reference binding free energy in kJ/mol (reported only)")
	optimizeCmd.Flags().IntSliceVar(&optComposition, "composition", nil, "Probe composition, one count per species (defaults to first sweep values)")
	optimizeCmd.Flags().IntVar(&optHost, "host", 0, "Host species id")
	optimizeCmd.Flags().IntVar(&optGuest, "guest", 1, "Guest species id")
	optimizeCmd.Flags().Float64Var(&optGuess, "guess", 100, "Initial cell count guess")
	optimizeCmd.Flags().IntVar(&optStepsProd, "steps-prod", 1000000, "Production steps per objective evaluation")
	optimizeCmd.Flags().IntVar(&optRepeats, "repeats", 1, "Objective evaluations averaged per trial size")
	optimizeCmd.Flags().Int64Var(&seed, "seed", 42, "Run seed")

	rootCmd.AddCommand(optimizeCmd)
}
