package adsorption

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/Ajax23/hgana/mc"
)

// Artifact is the persisted pair of system configuration and sweep results.
// It is the stable interface to downstream analysis and plotting tooling.
type Artifact struct {
	Config  ArtifactConfig   `yaml:"config"`
	Results []ArtifactResult `yaml:"results"`
}

// ArtifactConfig recovers the species registry and interaction matrix of the
// swept system.
type ArtifactConfig struct {
	Cells       int               `yaml:"cells"`
	Species     []ArtifactSpecies `yaml:"species"`
	Interaction [][]float64       `yaml:"interaction"`
}

// ArtifactSpecies is one registered species, in registration order.
type ArtifactSpecies struct {
	Counts       []int  `yaml:"counts"`
	Movable      bool   `yaml:"movable"`
	Label        string `yaml:"label,omitempty"`
	StructureRef string `yaml:"struct,omitempty"`
}

// ArtifactResult is the outcome of one composition point.
type ArtifactResult struct {
	Composition []int        `yaml:"composition"`
	Accepted    int64        `yaml:"accepted"`
	Rejected    int64        `yaml:"rejected"`
	Probability []PairSeries `yaml:"binding_probability,omitempty"`
}

// PairSeries is the sampled binding-probability time series of one
// host/guest pair.
type PairSeries struct {
	Host   int       `yaml:"host"`
	Guest  int       `yaml:"guest"`
	Series []float64 `yaml:"series"`
}

// artifact assembles the persistable form of a finished sweep. Results are
// ordered lexicographically by composition so output is deterministic.
func (d *Driver) artifact(results ResultMap) Artifact {
	species := d.box.Species()
	cfg := ArtifactConfig{
		Cells:       d.box.Cells(),
		Interaction: d.box.InteractionMatrix(),
	}
	for _, sp := range species {
		cfg.Species = append(cfg.Species, ArtifactSpecies{
			Counts:       sp.Counts,
			Movable:      sp.Movable,
			Label:        sp.Label,
			StructureRef: sp.StructureRef,
		})
	}

	recs := make([]ArtifactResult, 0, len(results))
	for _, res := range results {
		rec := ArtifactResult{
			Composition: res.Composition,
			Accepted:    res.Accepted,
			Rejected:    res.Rejected,
		}
		pairs := make([]mc.BindingPair, 0, len(res.Probability))
		for p := range res.Probability {
			pairs = append(pairs, p)
		}
		sort.Slice(pairs, func(i, j int) bool {
			if pairs[i].Host != pairs[j].Host {
				return pairs[i].Host < pairs[j].Host
			}
			return pairs[i].Guest < pairs[j].Guest
		})
		for _, p := range pairs {
			rec.Probability = append(rec.Probability, PairSeries{
				Host:   p.Host,
				Guest:  p.Guest,
				Series: res.Probability[p],
			})
		}
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool {
		return lessComposition(recs[i].Composition, recs[j].Composition)
	})

	return Artifact{Config: cfg, Results: recs}
}

func lessComposition(a, b []int) bool {
	for i := range a {
		if i >= len(b) {
			return false
		}
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

// ResultMap rebuilds the composition-keyed result map from a loaded artifact.
func (a Artifact) ResultMap() ResultMap {
	out := make(ResultMap, len(a.Results))
	for _, rec := range a.Results {
		res := Result{
			Composition: append(Composition(nil), rec.Composition...),
			Accepted:    rec.Accepted,
			Rejected:    rec.Rejected,
		}
		if len(rec.Probability) > 0 {
			res.Probability = make(map[mc.BindingPair][]float64, len(rec.Probability))
			for _, ps := range rec.Probability {
				res.Probability[mc.BindingPair{Host: ps.Host, Guest: ps.Guest}] = ps.Series
			}
		}
		out[res.Composition.Key()] = res
	}
	return out
}

// Save writes the artifact as yaml.
func Save(a Artifact, path string) error {
	data, err := yaml.Marshal(a)
	if err != nil {
		return fmt.Errorf("encoding artifact: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing artifact: %w", err)
	}
	return nil
}

// Load reads an artifact written by Save.
func Load(path string) (Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Artifact{}, fmt.Errorf("reading artifact: %w", err)
	}
	var a Artifact
	if err := yaml.Unmarshal(data, &a); err != nil {
		return Artifact{}, fmt.Errorf("decoding artifact: %w", err)
	}
	return a, nil
}
