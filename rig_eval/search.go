package rigeval

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"github.com/golang/geo/r3"
)

// defaultSearchSeed seeds the perturbation stream when no RNG is injected.
const defaultSearchSeed = 42

// SelectBestViewpoint runs a stochastic beam search over the sphere through
// the initial position, maximizing the number of back-face-visible faces.
//
// Each iteration perturbs every surviving candidate Children times with a
// uniform offset in [-Step, Step] per axis, reprojects the child onto the
// sphere, then merges parents and children and keeps the BeamWidth best.
// Parents survive the merge, so the best count never decreases. Children are
// evaluated concurrently; all randomness comes from rng, drawn before the
// fan-out, so a seeded *rand.Rand reproduces the run exactly. A nil rng uses
// the fixed default seed.
func SelectBestViewpoint(mesh *Mesh, initial r3.Vector, cfg SearchConfig, rng *rand.Rand) (Candidate, error) {
	if cfg.Iterations < 0 || cfg.Children < 1 || cfg.BeamWidth < 1 || cfg.Step <= 0 {
		return Candidate{}, fmt.Errorf("%w: iterations=%d children=%d beam=%d step=%g",
			ErrInvalidSearchConfig, cfg.Iterations, cfg.Children, cfg.BeamWidth, cfg.Step)
	}
	radius := initial.Norm()
	if radius*radius < degenerateEps {
		return Candidate{}, ErrZeroRadius
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(defaultSearchSeed))
	}

	visCfg := VisibilityConfig{Mode: ModeBackFace}
	count := func(pos r3.Vector) int {
		records, _ := Evaluate(mesh, pos, r3.Vector{}, visCfg)
		return len(records)
	}

	pool := []Candidate{{Position: initial, VisibleCount: count(initial)}}

	for iter := 0; iter < cfg.Iterations; iter++ {
		children := make([]Candidate, 0, len(pool)*cfg.Children)
		for _, cand := range pool {
			for c := 0; c < cfg.Children; c++ {
				offset := r3.Vector{
					X: rng.Float64()*2*cfg.Step - cfg.Step,
					Y: rng.Float64()*2*cfg.Step - cfg.Step,
					Z: rng.Float64()*2*cfg.Step - cfg.Step,
				}
				child := cand.Position.Add(offset)
				norm := child.Norm()
				if norm*norm < degenerateEps {
					continue
				}
				children = append(children, Candidate{Position: child.Mul(radius / norm)})
			}
		}

		// Counts are pure functions of position; fan out per child.
		var wg sync.WaitGroup
		for i := range children {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				children[i].VisibleCount = count(children[i].Position)
			}(i)
		}
		wg.Wait()

		pool = append(pool, children...)
		sort.SliceStable(pool, func(i, j int) bool {
			return pool[i].VisibleCount > pool[j].VisibleCount
		})
		if len(pool) > cfg.BeamWidth {
			pool = pool[:cfg.BeamWidth]
		}
	}

	return pool[0], nil
}
