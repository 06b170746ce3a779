package solver

import (
	"context"
	"math/rand"

	"github.com/symcc-go/symcc/symexpr"
)

// SimpleBackend is the default Backend: a small local-search solver over
// the concrete input-byte assignment, not a bit-blasting SMT solver. This
// mirrors spec §1's framing of the SMT solver as an out-of-scope external
// collaborator — SimpleBackend exists so the rest of the runtime has
// something to link against and so the package's tests can run without an
// external solver process, not as a claim of completeness. It is named
// after (and intentionally as unambitious as) the reference design's own
// "simple backend".
//
// It hill-climbs first from the concrete seed assignment and then from a
// bounded number of restarts that randomize the referenced input bytes,
// scoring a candidate by how many asserted constraints it satisfies, and
// returns the first assignment that satisfies all of them.
type SimpleBackend struct {
	seed     Model // concrete values observed on the current run, keyed by offset
	frames   [][]*symexpr.Node
	rng      *rand.Rand
	restarts int
	iters    int
}

// NewSimpleBackend constructs a backend seeded with the concrete byte
// values observed on the current concolic run (spec §4.6 "extract the
// symbolic input bytes" starts the search from the real execution's
// values, which is also what keeps an unrelated byte from being perturbed
// for no reason).
func NewSimpleBackend(seed Model) *SimpleBackend {
	return &SimpleBackend{
		seed:     seed,
		frames:   [][]*symexpr.Node{{}},
		rng:      rand.New(rand.NewSource(0x5ec0cc)),
		restarts: 8,
		iters:    256,
	}
}

// SetSeed records the concrete value actually observed for offset on the
// current run. Check's restart loop (below) starts its candidate
// assignment from s.seed, so a byte the run touched is warm-started from
// its real value instead of defaulting to zero.
func (s *SimpleBackend) SetSeed(offset int, v byte) {
	if s.seed == nil {
		s.seed = make(Model)
	}
	s.seed[offset] = v
}

func (s *SimpleBackend) Push() {
	s.frames = append(s.frames, nil)
}

func (s *SimpleBackend) Pop() {
	if len(s.frames) == 1 {
		panic("solver: SimpleBackend.Pop without matching Push")
	}
	s.frames = s.frames[:len(s.frames)-1]
}

func (s *SimpleBackend) Assert(e *symexpr.Node) {
	top := len(s.frames) - 1
	s.frames[top] = append(s.frames[top], e)
}

func (s *SimpleBackend) asserted() []*symexpr.Node {
	var all []*symexpr.Node
	for _, f := range s.frames {
		all = append(all, f...)
	}
	return all
}

// GCRoots implements solver's rootedBackend interface (and so, through
// Gateway.GCRoots, gc.RootSource): every expression asserted in any
// currently open frame must stay reachable across a collection.
func (s *SimpleBackend) GCRoots(roots []*symexpr.Node) []*symexpr.Node {
	return append(roots, s.asserted()...)
}

// Check implements Backend.Check. It returns Unknown (never an error) if
// ctx is canceled mid-search or if a constraint touches an unsupported
// floating-point operation, per spec §1/§7 treating both as non-fatal.
func (s *SimpleBackend) Check(ctx context.Context) (Outcome, Model, error) {
	constraints := s.asserted()
	if len(constraints) == 0 {
		return Sat, cloneModel(s.seed), nil
	}

	offsets := map[int]bool{}
	for _, c := range constraints {
		inputOffsets(c, offsets)
	}
	order := make([]int, 0, len(offsets))
	for o := range offsets {
		order = append(order, o)
	}

	satisfied := func(m Model) (bool, bool /*sawUnsupported*/) {
		for _, c := range constraints {
			v, err := eval(c, m)
			if err == ErrUnsupportedFloat {
				return false, true
			}
			if err != nil || v.Sign() == 0 {
				return false, false
			}
		}
		return true, false
	}

	if ok, unsupported := satisfied(s.seed); ok {
		return Sat, cloneModel(s.seed), nil
	} else if unsupported {
		return Unknown, nil, nil
	}

	for restart := 0; restart < s.restarts; restart++ {
		select {
		case <-ctx.Done():
			return Unknown, nil, nil
		default:
		}
		cand := cloneModel(s.seed)
		if restart > 0 {
			for _, o := range order {
				cand[o] = byte(s.rng.Intn(256))
			}
		}
		candScore := satisfiedCount(cand, constraints)
		for iter := 0; iter < s.iters; iter++ {
			select {
			case <-ctx.Done():
				return Unknown, nil, nil
			default:
			}
			if candScore == len(constraints) {
				if ok, unsupported := satisfied(cand); ok {
					return Sat, cand, nil
				} else if unsupported {
					return Unknown, nil, nil
				}
			}
			if len(order) == 0 {
				break
			}
			// flip a random bit of a random referenced input byte and keep
			// the mutation only if it does not lower the number of
			// satisfied constraints, so a byte that has locked onto its
			// target value is not later disturbed by an unrelated flip
			o := order[s.rng.Intn(len(order))]
			bit := byte(1) << uint(s.rng.Intn(8))
			trial := cloneModel(cand)
			trial[o] ^= bit
			trialScore := satisfiedCount(trial, constraints)
			if trialScore >= candScore {
				cand, candScore = trial, trialScore
			}
		}
		if ok, unsupported := satisfied(cand); ok {
			return Sat, cand, nil
		} else if unsupported {
			return Unknown, nil, nil
		}
	}
	return Unsat, nil, nil
}

// satisfiedCount counts how many constraints m satisfies, treating
// evaluation errors (e.g. a division by a symbolic zero under this
// particular assignment) as unsatisfied rather than aborting the search.
// ErrUnsupportedFloat is not specially handled here since a subtree that
// returns it will consistently do so for every candidate, so it just never
// contributes to the score.
func satisfiedCount(m Model, constraints []*symexpr.Node) int {
	n := 0
	for _, c := range constraints {
		if v, err := eval(c, m); err == nil && v.Sign() != 0 {
			n++
		}
	}
	return n
}

func cloneModel(m Model) Model {
	out := make(Model, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
