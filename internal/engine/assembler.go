package engine

import (
	"math/rand"
	"sort"

	"github.com/google/uuid"
)

// Assembler ranks available candidates for one requester and greedily builds
// candidate groups near the top of the ranking. The bounded neighborhood
// (triples from the top 6, pairs from the top 3) is deliberate: full
// combinatorial enumeration would change both cost and output distribution.
//
// A candidate may appear in more than one group for the same requester; the
// output is a ranking of proposals, not a partition.
type Assembler struct {
	cfg Config
	rng *rand.Rand
}

// NewAssembler takes its own rand source so concurrent per-date assembly
// never shares one. Jitter exists only to vary daily output; seed freshness
// per run is required, determinism is not.
func NewAssembler(cfg Config, rng *rand.Rand) *Assembler {
	return &Assembler{cfg: cfg, rng: rng}
}

type rankedCandidate struct {
	user  UserProfile
	total float64
}

// Assemble returns up to cfg.MaxGroups groups of 1-3 candidates drawn from
// the available users, excluding the requester. Fewer than one candidate
// yields an empty result, never an error.
func (a *Assembler) Assemble(requesterID uuid.UUID, available []UserProfile, m *Matrix) [][]UserProfile {
	ranked := make([]rankedCandidate, 0, len(available))
	for _, u := range available {
		if u.ID == requesterID {
			continue
		}
		s := m.Score(requesterID, u.ID)
		ranked = append(ranked, rankedCandidate{
			user:  u,
			total: float64(s.Total()) + a.rng.Float64()*a.cfg.JitterMax,
		})
	}
	if len(ranked) == 0 {
		return nil
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].total > ranked[j].total
	})

	groups := make([][]UserProfile, 0, a.cfg.MaxGroups)

	// Triples from a bounded window at the top of the ranking.
	window := a.cfg.TripleNeighborhood
	if window > len(ranked) {
		window = len(ranked)
	}
	triples := 0
	for i := 0; i < window && triples < a.cfg.MaxTriples; i++ {
		for j := i + 1; j < window && triples < a.cfg.MaxTriples; j++ {
			for k := j + 1; k < window && triples < a.cfg.MaxTriples; k++ {
				groups = append(groups, []UserProfile{ranked[i].user, ranked[j].user, ranked[k].user})
				triples++
			}
		}
	}

	// Pairs from the top few until the pair target is reached.
	pairWindow := a.cfg.PairNeighborhood
	if pairWindow > len(ranked) {
		pairWindow = len(ranked)
	}
	for i := 0; i < pairWindow && len(groups) < a.cfg.PairTarget; i++ {
		for j := i + 1; j < pairWindow && len(groups) < a.cfg.PairTarget; j++ {
			groups = append(groups, []UserProfile{ranked[i].user, ranked[j].user})
		}
	}

	// One single-member fallback with the top candidate.
	if len(groups) < a.cfg.MaxGroups {
		groups = append(groups, []UserProfile{ranked[0].user})
	}

	if len(groups) > a.cfg.MaxGroups {
		groups = groups[:a.cfg.MaxGroups]
	}
	return groups
}
