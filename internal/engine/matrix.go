package engine

import (
	"github.com/google/uuid"
)

// PairScore splits the two symmetric components so callers can inspect them
// independently.
type PairScore struct {
	Compatibility int
	Pattern       int
}

func (p PairScore) Total() int {
	return p.Compatibility + p.Pattern
}

// Matrix holds the pairwise score table for one generation run. Storage is a
// nested map indexed by requester for lookup convenience; the scores are
// symmetric by construction.
type Matrix struct {
	scores map[uuid.UUID]map[uuid.UUID]PairScore
}

// BuildMatrix computes the full N×N score table in one pass. Participation
// counts are precomputed by the caller, so each pair costs O(tags) rather
// than a count query.
func BuildMatrix(population []UserProfile, participation map[uuid.UUID]int) *Matrix {
	scores := make(map[uuid.UUID]map[uuid.UUID]PairScore, len(population))
	for _, u := range population {
		scores[u.ID] = make(map[uuid.UUID]PairScore, len(population)-1)
	}
	for i := 0; i < len(population); i++ {
		for j := i + 1; j < len(population); j++ {
			a, b := population[i], population[j]
			s := PairScore{
				Compatibility: compatibilityScore(a, b),
				Pattern:       patternScore(participation[a.ID], participation[b.ID]),
			}
			scores[a.ID][b.ID] = s
			scores[b.ID][a.ID] = s
		}
	}
	return &Matrix{scores: scores}
}

func (m *Matrix) Score(requester, other uuid.UUID) PairScore {
	if row, ok := m.scores[requester]; ok {
		return row[other]
	}
	return PairScore{}
}

// compatibilityScore treats cuisine and lunch-style tags as sets: +15 per
// shared cuisine tag, +20 per shared lunch-style tag, +20 for a matching
// age group, +15 when genders are present and differ.
func compatibilityScore(a, b UserProfile) int {
	score := 0
	score += 15 * sharedCount(a.FoodPreferences, b.FoodPreferences)
	score += 20 * sharedCount(a.LunchStyles, b.LunchStyles)
	if a.AgeGroup != "" && a.AgeGroup == b.AgeGroup {
		score += 20
	}
	if a.Gender != "" && b.Gender != "" && a.Gender != b.Gender {
		score += 15
	}
	return score
}

func patternScore(countA, countB int) int {
	diff := countA - countB
	if diff < 0 {
		diff = -diff
	}
	switch {
	case diff <= 2:
		return 20
	case diff <= 5:
		return 10
	default:
		return 0
	}
}

func sharedCount(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(a))
	for _, tag := range a {
		if tag != "" {
			set[tag] = struct{}{}
		}
	}
	n := 0
	for _, tag := range b {
		if _, ok := set[tag]; ok {
			n++
			delete(set, tag)
		}
	}
	return n
}
