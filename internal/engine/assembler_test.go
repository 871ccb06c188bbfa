package engine

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"
)

func makePopulation(n int) []UserProfile {
	users := make([]UserProfile, 0, n)
	for i := 0; i < n; i++ {
		users = append(users, UserProfile{ID: uuid.New(), Nickname: "user"})
	}
	return users
}

func emptyMatrix(users []UserProfile) *Matrix {
	return BuildMatrix(users, map[uuid.UUID]int{})
}

func TestAssembleBounds(t *testing.T) {
	cases := []struct {
		name       string
		candidates int
		wantGroups int
	}{
		{name: "no_candidates", candidates: 0, wantGroups: 0},
		{name: "single_candidate", candidates: 1, wantGroups: 1},
		{name: "two_candidates", candidates: 2, wantGroups: 2},
		{name: "full_neighborhood", candidates: 12, wantGroups: 10},
		{name: "large_population_stays_capped", candidates: 200, wantGroups: 10},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			requester := UserProfile{ID: uuid.New()}
			available := append([]UserProfile{requester}, makePopulation(tc.candidates)...)
			asm := NewAssembler(DefaultConfig(), rand.New(rand.NewSource(1)))
			groups := asm.Assemble(requester.ID, available, emptyMatrix(available))

			if len(groups) != tc.wantGroups {
				t.Fatalf("got %d groups, want %d", len(groups), tc.wantGroups)
			}
			for _, g := range groups {
				if len(g) < 1 || len(g) > 3 {
					t.Fatalf("group size %d out of [1,3]", len(g))
				}
				for _, member := range g {
					if member.ID == requester.ID {
						t.Fatalf("requester recommended to itself")
					}
				}
			}
		})
	}
}

func TestAssemblePriorityOrder(t *testing.T) {
	requester := UserProfile{ID: uuid.New()}
	available := makePopulation(20)
	asm := NewAssembler(DefaultConfig(), rand.New(rand.NewSource(7)))
	groups := asm.Assemble(requester.ID, available, emptyMatrix(available))

	if len(groups) != 10 {
		t.Fatalf("got %d groups, want 10", len(groups))
	}
	for i := 0; i < 6; i++ {
		if len(groups[i]) != 3 {
			t.Fatalf("group %d has size %d, want triple", i, len(groups[i]))
		}
	}
	for i := 6; i < 9; i++ {
		if len(groups[i]) != 2 {
			t.Fatalf("group %d has size %d, want pair", i, len(groups[i]))
		}
	}
	if len(groups[9]) != 1 {
		t.Fatalf("last group has size %d, want single", len(groups[9]))
	}
}

func TestAssembleTwoCandidatesFallsBackToPairAndSingle(t *testing.T) {
	requester := UserProfile{ID: uuid.New()}
	available := makePopulation(2)
	asm := NewAssembler(DefaultConfig(), rand.New(rand.NewSource(3)))
	groups := asm.Assemble(requester.ID, available, emptyMatrix(available))

	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	if len(groups[0]) != 2 || len(groups[1]) != 1 {
		t.Fatalf("expected pair then single, got sizes %d,%d", len(groups[0]), len(groups[1]))
	}
}

func TestAssembleRankingFollowsScores(t *testing.T) {
	requester := UserProfile{ID: uuid.New()}
	strong := UserProfile{ID: uuid.New(), FoodPreferences: []string{"한식", "중식", "일식"}, LunchStyles: []string{"맛집 탐방", "가성비"}}
	weak := makePopulation(5)
	population := append([]UserProfile{requester, strong}, weak...)
	requester.FoodPreferences = []string{"한식", "중식", "일식"}
	requester.LunchStyles = []string{"맛집 탐방", "가성비"}
	population[0] = requester

	// Strong candidate outranks every weak one by 85 points, above the
	// jitter ceiling, so it must head the ranking and appear in the single.
	asm := NewAssembler(DefaultConfig(), rand.New(rand.NewSource(11)))
	groups := asm.Assemble(requester.ID, population, BuildMatrix(population, map[uuid.UUID]int{}))

	last := groups[len(groups)-1]
	if len(last) != 1 || last[0].ID != strong.ID {
		t.Fatalf("single-member group should carry the top-ranked candidate")
	}
}
