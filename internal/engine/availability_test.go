package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

type fakeCommitments struct {
	busy   map[string]map[uuid.UUID]struct{}
	always map[uuid.UUID]struct{}
	err    error
}

func (f *fakeCommitments) CommittedUserIDs(_ context.Context, date string) (map[uuid.UUID]struct{}, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := map[uuid.UUID]struct{}{}
	for id := range f.always {
		out[id] = struct{}{}
	}
	for id := range f.busy[date] {
		out[id] = struct{}{}
	}
	return out, nil
}

func TestResolveSubtractsCommittedUsers(t *testing.T) {
	a := UserProfile{ID: uuid.New(), Nickname: "a"}
	b := UserProfile{ID: uuid.New(), Nickname: "b"}
	c := UserProfile{ID: uuid.New(), Nickname: "c"}

	resolver := NewAvailabilityResolver(&fakeCommitments{
		busy: map[string]map[uuid.UUID]struct{}{
			"2025-03-03": {b.ID: {}},
		},
	})

	available, err := resolver.Resolve(context.Background(), "2025-03-03", []UserProfile{a, b, c})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(available) != 2 {
		t.Fatalf("got %d available users, want 2", len(available))
	}
	for _, u := range available {
		if u.ID == b.ID {
			t.Fatalf("committed user still listed as available")
		}
	}

	// A date with no commitments returns the whole population.
	available, err = resolver.Resolve(context.Background(), "2025-03-04", []UserProfile{a, b, c})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(available) != 3 {
		t.Fatalf("got %d available users, want 3", len(available))
	}
}

func TestResolveSurfacesDirectoryError(t *testing.T) {
	boom := errors.New("directory down")
	resolver := NewAvailabilityResolver(&fakeCommitments{err: boom})
	if _, err := resolver.Resolve(context.Background(), "2025-03-03", makePopulation(2)); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped directory error, got %v", err)
	}
}
