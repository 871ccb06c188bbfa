package engine

import (
	"context"
	"errors"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/lunchmate/lunchmate-backend/internal/logger"
)

type fakeUsers struct {
	users []UserProfile
	err   error
	calls atomic.Int64
}

func (f *fakeUsers) ActiveUsers(_ context.Context) ([]UserProfile, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.users, nil
}

type fakeHistory struct {
	counts map[uuid.UUID]int
	shared map[pairKey][]string
}

func (f *fakeHistory) ParticipationCounts(_ context.Context) (map[uuid.UUID]int, error) {
	if f.counts == nil {
		return map[uuid.UUID]int{}, nil
	}
	return f.counts, nil
}

func (f *fakeHistory) SharedPartyDates(_ context.Context, a, b uuid.UUID) ([]string, error) {
	return f.shared[pairKey{a: a, b: b}], nil
}

func (f *fakeHistory) addShared(a, b uuid.UUID, dates ...string) {
	if f.shared == nil {
		f.shared = map[pairKey][]string{}
	}
	f.shared[pairKey{a: a, b: b}] = dates
	f.shared[pairKey{a: b, b: a}] = dates
}

type fakePrefs struct {
	styles map[uuid.UUID]string
}

func (f *fakePrefs) LunchStyleByUser(_ context.Context) (map[uuid.UUID]string, error) {
	if f.styles == nil {
		return map[uuid.UUID]string{}, nil
	}
	return f.styles, nil
}

type recordingSink struct {
	day  string
	keys int
}

func (s *recordingSink) StoreGeneration(_ context.Context, generatedFor string, entries map[Key][]RecommendationEntry) error {
	s.day = generatedFor
	s.keys = len(entries)
	return nil
}

func testEngine(t *testing.T, users *fakeUsers, commitments *fakeCommitments, history *fakeHistory, sink Sink) *Engine {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger init: %v", err)
	}
	e, err := New(log, DefaultConfig(), users, commitments, history, &fakePrefs{}, sink)
	if err != nil {
		t.Fatalf("engine init: %v", err)
	}
	// Monday 2025-03-03, 10:00 in Seoul.
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	fixed := time.Date(2025, 3, 3, 10, 0, 0, 0, loc)
	e.now = func() time.Time { return fixed }
	return e
}

func TestGenerateScenario(t *testing.T) {
	a := UserProfile{ID: uuid.New(), Nickname: "A", FoodPreferences: []string{"한식"}}
	b := UserProfile{ID: uuid.New(), Nickname: "B", FoodPreferences: []string{"한식"}}
	c := UserProfile{ID: uuid.New(), Nickname: "C", FoodPreferences: []string{"양식"}}
	d := UserProfile{ID: uuid.New(), Nickname: "D"}

	users := &fakeUsers{users: []UserProfile{a, b, c, d}}
	commitments := &fakeCommitments{always: map[uuid.UUID]struct{}{d.ID: {}}}
	history := &fakeHistory{}
	history.addShared(a.ID, b.ID, "2025-01-10", "2025-02-14")
	sink := &recordingSink{}

	e := testEngine(t, users, commitments, history, sink)
	if err := e.Generate(context.Background()); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	entries := e.Lookup(a.ID, "2025-03-04")
	if len(entries) == 0 {
		t.Fatalf("expected recommendations for requester A")
	}
	if len(entries) > 10 {
		t.Fatalf("output cap violated: %d entries", len(entries))
	}
	for _, entry := range entries {
		if len(entry.Members) < 1 || len(entry.Members) > 3 {
			t.Fatalf("group size %d out of [1,3]", len(entry.Members))
		}
		for _, m := range entry.Members {
			switch m.UserID {
			case a.ID:
				t.Fatalf("requester listed in its own recommendation")
			case d.ID:
				t.Fatalf("busy user D recommended")
			case b.ID:
				if m.LastDinedDate != "2025-02-14" {
					t.Fatalf("member B last dined %q, want 2025-02-14", m.LastDinedDate)
				}
			case c.ID:
				if m.LastDinedDate != firstMeeting {
					t.Fatalf("member C last dined %q, want first-meeting sentinel", m.LastDinedDate)
				}
			default:
				t.Fatalf("unknown member %s", m.UserID)
			}
		}
	}

	// Idempotent lookup: repeated reads of the same snapshot match.
	again := e.Lookup(a.ID, "2025-03-04")
	if !reflect.DeepEqual(entries, again) {
		t.Fatalf("two lookups without regeneration differ")
	}

	// Weekend dates are never generated.
	if got := e.Lookup(a.ID, "2025-03-08"); len(got) != 0 {
		t.Fatalf("Saturday should have no recommendations, got %d", len(got))
	}

	if sink.day != "2025-03-03" || sink.keys == 0 {
		t.Fatalf("sink not fed: day=%q keys=%d", sink.day, sink.keys)
	}
}

func TestGenerateSingleUserPopulation(t *testing.T) {
	only := UserProfile{ID: uuid.New(), Nickname: "solo"}
	e := testEngine(t, &fakeUsers{users: []UserProfile{only}}, &fakeCommitments{}, &fakeHistory{}, nil)

	if err := e.Generate(context.Background()); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if got := e.Lookup(only.ID, "2025-03-04"); len(got) != 0 {
		t.Fatalf("single-user population should yield empty lists, got %d", len(got))
	}
}

func TestGenerateSameDayIsNoOp(t *testing.T) {
	users := &fakeUsers{users: makePopulation(3)}
	e := testEngine(t, users, &fakeCommitments{}, &fakeHistory{}, nil)

	if err := e.Generate(context.Background()); err != nil {
		t.Fatalf("first Generate failed: %v", err)
	}
	if err := e.Generate(context.Background()); err != nil {
		t.Fatalf("second Generate failed: %v", err)
	}
	if got := users.calls.Load(); got != 1 {
		t.Fatalf("second same-day Generate recomputed: %d directory reads", got)
	}
}

func TestGenerateReplacesPreviousRun(t *testing.T) {
	population := makePopulation(3)
	users := &fakeUsers{users: population}
	e := testEngine(t, users, &fakeCommitments{}, &fakeHistory{}, nil)

	if err := e.Generate(context.Background()); err != nil {
		t.Fatalf("first Generate failed: %v", err)
	}
	if got := e.Lookup(population[0].ID, "2025-03-05"); len(got) == 0 {
		t.Fatalf("expected entries from first run")
	}

	// Next local day, the population shrinks to one user: every key must
	// come from the new run only.
	loc, _ := time.LoadLocation("Asia/Seoul")
	e.now = func() time.Time { return time.Date(2025, 3, 4, 0, 5, 0, 0, loc) }
	users.users = population[:1]

	if err := e.Generate(context.Background()); err != nil {
		t.Fatalf("second Generate failed: %v", err)
	}
	if got := e.Lookup(population[0].ID, "2025-03-05"); len(got) != 0 {
		t.Fatalf("old entries survived regeneration")
	}
	if got := e.Lookup(population[1].ID, "2025-03-05"); len(got) != 0 {
		t.Fatalf("entries for removed user survived regeneration")
	}
	if e.GeneratedFor() != "2025-03-04" {
		t.Fatalf("generation marker %q, want 2025-03-04", e.GeneratedFor())
	}
}

func TestGenerateFailureKeepsPreviousCache(t *testing.T) {
	population := makePopulation(3)
	users := &fakeUsers{users: population}
	e := testEngine(t, users, &fakeCommitments{}, &fakeHistory{}, nil)

	if err := e.Generate(context.Background()); err != nil {
		t.Fatalf("first Generate failed: %v", err)
	}
	before := e.Lookup(population[0].ID, "2025-03-05")
	if len(before) == 0 {
		t.Fatalf("expected entries from first run")
	}

	loc, _ := time.LoadLocation("Asia/Seoul")
	e.now = func() time.Time { return time.Date(2025, 3, 4, 0, 5, 0, 0, loc) }
	users.err = errors.New("directory down")

	if err := e.Generate(context.Background()); err == nil {
		t.Fatalf("expected error when user directory is down")
	}
	if e.GeneratedFor() != "2025-03-03" {
		t.Fatalf("failed run must not advance the marker, got %q", e.GeneratedFor())
	}
	after := e.Lookup(population[0].ID, "2025-03-05")
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("failed run disturbed the previous cache")
	}
}

func TestGenerateEmptyPopulation(t *testing.T) {
	e := testEngine(t, &fakeUsers{}, &fakeCommitments{}, &fakeHistory{}, nil)
	if err := e.Generate(context.Background()); err != nil {
		t.Fatalf("empty population must not fail: %v", err)
	}
	if e.GeneratedFor() != "2025-03-03" {
		t.Fatalf("empty generation should still publish, marker=%q", e.GeneratedFor())
	}
}
