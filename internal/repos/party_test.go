package repos

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/lunchmate/lunchmate-backend/internal/logger"
	"github.com/lunchmate/lunchmate-backend/internal/types"
)

// newTestDB opens an in-memory sqlite database with the party schema laid
// out by hand; the production DDL uses postgres-only defaults.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared&_fk=1"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	ddl := []string{
		`DROP TABLE IF EXISTS party_member`,
		`DROP TABLE IF EXISTS party`,
		`CREATE TABLE party (
			id TEXT PRIMARY KEY,
			host_id TEXT NOT NULL,
			title TEXT NOT NULL,
			restaurant TEXT,
			party_date TEXT NOT NULL,
			party_time TEXT,
			max_members INTEGER NOT NULL DEFAULT 4,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE party_member (
			id TEXT PRIMARY KEY,
			party_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
	}
	for _, stmt := range ddl {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return db
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

func seedParty(t *testing.T, repo PartyRepo, hostID uuid.UUID, date string, memberIDs ...uuid.UUID) *types.Party {
	t.Helper()
	ctx := context.Background()
	party := &types.Party{
		ID:         uuid.New(),
		HostID:     hostID,
		Title:      "점심 모임",
		PartyDate:  date,
		MaxMembers: 4,
	}
	if _, err := repo.Create(ctx, nil, party); err != nil {
		t.Fatalf("create party: %v", err)
	}
	for _, userID := range memberIDs {
		_, err := repo.AddMember(ctx, nil, &types.PartyMember{
			ID:      uuid.New(),
			PartyID: party.ID,
			UserID:  userID,
		})
		if err != nil {
			t.Fatalf("add member: %v", err)
		}
	}
	return party
}

func TestGetCommittedUserIDs(t *testing.T) {
	db := newTestDB(t)
	repo := NewPartyRepo(db, testLogger(t))
	ctx := context.Background()

	host := uuid.New()
	guestA := uuid.New()
	guestB := uuid.New()
	otherDayGuest := uuid.New()

	seedParty(t, repo, host, "2025-03-04", host, guestA, guestB)
	seedParty(t, repo, guestA, "2025-03-05", guestA, otherDayGuest)

	ids, err := repo.GetCommittedUserIDs(ctx, nil, "2025-03-04")
	if err != nil {
		t.Fatalf("GetCommittedUserIDs: %v", err)
	}
	got := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		got[id] = struct{}{}
	}
	for _, want := range []uuid.UUID{host, guestA, guestB} {
		if _, ok := got[want]; !ok {
			t.Errorf("expected %s committed on 2025-03-04", want)
		}
	}
	if _, ok := got[otherDayGuest]; ok {
		t.Errorf("user committed on a different day leaked into the result")
	}
}

func TestGetParticipationCounts(t *testing.T) {
	db := newTestDB(t)
	repo := NewPartyRepo(db, testLogger(t))
	ctx := context.Background()

	regular := uuid.New()
	occasional := uuid.New()

	seedParty(t, repo, regular, "2025-03-04", regular, occasional)
	seedParty(t, repo, regular, "2025-03-05", regular)
	seedParty(t, repo, regular, "2025-03-06", regular)

	counts, err := repo.GetParticipationCounts(ctx, nil)
	if err != nil {
		t.Fatalf("GetParticipationCounts: %v", err)
	}
	if counts[regular] != 3 {
		t.Errorf("regular count = %d, want 3", counts[regular])
	}
	if counts[occasional] != 1 {
		t.Errorf("occasional count = %d, want 1", counts[occasional])
	}
}

func TestGetSharedPartyDates(t *testing.T) {
	db := newTestDB(t)
	repo := NewPartyRepo(db, testLogger(t))
	ctx := context.Background()

	userA := uuid.New()
	userB := uuid.New()
	userC := uuid.New()

	seedParty(t, repo, userA, "2025-02-10", userA, userB)
	seedParty(t, repo, userA, "2025-01-20", userA, userB)
	seedParty(t, repo, userA, "2025-02-15", userA, userC)

	dates, err := repo.GetSharedPartyDates(ctx, nil, userA, userB)
	if err != nil {
		t.Fatalf("GetSharedPartyDates: %v", err)
	}
	want := []string{"2025-01-20", "2025-02-10"}
	if len(dates) != len(want) {
		t.Fatalf("dates = %v, want %v", dates, want)
	}
	for i := range want {
		if dates[i] != want[i] {
			t.Errorf("dates[%d] = %s, want %s", i, dates[i], want[i])
		}
	}

	none, err := repo.GetSharedPartyDates(ctx, nil, userB, userC)
	if err != nil {
		t.Fatalf("GetSharedPartyDates for strangers: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("strangers should share no dates, got %v", none)
	}
}

func TestJoinAndLeaveMembership(t *testing.T) {
	db := newTestDB(t)
	repo := NewPartyRepo(db, testLogger(t))
	ctx := context.Background()

	host := uuid.New()
	guest := uuid.New()
	party := seedParty(t, repo, host, "2025-03-04", host, guest)

	loaded, err := repo.GetByID(ctx, nil, party.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(loaded.Members) != 2 {
		t.Fatalf("members = %d, want 2", len(loaded.Members))
	}

	if err := repo.RemoveMember(ctx, nil, party.ID, guest); err != nil {
		t.Fatalf("RemoveMember: %v", err)
	}
	loaded, err = repo.GetByID(ctx, nil, party.ID)
	if err != nil {
		t.Fatalf("GetByID after leave: %v", err)
	}
	if len(loaded.Members) != 1 {
		t.Errorf("members after leave = %d, want 1", len(loaded.Members))
	}

	if err := repo.FullDelete(ctx, nil, party.ID); err != nil {
		t.Fatalf("FullDelete: %v", err)
	}
	if _, err := repo.GetByID(ctx, nil, party.ID); err == nil {
		t.Errorf("expected lookup of deleted party to fail")
	}
}
