package engine

import (
	"context"

	"github.com/google/uuid"
)

// UserProfile is the engine's immutable snapshot of a user for one
// generation run.
type UserProfile struct {
	ID              uuid.UUID
	Nickname        string
	FoodPreferences []string
	LunchStyles     []string
	AgeGroup        string
	Gender          string
}

// UserDirectory supplies the full active population.
type UserDirectory interface {
	ActiveUsers(ctx context.Context) ([]UserProfile, error)
}

// CommitmentDirectory answers "who is busy on this date" from party
// membership and personal schedule entries.
type CommitmentDirectory interface {
	CommittedUserIDs(ctx context.Context, date string) (map[uuid.UUID]struct{}, error)
}

// HistoryDirectory supplies historical party participation.
type HistoryDirectory interface {
	ParticipationCounts(ctx context.Context) (map[uuid.UUID]int, error)
	SharedPartyDates(ctx context.Context, userA, userB uuid.UUID) ([]string, error)
}

// PreferenceStore supplies the normalized lunch-style preference kept
// outside the user record.
type PreferenceStore interface {
	LunchStyleByUser(ctx context.Context) (map[uuid.UUID]string, error)
}

// MemberDescriptor is one proposed lunch companion inside an entry.
type MemberDescriptor struct {
	UserID        uuid.UUID `json:"user_id"`
	Nickname      string    `json:"nickname"`
	FoodGenres    []string  `json:"food_genres"`
	LunchStyle    string    `json:"lunch_style"`
	LastDinedDate string    `json:"last_dined_date"`
}

// RecommendationEntry is one candidate lunch group proposed to a requester
// for a date.
type RecommendationEntry struct {
	RequesterID uuid.UUID          `json:"requester_id"`
	Date        string             `json:"date"`
	Members     []MemberDescriptor `json:"members"`
}

const (
	anonymousNickname = "익명"
	firstMeeting      = "첫 만남"
)
