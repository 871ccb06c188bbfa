package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/lunchmate/lunchmate-backend/internal/engine"
	"github.com/lunchmate/lunchmate-backend/internal/logger"
	"github.com/lunchmate/lunchmate-backend/internal/repos"
)

const lunchStylePrefType = "lunch_style"

// DirectoryService adapts the gorm repos to the engine's read-only
// directory interfaces (user, commitment, history, preference).
type DirectoryService struct {
	db           *gorm.DB
	log          *logger.Logger
	userRepo     repos.UserRepo
	partyRepo    repos.PartyRepo
	scheduleRepo repos.PersonalScheduleRepo
	prefRepo     repos.UserPreferenceRepo
}

func NewDirectoryService(
	db *gorm.DB,
	baseLog *logger.Logger,
	userRepo repos.UserRepo,
	partyRepo repos.PartyRepo,
	scheduleRepo repos.PersonalScheduleRepo,
	prefRepo repos.UserPreferenceRepo,
) *DirectoryService {
	return &DirectoryService{
		db:           db,
		log:          baseLog.With("service", "DirectoryService"),
		userRepo:     userRepo,
		partyRepo:    partyRepo,
		scheduleRepo: scheduleRepo,
		prefRepo:     prefRepo,
	}
}

func (ds *DirectoryService) ActiveUsers(ctx context.Context) ([]engine.UserProfile, error) {
	users, err := ds.userRepo.GetAllActive(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("load active users: %w", err)
	}
	profiles := make([]engine.UserProfile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, engine.UserProfile{
			ID:              u.ID,
			Nickname:        u.Nickname,
			FoodPreferences: parseTags(u.FoodPreferences),
			LunchStyles:     parseTags(u.LunchStyles),
			AgeGroup:        u.AgeGroup,
			Gender:          u.Gender,
		})
	}
	return profiles, nil
}

func (ds *DirectoryService) CommittedUserIDs(ctx context.Context, date string) (map[uuid.UUID]struct{}, error) {
	partyIDs, err := ds.partyRepo.GetCommittedUserIDs(ctx, nil, date)
	if err != nil {
		return nil, fmt.Errorf("party commitments on %s: %w", date, err)
	}
	scheduleIDs, err := ds.scheduleRepo.GetUserIDsByDate(ctx, nil, date)
	if err != nil {
		return nil, fmt.Errorf("personal schedules on %s: %w", date, err)
	}
	committed := make(map[uuid.UUID]struct{}, len(partyIDs)+len(scheduleIDs))
	for _, id := range partyIDs {
		committed[id] = struct{}{}
	}
	for _, id := range scheduleIDs {
		committed[id] = struct{}{}
	}
	return committed, nil
}

func (ds *DirectoryService) ParticipationCounts(ctx context.Context) (map[uuid.UUID]int, error) {
	return ds.partyRepo.GetParticipationCounts(ctx, nil)
}

// SharedPartyDates drops rows whose stored date does not parse; a malformed
// commitment fails open toward availability.
func (ds *DirectoryService) SharedPartyDates(ctx context.Context, userA, userB uuid.UUID) ([]string, error) {
	dates, err := ds.partyRepo.GetSharedPartyDates(ctx, nil, userA, userB)
	if err != nil {
		return nil, err
	}
	valid := dates[:0]
	for _, d := range dates {
		if _, perr := time.Parse("2006-01-02", d); perr != nil {
			ds.log.Warn("Skipping malformed party date", "party_date", d)
			continue
		}
		valid = append(valid, d)
	}
	return valid, nil
}

func (ds *DirectoryService) LunchStyleByUser(ctx context.Context) (map[uuid.UUID]string, error) {
	prefs, err := ds.prefRepo.GetAllByType(ctx, nil, lunchStylePrefType)
	if err != nil {
		return nil, fmt.Errorf("load lunch style preferences: %w", err)
	}
	styles := make(map[uuid.UUID]string, len(prefs))
	for _, p := range prefs {
		styles[p.UserID] = p.PrefValue
	}
	return styles, nil
}

// parseTags reads a JSON string array; legacy rows stored comma-separated
// plain text, which is accepted as a fallback.
func parseTags(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var tags []string
	if err := json.Unmarshal(raw, &tags); err == nil {
		return tags
	}
	parts := strings.Split(strings.Trim(string(raw), `"`), ",")
	tags = tags[:0]
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	return tags
}
