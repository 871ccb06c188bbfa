package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lunchmate/lunchmate-backend/internal/logger"
	"github.com/lunchmate/lunchmate-backend/internal/repos"
	"github.com/lunchmate/lunchmate-backend/internal/requestdata"
	"github.com/lunchmate/lunchmate-backend/internal/types"
)

type ScheduleService interface {
	CreateEntry(ctx context.Context, date, description string) (*types.PersonalSchedule, error)
	ListMine(ctx context.Context) ([]*types.PersonalSchedule, error)
	DeleteEntry(ctx context.Context, entryID uuid.UUID) error
}

type scheduleService struct {
	db           *gorm.DB
	log          *logger.Logger
	scheduleRepo repos.PersonalScheduleRepo
}

func NewScheduleService(db *gorm.DB, baseLog *logger.Logger, scheduleRepo repos.PersonalScheduleRepo) ScheduleService {
	return &scheduleService{
		db:           db,
		log:          baseLog.With("service", "ScheduleService"),
		scheduleRepo: scheduleRepo,
	}
}

func (ss *scheduleService) CreateEntry(ctx context.Context, date, description string) (*types.PersonalSchedule, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, fmt.Errorf("no authenticated session in context")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, fmt.Errorf("invalid schedule date %q: %w", date, err)
	}
	return ss.scheduleRepo.Create(ctx, nil, &types.PersonalSchedule{
		ID:           uuid.New(),
		UserID:       rd.UserID,
		ScheduleDate: date,
		Description:  strings.TrimSpace(description),
	})
}

func (ss *scheduleService) ListMine(ctx context.Context) ([]*types.PersonalSchedule, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, fmt.Errorf("no authenticated session in context")
	}
	return ss.scheduleRepo.GetByUserID(ctx, nil, rd.UserID)
}

// DeleteEntry scopes the delete to the caller's own rows.
func (ss *scheduleService) DeleteEntry(ctx context.Context, entryID uuid.UUID) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return fmt.Errorf("no authenticated session in context")
	}
	return ss.scheduleRepo.FullDelete(ctx, nil, entryID, rd.UserID)
}
