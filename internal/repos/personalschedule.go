package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lunchmate/lunchmate-backend/internal/logger"
	"github.com/lunchmate/lunchmate-backend/internal/types"
)

type PersonalScheduleRepo interface {
	Create(ctx context.Context, tx *gorm.DB, entry *types.PersonalSchedule) (*types.PersonalSchedule, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.PersonalSchedule, error)
	GetUserIDsByDate(ctx context.Context, tx *gorm.DB, date string) ([]uuid.UUID, error)
	FullDelete(ctx context.Context, tx *gorm.DB, entryID, userID uuid.UUID) error
}

type personalScheduleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPersonalScheduleRepo(db *gorm.DB, baseLog *logger.Logger) PersonalScheduleRepo {
	return &personalScheduleRepo{db: db, log: baseLog.With("repo", "PersonalScheduleRepo")}
}

func (sr *personalScheduleRepo) Create(ctx context.Context, tx *gorm.DB, entry *types.PersonalSchedule) (*types.PersonalSchedule, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	if err := transaction.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

func (sr *personalScheduleRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.PersonalSchedule, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var results []*types.PersonalSchedule
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("schedule_date ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (sr *personalScheduleRepo) GetUserIDsByDate(ctx context.Context, tx *gorm.DB, date string) ([]uuid.UUID, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var userIDs []uuid.UUID
	if err := transaction.WithContext(ctx).
		Model(&types.PersonalSchedule{}).
		Where("schedule_date = ?", date).
		Pluck("user_id", &userIDs).Error; err != nil {
		return nil, err
	}
	return userIDs, nil
}

func (sr *personalScheduleRepo) FullDelete(ctx context.Context, tx *gorm.DB, entryID, userID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	return transaction.WithContext(ctx).
		Unscoped().
		Where("id = ? AND user_id = ?", entryID, userID).
		Delete(&types.PersonalSchedule{}).Error
}
