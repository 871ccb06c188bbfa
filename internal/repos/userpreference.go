package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lunchmate/lunchmate-backend/internal/logger"
	"github.com/lunchmate/lunchmate-backend/internal/types"
)

type UserPreferenceRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, pref *types.UserPreference) error
	GetByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID, prefType string) ([]*types.UserPreference, error)
	GetAllByType(ctx context.Context, tx *gorm.DB, prefType string) ([]*types.UserPreference, error)
}

type userPreferenceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserPreferenceRepo(db *gorm.DB, baseLog *logger.Logger) UserPreferenceRepo {
	return &userPreferenceRepo{db: db, log: baseLog.With("repo", "UserPreferenceRepo")}
}

func (upr *userPreferenceRepo) Upsert(ctx context.Context, tx *gorm.DB, pref *types.UserPreference) error {
	transaction := tx
	if transaction == nil {
		transaction = upr.db
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "pref_type"}},
			DoUpdates: clause.AssignmentColumns([]string{"pref_value", "updated_at"}),
		}).
		Create(pref).Error
}

func (upr *userPreferenceRepo) GetByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID, prefType string) ([]*types.UserPreference, error) {
	transaction := tx
	if transaction == nil {
		transaction = upr.db
	}
	var results []*types.UserPreference
	if len(userIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("user_id IN ? AND pref_type = ?", userIDs, prefType).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (upr *userPreferenceRepo) GetAllByType(ctx context.Context, tx *gorm.DB, prefType string) ([]*types.UserPreference, error) {
	transaction := tx
	if transaction == nil {
		transaction = upr.db
	}
	var results []*types.UserPreference
	if err := transaction.WithContext(ctx).
		Where("pref_type = ?", prefType).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
