package repos

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/lunchmate/lunchmate-backend/internal/logger"
	"github.com/lunchmate/lunchmate-backend/internal/types"
)

type MagicLinkRepo interface {
	Create(ctx context.Context, tx *gorm.DB, token *types.MagicLinkToken) (*types.MagicLinkToken, error)
	GetByTokenHash(ctx context.Context, tx *gorm.DB, tokenHash string) (*types.MagicLinkToken, error)
	MarkUsed(ctx context.Context, tx *gorm.DB, tokenHash string) error
	DeleteExpired(ctx context.Context, tx *gorm.DB, before time.Time) (int64, error)
}

type magicLinkRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMagicLinkRepo(db *gorm.DB, baseLog *logger.Logger) MagicLinkRepo {
	return &magicLinkRepo{db: db, log: baseLog.With("repo", "MagicLinkRepo")}
}

func (mr *magicLinkRepo) Create(ctx context.Context, tx *gorm.DB, token *types.MagicLinkToken) (*types.MagicLinkToken, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	if err := transaction.WithContext(ctx).Create(token).Error; err != nil {
		return nil, err
	}
	return token, nil
}

func (mr *magicLinkRepo) GetByTokenHash(ctx context.Context, tx *gorm.DB, tokenHash string) (*types.MagicLinkToken, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	var result types.MagicLinkToken
	if err := transaction.WithContext(ctx).
		Where("token_hash = ?", tokenHash).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (mr *magicLinkRepo) MarkUsed(ctx context.Context, tx *gorm.DB, tokenHash string) error {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	return transaction.WithContext(ctx).
		Model(&types.MagicLinkToken{}).
		Where("token_hash = ?", tokenHash).
		Update("is_used", true).Error
}

func (mr *magicLinkRepo) DeleteExpired(ctx context.Context, tx *gorm.DB, before time.Time) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	res := transaction.WithContext(ctx).
		Unscoped().
		Where("expires_at < ?", before).
		Delete(&types.MagicLinkToken{})
	return res.RowsAffected, res.Error
}
