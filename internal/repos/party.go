package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lunchmate/lunchmate-backend/internal/logger"
	"github.com/lunchmate/lunchmate-backend/internal/types"
)

type PartyRepo interface {
	Create(ctx context.Context, tx *gorm.DB, party *types.Party) (*types.Party, error)
	GetByID(ctx context.Context, tx *gorm.DB, partyID uuid.UUID) (*types.Party, error)
	GetByDate(ctx context.Context, tx *gorm.DB, date string) ([]*types.Party, error)
	AddMember(ctx context.Context, tx *gorm.DB, member *types.PartyMember) (*types.PartyMember, error)
	RemoveMember(ctx context.Context, tx *gorm.DB, partyID, userID uuid.UUID) error
	FullDelete(ctx context.Context, tx *gorm.DB, partyID uuid.UUID) error

	// Engine-facing reads.
	GetCommittedUserIDs(ctx context.Context, tx *gorm.DB, date string) ([]uuid.UUID, error)
	GetParticipationCounts(ctx context.Context, tx *gorm.DB) (map[uuid.UUID]int, error)
	GetSharedPartyDates(ctx context.Context, tx *gorm.DB, userA, userB uuid.UUID) ([]string, error)
}

type partyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPartyRepo(db *gorm.DB, baseLog *logger.Logger) PartyRepo {
	return &partyRepo{db: db, log: baseLog.With("repo", "PartyRepo")}
}

func (pr *partyRepo) Create(ctx context.Context, tx *gorm.DB, party *types.Party) (*types.Party, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	if err := transaction.WithContext(ctx).Create(party).Error; err != nil {
		return nil, err
	}
	return party, nil
}

func (pr *partyRepo) GetByID(ctx context.Context, tx *gorm.DB, partyID uuid.UUID) (*types.Party, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	var result types.Party
	if err := transaction.WithContext(ctx).
		Preload("Members").
		Where("id = ?", partyID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (pr *partyRepo) GetByDate(ctx context.Context, tx *gorm.DB, date string) ([]*types.Party, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	var results []*types.Party
	if err := transaction.WithContext(ctx).
		Preload("Members").
		Where("party_date = ?", date).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *partyRepo) AddMember(ctx context.Context, tx *gorm.DB, member *types.PartyMember) (*types.PartyMember, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	if err := transaction.WithContext(ctx).Create(member).Error; err != nil {
		return nil, err
	}
	return member, nil
}

func (pr *partyRepo) RemoveMember(ctx context.Context, tx *gorm.DB, partyID, userID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	return transaction.WithContext(ctx).
		Unscoped().
		Where("party_id = ? AND user_id = ?", partyID, userID).
		Delete(&types.PartyMember{}).Error
}

func (pr *partyRepo) FullDelete(ctx context.Context, tx *gorm.DB, partyID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	return transaction.WithContext(ctx).
		Unscoped().
		Where("id = ?", partyID).
		Delete(&types.Party{}).Error
}

// GetCommittedUserIDs returns hosts and members of every party on the given
// date. Duplicates are fine; callers treat the result as a set.
func (pr *partyRepo) GetCommittedUserIDs(ctx context.Context, tx *gorm.DB, date string) ([]uuid.UUID, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	var hostIDs []uuid.UUID
	if err := transaction.WithContext(ctx).
		Model(&types.Party{}).
		Where("party_date = ?", date).
		Pluck("host_id", &hostIDs).Error; err != nil {
		return nil, err
	}
	var memberIDs []uuid.UUID
	if err := transaction.WithContext(ctx).
		Model(&types.PartyMember{}).
		Joins("JOIN party ON party.id = party_member.party_id").
		Where("party.party_date = ?", date).
		Pluck("party_member.user_id", &memberIDs).Error; err != nil {
		return nil, err
	}
	return append(hostIDs, memberIDs...), nil
}

type participationRow struct {
	UserID uuid.UUID
	Cnt    int
}

func (pr *partyRepo) GetParticipationCounts(ctx context.Context, tx *gorm.DB) (map[uuid.UUID]int, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	var rows []participationRow
	if err := transaction.WithContext(ctx).
		Model(&types.PartyMember{}).
		Select("user_id, COUNT(*) AS cnt").
		Group("user_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[uuid.UUID]int, len(rows))
	for _, r := range rows {
		counts[r.UserID] = r.Cnt
	}
	return counts, nil
}

// GetSharedPartyDates returns every party date both users attended, sorted
// ascending. Empty when they never dined together.
func (pr *partyRepo) GetSharedPartyDates(ctx context.Context, tx *gorm.DB, userA, userB uuid.UUID) ([]string, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	var dates []string
	err := transaction.WithContext(ctx).
		Model(&types.PartyMember{}).
		Select("party.party_date").
		Joins("JOIN party ON party.id = party_member.party_id").
		Joins("JOIN party_member pm2 ON pm2.party_id = party_member.party_id AND pm2.user_id = ?", userB).
		Where("party_member.user_id = ?", userA).
		Order("party.party_date ASC").
		Pluck("party.party_date", &dates).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return dates, nil
}
