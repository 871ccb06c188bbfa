package types

import (
	"time"

	"github.com/google/uuid"
)

// UserPreference is the separate preference sub-store keyed by
// (user id, preference type), e.g. ("lunch_style", "조용한 식사").
type UserPreference struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"index:idx_user_pref,unique;not null;column:user_id" json:"user_id"`
	PrefType  string    `gorm:"index:idx_user_pref,unique;not null;column:pref_type" json:"pref_type"`
	PrefValue string    `gorm:"not null;column:pref_value" json:"pref_value"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (UserPreference) TableName() string {
	return "user_preference"
}
