package types

import (
	"time"

	"github.com/google/uuid"
)

// MagicLinkToken stores only the sha256 of the one-time token mailed to the
// user; the raw token never touches the database.
type MagicLinkToken struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TokenHash string    `gorm:"uniqueIndex;not null;column:token_hash" json:"-"`
	Email     string    `gorm:"index;not null;column:email" json:"email"`
	ExpiresAt time.Time `gorm:"not null;column:expires_at" json:"expires_at"`
	IsUsed    bool      `gorm:"not null;default:false;column:is_used" json:"is_used"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (MagicLinkToken) TableName() string {
	return "magic_link_token"
}
