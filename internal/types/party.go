package types

import (
	"time"

	"github.com/google/uuid"
)

// PartyDate is stored as an ISO calendar date string (YYYY-MM-DD); upstream
// rows occasionally carry malformed values, which readers must tolerate.
type Party struct {
	ID         uuid.UUID     `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	HostID     uuid.UUID     `gorm:"index;not null;column:host_id" json:"host_id"`
	Host       *User         `gorm:"foreignKey:HostID;references:ID" json:"-"`
	Title      string        `gorm:"not null;column:title" json:"title"`
	Restaurant string        `gorm:"column:restaurant" json:"restaurant"`
	PartyDate  string        `gorm:"index;not null;column:party_date" json:"party_date"`
	PartyTime  string        `gorm:"column:party_time" json:"party_time"`
	MaxMembers int           `gorm:"not null;default:4;column:max_members" json:"max_members"`
	Members    []PartyMember `gorm:"foreignKey:PartyID;references:ID" json:"members,omitempty"`
	CreatedAt  time.Time     `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt  time.Time     `gorm:"not null;default:now()" json:"updated_at"`
}

func (Party) TableName() string {
	return "party"
}

type PartyMember struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	PartyID   uuid.UUID `gorm:"index;not null;column:party_id" json:"party_id"`
	UserID    uuid.UUID `gorm:"index;not null;column:user_id" json:"user_id"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (PartyMember) TableName() string {
	return "party_member"
}
