package types

import (
	"time"

	"github.com/google/uuid"
)

type PersonalSchedule struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"index;not null;column:user_id" json:"user_id"`
	ScheduleDate string    `gorm:"index;not null;column:schedule_date" json:"schedule_date"`
	Description  string    `gorm:"column:description" json:"description"`
	CreatedAt    time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (PersonalSchedule) TableName() string {
	return "personal_schedule"
}
