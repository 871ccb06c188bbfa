package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type User struct {
	ID              uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Email           string         `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Nickname        string         `gorm:"not null;column:nickname" json:"nickname"`
	EmployeeID      string         `gorm:"uniqueIndex;not null;column:employee_id" json:"employee_id"`
	FoodPreferences datatypes.JSON `gorm:"column:food_preferences" json:"food_preferences"`
	LunchStyles     datatypes.JSON `gorm:"column:lunch_styles" json:"lunch_styles"`
	AgeGroup        string         `gorm:"column:age_group" json:"age_group"`
	Gender          string         `gorm:"column:gender" json:"gender"`
	ProfileImage    string         `gorm:"column:profile_image" json:"profile_image"`
	IsActive        bool           `gorm:"not null;default:true;column:is_active" json:"is_active"`
	CreatedAt       time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (User) TableName() string {
	return "user"
}
