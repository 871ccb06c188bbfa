package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	redisclient "github.com/lunchmate/lunchmate-backend/internal/clients/redis"
	"github.com/lunchmate/lunchmate-backend/internal/logger"
	"github.com/lunchmate/lunchmate-backend/internal/repos"
	"github.com/lunchmate/lunchmate-backend/internal/requestdata"
	"github.com/lunchmate/lunchmate-backend/internal/types"
)

type UpdateProfileInput struct {
	Nickname        *string  `json:"nickname"`
	ProfileImage    *string  `json:"profile_image"`
	FoodPreferences []string `json:"food_preferences"`
	LunchStyles     []string `json:"lunch_styles"`
	AgeGroup        *string  `json:"age_group"`
	Gender          *string  `json:"gender"`
	LunchStylePref  *string  `json:"lunch_style_pref"`
}

type UserService interface {
	GetMe(ctx context.Context) (*types.User, error)
	UpdateProfile(ctx context.Context, input UpdateProfileInput) (*types.User, error)
	DeleteAccount(ctx context.Context) error
}

type userService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	userTokenRepo repos.UserTokenRepo
	prefRepo      repos.UserPreferenceRepo
	recCache      redisclient.RecommendationCache
}

// NewUserService takes the recommendation mirror so account deletion can
// drop the user's mirrored lists; recCache may be nil.
func NewUserService(
	db *gorm.DB,
	baseLog *logger.Logger,
	userRepo repos.UserRepo,
	userTokenRepo repos.UserTokenRepo,
	prefRepo repos.UserPreferenceRepo,
	recCache redisclient.RecommendationCache,
) UserService {
	return &userService{
		db:            db,
		log:           baseLog.With("service", "UserService"),
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		prefRepo:      prefRepo,
		recCache:      recCache,
	}
}

func (us *userService) GetMe(ctx context.Context) (*types.User, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, fmt.Errorf("no authenticated session in context")
	}
	users, err := us.userRepo.GetByIDs(ctx, nil, []uuid.UUID{rd.UserID})
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("user not found")
	}
	return users[0], nil
}

func (us *userService) UpdateProfile(ctx context.Context, input UpdateProfileInput) (*types.User, error) {
	user, err := us.GetMe(ctx)
	if err != nil {
		return nil, err
	}

	if input.Nickname != nil {
		nickname := strings.TrimSpace(*input.Nickname)
		if n := utf8.RuneCountInString(nickname); n < 2 || n > 8 {
			return nil, fmt.Errorf("nickname must be 2-8 characters")
		}
		if !nicknamePattern.MatchString(nickname) {
			return nil, fmt.Errorf("nickname must not contain special characters")
		}
		taken, err := us.userRepo.NicknameExists(ctx, nil, nickname, user.ID)
		if err != nil {
			return nil, fmt.Errorf("check nickname: %w", err)
		}
		if taken {
			return nil, fmt.Errorf("nickname already in use")
		}
		user.Nickname = nickname
	}
	if input.ProfileImage != nil {
		user.ProfileImage = *input.ProfileImage
	}
	if input.FoodPreferences != nil {
		raw, err := json.Marshal(input.FoodPreferences)
		if err != nil {
			return nil, fmt.Errorf("encode food preferences: %w", err)
		}
		user.FoodPreferences = datatypes.JSON(raw)
	}
	if input.LunchStyles != nil {
		raw, err := json.Marshal(input.LunchStyles)
		if err != nil {
			return nil, fmt.Errorf("encode lunch styles: %w", err)
		}
		user.LunchStyles = datatypes.JSON(raw)
	}
	if input.AgeGroup != nil {
		user.AgeGroup = *input.AgeGroup
	}
	if input.Gender != nil {
		user.Gender = *input.Gender
	}

	err = us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := us.userRepo.Update(ctx, tx, user); err != nil {
			return fmt.Errorf("save profile: %w", err)
		}
		if input.LunchStylePref != nil {
			return us.prefRepo.Upsert(ctx, tx, &types.UserPreference{
				ID:        uuid.New(),
				UserID:    user.ID,
				PrefType:  lunchStylePrefType,
				PrefValue: *input.LunchStylePref,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (us *userService) DeleteAccount(ctx context.Context) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return fmt.Errorf("no authenticated session in context")
	}
	err := us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := us.userRepo.Deactivate(ctx, tx, rd.UserID); err != nil {
			return fmt.Errorf("deactivate user: %w", err)
		}
		return us.userTokenRepo.FullDeleteByUserIDs(ctx, tx, []uuid.UUID{rd.UserID})
	})
	if err != nil {
		return err
	}
	if us.recCache != nil {
		if _, err := us.recCache.InvalidateUser(ctx, rd.UserID.String()); err != nil {
			us.log.Warn("Failed to invalidate mirrored recommendations", "user_id", rd.UserID, "error", err)
		}
	}
	return nil
}
