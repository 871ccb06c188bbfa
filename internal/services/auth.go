package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lunchmate/lunchmate-backend/internal/logger"
	"github.com/lunchmate/lunchmate-backend/internal/repos"
	"github.com/lunchmate/lunchmate-backend/internal/requestdata"
	"github.com/lunchmate/lunchmate-backend/internal/types"
	"github.com/lunchmate/lunchmate-backend/internal/utils"
)

const (
	tokenTypeAccess = "access"
	tokenTypeTemp   = "temp"

	magicLinkTTL = 15 * time.Minute
	tempTokenTTL = 10 * time.Minute
)

var nicknamePattern = regexp.MustCompile(`^[a-zA-Z0-9가-힣]+$`)

type JWTClaims struct {
	TokenType string `json:"token_type,omitempty"`
	Email     string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// VerifyResult is the outcome of a magic-link verification: either a pending
// registration (temp token) or a completed login (access + refresh tokens).
type VerifyResult struct {
	Type         string      `json:"type"`
	Email        string      `json:"email"`
	User         *types.User `json:"user,omitempty"`
	TempToken    string      `json:"temp_token,omitempty"`
	AccessToken  string      `json:"access_token,omitempty"`
	RefreshToken string      `json:"refresh_token,omitempty"`
}

type AuthService interface {
	SendMagicLink(ctx context.Context, email string) (bool, error)
	VerifyMagicLink(ctx context.Context, rawToken string) (*VerifyResult, error)
	CompleteRegistration(ctx context.Context, tempToken, nickname string) (*VerifyResult, error)
	RefreshUser(ctx context.Context, refreshToken string) (string, string, error)
	LogoutUser(ctx context.Context) error
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	userTokenRepo repos.UserTokenRepo
	magicLinkRepo repos.MagicLinkRepo
	email         EmailService
	emailPattern  *regexp.Regexp
	linkBaseURL   string
	jwtSecretKey  string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewAuthService(
	db *gorm.DB,
	baseLog *logger.Logger,
	userRepo repos.UserRepo,
	userTokenRepo repos.UserTokenRepo,
	magicLinkRepo repos.MagicLinkRepo,
	email EmailService,
	jwtSecretKey string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	log := baseLog.With("service", "AuthService")
	domain := utils.GetEnv("ALLOWED_EMAIL_DOMAIN", "koica.go.kr", log)
	return &authService{
		db:            db,
		log:           log,
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		magicLinkRepo: magicLinkRepo,
		email:         email,
		emailPattern:  regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@` + regexp.QuoteMeta(domain) + `$`),
		linkBaseURL:   utils.GetEnv("MAGIC_LINK_BASE_URL", "http://localhost:8080/auth/verify-link", log),
		jwtSecretKey:  jwtSecretKey,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (as *authService) SendMagicLink(ctx context.Context, email string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !as.emailPattern.MatchString(email) {
		return false, fmt.Errorf("only company email addresses are allowed")
	}

	users, err := as.userRepo.GetByEmails(ctx, nil, []string{email})
	if err != nil {
		return false, fmt.Errorf("look up user by email: %w", err)
	}
	isNewUser := len(users) == 0
	nickname := ""
	if !isNewUser {
		nickname = users[0].Nickname
	}

	rawToken, tokenHash, err := newMagicToken()
	if err != nil {
		return false, fmt.Errorf("generate magic token: %w", err)
	}
	_, err = as.magicLinkRepo.Create(ctx, nil, &types.MagicLinkToken{
		ID:        uuid.New(),
		TokenHash: tokenHash,
		Email:     email,
		ExpiresAt: time.Now().Add(magicLinkTTL),
	})
	if err != nil {
		return false, fmt.Errorf("store magic token: %w", err)
	}

	link := as.linkBaseURL + "?token=" + rawToken
	if err := as.email.SendMagicLink(ctx, email, nickname, link); err != nil {
		return false, fmt.Errorf("send magic link: %w", err)
	}
	return isNewUser, nil
}

func (as *authService) VerifyMagicLink(ctx context.Context, rawToken string) (*VerifyResult, error) {
	if rawToken == "" {
		return nil, fmt.Errorf("token required")
	}
	stored, err := as.magicLinkRepo.GetByTokenHash(ctx, nil, hashToken(rawToken))
	if err != nil {
		return nil, fmt.Errorf("invalid or expired link")
	}
	if stored.IsUsed || time.Now().After(stored.ExpiresAt) {
		return nil, fmt.Errorf("invalid or expired link")
	}
	if err := as.magicLinkRepo.MarkUsed(ctx, nil, stored.TokenHash); err != nil {
		return nil, fmt.Errorf("consume magic token: %w", err)
	}

	users, err := as.userRepo.GetByEmails(ctx, nil, []string{stored.Email})
	if err != nil {
		return nil, fmt.Errorf("look up user by email: %w", err)
	}

	if len(users) == 0 {
		tempToken, err := as.generateTempToken(stored.Email)
		if err != nil {
			return nil, fmt.Errorf("generate temp token: %w", err)
		}
		return &VerifyResult{Type: "register", Email: stored.Email, TempToken: tempToken}, nil
	}

	user := users[0]
	var accessToken, refreshToken string
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		accessToken, refreshToken, err = as.issueTokens(ctx, tx, user)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &VerifyResult{
		Type:         "login",
		Email:        stored.Email,
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (as *authService) CompleteRegistration(ctx context.Context, tempToken, nickname string) (*VerifyResult, error) {
	claims, err := as.parseClaims(tempToken)
	if err != nil || claims.TokenType != tokenTypeTemp || claims.Email == "" {
		return nil, fmt.Errorf("invalid temp token")
	}

	nickname = strings.TrimSpace(nickname)
	if n := utf8.RuneCountInString(nickname); n < 2 || n > 8 {
		return nil, fmt.Errorf("nickname must be 2-8 characters")
	}
	if !nicknamePattern.MatchString(nickname) {
		return nil, fmt.Errorf("nickname must not contain special characters")
	}
	taken, err := as.userRepo.NicknameExists(ctx, nil, nickname, uuid.Nil)
	if err != nil {
		return nil, fmt.Errorf("check nickname: %w", err)
	}
	if taken {
		return nil, fmt.Errorf("nickname already in use")
	}

	user := &types.User{
		ID:         uuid.New(),
		Email:      claims.Email,
		Nickname:   nickname,
		EmployeeID: generateEmployeeID(),
		IsActive:   true,
	}
	var accessToken, refreshToken string
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, cErr := as.userRepo.Create(ctx, tx, []*types.User{user}); cErr != nil {
			return fmt.Errorf("create user: %w", cErr)
		}
		var tErr error
		accessToken, refreshToken, tErr = as.issueTokens(ctx, tx, user)
		return tErr
	})
	if err != nil {
		return nil, err
	}
	return &VerifyResult{
		Type:         "login",
		Email:        user.Email,
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (as *authService) RefreshUser(ctx context.Context, refreshToken string) (string, string, error) {
	if refreshToken == "" {
		return "", "", fmt.Errorf("refresh token required")
	}
	var accessToken, newRefreshToken string
	err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		foundTokens, err := as.userTokenRepo.GetByRefreshTokens(ctx, tx, []string{refreshToken})
		if err != nil {
			return fmt.Errorf("fetch refresh token: %w", err)
		}
		if len(foundTokens) == 0 {
			return fmt.Errorf("invalid refresh token")
		}
		existing := foundTokens[0]
		if existing.ExpiresAt.Before(time.Now()) {
			if dErr := as.userTokenRepo.FullDeleteByTokens(ctx, tx, []*types.UserToken{existing}); dErr != nil {
				return fmt.Errorf("delete expired refresh token: %w", dErr)
			}
			return fmt.Errorf("refresh token expired")
		}
		users, err := as.userRepo.GetByIDs(ctx, tx, []uuid.UUID{existing.UserID})
		if err != nil || len(users) == 0 {
			return fmt.Errorf("load user for refresh")
		}
		accessToken, newRefreshToken, err = as.issueTokens(ctx, tx, users[0])
		if err != nil {
			return err
		}
		return as.userTokenRepo.FullDeleteByTokens(ctx, tx, []*types.UserToken{existing})
	})
	if err != nil {
		as.log.Warn("Refresh failed", "error", err)
		return "", "", err
	}
	return accessToken, newRefreshToken, nil
}

func (as *authService) LogoutUser(ctx context.Context) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.TokenString == "" {
		return fmt.Errorf("no authenticated session in context")
	}
	return as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		foundTokens, err := as.userTokenRepo.GetByAccessTokens(ctx, tx, []string{rd.TokenString})
		if err != nil {
			return fmt.Errorf("find session token: %w", err)
		}
		if len(foundTokens) == 0 {
			return nil
		}
		return as.userTokenRepo.FullDeleteByTokens(ctx, tx, foundTokens)
	})
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	claims, err := as.parseClaims(tokenString)
	if err != nil {
		return ctx, fmt.Errorf("parse token: %w", err)
	}
	if claims.TokenType != tokenTypeAccess {
		return ctx, fmt.Errorf("token type %q cannot access the API", claims.TokenType)
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, fmt.Errorf("invalid user id in token: %w", err)
	}
	foundTokens, err := as.userTokenRepo.GetByAccessTokens(ctx, nil, []string{tokenString})
	if err != nil {
		return ctx, fmt.Errorf("fetch session token: %w", err)
	}
	if len(foundTokens) == 0 {
		return ctx, fmt.Errorf("session revoked")
	}
	rd := &requestdata.RequestData{
		TokenString:  tokenString,
		RefreshToken: foundTokens[0].RefreshToken,
		UserID:       userID,
	}
	return requestdata.WithRequestData(ctx, rd), nil
}

func (as *authService) issueTokens(ctx context.Context, tx *gorm.DB, user *types.User) (string, string, error) {
	claims := JWTClaims{
		TokenType: tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(as.jwtSecretKey))
	if err != nil {
		return "", "", fmt.Errorf("sign access token: %w", err)
	}
	refreshToken := uuid.New().String()
	_, err = as.userTokenRepo.Create(ctx, tx, []*types.UserToken{{
		ID:           uuid.New(),
		UserID:       user.ID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(as.refreshTTL),
	}})
	if err != nil {
		return "", "", fmt.Errorf("store session token: %w", err)
	}
	return accessToken, refreshToken, nil
}

func (as *authService) generateTempToken(email string) (string, error) {
	claims := JWTClaims{
		TokenType: tokenTypeTemp,
		Email:     email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tempTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(as.jwtSecretKey))
}

func (as *authService) parseClaims(tokenString string) (*JWTClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*JWTClaims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("invalid or expired token")
	}
	return claims, nil
}

func newMagicToken() (string, string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}
	raw := base64.RawURLEncoding.EncodeToString(buf)
	return raw, hashToken(raw), nil
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func generateEmployeeID() string {
	return "LM-" + strings.ToUpper(uuid.New().String()[:8])
}
