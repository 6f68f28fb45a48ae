package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/trademint/backend/internal/models"
	cfgpkg "github.com/trademint/backend/pkg/config"
	"github.com/trademint/backend/pkg/logctx"
	"github.com/trademint/backend/pkg/tool"
	"github.com/trademint/backend/pkg/types"
)

var (
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUserNotFound       = errors.New("user not found")
	ErrImmutableField     = errors.New("field cannot be changed once set")
)

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
	cfg *cfgpkg.Config
}

func NewService(db *gorm.DB, log *zap.SugaredLogger, cfg *cfgpkg.Config) *Service {
	return &Service{db: db, log: log, cfg: cfg}
}

// Register creates a login credential. Role is fixed here; trader capability
// still requires onboarding plus admin approval.
func (s *Service) Register(ctx context.Context, email, password string, role types.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	var existing models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, ErrEmailExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:       tool.GenerateUUIDV7(),
		Email:    email,
		Password: string(hashed),
		Role:     role,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logctx.FromCtx(ctx, s.log).Infow("user registered", "user_id", user.ID, "role", role)
	return user, nil
}

// Login verifies the credential and issues a bearer token.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.GetByEmail(ctx, email)
	if err != nil {
		return "", ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}
	return s.IssueToken(user)
}

func (s *Service) IssueToken(user *models.User) (string, error) {
	expire := time.Duration(s.cfg.JWT.ExpireMinutes) * time.Minute
	claims := jwt.MapClaims{
		"sub":  user.Email,
		"role": string(user.Role),
		"exp":  time.Now().Add(expire).Unix(),
		"iat":  time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWT.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseToken validates a bearer token and returns the subject email and role.
func (s *Service) ParseToken(tokenString string) (string, types.Role, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWT.Secret), nil
	})
	if err != nil || !token.Valid {
		return "", "", ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", ErrInvalidToken
	}
	email, _ := claims["sub"].(string)
	roleStr, _ := claims["role"].(string)
	role := types.Role(roleStr)
	if email == "" || !role.Valid() {
		return "", "", ErrInvalidToken
	}
	return email, role, nil
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

// Profile is the user view with derived fields.
type Profile struct {
	*models.User
	EnrolledCourses int64 `json:"enrolled_courses"`
}

func (s *Service) Profile(ctx context.Context, user *models.User) (*Profile, error) {
	var activeSubs int64
	err := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("user_id = ? AND status = ? AND end_date > ?", user.ID, types.SubscriptionStatusActive, time.Now()).
		Count(&activeSubs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count active subscriptions: %w", err)
	}
	return &Profile{User: user, EnrolledCourses: activeSubs}, nil
}

// ProfileUpdate carries optional profile fields. PAN and phone are immutable
// once set.
type ProfileUpdate struct {
	Name   *string `json:"name"`
	Phone  *string `json:"phone"`
	Pan    *string `json:"pan"`
	Dob    *string `json:"dob"`
	Gender *string `json:"gender"`
}

func (s *Service) UpdateProfile(ctx context.Context, user *models.User, upd *ProfileUpdate) (*Profile, error) {
	if upd.Pan != nil && user.Pan != "" && *upd.Pan != user.Pan {
		return nil, fmt.Errorf("PAN number %w", ErrImmutableField)
	}
	if upd.Phone != nil && user.Phone != "" && *upd.Phone != user.Phone {
		return nil, fmt.Errorf("phone number %w", ErrImmutableField)
	}

	if upd.Name != nil {
		user.Name = *upd.Name
	}
	if upd.Dob != nil {
		user.Dob = *upd.Dob
	}
	if upd.Gender != nil {
		user.Gender = *upd.Gender
	}
	if upd.Pan != nil && user.Pan == "" {
		user.Pan = *upd.Pan
	}
	if upd.Phone != nil && user.Phone == "" {
		user.Phone = *upd.Phone
	}

	if err := s.db.WithContext(ctx).Save(user).Error; err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return s.Profile(ctx, user)
}

func (s *Service) AcceptTerms(ctx context.Context, user *models.User) error {
	now := time.Now()
	user.TermsAccepted = true
	user.TermsAcceptedAt = &now
	if err := s.db.WithContext(ctx).Save(user).Error; err != nil {
		return fmt.Errorf("failed to accept terms: %w", err)
	}
	return nil
}
