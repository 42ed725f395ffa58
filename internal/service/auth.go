package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pageza/snapfeed/backend/internal/models"
	"github.com/pageza/snapfeed/backend/internal/types"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	// SessionTTL is the lifetime of a session token.
	SessionTTL = 24 * time.Hour

	tokenIssuer       = "snapfeed"
	minPasswordLength = 8
)

// AuthService owns credentials and session tokens.
type AuthService struct {
	db         *gorm.DB
	jwtSecret  []byte
	bcryptCost int
	blocklist  TokenBlocklist
	now        func() time.Time
}

// Ensure AuthService implements IAuthService
var _ IAuthService = (*AuthService)(nil)

// NewAuthService creates a new AuthService instance. A nil blocklist falls
// back to an in-memory one.
func NewAuthService(db *gorm.DB, jwtSecret string, bcryptCost int, blocklist TokenBlocklist) *AuthService {
	if blocklist == nil {
		blocklist = NewMemoryBlocklist()
	}
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		db:         db,
		jwtSecret:  []byte(jwtSecret),
		bcryptCost: bcryptCost,
		blocklist:  blocklist,
		now:        time.Now,
	}
}

func validateRegistration(form *types.RegisterForm) error {
	v := &ValidationError{}

	switch {
	case form.Username == "":
		v.Add("username", "This field is required.")
	case utf8.RuneCountInString(form.Username) > 150:
		v.Add("username", "Ensure this value has at most 150 characters.")
	case !types.ValidUsername(form.Username):
		v.Add("username", "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
	}

	if utf8.RuneCountInString(form.Password) < minPasswordLength {
		v.Add("password1", fmt.Sprintf("This password is too short. It must contain at least %d characters.", minPasswordLength))
	}
	if form.Password != form.PasswordConfirm {
		v.Add("password2", "The two password fields didn't match.")
	}

	return v.OrNil()
}

// Register creates an account with an empty profile and returns a session
// token for it.
func (s *AuthService) Register(ctx context.Context, form *types.RegisterForm) (*models.User, string, error) {
	form.Username = strings.TrimSpace(form.Username)
	form.Email = strings.TrimSpace(form.Email)
	if err := validateRegistration(form); err != nil {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), s.bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     form.Username,
		Email:        form.Email,
		FirstName:    strings.TrimSpace(form.FirstName),
		LastName:     strings.TrimSpace(form.LastName),
		PasswordHash: string(hash),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("username = ?", user.Username).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrUsernameTaken
		}
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		_, err := ensureProfile(tx, user.ID)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			return nil, "", err
		}
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	log.Printf("[AuthService] Registered user %q (id=%d)", user.Username, user.ID)

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login checks credentials, makes sure the profile exists and returns a
// session token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.User, string, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	if _, err := ensureProfile(s.db.WithContext(ctx), user.ID); err != nil {
		return nil, "", fmt.Errorf("failed to ensure profile: %w", err)
	}

	token, err := s.issueToken(&user)
	if err != nil {
		return nil, "", err
	}
	return &user, token, nil
}

// Logout revokes token. Tokens that no longer parse need no revocation.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.parseToken(token)
	if err != nil {
		return nil
	}
	if claims.ExpiresAt == nil || claims.ID == "" {
		return nil
	}
	return s.blocklist.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}

// ValidateToken parses token and rejects revoked sessions.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return nil, err
	}

	revoked, err := s.blocklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, fmt.Errorf("%w: session has been revoked", ErrInvalidToken)
	}
	return claims, nil
}

// GetUserByID loads a user.
func (s *AuthService) GetUserByID(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *AuthService) issueToken(user *models.User) (string, error) {
	now := s.now()
	claims := &types.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    tokenIssuer,
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionTTL)),
		},
		UserID:   user.ID,
		Username: user.Username,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

func (s *AuthService) parseToken(token string) (*types.TokenClaims, error) {
	claims := &types.TokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
