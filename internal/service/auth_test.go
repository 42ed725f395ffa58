package service_test

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pageza/snapfeed/backend/internal/models"
	"github.com/pageza/snapfeed/backend/internal/service"
	"github.com/pageza/snapfeed/backend/internal/testhelpers"
	"github.com/pageza/snapfeed/backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testSecret = "test-secret-0123456789"

func setupAuthTest(t *testing.T) (*gorm.DB, *service.AuthService) {
	db := testhelpers.SetupTestDB(t)
	return db, service.NewAuthService(db, testSecret, bcrypt.MinCost, nil)
}

func registerForm(username string) *types.RegisterForm {
	return &types.RegisterForm{
		Username:        username,
		Email:           username + "@example.com",
		Password:        testhelpers.TestPassword,
		PasswordConfirm: testhelpers.TestPassword,
	}
}

func TestRegister(t *testing.T) {
	db, auth := setupAuthTest(t)
	ctx := context.Background()

	user, token, err := auth.Register(ctx, registerForm("alice"))
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.NotEmpty(t, token)
	assert.NotEqual(t, testhelpers.TestPassword, user.PasswordHash)

	var profiles int64
	require.NoError(t, db.Model(&models.Profile{}).Where("user_id = ?", user.ID).Count(&profiles).Error)
	assert.Equal(t, int64(1), profiles)

	claims, err := auth.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.NotEmpty(t, claims.TokenID())
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name  string
		form  func() *types.RegisterForm
		field string
	}{
		{
			name: "mismatched passwords",
			form: func() *types.RegisterForm {
				f := registerForm("alice")
				f.PasswordConfirm = "something-else"
				return f
			},
			field: "password2",
		},
		{
			name: "short password",
			form: func() *types.RegisterForm {
				f := registerForm("alice")
				f.Password, f.PasswordConfirm = "short", "short"
				return f
			},
			field: "password1",
		},
		{
			name:  "invalid username",
			form:  func() *types.RegisterForm { return registerForm("not allowed!") },
			field: "username",
		},
		{
			name:  "blank username",
			form:  func() *types.RegisterForm { return registerForm("   ") },
			field: "username",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, auth := setupAuthTest(t)

			_, _, err := auth.Register(context.Background(), tt.form())
			require.Error(t, err)

			var verr *service.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)

			var users int64
			require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
			assert.Zero(t, users)
		})
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	_, auth := setupAuthTest(t)
	ctx := context.Background()

	_, _, err := auth.Register(ctx, registerForm("alice"))
	require.NoError(t, err)

	_, _, err = auth.Register(ctx, registerForm("alice"))
	assert.ErrorIs(t, err, service.ErrUsernameTaken)
}

func TestLogin(t *testing.T) {
	db, auth := setupAuthTest(t)
	ctx := context.Background()
	alice := testhelpers.CreateUser(t, db, "alice")

	user, token, err := auth.Login(ctx, "alice", testhelpers.TestPassword)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, user.ID)

	claims, err := auth.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, claims.UserID)
}

func TestLoginInvalidCredentials(t *testing.T) {
	db, auth := setupAuthTest(t)
	ctx := context.Background()
	testhelpers.CreateUser(t, db, "alice")

	_, _, err := auth.Login(ctx, "alice", "wrong-password")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, _, err = auth.Login(ctx, "nobody", testhelpers.TestPassword)
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestLoginCreatesMissingProfile(t *testing.T) {
	db, auth := setupAuthTest(t)
	ctx := context.Background()
	alice := testhelpers.CreateUser(t, db, "alice")
	require.NoError(t, db.Where("user_id = ?", alice.ID).Delete(&models.Profile{}).Error)

	_, _, err := auth.Login(ctx, "alice", testhelpers.TestPassword)
	require.NoError(t, err)

	var profiles int64
	require.NoError(t, db.Model(&models.Profile{}).Where("user_id = ?", alice.ID).Count(&profiles).Error)
	assert.Equal(t, int64(1), profiles)
}

func TestLogoutRevokesToken(t *testing.T) {
	db, auth := setupAuthTest(t)
	ctx := context.Background()
	testhelpers.CreateUser(t, db, "alice")

	_, token, err := auth.Login(ctx, "alice", testhelpers.TestPassword)
	require.NoError(t, err)
	_, other, err := auth.Login(ctx, "alice", testhelpers.TestPassword)
	require.NoError(t, err)

	require.NoError(t, auth.Logout(ctx, token))

	_, err = auth.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	// Other sessions stay valid.
	_, err = auth.ValidateToken(ctx, other)
	assert.NoError(t, err)

	assert.NoError(t, auth.Logout(ctx, "not-a-token"))
}

func TestValidateTokenInvalid(t *testing.T) {
	_, auth := setupAuthTest(t)
	ctx := context.Background()

	_, err := auth.ValidateToken(ctx, "invalid.token")
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	claims := &types.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "snapfeed", ID: "x"},
		UserID:           1,
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("another-secret-entirely"))
	require.NoError(t, err)

	_, err = auth.ValidateToken(ctx, forged)
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestGetUserByID(t *testing.T) {
	db, auth := setupAuthTest(t)
	ctx := context.Background()
	alice := testhelpers.CreateUser(t, db, "alice")

	user, err := auth.GetUserByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = auth.GetUserByID(ctx, 9999)
	assert.ErrorIs(t, err, service.ErrNotFound)
}
