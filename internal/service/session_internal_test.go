package service

import (
	"context"
	"testing"
	"time"

	"github.com/pageza/snapfeed/backend/internal/testhelpers"
	"github.com/pageza/snapfeed/backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestMemoryBlocklistExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	b := NewMemoryBlocklist()
	b.now = func() time.Time { return now }

	require.NoError(t, b.Revoke(ctx, "a", now.Add(time.Minute)))
	require.NoError(t, b.Revoke(ctx, "expired", now.Add(-time.Minute)))

	revoked, err := b.IsRevoked(ctx, "a")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = b.IsRevoked(ctx, "expired")
	require.NoError(t, err)
	assert.False(t, revoked)

	now = now.Add(2 * time.Minute)
	revoked, err = b.IsRevoked(ctx, "a")
	require.NoError(t, err)
	assert.False(t, revoked)

	// Revoking prunes stale entries.
	require.NoError(t, b.Revoke(ctx, "b", now.Add(time.Minute)))
	assert.Len(t, b.revoked, 1)
}

func TestTokenExpiry(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	auth := NewAuthService(db, "test-secret-0123456789", bcrypt.MinCost, nil)

	issued := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	auth.now = func() time.Time { return issued }

	_, token, err := auth.Register(context.Background(), &types.RegisterForm{
		Username:        "bob",
		Password:        testhelpers.TestPassword,
		PasswordConfirm: testhelpers.TestPassword,
	})
	require.NoError(t, err)

	auth.now = func() time.Time { return issued.Add(SessionTTL - time.Minute) }
	_, err = auth.ValidateToken(context.Background(), token)
	assert.NoError(t, err)

	auth.now = func() time.Time { return issued.Add(SessionTTL + time.Minute) }
	_, err = auth.ValidateToken(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
