package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthFixture(t *testing.T) (*fakeUserRepo, AuthService) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	users := newFakeUserRepo()
	return users, NewAuthService(users, NewSessionStore(rdb, time.Hour))
}

func TestSignupAndLogin(t *testing.T) {
	users, svc := newAuthFixture(t)
	ctx := context.Background()

	id, err := svc.Signup(ctx, SignupInput{
		FullName:    "Jane Doe",
		Email:       "jane@example.com",
		Password:    "hunter22",
		PhoneNumber: "555-0100",
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	// 密码只存哈希
	stored, err := users.FindByID(ctx, id)
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", stored.PasswordHash)
	assert.NotEmpty(t, stored.MemberSince)

	token, user, err := svc.Login(ctx, "jane@example.com", "hunter22")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "Jane Doe", user.FullName)

	session := svc.Session(ctx, token)
	require.NotNil(t, session)
	assert.Equal(t, id, session.UserID)

	svc.Logout(ctx, token)
	assert.Nil(t, svc.Session(ctx, token))
}

func TestSignupDuplicateEmail(t *testing.T) {
	_, svc := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, SignupInput{FullName: "Jane", Email: "jane@example.com", Password: "x"})
	require.NoError(t, err)

	_, err = svc.Signup(ctx, SignupInput{FullName: "Imposter", Email: "jane@example.com", Password: "y"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestProfileUpdateAndFetch(t *testing.T) {
	_, svc := newAuthFixture(t)
	ctx := context.Background()

	id, err := svc.Signup(ctx, SignupInput{
		FullName:    "Jane Doe",
		Email:       "jane@example.com",
		Password:    "hunter22",
		PhoneNumber: "555-0100",
	})
	require.NoError(t, err)

	require.NoError(t, svc.UpdateProfile(ctx, id, "Jane Smith", "555-0199"))

	user, err := svc.Profile(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Jane Smith", user.FullName)
	assert.Equal(t, "555-0199", user.PhoneNumber)
	// 邮箱不随资料更新变动
	assert.Equal(t, "jane@example.com", user.Email)
}

func TestProfileUnknownUser(t *testing.T) {
	_, svc := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Profile(ctx, "507f1f77bcf86cd799439011")
	assert.ErrorIs(t, err, ErrNotFound)

	err = svc.UpdateProfile(ctx, "507f1f77bcf86cd799439011", "Nobody", "555-0000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	_, svc := newAuthFixture(t)
	ctx := context.Background()

	_, _, err := svc.Login(ctx, "nobody@example.com", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Signup(ctx, SignupInput{FullName: "Jane", Email: "jane@example.com", Password: "right"})
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "jane@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
