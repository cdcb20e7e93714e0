package service

import (
	"context"
	"testing"

	"backend/internal/apperr"
	"backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	e := newEnv(t)
	svc := NewMemberService(e.members)
	ctx := context.Background()

	member, err := svc.Register(ctx, RegisterMemberRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "s3cret-pass",
		Role:     model.RoleMember,
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", member.Username)

	tokens, err := svc.Login(ctx, LoginMemberRequest{Email: "alice@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.Token)
	assert.NotEmpty(t, tokens.RefreshToken)

	_, err = svc.Login(ctx, LoginMemberRequest{Email: "alice@example.com", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, "INVALID_CREDENTIALS", apperr.CodeOf(err))
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	e := newEnv(t)
	svc := NewMemberService(e.members)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterMemberRequest{
		Username: "alice", Email: "alice@example.com", Password: "s3cret-pass", Role: model.RoleMember,
	})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterMemberRequest{
		Username: "alice", Email: "other@example.com", Password: "s3cret-pass", Role: model.RoleMember,
	})
	assert.Equal(t, "USERNAME_TAKEN", apperr.CodeOf(err))

	_, err = svc.Register(ctx, RegisterMemberRequest{
		Username: "alice2", Email: "alice@example.com", Password: "s3cret-pass", Role: model.RoleMember,
	})
	assert.Equal(t, "EMAIL_TAKEN", apperr.CodeOf(err))
}

func TestRefreshTokenRotation(t *testing.T) {
	e := newEnv(t)
	svc := NewMemberService(e.members)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterMemberRequest{
		Username: "bob", Email: "bob@example.com", Password: "s3cret-pass", Role: model.RoleMember,
	})
	require.NoError(t, err)

	tokens, err := svc.Login(ctx, LoginMemberRequest{Email: "bob@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)

	rotated, err := svc.RefreshToken(ctx, RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, tokens.RefreshToken, rotated.RefreshToken)

	// The old token was consumed by the rotation
	_, err = svc.RefreshToken(ctx, RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	assert.Equal(t, "INVALID_REFRESH_TOKEN", apperr.CodeOf(err))
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	e := newEnv(t)
	svc := NewMemberService(e.members)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterMemberRequest{
		Username: "carol", Email: "carol@example.com", Password: "s3cret-pass", Role: model.RoleMember,
	})
	require.NoError(t, err)

	tokens, err := svc.Login(ctx, LoginMemberRequest{Email: "carol@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, tokens.RefreshToken))

	_, err = svc.RefreshToken(ctx, RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	assert.Equal(t, "INVALID_REFRESH_TOKEN", apperr.CodeOf(err))
}
