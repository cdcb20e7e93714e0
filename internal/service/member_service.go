package service

import (
	"context"
	"os"
	"time"

	"backend/internal/apperr"
	"backend/internal/model"
	"backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// DTOs for request validation
type RegisterMemberRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"required,oneof=admin manager member"`
}

type LoginMemberRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type TokenResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

// MemberResponse returns a member without exposing sensitive data
type MemberResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt string    `json:"created_at"`
}

// MemberService is the member directory plus the auth entry points consumed
// by the transport layer
type MemberService interface {
	Register(ctx context.Context, req RegisterMemberRequest) (*MemberResponse, error)
	Login(ctx context.Context, req LoginMemberRequest) (*TokenResponse, error)
	RefreshToken(ctx context.Context, req RefreshTokenRequest) (*TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	// Resolve looks up an active member by id
	Resolve(ctx context.Context, id uuid.UUID) (*MemberResponse, error)
	ListMembers(ctx context.Context, page, limit int) ([]MemberResponse, int64, error)
}

type memberService struct {
	repo repository.MemberRepository
}

// NewMemberService returns a new instance of MemberService
func NewMemberService(repo repository.MemberRepository) MemberService {
	return &memberService{repo: repo}
}

func mapMemberResponse(m *model.Member) *MemberResponse {
	return &MemberResponse{
		ID:        m.ID,
		Username:  m.Username,
		Email:     m.Email,
		Role:      m.Role,
		CreatedAt: m.CreatedAt.Format(time.RFC3339),
	}
}

func (s *memberService) Register(ctx context.Context, req RegisterMemberRequest) (*MemberResponse, error) {
	if _, err := s.repo.GetByUsername(ctx, req.Username); err == nil {
		return nil, apperr.New(apperr.KindConflict, "USERNAME_TAKEN", "username already exists")
	}
	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, apperr.New(apperr.KindConflict, "EMAIL_TAKEN", "email already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	member := &model.Member{
		Username: req.Username,
		Email:    req.Email,
		Password: string(hashedPassword),
		Role:     req.Role,
	}

	if err := s.repo.Create(ctx, member); err != nil {
		return nil, err
	}

	return mapMemberResponse(member), nil
}

func (s *memberService) Login(ctx context.Context, req LoginMemberRequest) (*TokenResponse, error) {
	member, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperr.New(apperr.KindForbidden, "INVALID_CREDENTIALS", "invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(member.Password), []byte(req.Password)); err != nil {
		return nil, apperr.New(apperr.KindForbidden, "INVALID_CREDENTIALS", "invalid email or password")
	}

	return s.issueTokens(ctx, member)
}

// issueTokens signs a fresh access token and rotates in a new refresh token
func (s *memberService) issueTokens(ctx context.Context, member *model.Member) (*TokenResponse, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  member.ID.String(),
		"role": member.Role,
		"exp":  time.Now().Add(24 * time.Hour).Unix(),
	})

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "default_super_secret_key"
	}

	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return nil, err
	}

	refresh := &model.RefreshToken{
		MemberID:  member.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(7 * 24 * time.Hour),
	}
	if err := s.repo.CreateRefreshToken(ctx, refresh); err != nil {
		return nil, err
	}

	return &TokenResponse{Token: signed, RefreshToken: refresh.Token}, nil
}

func (s *memberService) RefreshToken(ctx context.Context, req RefreshTokenRequest) (*TokenResponse, error) {
	stored, err := s.repo.GetRefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, apperr.New(apperr.KindForbidden, "INVALID_REFRESH_TOKEN", "refresh token not recognized")
	}
	if time.Now().After(stored.ExpiresAt) {
		_ = s.repo.DeleteRefreshToken(ctx, stored.Token)
		return nil, apperr.New(apperr.KindForbidden, "REFRESH_TOKEN_EXPIRED", "refresh token expired")
	}

	member, err := s.repo.GetByID(ctx, stored.MemberID)
	if err != nil {
		return nil, err
	}

	// Single-use tokens: the old one dies with the rotation
	if err := s.repo.DeleteRefreshToken(ctx, stored.Token); err != nil {
		return nil, err
	}

	return s.issueTokens(ctx, member)
}

func (s *memberService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.repo.DeleteRefreshToken(ctx, refreshToken)
}

func (s *memberService) Resolve(ctx context.Context, id uuid.UUID) (*MemberResponse, error) {
	member, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return mapMemberResponse(member), nil
}

func (s *memberService) ListMembers(ctx context.Context, page, limit int) ([]MemberResponse, int64, error) {
	members, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]MemberResponse, 0, len(members))
	for i := range members {
		res = append(res, *mapMemberResponse(&members[i]))
	}
	return res, total, nil
}
