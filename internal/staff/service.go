package staff

import (
	"context"
	"errors"

	"gymdesk/internal/auth"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type Service interface {
	Login(ctx context.Context, req LoginRequest) (*TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error)
	Create(ctx context.Context, req CreateStaffRequest) (*Staff, error)
	GetByID(ctx context.Context, id int) (*Staff, error)
	EnsureAdmin(ctx context.Context, email, password string) (bool, error)
}

type service struct {
	repo      Repository
	jwtSecret string
}

func NewService(repo Repository, jwtSecret string) Service {
	return &service{
		repo:      repo,
		jwtSecret: jwtSecret,
	}
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	st, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(st.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}

	accessToken, refreshToken, err := auth.GenerateTokens(st.ID, st.Email, st.Role, s.jwtSecret)
	if err != nil {
		return nil, err
	}

	return &TokenResponse{AccessToken: accessToken, RefreshToken: refreshToken, Staff: *st}, nil
}

// Refresh issues a new access token. The role comes from the current
// staff row, not from the refresh token.
func (s *service) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	claims, err := auth.ParseRefreshToken(refreshToken, s.jwtSecret)
	if err != nil {
		return nil, err
	}

	st, err := s.repo.FindByID(ctx, claims.StaffID)
	if err != nil {
		return nil, err
	}

	accessToken, err := auth.GenerateAccessToken(st.ID, st.Email, st.Role, s.jwtSecret)
	if err != nil {
		return nil, err
	}

	return &TokenResponse{AccessToken: accessToken, Staff: *st}, nil
}

func (s *service) Create(ctx context.Context, req CreateStaffRequest) (*Staff, error) {
	if !auth.ValidRole(req.Role) {
		return nil, errors.New("invalid role")
	}

	exists, err := s.repo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	return s.repo.Create(ctx, req.Name, req.Email, hash, req.Role)
}

func (s *service) GetByID(ctx context.Context, id int) (*Staff, error) {
	return s.repo.FindByID(ctx, id)
}

// EnsureAdmin creates an admin account for email unless one already exists.
// It reports whether an account was created.
func (s *service) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	exists, err := s.repo.EmailExists(ctx, email)
	if err != nil || exists {
		return false, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return false, err
	}

	if _, err := s.repo.Create(ctx, "Administrator", email, hash, auth.RoleAdmin); err != nil {
		if errors.Is(err, ErrEmailExists) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
