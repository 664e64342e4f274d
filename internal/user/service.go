package user

import (
	"context"
	"errors"
	"strings"

	"parsshop-be/internal/logger"
	"parsshop-be/internal/verification"

	"go.uber.org/zap"
)

type Service interface {
	// Register creates an account once the OTP sent to the phone checks
	// out, and returns a signed session token.
	Register(ctx context.Context, input RegisterInput) (string, *User, error)
	Login(ctx context.Context, input LoginInput) (string, *User, error)
	Get(ctx context.Context, id int64) (*User, error)
	UpdateProfile(ctx context.Context, userID int64, input UpdateProfileInput) (*User, error)
}

type service struct {
	repo   Repository
	codes  verification.Service
	issuer *TokenIssuer
}

func NewService(repo Repository, codes verification.Service, issuer *TokenIssuer) Service {
	return &service{repo: repo, codes: codes, issuer: issuer}
}

func (s *service) Register(ctx context.Context, input RegisterInput) (string, *User, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("service", "User"),
		zap.String("method", "Register"),
		zap.String("phone", input.Phone),
	)

	if err := s.codes.CheckCode(ctx, input.Phone, input.Code); err != nil {
		return "", nil, err
	}

	hashed, err := HashPassword(input.Password)
	if err != nil {
		log.Error("hashing password failed", zap.Error(err))
		return "", nil, err
	}

	u := &User{Phone: input.Phone, Password: hashed, Role: RoleUser}
	if err := s.repo.Create(ctx, u); err != nil {
		if strings.Contains(err.Error(), "users_phone_key") {
			return "", nil, ErrPhoneExists
		}
		return "", nil, err
	}

	token, err := s.issuer.Generate(*u)
	if err != nil {
		log.Error("signing token failed", zap.Error(err))
		return "", nil, err
	}

	log.Info("user registered", zap.Int64("user_id", u.ID))
	return token, u, nil
}

func (s *service) Login(ctx context.Context, input LoginInput) (string, *User, error) {
	u, err := s.repo.FindByPhone(ctx, input.Phone)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if !CheckPasswordHash(input.Password, u.Password) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.issuer.Generate(*u)
	return token, u, err
}

func (s *service) Get(ctx context.Context, id int64) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) UpdateProfile(ctx context.Context, userID int64, input UpdateProfileInput) (*User, error) {
	return s.repo.UpdateProfile(ctx, userID, input)
}
