package verification

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"parsshop-be/internal/logger"
	"parsshop-be/internal/sms"

	"go.uber.org/zap"
)

var (
	ErrCodeExpired = errors.New("verification code expired")
	ErrCodeInvalid = errors.New("verification code invalid")
)

const codeTTL = 10 * time.Minute

type Service interface {
	SendCode(ctx context.Context, phone string) error
	CheckCode(ctx context.Context, phone, code string) error
}

type service struct {
	repo   Repository
	sender sms.Sender
}

func NewService(repo Repository, sender sms.Sender) Service {
	return &service{repo: repo, sender: sender}
}

func (s *service) SendCode(ctx context.Context, phone string) error {
	log := logger.FromCtx(ctx).With(
		zap.String("service", "Verification"),
		zap.String("phone", phone),
	)

	code, err := randomDigits(5)
	if err != nil {
		return err
	}

	c := &Code{
		Phone:     phone,
		Code:      code,
		ExpiresAt: time.Now().Add(codeTTL),
	}
	if err := s.repo.Create(ctx, c); err != nil {
		log.Error("storing verification code failed", zap.Error(err))
		return err
	}

	s.sender.Send(ctx, phone, fmt.Sprintf("کد تایید شما: %s", code))
	return nil
}

func (s *service) CheckCode(ctx context.Context, phone, code string) error {
	c, err := s.repo.Find(ctx, phone, code)
	if err != nil {
		if errors.Is(err, ErrCodeNotFound) {
			return ErrCodeInvalid
		}
		return err
	}

	if time.Now().After(c.ExpiresAt) {
		return ErrCodeExpired
	}

	// single use
	return s.repo.Delete(ctx, c.ID)
}

func randomDigits(n int) (string, error) {
	digits := make([]byte, n)
	for i := range digits {
		v, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + v.Int64())
	}
	return string(digits), nil
}
