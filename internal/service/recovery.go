package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"snapfeed/internal/mail"
	"snapfeed/internal/models"
	"snapfeed/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

const resetCodeTTL = 10 * time.Minute

// RecoveryService implements the password recovery flow: a short-lived
// numeric code is issued, optionally checked, and finally consumed by a
// password reset.
type RecoveryService struct {
	userRepo repository.UserRepository
	mailer   mail.Mailer
}

// NewRecoveryService creates a new RecoveryService.
func NewRecoveryService(userRepo repository.UserRepository, mailer mail.Mailer) *RecoveryService {
	return &RecoveryService{
		userRepo: userRepo,
		mailer:   mailer,
	}
}

// RequestReset issues a fresh 6-digit code with a 10-minute expiry and mails
// it to the user's registered address. A mail transport failure fails the
// whole request so the caller can tell "code issued" from "code delivered".
// A newer request overwrites any earlier code.
func (s *RecoveryService) RequestReset(ctx context.Context, username string) error {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if user == nil {
		return models.NewNotFoundError("User", username)
	}

	code, err := generateResetCode()
	if err != nil {
		return models.NewInternalError(err)
	}
	expiry := time.Now().Add(resetCodeTTL)

	if err := s.userRepo.SetResetCode(ctx, user.ID, code, expiry); err != nil {
		return err
	}

	body := fmt.Sprintf(
		"Your reset code is %s. This code is valid for 10 minutes only.", code)
	if err := s.mailer.Send(user.Email, "Password Recovery Code", body); err != nil {
		return models.NewUnavailableError(err)
	}
	return nil
}

// CheckCode validates a code without consuming it; it may be checked any
// number of times before the final reset.
func (s *RecoveryService) CheckCode(ctx context.Context, username, code string) error {
	_, err := s.validateCode(ctx, username, code)
	return err
}

// ResetPassword repeats the code checks, then installs the new password hash
// and clears the code and expiry together. A second call with the same code
// fails because the field is already cleared.
func (s *RecoveryService) ResetPassword(ctx context.Context, username, code, newPassword string) error {
	user, err := s.validateCode(ctx, username, code)
	if err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return models.NewInternalError(err)
	}
	return s.userRepo.ResetPassword(ctx, user.ID, string(hashed))
}

// validateCode runs the shared NotFound > InvalidCode > Expired check chain.
func (s *RecoveryService) validateCode(ctx context.Context, username, code string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", username)
	}
	if user.ResetCode == nil || *user.ResetCode != code {
		return nil, models.NewInvalidCodeError()
	}
	if user.ResetCodeExpiry == nil || time.Now().After(*user.ResetCodeExpiry) {
		return nil, models.NewCodeExpiredError()
	}
	return user, nil
}

// generateResetCode draws a uniformly random zero-padded 6-digit code.
func generateResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
