package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"snapfeed/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// MockMailer is a mock of the mail.Mailer interface
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(to, subject, body string) error {
	args := m.Called(to, subject, body)
	return args.Error(0)
}

func strptr(s string) *string { return &s }

func timeptr(t time.Time) *time.Time { return &t }

func TestRequestReset(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown user", func(t *testing.T) {
		repo := new(MockUserRepository)
		mailer := new(MockMailer)
		svc := NewRecoveryService(repo, mailer)
		repo.On("GetByUsername", mock.Anything, "ghost").Return(nil, nil)

		err := svc.RequestReset(ctx, "ghost")
		assertAppErrorCode(t, err, "NOT_FOUND")
		mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("persists a six digit code and mails it", func(t *testing.T) {
		repo := new(MockUserRepository)
		mailer := new(MockMailer)
		svc := NewRecoveryService(repo, mailer)
		user := &models.User{ID: 3, Username: "alice", Email: "a@example.com"}
		repo.On("GetByUsername", mock.Anything, "alice").Return(user, nil)

		var savedCode string
		repo.On("SetResetCode", mock.Anything, uint(3), mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).
			Run(func(args mock.Arguments) {
				savedCode = args.String(2)
				expiry := args.Get(3).(time.Time)
				assert.WithinDuration(t, time.Now().Add(10*time.Minute), expiry, 5*time.Second)
			}).Return(nil)
		mailer.On("Send", "a@example.com", mock.Anything, mock.MatchedBy(func(body string) bool {
			return savedCode != "" // Send runs after the code is stored
		})).Return(nil)

		err := svc.RequestReset(ctx, "alice")
		require.NoError(t, err)
		assert.Len(t, savedCode, 6)
		repo.AssertExpectations(t)
		mailer.AssertExpectations(t)
	})

	t.Run("mail transport failure fails the request", func(t *testing.T) {
		repo := new(MockUserRepository)
		mailer := new(MockMailer)
		svc := NewRecoveryService(repo, mailer)
		user := &models.User{ID: 3, Username: "alice", Email: "a@example.com"}
		repo.On("GetByUsername", mock.Anything, "alice").Return(user, nil)
		repo.On("SetResetCode", mock.Anything, uint(3), mock.Anything, mock.Anything).Return(nil)
		mailer.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("relay down"))

		err := svc.RequestReset(ctx, "alice")
		assertAppErrorCode(t, err, "UNAVAILABLE")
	})
}

func TestCheckCode(t *testing.T) {
	ctx := context.Background()

	withUser := func(u *models.User) (*RecoveryService, *MockUserRepository) {
		repo := new(MockUserRepository)
		repo.On("GetByUsername", mock.Anything, "alice").Return(u, nil)
		return NewRecoveryService(repo, new(MockMailer)), repo
	}

	t.Run("no code issued", func(t *testing.T) {
		svc, _ := withUser(&models.User{ID: 3, Username: "alice"})
		assertAppErrorCode(t, svc.CheckCode(ctx, "alice", "123456"), "INVALID_CODE")
	})

	t.Run("mismatched code", func(t *testing.T) {
		svc, _ := withUser(&models.User{
			ID: 3, Username: "alice",
			ResetCode:       strptr("654321"),
			ResetCodeExpiry: timeptr(time.Now().Add(5 * time.Minute)),
		})
		assertAppErrorCode(t, svc.CheckCode(ctx, "alice", "123456"), "INVALID_CODE")
	})

	t.Run("expired code", func(t *testing.T) {
		svc, _ := withUser(&models.User{
			ID: 3, Username: "alice",
			ResetCode:       strptr("123456"),
			ResetCodeExpiry: timeptr(time.Now().Add(-time.Minute)),
		})
		assertAppErrorCode(t, svc.CheckCode(ctx, "alice", "123456"), "CODE_EXPIRED")
	})

	t.Run("valid code can be checked repeatedly", func(t *testing.T) {
		svc, _ := withUser(&models.User{
			ID: 3, Username: "alice",
			ResetCode:       strptr("123456"),
			ResetCodeExpiry: timeptr(time.Now().Add(5 * time.Minute)),
		})
		assert.NoError(t, svc.CheckCode(ctx, "alice", "123456"))
		assert.NoError(t, svc.CheckCode(ctx, "alice", "123456"))
	})
}

func TestResetPassword(t *testing.T) {
	ctx := context.Background()

	t.Run("installs a fresh hash and clears the code", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := NewRecoveryService(repo, new(MockMailer))
		repo.On("GetByUsername", mock.Anything, "alice").Return(&models.User{
			ID: 3, Username: "alice",
			ResetCode:       strptr("123456"),
			ResetCodeExpiry: timeptr(time.Now().Add(5 * time.Minute)),
		}, nil)
		repo.On("ResetPassword", mock.Anything, uint(3), mock.MatchedBy(func(hash string) bool {
			return bcrypt.CompareHashAndPassword([]byte(hash), []byte("NewPass99")) == nil
		})).Return(nil)

		require.NoError(t, svc.ResetPassword(ctx, "alice", "123456", "NewPass99"))
		repo.AssertExpectations(t)
	})

	t.Run("replay after reset fails with invalid code", func(t *testing.T) {
		// After a successful reset the stored code is gone.
		repo := new(MockUserRepository)
		svc := NewRecoveryService(repo, new(MockMailer))
		repo.On("GetByUsername", mock.Anything, "alice").Return(&models.User{ID: 3, Username: "alice"}, nil)

		err := svc.ResetPassword(ctx, "alice", "123456", "NewPass99")
		assertAppErrorCode(t, err, "INVALID_CODE")
		repo.AssertNotCalled(t, "ResetPassword", mock.Anything, mock.Anything, mock.Anything)
	})
}
