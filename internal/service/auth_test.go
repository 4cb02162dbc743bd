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

// MockUserRepository is a mock of the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) SetResetCode(ctx context.Context, userID uint, code string, expiry time.Time) error {
	args := m.Called(ctx, userID, code, expiry)
	return args.Error(0)
}

func (m *MockUserRepository) ResetPassword(ctx context.Context, userID uint, passwordHash string) error {
	args := m.Called(ctx, userID, passwordHash)
	return args.Error(0)
}

// assertAppErrorCode asserts that err is an AppError carrying the given code.
func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("hashes the password before persisting", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := NewAuthService(repo, "test-secret")

		repo.On("GetByEmail", mock.Anything, "a@example.com").Return(nil, nil)
		repo.On("GetByUsername", mock.Anything, "alice").Return(nil, nil)
		repo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil)

		user, err := svc.Register(ctx, "Alice", "a@example.com", "alice", "Password1")
		require.NoError(t, err)
		assert.NotEqual(t, "Password1", user.Password)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("Password1")))
		repo.AssertExpectations(t)
	})

	t.Run("email conflict reported before username conflict", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := NewAuthService(repo, "test-secret")

		// Both collide; only the email lookup should run.
		repo.On("GetByEmail", mock.Anything, "taken@example.com").Return(&models.User{ID: 1}, nil)

		_, err := svc.Register(ctx, "Alice", "taken@example.com", "taken", "Password1")
		assertAppErrorCode(t, err, "CONFLICT")
		repo.AssertNotCalled(t, "GetByUsername", mock.Anything, mock.Anything)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("username conflict", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := NewAuthService(repo, "test-secret")

		repo.On("GetByEmail", mock.Anything, "a@example.com").Return(nil, nil)
		repo.On("GetByUsername", mock.Anything, "taken").Return(&models.User{ID: 2}, nil)

		_, err := svc.Register(ctx, "Alice", "a@example.com", "taken", "Password1")
		assertAppErrorCode(t, err, "CONFLICT")
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	hash, _ := bcrypt.GenerateFromPassword([]byte("Password1"), bcrypt.DefaultCost)
	stored := &models.User{ID: 7, Name: "Alice", Username: "alice", Password: string(hash)}

	t.Run("issues a verifiable token", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := NewAuthService(repo, "test-secret")
		repo.On("GetByUsername", mock.Anything, "alice").Return(stored, nil)

		token, user, err := svc.Login(ctx, "alice", "Password1")
		require.NoError(t, err)
		assert.Equal(t, uint(7), user.ID)

		userID, name, err := svc.VerifyToken(token)
		require.NoError(t, err)
		assert.Equal(t, uint(7), userID)
		assert.Equal(t, "Alice", name)
	})

	t.Run("unknown username", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := NewAuthService(repo, "test-secret")
		repo.On("GetByUsername", mock.Anything, "ghost").Return(nil, nil)

		_, _, err := svc.Login(ctx, "ghost", "Password1")
		assertAppErrorCode(t, err, "INVALID_CREDENTIALS")
	})

	t.Run("wrong password", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := NewAuthService(repo, "test-secret")
		repo.On("GetByUsername", mock.Anything, "alice").Return(stored, nil)

		_, _, err := svc.Login(ctx, "alice", "nope")
		assertAppErrorCode(t, err, "INVALID_CREDENTIALS")
	})
}

func TestVerifyToken(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewAuthService(repo, "test-secret")

	t.Run("missing token", func(t *testing.T) {
		_, _, err := svc.VerifyToken("")
		assertAppErrorCode(t, err, "UNAUTHORIZED")
	})

	t.Run("garbage token", func(t *testing.T) {
		_, _, err := svc.VerifyToken("not.a.token")
		assertAppErrorCode(t, err, "UNAUTHORIZED")
	})

	t.Run("wrong signing secret", func(t *testing.T) {
		other := NewAuthService(repo, "other-secret")
		token, err := other.generateToken(1, "Alice")
		require.NoError(t, err)

		_, _, verr := svc.VerifyToken(token)
		assertAppErrorCode(t, verr, "UNAUTHORIZED")
	})
}
