package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"payauth/internal/auth"
	apperrors "payauth/internal/errors"
	"payauth/internal/model"
	"payauth/internal/repository"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) EnsureSchema(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockUserRepository) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func newTestAuthService(repo repository.UserRepository) (AuthService, *auth.JWTService) {
	log, _ := test.NewNullLogger()
	jwtService := auth.NewJWTService("test-secret", time.Hour)
	return NewAuthService(repo, jwtService, auth.NewPasswordHasher(bcrypt.MinCost), log), jwtService
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := auth.NewPasswordHasher(bcrypt.MinCost).Hash(password)
	require.NoError(t, err)
	return h
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name          string
		userName      string
		email         string
		password      string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:     "successful registration",
			userName: "A",
			email:    "a@x.com",
			password: "p",
			setupMock: func(m *MockUserRepository) {
				m.On("Create", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
					return u.Name == "A" && u.Email == "a@x.com" && u.PasswordHash != "p" &&
						bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("p")) == nil
				})).Run(func(args mock.Arguments) {
					args.Get(1).(*model.User).ID = 1
				}).Return(nil)
			},
		},
		{
			name:     "user already exists",
			userName: "A",
			email:    "a@x.com",
			password: "other-password",
			setupMock: func(m *MockUserRepository) {
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(repository.ErrDuplicateEmail)
			},
			expectedError: apperrors.ErrConflict,
		},
		{
			name:          "missing name",
			email:         "a@x.com",
			password:      "p",
			setupMock:     func(m *MockUserRepository) {},
			expectedError: apperrors.ErrValidation,
		},
		{
			name:          "missing email",
			userName:      "A",
			password:      "p",
			setupMock:     func(m *MockUserRepository) {},
			expectedError: apperrors.ErrValidation,
		},
		{
			name:          "missing password",
			userName:      "A",
			email:         "a@x.com",
			setupMock:     func(m *MockUserRepository) {},
			expectedError: apperrors.ErrValidation,
		},
		{
			name:     "store unavailable",
			userName: "A",
			email:    "a@x.com",
			password: "p",
			setupMock: func(m *MockUserRepository) {
				m.On("Create", mock.Anything, mock.Anything).Return(apperrors.Unavailable(errors.New("dial tcp: connection refused")))
			},
			expectedError: apperrors.ErrUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			svc, _ := newTestAuthService(mockRepo)
			user, err := svc.Register(context.Background(), tt.userName, tt.email, tt.password)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.Equal(t, uint(1), user.ID)
				assert.Equal(t, tt.email, user.Email)
				assert.Equal(t, tt.userName, user.Name)
			}

			mockRepo.AssertExpectations(t)
			if errors.Is(tt.expectedError, apperrors.ErrValidation) {
				mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestAuthService_Register_SameEmailTwice(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	mockRepo.On("Create", mock.Anything, mock.Anything).Return(repository.ErrDuplicateEmail).Once()

	svc, _ := newTestAuthService(mockRepo)

	_, err := svc.Register(context.Background(), "A", "a@x.com", "p")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "B", "a@x.com", "different")
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Equal(t, msgUserExists, apperrors.MapErrorToHTTP(err).Message)
}

func TestAuthService_Login(t *testing.T) {
	storedUser := &model.User{ID: 7, Name: "A", Email: "a@x.com", PasswordHash: hashed(t, "p")}

	tests := []struct {
		name          string
		email         string
		password      string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:     "successful login",
			email:    "a@x.com",
			password: "p",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "a@x.com").Return(storedUser, nil)
			},
		},
		{
			name:     "wrong password",
			email:    "a@x.com",
			password: "wrong",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "a@x.com").Return(storedUser, nil)
			},
			expectedError: apperrors.ErrAuth,
		},
		{
			name:     "unknown email",
			email:    "nobody@x.com",
			password: "p",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "nobody@x.com").Return(nil, repository.ErrUserNotFound)
			},
			expectedError: apperrors.ErrAuth,
		},
		{
			name:          "missing password",
			email:         "a@x.com",
			setupMock:     func(m *MockUserRepository) {},
			expectedError: apperrors.ErrValidation,
		},
		{
			name:     "store unavailable",
			email:    "a@x.com",
			password: "p",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "a@x.com").Return(nil, apperrors.Unavailable(errors.New("refused")))
			},
			expectedError: apperrors.ErrUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			svc, jwtService := newTestAuthService(mockRepo)
			before := time.Now()
			result, err := svc.Login(context.Background(), tt.email, tt.password)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, result)
			} else {
				require.NoError(t, err)
				assert.Equal(t, model.Profile{ID: 7, Name: "A", Email: "a@x.com"}, result.User)

				claims, err := jwtService.Parse(result.Token)
				require.NoError(t, err)
				assert.Equal(t, uint(7), claims.UserID)
				assert.Equal(t, "a@x.com", claims.Email)
				assert.True(t, claims.ExpiresAt.After(before))
				assert.WithinDuration(t, before.Add(time.Hour), claims.ExpiresAt.Time, 2*time.Second)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login_FailuresAreIndistinguishable(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByEmail", mock.Anything, "a@x.com").
		Return(&model.User{ID: 1, Email: "a@x.com", PasswordHash: hashed(t, "p")}, nil)
	mockRepo.On("FindByEmail", mock.Anything, "nobody@x.com").Return(nil, repository.ErrUserNotFound)

	svc, _ := newTestAuthService(mockRepo)

	_, wrongPassword := svc.Login(context.Background(), "a@x.com", "wrong")
	_, unknownEmail := svc.Login(context.Background(), "nobody@x.com", "p")

	assert.Equal(t, apperrors.MapErrorToHTTP(wrongPassword), apperrors.MapErrorToHTTP(unknownEmail))
}
