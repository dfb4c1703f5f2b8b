package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	customjwt "github.com/magabrotheeeer/user-access/internal/lib/jwt"
	"github.com/magabrotheeeer/user-access/internal/lib/password"
	"github.com/magabrotheeeer/user-access/internal/models"
	services "github.com/magabrotheeeer/user-access/internal/services/auth"
	"github.com/magabrotheeeer/user-access/internal/storage"
)

// Мок для UserRepository
type UserRepoMock struct {
	mock.Mock
}

func (m *UserRepoMock) CreateUser(ctx context.Context, user models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepoMock) CreateFirstAdmin(ctx context.Context, user models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepoMock) GetUser(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) UpdateRole(ctx context.Context, username, role string) (*models.User, error) {
	args := m.Called(ctx, username, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// Мок для jwt.Maker
type JwtMakerMock struct {
	mock.Mock
}

func (m *JwtMakerMock) GenerateToken(username string) (string, error) {
	args := m.Called(username)
	return args.String(0), args.Error(1)
}

func (m *JwtMakerMock) ParseToken(token string) (*customjwt.CustomClaims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customjwt.CustomClaims), args.Error(1)
}

func TestAuthService_Register(t *testing.T) {
	repo := new(UserRepoMock)
	maker := new(JwtMakerMock)
	svc := services.NewAuthService(repo, maker)

	var stored models.User
	repo.On("CreateUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
		stored = u
		return true
	})).Return(nil).Once()

	user, err := svc.Register(context.Background(), "alice", "alice@x.com", "Alice A", "pw123456")
	require.NoError(t, err)

	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, models.RoleViewer, user.Role, "role from the request is never honored")
	assert.NotEmpty(t, user.UID)

	// В хранилище уходит хэш, а не пароль.
	assert.NotEqual(t, "pw123456", stored.PasswordHash)
	assert.NoError(t, password.CompareHash(stored.PasswordHash, "pw123456"))
	repo.AssertExpectations(t)
}

func TestAuthService_Register_DuplicateUsername(t *testing.T) {
	repo := new(UserRepoMock)
	maker := new(JwtMakerMock)
	svc := services.NewAuthService(repo, maker)

	repo.On("CreateUser", mock.Anything, mock.Anything).Return(storage.ErrUserExists).Once()

	_, err := svc.Register(context.Background(), "alice", "alice@x.com", "", "pw123456")
	assert.ErrorIs(t, err, storage.ErrUserExists)
}

func TestAuthService_RegisterFirstAdmin(t *testing.T) {
	repo := new(UserRepoMock)
	maker := new(JwtMakerMock)
	svc := services.NewAuthService(repo, maker)

	repo.On("CreateFirstAdmin", mock.Anything, mock.MatchedBy(func(u models.User) bool {
		return u.Role == models.RoleAdmin
	})).Return(nil).Once()

	user, err := svc.RegisterFirstAdmin(context.Background(), "root", "root@x.com", "", "pw123456")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
	repo.AssertExpectations(t)
}

func TestAuthService_RegisterFirstAdmin_AlreadyExists(t *testing.T) {
	repo := new(UserRepoMock)
	maker := new(JwtMakerMock)
	svc := services.NewAuthService(repo, maker)

	repo.On("CreateFirstAdmin", mock.Anything, mock.Anything).Return(storage.ErrAdminExists).Once()

	_, err := svc.RegisterFirstAdmin(context.Background(), "root", "root@x.com", "", "pw123456")
	assert.ErrorIs(t, err, storage.ErrAdminExists)
}

func TestAuthService_Login(t *testing.T) {
	hash, err := password.GetHash("correct_password")
	require.NoError(t, err)

	alice := &models.User{
		Username:     "alice",
		PasswordHash: hash,
		Role:         models.RoleViewer,
	}

	tests := []struct {
		name       string
		username   string
		password   string
		setupMocks func(r *UserRepoMock, j *JwtMakerMock)
		wantToken  string
		wantErr    error
	}{
		{
			name:     "success",
			username: "alice",
			password: "correct_password",
			setupMocks: func(r *UserRepoMock, j *JwtMakerMock) {
				r.On("GetUser", mock.Anything, "alice").Return(alice, nil).Once()
				j.On("GenerateToken", "alice").Return("signed-token", nil).Once()
			},
			wantToken: "signed-token",
		},
		{
			name:     "wrong password",
			username: "alice",
			password: "wrong_password",
			setupMocks: func(r *UserRepoMock, j *JwtMakerMock) {
				r.On("GetUser", mock.Anything, "alice").Return(alice, nil).Once()
			},
			wantErr: services.ErrInvalidCredentials,
		},
		{
			name:     "unknown user",
			username: "ghost",
			password: "any_password",
			setupMocks: func(r *UserRepoMock, j *JwtMakerMock) {
				r.On("GetUser", mock.Anything, "ghost").Return(nil, storage.ErrUserNotFound).Once()
			},
			wantErr: services.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			maker := new(JwtMakerMock)
			tt.setupMocks(repo, maker)
			svc := services.NewAuthService(repo, maker)

			token, err := svc.Login(context.Background(), tt.username, tt.password)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, token)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantToken, token)
			}
			repo.AssertExpectations(t)
			maker.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login_UniformError(t *testing.T) {
	// Неизвестное имя и неверный пароль дают одну и ту же ошибку.
	hash, err := password.GetHash("correct_password")
	require.NoError(t, err)

	repo := new(UserRepoMock)
	maker := new(JwtMakerMock)
	repo.On("GetUser", mock.Anything, "alice").Return(&models.User{
		Username: "alice", PasswordHash: hash, Role: models.RoleViewer,
	}, nil).Once()
	repo.On("GetUser", mock.Anything, "ghost").Return(nil, storage.ErrUserNotFound).Once()
	svc := services.NewAuthService(repo, maker)

	_, errWrongPassword := svc.Login(context.Background(), "alice", "bad")
	_, errUnknownUser := svc.Login(context.Background(), "ghost", "bad")

	assert.ErrorIs(t, errWrongPassword, services.ErrInvalidCredentials)
	assert.ErrorIs(t, errUnknownUser, services.ErrInvalidCredentials)
}

func TestAuthService_ResolveUser(t *testing.T) {
	alice := &models.User{Username: "alice", Role: models.RoleEditor}

	tests := []struct {
		name       string
		token      string
		setupMocks func(r *UserRepoMock, j *JwtMakerMock)
		wantErr    bool
	}{
		{
			name:  "valid token and existing user",
			token: "good-token",
			setupMocks: func(r *UserRepoMock, j *JwtMakerMock) {
				j.On("ParseToken", "good-token").Return(&customjwt.CustomClaims{Username: "alice"}, nil).Once()
				r.On("GetUser", mock.Anything, "alice").Return(alice, nil).Once()
			},
		},
		{
			name:  "invalid token",
			token: "bad-token",
			setupMocks: func(r *UserRepoMock, j *JwtMakerMock) {
				j.On("ParseToken", "bad-token").Return(nil, customjwt.ErrInvalidToken).Once()
			},
			wantErr: true,
		},
		{
			name:  "subject deleted after issuance",
			token: "stale-token",
			setupMocks: func(r *UserRepoMock, j *JwtMakerMock) {
				j.On("ParseToken", "stale-token").Return(&customjwt.CustomClaims{Username: "gone"}, nil).Once()
				r.On("GetUser", mock.Anything, "gone").Return(nil, storage.ErrUserNotFound).Once()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			maker := new(JwtMakerMock)
			tt.setupMocks(repo, maker)
			svc := services.NewAuthService(repo, maker)

			user, err := svc.ResolveUser(context.Background(), tt.token)

			if tt.wantErr {
				assert.Error(t, err)
				assert.ErrorIs(t, err, customjwt.ErrInvalidToken)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "alice", user.Username)
				assert.Equal(t, models.RoleEditor, user.Role)
			}
			repo.AssertExpectations(t)
			maker.AssertExpectations(t)
		})
	}
}

func TestAuthService_LoginAndResolve_RealMaker(t *testing.T) {
	// Сквозной сценарий с настоящим jwt.Maker: токен из Login разрешается
	// обратно в того же пользователя, пока не истёк TTL.
	hash, err := password.GetHash("pw123456")
	require.NoError(t, err)

	alice := &models.User{Username: "alice", PasswordHash: hash, Role: models.RoleViewer}
	repo := new(UserRepoMock)
	repo.On("GetUser", mock.Anything, "alice").Return(alice, nil)

	maker := customjwt.NewJWTMaker("test_secret", 15*time.Minute)
	svc := services.NewAuthService(repo, maker)

	token, err := svc.Login(context.Background(), "alice", "pw123456")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	resolved, err := svc.ResolveUser(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "alice", resolved.Username)

	_, err = svc.ResolveUser(context.Background(), token+"tampered")
	assert.True(t, errors.Is(err, customjwt.ErrInvalidToken))
}

func TestAuthService_UpdateRole(t *testing.T) {
	repo := new(UserRepoMock)
	maker := new(JwtMakerMock)
	svc := services.NewAuthService(repo, maker)

	repo.On("UpdateRole", mock.Anything, "alice", models.RoleEditor).
		Return(&models.User{Username: "alice", Role: models.RoleEditor}, nil).Once()

	user, err := svc.UpdateRole(context.Background(), "alice", models.RoleEditor)
	require.NoError(t, err)
	assert.Equal(t, models.RoleEditor, user.Role)

	repo.On("UpdateRole", mock.Anything, "ghost", models.RoleEditor).
		Return(nil, storage.ErrUserNotFound).Once()

	_, err = svc.UpdateRole(context.Background(), "ghost", models.RoleEditor)
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
}
