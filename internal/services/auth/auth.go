// Package services содержит логику бизнес-уровня для работы с пользователями и аутентификацией.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/user-access/internal/lib/jwt"
	"github.com/magabrotheeeer/user-access/internal/lib/password"
	"github.com/magabrotheeeer/user-access/internal/models"
	"github.com/magabrotheeeer/user-access/internal/storage"
)

// ErrInvalidCredentials возвращается при любой неудаче входа.
// Неизвестное имя и неверный пароль намеренно неразличимы для вызывающего.
var ErrInvalidCredentials = errors.New("incorrect username or password")

// dummyHash — bcrypt-хэш, против которого прогоняется сравнение, когда
// пользователь не найден. Держит время ответа примерно одинаковым для
// существующих и несуществующих имён.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// AuthService отвечает за регистрацию, авторизацию и разрешение пользователя по JWT.
type AuthService struct {
	users    storage.UserRepository
	jwtMaker jwt.Maker
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users storage.UserRepository, jwtMaker jwt.Maker) *AuthService {
	return &AuthService{
		users:    users,
		jwtMaker: jwtMaker,
	}
}

// Register создает нового пользователя с хэшированием пароля и дефолтной ролью viewer.
// Роль из запроса игнорируется всегда: повысить пользователя может только админ.
func (s *AuthService) Register(ctx context.Context, username, email, fullName, rawPassword string) (*models.User, error) {
	const op = "services.auth.Register"

	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user := models.User{
		UID:          uuid.NewString(),
		Username:     username,
		Email:        email,
		FullName:     fullName,
		PasswordHash: hashed,
		Role:         models.RoleViewer,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &user, nil
}

// RegisterFirstAdmin создает пользователя с принудительной ролью admin.
// Срабатывает ровно один раз: как только в хранилище есть администратор,
// путь закрыт навсегда (storage.ErrAdminExists).
func (s *AuthService) RegisterFirstAdmin(ctx context.Context, username, email, fullName, rawPassword string) (*models.User, error) {
	const op = "services.auth.RegisterFirstAdmin"

	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user := models.User{
		UID:          uuid.NewString(),
		Username:     username,
		Email:        email,
		FullName:     fullName,
		PasswordHash: hashed,
		Role:         models.RoleAdmin,
	}
	if err := s.users.CreateFirstAdmin(ctx, user); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &user, nil
}

// Login проверяет пароль пользователя и генерирует JWT.
// Любая причина отказа сворачивается в ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, rawPassword string) (string, error) {
	const op = "services.auth.Login"

	user, err := s.users.GetUser(ctx, username)
	if err != nil {
		// Сравнение выполняется и для несуществующего имени.
		_ = password.CompareHash(dummyHash, rawPassword)
		return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	token, err := s.jwtMaker.GenerateToken(user.Username)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}

// ResolveUser проверяет JWT и перечитывает субъект из хранилища.
// Пользователь, удалённый или переименованный после выдачи токена,
// считается неаутентифицированным, а не особым краевым случаем.
func (s *AuthService) ResolveUser(ctx context.Context, token string) (*models.User, error) {
	const op = "services.auth.ResolveUser"

	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, jwt.ErrInvalidToken)
	}
	user, err := s.users.GetUser(ctx, claims.Username)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, jwt.ErrInvalidToken)
	}
	return user, nil
}

// GetUser возвращает пользователя по имени.
func (s *AuthService) GetUser(ctx context.Context, username string) (*models.User, error) {
	return s.users.GetUser(ctx, username)
}

// UpdateRole перезаписывает роль существующего пользователя.
// Проверка, что вызывающий — админ, выполняется на уровне middleware.
func (s *AuthService) UpdateRole(ctx context.Context, username, role string) (*models.User, error) {
	const op = "services.auth.UpdateRole"

	user, err := s.users.UpdateRole(ctx, username, role)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}
