package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/magabrotheeeer/user-access/internal/models"
)

// MemoryStorage хранит таблицу пользователей в памяти процесса.
// Все мутации сериализуются через мьютекс, чтобы две одновременные
// регистрации одного имени не прошли обе.
type MemoryStorage struct {
	mu    sync.RWMutex
	users map[string]models.User
}

// NewMemoryStorage создаёт пустое хранилище в памяти.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		users: make(map[string]models.User),
	}
}

// CreateUser сохраняет нового пользователя или возвращает ErrUserExists.
func (s *MemoryStorage) CreateUser(ctx context.Context, user models.User) error {
	const op = "storage.memory.CreateUser"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.Username]; ok {
		return fmt.Errorf("%s: %w", op, ErrUserExists)
	}
	s.users[user.Username] = user
	return nil
}

// CreateFirstAdmin сохраняет администратора, пока в таблице нет других админов.
func (s *MemoryStorage) CreateFirstAdmin(ctx context.Context, user models.User) error {
	const op = "storage.memory.CreateFirstAdmin"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Role == models.RoleAdmin {
			return fmt.Errorf("%s: %w", op, ErrAdminExists)
		}
	}
	if _, ok := s.users[user.Username]; ok {
		return fmt.Errorf("%s: %w", op, ErrUserExists)
	}
	s.users[user.Username] = user
	return nil
}

// GetUser возвращает копию записи пользователя по имени.
// Поиск точный и регистрозависимый.
func (s *MemoryStorage) GetUser(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.memory.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[username]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	return &u, nil
}

// UpdateRole перезаписывает роль пользователя и возвращает обновлённую запись.
func (s *MemoryStorage) UpdateRole(ctx context.Context, username, role string) (*models.User, error) {
	const op = "storage.memory.UpdateRole"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[username]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	u.Role = role
	s.users[username] = u
	return &u, nil
}
