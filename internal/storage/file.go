package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/magabrotheeeer/user-access/internal/lib/sl"
	"github.com/magabrotheeeer/user-access/internal/metrics"
	"github.com/magabrotheeeer/user-access/internal/models"
)

// FileStorage хранит таблицу пользователей в памяти и после каждой мутации
// синхронно переписывает снимок в JSON-файл целиком. Авторитетна копия в
// памяти, файл — снимок на случай рестарта. Атомарной замены файла нет:
// падение посреди записи оставит битый снимок, который при следующем старте
// будет отброшен с логом и метрикой.
type FileStorage struct {
	mu    sync.RWMutex
	path  string
	users map[string]models.User
	log   *slog.Logger
}

// NewFileStorage загружает снимок из path, если он есть.
// Битый или нечитаемый снимок не валит старт: таблица начинается пустой,
// условие поднимается в лог и счётчик SnapshotLoadFailures.
func NewFileStorage(path string, log *slog.Logger) *FileStorage {
	const op = "storage.file.NewFileStorage"

	s := &FileStorage{
		path:  path,
		users: make(map[string]models.User),
		log:   log,
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s
	}
	if err != nil {
		log.Warn("failed to read credential snapshot, starting empty",
			slog.String("op", op), slog.String("path", path), sl.Err(err))
		metrics.SnapshotLoadFailures.Inc()
		return s
	}
	if err := json.Unmarshal(data, &s.users); err != nil {
		log.Warn("failed to parse credential snapshot, starting empty",
			slog.String("op", op), slog.String("path", path), sl.Err(err))
		metrics.SnapshotLoadFailures.Inc()
		s.users = make(map[string]models.User)
	}
	return s
}

// persistLocked переписывает снимок целиком. Вызывается только под s.mu.
func (s *FileStorage) persistLocked() error {
	data, err := json.MarshalIndent(s.users, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

// CreateUser сохраняет нового пользователя или возвращает ErrUserExists.
func (s *FileStorage) CreateUser(ctx context.Context, user models.User) error {
	const op = "storage.file.CreateUser"
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
	if err := s.persistLocked(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// CreateFirstAdmin сохраняет администратора, пока в таблице нет других админов.
func (s *FileStorage) CreateFirstAdmin(ctx context.Context, user models.User) error {
	const op = "storage.file.CreateFirstAdmin"
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
	if err := s.persistLocked(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetUser возвращает копию записи пользователя по имени.
func (s *FileStorage) GetUser(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.file.GetUser"
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
func (s *FileStorage) UpdateRole(ctx context.Context, username, role string) (*models.User, error) {
	const op = "storage.file.UpdateRole"
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
	if err := s.persistLocked(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &u, nil
}
