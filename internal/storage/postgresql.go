package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/magabrotheeeer/user-access/internal/models"
)

// Storage инкапсулирует соединение с базой данных PostgreSQL
// и реализует UserRepository поверх таблицы users. Уникальность имени
// обеспечивает ограничение в схеме, единственность администратора —
// условная вставка.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL и проверяет его доступность.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// CreateUser вставляет нового пользователя.
// Возвращает ErrUserExists, если имя уже занято.
func (s *Storage) CreateUser(ctx context.Context, user models.User) error {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO users (uid, username, email, full_name, password_hash, role)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  ON CONFLICT (username) DO NOTHING`
	res, err := s.DB.ExecContext(ctx, query,
		user.UID, user.Username, user.Email, user.FullName, user.PasswordHash, user.Role)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", op, ErrUserExists)
	}
	return nil
}

// CreateFirstAdmin вставляет администратора одним условным запросом:
// строка появляется только если админов в таблице ещё нет.
// При rows == 0 причина различается повторным запросом: либо админ уже
// есть, либо имя занято обычным пользователем.
func (s *Storage) CreateFirstAdmin(ctx context.Context, user models.User) error {
	const op = "storage.CreateFirstAdmin"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO users (uid, username, email, full_name, password_hash, role)
			  SELECT $1, $2, $3, $4, $5, $6
			  WHERE NOT EXISTS (SELECT 1 FROM users WHERE role = $6)
			  ON CONFLICT (username) DO NOTHING`
	res, err := s.DB.ExecContext(ctx, query,
		user.UID, user.Username, user.Email, user.FullName, user.PasswordHash, models.RoleAdmin)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rows == 0 {
		var adminExists bool
		checkQuery := `SELECT EXISTS (SELECT 1 FROM users WHERE role = $1)`
		if err = s.DB.QueryRowContext(ctx, checkQuery, models.RoleAdmin).Scan(&adminExists); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if adminExists {
			return fmt.Errorf("%s: %w", op, ErrAdminExists)
		}
		return fmt.Errorf("%s: %w", op, ErrUserExists)
	}
	return nil
}

// GetUser возвращает пользователя по его username.
func (s *Storage) GetUser(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, username, email, full_name, password_hash, role
			  FROM users
			  WHERE username = $1`
	u := &models.User{}
	row := s.DB.QueryRowContext(ctx, query, username)

	var fullName sql.NullString
	if err := row.Scan(&u.UID, &u.Username, &u.Email, &fullName,
		&u.PasswordHash, &u.Role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if fullName.Valid {
		u.FullName = fullName.String
	}
	return u, nil
}

// UpdateRole перезаписывает роль пользователя и возвращает обновлённую запись.
func (s *Storage) UpdateRole(ctx context.Context, username, role string) (*models.User, error) {
	const op = "storage.UpdateRole"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users SET role = $2
			  WHERE username = $1
			  RETURNING uid, username, email, full_name, password_hash, role`
	u := &models.User{}
	row := s.DB.QueryRowContext(ctx, query, username, role)

	var fullName sql.NullString
	if err := row.Scan(&u.UID, &u.Username, &u.Email, &fullName,
		&u.PasswordHash, &u.Role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if fullName.Valid {
		u.FullName = fullName.String
	}
	return u, nil
}
