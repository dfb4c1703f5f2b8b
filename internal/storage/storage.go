// Package storage реализует хранилище учётных записей пользователей.
// Доступны три взаимозаменяемые реализации: чистая память, память со снимком
// в JSON-файле и PostgreSQL. Обработчики и бизнес-логика работают только
// через интерфейс UserRepository, поэтому бэкенд выбирается конфигурацией.
package storage

import (
	"context"
	"errors"

	"github.com/magabrotheeeer/user-access/internal/models"
)

// Ошибки хранилища. Сервисный слой сопоставляет их с HTTP-статусами.
var (
	// ErrUserExists возвращается при попытке зарегистрировать занятое имя.
	ErrUserExists = errors.New("user already exists")
	// ErrUserNotFound возвращается, если пользователь с таким именем не найден.
	ErrUserNotFound = errors.New("user not found")
	// ErrAdminExists возвращается, если первый администратор уже создан.
	ErrAdminExists = errors.New("admin already exists")
)

// UserRepository описывает контракт для работы с пользователями в хранилище.
// Все операции атомарны по имени пользователя: проверка уникальности и запись
// выполняются под одной блокировкой (или одним SQL-запросом).
type UserRepository interface {
	// CreateUser сохраняет нового пользователя.
	// Возвращает ErrUserExists, если имя уже занято.
	CreateUser(ctx context.Context, user models.User) error

	// CreateFirstAdmin сохраняет пользователя с ролью admin, но только пока
	// в хранилище нет ни одного администратора. Иначе — ErrAdminExists.
	CreateFirstAdmin(ctx context.Context, user models.User) error

	// GetUser возвращает пользователя по имени или ErrUserNotFound.
	GetUser(ctx context.Context, username string) (*models.User, error)

	// UpdateRole меняет роль существующего пользователя и возвращает
	// обновлённую запись или ErrUserNotFound.
	UpdateRole(ctx context.Context, username, role string) (*models.User, error)
}
