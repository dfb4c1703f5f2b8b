package middlewarectx

import (
	"context"

	"github.com/magabrotheeeer/user-access/internal/models"
)

// Service описывает интерфейс сервиса для разрешения пользователя по JWT токену.
type Service interface {
	ResolveUser(ctx context.Context, token string) (*models.User, error)
}
