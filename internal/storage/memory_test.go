package storage

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/user-access/internal/models"
)

func testUser(username, role string) models.User {
	return models.User{
		UID:          "uid-" + username,
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "$2a$10$fakefakefakefakefakefakefakefakefakefakefakefakefake",
		Role:         role,
	}
}

func TestMemoryStorage_CreateAndGetUser(t *testing.T) {
	s := NewMemoryStorage()
	ctx := context.Background()

	err := s.CreateUser(ctx, testUser("alice", models.RoleViewer))
	require.NoError(t, err)

	got, err := s.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, models.RoleViewer, got.Role)
}

func TestMemoryStorage_CreateUser_Duplicate(t *testing.T) {
	s := NewMemoryStorage()
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, testUser("alice", models.RoleViewer)))

	err := s.CreateUser(ctx, testUser("alice", models.RoleViewer))
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestMemoryStorage_GetUser_NotFound(t *testing.T) {
	s := NewMemoryStorage()

	_, err := s.GetUser(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestMemoryStorage_GetUser_CaseSensitive(t *testing.T) {
	s := NewMemoryStorage()
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, testUser("Alice", models.RoleViewer)))

	_, err := s.GetUser(ctx, "alice")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestMemoryStorage_CreateFirstAdmin(t *testing.T) {
	s := NewMemoryStorage()
	ctx := context.Background()

	err := s.CreateFirstAdmin(ctx, testUser("root", models.RoleAdmin))
	require.NoError(t, err)

	// Второй администратор через одноразовый путь не проходит.
	err = s.CreateFirstAdmin(ctx, testUser("root2", models.RoleAdmin))
	assert.ErrorIs(t, err, ErrAdminExists)
}

func TestMemoryStorage_CreateFirstAdmin_AfterPromotion(t *testing.T) {
	s := NewMemoryStorage()
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, testUser("alice", models.RoleViewer)))
	_, err := s.UpdateRole(ctx, "alice", models.RoleAdmin)
	require.NoError(t, err)

	// Админ, появившийся через смену роли, тоже закрывает путь.
	err = s.CreateFirstAdmin(ctx, testUser("root", models.RoleAdmin))
	assert.ErrorIs(t, err, ErrAdminExists)
}

func TestMemoryStorage_UpdateRole(t *testing.T) {
	s := NewMemoryStorage()
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, testUser("alice", models.RoleViewer)))

	updated, err := s.UpdateRole(ctx, "alice", models.RoleEditor)
	require.NoError(t, err)
	assert.Equal(t, models.RoleEditor, updated.Role)

	got, err := s.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, models.RoleEditor, got.Role)
}

func TestMemoryStorage_UpdateRole_NotFound(t *testing.T) {
	s := NewMemoryStorage()

	_, err := s.UpdateRole(context.Background(), "ghost", models.RoleAdmin)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestMemoryStorage_ConcurrentRegistrations(t *testing.T) {
	s := NewMemoryStorage()
	ctx := context.Background()

	const workers = 32
	var wg sync.WaitGroup
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errCh <- s.CreateUser(ctx, testUser("alice", models.RoleViewer))
		}()
	}
	wg.Wait()
	close(errCh)

	var succeeded, conflicted int
	for err := range errCh {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrUserExists):
			conflicted++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	// Ровно одна из гонок за имя выигрывает.
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, workers-1, conflicted)
}

func TestMemoryStorage_GetUser_ReturnsCopy(t *testing.T) {
	s := NewMemoryStorage()
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, testUser("alice", models.RoleViewer)))

	got, err := s.GetUser(ctx, "alice")
	require.NoError(t, err)
	got.Role = models.RoleAdmin

	again, err := s.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, models.RoleViewer, again.Role, "mutating the returned record must not affect the store")
}

func TestMemoryStorage_CancelledContext(t *testing.T) {
	s := NewMemoryStorage()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.CreateUser(ctx, testUser("alice", models.RoleViewer))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = s.GetUser(ctx, "alice")
	assert.ErrorIs(t, err, context.Canceled)
}
