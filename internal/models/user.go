// Package models содержит доменную модель пользователя системы,
// включающую данные учётной записи, хэш пароля и роль доступа.
// Структура используется в бизнес‑логике и при работе с хранилищем.
package models

// Роли пользователей. Набор закрытый: у пользователя всегда ровно одна роль.
// Роль editor зарезервирована — ни одна операция пока на неё не завязана.
const (
	RoleViewer = "viewer"
	RoleEditor = "editor"
	RoleAdmin  = "admin"
)

// ValidRole проверяет, что роль входит в закрытый набор.
func ValidRole(role string) bool {
	switch role {
	case RoleViewer, RoleEditor, RoleAdmin:
		return true
	}
	return false
}

// User представляет зарегистрированного пользователя системы.
type User struct {
	UID          string `json:"uid"`           // Уникальный идентификатор пользователя
	Username     string `json:"username"`      // Имя пользователя (уникальное, неизменяемое)
	Email        string `json:"email"`         // Электронная почта
	FullName     string `json:"full_name"`     // Полное имя (опционально)
	PasswordHash string `json:"password_hash"` // Хэш пароля, наружу не отдаётся
	Role         string `json:"role"`          // Роль пользователя: viewer, editor или admin
}

// UserInfo — безопасная проекция пользователя для ответов API.
// Хэш пароля сюда не попадает никогда.
type UserInfo struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name,omitempty"`
	Role     string `json:"role"`
}

// Info возвращает проекцию пользователя без чувствительных полей.
func (u *User) Info() UserInfo {
	return UserInfo{
		Username: u.Username,
		Email:    u.Email,
		FullName: u.FullName,
		Role:     u.Role,
	}
}
