package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/m04kA/GYM-ClassService/internal/api/handlers"
	"github.com/m04kA/GYM-ClassService/internal/domain"
)

const (
	// HeaderUserID заголовок с ID пользователя, проставляется API gateway
	HeaderUserID = "X-User-ID"
	// HeaderUserRole заголовок с ролью пользователя
	HeaderUserRole = "X-User-Role"

	msgMissingIdentity = "отсутствует заголовок X-User-ID"
)

type ctxKey int

const (
	userIDKey ctxKey = iota
	userRoleKey
)

// Logger интерфейс для логирования
type Logger interface {
	Warn(format string, v ...interface{})
}

// Auth извлекает идентичность вызывающего из заголовков gateway.
// Запрос без X-User-ID отклоняется. Неизвестная или пустая роль
// трактуется как обычный участник.
func Auth(logger Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := strconv.ParseInt(r.Header.Get(HeaderUserID), 10, 64)
			if err != nil || userID <= 0 {
				logger.Warn("auth: missing or invalid %s header from %s", HeaderUserID, r.RemoteAddr)
				handlers.RespondUnauthorized(w, msgMissingIdentity)
				return
			}

			role := parseRole(r.Header.Get(HeaderUserRole))

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			ctx = context.WithValue(ctx, userRoleKey, role)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext возвращает ID пользователя из контекста запроса
func UserIDFromContext(ctx context.Context) int64 {
	id, _ := ctx.Value(userIDKey).(int64)
	return id
}

// RoleFromContext возвращает роль пользователя из контекста запроса
func RoleFromContext(ctx context.Context) domain.Role {
	role, ok := ctx.Value(userRoleKey).(domain.Role)
	if !ok {
		return domain.RoleMember
	}
	return role
}

func parseRole(s string) domain.Role {
	switch domain.Role(s) {
	case domain.RoleCoach:
		return domain.RoleCoach
	case domain.RoleAdmin:
		return domain.RoleAdmin
	default:
		return domain.RoleMember
	}
}
