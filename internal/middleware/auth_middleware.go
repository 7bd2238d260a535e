package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/debate-tab/internal/domain/entity"
	apperrors "github.com/yourusername/debate-tab/internal/pkg/errors"
	"github.com/yourusername/debate-tab/pkg/auth"
)

// Ключи контекста gin, которые заполняет AuthMiddleware
const (
	ContextSubject = "subject"
	ContextRole    = "role"
	ContextJudgeID = "authJudgeID"
)

// JudgeResolver находит судью по claim "sub"
type JudgeResolver interface {
	JudgeBySubject(ctx context.Context, subject string) (*entity.Judge, error)
}

// AuthMiddleware обеспечивает аутентификацию для защищенных маршрутов
type AuthMiddleware struct {
	jwtService *auth.JWTService
	judges     JudgeResolver
}

// NewAuthMiddleware создает middleware проверки токенов
func NewAuthMiddleware(jwtService *auth.JWTService, judges JudgeResolver) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		judges:     judges,
	}
}

// RequireAuth проверяет Bearer токен и кладёт sub и role в контекст
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required", "error_type": "token_missing"})
			return
		}

		// Проверяем формат заголовка Bearer {token}
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}", "error_type": "token_format"})
			return
		}

		claims, err := m.jwtService.ParseToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token", "error_type": "token_invalid"})
			return
		}

		c.Set(ContextSubject, claims.Subject)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

// AdminOnly пропускает только токены с ролью admin. Применяется ПОСЛЕ RequireAuth.
func (m *AuthMiddleware) AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextSubject) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		if c.GetString(ContextRole) != auth.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin rights required"})
			return
		}
		c.Next()
	}
}

// JudgeOnly пропускает только зарегистрированных судей и кладёт их ID в контекст.
// Применяется ПОСЛЕ RequireAuth.
func (m *AuthMiddleware) JudgeOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		subject := c.GetString(ContextSubject)
		if subject == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		if c.GetString(ContextRole) != auth.RoleJudge {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Judge rights required"})
			return
		}

		judge, err := m.judges.JudgeBySubject(c.Request.Context(), subject)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Judge is not registered for this tournament", "error_type": "judge_unknown"})
				return
			}
			log.Printf("[AuthMiddleware] Ошибка поиска судьи sub=%s: %v", subject, err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		c.Set(ContextJudgeID, judge.ID)
		c.Next()
	}
}
