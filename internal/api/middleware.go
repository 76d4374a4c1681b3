package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"physiohub/clinic-app/internal/domain"
	"physiohub/clinic-app/internal/notice"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

// Constant for the context key
const ContextPrincipalKey = "principal"

// jwtClaims defines the structure we expect in the JWT payload.
// Mirroring the structure used in authService.generateJWT
type jwtClaims struct {
	AccountID uint        `json:"uid"`
	Username  string      `json:"username"`
	Role      domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// AuthMiddleware creates a Gin middleware for JWT authentication. On success
// it stores the typed principal in the request context; handlers never read
// raw claims.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, http.StatusUnauthorized, "Please log in to access this page.")
			return
		}

		// Expecting "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			abortWithError(c, http.StatusUnauthorized, "Authorization header format must be Bearer {token}")
			return
		}
		tokenString := parts[1]

		claims := &jwtClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(jwtSecret), nil
		})
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				abortWithError(c, http.StatusUnauthorized, "Session has expired. Please log in again.")
			} else {
				abortWithError(c, http.StatusUnauthorized, "Invalid session token.")
			}
			return
		}
		if !token.Valid || claims.AccountID == 0 || claims.Role == "" {
			abortWithError(c, http.StatusUnauthorized, "Invalid token or missing claims")
			return
		}

		c.Set(ContextPrincipalKey, &domain.Principal{
			AccountID: claims.AccountID,
			Username:  claims.Username,
			Role:      claims.Role,
		})
		c.Next()
	}
}

// RoleMiddleware rejects principals whose role is not exactly the required
// one. There is no hierarchy: an admin does not implicitly gain therapist
// access.
// Rejections queue a flash notice for the caller's next render.
// Must run AFTER AuthMiddleware.
func RoleMiddleware(notices notice.Store, required domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := getPrincipalFromContext(c)
		if err != nil {
			// This should not happen if AuthMiddleware ran correctly
			abortWithError(c, http.StatusInternalServerError, "Principal not found in context")
			return
		}

		if principal.Role != required {
			_ = notices.Push(c.Request.Context(), principal.AccountID, domain.Notice{
				Level:   domain.NoticeError,
				Message: "Access denied.",
			})
			abortWithError(c, http.StatusForbidden, fmt.Sprintf("Access denied: role '%s' does not have permission", principal.Role))
			return
		}
		c.Next()
	}
}

// Helper to return JSON error response and abort request
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}

// Helper function to get the Principal from context (used by handlers)
func getPrincipalFromContext(c *gin.Context) (*domain.Principal, error) {
	raw, exists := c.Get(ContextPrincipalKey)
	if !exists {
		return nil, errors.New("principal not found in context")
	}
	principal, ok := raw.(*domain.Principal)
	if !ok {
		return nil, errors.New("invalid principal type in context")
	}
	return principal, nil
}
