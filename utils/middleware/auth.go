package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/learnhubhq/learnhub-api/model"
	"github.com/learnhubhq/learnhub-api/utils/auth"
	"github.com/learnhubhq/learnhub-api/utils/response"
	"gorm.io/gorm"
)

// AuthMiddleware handles JWT authentication
type AuthMiddleware struct {
	jwtManager       *auth.JWTManager
	blacklistService *auth.BlacklistService
	db               *gorm.DB
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(jwtManager *auth.JWTManager, db *gorm.DB) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager:       jwtManager,
		blacklistService: auth.NewBlacklistService(db),
		db:               db,
	}
}

// AuthError carries the HTTP status and message for a failed
// authentication, so callers outside the standard middleware chain (the
// websocket handshake) can render it themselves.
type AuthError struct {
	Status  int
	Message string
}

// authenticate resolves the bearer token on the request into a user.
// Every protected route goes through this single path; role checks are
// layered on top rather than re-deriving identity per handler.
func (m *AuthMiddleware) authenticate(c *fiber.Ctx) (*model.User, *auth.Claims, *AuthError) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return nil, nil, &AuthError{fiber.StatusUnauthorized, "Missing authorization token"}
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, nil, &AuthError{fiber.StatusUnauthorized, "Invalid authorization format"}
	}

	user, claims, err := m.ResolveToken(c, parts[1])
	if err != nil {
		return nil, nil, err
	}
	return user, claims, nil
}

// ResolveToken validates a raw token string and loads its user. Shared
// with the websocket handshake, which carries the token outside the
// Authorization header.
func (m *AuthMiddleware) ResolveToken(c *fiber.Ctx, tokenString string) (*model.User, *auth.Claims, *AuthError) {
	claims, err := m.jwtManager.ValidateToken(tokenString)
	if err != nil {
		if err == auth.ErrExpiredToken {
			return nil, nil, &AuthError{fiber.StatusUnauthorized, "Token has expired"}
		}
		return nil, nil, &AuthError{fiber.StatusUnauthorized, "Invalid token"}
	}

	if claims.TokenType != "access" {
		return nil, nil, &AuthError{fiber.StatusUnauthorized, "Invalid token type"}
	}

	isRevoked, err := m.blacklistService.IsTokenRevoked(c.UserContext(), claims.ID)
	if err != nil {
		return nil, nil, &AuthError{fiber.StatusInternalServerError, "Failed to check token status"}
	}
	if isRevoked {
		return nil, nil, &AuthError{fiber.StatusUnauthorized, "Token has been revoked"}
	}

	var user model.User
	if err := m.db.First(&user, claims.UserID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, &AuthError{fiber.StatusUnauthorized, "User not found"}
		}
		return nil, nil, &AuthError{fiber.StatusInternalServerError, "Failed to load user"}
	}

	if user.TokenVersion != claims.TokenVersion {
		return nil, nil, &AuthError{fiber.StatusUnauthorized, "Token has been invalidated"}
	}

	return &user, claims, nil
}

func storeIdentity(c *fiber.Ctx, user *model.User, claims *auth.Claims) {
	c.Locals("user_id", user.ID)
	c.Locals("user_role", user.Role)
	c.Locals("claims", claims)
	c.Locals("user", user)
}

// Required is middleware that requires a valid JWT token
func (m *AuthMiddleware) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, claims, authErr := m.authenticate(c)
		if authErr != nil {
			return response.Error(c, authErr.Status, authErr.Message, "UNAUTHORIZED")
		}
		storeIdentity(c, user, claims)
		return c.Next()
	}
}

// Optional is middleware that allows requests with or without a token
func (m *AuthMiddleware) Optional() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if user, claims, authErr := m.authenticate(c); authErr == nil {
			storeIdentity(c, user, claims)
		}
		return c.Next()
	}
}

// RequireRole requires a valid token AND one of the given roles
func (m *AuthMiddleware) RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, claims, authErr := m.authenticate(c)
		if authErr != nil {
			return response.Error(c, authErr.Status, authErr.Message, "UNAUTHORIZED")
		}

		for _, r := range roles {
			if user.Role == r {
				storeIdentity(c, user, claims)
				return c.Next()
			}
		}

		return response.Forbidden(c, "Insufficient permissions")
	}
}

// RequireAdmin requires a valid token with the admin role
func (m *AuthMiddleware) RequireAdmin() fiber.Handler {
	return m.RequireRole(model.RoleAdmin)
}

// GetUserID extracts user ID from context
func GetUserID(c *fiber.Ctx) (uint, bool) {
	userID := c.Locals("user_id")
	if userID == nil {
		return 0, false
	}
	id, ok := userID.(uint)
	return id, ok
}

// GetUser extracts full user object from context
func GetUser(c *fiber.Ctx) (*model.User, bool) {
	user := c.Locals("user")
	if user == nil {
		return nil, false
	}
	u, ok := user.(*model.User)
	return u, ok
}

// GetClaims extracts full claims from context
func GetClaims(c *fiber.Ctx) (*auth.Claims, bool) {
	claims := c.Locals("claims")
	if claims == nil {
		return nil, false
	}
	claimsData, ok := claims.(*auth.Claims)
	return claimsData, ok
}
