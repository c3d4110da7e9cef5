package middleware

import (
	"errors"
	"strings"

	"github.com/filestore/backend/internal/models"
	"github.com/filestore/backend/pkg/logger"
	"github.com/filestore/backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"gorm.io/gorm"
)

const (
	currentUserKey = "currentUser"
	userIDKey      = "userID"
)

type AuthMiddleware struct {
	DB *gorm.DB
}

func NewAuthMiddleware(db *gorm.DB) *AuthMiddleware {
	return &AuthMiddleware{DB: db}
}

func CORS(origins []string) fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins:  strings.Join(origins, ","),
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization",
		AllowMethods:  "GET,POST,PUT,DELETE,OPTIONS",
		ExposeHeaders: "Content-Disposition, X-Request-ID",
	})
}

// RequireAuth resolves the bearer token to a user and stores it on the
// context. Every file and share route sits behind it.
func (a *AuthMiddleware) RequireAuth(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return unauthorized(c, "jwt_missing_header", "missing authorization header", nil)
	}

	token, err := utils.ExtractBearerToken(header)
	if err != nil {
		return unauthorized(c, "jwt_invalid_format", "invalid authorization format", map[string]interface{}{
			"auth_header": header[:min(len(header), 20)] + "...",
		})
	}

	claims, err := utils.ValidateToken(token)
	if err != nil {
		return unauthorized(c, "jwt_validation_failed", "invalid or expired token", map[string]interface{}{
			"error": err.Error(),
		})
	}

	var user models.User
	err = a.DB.WithContext(c.UserContext()).Take(&user, "id = ?", claims.UserID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return unauthorized(c, "jwt_user_not_found", "user not found", map[string]interface{}{
			"user_id": claims.UserID.String(),
		})
	case err != nil:
		logger.Error("auth_user_lookup_failed", err, map[string]interface{}{
			"user_id": claims.UserID.String(),
			"path":    c.Path(),
		})
		return utils.Error(c, fiber.StatusInternalServerError, "internal error")
	}

	c.Locals(currentUserKey, &user)
	c.Locals(userIDKey, user.ID.String())
	return c.Next()
}

func unauthorized(c *fiber.Ctx, event, message string, fields map[string]interface{}) error {
	if fields == nil {
		fields = make(map[string]interface{}, 2)
	}
	fields["ip"] = c.IP()
	fields["path"] = c.Path()
	logger.Warn(event, fields)
	return utils.Error(c, fiber.StatusUnauthorized, message)
}

// GetCurrentUser returns the user RequireAuth stored, or nil outside it.
func GetCurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(currentUserKey).(*models.User)
	return user
}
