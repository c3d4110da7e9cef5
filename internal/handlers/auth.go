package handlers

import (
	"net/mail"
	"strings"

	"github.com/filestore/backend/internal/models"
	"github.com/filestore/backend/internal/services"
	"github.com/filestore/backend/pkg/logger"
	"github.com/filestore/backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AuthHandler struct {
	DB    *gorm.DB
	Audit *services.AuditService
}

func NewAuthHandler(db *gorm.DB, audit *services.AuditService) *AuthHandler {
	return &AuthHandler{DB: db, Audit: audit}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// maxUsernameLength matches the users.username column width.
const maxUsernameLength = 150

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if req.Username == "" || len(req.Username) > maxUsernameLength {
		return utils.FieldError(c, "username", "username is required")
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return utils.FieldError(c, "email", "invalid email")
	}
	if err := utils.ValidatePassword(req.Password); err != nil {
		return utils.FieldError(c, "password", err.Error())
	}

	db := h.DB.WithContext(c.UserContext())
	var taken int64
	if err := db.Model(&models.User{}).
		Where("username = ? OR email = ?", req.Username, req.Email).
		Count(&taken).Error; err != nil {
		logger.Error("register_lookup_failed", err, nil)
		return utils.Error(c, fiber.StatusInternalServerError, "failed checking existing user")
	}
	if taken > 0 {
		return utils.Error(c, fiber.StatusConflict, "username or email already registered")
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed to hash password")
	}
	user := models.User{Username: req.Username, Email: req.Email, PasswordHash: hash}
	if err := db.Create(&user).Error; err != nil {
		logger.Error("register_create_failed", err, map[string]interface{}{"username": user.Username})
		return utils.Error(c, fiber.StatusInternalServerError, "failed creating user")
	}

	logger.Info("user_registered", map[string]interface{}{
		"user_id":  user.ID.String(),
		"username": user.Username,
	})
	h.record(c, &user, models.AuditUserRegister, map[string]interface{}{
		"username": user.Username,
		"email":    user.Email,
	})
	return h.issueSession(c, fiber.StatusCreated, &user)
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// Login accepts either the username or the email address. Unknown users and
// wrong passwords get the same answer.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	req.Login = strings.TrimSpace(req.Login)
	if req.Login == "" || req.Password == "" {
		return utils.Error(c, fiber.StatusBadRequest, "login and password are required")
	}

	var user models.User
	err := h.DB.WithContext(c.UserContext()).
		Where("username = ? OR email = ?", req.Login, strings.ToLower(req.Login)).
		Take(&user).Error
	if err != nil {
		logger.Warn("login_failed_user_not_found", map[string]interface{}{
			"login": req.Login,
			"ip":    c.IP(),
		})
		return utils.Error(c, fiber.StatusUnauthorized, "invalid credentials")
	}
	if !utils.CheckPassword(req.Password, user.PasswordHash) {
		logger.Warn("login_failed_invalid_password", map[string]interface{}{
			"user_id": user.ID.String(),
			"ip":      c.IP(),
		})
		return utils.Error(c, fiber.StatusUnauthorized, "invalid credentials")
	}

	logger.InfoWithUser(user.ID.String(), "user_login", map[string]interface{}{"ip": c.IP()})
	h.record(c, &user, models.AuditUserLogin, nil)
	return h.issueSession(c, fiber.StatusOK, &user)
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, user)
}

func (h *AuthHandler) issueSession(c *fiber.Ctx, status int, user *models.User) error {
	token, err := utils.GenerateToken(user)
	if err != nil {
		logger.ErrorWithUser(user.ID.String(), "token_generation_failed", err, nil)
		return utils.Error(c, fiber.StatusInternalServerError, "failed generating token")
	}
	return utils.Success(c, status, fiber.Map{"token": token, "user": user})
}

func (h *AuthHandler) record(c *fiber.Ctx, user *models.User, action string, details map[string]interface{}) {
	h.Audit.LogAsync(services.AuditEntry{
		UserID:       &user.ID,
		Action:       action,
		ResourceType: "user",
		ResourceID:   &user.ID,
		Details:      details,
		IPAddress:    c.IP(),
		RequestID:    getRequestID(c),
	})
}
