package handlers

import (
	"errors"
	"strings"

	"github.com/filestore/backend/internal/middleware"
	"github.com/filestore/backend/internal/models"
	"github.com/filestore/backend/internal/services"
	"github.com/filestore/backend/pkg/logger"
	"github.com/filestore/backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func parseUUID(value string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(value))
}

// requireUser returns the authenticated caller. The returned *fiber.Error is
// rendered by utils.ErrorHandler.
func requireUser(c *fiber.Ctx) (*models.User, error) {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	return user, nil
}

// requireFileRequest returns the caller and the :id route parameter.
func requireFileRequest(c *fiber.Ctx) (*models.User, uuid.UUID, error) {
	user, err := requireUser(c)
	if err != nil {
		return nil, uuid.Nil, err
	}
	fileID, err := parseUUID(c.Params("id"))
	if err != nil {
		return nil, uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid file id")
	}
	return user, fileID, nil
}

func recordFileEvent(audit *services.AuditService, c *fiber.Ctx, user *models.User, action string, fileID uuid.UUID, details map[string]interface{}) {
	audit.LogAsync(services.AuditEntry{
		UserID:       &user.ID,
		Action:       action,
		ResourceType: "file",
		ResourceID:   &fileID,
		Details:      details,
		IPAddress:    c.IP(),
		RequestID:    getRequestID(c),
	})
}

func getRequestID(c *fiber.Ctx) string {
	return middleware.GetRequestID(c)
}

// respondServiceError maps the service error taxonomy onto HTTP statuses.
// Denials never reveal more than "access denied".
func respondServiceError(c *fiber.Ctx, user *models.User, action string, err error) error {
	var validation *services.ValidationError
	var failure *services.StoreFailure

	switch {
	case errors.Is(err, services.ErrUserNotFound):
		return utils.Error(c, fiber.StatusNotFound, "user not found")
	case errors.Is(err, services.ErrNotFound):
		return utils.Error(c, fiber.StatusNotFound, "file not found")
	case errors.Is(err, services.ErrPermissionDenied):
		logger.WarnWithUser(user.ID.String(), "permission_denied", map[string]interface{}{
			"action":    action,
			"target_id": c.Params("id"),
		})
		return utils.Error(c, fiber.StatusForbidden, "access denied")
	case errors.As(err, &validation):
		return utils.FieldError(c, validation.Field, validation.Error())
	case errors.As(err, &failure):
		logger.ErrorWithUser(user.ID.String(), action+"_failed", err, map[string]interface{}{
			"op":        failure.Op,
			"target_id": c.Params("id"),
		})
		return utils.Error(c, fiber.StatusInternalServerError, "storage failure")
	default:
		logger.ErrorWithUser(user.ID.String(), action+"_failed", err, nil)
		return utils.Error(c, fiber.StatusInternalServerError, "internal error")
	}
}
