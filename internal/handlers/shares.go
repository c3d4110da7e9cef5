package handlers

import (
	"github.com/filestore/backend/internal/models"
	"github.com/filestore/backend/internal/services"
	"github.com/filestore/backend/pkg/logger"
	"github.com/filestore/backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type SharesHandler struct {
	Access *services.AccessService
	Files  *services.FileService
	Audit  *services.AuditService
}

func NewSharesHandler(access *services.AccessService, files *services.FileService, audit *services.AuditService) *SharesHandler {
	return &SharesHandler{Access: access, Files: files, Audit: audit}
}

type shareEntry struct {
	UserID      uuid.UUID              `json:"userID"`
	Permission  models.SharePermission `json:"permission"`
	CanDownload *bool                  `json:"canDownload"`
}

type replaceSharesRequest struct {
	Shares []shareEntry `json:"shares"`
}

// ReplaceShares swaps the whole grant set of a file for the one in the
// request body. An empty list revokes all sharing.
func (h *SharesHandler) ReplaceShares(c *fiber.Ctx) error {
	currentUser, fileID, err := requireFileRequest(c)
	if err != nil {
		return err
	}

	var req replaceSharesRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	grants := make([]services.GrantInput, len(req.Shares))
	recipients := make([]string, len(req.Shares))
	for i, entry := range req.Shares {
		grants[i] = services.GrantInput{
			UserID:      entry.UserID,
			Permission:  entry.Permission,
			CanDownload: entry.CanDownload,
		}
		recipients[i] = entry.UserID.String()
	}

	count, err := h.Access.ReplaceShares(c.UserContext(), fileID, currentUser.ID, grants)
	if err != nil {
		return respondServiceError(c, currentUser, "share_replace", err)
	}

	logger.InfoWithUser(currentUser.ID.String(), "shares_replaced", map[string]interface{}{
		"file_id": fileID.String(),
		"count":   count,
	})

	recordFileEvent(h.Audit, c, currentUser, models.AuditShareReplace, fileID, map[string]interface{}{
		"count":      count,
		"recipients": recipients,
	})

	return utils.Success(c, fiber.StatusOK, fiber.Map{"count": count})
}

func (h *SharesHandler) ListFileShares(c *fiber.Ctx) error {
	currentUser, fileID, err := requireFileRequest(c)
	if err != nil {
		return err
	}

	shares, err := h.Access.ListGrants(c.UserContext(), fileID, currentUser.ID)
	if err != nil {
		return respondServiceError(c, currentUser, "list_shares", err)
	}
	return utils.Success(c, fiber.StatusOK, shares)
}

func (h *SharesHandler) ListSharedWithMe(c *fiber.Ctx) error {
	currentUser, err := requireUser(c)
	if err != nil {
		return err
	}

	files, err := h.Files.ListSharedWith(c.UserContext(), currentUser.ID)
	if err != nil {
		return respondServiceError(c, currentUser, "list_shared_with", err)
	}
	return utils.Success(c, fiber.StatusOK, files)
}
