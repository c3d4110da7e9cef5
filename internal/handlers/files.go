package handlers

import (
	"fmt"
	"mime"
	"path/filepath"

	"github.com/filestore/backend/internal/models"
	"github.com/filestore/backend/internal/services"
	"github.com/filestore/backend/pkg/logger"
	"github.com/filestore/backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type FilesHandler struct {
	Files  *services.FileService
	Access *services.AccessService
	Audit  *services.AuditService
}

func NewFilesHandler(files *services.FileService, access *services.AccessService, audit *services.AuditService) *FilesHandler {
	return &FilesHandler{Files: files, Access: access, Audit: audit}
}

// Upload stores the multipart "file" part. Size and type are derived from
// the content itself; a client supplied content type is only a hint.
func (h *FilesHandler) Upload(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}

	part, err := c.FormFile("file")
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "file is required")
	}
	stream, err := part.Open()
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed opening uploaded file")
	}
	defer stream.Close()

	hint := part.Header.Get(fiber.HeaderContentType)
	if hint == "" {
		hint = mime.TypeByExtension(filepath.Ext(part.Filename))
	}

	file, err := h.Files.Upload(c.UserContext(), user.ID, services.UploadInput{
		Filename:    part.Filename,
		Name:        c.FormValue("name"),
		Description: c.FormValue("description"),
		ContentType: hint,
		Content:     stream,
	})
	if err != nil {
		return respondServiceError(c, user, "file_upload", err)
	}

	logger.InfoWithUser(user.ID.String(), "file_uploaded", map[string]interface{}{
		"file_id":      file.ID.String(),
		"file_size":    file.Size,
		"file_type":    string(file.FileType),
		"storage_path": file.StoragePath,
	})
	recordFileEvent(h.Audit, c, user, models.AuditFileUpload, file.ID, map[string]interface{}{
		"file_name": file.Name,
		"file_size": file.Size,
		"file_type": string(file.FileType),
	})

	return utils.Success(c, fiber.StatusCreated, file)
}

func (h *FilesHandler) ListOwned(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	files, err := h.Files.ListOwned(c.UserContext(), user.ID)
	if err != nil {
		return respondServiceError(c, user, "list_owned", err)
	}
	return utils.Success(c, fiber.StatusOK, files)
}

// Get returns the file together with the caller's access to it.
func (h *FilesHandler) Get(c *fiber.Ctx) error {
	user, fileID, err := requireFileRequest(c)
	if err != nil {
		return err
	}
	file, access, err := h.Files.Get(c.UserContext(), fileID, user.ID)
	if err != nil {
		return respondServiceError(c, user, "file_view", err)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"file": file, "access": access})
}

// GetAccess reports what the caller may do with a file. A caller without a
// grant gets level "none" rather than an error.
func (h *FilesHandler) GetAccess(c *fiber.Ctx) error {
	user, fileID, err := requireFileRequest(c)
	if err != nil {
		return err
	}
	_, access, err := h.Access.ResolveByID(c.UserContext(), fileID, user.ID)
	if err != nil {
		return respondServiceError(c, user, "resolve_access", err)
	}
	return utils.Success(c, fiber.StatusOK, accessView(access))
}

func (h *FilesHandler) Download(c *fiber.Ctx) error {
	user, fileID, err := requireFileRequest(c)
	if err != nil {
		return err
	}
	file, reader, err := h.Files.Open(c.UserContext(), fileID, user.ID)
	if err != nil {
		return respondServiceError(c, user, "file_download", err)
	}

	logger.InfoWithUser(user.ID.String(), "file_downloaded", map[string]interface{}{
		"file_id":   file.ID.String(),
		"file_size": file.Size,
	})
	recordFileEvent(h.Audit, c, user, models.AuditFileDownload, file.ID, map[string]interface{}{
		"file_name": file.Name,
		"file_size": file.Size,
	})

	c.Set(fiber.HeaderContentType, file.MimeType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", file.Name))
	return c.SendStream(reader, int(file.Size))
}

// Delete removes the blob, the record and every grant on it. Owner only.
func (h *FilesHandler) Delete(c *fiber.Ctx) error {
	user, fileID, err := requireFileRequest(c)
	if err != nil {
		return err
	}
	file, err := h.Files.Delete(c.UserContext(), fileID, user.ID)
	if err != nil {
		return respondServiceError(c, user, "file_delete", err)
	}

	logger.InfoWithUser(user.ID.String(), "file_deleted", map[string]interface{}{
		"file_id":      file.ID.String(),
		"storage_path": file.StoragePath,
	})
	recordFileEvent(h.Audit, c, user, models.AuditFileDelete, file.ID, map[string]interface{}{
		"file_name": file.Name,
	})

	return utils.Success(c, fiber.StatusOK, fiber.Map{"deleted": true})
}

func (h *FilesHandler) Dashboard(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	dashboard, err := h.Files.Dashboard(c.UserContext(), user.ID)
	if err != nil {
		return respondServiceError(c, user, "dashboard", err)
	}
	return utils.Success(c, fiber.StatusOK, dashboard)
}

func accessView(access services.Access) fiber.Map {
	return fiber.Map{
		"level":       access.Level,
		"permission":  access.Permission,
		"canView":     access.CanView(),
		"canDownload": access.CanDownload(),
		"canEdit":     access.CanEdit(),
		"canManage":   access.CanManage(),
	}
}
