package handler

import (
	"go-marketplace-api/internal/service"
	"go-marketplace-api/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type MediaHandler struct {
	mediaService service.MediaService
}

func NewMediaHandler(mediaService service.MediaService) *MediaHandler {
	return &MediaHandler{mediaService: mediaService}
}

// ---- folders

// GET /api/v1/media/folders?parent_id=
func (h *MediaHandler) GetFolders(c *fiber.Ctx) error {
	parentID, err := queryID(c, "parent_id")
	if err != nil {
		return fail(c, err)
	}
	folders, err := h.mediaService.ListFolders(currentActor(c), parentID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"data": folders})
}

// POST /api/v1/media/folders
func (h *MediaHandler) CreateFolder(c *fiber.Ctx) error {
	var req service.FolderRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	folder, err := h.mediaService.CreateFolder(currentActor(c), &req)
	if err != nil {
		return fail(c, err)
	}
	return created(c, "Folder created successfully", folder)
}

// UpdateFolder renames or moves a folder
// PATCH /api/v1/media/folders/:id
func (h *MediaHandler) UpdateFolder(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req service.UpdateFolderRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	folder, err := h.mediaService.UpdateFolder(currentActor(c), id, &req)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Folder updated successfully", folder)
}

// DELETE /api/v1/media/folders/:id
func (h *MediaHandler) DeleteFolder(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.mediaService.DeleteFolder(c.UserContext(), currentActor(c), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Folder deleted successfully"})
}

// GET /api/v1/media/folders/:id/tree
func (h *MediaHandler) GetFolderTree(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	nodes, err := h.mediaService.Tree(currentActor(c), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"data": nodes})
}

// GET /api/v1/media/folders/:id/breadcrumb
func (h *MediaHandler) GetBreadcrumb(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	nodes, err := h.mediaService.Breadcrumb(currentActor(c), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"data": nodes})
}

// ---- files

// GET /api/v1/media/files?folder_id=
func (h *MediaHandler) GetFiles(c *fiber.Ctx) error {
	folderID, err := queryID(c, "folder_id")
	if err != nil {
		return fail(c, err)
	}
	files, err := h.mediaService.ListFiles(currentActor(c), folderID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"data": files})
}

// UploadFile stores a multipart "file" field
// POST /api/v1/media/files
func (h *MediaHandler) UploadFile(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return fail(c, apperror.BadRequest("file is required"))
	}
	if header.Size > service.MaxUploadSize {
		return fail(c, service.ErrFileTooLarge)
	}

	var folderID *uuid.UUID
	if raw := c.FormValue("folder_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return fail(c, apperror.BadRequest("Invalid folder_id"))
		}
		folderID = &id
	}

	body, err := header.Open()
	if err != nil {
		return fail(c, err)
	}
	defer body.Close()

	file, err := h.mediaService.UploadFile(c.UserContext(), currentActor(c), &service.Upload{
		FolderID:    folderID,
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        body,
	})
	if err != nil {
		return fail(c, err)
	}
	return created(c, "File uploaded successfully", file)
}

// DELETE /api/v1/media/files/:id
func (h *MediaHandler) DeleteFile(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.mediaService.DeleteFile(c.UserContext(), currentActor(c), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "File deleted successfully"})
}
