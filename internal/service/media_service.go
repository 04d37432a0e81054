package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"path"
	"strings"

	"go-marketplace-api/internal/model"
	"go-marketplace-api/internal/repository"
	"go-marketplace-api/pkg/apperror"
	"go-marketplace-api/pkg/storage"

	"github.com/google/uuid"
)

// MaxUploadSize is the largest accepted media file.
const MaxUploadSize = 10 << 20

var (
	ErrFolderNotFound = apperror.NotFound("folder not found")
	ErrFileNotFound   = apperror.NotFound("file not found")
	ErrFolderIntoSelf = apperror.BadRequest("a folder cannot be moved into itself or one of its subfolders")
	ErrFileTooLarge   = apperror.New(http.StatusRequestEntityTooLarge, "file exceeds the 10 MiB limit")
	ErrEmptyFile      = apperror.BadRequest("file is empty")
)

type FolderRequest struct {
	Name     string     `json:"name" validate:"required,max=150"`
	ParentID *uuid.UUID `json:"parent_id"`
}

type UpdateFolderRequest struct {
	Name       string     `json:"name" validate:"omitempty,max=150"`
	ParentID   *uuid.UUID `json:"parent_id"`
	MoveToRoot bool       `json:"move_to_root"`
}

// Upload is a file received from a multipart form.
type Upload struct {
	FolderID    *uuid.UUID
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

type MediaService interface {
	CreateFolder(actor Actor, req *FolderRequest) (*model.MediaFolder, error)
	UpdateFolder(actor Actor, id uuid.UUID, req *UpdateFolderRequest) (*model.MediaFolder, error)
	DeleteFolder(ctx context.Context, actor Actor, id uuid.UUID) error
	ListFolders(actor Actor, parentID *uuid.UUID) ([]model.MediaFolder, error)
	Tree(actor Actor, id uuid.UUID) ([]model.MediaFolderNode, error)
	Breadcrumb(actor Actor, id uuid.UUID) ([]model.MediaFolderNode, error)

	UploadFile(ctx context.Context, actor Actor, upload *Upload) (*model.MediaFile, error)
	ListFiles(actor Actor, folderID *uuid.UUID) ([]model.MediaFile, error)
	DeleteFile(ctx context.Context, actor Actor, id uuid.UUID) error
}

type mediaService struct {
	repo  repository.MediaRepository
	store storage.Store
}

func NewMediaService(repo repository.MediaRepository, store storage.Store) MediaService {
	return &mediaService{repo: repo, store: store}
}

func (s *mediaService) CreateFolder(actor Actor, req *FolderRequest) (*model.MediaFolder, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	if req.ParentID != nil {
		if _, err := s.ownFolder(actor, *req.ParentID); err != nil {
			return nil, err
		}
	}

	folder := &model.MediaFolder{OwnerID: actor.UserID, Name: strings.TrimSpace(req.Name), ParentID: req.ParentID}
	folder.Audit(actor.Audit())
	if err := s.repo.CreateFolder(folder); err != nil {
		return nil, err
	}
	return folder, nil
}

func (s *mediaService) UpdateFolder(actor Actor, id uuid.UUID, req *UpdateFolderRequest) (*model.MediaFolder, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	folder, err := s.ownFolder(actor, id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		folder.Name = strings.TrimSpace(req.Name)
	}

	switch {
	case req.MoveToRoot:
		folder.ParentID = nil
	case req.ParentID != nil:
		if _, err := s.ownFolder(actor, *req.ParentID); err != nil {
			return nil, err
		}
		subtree, err := s.repo.Descendants(id)
		if err != nil {
			return nil, err
		}
		for _, node := range subtree {
			if node.ID == *req.ParentID {
				return nil, ErrFolderIntoSelf
			}
		}
		folder.ParentID = req.ParentID
	}

	folder.Audit(actor.Audit())
	if err := s.repo.UpdateFolder(folder); err != nil {
		return nil, err
	}
	return folder, nil
}

// DeleteFolder removes the folder, its subfolders and every file in them,
// including the stored objects.
func (s *mediaService) DeleteFolder(ctx context.Context, actor Actor, id uuid.UUID) error {
	if _, err := s.ownFolder(actor, id); err != nil {
		return err
	}
	subtree, err := s.repo.Descendants(id)
	if err != nil {
		return err
	}
	ids := make([]uuid.UUID, len(subtree))
	for i, node := range subtree {
		ids[i] = node.ID
	}

	files, err := s.repo.FindFilesInFolders(ids)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteFolders(ids, actor.Audit()); err != nil {
		return err
	}
	for i := range files {
		s.removeObjects(ctx, &files[i])
	}
	return nil
}

func (s *mediaService) ListFolders(actor Actor, parentID *uuid.UUID) ([]model.MediaFolder, error) {
	if parentID != nil {
		if _, err := s.ownFolder(actor, *parentID); err != nil {
			return nil, err
		}
	}
	return s.repo.FindFolders(actor.UserID, parentID)
}

func (s *mediaService) Tree(actor Actor, id uuid.UUID) ([]model.MediaFolderNode, error) {
	if _, err := s.ownFolder(actor, id); err != nil {
		return nil, err
	}
	return s.repo.Descendants(id)
}

func (s *mediaService) Breadcrumb(actor Actor, id uuid.UUID) ([]model.MediaFolderNode, error) {
	if _, err := s.ownFolder(actor, id); err != nil {
		return nil, err
	}
	return s.repo.Ancestors(id)
}

// UploadFile stores the file and, for images, a JPEG thumbnail next to it.
func (s *mediaService) UploadFile(ctx context.Context, actor Actor, upload *Upload) (*model.MediaFile, error) {
	if upload.Size > MaxUploadSize {
		return nil, ErrFileTooLarge
	}
	if upload.FolderID != nil {
		if _, err := s.ownFolder(actor, *upload.FolderID); err != nil {
			return nil, err
		}
	}

	data, err := io.ReadAll(io.LimitReader(upload.Body, MaxUploadSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxUploadSize {
		return nil, ErrFileTooLarge
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	contentType := upload.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	id := uuid.New()
	file := &model.MediaFile{
		OwnerID:   actor.UserID,
		FolderID:  upload.FolderID,
		Name:      path.Base(upload.Name),
		ObjectKey: fmt.Sprintf("media/%s/%s%s", actor.UserID, id, strings.ToLower(path.Ext(upload.Name))),
		MimeType:  contentType,
		Size:      int64(len(data)),
	}
	file.ID = id

	file.URL, err = s.store.Put(ctx, file.ObjectKey, bytes.NewReader(data), file.Size, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	if storage.IsImage(contentType) {
		thumb, err := storage.Thumbnail(bytes.NewReader(data))
		if err != nil {
			log.Printf("Warning: could not thumbnail %s: %v", file.ObjectKey, err)
		} else {
			key := fmt.Sprintf("media/%s/%s_thumb.jpg", actor.UserID, id)
			url, err := s.store.Put(ctx, key, bytes.NewReader(thumb), int64(len(thumb)), "image/jpeg")
			if err != nil {
				log.Printf("Warning: could not store thumbnail %s: %v", key, err)
			} else {
				file.ThumbnailKey = key
				file.ThumbnailURL = url
			}
		}
	}

	file.Audit(actor.Audit())
	if err := s.repo.CreateFile(file); err != nil {
		s.removeObjects(ctx, file)
		return nil, err
	}
	return file, nil
}

func (s *mediaService) ListFiles(actor Actor, folderID *uuid.UUID) ([]model.MediaFile, error) {
	if folderID != nil {
		if _, err := s.ownFolder(actor, *folderID); err != nil {
			return nil, err
		}
	}
	return s.repo.FindFiles(actor.UserID, folderID)
}

func (s *mediaService) DeleteFile(ctx context.Context, actor Actor, id uuid.UUID) error {
	file, err := s.repo.FindFileByID(id)
	if err != nil {
		return notFound(err, ErrFileNotFound)
	}
	if file.OwnerID != actor.UserID {
		return ErrFileNotFound
	}
	if err := s.repo.DeleteFile(id, actor.Audit()); err != nil {
		return err
	}
	s.removeObjects(ctx, file)
	return nil
}

func (s *mediaService) ownFolder(actor Actor, id uuid.UUID) (*model.MediaFolder, error) {
	folder, err := s.repo.FindFolderByID(id)
	if err != nil {
		return nil, notFound(err, ErrFolderNotFound)
	}
	if folder.OwnerID != actor.UserID {
		return nil, ErrFolderNotFound
	}
	return folder, nil
}

func (s *mediaService) removeObjects(ctx context.Context, file *model.MediaFile) {
	for _, key := range []string{file.ObjectKey, file.ThumbnailKey} {
		if key == "" {
			continue
		}
		if err := s.store.Remove(ctx, key); err != nil {
			log.Printf("Warning: failed to remove object %s: %v", key, err)
		}
	}
}
