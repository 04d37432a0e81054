package repository

import (
	"go-marketplace-api/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MediaRepository interface {
	CreateFolder(folder *model.MediaFolder) error
	UpdateFolder(folder *model.MediaFolder) error
	FindFolderByID(id uuid.UUID) (*model.MediaFolder, error)
	FindFolders(ownerID uuid.UUID, parentID *uuid.UUID) ([]model.MediaFolder, error)
	Descendants(id uuid.UUID) ([]model.MediaFolderNode, error)
	Ancestors(id uuid.UUID) ([]model.MediaFolderNode, error)
	// DeleteFolders removes the folders and every file inside them.
	DeleteFolders(ids []uuid.UUID, deletedBy string) error

	CreateFile(file *model.MediaFile) error
	FindFileByID(id uuid.UUID) (*model.MediaFile, error)
	FindFiles(ownerID uuid.UUID, folderID *uuid.UUID) ([]model.MediaFile, error)
	FindFilesInFolders(folderIDs []uuid.UUID) ([]model.MediaFile, error)
	DeleteFile(id uuid.UUID, deletedBy string) error
}

type mediaRepo struct {
	db *gorm.DB
}

func NewMediaRepo(db *gorm.DB) MediaRepository {
	return &mediaRepo{db}
}

func (r *mediaRepo) CreateFolder(folder *model.MediaFolder) error {
	return r.db.Create(folder).Error
}

func (r *mediaRepo) UpdateFolder(folder *model.MediaFolder) error {
	return r.db.Save(folder).Error
}

func (r *mediaRepo) FindFolderByID(id uuid.UUID) (*model.MediaFolder, error) {
	var folder model.MediaFolder
	if err := r.db.First(&folder, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &folder, nil
}

func (r *mediaRepo) FindFolders(ownerID uuid.UUID, parentID *uuid.UUID) ([]model.MediaFolder, error) {
	var folders []model.MediaFolder
	query := r.db.Where("owner_id = ?", ownerID)
	if parentID != nil {
		query = query.Where("parent_id = ?", *parentID)
	} else {
		query = query.Where("parent_id IS NULL")
	}
	err := query.Order("name ASC").Find(&folders).Error
	return folders, err
}

// Descendants returns the folder and everything below it, shallowest first.
func (r *mediaRepo) Descendants(id uuid.UUID) ([]model.MediaFolderNode, error) {
	var nodes []model.MediaFolderNode
	err := r.db.Raw(`
		WITH RECURSIVE subtree AS (
			SELECT id, name, parent_id, 0 AS depth
			FROM media_folders
			WHERE id = ? AND deleted_at IS NULL
			UNION ALL
			SELECT f.id, f.name, f.parent_id, s.depth + 1
			FROM media_folders f
			JOIN subtree s ON f.parent_id = s.id
			WHERE f.deleted_at IS NULL
		)
		SELECT id, name, parent_id, depth FROM subtree ORDER BY depth ASC, name ASC
	`, id).Scan(&nodes).Error
	return nodes, err
}

// Ancestors walks up from the folder to the root. The root comes first.
func (r *mediaRepo) Ancestors(id uuid.UUID) ([]model.MediaFolderNode, error) {
	var nodes []model.MediaFolderNode
	err := r.db.Raw(`
		WITH RECURSIVE path AS (
			SELECT id, name, parent_id, 0 AS depth
			FROM media_folders
			WHERE id = ? AND deleted_at IS NULL
			UNION ALL
			SELECT f.id, f.name, f.parent_id, p.depth + 1
			FROM media_folders f
			JOIN path p ON f.id = p.parent_id
			WHERE f.deleted_at IS NULL
		)
		SELECT id, name, parent_id, depth FROM path ORDER BY depth DESC
	`, id).Scan(&nodes).Error
	return nodes, err
}

func (r *mediaRepo) DeleteFolders(ids []uuid.UUID, deletedBy string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.MediaFile{}).Where("folder_id IN ?", ids).
			Update("deleted_by", deletedBy).Error; err != nil {
			return err
		}
		if err := tx.Where("folder_id IN ?", ids).Delete(&model.MediaFile{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.MediaFolder{}).Where("id IN ?", ids).
			Update("deleted_by", deletedBy).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Delete(&model.MediaFolder{}).Error
	})
}

func (r *mediaRepo) CreateFile(file *model.MediaFile) error {
	return r.db.Create(file).Error
}

func (r *mediaRepo) FindFileByID(id uuid.UUID) (*model.MediaFile, error) {
	var file model.MediaFile
	if err := r.db.First(&file, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &file, nil
}

func (r *mediaRepo) FindFiles(ownerID uuid.UUID, folderID *uuid.UUID) ([]model.MediaFile, error) {
	var files []model.MediaFile
	query := r.db.Where("owner_id = ?", ownerID)
	if folderID != nil {
		query = query.Where("folder_id = ?", *folderID)
	} else {
		query = query.Where("folder_id IS NULL")
	}
	err := query.Order("created_at DESC").Find(&files).Error
	return files, err
}

func (r *mediaRepo) FindFilesInFolders(folderIDs []uuid.UUID) ([]model.MediaFile, error) {
	var files []model.MediaFile
	if len(folderIDs) == 0 {
		return files, nil
	}
	err := r.db.Where("folder_id IN ?", folderIDs).Find(&files).Error
	return files, err
}

func (r *mediaRepo) DeleteFile(id uuid.UUID, deletedBy string) error {
	return softDelete(r.db, &model.MediaFile{}, id, deletedBy)
}
