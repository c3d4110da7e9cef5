package services

import (
	"context"
	"errors"

	"github.com/filestore/backend/internal/cache"
	"github.com/filestore/backend/internal/models"
	"github.com/filestore/backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AccessLevel int

const (
	AccessNone AccessLevel = iota
	AccessGrant
	AccessOwner
)

func (l AccessLevel) String() string {
	switch l {
	case AccessOwner:
		return "owner"
	case AccessGrant:
		return "grant"
	default:
		return "none"
	}
}

func (l AccessLevel) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// Access is the outcome of resolving a requester against a file. Permission
// and Download are only meaningful for AccessGrant.
type Access struct {
	Level      AccessLevel            `json:"level"`
	Permission models.SharePermission `json:"permission,omitempty"`
	Download   bool                   `json:"canDownload"`
}

func OwnerAccess() Access {
	return Access{Level: AccessOwner, Permission: models.SharePermissionEdit, Download: true}
}

func GrantAccess(permission models.SharePermission, canDownload bool) Access {
	return Access{Level: AccessGrant, Permission: permission, Download: canDownload}
}

func NoAccess() Access {
	return Access{Level: AccessNone}
}

func (a Access) IsOwner() bool {
	return a.Level == AccessOwner
}

// CanView holds for the owner and for any grant, view or edit.
func (a Access) CanView() bool {
	if a.Level == AccessOwner {
		return true
	}
	return a.Level == AccessGrant && a.Permission.Valid()
}

func (a Access) CanDownload() bool {
	if a.Level == AccessOwner {
		return true
	}
	return a.CanView() && a.Download
}

func (a Access) CanEdit() bool {
	if a.Level == AccessOwner {
		return true
	}
	return a.Level == AccessGrant && a.Permission == models.SharePermissionEdit
}

// CanManage covers deleting, re-sharing and listing grants. No grant ever
// confers it.
func (a Access) CanManage() bool {
	return a.Level == AccessOwner
}

// GrantInput is one entry of a replacement share set. A nil CanDownload
// defaults to true.
type GrantInput struct {
	UserID      uuid.UUID
	Permission  models.SharePermission
	CanDownload *bool
}

type AccessService struct {
	DB    *gorm.DB
	Cache *cache.AccessCache
}

func NewAccessService(db *gorm.DB, accessCache *cache.AccessCache) *AccessService {
	return &AccessService{DB: db, Cache: accessCache}
}

// Resolve decides what requesterID may do with file. Ownership wins over any
// grant row. Cached decisions are looked up under file.ShareGeneration, so
// file must be freshly loaded.
func (a *AccessService) Resolve(ctx context.Context, file *models.File, requesterID uuid.UUID) (Access, error) {
	if file.OwnerID == requesterID {
		return OwnerAccess(), nil
	}

	cached := a.Cache != nil
	if cached {
		grant, ok, err := a.Cache.Get(ctx, file.ID, requesterID, file.ShareGeneration)
		switch {
		case err != nil:
			logger.Warn("access_cache_unavailable", map[string]interface{}{
				"file_id": file.ID.String(),
				"error":   err.Error(),
			})
			cached = false
		case ok:
			return accessFromCache(grant), nil
		}
	}

	var share models.Share
	err := a.DB.WithContext(ctx).
		Where("file_id = ? AND user_id = ?", file.ID, requesterID).
		Take(&share).Error

	var access Access
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		access = NoAccess()
	case err != nil:
		return NoAccess(), storeFailure("resolve_access", err)
	default:
		access = GrantAccess(share.Permission, share.CanDownload)
	}

	if cached {
		if err := a.Cache.Set(ctx, file.ID, requesterID, file.ShareGeneration, accessToCache(access)); err != nil {
			logger.Warn("access_cache_set_failed", map[string]interface{}{
				"file_id": file.ID.String(),
				"error":   err.Error(),
			})
		}
	}

	return access, nil
}

func (a *AccessService) ResolveByID(ctx context.Context, fileID, requesterID uuid.UUID) (*models.File, Access, error) {
	file, err := a.loadFile(ctx, a.DB, fileID)
	if err != nil {
		return nil, NoAccess(), err
	}
	access, err := a.Resolve(ctx, file, requesterID)
	if err != nil {
		return nil, NoAccess(), err
	}
	return file, access, nil
}

// ReplaceShares discards every grant on fileID and installs grants in their
// place inside one transaction. Only the owner may call it. It returns the
// number of grants created; an empty set revokes all sharing.
func (a *AccessService) ReplaceShares(ctx context.Context, fileID, issuerID uuid.UUID, grants []GrantInput) (int, error) {
	file, err := a.loadFile(ctx, a.DB, fileID)
	if err != nil {
		return 0, err
	}
	if file.OwnerID != issuerID {
		return 0, ErrPermissionDenied
	}

	shares, err := buildShares(file, grants)
	if err != nil {
		return 0, err
	}
	if err := a.ensureUsersExist(ctx, shares); err != nil {
		return 0, err
	}

	var superseded int64
	err = a.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked := tx
		if tx.Dialector.Name() == "postgres" {
			locked = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		current, err := a.loadFile(ctx, locked, fileID)
		if err != nil {
			return err
		}
		if current.OwnerID != issuerID {
			return ErrPermissionDenied
		}

		superseded = current.ShareGeneration
		if err := bumpShareGeneration(tx, fileID); err != nil {
			return err
		}
		if err := tx.Where("file_id = ?", fileID).Delete(&models.Share{}).Error; err != nil {
			return err
		}
		if len(shares) == 0 {
			return nil
		}
		return tx.Create(&shares).Error
	})
	if err != nil {
		return 0, storeFailure("replace_shares", err)
	}

	a.forget(ctx, fileID, superseded)
	return len(shares), nil
}

// ListGrants returns the current grant set of fileID with the grantee
// loaded. Only the owner may list grants.
func (a *AccessService) ListGrants(ctx context.Context, fileID, requesterID uuid.UUID) ([]models.Share, error) {
	file, err := a.loadFile(ctx, a.DB, fileID)
	if err != nil {
		return nil, err
	}
	if file.OwnerID != requesterID {
		return nil, ErrPermissionDenied
	}

	var shares []models.Share
	if err := a.DB.WithContext(ctx).
		Preload("User").
		Where("file_id = ?", fileID).
		Order("shared_at ASC").
		Find(&shares).Error; err != nil {
		return nil, storeFailure("list_grants", err)
	}
	return shares, nil
}

func (a *AccessService) loadFile(ctx context.Context, db *gorm.DB, fileID uuid.UUID) (*models.File, error) {
	var file models.File
	err := db.WithContext(ctx).Where("id = ?", fileID).Take(&file).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storeFailure("load_file", err)
	}
	return &file, nil
}

func (a *AccessService) ensureUsersExist(ctx context.Context, shares []models.Share) error {
	if len(shares) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(shares))
	for i, share := range shares {
		ids[i] = share.UserID
	}

	var count int64
	if err := a.DB.WithContext(ctx).Model(&models.User{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
		return storeFailure("replace_shares", err)
	}
	if count != int64(len(ids)) {
		return ErrUserNotFound
	}
	return nil
}

// bumpShareGeneration moves the file's share generation forward inside tx.
func bumpShareGeneration(tx *gorm.DB, fileID uuid.UUID) error {
	return tx.Model(&models.File{}).
		Where("id = ?", fileID).
		UpdateColumn("share_generation", gorm.Expr("share_generation + 1")).Error
}

// forget drops cache entries of a superseded generation. The grants are
// already committed, so a failure is reported in the logs and left to the TTL.
func (a *AccessService) forget(ctx context.Context, fileID uuid.UUID, generation int64) {
	if a.Cache == nil {
		return
	}
	if err := a.Cache.Forget(ctx, fileID, generation); err != nil {
		logger.Warn("access_cache_forget_failed", map[string]interface{}{
			"file_id":    fileID.String(),
			"generation": generation,
			"error":      err.Error(),
		})
	}
}

func buildShares(file *models.File, grants []GrantInput) ([]models.Share, error) {
	seen := make(map[uuid.UUID]bool, len(grants))
	shares := make([]models.Share, 0, len(grants))

	for i, grant := range grants {
		if grant.UserID == uuid.Nil {
			return nil, newValidationError("shares", "entry %d has no user", i)
		}
		if grant.UserID == file.OwnerID {
			return nil, newValidationError("shares", "a file cannot be shared with its owner")
		}
		if seen[grant.UserID] {
			return nil, newValidationError("shares", "user %s appears more than once", grant.UserID)
		}
		seen[grant.UserID] = true

		permission := grant.Permission
		if permission == "" {
			permission = models.SharePermissionView
		}
		if !permission.Valid() {
			return nil, newValidationError("permission", "invalid permission %q", string(grant.Permission))
		}

		canDownload := true
		if grant.CanDownload != nil {
			canDownload = *grant.CanDownload
		}

		shares = append(shares, models.Share{
			FileID:      file.ID,
			UserID:      grant.UserID,
			Permission:  permission,
			CanDownload: canDownload,
		})
	}

	return shares, nil
}

func accessToCache(access Access) cache.Grant {
	if access.Level != AccessGrant {
		return cache.Grant{}
	}
	return cache.Grant{Found: true, Permission: string(access.Permission), CanDownload: access.Download}
}

func accessFromCache(grant cache.Grant) Access {
	if !grant.Found {
		return NoAccess()
	}
	return GrantAccess(models.SharePermission(grant.Permission), grant.CanDownload)
}
