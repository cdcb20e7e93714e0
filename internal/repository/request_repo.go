package repository

import (
	"context"
	"errors"

	"backend/internal/apperr"
	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RequestFilter narrows the request listing
type RequestFilter struct {
	Status     string
	LocationID *uuid.UUID
	Keyword    string
	Page       int
	Limit      int
}

// RequestRepository defines data access for the ApprovalRequest aggregate
type RequestRepository interface {
	Create(ctx context.Context, req *model.ApprovalRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.ApprovalRequest, error)
	// GetByIDUnscoped also returns soft-deleted rows, for already-deleted checks
	GetByIDUnscoped(ctx context.Context, id uuid.UUID) (*model.ApprovalRequest, error)
	GetByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.ApprovalRequest, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	// UpdateStatusCAS writes the new status iff the row still carries the
	// given version, bumping the version. Fails with a version conflict when
	// a concurrent responder got there first.
	UpdateStatusCAS(ctx context.Context, id uuid.UUID, version int64, status string) error
	// ListForMember returns requests where the member is the owner or an
	// active designated approver, newest first.
	ListForMember(ctx context.Context, memberID uuid.UUID, filter RequestFilter) ([]model.ApprovalRequest, int64, error)
}

type requestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

func (r *requestRepository) Create(ctx context.Context, req *model.ApprovalRequest) error {
	return GetDB(ctx, r.db).Create(req).Error
}

func (r *requestRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ApprovalRequest, error) {
	var req model.ApprovalRequest
	if err := GetDB(ctx, r.db).First(&req, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrRequestNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository) GetByIDUnscoped(ctx context.Context, id uuid.UUID) (*model.ApprovalRequest, error) {
	var req model.ApprovalRequest
	if err := GetDB(ctx, r.db).Unscoped().First(&req, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrRequestNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository) GetByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.ApprovalRequest, error) {
	var req model.ApprovalRequest
	err := GetDB(ctx, r.db).
		Preload("Owner").
		Preload("Parent").
		Preload("Approvers", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc") }).
		Preload("Approvers.Member").
		Preload("Responses", func(db *gorm.DB) *gorm.DB { return db.Order("created_at desc") }).
		Preload("Responses.Member").
		First(&req, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrRequestNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	return GetDB(ctx, r.db).Model(&model.ApprovalRequest{}).Where("id = ?", id).Updates(fields).Error
}

func (r *requestRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.ApprovalRequest{}).Error
}

func (r *requestRepository) UpdateStatusCAS(ctx context.Context, id uuid.UUID, version int64, status string) error {
	res := GetDB(ctx, r.db).Model(&model.ApprovalRequest{}).
		Where("id = ? AND version = ?", id, version).
		Updates(map[string]interface{}{"status": status, "version": version + 1})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.ErrVersionConflict
	}
	return nil
}

func (r *requestRepository) ListForMember(ctx context.Context, memberID uuid.UUID, filter RequestFilter) ([]model.ApprovalRequest, int64, error) {
	db := GetDB(ctx, r.db)

	applyFilter := func(q *gorm.DB) *gorm.DB {
		approverSub := db.Session(&gorm.Session{NewDB: true}).
			Model(&model.ApproverDesignation{}).
			Select("request_id").
			Where("member_id = ?", memberID)
		q = q.Where("owner_id = ? OR id IN (?)", memberID, approverSub)
		if filter.Status != "" {
			q = q.Where("status = ?", filter.Status)
		}
		if filter.LocationID != nil {
			q = q.Where("location_id = ?", *filter.LocationID)
		}
		if filter.Keyword != "" {
			pattern := "%" + filter.Keyword + "%"
			q = q.Where("title LIKE ? OR content LIKE ?", pattern, pattern)
		}
		return q
	}

	var total int64
	if err := applyFilter(db.Model(&model.ApprovalRequest{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var requests []model.ApprovalRequest
	offset := (filter.Page - 1) * filter.Limit
	if err := applyFilter(db.Model(&model.ApprovalRequest{})).
		Preload("Owner").
		Order("created_at DESC").
		Offset(offset).
		Limit(filter.Limit).
		Find(&requests).Error; err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}
