package repository

import (
	"context"
	"errors"

	"backend/internal/apperr"
	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ResponseRepository defines data access for approval responses
type ResponseRepository interface {
	Create(ctx context.Context, resp *model.ApprovalResponse) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.ApprovalResponse, error)
	// ActiveByRequest returns all non-deleted responses of a request. Status
	// recomputation reads this full set fresh on every call.
	ActiveByRequest(ctx context.Context, requestID uuid.UUID) ([]model.ApprovalResponse, error)
	// HasActiveByMember reports whether the member already has a non-deleted
	// response on the request.
	HasActiveByMember(ctx context.Context, requestID, memberID uuid.UUID) (bool, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
	// ListByRequest returns non-deleted responses, most recent first
	ListByRequest(ctx context.Context, requestID uuid.UUID) ([]model.ApprovalResponse, error)
}

type responseRepository struct {
	db *gorm.DB
}

func NewResponseRepository(db *gorm.DB) ResponseRepository {
	return &responseRepository{db: db}
}

func (r *responseRepository) Create(ctx context.Context, resp *model.ApprovalResponse) error {
	return GetDB(ctx, r.db).Create(resp).Error
}

func (r *responseRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ApprovalResponse, error) {
	var resp model.ApprovalResponse
	if err := GetDB(ctx, r.db).First(&resp, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrResponseNotFound
		}
		return nil, err
	}
	return &resp, nil
}

func (r *responseRepository) ActiveByRequest(ctx context.Context, requestID uuid.UUID) ([]model.ApprovalResponse, error) {
	var responses []model.ApprovalResponse
	if err := GetDB(ctx, r.db).Where("request_id = ?", requestID).Find(&responses).Error; err != nil {
		return nil, err
	}
	return responses, nil
}

func (r *responseRepository) HasActiveByMember(ctx context.Context, requestID, memberID uuid.UUID) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.ApprovalResponse{}).
		Where("request_id = ? AND member_id = ?", requestID, memberID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *responseRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.ApprovalResponse{}).Error
}

func (r *responseRepository) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]model.ApprovalResponse, error) {
	var responses []model.ApprovalResponse
	err := GetDB(ctx, r.db).
		Preload("Member").
		Where("request_id = ?", requestID).
		Order("created_at DESC").
		Find(&responses).Error
	if err != nil {
		return nil, err
	}
	return responses, nil
}
