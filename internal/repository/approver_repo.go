package repository

import (
	"context"
	"errors"

	"backend/internal/apperr"
	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ApproverRepository defines data access for approver designations
type ApproverRepository interface {
	CreateBatch(ctx context.Context, designations []model.ApproverDesignation) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.ApproverDesignation, error)
	// ActiveByRequest returns all non-deleted designations of a request
	ActiveByRequest(ctx context.Context, requestID uuid.UUID) ([]model.ApproverDesignation, error)
	// FindActive looks up the member's non-deleted designation on a request
	FindActive(ctx context.Context, requestID, memberID uuid.UUID) (*model.ApproverDesignation, error)
	CountActive(ctx context.Context, requestID uuid.UUID) (int64, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type approverRepository struct {
	db *gorm.DB
}

func NewApproverRepository(db *gorm.DB) ApproverRepository {
	return &approverRepository{db: db}
}

func (r *approverRepository) CreateBatch(ctx context.Context, designations []model.ApproverDesignation) error {
	return GetDB(ctx, r.db).Create(&designations).Error
}

func (r *approverRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ApproverDesignation, error) {
	var designation model.ApproverDesignation
	if err := GetDB(ctx, r.db).First(&designation, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrDesignationNotFound
		}
		return nil, err
	}
	return &designation, nil
}

func (r *approverRepository) ActiveByRequest(ctx context.Context, requestID uuid.UUID) ([]model.ApproverDesignation, error) {
	var designations []model.ApproverDesignation
	if err := GetDB(ctx, r.db).Where("request_id = ?", requestID).Find(&designations).Error; err != nil {
		return nil, err
	}
	return designations, nil
}

func (r *approverRepository) FindActive(ctx context.Context, requestID, memberID uuid.UUID) (*model.ApproverDesignation, error) {
	var designation model.ApproverDesignation
	err := GetDB(ctx, r.db).
		First(&designation, "request_id = ? AND member_id = ?", requestID, memberID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrDesignationNotFound
		}
		return nil, err
	}
	return &designation, nil
}

func (r *approverRepository) CountActive(ctx context.Context, requestID uuid.UUID) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.ApproverDesignation{}).
		Where("request_id = ?", requestID).
		Count(&count).Error
	return count, err
}

func (r *approverRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.ApproverDesignation{}).Error
}
