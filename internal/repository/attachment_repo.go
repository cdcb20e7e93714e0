package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AttachmentRepository defines data access for the shared attachment table
type AttachmentRepository interface {
	CreateBatch(ctx context.Context, attachments []model.Attachment) error
	ListByOwner(ctx context.Context, ownerType string, ownerID uuid.UUID) ([]model.Attachment, error)
}

type attachmentRepository struct {
	db *gorm.DB
}

func NewAttachmentRepository(db *gorm.DB) AttachmentRepository {
	return &attachmentRepository{db: db}
}

func (r *attachmentRepository) CreateBatch(ctx context.Context, attachments []model.Attachment) error {
	if len(attachments) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).Create(&attachments).Error
}

func (r *attachmentRepository) ListByOwner(ctx context.Context, ownerType string, ownerID uuid.UUID) ([]model.Attachment, error) {
	var attachments []model.Attachment
	err := GetDB(ctx, r.db).
		Where("owner_type = ? AND owner_id = ?", ownerType, ownerID).
		Order("created_at ASC").
		Find(&attachments).Error
	if err != nil {
		return nil, err
	}
	return attachments, nil
}
