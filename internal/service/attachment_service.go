package service

import (
	"context"

	"backend/internal/apperr"
	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
)

// AttachmentInput carries one file or link to hang off an owning entity
type AttachmentInput struct {
	Kind        string `json:"kind" binding:"required,oneof=FILE LINK"`
	URL         string `json:"url" binding:"required"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// AttachmentValidator checks inputs for one owner type before insertion
type AttachmentValidator func(in AttachmentInput) error

// AttachmentService stores files and links against arbitrary owning entities,
// dispatched by owner-type string. One table, one validator per owner type —
// no subtype table per attachable entity.
type AttachmentService interface {
	Attach(ctx context.Context, ownerType string, ownerID uuid.UUID, items []AttachmentInput) error
	ListFor(ctx context.Context, ownerType string, ownerID uuid.UUID) ([]model.Attachment, error)
}

type attachmentService struct {
	repo       repository.AttachmentRepository
	validators map[string]AttachmentValidator
}

// NewAttachmentService returns a service with validators registered for the
// known owner types
func NewAttachmentService(repo repository.AttachmentRepository) AttachmentService {
	s := &attachmentService{
		repo:       repo,
		validators: make(map[string]AttachmentValidator),
	}
	s.validators[model.OwnerTypeRequest] = validateWorkflowAttachment
	s.validators[model.OwnerTypeResponse] = validateWorkflowAttachment
	return s
}

// validateWorkflowAttachment applies the shared rules for request and
// response attachments: files need a display name, links need a description.
func validateWorkflowAttachment(in AttachmentInput) error {
	if in.URL == "" {
		return apperr.New(apperr.KindValidation, "INVALID_ATTACHMENT", "attachment url is required")
	}
	switch in.Kind {
	case model.AttachmentKindFile:
		if in.Name == "" {
			return apperr.New(apperr.KindValidation, "INVALID_ATTACHMENT", "file attachment needs a name")
		}
	case model.AttachmentKindLink:
		if in.Description == "" {
			return apperr.New(apperr.KindValidation, "INVALID_ATTACHMENT", "link attachment needs a description")
		}
	default:
		return apperr.New(apperr.KindValidation, "INVALID_ATTACHMENT", "attachment kind must be FILE or LINK")
	}
	return nil
}

func (s *attachmentService) Attach(ctx context.Context, ownerType string, ownerID uuid.UUID, items []AttachmentInput) error {
	if len(items) == 0 {
		return nil
	}

	validate, ok := s.validators[ownerType]
	if !ok {
		return apperr.New(apperr.KindValidation, "UNKNOWN_OWNER_TYPE", "no attachment validator for owner type "+ownerType)
	}

	attachments := make([]model.Attachment, 0, len(items))
	for _, in := range items {
		if err := validate(in); err != nil {
			return err
		}
		attachments = append(attachments, model.Attachment{
			OwnerType:   ownerType,
			OwnerID:     ownerID,
			Kind:        in.Kind,
			URL:         in.URL,
			Name:        in.Name,
			Description: in.Description,
		})
	}

	return s.repo.CreateBatch(ctx, attachments)
}

func (s *attachmentService) ListFor(ctx context.Context, ownerType string, ownerID uuid.UUID) ([]model.Attachment, error) {
	if _, ok := s.validators[ownerType]; !ok {
		return nil, apperr.New(apperr.KindValidation, "UNKNOWN_OWNER_TYPE", "no attachment validator for owner type "+ownerType)
	}
	return s.repo.ListByOwner(ctx, ownerType, ownerID)
}
