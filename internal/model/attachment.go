package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Attachment owner types — the entities files and links can hang off
const (
	OwnerTypeRequest  = "request"
	OwnerTypeResponse = "response"
)

// Attachment kind enum constants
const (
	AttachmentKindFile = "FILE"
	AttachmentKindLink = "LINK"
)

// Attachment is a file or link attached to an owning entity, dispatched by an
// owner-type string instead of one subtype table per attachable entity.
// Files carry a display name, links carry a description.
type Attachment struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerType   string         `gorm:"type:varchar(30);not null;index:idx_attachment_owner" json:"owner_type"`
	OwnerID     uuid.UUID      `gorm:"type:uuid;not null;index:idx_attachment_owner" json:"owner_id"`
	Kind        string         `gorm:"type:varchar(10);not null" json:"kind"` // FILE or LINK
	URL         string         `gorm:"type:text;not null" json:"url"`
	Name        string         `gorm:"type:varchar(255)" json:"name,omitempty"`
	Description string         `gorm:"type:text" json:"description,omitempty"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (a *Attachment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
