package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ApprovalRequest status enum constants
const (
	StatusPending   = "PENDING"   // created, no responses yet
	StatusApproving = "APPROVING" // at least one approval, not everyone yet
	StatusApproved  = "APPROVED"  // every active approver approved
	StatusRejected  = "REJECTED"  // at least one active rejection (veto)
)

// ApprovalRequest is the request aggregate. Status is owned by the response
// ledger: it is recomputed from the live designation/response rows on every
// mutation, never cached incrementally. ParentRequestID links a resubmission
// to the request it replaces; the chain is fixed at creation time.
type ApprovalRequest struct {
	ID              uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	Title           string           `gorm:"type:varchar(255);not null" json:"title"`
	Content         string           `gorm:"type:text" json:"content"`
	Status          string           `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	OwnerID         uuid.UUID        `gorm:"type:uuid;not null;index" json:"owner_id"`
	Owner           *Member          `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	LocationID      uuid.UUID        `gorm:"type:uuid;not null;index" json:"location_id"` // stage or task the request lives under
	ParentRequestID *uuid.UUID       `gorm:"type:uuid;index" json:"parent_request_id"`
	Parent          *ApprovalRequest `gorm:"foreignKey:ParentRequestID" json:"parent,omitempty"`

	// Version is the optimistic lock for concurrent status recomputation.
	// Status writes are compare-and-swap on (id, version).
	Version int64 `gorm:"not null;default:0" json:"-"`

	Approvers []ApproverDesignation `gorm:"foreignKey:RequestID" json:"approvers,omitempty"`
	Responses []ApprovalResponse    `gorm:"foreignKey:RequestID" json:"responses,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (r *ApprovalRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Closed reports whether the request reached a terminal status. A terminal
// status can still be reopened by retracting the response that produced it.
func (r *ApprovalRequest) Closed() bool {
	return r.Status == StatusApproved || r.Status == StatusRejected
}
