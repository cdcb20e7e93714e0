package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Response decision enum constants
const (
	DecisionApprove = "APPROVE"
	DecisionReject  = "REJECT"
)

// ApprovalResponse records one approver's decision on a request. The decision
// is immutable once written; changing one's mind means retracting (soft
// delete) and responding again. A retraction retriggers status recomputation.
type ApprovalResponse struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	RequestID uuid.UUID      `gorm:"type:uuid;not null;index" json:"request_id"`
	MemberID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"member_id"`
	Member    *Member        `gorm:"foreignKey:MemberID" json:"member,omitempty"`
	Decision  string         `gorm:"type:varchar(10);not null" json:"decision"` // APPROVE or REJECT
	Comment   string         `gorm:"type:text" json:"comment"`
	CreatedAt time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (r *ApprovalResponse) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// ApproverDesignation marks a member as required to respond to a request.
// Created at request creation or resubmission; soft-deletable.
type ApproverDesignation struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	RequestID uuid.UUID      `gorm:"type:uuid;not null;index" json:"request_id"`
	MemberID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"member_id"`
	Member    *Member        `gorm:"foreignKey:MemberID" json:"member,omitempty"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (d *ApproverDesignation) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
