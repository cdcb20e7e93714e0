package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ActionCreateRequest    = "CREATE_REQUEST"
	ActionCreateReRequest  = "CREATE_RE_REQUEST"
	ActionUpdateRequest    = "UPDATE_REQUEST"
	ActionDeleteRequest    = "DELETE_REQUEST"
	ActionApproveRequest   = "APPROVE_REQUEST"
	ActionRejectRequest    = "REJECT_REQUEST"
	ActionRetractResponse  = "RETRACT_RESPONSE"
	ActionAssignApprovers  = "ASSIGN_APPROVERS"
	ActionRemoveApprover   = "REMOVE_APPROVER"
	ActionCreateStage      = "CREATE_STAGE"
	ActionMoveStage        = "MOVE_STAGE"
	ActionCreateTask       = "CREATE_TASK"
	ActionMoveTask         = "MOVE_TASK"
)

// AuditLog tracks Who, What, and When for critical system changes.
// Details carries an explicit {"before": ..., "after": ...} pair supplied at
// the call site — there is no ambient per-request change tracking.
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	MemberID   *uuid.UUID `gorm:"type:uuid;index" json:"member_id"`
	Member     *Member    `gorm:"foreignKey:MemberID" json:"member,omitempty"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Details    string     `gorm:"type:jsonb" json:"details"` // Serialized before/after payload
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
