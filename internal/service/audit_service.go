package service

import (
	"context"
	"encoding/json"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
)

type AuditLogResponse struct {
	ID         string `json:"id"`
	MemberID   string `json:"member_id"`
	Username   string `json:"username"`
	Action     string `json:"action"`
	EntityID   string `json:"entity_id"`
	EntityName string `json:"entity_name"`
	Details    string `json:"details"`
	CreatedAt  string `json:"created_at"`
}

// AuditService writes and reads the audit trail. Record takes the before and
// after values explicitly at the call site — there is no ambient change
// tracking to consult.
type AuditService interface {
	Record(ctx context.Context, memberID *uuid.UUID, action, entityID, entityName string, before, after interface{}) error
	GetAuditLogs(ctx context.Context, page, limit int) ([]AuditLogResponse, int64, error)
}

type auditService struct {
	repo repository.AuditRepository
}

// NewAuditService creates a new AuditService instance
func NewAuditService(repo repository.AuditRepository) AuditService {
	return &auditService{repo: repo}
}

func (s *auditService) Record(ctx context.Context, memberID *uuid.UUID, action, entityID, entityName string, before, after interface{}) error {
	details, err := json.Marshal(map[string]interface{}{
		"before": before,
		"after":  after,
	})
	if err != nil {
		return err
	}

	entry := model.AuditLog{
		MemberID:   memberID,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    string(details),
	}
	return s.repo.Log(ctx, &entry)
}

// GetAuditLogs retrieves strictly paginated records with members pre-loaded
func (s *auditService) GetAuditLogs(ctx context.Context, page, limit int) ([]AuditLogResponse, int64, error) {
	logs, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		username := "System"
		memberID := ""
		if l.Member != nil {
			username = l.Member.Username
		}
		if l.MemberID != nil {
			memberID = l.MemberID.String()
		}

		res = append(res, AuditLogResponse{
			ID:         l.ID.String(),
			MemberID:   memberID,
			Username:   username,
			Action:     l.Action,
			EntityID:   l.EntityID,
			EntityName: l.EntityName,
			Details:    l.Details,
			CreatedAt:  l.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	return res, total, nil
}
