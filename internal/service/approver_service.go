package service

import (
	"context"
	"errors"

	"backend/internal/apperr"
	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
)

// --- DTOs ---

type AssignApproversDTO struct {
	MemberIDs []string `json:"member_ids" binding:"required"`
}

// --- Interface ---

// ApproverService is the approver registry: it manages which members are
// authorized to respond to a request.
type ApproverService interface {
	AssignApprovers(ctx context.Context, actorID, requestID uuid.UUID, req AssignApproversDTO) ([]ApproverView, error)
	RemoveApprover(ctx context.Context, actorID, designationID uuid.UUID) error
}

type approverService struct {
	requests  repository.RequestRepository
	approvers repository.ApproverRepository
	members   repository.MemberRepository
	responses repository.ResponseRepository
	audit     AuditService
	txm       repository.TransactionManager
	sink      EventSink
}

func NewApproverService(
	requests repository.RequestRepository,
	approvers repository.ApproverRepository,
	members repository.MemberRepository,
	responses repository.ResponseRepository,
	audit AuditService,
	txm repository.TransactionManager,
	sink EventSink,
) ApproverService {
	return &approverService{
		requests:  requests,
		approvers: approvers,
		members:   members,
		responses: responses,
		audit:     audit,
		txm:       txm,
		sink:      sink,
	}
}

// --- Implementation ---

func (s *approverService) AssignApprovers(ctx context.Context, actorID, requestID uuid.UUID, req AssignApproversDTO) ([]ApproverView, error) {
	memberIDs, err := parseApproverIDs(req.MemberIDs)
	if err != nil {
		return nil, err
	}

	var created []model.ApproverDesignation
	err = s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		request, findErr := s.requests.GetByID(txCtx, requestID)
		if findErr != nil {
			return findErr
		}
		// Assigning to a decided request would silently reopen it; a closed
		// request only reopens through retraction.
		if request.Closed() {
			return apperr.ErrRequestClosed
		}

		members, resolveErr := s.members.GetActiveByIDs(txCtx, memberIDs)
		if resolveErr != nil {
			return resolveErr
		}

		for _, memberID := range memberIDs {
			_, dupErr := s.approvers.FindActive(txCtx, requestID, memberID)
			if dupErr == nil {
				return apperr.ErrDuplicateApprover
			}
			if !errors.Is(dupErr, apperr.ErrDesignationNotFound) {
				return dupErr
			}
		}

		memberByID := make(map[uuid.UUID]*model.Member, len(members))
		for i := range members {
			memberByID[members[i].ID] = &members[i]
		}

		created = make([]model.ApproverDesignation, 0, len(memberIDs))
		for _, memberID := range memberIDs {
			created = append(created, model.ApproverDesignation{
				RequestID: requestID,
				MemberID:  memberID,
			})
			created[len(created)-1].Member = memberByID[memberID]
		}
		if createErr := s.approvers.CreateBatch(txCtx, created); createErr != nil {
			return createErr
		}

		assigned := make([]string, 0, len(memberIDs))
		for _, memberID := range memberIDs {
			assigned = append(assigned, memberID.String())
		}
		return s.audit.Record(txCtx, &actorID, model.ActionAssignApprovers, requestID.String(), request.Title,
			nil, map[string]interface{}{"member_ids": assigned})
	})
	if err != nil {
		return nil, err
	}

	views := make([]ApproverView, 0, len(created))
	for i := range created {
		d := &created[i]
		view := ApproverView{
			DesignationID: d.ID.String(),
			MemberID:      d.MemberID.String(),
		}
		if d.Member != nil {
			view.Username = d.Member.Username
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *approverService) RemoveApprover(ctx context.Context, actorID, designationID uuid.UUID) error {
	var requestID uuid.UUID
	var newStatus string

	err := s.txm.RunInTxRetry(ctx, func(txCtx context.Context) error {
		designation, findErr := s.approvers.GetByID(txCtx, designationID)
		if findErr != nil {
			return findErr
		}
		requestID = designation.RequestID

		request, reqErr := s.requests.GetByID(txCtx, requestID)
		if reqErr != nil {
			return reqErr
		}

		if !request.Closed() {
			active, countErr := s.approvers.CountActive(txCtx, requestID)
			if countErr != nil {
				return countErr
			}
			if active <= 1 {
				return apperr.ErrApproverSetEmpty
			}
		}

		if delErr := s.approvers.SoftDelete(txCtx, designationID); delErr != nil {
			return delErr
		}

		// Removing the last approver who had not yet responded can complete
		// the request, so status is recomputed from the remaining live rows.
		computed, computeErr := s.recomputeStatus(txCtx, requestID)
		if computeErr != nil {
			return computeErr
		}
		if computed != request.Status {
			if casErr := s.requests.UpdateStatusCAS(txCtx, requestID, request.Version, computed); casErr != nil {
				return casErr
			}
		}
		newStatus = computed

		return s.audit.Record(txCtx, &actorID, model.ActionRemoveApprover, requestID.String(), request.Title,
			map[string]interface{}{"member_id": designation.MemberID.String(), "status": request.Status},
			map[string]interface{}{"status": newStatus})
	})
	if err != nil {
		return err
	}

	if newStatus == model.StatusApproved {
		s.sink.Publish(Event{
			Type:      EventRequestApproved,
			RequestID: requestID.String(),
			ActorID:   actorID.String(),
			Payload:   map[string]interface{}{"status": newStatus},
		})
	}
	return nil
}

// recomputeStatus reloads the live rows and derives the status fresh
func (s *approverService) recomputeStatus(ctx context.Context, requestID uuid.UUID) (string, error) {
	designations, err := s.approvers.ActiveByRequest(ctx, requestID)
	if err != nil {
		return "", err
	}
	responses, err := s.responses.ActiveByRequest(ctx, requestID)
	if err != nil {
		return "", err
	}
	return deriveStatus(designations, responses), nil
}
