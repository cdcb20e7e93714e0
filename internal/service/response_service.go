package service

import (
	"context"
	"errors"
	"time"

	"backend/internal/apperr"
	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
)

// --- DTOs ---

type RecordResponseDTO struct {
	Comment     string            `json:"comment"`
	Attachments []AttachmentInput `json:"attachments"`
}

type ResponseView struct {
	ID        string `json:"id"`
	RequestID string `json:"request_id"`
	MemberID  string `json:"member_id"`
	Username  string `json:"username,omitempty"`
	Decision  string `json:"decision"`
	Comment   string `json:"comment"`
	CreatedAt string `json:"created_at"`
}

// --- Interface ---

// ResponseService is the response ledger: it records approver decisions,
// handles retractions and is the only writer of request status. Status is
// always recomputed from the full non-deleted designation/response set, never
// adjusted incrementally, so it stays correct under concurrent retractions.
type ResponseService interface {
	RecordApprove(ctx context.Context, approverID, requestID uuid.UUID, req RecordResponseDTO) (*ResponseView, error)
	RecordReject(ctx context.Context, approverID, requestID uuid.UUID, req RecordResponseDTO) (*ResponseView, error)
	RetractResponse(ctx context.Context, actorID, responseID uuid.UUID) (*ResponseView, error)
	ListResponses(ctx context.Context, requestID uuid.UUID) ([]ResponseView, error)
}

type responseService struct {
	requests    repository.RequestRepository
	responses   repository.ResponseRepository
	approvers   repository.ApproverRepository
	members     repository.MemberRepository
	attachments AttachmentService
	audit       AuditService
	txm         repository.TransactionManager
	sink        EventSink
}

func NewResponseService(
	requests repository.RequestRepository,
	responses repository.ResponseRepository,
	approvers repository.ApproverRepository,
	members repository.MemberRepository,
	attachments AttachmentService,
	audit AuditService,
	txm repository.TransactionManager,
	sink EventSink,
) ResponseService {
	return &responseService{
		requests:    requests,
		responses:   responses,
		approvers:   approvers,
		members:     members,
		attachments: attachments,
		audit:       audit,
		txm:         txm,
		sink:        sink,
	}
}

// --- Implementation ---

func (s *responseService) RecordApprove(ctx context.Context, approverID, requestID uuid.UUID, req RecordResponseDTO) (*ResponseView, error) {
	return s.record(ctx, approverID, requestID, model.DecisionApprove, req)
}

func (s *responseService) RecordReject(ctx context.Context, approverID, requestID uuid.UUID, req RecordResponseDTO) (*ResponseView, error) {
	return s.record(ctx, approverID, requestID, model.DecisionReject, req)
}

// record inserts a decision and recomputes the request status, all in one
// transaction guarded by the request's version. On a version conflict the
// whole transaction is rolled back and replayed.
func (s *responseService) record(ctx context.Context, approverID, requestID uuid.UUID, decision string, req RecordResponseDTO) (*ResponseView, error) {
	var response model.ApprovalResponse
	var oldStatus, newStatus string

	err := s.txm.RunInTxRetry(ctx, func(txCtx context.Context) error {
		request, findErr := s.requests.GetByID(txCtx, requestID)
		if findErr != nil {
			return findErr
		}
		if request.Closed() {
			return apperr.ErrRequestClosed
		}

		if _, desErr := s.approvers.FindActive(txCtx, requestID, approverID); desErr != nil {
			if errors.Is(desErr, apperr.ErrDesignationNotFound) {
				return apperr.ErrNotAnApprover
			}
			return desErr
		}

		responded, respErr := s.responses.HasActiveByMember(txCtx, requestID, approverID)
		if respErr != nil {
			return respErr
		}
		if responded {
			return apperr.ErrAlreadyResponded
		}

		response = model.ApprovalResponse{
			RequestID: requestID,
			MemberID:  approverID,
			Decision:  decision,
			Comment:   req.Comment,
		}
		if createErr := s.responses.Create(txCtx, &response); createErr != nil {
			return createErr
		}
		if attachErr := s.attachments.Attach(txCtx, model.OwnerTypeResponse, response.ID, req.Attachments); attachErr != nil {
			return attachErr
		}

		computed, computeErr := s.computeStatus(txCtx, requestID)
		if computeErr != nil {
			return computeErr
		}
		if casErr := s.requests.UpdateStatusCAS(txCtx, requestID, request.Version, computed); casErr != nil {
			return casErr
		}

		oldStatus, newStatus = request.Status, computed

		action := model.ActionApproveRequest
		if decision == model.DecisionReject {
			action = model.ActionRejectRequest
		}
		return s.audit.Record(txCtx, &approverID, action, requestID.String(), request.Title,
			map[string]interface{}{"status": oldStatus},
			map[string]interface{}{"status": newStatus, "decision": decision})
	})
	if err != nil {
		return nil, err
	}

	s.publishTransition(requestID, approverID, newStatus)

	view := mapResponseView(&response)
	return &view, nil
}

func (s *responseService) RetractResponse(ctx context.Context, actorID, responseID uuid.UUID) (*ResponseView, error) {
	var response *model.ApprovalResponse
	var newStatus string

	err := s.txm.RunInTxRetry(ctx, func(txCtx context.Context) error {
		found, findErr := s.responses.GetByID(txCtx, responseID)
		if findErr != nil {
			return findErr
		}
		response = found

		if response.MemberID != actorID {
			actor, memberErr := s.members.GetByID(txCtx, actorID)
			if memberErr != nil {
				return memberErr
			}
			if actor.Role != model.RoleAdmin {
				return apperr.ErrForbidden
			}
		}

		request, reqErr := s.requests.GetByID(txCtx, response.RequestID)
		if reqErr != nil {
			return reqErr
		}

		if delErr := s.responses.SoftDelete(txCtx, responseID); delErr != nil {
			return delErr
		}

		// A retraction can reopen a terminal state, so the recomputation has
		// to start from scratch: the sole REJECT going away falls back to
		// PENDING or APPROVING, the completing APPROVE going away falls back
		// to APPROVING.
		computed, computeErr := s.computeStatus(txCtx, request.ID)
		if computeErr != nil {
			return computeErr
		}
		if casErr := s.requests.UpdateStatusCAS(txCtx, request.ID, request.Version, computed); casErr != nil {
			return casErr
		}
		newStatus = computed

		return s.audit.Record(txCtx, &actorID, model.ActionRetractResponse, request.ID.String(), request.Title,
			map[string]interface{}{"status": request.Status, "decision": response.Decision},
			map[string]interface{}{"status": newStatus})
	})
	if err != nil {
		return nil, err
	}

	s.sink.Publish(Event{
		Type:      EventResponseRetracted,
		RequestID: response.RequestID.String(),
		ActorID:   actorID.String(),
		Payload:   map[string]interface{}{"status": newStatus},
	})

	view := mapResponseView(response)
	return &view, nil
}

func (s *responseService) ListResponses(ctx context.Context, requestID uuid.UUID) ([]ResponseView, error) {
	if _, err := s.requests.GetByID(ctx, requestID); err != nil {
		return nil, err
	}

	responses, err := s.responses.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	views := make([]ResponseView, 0, len(responses))
	for i := range responses {
		views = append(views, mapResponseView(&responses[i]))
	}
	return views, nil
}

// computeStatus reloads the live designation/response sets and derives the
// status fresh — never incrementally from the previous status.
func (s *responseService) computeStatus(ctx context.Context, requestID uuid.UUID) (string, error) {
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

func (s *responseService) publishTransition(requestID, actorID uuid.UUID, status string) {
	eventType := EventResponseRecorded
	switch status {
	case model.StatusApproved:
		eventType = EventRequestApproved
	case model.StatusRejected:
		eventType = EventRequestRejected
	}
	s.sink.Publish(Event{
		Type:      eventType,
		RequestID: requestID.String(),
		ActorID:   actorID.String(),
		Payload:   map[string]interface{}{"status": status},
	})
}

// --- Helpers ---

func mapResponseView(r *model.ApprovalResponse) ResponseView {
	view := ResponseView{
		ID:        r.ID.String(),
		RequestID: r.RequestID.String(),
		MemberID:  r.MemberID.String(),
		Decision:  r.Decision,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt.Format(time.RFC3339),
	}
	if r.Member != nil {
		view.Username = r.Member.Username
	}
	return view
}
