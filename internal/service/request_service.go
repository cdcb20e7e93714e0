package service

import (
	"context"
	"time"

	"backend/internal/apperr"
	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
)

// --- DTOs ---

type CreateRequestDTO struct {
	Title       string            `json:"title" binding:"required"`
	Content     string            `json:"content"`
	LocationID  string            `json:"location_id" binding:"required"`
	ApproverIDs []string          `json:"approver_ids" binding:"required"`
	Attachments []AttachmentInput `json:"attachments"`
}

// CreateReRequestDTO resubmits after a rejection. The new request inherits
// the parent's location and gets a fresh, independent approver set.
type CreateReRequestDTO struct {
	Title       string            `json:"title" binding:"required"`
	Content     string            `json:"content"`
	ApproverIDs []string          `json:"approver_ids" binding:"required"`
	Attachments []AttachmentInput `json:"attachments"`
}

type UpdateRequestDTO struct {
	Title       *string           `json:"title"`
	Content     *string           `json:"content"`
	Attachments []AttachmentInput `json:"attachments"`
}

type ListRequestsFilter struct {
	Status     string
	LocationID string
	Keyword    string
	Page       int
	Limit      int
}

type ApproverView struct {
	DesignationID string `json:"designation_id"`
	MemberID      string `json:"member_id"`
	Username      string `json:"username"`
}

type RequestView struct {
	ID              string             `json:"id"`
	Title           string             `json:"title"`
	Content         string             `json:"content"`
	Status          string             `json:"status"`
	OwnerID         string             `json:"owner_id"`
	OwnerName       string             `json:"owner_name,omitempty"`
	LocationID      string             `json:"location_id"`
	ParentRequestID *string            `json:"parent_request_id,omitempty"`
	Approvers       []ApproverView     `json:"approvers,omitempty"`
	Responses       []ResponseView     `json:"responses,omitempty"`
	Attachments     []model.Attachment `json:"attachments,omitempty"`
	CreatedAt       string             `json:"created_at"`
}

// --- Interface ---

// RequestService owns the approval request aggregate: creation, resubmission
// lineage, update and soft deletion. Status itself is mutated only by the
// response ledger.
type RequestService interface {
	CreateRequest(ctx context.Context, ownerID uuid.UUID, req CreateRequestDTO) (*RequestView, error)
	CreateReRequest(ctx context.Context, ownerID, originalID uuid.UUID, req CreateReRequestDTO) (*RequestView, error)
	UpdateRequest(ctx context.Context, actorID, id uuid.UUID, req UpdateRequestDTO) (*RequestView, error)
	DeleteRequest(ctx context.Context, actorID, id uuid.UUID) error
	GetRequest(ctx context.Context, id uuid.UUID) (*RequestView, error)
	ListRequests(ctx context.Context, memberID uuid.UUID, filter ListRequestsFilter) ([]RequestView, int64, error)
}

type requestService struct {
	requests    repository.RequestRepository
	approvers   repository.ApproverRepository
	members     repository.MemberRepository
	attachments AttachmentService
	audit       AuditService
	txm         repository.TransactionManager
	sink        EventSink
}

func NewRequestService(
	requests repository.RequestRepository,
	approvers repository.ApproverRepository,
	members repository.MemberRepository,
	attachments AttachmentService,
	audit AuditService,
	txm repository.TransactionManager,
	sink EventSink,
) RequestService {
	return &requestService{
		requests:    requests,
		approvers:   approvers,
		members:     members,
		attachments: attachments,
		audit:       audit,
		txm:         txm,
		sink:        sink,
	}
}

// --- Implementation ---

// parseApproverIDs validates, parses and dedupes the requested approver set
func parseApproverIDs(ids []string) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, apperr.ErrEmptyApproverList
	}
	seen := make(map[uuid.UUID]bool, len(ids))
	parsed := make([]uuid.UUID, 0, len(ids))
	for _, raw := range ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, apperr.New(apperr.KindValidation, "INVALID_MEMBER_ID", "invalid approver id: "+raw)
		}
		if !seen[id] {
			seen[id] = true
			parsed = append(parsed, id)
		}
	}
	return parsed, nil
}

func (s *requestService) CreateRequest(ctx context.Context, ownerID uuid.UUID, req CreateRequestDTO) (*RequestView, error) {
	locationID, err := uuid.Parse(req.LocationID)
	if err != nil {
		return nil, apperr.New(apperr.KindValidation, "INVALID_LOCATION_ID", "invalid location id")
	}

	approverIDs, err := parseApproverIDs(req.ApproverIDs)
	if err != nil {
		return nil, err
	}

	request := model.ApprovalRequest{
		Title:      req.Title,
		Content:    req.Content,
		Status:     model.StatusPending,
		OwnerID:    ownerID,
		LocationID: locationID,
	}

	err = s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		if _, resolveErr := s.members.GetActiveByIDs(txCtx, approverIDs); resolveErr != nil {
			return resolveErr
		}
		if createErr := s.requests.Create(txCtx, &request); createErr != nil {
			return createErr
		}
		if assignErr := s.createDesignations(txCtx, request.ID, approverIDs); assignErr != nil {
			return assignErr
		}
		if attachErr := s.attachments.Attach(txCtx, model.OwnerTypeRequest, request.ID, req.Attachments); attachErr != nil {
			return attachErr
		}
		return s.audit.Record(txCtx, &ownerID, model.ActionCreateRequest, request.ID.String(), request.Title,
			nil, map[string]interface{}{"title": request.Title, "status": request.Status})
	})
	if err != nil {
		return nil, err
	}

	s.sink.Publish(Event{
		Type:      EventRequestCreated,
		RequestID: request.ID.String(),
		ActorID:   ownerID.String(),
		Payload:   map[string]interface{}{"title": request.Title},
	})

	return s.GetRequest(ctx, request.ID)
}

func (s *requestService) CreateReRequest(ctx context.Context, ownerID, originalID uuid.UUID, req CreateReRequestDTO) (*RequestView, error) {
	approverIDs, err := parseApproverIDs(req.ApproverIDs)
	if err != nil {
		return nil, err
	}

	var request model.ApprovalRequest
	err = s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		parent, findErr := s.requests.GetByID(txCtx, originalID)
		if findErr != nil {
			return findErr
		}

		// TODO(product): decide whether resubmission should require the
		// parent to be REJECTED. Currently any non-deleted request can be
		// resubmitted.
		request = model.ApprovalRequest{
			Title:           req.Title,
			Content:         req.Content,
			Status:          model.StatusPending,
			OwnerID:         ownerID,
			LocationID:      parent.LocationID,
			ParentRequestID: &parent.ID,
		}

		if _, resolveErr := s.members.GetActiveByIDs(txCtx, approverIDs); resolveErr != nil {
			return resolveErr
		}
		if createErr := s.requests.Create(txCtx, &request); createErr != nil {
			return createErr
		}
		if assignErr := s.createDesignations(txCtx, request.ID, approverIDs); assignErr != nil {
			return assignErr
		}
		if attachErr := s.attachments.Attach(txCtx, model.OwnerTypeRequest, request.ID, req.Attachments); attachErr != nil {
			return attachErr
		}
		return s.audit.Record(txCtx, &ownerID, model.ActionCreateReRequest, request.ID.String(), request.Title,
			map[string]interface{}{"parent_request_id": parent.ID.String(), "parent_status": parent.Status},
			map[string]interface{}{"title": request.Title, "status": request.Status})
	})
	if err != nil {
		return nil, err
	}

	s.sink.Publish(Event{
		Type:      EventRequestResubmitted,
		RequestID: request.ID.String(),
		ActorID:   ownerID.String(),
		Payload:   map[string]interface{}{"parent_request_id": originalID.String()},
	})

	return s.GetRequest(ctx, request.ID)
}

func (s *requestService) createDesignations(ctx context.Context, requestID uuid.UUID, memberIDs []uuid.UUID) error {
	designations := make([]model.ApproverDesignation, 0, len(memberIDs))
	for _, memberID := range memberIDs {
		designations = append(designations, model.ApproverDesignation{
			RequestID: requestID,
			MemberID:  memberID,
		})
	}
	return s.approvers.CreateBatch(ctx, designations)
}

func (s *requestService) UpdateRequest(ctx context.Context, actorID, id uuid.UUID, req UpdateRequestDTO) (*RequestView, error) {
	err := s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		request, findErr := s.requests.GetByID(txCtx, id)
		if findErr != nil {
			return findErr
		}
		if request.OwnerID != actorID {
			return apperr.ErrForbidden
		}

		// TODO(product): decide whether editing an APPROVED/REJECTED request
		// should be blocked. Currently edits are allowed in any status.
		fields := make(map[string]interface{})
		before := make(map[string]interface{})
		if req.Title != nil && *req.Title != request.Title {
			before["title"] = request.Title
			fields["title"] = *req.Title
		}
		if req.Content != nil && *req.Content != request.Content {
			before["content"] = request.Content
			fields["content"] = *req.Content
		}

		if len(fields) > 0 {
			if updateErr := s.requests.UpdateFields(txCtx, id, fields); updateErr != nil {
				return updateErr
			}
		}
		if attachErr := s.attachments.Attach(txCtx, model.OwnerTypeRequest, id, req.Attachments); attachErr != nil {
			return attachErr
		}
		if len(fields) == 0 && len(req.Attachments) == 0 {
			return nil
		}
		return s.audit.Record(txCtx, &actorID, model.ActionUpdateRequest, id.String(), request.Title, before, fields)
	})
	if err != nil {
		return nil, err
	}

	return s.GetRequest(ctx, id)
}

func (s *requestService) DeleteRequest(ctx context.Context, actorID, id uuid.UUID) error {
	return s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		request, findErr := s.requests.GetByIDUnscoped(txCtx, id)
		if findErr != nil {
			return findErr
		}
		if request.DeletedAt.Valid {
			return apperr.ErrAlreadyDeleted
		}
		if request.OwnerID != actorID {
			return apperr.ErrForbidden
		}

		// Responses already recorded stay untouched; only the request row is
		// flagged.
		if delErr := s.requests.SoftDelete(txCtx, id); delErr != nil {
			return delErr
		}
		return s.audit.Record(txCtx, &actorID, model.ActionDeleteRequest, id.String(), request.Title,
			map[string]interface{}{"status": request.Status, "deleted": false},
			map[string]interface{}{"status": request.Status, "deleted": true})
	})
}

func (s *requestService) GetRequest(ctx context.Context, id uuid.UUID) (*RequestView, error) {
	request, err := s.requests.GetByIDWithRelations(ctx, id)
	if err != nil {
		return nil, err
	}

	attachments, err := s.attachments.ListFor(ctx, model.OwnerTypeRequest, id)
	if err != nil {
		return nil, err
	}

	view := mapRequestView(request)
	view.Attachments = attachments
	return view, nil
}

func (s *requestService) ListRequests(ctx context.Context, memberID uuid.UUID, filter ListRequestsFilter) ([]RequestView, int64, error) {
	repoFilter := repository.RequestFilter{
		Status:  filter.Status,
		Keyword: filter.Keyword,
		Page:    filter.Page,
		Limit:   filter.Limit,
	}
	if repoFilter.Page <= 0 {
		repoFilter.Page = 1
	}
	if repoFilter.Limit <= 0 {
		repoFilter.Limit = 20
	}
	if filter.LocationID != "" {
		locationID, err := uuid.Parse(filter.LocationID)
		if err != nil {
			return nil, 0, apperr.New(apperr.KindValidation, "INVALID_LOCATION_ID", "invalid location id")
		}
		repoFilter.LocationID = &locationID
	}

	requests, total, err := s.requests.ListForMember(ctx, memberID, repoFilter)
	if err != nil {
		return nil, 0, err
	}

	views := make([]RequestView, 0, len(requests))
	for i := range requests {
		views = append(views, *mapRequestView(&requests[i]))
	}
	return views, total, nil
}

// --- Helpers ---

func mapRequestView(r *model.ApprovalRequest) *RequestView {
	view := &RequestView{
		ID:         r.ID.String(),
		Title:      r.Title,
		Content:    r.Content,
		Status:     r.Status,
		OwnerID:    r.OwnerID.String(),
		LocationID: r.LocationID.String(),
		CreatedAt:  r.CreatedAt.Format(time.RFC3339),
	}
	if r.Owner != nil {
		view.OwnerName = r.Owner.Username
	}
	if r.ParentRequestID != nil {
		parentID := r.ParentRequestID.String()
		view.ParentRequestID = &parentID
	}
	for i := range r.Approvers {
		d := &r.Approvers[i]
		av := ApproverView{
			DesignationID: d.ID.String(),
			MemberID:      d.MemberID.String(),
		}
		if d.Member != nil {
			av.Username = d.Member.Username
		}
		view.Approvers = append(view.Approvers, av)
	}
	for i := range r.Responses {
		view.Responses = append(view.Responses, mapResponseView(&r.Responses[i]))
	}
	return view
}
