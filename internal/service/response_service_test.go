package service

import (
	"context"
	"testing"

	"backend/internal/apperr"
	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApproveProgression(t *testing.T) {
	e := newEnv(t)
	owner := e.seedMember(t, "owner", model.RoleMember)
	alice := e.seedMember(t, "alice", model.RoleMember)
	bob := e.seedMember(t, "bob", model.RoleMember)
	carol := e.seedMember(t, "carol", model.RoleMember)
	ctx := context.Background()

	view := e.seedRequest(t, owner, alice, bob, carol)
	id := uuid.MustParse(view.ID)

	// First approval: PENDING -> APPROVING
	_, err := e.responses.RecordApprove(ctx, alice.ID, id, RecordResponseDTO{Comment: "fine by me"})
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproving, e.requestStatus(t, view.ID))

	// Second approval: still APPROVING, one approver outstanding
	_, err = e.responses.RecordApprove(ctx, bob.ID, id, RecordResponseDTO{})
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproving, e.requestStatus(t, view.ID))

	// Last approval completes the request
	_, err = e.responses.RecordApprove(ctx, carol.ID, id, RecordResponseDTO{})
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, e.requestStatus(t, view.ID))
}

func TestRejectIsVeto(t *testing.T) {
	e := newEnv(t)
	owner := e.seedMember(t, "owner", model.RoleMember)
	alice := e.seedMember(t, "alice", model.RoleMember)
	bob := e.seedMember(t, "bob", model.RoleMember)
	carol := e.seedMember(t, "carol", model.RoleMember)
	ctx := context.Background()

	view := e.seedRequest(t, owner, alice, bob, carol)
	id := uuid.MustParse(view.ID)

	_, err := e.responses.RecordApprove(ctx, alice.ID, id, RecordResponseDTO{})
	require.NoError(t, err)

	// One rejection closes the request regardless of pending approvers
	_, err = e.responses.RecordReject(ctx, bob.ID, id, RecordResponseDTO{Comment: "budget freeze"})
	require.NoError(t, err)
	assert.Equal(t, model.StatusRejected, e.requestStatus(t, view.ID))

	// The remaining approver can no longer respond
	_, err = e.responses.RecordApprove(ctx, carol.ID, id, RecordResponseDTO{})
	assert.ErrorIs(t, err, apperr.ErrRequestClosed)
}

func TestRespondRequiresDesignation(t *testing.T) {
	e := newEnv(t)
	owner := e.seedMember(t, "owner", model.RoleMember)
	alice := e.seedMember(t, "alice", model.RoleMember)
	outsider := e.seedMember(t, "outsider", model.RoleMember)

	view := e.seedRequest(t, owner, alice)

	_, err := e.responses.RecordApprove(context.Background(), outsider.ID, uuid.MustParse(view.ID), RecordResponseDTO{})
	assert.ErrorIs(t, err, apperr.ErrNotAnApprover)
}

func TestRespondOncePerApprover(t *testing.T) {
	e := newEnv(t)
	owner := e.seedMember(t, "owner", model.RoleMember)
	alice := e.seedMember(t, "alice", model.RoleMember)
	bob := e.seedMember(t, "bob", model.RoleMember)
	ctx := context.Background()

	view := e.seedRequest(t, owner, alice, bob)
	id := uuid.MustParse(view.ID)

	_, err := e.responses.RecordApprove(ctx, alice.ID, id, RecordResponseDTO{})
	require.NoError(t, err)

	_, err = e.responses.RecordApprove(ctx, alice.ID, id, RecordResponseDTO{})
	assert.ErrorIs(t, err, apperr.ErrAlreadyResponded)

	// Switching the decision is also blocked while the first response lives
	_, err = e.responses.RecordReject(ctx, alice.ID, id, RecordResponseDTO{})
	assert.ErrorIs(t, err, apperr.ErrAlreadyResponded)
}

func TestRetractReopensRejectedRequest(t *testing.T) {
	e := newEnv(t)
	owner := e.seedMember(t, "owner", model.RoleMember)
	alice := e.seedMember(t, "alice", model.RoleMember)
	bob := e.seedMember(t, "bob", model.RoleMember)
	ctx := context.Background()

	view := e.seedRequest(t, owner, alice, bob)
	id := uuid.MustParse(view.ID)

	_, err := e.responses.RecordApprove(ctx, alice.ID, id, RecordResponseDTO{})
	require.NoError(t, err)
	rejection, err := e.responses.RecordReject(ctx, bob.ID, id, RecordResponseDTO{})
	require.NoError(t, err)
	require.Equal(t, model.StatusRejected, e.requestStatus(t, view.ID))

	// Retracting the sole rejection falls back to the surviving approvals
	_, err = e.responses.RetractResponse(ctx, bob.ID, uuid.MustParse(rejection.ID))
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproving, e.requestStatus(t, view.ID))
}

func TestRetractReopensApprovedRequest(t *testing.T) {
	e := newEnv(t)
	owner := e.seedMember(t, "owner", model.RoleMember)
	alice := e.seedMember(t, "alice", model.RoleMember)
	ctx := context.Background()

	view := e.seedRequest(t, owner, alice)
	id := uuid.MustParse(view.ID)

	approval, err := e.responses.RecordApprove(ctx, alice.ID, id, RecordResponseDTO{})
	require.NoError(t, err)
	require.Equal(t, model.StatusApproved, e.requestStatus(t, view.ID))

	_, err = e.responses.RetractResponse(ctx, alice.ID, uuid.MustParse(approval.ID))
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, e.requestStatus(t, view.ID))

	// And the approver can respond again afterwards
	_, err = e.responses.RecordReject(ctx, alice.ID, id, RecordResponseDTO{})
	require.NoError(t, err)
	assert.Equal(t, model.StatusRejected, e.requestStatus(t, view.ID))
}

func TestRetractAuthorOrAdminOnly(t *testing.T) {
	e := newEnv(t)
	owner := e.seedMember(t, "owner", model.RoleMember)
	alice := e.seedMember(t, "alice", model.RoleMember)
	bob := e.seedMember(t, "bob", model.RoleMember)
	admin := e.seedMember(t, "root", model.RoleAdmin)
	ctx := context.Background()

	view := e.seedRequest(t, owner, alice, bob)
	approval, err := e.responses.RecordApprove(ctx, alice.ID, uuid.MustParse(view.ID), RecordResponseDTO{})
	require.NoError(t, err)
	responseID := uuid.MustParse(approval.ID)

	// A fellow approver cannot retract someone else's response
	_, err = e.responses.RetractResponse(ctx, bob.ID, responseID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	// An admin can
	_, err = e.responses.RetractResponse(ctx, admin.ID, responseID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, e.requestStatus(t, view.ID))
}

func TestRetractUnknownResponse(t *testing.T) {
	e := newEnv(t)
	alice := e.seedMember(t, "alice", model.RoleMember)

	_, err := e.responses.RetractResponse(context.Background(), alice.ID, uuid.New())
	assert.ErrorIs(t, err, apperr.ErrResponseNotFound)
}

func TestListResponsesSkipsRetracted(t *testing.T) {
	e := newEnv(t)
	owner := e.seedMember(t, "owner", model.RoleMember)
	alice := e.seedMember(t, "alice", model.RoleMember)
	bob := e.seedMember(t, "bob", model.RoleMember)
	ctx := context.Background()

	view := e.seedRequest(t, owner, alice, bob)
	id := uuid.MustParse(view.ID)

	approval, err := e.responses.RecordApprove(ctx, alice.ID, id, RecordResponseDTO{Comment: "ok"})
	require.NoError(t, err)
	_, err = e.responses.RecordApprove(ctx, bob.ID, id, RecordResponseDTO{})
	require.NoError(t, err)

	_, err = e.responses.RetractResponse(ctx, alice.ID, uuid.MustParse(approval.ID))
	require.NoError(t, err)

	responses, err := e.responses.ListResponses(ctx, id)
	require.NoError(t, err)
	require.Len(t, responses, 1)
	assert.Equal(t, bob.ID.String(), responses[0].MemberID)
}

func TestDeriveStatus(t *testing.T) {
	alice, bob := uuid.New(), uuid.New()
	des := func(ids ...uuid.UUID) []model.ApproverDesignation {
		out := make([]model.ApproverDesignation, 0, len(ids))
		for _, id := range ids {
			out = append(out, model.ApproverDesignation{MemberID: id})
		}
		return out
	}
	resp := func(member uuid.UUID, decision string) model.ApprovalResponse {
		return model.ApprovalResponse{MemberID: member, Decision: decision}
	}

	tests := []struct {
		name         string
		designations []model.ApproverDesignation
		responses    []model.ApprovalResponse
		want         string
	}{
		{"no responses", des(alice, bob), nil, model.StatusPending},
		{"partial approval", des(alice, bob), []model.ApprovalResponse{resp(alice, model.DecisionApprove)}, model.StatusApproving},
		{"full approval", des(alice, bob), []model.ApprovalResponse{resp(alice, model.DecisionApprove), resp(bob, model.DecisionApprove)}, model.StatusApproved},
		{"reject wins over approvals", des(alice, bob), []model.ApprovalResponse{resp(alice, model.DecisionApprove), resp(bob, model.DecisionReject)}, model.StatusRejected},
		{"no approvers stays pending", nil, nil, model.StatusPending},
		{"orphan approval after approver removed", des(bob), []model.ApprovalResponse{resp(alice, model.DecisionApprove)}, model.StatusApproving},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, deriveStatus(tt.designations, tt.responses))
		})
	}
}
