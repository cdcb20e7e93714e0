package service

import (
	"backend/internal/model"

	"github.com/google/uuid"
)

// deriveStatus computes the request status from the live non-deleted rows.
// Any active REJECT is a veto. APPROVED requires every active approver to
// hold an active APPROVE (and at least one approver to exist). Otherwise the
// request is APPROVING once any APPROVE exists, PENDING before that.
func deriveStatus(designations []model.ApproverDesignation, responses []model.ApprovalResponse) string {
	approvedBy := make(map[uuid.UUID]bool)
	approveCount := 0
	for _, resp := range responses {
		switch resp.Decision {
		case model.DecisionReject:
			return model.StatusRejected
		case model.DecisionApprove:
			approvedBy[resp.MemberID] = true
			approveCount++
		}
	}

	if len(designations) > 0 {
		covered := true
		for _, d := range designations {
			if !approvedBy[d.MemberID] {
				covered = false
				break
			}
		}
		if covered {
			return model.StatusApproved
		}
	}

	if approveCount > 0 {
		return model.StatusApproving
	}
	return model.StatusPending
}
