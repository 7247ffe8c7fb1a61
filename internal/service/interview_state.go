package service

import (
	"github.com/noah-isme/placement-api/internal/models"
	appErrors "github.com/noah-isme/placement-api/pkg/errors"
)

// InterviewStateMachine holds the legal interview status transitions.
//
//	PENDING --approve--> APPROVED
//	PENDING --reject---> REJECTED
//
// APPROVED and REJECTED are terminal.
type InterviewStateMachine struct{}

// InitialStatus picks the status a newly scheduled interview starts in.
func (InterviewStateMachine) InitialStatus(role models.UserRole) (models.InterviewStatus, error) {
	switch role {
	case models.RoleCoordinator:
		return models.InterviewStatusApproved, nil
	case models.RoleRecruiter:
		return models.InterviewStatusPending, nil
	default:
		return "", appErrors.Clone(appErrors.ErrForbidden, "only recruiters and coordinators can schedule interviews")
	}
}

// Approve returns the status after a coordinator approves an interview in current.
func (m InterviewStateMachine) Approve(current models.InterviewStatus, role models.UserRole) (models.InterviewStatus, error) {
	if err := m.decide(current, role, "approve"); err != nil {
		return current, err
	}
	return models.InterviewStatusApproved, nil
}

// Reject returns the status after a coordinator rejects an interview in current.
// No API operation drives this transition yet.
func (m InterviewStateMachine) Reject(current models.InterviewStatus, role models.UserRole) (models.InterviewStatus, error) {
	if err := m.decide(current, role, "reject"); err != nil {
		return current, err
	}
	return models.InterviewStatusRejected, nil
}

func (InterviewStateMachine) decide(current models.InterviewStatus, role models.UserRole, action string) error {
	if role != models.RoleCoordinator {
		return appErrors.Clone(appErrors.ErrForbidden, "only coordinators can "+action+" interviews")
	}
	if current != models.InterviewStatusPending {
		return appErrors.Clone(appErrors.ErrInvalidState, "cannot "+action+" an interview that is "+string(current))
	}
	return nil
}
