package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/placement-api/internal/models"
	appErrors "github.com/noah-isme/placement-api/pkg/errors"
)

func TestInitialStatusDependsOnAuthority(t *testing.T) {
	var sm InterviewStateMachine

	status, err := sm.InitialStatus(models.RoleCoordinator)
	require.NoError(t, err)
	assert.Equal(t, models.InterviewStatusApproved, status)

	status, err = sm.InitialStatus(models.RoleRecruiter)
	require.NoError(t, err)
	assert.Equal(t, models.InterviewStatusPending, status)

	_, err = sm.InitialStatus(models.RoleStudent)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
}

func TestApproveTransitions(t *testing.T) {
	var sm InterviewStateMachine

	next, err := sm.Approve(models.InterviewStatusPending, models.RoleCoordinator)
	require.NoError(t, err)
	assert.Equal(t, models.InterviewStatusApproved, next)

	for _, current := range []models.InterviewStatus{models.InterviewStatusApproved, models.InterviewStatusRejected} {
		_, err := sm.Approve(current, models.RoleCoordinator)
		assert.True(t, errors.Is(err, appErrors.ErrInvalidState), string(current))
	}

	_, err = sm.Approve(models.InterviewStatusPending, models.RoleRecruiter)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
}

func TestRejectTransitions(t *testing.T) {
	var sm InterviewStateMachine

	next, err := sm.Reject(models.InterviewStatusPending, models.RoleCoordinator)
	require.NoError(t, err)
	assert.Equal(t, models.InterviewStatusRejected, next)

	next, err = sm.Reject(models.InterviewStatusApproved, models.RoleCoordinator)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidState))
	assert.Equal(t, models.InterviewStatusApproved, next)

	_, err = sm.Reject(models.InterviewStatusPending, models.RoleStudent)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
}
