package leave

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kola-hr/kola/internal/hrapi"
	"github.com/kola-hr/kola/internal/shared"
)

type stubAPI struct {
	requests []hrapi.LeaveRequest
	decided  []hrapi.LeaveDecision
}

func (s *stubAPI) ListLeaveRequests(context.Context) ([]hrapi.LeaveRequest, error) {
	return s.requests, nil
}

func (s *stubAPI) DecideLeaveRequest(_ context.Context, id string, d hrapi.LeaveDecision) (*hrapi.LeaveRequest, error) {
	s.decided = append(s.decided, d)
	return &hrapi.LeaveRequest{ID: id, Status: d.Status}, nil
}

func TestNormalizeFilter(t *testing.T) {
	assert.Equal(t, FilterAll, NormalizeFilter(""))
	assert.Equal(t, hrapi.LeavePending, NormalizeFilter(" Pending "))
	assert.Equal(t, FilterAll, NormalizeFilter("cancelled"))
}

func TestLoadCountsPendingAcrossFilters(t *testing.T) {
	api := &stubAPI{requests: []hrapi.LeaveRequest{
		{ID: "1", Status: hrapi.LeavePending},
		{ID: "2", Status: hrapi.LeaveApproved},
		{ID: "3", Status: hrapi.LeavePending},
	}}
	q, err := Load(context.Background(), api, hrapi.LeaveApproved)
	require.NoError(t, err)
	assert.Len(t, q.Requests, 1)
	assert.Equal(t, 2, q.Pending)

	n, err := PendingCount(context.Background(), api)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestDecideRejectsUnknownStatus(t *testing.T) {
	api := &stubAPI{}
	_, err := Decide(context.Background(), api, "1", hrapi.LeavePending)
	assert.True(t, errors.Is(err, shared.ErrValidation))
	_, err = Decide(context.Background(), api, " ", hrapi.LeaveApproved)
	assert.True(t, errors.Is(err, shared.ErrValidation))
	assert.Empty(t, api.decided)

	got, err := Decide(context.Background(), api, "1", hrapi.LeaveApproved)
	require.NoError(t, err)
	assert.Equal(t, hrapi.LeaveApproved, got.Status)
}
