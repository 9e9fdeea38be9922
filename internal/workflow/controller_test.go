package workflow

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/smart-review/smart-review-cli/api/services"
	"github.com/smart-review/smart-review-cli/api/transport"
	"github.com/smart-review/smart-review-cli/internal/apitest"
	"github.com/smart-review/smart-review-cli/internal/session"
	"github.com/smart-review/smart-review-cli/internal/signal"
	"github.com/smart-review/smart-review-cli/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var _ Scheduler = (*services.SchedulingService)(nil)

// againstServer returns a controller talking to a seeded fake API as Admin.
func againstServer(t *testing.T) (*Controller, *apitest.Server, *signal.Signal) {
	t.Helper()
	server := apitest.NewSeededServer()
	t.Cleanup(server.Close)

	store := session.NewStore(session.NewMemoryStorage(), nil)
	require.NoError(t, store.SetSession(server.IssueToken(apitest.Admin), apitest.Admin))
	svc := services.New(transport.New(server.URL, 5*time.Second, store, signal.New("session-invalidated")), store)

	sessionsChanged := signal.New("sessions-changed")
	return NewController(svc.Scheduling, sessionsChanged, nil), server, sessionsChanged
}

func TestScenario_FailedRunIsKept(t *testing.T) {
	c, server, _ := againstServer(t)
	server.SetResult(5, apitest.FailureResult(5))

	err := c.Generate(context.Background(), 5, false)

	var httpErr *transport.HTTPError
	require.True(t, errors.As(err, &httpErr))

	snap := c.Snapshot()
	assert.Equal(t, GeneratedFailure, snap.State)
	assert.False(t, snap.InFlight)
	require.NotNil(t, snap.Result)
	assert.False(t, snap.Result.IsSuccess)
	assert.Equal(t, []string{"No eligible council"}, snap.Result.Errors)
	assert.Equal(t, 2, snap.Result.ScheduledGroups)
	assert.Equal(t, 3, snap.Result.UnscheduledGroups)
	assert.Equal(t, err, snap.Err)
}

func TestScenario_ApproveAfterCorrectedRun(t *testing.T) {
	c, server, sessionsChanged := againstServer(t)
	ctx := context.Background()

	var refreshed int
	sessionsChanged.Subscribe(func() { refreshed++ })

	server.SetResult(5, apitest.FailureResult(5))
	require.Error(t, c.Generate(ctx, 5, false))

	err := c.Approve(ctx, 5)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, 0, server.Calls("POST /scheduling/5/approve"))

	server.SetResult(5, apitest.SuccessResult(5))
	require.NoError(t, c.Generate(ctx, 5, true))
	assert.Equal(t, GeneratedSuccess, c.Snapshot().State)

	require.NoError(t, c.Approve(ctx, 5))

	snap := c.Snapshot()
	assert.Equal(t, Idle, snap.State)
	assert.Nil(t, snap.Result)
	assert.Equal(t, Approved, snap.Outcome)
	assert.True(t, server.Approved(5))
	assert.Equal(t, 1, refreshed)
}

func TestScenario_EmptyReasonRejectedLocally(t *testing.T) {
	scheduler := new(services.MockSchedulingService)
	scheduler.On("Generate", mock.Anything, 5, false).Return(apitest.SuccessResult(5), nil)
	c := NewController(scheduler, nil, nil)
	require.NoError(t, c.Generate(context.Background(), 5, false))

	for _, reason := range []string{"", "   "} {
		err := c.Reject(context.Background(), 5, reason)
		assert.ErrorIs(t, err, ErrReasonRequired)
	}

	scheduler.AssertNotCalled(t, "Reject", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, GeneratedSuccess, c.Snapshot().State)
}

func TestReject(t *testing.T) {
	c, server, _ := againstServer(t)
	ctx := context.Background()
	server.SetResult(5, apitest.FailureResult(5))
	require.Error(t, c.Generate(ctx, 5, false))

	require.NoError(t, c.Reject(ctx, 5, "  Councils overlap  "))

	snap := c.Snapshot()
	assert.Equal(t, Idle, snap.State)
	assert.Nil(t, snap.Result)
	assert.Equal(t, Rejected, snap.Outcome)
	reason, ok := server.Rejected(5)
	assert.True(t, ok)
	assert.Equal(t, "Councils overlap", reason)
}

func TestApproveFailureKeepsResult(t *testing.T) {
	scheduler := new(services.MockSchedulingService)
	scheduler.On("Generate", mock.Anything, 5, false).Return(apitest.SuccessResult(5), nil)
	scheduler.On("Approve", mock.Anything, 5).Return(transport.ErrNetwork).Once()
	scheduler.On("Approve", mock.Anything, 5).Return(nil).Once()

	sessionsChanged := signal.New("sessions-changed")
	var refreshed int
	sessionsChanged.Subscribe(func() { refreshed++ })

	c := NewController(scheduler, sessionsChanged, nil)
	ctx := context.Background()
	require.NoError(t, c.Generate(ctx, 5, false))

	err := c.Approve(ctx, 5)
	assert.ErrorIs(t, err, transport.ErrNetwork)

	snap := c.Snapshot()
	assert.Equal(t, GeneratedSuccess, snap.State)
	assert.Equal(t, apitest.SuccessResult(5), snap.Result)
	assert.Equal(t, 0, refreshed)

	require.NoError(t, c.Approve(ctx, 5))
	assert.Equal(t, 1, refreshed)
	scheduler.AssertExpectations(t)
}

func TestGenerate_FailureWithoutDataReturnsToIdle(t *testing.T) {
	scheduler := new(services.MockSchedulingService)
	scheduler.On("Generate", mock.Anything, 5, false).Return(apitest.SuccessResult(5), nil).Once()
	scheduler.On("Generate", mock.Anything, 5, true).Return(nil, transport.ErrNetwork).Once()

	c := NewController(scheduler, nil, nil)
	require.NoError(t, c.Generate(context.Background(), 5, false))

	err := c.Generate(context.Background(), 5, true)
	assert.ErrorIs(t, err, transport.ErrNetwork)

	snap := c.Snapshot()
	assert.Equal(t, Idle, snap.State)
	assert.Nil(t, snap.Result)
	assert.ErrorIs(t, snap.Err, transport.ErrNetwork)
}

func TestGenerate_RequiresPeriod(t *testing.T) {
	scheduler := new(services.MockSchedulingService)
	c := NewController(scheduler, nil, nil)

	assert.ErrorIs(t, c.Generate(context.Background(), 0, false), ErrNoPeriod)
	assert.ErrorIs(t, c.Approve(context.Background(), 5), ErrNoPeriod)
	assert.ErrorIs(t, c.RegenerateSlot(context.Background(), 21, ""), ErrNoPeriod)
	scheduler.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
}

func TestApprove_OtherPeriod(t *testing.T) {
	scheduler := new(services.MockSchedulingService)
	scheduler.On("Generate", mock.Anything, 5, false).Return(apitest.SuccessResult(5), nil)
	c := NewController(scheduler, nil, nil)
	require.NoError(t, c.Generate(context.Background(), 5, false))

	assert.ErrorIs(t, c.Approve(context.Background(), 6), ErrInvalidTransition)
	scheduler.AssertNotCalled(t, "Approve", mock.Anything, mock.Anything)
}

func TestRegenerate(t *testing.T) {
	c, server, _ := againstServer(t)
	ctx := context.Background()

	server.SetResult(5, apitest.FailureResult(5))
	require.Error(t, c.Generate(ctx, 5, false))

	fixed := apitest.SuccessResult(5)
	fixed.ScheduledSessions[0].CouncilMembers[0].LecturerName = "Hoa Lecturer"
	server.SetSlotResult(21, fixed)

	require.NoError(t, c.RegenerateSlot(ctx, 21, "Chair is travelling"))
	snap := c.Snapshot()
	assert.Equal(t, GeneratedSuccess, snap.State)
	assert.Equal(t, "Hoa Lecturer", snap.Result.ScheduledSessions[0].CouncilMembers[0].LecturerName)

	server.SetGroupResult(12, apitest.FailureResult(5, "Group 12 has no free slot"))
	require.Error(t, c.RegenerateGroup(ctx, 12, ""))
	snap = c.Snapshot()
	assert.Equal(t, GeneratedFailure, snap.State)
	assert.Equal(t, []string{"Group 12 has no free slot"}, snap.Result.Errors)

	// Nothing configured for group 99: the server answers 404 without data.
	require.Error(t, c.RegenerateGroup(ctx, 99, ""))
	snap = c.Snapshot()
	assert.Equal(t, GeneratedFailure, snap.State)
	assert.Equal(t, []string{"Group 12 has no free slot"}, snap.Result.Errors)
}

func TestRegenerate_NeedsResult(t *testing.T) {
	scheduler := new(services.MockSchedulingService)
	c := NewController(scheduler, nil, nil)
	require.NoError(t, c.SelectPeriod(5))

	assert.ErrorIs(t, c.RegenerateGroup(context.Background(), 12, ""), ErrInvalidTransition)
	assert.Error(t, c.RegenerateSlot(context.Background(), 0, ""))
}

// blockingGenerate makes the next Generate call wait until release is closed.
func blockingGenerate(scheduler *services.MockSchedulingService, periodID int, result *models.ScheduleResult) (started, release chan struct{}) {
	started = make(chan struct{})
	release = make(chan struct{})
	scheduler.On("Generate", mock.Anything, periodID, false).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(result, nil).Once()
	return started, release
}

func TestGenerate_BusyGuard(t *testing.T) {
	scheduler := new(services.MockSchedulingService)
	started, release := blockingGenerate(scheduler, 5, apitest.SuccessResult(5))
	c := NewController(scheduler, nil, nil)

	var wg sync.WaitGroup
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		firstErr = c.Generate(context.Background(), 5, false)
	}()
	<-started

	assert.True(t, c.Snapshot().InFlight)
	assert.Equal(t, Generating, c.Snapshot().State)
	assert.ErrorIs(t, c.Generate(context.Background(), 5, false), ErrBusy)
	assert.ErrorIs(t, c.Reject(context.Background(), 5, "reason"), ErrBusy)

	close(release)
	wg.Wait()

	require.NoError(t, firstErr)
	assert.Equal(t, GeneratedSuccess, c.Snapshot().State)
	scheduler.AssertNumberOfCalls(t, "Generate", 1)
	scheduler.AssertNotCalled(t, "Reject", mock.Anything, mock.Anything, mock.Anything)
}

func TestGenerate_PeriodChangeDropsPendingResponse(t *testing.T) {
	scheduler := new(services.MockSchedulingService)
	started, release := blockingGenerate(scheduler, 5, apitest.SuccessResult(5))
	c := NewController(scheduler, nil, nil)

	done := make(chan error)
	go func() { done <- c.Generate(context.Background(), 5, false) }()
	<-started

	require.NoError(t, c.SelectPeriod(6))
	close(release)
	assert.ErrorIs(t, <-done, ErrSuperseded)

	snap := c.Snapshot()
	assert.Equal(t, 6, snap.PeriodID)
	assert.Equal(t, Idle, snap.State)
	assert.Nil(t, snap.Result)
	assert.False(t, snap.InFlight)
}

func TestClose_DropsPendingResponse(t *testing.T) {
	scheduler := new(services.MockSchedulingService)
	started, release := blockingGenerate(scheduler, 5, apitest.SuccessResult(5))
	c := NewController(scheduler, nil, nil)

	var changes int
	c.Subscribe(func() { changes++ })

	done := make(chan error)
	go func() { done <- c.Generate(context.Background(), 5, false) }()
	<-started

	c.Close()
	countAtClose := changes
	close(release)
	assert.ErrorIs(t, <-done, ErrSuperseded)

	assert.Equal(t, countAtClose, changes)
	assert.Nil(t, c.Snapshot().Result)
	assert.ErrorIs(t, c.Generate(context.Background(), 5, false), ErrClosed)
	assert.ErrorIs(t, c.SelectPeriod(7), ErrClosed)
}

func TestSelectPeriod_DiscardsResult(t *testing.T) {
	scheduler := new(services.MockSchedulingService)
	scheduler.On("Generate", mock.Anything, 5, false).Return(apitest.SuccessResult(5), nil)
	c := NewController(scheduler, nil, nil)
	require.NoError(t, c.Generate(context.Background(), 5, false))

	require.NoError(t, c.SelectPeriod(5))
	assert.NotNil(t, c.Snapshot().Result)

	require.NoError(t, c.SelectPeriod(6))
	snap := c.Snapshot()
	assert.Nil(t, snap.Result)
	assert.Equal(t, Idle, snap.State)
	assert.ErrorIs(t, c.SelectPeriod(0), ErrNoPeriod)
}

func TestSnapshot_IsACopy(t *testing.T) {
	scheduler := new(services.MockSchedulingService)
	scheduler.On("Generate", mock.Anything, 5, false).Return(apitest.SuccessResult(5), nil)
	c := NewController(scheduler, nil, nil)
	require.NoError(t, c.Generate(context.Background(), 5, false))

	snap := c.Snapshot()
	snap.Result.ScheduledSessions[0].CouncilMembers[0].LecturerName = "changed"
	snap.Result.Errors = append(snap.Result.Errors, "changed")

	again := c.Snapshot()
	assert.Equal(t, "Linh Lecturer", again.Result.ScheduledSessions[0].CouncilMembers[0].LecturerName)
	assert.Empty(t, again.Result.Errors)
}

func TestStateStrings(t *testing.T) {
	assert.Equal(t, "generated with errors", GeneratedFailure.String())
	assert.True(t, Approving.Pending())
	assert.False(t, GeneratedSuccess.Pending())
	assert.Equal(t, "approved", Approved.String())
}
