package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/smart-review/smart-review-cli/api/transport"
	"github.com/smart-review/smart-review-cli/models"
)

// SchedulingService drives the server-side scheduling algorithm.
type SchedulingService struct {
	API Client
}

// Generate runs the algorithm for a review period. A failed run may still
// return a populated result together with the error; callers should keep it.
func (s *SchedulingService) Generate(ctx context.Context, periodID int, force bool) (*models.ScheduleResult, error) {
	env, err := s.API.Do(ctx, http.MethodPost, "/scheduling/generate", models.GenerateScheduleRequest{
		ReviewPeriodID:  periodID,
		ForceRegenerate: force,
	})
	return scheduleResult(env, err)
}

func (s *SchedulingService) Approve(ctx context.Context, periodID int) error {
	env, err := s.API.Do(ctx, http.MethodPost, fmt.Sprintf("/scheduling/%d/approve", periodID), nil)
	return outcome(env, err)
}

func (s *SchedulingService) Reject(ctx context.Context, periodID int, reason string) error {
	env, err := s.API.Do(ctx, http.MethodPost, fmt.Sprintf("/scheduling/%d/reject", periodID),
		models.RejectScheduleRequest{Reason: reason})
	return outcome(env, err)
}

func (s *SchedulingService) RegenerateSlot(ctx context.Context, slotID int, reason string) (*models.ScheduleResult, error) {
	env, err := s.API.Do(ctx, http.MethodPost, fmt.Sprintf("/scheduling/slots/%d/regenerate", slotID),
		models.RegenerateSlotRequest{SlotID: slotID, Reason: reason})
	return scheduleResult(env, err)
}

func (s *SchedulingService) RegenerateGroup(ctx context.Context, groupID int, reason string) (*models.ScheduleResult, error) {
	env, err := s.API.Do(ctx, http.MethodPost, fmt.Sprintf("/scheduling/groups/%d/regenerate", groupID),
		models.RegenerateGroupRequest{GroupID: groupID, Reason: reason})
	return scheduleResult(env, err)
}

// scheduleResult extracts the result from a response whether or not the
// call failed, so partial diagnostics survive the error path.
func scheduleResult(env *models.Envelope, callErr error) (*models.ScheduleResult, error) {
	var result *models.ScheduleResult
	if env.HasData() {
		var r models.ScheduleResult
		if err := env.Decode(&r); err == nil {
			result = &r
		} else if callErr == nil {
			return nil, fmt.Errorf("failed to decode schedule result: %w", err)
		}
	}

	if callErr != nil {
		return result, callErr
	}
	if !env.IsSuccess {
		return result, transport.FromEnvelope(http.StatusOK, env)
	}
	if result == nil {
		return nil, errors.New("schedule response has no result")
	}
	return result, nil
}

func outcome(env *models.Envelope, callErr error) error {
	if callErr != nil {
		return callErr
	}
	if !env.IsSuccess {
		return transport.FromEnvelope(http.StatusOK, env)
	}
	return nil
}
