package services

import (
	"context"

	"github.com/smart-review/smart-review-cli/models"
	"github.com/stretchr/testify/mock"
)

type MockSchedulingService struct {
	mock.Mock
}

func (m *MockSchedulingService) Generate(ctx context.Context, periodID int, force bool) (*models.ScheduleResult, error) {
	args := m.Called(ctx, periodID, force)
	result, _ := args.Get(0).(*models.ScheduleResult)
	return result, args.Error(1)
}

func (m *MockSchedulingService) Approve(ctx context.Context, periodID int) error {
	args := m.Called(ctx, periodID)
	return args.Error(0)
}

func (m *MockSchedulingService) Reject(ctx context.Context, periodID int, reason string) error {
	args := m.Called(ctx, periodID, reason)
	return args.Error(0)
}

func (m *MockSchedulingService) RegenerateSlot(ctx context.Context, slotID int, reason string) (*models.ScheduleResult, error) {
	args := m.Called(ctx, slotID, reason)
	result, _ := args.Get(0).(*models.ScheduleResult)
	return result, args.Error(1)
}

func (m *MockSchedulingService) RegenerateGroup(ctx context.Context, groupID int, reason string) (*models.ScheduleResult, error) {
	args := m.Called(ctx, groupID, reason)
	result, _ := args.Get(0).(*models.ScheduleResult)
	return result, args.Error(1)
}
