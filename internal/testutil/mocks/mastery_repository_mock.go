package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/vytor/mriflash/internal/models"
)

// MockMasteryRepository is a mock implementation of repository.MasteryRepository
type MockMasteryRepository struct {
	mock.Mock
}

func (m *MockMasteryRepository) Upsert(ctx context.Context, record models.MasteryRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockMasteryRepository) Get(ctx context.Context, imageID string) (*models.MasteryRecord, error) {
	args := m.Called(ctx, imageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MasteryRecord), args.Error(1)
}

func (m *MockMasteryRepository) List(ctx context.Context, filter models.MasteryFilter) ([]models.MasteryRecord, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MasteryRecord), args.Error(1)
}

func (m *MockMasteryRepository) Count(ctx context.Context, filter models.MasteryFilter) (int, error) {
	args := m.Called(ctx, filter)
	return args.Int(0), args.Error(1)
}

func (m *MockMasteryRepository) Stats(ctx context.Context, now time.Time) ([]models.MasteryStat, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MasteryStat), args.Error(1)
}
