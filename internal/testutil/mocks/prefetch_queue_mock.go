package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/vytor/mriflash/internal/models"
)

// MockPrefetchQueue is a mock implementation of jobs.PrefetchQueue
type MockPrefetchQueue struct {
	mock.Mock
}

func (m *MockPrefetchQueue) EnqueuePrefetch(img models.Image) error {
	args := m.Called(img)
	return args.Error(0)
}
