package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/vytor/mriflash/internal/models"
)

// MockHistoryRepository is a mock implementation of repository.HistoryRepository
type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) InsertSession(ctx context.Context, session models.SessionRecord) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockHistoryRepository) CompleteSession(ctx context.Context, id string, score, totalAnswered int, completedAt time.Time) error {
	args := m.Called(ctx, id, score, totalAnswered, completedAt)
	return args.Error(0)
}

func (m *MockHistoryRepository) InsertAnswer(ctx context.Context, answer models.AnswerHistory) (int64, error) {
	args := m.Called(ctx, answer)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockHistoryRepository) SessionAnswers(ctx context.Context, sessionID string) ([]models.AnswerHistory, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AnswerHistory), args.Error(1)
}

func (m *MockHistoryRepository) RecentSessions(ctx context.Context, limit int) ([]models.SessionRecord, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SessionRecord), args.Error(1)
}

func (m *MockHistoryRepository) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}
