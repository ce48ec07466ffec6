package storage_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vytor/mriflash/internal/repository/sqlite"
	"github.com/vytor/mriflash/internal/storage"
	"github.com/vytor/mriflash/internal/testutil"
	"github.com/vytor/mriflash/internal/testutil/mocks"
)

type payload struct {
	Phase string `json:"phase"`
	Items []int  `json:"items"`
}

func newStore(t *testing.T, quota int64) *storage.Store {
	t.Helper()
	db := testutil.NewTestDB(t)
	t.Cleanup(func() { testutil.MustClose(t, db) })
	return storage.New(sqlite.NewKVRepository(db), quota)
}

func TestStore_GetMissingKeepsDefault(t *testing.T) {
	s := newStore(t, 0)

	dst := payload{Phase: "setup"}
	assert.False(t, s.Get(context.Background(), storage.KeyState, &dst))
	assert.Equal(t, "setup", dst.Phase)
}

func TestStore_SetThenGet(t *testing.T) {
	s := newStore(t, 0)
	ctx := context.Background()

	s.Set(ctx, storage.KeyState, payload{Phase: "question", Items: []int{1, 2}})

	var dst payload
	require.True(t, s.Get(ctx, storage.KeyState, &dst))
	assert.Equal(t, payload{Phase: "question", Items: []int{1, 2}}, dst)
}

func TestStore_CorruptValueUsesDefault(t *testing.T) {
	kv := new(mocks.MockKVRepository)
	kv.On("Get", mock.Anything, storage.KeyState).Return([]byte("{broken"), true, nil)
	s := storage.New(kv, 0)

	dst := payload{Phase: "setup"}
	assert.False(t, s.Get(context.Background(), storage.KeyState, &dst))
	assert.Equal(t, "setup", dst.Phase)
}

func TestStore_ReadFailureUsesDefault(t *testing.T) {
	kv := new(mocks.MockKVRepository)
	kv.On("Get", mock.Anything, storage.KeyState).Return(nil, false, errors.New("database is locked"))
	s := storage.New(kv, 0)

	var dst payload
	assert.False(t, s.Get(context.Background(), storage.KeyState, &dst))
}

func TestStore_WriteFailureIsSwallowed(t *testing.T) {
	kv := new(mocks.MockKVRepository)
	kv.On("Set", mock.Anything, storage.KeyState, mock.Anything).Return(errors.New("disk I/O error"))
	s := storage.New(kv, 0)

	assert.NotPanics(t, func() { s.Set(context.Background(), storage.KeyState, payload{}) })
	assert.Error(t, s.Save(context.Background(), storage.KeyState, payload{}))
}

func TestStore_UnencodableValue(t *testing.T) {
	s := storage.New(new(mocks.MockKVRepository), 0)

	err := s.Save(context.Background(), storage.KeyState, func() {})
	assert.ErrorContains(t, err, "encode")
}

func TestStore_QuotaClearsOtherQuizKeysAndRetries(t *testing.T) {
	s := newStore(t, 64)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, storage.KeyMetadata, payload{Items: []int{1, 2, 3, 4, 5, 6, 7, 8, 9}}))
	require.NoError(t, s.Save(ctx, storage.KeyState, payload{Phase: "question", Items: []int{1, 2, 3, 4, 5, 6}}))

	var meta payload
	assert.False(t, s.Get(ctx, storage.KeyMetadata, &meta), "metadata was evicted to make room")

	var state payload
	require.True(t, s.Get(ctx, storage.KeyState, &state))
	assert.Equal(t, "question", state.Phase)
}

func TestStore_QuotaStillExceededAfterClearing(t *testing.T) {
	s := newStore(t, 16)
	ctx := context.Background()

	err := s.Save(ctx, storage.KeyState, payload{Phase: "explanation", Items: []int{1, 2, 3}})
	assert.ErrorIs(t, err, storage.ErrQuotaExceeded)

	var dst payload
	assert.False(t, s.Get(ctx, storage.KeyState, &dst))
}

func TestStore_QuotaLeavesForeignKeysAlone(t *testing.T) {
	kv := new(mocks.MockKVRepository)
	kv.On("Size", mock.Anything, storage.KeyState).Return(int64(100), nil).Once()
	kv.On("Keys", mock.Anything, storage.KeyPrefix).Return([]string{"quiz-metadata", storage.KeyState}, nil)
	kv.On("Delete", mock.Anything, "quiz-metadata").Return(nil)
	kv.On("Size", mock.Anything, storage.KeyState).Return(int64(0), nil).Once()
	kv.On("Set", mock.Anything, storage.KeyState, mock.Anything).Return(nil)
	s := storage.New(kv, 50)

	require.NoError(t, s.Save(context.Background(), storage.KeyState, payload{}))

	kv.AssertExpectations(t)
	kv.AssertNotCalled(t, "Delete", mock.Anything, storage.KeyState)
}
