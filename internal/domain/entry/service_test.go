package entry

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, rec *Record) error {
	args := m.Called(ctx, rec)
	if args.Error(0) == nil {
		now := time.Now()
		rec.CreatedAt, rec.UpdatedAt = now, now
	}
	return args.Error(0)
}

func (m *MockRepository) Get(ctx context.Context, accountID int, id string) (Record, error) {
	args := m.Called(ctx, accountID, id)
	return args.Get(0).(Record), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, accountID int) ([]Record, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Record), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, accountID int, id, ciphertext string) (Record, error) {
	args := m.Called(ctx, accountID, id, ciphertext)
	return args.Get(0).(Record), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, accountID int, id string) error {
	args := m.Called(ctx, accountID, id)
	return args.Error(0)
}

func (m *MockRepository) DeleteAll(ctx context.Context, accountID int) (int64, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) CountByKind(ctx context.Context, accountID int) (map[Kind]int64, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[Kind]int64), args.Error(1)
}

func TestService_Create(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, 1024, slog.Default())

	mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(rec *Record) bool {
		_, err := uuid.Parse(rec.ID)
		return err == nil && rec.AccountID == 7 && rec.Kind == KindNote && rec.Ciphertext == "blob"
	})).Return(nil)

	rec, err := service.Create(context.Background(), 7, KindNote, "blob")
	require.NoError(t, err)
	assert.Equal(t, KindNote, rec.Kind)
	assert.False(t, rec.CreatedAt.IsZero())

	mockRepo.AssertExpectations(t)
}

func TestService_Create_Rejects(t *testing.T) {
	tests := []struct {
		name       string
		kind       Kind
		ciphertext string
		wantErr    error
	}{
		{name: "unknown kind", kind: Kind("password"), ciphertext: "blob", wantErr: ErrInvalidKind},
		{name: "too large", kind: KindFile, ciphertext: strings.Repeat("a", 1025), wantErr: ErrPayloadTooLarge},
		{name: "empty", kind: KindNote, ciphertext: "  ", wantErr: ErrEmptyCiphertext},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockRepository)
			service := NewService(mockRepo, 1024, slog.Default())

			_, err := service.Create(context.Background(), 7, tt.kind, tt.ciphertext)
			assert.ErrorIs(t, err, tt.wantErr)
			mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestService_Create_ExactlyAtCap(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, 1024, slog.Default())
	mockRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	_, err := service.Create(context.Background(), 7, KindFile, strings.Repeat("a", 1024))
	assert.NoError(t, err)
}

func TestService_ForeignAndMissingLookLikeNotFound(t *testing.T) {
	id := uuid.NewString()

	mockRepo := new(MockRepository)
	service := NewService(mockRepo, 1024, slog.Default())

	// запись принадлежит аккаунту 1, запрос от аккаунта 2
	mockRepo.On("Get", mock.Anything, 2, id).Return(Record{}, ErrNotFound)
	mockRepo.On("Update", mock.Anything, 2, id, "new").Return(Record{}, ErrNotFound)
	mockRepo.On("Delete", mock.Anything, 2, id).Return(ErrNotFound)

	_, getErr := service.Get(context.Background(), 2, id)
	_, updErr := service.Update(context.Background(), 2, id, "new")
	delErr := service.Delete(context.Background(), 2, id)

	_, missingErr := service.Get(context.Background(), 2, "not-a-uuid")

	for _, err := range []error{getErr, updErr, delErr, missingErr} {
		assert.Equal(t, ErrNotFound, err)
	}
}

func TestService_Update_ChecksSizeBeforeRepository(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, 8, slog.Default())

	_, err := service.Update(context.Background(), 1, uuid.NewString(), "123456789")
	assert.ErrorIs(t, err, ErrPayloadTooLarge)
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_List(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, 0, slog.Default())

	mockRepo.On("List", mock.Anything, 1).Return(nil, nil).Once()
	records, err := service.List(context.Background(), 1)
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)

	mockRepo.On("List", mock.Anything, 2).Return(nil, errors.New("database error")).Once()
	_, err = service.List(context.Background(), 2)
	assert.ErrorContains(t, err, "database error")
}

func TestService_DeleteAll(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, 0, slog.Default())
	mockRepo.On("DeleteAll", mock.Anything, 1).Return(int64(4), nil)

	n, err := service.DeleteAll(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestService_Summarize(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, 0, slog.Default())
	mockRepo.On("CountByKind", mock.Anything, 1).Return(map[Kind]int64{
		KindCredential: 3,
		KindFile:       1,
	}, nil)

	s, err := service.Summarize(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, Summary{Total: 4, Credentials: 3, Notes: 0, Files: 1}, s)
}

func TestKind_Validate(t *testing.T) {
	for _, k := range Kinds {
		assert.NoError(t, k.Validate())
	}
	assert.ErrorIs(t, Kind("password").Validate(), ErrInvalidKind)
	assert.ErrorIs(t, Kind("").Validate(), ErrInvalidKind)
}
