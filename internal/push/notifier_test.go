package push

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vnioa/StudyMate-sub010/internal/mocks"
	"github.com/vnioa/StudyMate-sub010/internal/models"
)

type providerMock struct {
	mock.Mock
}

func (m *providerMock) Send(ctx context.Context, tokens []string, note Notification) ([]TokenResult, error) {
	args := m.Called(ctx, tokens, note)
	var results []TokenResult
	if val := args.Get(0); val != nil {
		results = val.([]TokenResult)
	}
	return results, args.Error(1)
}

var _ Provider = (*providerMock)(nil)

func TestDispatchPrunesInvalidTokens(t *testing.T) {
	devices := new(mocks.DeviceTokenRepositoryMock)
	provider := new(providerMock)
	notifier := NewNotifier(new(mocks.RoomRepositoryMock), devices, provider, 8)

	devices.On("TokensForUsers", mock.Anything, []int{3}).Return([]models.DeviceToken{
		{UserID: 3, Token: "t-good"},
		{UserID: 3, Token: "t-dead"},
	}, nil).Once()
	provider.On("Send", mock.Anything, []string{"t-good", "t-dead"}, mock.Anything).Return([]TokenResult{
		{Token: "t-good"},
		{Token: "t-dead", Invalid: true},
	}, nil).Once()
	devices.On("RemoveToken", mock.Anything, "t-dead").Return(nil).Once()

	result, err := notifier.Dispatch(context.Background(), 3, Notification{Title: "R1", Body: "hi"})
	require.NoError(t, err)
	require.Equal(t, 1, result.Delivered)
	require.Equal(t, 1, result.Pruned)
	require.Equal(t, 0, result.Failed)
	devices.AssertExpectations(t)
}

func TestDispatchNoTokensIsNoop(t *testing.T) {
	devices := new(mocks.DeviceTokenRepositoryMock)
	provider := new(providerMock)
	notifier := NewNotifier(new(mocks.RoomRepositoryMock), devices, provider, 8)

	devices.On("TokensForUsers", mock.Anything, []int{4}).Return([]models.DeviceToken{}, nil).Once()

	result, err := notifier.Dispatch(context.Background(), 4, Notification{})
	require.NoError(t, err)
	require.Zero(t, result.Delivered)
	provider.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestDispatchBatchFailure(t *testing.T) {
	devices := new(mocks.DeviceTokenRepositoryMock)
	provider := new(providerMock)
	notifier := NewNotifier(new(mocks.RoomRepositoryMock), devices, provider, 8)

	devices.On("TokensForUsers", mock.Anything, []int{5}).Return([]models.DeviceToken{
		{UserID: 5, Token: "t1"},
	}, nil).Once()
	provider.On("Send", mock.Anything, []string{"t1"}, mock.Anything).
		Return(nil, errors.New("endpoint unreachable")).Once()

	_, err := notifier.Dispatch(context.Background(), 5, Notification{})
	require.ErrorIs(t, err, ErrProvider)
}

func TestNotifyRoomExcludesSender(t *testing.T) {
	rooms := new(mocks.RoomRepositoryMock)
	devices := new(mocks.DeviceTokenRepositoryMock)
	provider := new(providerMock)
	notifier := NewNotifier(rooms, devices, provider, 8)

	rooms.On("ListParticipants", mock.Anything, 1).Return([]models.Participant{
		{RoomID: 1, UserID: 1, Role: models.RoleAdmin},
		{RoomID: 1, UserID: 2, Role: models.RoleMember},
		{RoomID: 1, UserID: 3, Role: models.RoleMember},
	}, nil).Once()
	devices.On("TokensForUsers", mock.Anything, []int{1}).Return([]models.DeviceToken{{UserID: 1, Token: "t1"}}, nil).Once()
	devices.On("TokensForUsers", mock.Anything, []int{3}).Return([]models.DeviceToken{{UserID: 3, Token: "t3"}}, nil).Once()
	provider.On("Send", mock.Anything, []string{"t1"}, mock.Anything).Return([]TokenResult{{Token: "t1"}}, nil).Once()
	provider.On("Send", mock.Anything, []string{"t3"}, mock.Anything).Return([]TokenResult{{Token: "t3"}}, nil).Once()

	notifier.Start(context.Background())
	notifier.NotifyRoom(1, 2, "R1", "hi", nil)
	notifier.Stop()

	// the sender's tokens were never resolved
	devices.AssertNotCalled(t, "TokensForUsers", mock.Anything, []int{2})
	rooms.AssertExpectations(t)
	provider.AssertExpectations(t)
}

func TestNotifyRoomDropsWhenQueueFull(t *testing.T) {
	rooms := new(mocks.RoomRepositoryMock)
	notifier := NewNotifier(rooms, new(mocks.DeviceTokenRepositoryMock), new(providerMock), 1)

	// worker not started, so only one job fits in the queue
	notifier.NotifyRoom(1, 2, "R1", "first", nil)
	notifier.NotifyRoom(1, 2, "R1", "second", nil)

	require.Len(t, notifier.jobs, 1)
}

func TestNotifyRoomAfterStopIsDropped(t *testing.T) {
	notifier := NewNotifier(new(mocks.RoomRepositoryMock), new(mocks.DeviceTokenRepositoryMock), new(providerMock), 4)

	notifier.Start(context.Background())
	notifier.Stop()

	require.NotPanics(t, func() {
		notifier.NotifyRoom(1, 2, "R1", "late", nil)
	})
}
