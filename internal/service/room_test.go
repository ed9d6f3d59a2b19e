package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vnioa/StudyMate-sub010/internal/mocks"
	"github.com/vnioa/StudyMate-sub010/internal/models"
	"github.com/vnioa/StudyMate-sub010/internal/repositories"
)

func TestCreateDirectRoomRequiresOneCounterpart(t *testing.T) {
	roomRepo := new(mocks.RoomRepositoryMock)
	svc := NewRoomService(roomRepo)

	_, err := svc.Create(context.Background(), "", models.RoomKindDirect, 1, []int{2, 3})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(context.Background(), "", models.RoomKindDirect, 1, nil)
	require.ErrorIs(t, err, ErrValidation)

	// nothing may be written when validation fails
	roomRepo.AssertNotCalled(t, "CreateRoom", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateDirectRoomWithSelfFails(t *testing.T) {
	roomRepo := new(mocks.RoomRepositoryMock)
	svc := NewRoomService(roomRepo)

	_, err := svc.Create(context.Background(), "", models.RoomKindDirect, 7, []int{7})
	require.ErrorIs(t, err, ErrValidation)
	roomRepo.AssertNotCalled(t, "CreateRoom", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateGroupRoomSuccess(t *testing.T) {
	roomRepo := new(mocks.RoomRepositoryMock)
	svc := NewRoomService(roomRepo)

	want := models.Room{ID: 9, Name: "study", Kind: models.RoomKindGroup, CreatorID: 1}
	roomRepo.On("CreateRoom", mock.Anything, "study", models.RoomKindGroup, 1, []int{2, 3}).Return(want, nil).Once()

	room, err := svc.Create(context.Background(), "study", models.RoomKindGroup, 1, []int{2, 3})
	require.NoError(t, err)
	require.Equal(t, 9, room.ID)
	roomRepo.AssertExpectations(t)
}

func TestCreateRoomUnknownKind(t *testing.T) {
	svc := NewRoomService(new(mocks.RoomRepositoryMock))

	_, err := svc.Create(context.Background(), "x", "broadcast", 1, nil)
	require.ErrorIs(t, err, ErrValidation)
}

func TestUpdateSettingsRequiresAdmin(t *testing.T) {
	roomRepo := new(mocks.RoomRepositoryMock)
	svc := NewRoomService(roomRepo)

	roomRepo.On("GetRoom", mock.Anything, 5).Return(models.Room{ID: 5}, nil)
	roomRepo.On("GetParticipant", mock.Anything, 5, 2).
		Return(models.Participant{RoomID: 5, UserID: 2, Role: models.RoleMember}, nil).Once()

	name := "renamed"
	err := svc.UpdateSettings(context.Background(), 5, 2, models.RoomSettingsPatch{Name: &name})
	require.ErrorIs(t, err, ErrPermission)
	roomRepo.AssertNotCalled(t, "UpdateSettings", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateSettingsByAdmin(t *testing.T) {
	roomRepo := new(mocks.RoomRepositoryMock)
	svc := NewRoomService(roomRepo)

	notification := false
	patch := models.RoomSettingsPatch{Notification: &notification}

	roomRepo.On("GetRoom", mock.Anything, 5).Return(models.Room{ID: 5}, nil)
	roomRepo.On("GetParticipant", mock.Anything, 5, 1).
		Return(models.Participant{RoomID: 5, UserID: 1, Role: models.RoleAdmin}, nil).Once()
	roomRepo.On("UpdateSettings", mock.Anything, 5, patch).Return(nil).Once()

	require.NoError(t, svc.UpdateSettings(context.Background(), 5, 1, patch))
	roomRepo.AssertExpectations(t)
}

func TestUpdateSettingsUnknownRoom(t *testing.T) {
	roomRepo := new(mocks.RoomRepositoryMock)
	svc := NewRoomService(roomRepo)

	roomRepo.On("GetRoom", mock.Anything, 404).Return(models.Room{}, repositories.ErrRoomNotFound).Once()

	err := svc.UpdateSettings(context.Background(), 404, 1, models.RoomSettingsPatch{})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLeaveRoomIsIdempotent(t *testing.T) {
	roomRepo := new(mocks.RoomRepositoryMock)
	svc := NewRoomService(roomRepo)

	roomRepo.On("GetRoom", mock.Anything, 3).Return(models.Room{ID: 3}, nil)
	roomRepo.On("RemoveParticipant", mock.Anything, 3, 8).Return(nil).Twice()

	require.NoError(t, svc.Leave(context.Background(), 3, 8))
	require.NoError(t, svc.Leave(context.Background(), 3, 8))
	roomRepo.AssertExpectations(t)
}

func TestListRoomsPropagatesRepoError(t *testing.T) {
	roomRepo := new(mocks.RoomRepositoryMock)
	svc := NewRoomService(roomRepo)

	boom := errors.New("db down")
	roomRepo.On("ListRoomsForUser", mock.Anything, 1, "").Return(nil, boom).Once()

	_, err := svc.List(context.Background(), 1, "")
	require.ErrorIs(t, err, boom)
}

func TestParticipantsRequiresMembership(t *testing.T) {
	roomRepo := new(mocks.RoomRepositoryMock)
	svc := NewRoomService(roomRepo)

	roomRepo.On("IsParticipant", mock.Anything, 4, 9).Return(false, nil).Once()

	_, err := svc.Participants(context.Background(), 4, 9)
	require.ErrorIs(t, err, ErrPermission)
}
