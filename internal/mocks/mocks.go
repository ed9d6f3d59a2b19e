package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/vnioa/StudyMate-sub010/internal/cache"
	"github.com/vnioa/StudyMate-sub010/internal/models"
	"github.com/vnioa/StudyMate-sub010/internal/repositories"
)

type RoomRepositoryMock struct {
	mock.Mock
}

func (m *RoomRepositoryMock) CreateRoom(ctx context.Context, name, kind string, creatorID int, participantIDs []int) (models.Room, error) {
	args := m.Called(ctx, name, kind, creatorID, participantIDs)
	var room models.Room
	if val := args.Get(0); val != nil {
		room = val.(models.Room)
	}
	return room, args.Error(1)
}

func (m *RoomRepositoryMock) GetRoom(ctx context.Context, roomID int) (models.Room, error) {
	args := m.Called(ctx, roomID)
	var room models.Room
	if val := args.Get(0); val != nil {
		room = val.(models.Room)
	}
	return room, args.Error(1)
}

func (m *RoomRepositoryMock) ListRoomsForUser(ctx context.Context, userID int, search string) ([]models.RoomSummary, error) {
	args := m.Called(ctx, userID, search)
	var rooms []models.RoomSummary
	if val := args.Get(0); val != nil {
		rooms = val.([]models.RoomSummary)
	}
	return rooms, args.Error(1)
}

func (m *RoomRepositoryMock) ListParticipants(ctx context.Context, roomID int) ([]models.Participant, error) {
	args := m.Called(ctx, roomID)
	var participants []models.Participant
	if val := args.Get(0); val != nil {
		participants = val.([]models.Participant)
	}
	return participants, args.Error(1)
}

func (m *RoomRepositoryMock) GetParticipant(ctx context.Context, roomID, userID int) (models.Participant, error) {
	args := m.Called(ctx, roomID, userID)
	var participant models.Participant
	if val := args.Get(0); val != nil {
		participant = val.(models.Participant)
	}
	return participant, args.Error(1)
}

func (m *RoomRepositoryMock) IsParticipant(ctx context.Context, roomID, userID int) (bool, error) {
	args := m.Called(ctx, roomID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *RoomRepositoryMock) UpdateSettings(ctx context.Context, roomID int, patch models.RoomSettingsPatch) error {
	args := m.Called(ctx, roomID, patch)
	return args.Error(0)
}

func (m *RoomRepositoryMock) UpdateStatus(ctx context.Context, roomID int, status string) error {
	args := m.Called(ctx, roomID, status)
	return args.Error(0)
}

func (m *RoomRepositoryMock) RemoveParticipant(ctx context.Context, roomID, userID int) error {
	args := m.Called(ctx, roomID, userID)
	return args.Error(0)
}

func (m *RoomRepositoryMock) TouchRoom(ctx context.Context, roomID int) error {
	args := m.Called(ctx, roomID)
	return args.Error(0)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) CreateMessage(ctx context.Context, msg models.Message) (models.Message, error) {
	args := m.Called(ctx, msg)
	var stored models.Message
	if val := args.Get(0); val != nil {
		stored = val.(models.Message)
	}
	return stored, args.Error(1)
}

func (m *MessageRepositoryMock) ListMessages(ctx context.Context, roomID, limit, offset int) ([]models.Message, error) {
	args := m.Called(ctx, roomID, limit, offset)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

func (m *MessageRepositoryMock) GetMessage(ctx context.Context, messageID int) (models.Message, error) {
	args := m.Called(ctx, messageID)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) DeleteMessage(ctx context.Context, messageID int) error {
	args := m.Called(ctx, messageID)
	return args.Error(0)
}

func (m *MessageRepositoryMock) MarkAllRead(ctx context.Context, roomID, userID int) error {
	args := m.Called(ctx, roomID, userID)
	return args.Error(0)
}

func (m *MessageRepositoryMock) UpdateStatus(ctx context.Context, messageID int, status string) error {
	args := m.Called(ctx, messageID, status)
	return args.Error(0)
}

type DeviceTokenRepositoryMock struct {
	mock.Mock
}

func (m *DeviceTokenRepositoryMock) Upsert(ctx context.Context, userID int, token, device string) error {
	args := m.Called(ctx, userID, token, device)
	return args.Error(0)
}

func (m *DeviceTokenRepositoryMock) Remove(ctx context.Context, userID int, token string) error {
	args := m.Called(ctx, userID, token)
	return args.Error(0)
}

func (m *DeviceTokenRepositoryMock) RemoveToken(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *DeviceTokenRepositoryMock) TokensForUsers(ctx context.Context, userIDs []int) ([]models.DeviceToken, error) {
	args := m.Called(ctx, userIDs)
	var tokens []models.DeviceToken
	if val := args.Get(0); val != nil {
		tokens = val.([]models.DeviceToken)
	}
	return tokens, args.Error(1)
}

func (m *DeviceTokenRepositoryMock) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type MessageCacheMock struct {
	mock.Mock
}

func (m *MessageCacheMock) Append(ctx context.Context, roomID int, msg models.Message) error {
	args := m.Called(ctx, roomID, msg)
	return args.Error(0)
}

func (m *MessageCacheMock) Recent(ctx context.Context, roomID int) ([]models.Message, error) {
	args := m.Called(ctx, roomID)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

func (m *MessageCacheMock) Invalidate(ctx context.Context, roomID int) error {
	args := m.Called(ctx, roomID)
	return args.Error(0)
}

type NotifierMock struct {
	mock.Mock
}

func (m *NotifierMock) NotifyRoom(roomID, excludeUserID int, title, body string, data map[string]string) {
	m.Called(roomID, excludeUserID, title, body, data)
}

var _ repositories.RoomRepository = (*RoomRepositoryMock)(nil)
var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
var _ repositories.DeviceTokenRepository = (*DeviceTokenRepositoryMock)(nil)
var _ cache.MessageCache = (*MessageCacheMock)(nil)
