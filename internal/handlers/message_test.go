package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vnioa/StudyMate-sub010/internal/mocks"
	"github.com/vnioa/StudyMate-sub010/internal/models"
	"github.com/vnioa/StudyMate-sub010/internal/service"
)

type messageHandlerDeps struct {
	messages *mocks.MessageRepositoryMock
	rooms    *mocks.RoomRepositoryMock
	cache    *mocks.MessageCacheMock
}

func setupMessageRouter(t *testing.T) (*gin.Engine, messageHandlerDeps) {
	t.Helper()
	deps := messageHandlerDeps{
		messages: new(mocks.MessageRepositoryMock),
		rooms:    new(mocks.RoomRepositoryMock),
		cache:    new(mocks.MessageCacheMock),
	}
	svc := service.NewMessageService(deps.messages, deps.rooms, deps.cache, nil)
	handler := NewMessageHandler(svc, nil, nil)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Next()
	})
	r.POST("/rooms/:room_id/messages", handler.PostMessage)
	r.GET("/rooms/:room_id/messages", handler.GetMessages)
	r.DELETE("/messages/:message_id", handler.DeleteMessage)
	r.PUT("/messages/:message_id/status", handler.UpdateStatus)
	return r, deps
}

func TestPostMessageCreated(t *testing.T) {
	router, deps := setupMessageRouter(t)

	deps.rooms.On("GetRoom", mock.Anything, 2).
		Return(models.Room{ID: 2, Notification: false}, nil).Once()
	deps.rooms.On("IsParticipant", mock.Anything, 2, 1).Return(true, nil).Once()
	deps.messages.On("CreateMessage", mock.Anything, mock.Anything).
		Return(models.Message{ID: 10, RoomID: 2, AuthorID: 1, Content: "hi", Type: models.MessageTypeText}, nil).Once()
	deps.rooms.On("TouchRoom", mock.Anything, 2).Return(nil).Once()
	deps.cache.On("Append", mock.Anything, 2, mock.Anything).Return(nil).Once()

	body := bytes.NewBufferString(`{"content":"hi","type":"text"}`)
	req := httptest.NewRequest(http.MethodPost, "/rooms/2/messages", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Contains(t, rec.Body.String(), `"messageId":10`)
	deps.messages.AssertExpectations(t)
}

func TestPostMessageEmptyText(t *testing.T) {
	router, deps := setupMessageRouter(t)

	body := bytes.NewBufferString(`{"content":"","type":"text"}`)
	req := httptest.NewRequest(http.MethodPost, "/rooms/2/messages", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), `"success":false`)
	deps.messages.AssertNotCalled(t, "CreateMessage", mock.Anything, mock.Anything)
}

func TestPostMessageBadRoomID(t *testing.T) {
	router, _ := setupMessageRouter(t)

	body := bytes.NewBufferString(`{"content":"hi","type":"text"}`)
	req := httptest.NewRequest(http.MethodPost, "/rooms/abc/messages", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetMessagesForNonParticipant(t *testing.T) {
	router, deps := setupMessageRouter(t)

	deps.rooms.On("IsParticipant", mock.Anything, 2, 1).Return(false, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/rooms/2/messages", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGetMessagesPageFromDB(t *testing.T) {
	router, deps := setupMessageRouter(t)

	deps.rooms.On("IsParticipant", mock.Anything, 2, 1).Return(true, nil).Once()
	deps.messages.On("ListMessages", mock.Anything, 2, 20, 20).
		Return([]models.Message{{ID: 9, RoomID: 2}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/rooms/2/messages?page=2&limit=20", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"id":9`)
	deps.cache.AssertNotCalled(t, "Recent", mock.Anything, mock.Anything)
}

func TestDeleteMessageByNonAuthor(t *testing.T) {
	router, deps := setupMessageRouter(t)

	deps.messages.On("GetMessage", mock.Anything, 10).
		Return(models.Message{ID: 10, RoomID: 2, AuthorID: 9}, nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/messages/10", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	deps.messages.AssertNotCalled(t, "DeleteMessage", mock.Anything, mock.Anything)
}

func TestUpdateStatusRegressionRejected(t *testing.T) {
	router, deps := setupMessageRouter(t)

	deps.messages.On("GetMessage", mock.Anything, 10).
		Return(models.Message{ID: 10, RoomID: 2, AuthorID: 9, Status: models.MessageStatusRead}, nil).Once()
	deps.rooms.On("IsParticipant", mock.Anything, 2, 1).Return(true, nil).Once()

	body := bytes.NewBufferString(`{"status":"delivered"}`)
	req := httptest.NewRequest(http.MethodPut, "/messages/10/status", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	deps.messages.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}
