package service

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/vnioa/StudyMate-sub010/internal/cache"
	"github.com/vnioa/StudyMate-sub010/internal/models"
	"github.com/vnioa/StudyMate-sub010/internal/observability"
	"github.com/vnioa/StudyMate-sub010/internal/repositories"
)

// DefaultPageSize is the message page size when the caller passes none.
const DefaultPageSize = 50

// Notifier fans a notification out to every other room participant.
// Implementations must not block the caller on delivery.
type Notifier interface {
	NotifyRoom(roomID, excludeUserID int, title, body string, data map[string]string)
}

// MessageService owns message persistence, the cache write path and the
// notification trigger.
type MessageService struct {
	messages repositories.MessageRepository
	rooms    repositories.RoomRepository
	cache    cache.MessageCache
	notifier Notifier
}

// NewMessageService constructs a MessageService.
func NewMessageService(messages repositories.MessageRepository, rooms repositories.RoomRepository, msgCache cache.MessageCache, notifier Notifier) *MessageService {
	return &MessageService{
		messages: messages,
		rooms:    rooms,
		cache:    msgCache,
		notifier: notifier,
	}
}

// Send validates and persists a message, appends it to the room cache
// and triggers the notification fan-out. The call returns once the
// message is stored; notification delivery never affects the outcome.
func (s *MessageService) Send(ctx context.Context, roomID, authorID int, content, msgType string, replyToID *int) (models.Message, error) {
	switch msgType {
	case models.MessageTypeText:
		if content == "" {
			return models.Message{}, fmt.Errorf("%w: text message requires content", ErrValidation)
		}
		if utf8.RuneCountInString(content) > models.MaxContentLength {
			return models.Message{}, fmt.Errorf("%w: content exceeds %d characters", ErrValidation, models.MaxContentLength)
		}
	case models.MessageTypeImage, models.MessageTypeFile, models.MessageTypeSystem:
	default:
		return models.Message{}, fmt.Errorf("%w: %q", ErrUnsupportedType, msgType)
	}

	room, err := s.rooms.GetRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, repositories.ErrRoomNotFound) {
			return models.Message{}, fmt.Errorf("%w: room %d", ErrNotFound, roomID)
		}
		return models.Message{}, err
	}

	member, err := s.rooms.IsParticipant(ctx, roomID, authorID)
	if err != nil {
		return models.Message{}, err
	}
	if !member {
		return models.Message{}, fmt.Errorf("%w: not a room participant", ErrPermission)
	}

	msg := models.Message{
		RoomID:   roomID,
		AuthorID: authorID,
		Content:  content,
		Type:     msgType,
	}
	if replyToID != nil {
		replied, err := s.messages.GetMessage(ctx, *replyToID)
		if err != nil || replied.RoomID != roomID {
			return models.Message{}, fmt.Errorf("%w: replied-to message", ErrNotFound)
		}
		snapshot := replied.Content
		msg.ReplyToID = replyToID
		msg.ReplySnapshot = &snapshot
	}

	stored, err := s.messages.CreateMessage(ctx, msg)
	if err != nil {
		log.Error().Err(err).Int("room_id", roomID).Msg("message store failed")
		return models.Message{}, err
	}

	if err := s.rooms.TouchRoom(ctx, roomID); err != nil {
		log.Warn().Err(err).Int("room_id", roomID).Msg("room touch failed")
	}
	if err := s.cache.Append(ctx, roomID, stored); err != nil {
		log.Warn().Err(err).Int("room_id", roomID).Msg("cache append failed")
	}

	if room.Notification && s.notifier != nil {
		s.notifier.NotifyRoom(roomID, authorID, room.Name, preview(stored), map[string]string{
			"room_id":    fmt.Sprint(roomID),
			"message_id": fmt.Sprint(stored.ID),
		})
	}

	_ = observability.PublishEvent(ctx, "chat.message.sent", observability.EventEnvelope{
		EventType: "message_events",
		EventName: "message_sent",
		Payload:   stored,
	})
	return stored, nil
}

// List returns one page of messages in chronological order. Page one is
// served from the cache when a non-empty entry exists; everything else
// reads from the database.
func (s *MessageService) List(ctx context.Context, roomID, callerID, page, pageSize int) ([]models.Message, error) {
	member, err := s.rooms.IsParticipant(ctx, roomID, callerID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, fmt.Errorf("%w: not a room participant", ErrPermission)
	}

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	if page == 1 {
		cached, err := s.cache.Recent(ctx, roomID)
		switch {
		case err != nil:
			observability.IncCacheLookup("error")
			log.Warn().Err(err).Int("room_id", roomID).Msg("cache read failed, falling back to db")
		case len(cached) > 0:
			observability.IncCacheLookup("hit")
			if len(cached) > pageSize {
				cached = cached[len(cached)-pageSize:]
			}
			return cached, nil
		default:
			observability.IncCacheLookup("miss")
		}
	}

	msgs, err := s.messages.ListMessages(ctx, roomID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}

	// rows come newest-first, flip to chronological
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	return msgs, nil
}

// MarkRead stamps a read marker on every message in the room the caller
// did not author.
func (s *MessageService) MarkRead(ctx context.Context, roomID, userID int) error {
	member, err := s.rooms.IsParticipant(ctx, roomID, userID)
	if err != nil {
		return err
	}
	if !member {
		return fmt.Errorf("%w: not a room participant", ErrPermission)
	}
	return s.messages.MarkAllRead(ctx, roomID, userID)
}

// Delete removes a message permanently. Only the author may delete.
// The room's cache entry is invalidated so stale copies cannot be served.
func (s *MessageService) Delete(ctx context.Context, messageID, callerID int) (models.Message, error) {
	msg, err := s.messages.GetMessage(ctx, messageID)
	if err != nil {
		if errors.Is(err, repositories.ErrMessageNotFound) {
			return models.Message{}, fmt.Errorf("%w: message %d", ErrNotFound, messageID)
		}
		return models.Message{}, err
	}
	if msg.AuthorID != callerID {
		return models.Message{}, fmt.Errorf("%w: only the author can delete a message", ErrPermission)
	}

	if err := s.messages.DeleteMessage(ctx, messageID); err != nil {
		if errors.Is(err, repositories.ErrMessageNotFound) {
			return models.Message{}, fmt.Errorf("%w: message %d", ErrNotFound, messageID)
		}
		return models.Message{}, err
	}

	if err := s.cache.Invalidate(ctx, msg.RoomID); err != nil {
		log.Warn().Err(err).Int("room_id", msg.RoomID).Msg("cache invalidate failed")
	}

	_ = observability.PublishEvent(ctx, "chat.message.deleted", observability.EventEnvelope{
		EventType: "message_events",
		EventName: "message_deleted",
		Payload:   map[string]int{"message_id": messageID, "room_id": msg.RoomID},
	})
	return msg, nil
}

var statusRank = map[string]int{
	models.MessageStatusSent:      0,
	models.MessageStatusDelivered: 1,
	models.MessageStatusRead:      2,
}

// UpdateStatus advances the delivery status. The progression
// sent -> delivered -> read is monotonic; failed is terminal and only
// reachable from sent.
func (s *MessageService) UpdateStatus(ctx context.Context, messageID, callerID int, status string) error {
	msg, err := s.messages.GetMessage(ctx, messageID)
	if err != nil {
		if errors.Is(err, repositories.ErrMessageNotFound) {
			return fmt.Errorf("%w: message %d", ErrNotFound, messageID)
		}
		return err
	}

	member, err := s.rooms.IsParticipant(ctx, msg.RoomID, callerID)
	if err != nil {
		return err
	}
	if !member {
		return fmt.Errorf("%w: not a room participant", ErrPermission)
	}

	if status == msg.Status {
		return nil
	}
	if status == models.MessageStatusFailed {
		if msg.Status != models.MessageStatusSent {
			return fmt.Errorf("%w: failed is only reachable from sent", ErrValidation)
		}
		return s.messages.UpdateStatus(ctx, messageID, status)
	}

	targetRank, ok := statusRank[status]
	if !ok {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	currentRank, ok := statusRank[msg.Status]
	if !ok || targetRank < currentRank {
		return fmt.Errorf("%w: status cannot move from %q to %q", ErrValidation, msg.Status, status)
	}
	return s.messages.UpdateStatus(ctx, messageID, status)
}

func preview(msg models.Message) string {
	if msg.Type != models.MessageTypeText {
		return "[" + msg.Type + "]"
	}
	runes := []rune(msg.Content)
	if len(runes) > 80 {
		return string(runes[:80]) + "…"
	}
	return msg.Content
}
