package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/vnioa/StudyMate-sub010/internal/models"
	"github.com/vnioa/StudyMate-sub010/internal/observability"
	"github.com/vnioa/StudyMate-sub010/internal/repositories"
)

// RoomService owns room lifecycle and roster logic.
type RoomService struct {
	rooms repositories.RoomRepository
}

// NewRoomService constructs a RoomService.
func NewRoomService(rooms repositories.RoomRepository) *RoomService {
	return &RoomService{rooms: rooms}
}

// Create makes a room with its initial roster in one transaction.
// A direct room needs exactly one counterpart; the creator always joins
// as admin.
func (s *RoomService) Create(ctx context.Context, name, kind string, creatorID int, participantIDs []int) (models.Room, error) {
	switch kind {
	case models.RoomKindDirect:
		if len(participantIDs) != 1 {
			return models.Room{}, fmt.Errorf("%w: direct room requires exactly one counterpart", ErrValidation)
		}
		if participantIDs[0] == creatorID {
			return models.Room{}, fmt.Errorf("%w: cannot create a direct room with yourself", ErrValidation)
		}
	case models.RoomKindGroup:
		if name == "" {
			return models.Room{}, fmt.Errorf("%w: group room requires a name", ErrValidation)
		}
	default:
		return models.Room{}, fmt.Errorf("%w: unknown room kind %q", ErrValidation, kind)
	}

	room, err := s.rooms.CreateRoom(ctx, name, kind, creatorID, participantIDs)
	if err != nil {
		log.Error().Err(err).Str("kind", kind).Int("creator_id", creatorID).Msg("room create failed")
		return models.Room{}, err
	}

	_ = observability.PublishEvent(ctx, "chat.room.created", observability.EventEnvelope{
		EventType: "room_events",
		EventName: "room_created",
		Payload:   room,
	})
	return room, nil
}

// List returns the caller's rooms with message and unread counters,
// optionally filtered by a case-insensitive name substring.
func (s *RoomService) List(ctx context.Context, userID int, search string) ([]models.RoomSummary, error) {
	rooms, err := s.rooms.ListRoomsForUser(ctx, userID, search)
	if err != nil {
		log.Error().Err(err).Int("user_id", userID).Msg("room list failed")
		return nil, err
	}
	if rooms == nil {
		rooms = []models.RoomSummary{}
	}
	return rooms, nil
}

// UpdateSettings applies an admin's settings patch and bumps updated_at.
func (s *RoomService) UpdateSettings(ctx context.Context, roomID, callerID int, patch models.RoomSettingsPatch) error {
	if err := s.requireAdmin(ctx, roomID, callerID); err != nil {
		return err
	}

	if err := s.rooms.UpdateSettings(ctx, roomID, patch); err != nil {
		if errors.Is(err, repositories.ErrRoomNotFound) {
			return fmt.Errorf("%w: room %d", ErrNotFound, roomID)
		}
		log.Error().Err(err).Int("room_id", roomID).Msg("settings update failed")
		return err
	}
	return nil
}

// Archive transitions an active room to archived. Admin only.
func (s *RoomService) Archive(ctx context.Context, roomID, callerID int) error {
	if err := s.requireAdmin(ctx, roomID, callerID); err != nil {
		return err
	}

	if err := s.rooms.UpdateStatus(ctx, roomID, models.RoomStatusArchived); err != nil {
		if errors.Is(err, repositories.ErrRoomNotFound) {
			return fmt.Errorf("%w: room %d", ErrNotFound, roomID)
		}
		return err
	}
	return nil
}

// Leave removes the caller from the roster. Leaving a room the caller
// is not in is not an error.
func (s *RoomService) Leave(ctx context.Context, roomID, userID int) error {
	if _, err := s.rooms.GetRoom(ctx, roomID); err != nil {
		if errors.Is(err, repositories.ErrRoomNotFound) {
			return fmt.Errorf("%w: room %d", ErrNotFound, roomID)
		}
		return err
	}
	return s.rooms.RemoveParticipant(ctx, roomID, userID)
}

// Participants returns the roster ordered by join time.
func (s *RoomService) Participants(ctx context.Context, roomID, callerID int) ([]models.Participant, error) {
	member, err := s.rooms.IsParticipant(ctx, roomID, callerID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, fmt.Errorf("%w: not a room participant", ErrPermission)
	}
	return s.rooms.ListParticipants(ctx, roomID)
}

func (s *RoomService) requireAdmin(ctx context.Context, roomID, callerID int) error {
	if _, err := s.rooms.GetRoom(ctx, roomID); err != nil {
		if errors.Is(err, repositories.ErrRoomNotFound) {
			return fmt.Errorf("%w: room %d", ErrNotFound, roomID)
		}
		return err
	}

	participant, err := s.rooms.GetParticipant(ctx, roomID, callerID)
	if err != nil {
		if errors.Is(err, repositories.ErrParticipantNotFound) {
			return fmt.Errorf("%w: not a room participant", ErrPermission)
		}
		return err
	}
	if participant.Role != models.RoleAdmin {
		return fmt.Errorf("%w: admin role required", ErrPermission)
	}
	return nil
}
