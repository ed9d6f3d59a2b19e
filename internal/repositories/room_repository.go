package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/vnioa/StudyMate-sub010/internal/models"
)

var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrParticipantNotFound = errors.New("participant not found")
)

// RoomRepository abstracts room and participant persistence.
type RoomRepository interface {
	CreateRoom(ctx context.Context, name, kind string, creatorID int, participantIDs []int) (models.Room, error)
	GetRoom(ctx context.Context, roomID int) (models.Room, error)
	ListRoomsForUser(ctx context.Context, userID int, search string) ([]models.RoomSummary, error)
	ListParticipants(ctx context.Context, roomID int) ([]models.Participant, error)
	GetParticipant(ctx context.Context, roomID, userID int) (models.Participant, error)
	IsParticipant(ctx context.Context, roomID, userID int) (bool, error)
	UpdateSettings(ctx context.Context, roomID int, patch models.RoomSettingsPatch) error
	UpdateStatus(ctx context.Context, roomID int, status string) error
	RemoveParticipant(ctx context.Context, roomID, userID int) error
	TouchRoom(ctx context.Context, roomID int) error
}

// RoomRepo is a sqlx implementation of RoomRepository.
type RoomRepo struct {
	db *sqlx.DB
}

// NewRoomRepo constructs a RoomRepo.
func NewRoomRepo(db *sqlx.DB) *RoomRepo {
	return &RoomRepo{db: db}
}

// CreateRoom inserts a room and its full participant roster atomically.
// Listed participants join as members, the creator as admin.
func (r *RoomRepo) CreateRoom(ctx context.Context, name, kind string, creatorID int, participantIDs []int) (models.Room, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Room{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var room models.Room
	if err = tx.QueryRowxContext(ctx,
		`INSERT INTO rooms (name, kind, creator_id) VALUES ($1, $2, $3)
         RETURNING id, name, kind, creator_id, notification, theme, encrypted, status, created_at, updated_at`,
		name, kind, creatorID).StructScan(&room); err != nil {
		return models.Room{}, err
	}

	// dedupe members, creator is always inserted last with role admin
	memberSet := map[int]struct{}{}
	for _, id := range participantIDs {
		if id != creatorID {
			memberSet[id] = struct{}{}
		}
	}
	for id := range memberSet {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO room_participants (room_id, user_id, role) VALUES ($1, $2, $3)`,
			room.ID, id, models.RoleMember); err != nil {
			return models.Room{}, err
		}
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO room_participants (room_id, user_id, role) VALUES ($1, $2, $3)`,
		room.ID, creatorID, models.RoleAdmin); err != nil {
		return models.Room{}, err
	}

	if err = tx.Commit(); err != nil {
		return models.Room{}, err
	}
	return room, nil
}

// GetRoom fetches a room by id.
func (r *RoomRepo) GetRoom(ctx context.Context, roomID int) (models.Room, error) {
	var room models.Room
	err := r.db.GetContext(ctx, &room,
		`SELECT id, name, kind, creator_id, notification, theme, encrypted, status, created_at, updated_at
         FROM rooms WHERE id=$1 AND status <> 'deleted'`, roomID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Room{}, ErrRoomNotFound
	}
	return room, err
}

// ListRoomsForUser returns rooms the user participates in, newest
// activity first, with per-caller message and unread counters.
func (r *RoomRepo) ListRoomsForUser(ctx context.Context, userID int, search string) ([]models.RoomSummary, error) {
	query := `SELECT r.id, r.name, r.kind, r.creator_id, r.notification, r.theme, r.encrypted, r.status, r.created_at, r.updated_at,
            (SELECT COUNT(*) FROM messages m WHERE m.room_id = r.id) AS message_count,
            (SELECT COUNT(*) FROM messages m WHERE m.room_id = r.id AND m.author_id <> $1
               AND NOT EXISTS (SELECT 1 FROM message_reads mr WHERE mr.message_id = m.id AND mr.user_id = $1)) AS unread_count
        FROM rooms r
        INNER JOIN room_participants rp ON rp.room_id = r.id
        WHERE rp.user_id = $1 AND r.status <> 'deleted'
          AND ($2 = '' OR r.name ILIKE '%' || $2 || '%')
        ORDER BY r.updated_at DESC`
	var rooms []models.RoomSummary
	err := r.db.SelectContext(ctx, &rooms, query, userID, search)
	return rooms, err
}

// ListParticipants returns the roster ordered by join time.
func (r *RoomRepo) ListParticipants(ctx context.Context, roomID int) ([]models.Participant, error) {
	var participants []models.Participant
	err := r.db.SelectContext(ctx, &participants,
		`SELECT room_id, user_id, role, joined_at, last_read_at FROM room_participants
         WHERE room_id=$1 ORDER BY joined_at ASC`, roomID)
	return participants, err
}

// GetParticipant fetches a single membership record.
func (r *RoomRepo) GetParticipant(ctx context.Context, roomID, userID int) (models.Participant, error) {
	var p models.Participant
	err := r.db.GetContext(ctx, &p,
		`SELECT room_id, user_id, role, joined_at, last_read_at FROM room_participants
         WHERE room_id=$1 AND user_id=$2`, roomID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Participant{}, ErrParticipantNotFound
	}
	return p, err
}

// IsParticipant checks whether a user belongs to the room.
func (r *RoomRepo) IsParticipant(ctx context.Context, roomID, userID int) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM room_participants WHERE room_id=$1 AND user_id=$2)`, roomID, userID)
	return exists, err
}

// UpdateSettings applies the non-nil fields of the patch and bumps updated_at.
func (r *RoomRepo) UpdateSettings(ctx context.Context, roomID int, patch models.RoomSettingsPatch) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE rooms SET
            name = COALESCE($2, name),
            notification = COALESCE($3, notification),
            theme = COALESCE($4, theme),
            updated_at = NOW()
         WHERE id=$1 AND status <> 'deleted'`,
		roomID, patch.Name, patch.Notification, patch.Theme)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrRoomNotFound
	}
	return nil
}

// UpdateStatus transitions the room lifecycle status.
func (r *RoomRepo) UpdateStatus(ctx context.Context, roomID int, status string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE rooms SET status=$2, updated_at=NOW() WHERE id=$1`, roomID, status)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrRoomNotFound
	}
	return nil
}

// RemoveParticipant deletes the membership row. Removing an absent
// participant is not an error.
func (r *RoomRepo) RemoveParticipant(ctx context.Context, roomID, userID int) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM room_participants WHERE room_id=$1 AND user_id=$2`, roomID, userID)
	return err
}

// TouchRoom bumps the room's updated_at so listings sort by activity.
func (r *RoomRepo) TouchRoom(ctx context.Context, roomID int) error {
	_, err := r.db.ExecContext(ctx, `UPDATE rooms SET updated_at=NOW() WHERE id=$1`, roomID)
	return err
}
