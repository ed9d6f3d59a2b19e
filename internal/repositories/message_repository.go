package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/vnioa/StudyMate-sub010/internal/models"
)

var ErrMessageNotFound = errors.New("message not found")

// MessageRepository defines interactions for room messages.
type MessageRepository interface {
	CreateMessage(ctx context.Context, msg models.Message) (models.Message, error)
	ListMessages(ctx context.Context, roomID, limit, offset int) ([]models.Message, error)
	GetMessage(ctx context.Context, messageID int) (models.Message, error)
	DeleteMessage(ctx context.Context, messageID int) error
	MarkAllRead(ctx context.Context, roomID, userID int) error
	UpdateStatus(ctx context.Context, messageID int, status string) error
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// CreateMessage stores a message and returns the persisted row.
func (r *MessageRepo) CreateMessage(ctx context.Context, msg models.Message) (models.Message, error) {
	var stored models.Message
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO messages (room_id, author_id, content, type, reply_to_id, reply_snapshot)
         VALUES ($1, $2, $3, $4, $5, $6)
         RETURNING id, room_id, author_id, content, type, reply_to_id, reply_snapshot, status, created_at`,
		msg.RoomID, msg.AuthorID, msg.Content, msg.Type, msg.ReplyToID, msg.ReplySnapshot).
		StructScan(&stored)
	return stored, err
}

// ListMessages returns one page of messages, newest first.
func (r *MessageRepo) ListMessages(ctx context.Context, roomID, limit, offset int) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs,
		`SELECT id, room_id, author_id, content, type, reply_to_id, reply_snapshot, status, created_at
         FROM messages WHERE room_id=$1
         ORDER BY created_at DESC, id DESC
         LIMIT $2 OFFSET $3`, roomID, limit, offset)
	return msgs, err
}

// GetMessage retrieves a single message.
func (r *MessageRepo) GetMessage(ctx context.Context, messageID int) (models.Message, error) {
	var msg models.Message
	err := r.db.GetContext(ctx, &msg,
		`SELECT id, room_id, author_id, content, type, reply_to_id, reply_snapshot, status, created_at
         FROM messages WHERE id=$1`, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	return msg, err
}

// DeleteMessage removes a message permanently.
func (r *MessageRepo) DeleteMessage(ctx context.Context, messageID int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE id=$1`, messageID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrMessageNotFound
	}
	return nil
}

// MarkAllRead upserts a read marker for every message in the room not
// authored by the user and records the participant's last read time.
func (r *MessageRepo) MarkAllRead(ctx context.Context, roomID, userID int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO message_reads (message_id, user_id, read_at)
         SELECT id, $2, NOW() FROM messages WHERE room_id=$1 AND author_id <> $2
         ON CONFLICT (message_id, user_id) DO UPDATE SET read_at = EXCLUDED.read_at`,
		roomID, userID); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE room_participants SET last_read_at = NOW() WHERE room_id=$1 AND user_id=$2`,
		roomID, userID); err != nil {
		return err
	}

	return tx.Commit()
}

// UpdateStatus sets the delivery status of a message.
func (r *MessageRepo) UpdateStatus(ctx context.Context, messageID int, status string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE messages SET status=$2 WHERE id=$1`, messageID, status)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrMessageNotFound
	}
	return nil
}
