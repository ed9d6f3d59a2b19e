package repositories

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/vnioa/StudyMate-sub010/internal/models"
)

// DeviceTokenRepository manages push delivery tokens.
type DeviceTokenRepository interface {
	Upsert(ctx context.Context, userID int, token, device string) error
	Remove(ctx context.Context, userID int, token string) error
	RemoveToken(ctx context.Context, token string) error
	TokensForUsers(ctx context.Context, userIDs []int) ([]models.DeviceToken, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// DeviceTokenRepo is a sqlx implementation of DeviceTokenRepository.
type DeviceTokenRepo struct {
	db *sqlx.DB
}

// NewDeviceTokenRepo constructs a DeviceTokenRepo.
func NewDeviceTokenRepo(db *sqlx.DB) *DeviceTokenRepo {
	return &DeviceTokenRepo{db: db}
}

// Upsert registers a token or refreshes its last-used timestamp.
func (r *DeviceTokenRepo) Upsert(ctx context.Context, userID int, token, device string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO device_tokens (user_id, token, device, last_used_at) VALUES ($1, $2, $3, NOW())
         ON CONFLICT (user_id, token) DO UPDATE SET device = EXCLUDED.device, last_used_at = NOW()`,
		userID, token, device)
	return err
}

// Remove deletes one of the user's tokens.
func (r *DeviceTokenRepo) Remove(ctx context.Context, userID int, token string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM device_tokens WHERE user_id=$1 AND token=$2`, userID, token)
	return err
}

// RemoveToken prunes a token the push provider reported undeliverable.
func (r *DeviceTokenRepo) RemoveToken(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM device_tokens WHERE token=$1`, token)
	return err
}

// TokensForUsers resolves all registered tokens for the given users.
func (r *DeviceTokenRepo) TokensForUsers(ctx context.Context, userIDs []int) ([]models.DeviceToken, error) {
	if len(userIDs) == 0 {
		return []models.DeviceToken{}, nil
	}
	query, args, err := sqlx.In(
		`SELECT user_id, token, device, last_used_at FROM device_tokens WHERE user_id IN (?)`, userIDs)
	if err != nil {
		return nil, err
	}
	query = r.db.Rebind(query)

	var tokens []models.DeviceToken
	err = r.db.SelectContext(ctx, &tokens, query, args...)
	return tokens, err
}

// DeleteOlderThan removes tokens unused since the cutoff.
func (r *DeviceTokenRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM device_tokens WHERE last_used_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
