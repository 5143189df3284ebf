package database

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"postpilot/internal/config"
	"postpilot/internal/core/connection"
)

type ConnectionRepositoryDatabase struct{}

func NewConnectionRepositoryDatabase() *ConnectionRepositoryDatabase {
	return &ConnectionRepositoryDatabase{}
}

// Upsert replaces the credential row keyed by (user, platform, account) so
// reconnecting an account refreshes tokens in place.
func (repo *ConnectionRepositoryDatabase) Upsert(ctx context.Context, conn *connection.Connection) (*connection.Connection, error) {
	err := config.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "platform"}, {Name: "account_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"account_name",
			"access_token_encrypted",
			"refresh_token_encrypted",
			"access_token_hash",
			"refresh_token_hash",
			"expires_at",
			"status",
		}),
	}).Create(conn).Error
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func (repo *ConnectionRepositoryDatabase) FindConnected(ctx context.Context, userID, platform string) (*connection.Connection, error) {
	var conn connection.Connection
	if err := config.DB.WithContext(ctx).
		Where("user_id = ? AND platform = ? AND status = ?", userID, platform, connection.StatusConnected).
		First(&conn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, connection.ErrNotFound
		}
		return nil, err
	}
	return &conn, nil
}

func (repo *ConnectionRepositoryDatabase) ListByUser(ctx context.Context, userID string) ([]*connection.Connection, error) {
	var conns []*connection.Connection
	if err := config.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("platform, account_id").
		Find(&conns).Error; err != nil {
		return nil, err
	}
	return conns, nil
}

func (repo *ConnectionRepositoryDatabase) MarkExpired(ctx context.Context, id string) error {
	return config.DB.WithContext(ctx).Model(&connection.Connection{}).
		Where("id = ?", id).
		Update("status", connection.StatusExpired).Error
}

func (repo *ConnectionRepositoryDatabase) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	res := config.DB.WithContext(ctx).Model(&connection.Connection{}).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at < ? AND refresh_token_encrypted IS NULL",
			connection.StatusConnected, now).
		Update("status", connection.StatusExpired)
	return res.RowsAffected, res.Error
}
