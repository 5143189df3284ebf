package database

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"postpilot/internal/config"
	"postpilot/internal/core/post"
)

type PostRepositoryDatabase struct{}

func NewPostRepositoryDatabase() *PostRepositoryDatabase {
	return &PostRepositoryDatabase{}
}

func (repo *PostRepositoryDatabase) Create(ctx context.Context, p *post.Post) (*post.Post, error) {
	if err := config.DB.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

func (repo *PostRepositoryDatabase) FindByID(ctx context.Context, id string) (*post.Post, error) {
	var p post.Post
	if err := config.DB.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, post.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (repo *PostRepositoryDatabase) FindOwnedByIDs(ctx context.Context, userID string, ids []string) ([]*post.Post, error) {
	var posts []*post.Post
	if err := config.DB.WithContext(ctx).
		Where("user_id = ? AND id IN ?", userID, ids).
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (repo *PostRepositoryDatabase) SetScheduled(ctx context.Context, id string, scheduledAt time.Time) error {
	return config.DB.WithContext(ctx).Model(&post.Post{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": post.StatusScheduled, "scheduled_at": scheduledAt}).Error
}

func (repo *PostRepositoryDatabase) SetStatus(ctx context.Context, id string, status string) error {
	return config.DB.WithContext(ctx).Model(&post.Post{}).
		Where("id = ?", id).
		Update("status", status).Error
}
