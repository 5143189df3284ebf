package postapp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid"

	postEntity "postpilot/internal/core/post"
	postPort "postpilot/internal/ports/post"
)

// PostService owns draft creation; scheduling and publishing mutate posts
// through their own services.
type PostService struct {
	PostRepository postPort.PostRepository
}

func NewPostService(postRepo postPort.PostRepository) *PostService {
	return &PostService{PostRepository: postRepo}
}

// CreatePost stores a draft post for the user with an optional target
// platform set.
func (s *PostService) CreatePost(ctx context.Context, userID, content string, platforms []string) (*postPort.PostDTO, error) {
	uid, err := uuid.FromString(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid userID: %w", err)
	}

	p := &postEntity.Post{
		ID:        uuid.Must(uuid.NewV4()),
		UserID:    uid,
		Content:   content,
		Platforms: strings.Join(platforms, ","),
		Status:    postEntity.StatusDraft,
	}
	created, err := s.PostRepository.Create(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	return toDTO(created), nil
}

// GetPost returns one of the user's posts.
func (s *PostService) GetPost(ctx context.Context, userID, id string) (*postPort.PostDTO, error) {
	p, err := s.PostRepository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.UserID.String() != userID {
		return nil, postEntity.ErrNotFound
	}
	return toDTO(p), nil
}

func toDTO(p *postEntity.Post) *postPort.PostDTO {
	dto := &postPort.PostDTO{
		ID:        p.ID.String(),
		Content:   p.Content,
		Platforms: p.PlatformList(),
		Status:    p.Status,
	}
	if p.ScheduledAt != nil {
		at := p.ScheduledAt.UTC().Format(time.RFC3339)
		dto.ScheduledAt = &at
	}
	return dto
}
