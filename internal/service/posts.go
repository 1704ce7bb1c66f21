package service

import (
	"context"
	"errors"
	"strings"

	"socialnet/backend/internal/events"
	"socialnet/backend/internal/metrics"
	"socialnet/backend/internal/models"

	"gorm.io/gorm"
)

// Posts stores posts and scopes reads to the viewer's friends.
type Posts struct {
	db      *gorm.DB
	friends *Friends
	events  events.Publisher
}

// NewPosts creates a Posts service. friends resolves visibility sets.
func NewPosts(db *gorm.DB, friends *Friends, pub events.Publisher) *Posts {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Posts{db: db, friends: friends, events: pub}
}

// Create stores a post authored by authorID. imageURL is an optional media
// reference.
func (s *Posts) Create(ctx context.Context, authorID uint, content string, imageURL *string) (*models.Post, error) {
	if strings.TrimSpace(content) == "" {
		return nil, validation("content required")
	}
	if imageURL != nil && strings.TrimSpace(*imageURL) == "" {
		imageURL = nil
	}

	post := models.Post{AuthorID: authorID, Content: content, ImageURL: imageURL}
	if err := s.db.WithContext(ctx).Omit("Author").Create(&post).Error; err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Select("id", "username").First(&post.Author, authorID).Error; err != nil {
		return nil, err
	}

	metrics.PostsCreated.Inc()
	s.events.Publish(ctx, events.New(events.PostCreated, PostCreatedPayload{ID: post.ID, AuthorID: authorID}))
	return &post, nil
}

// VisibleTo returns posts by viewerID and by viewerID's accepted friends,
// newest first, with authors loaded.
func (s *Posts) VisibleTo(ctx context.Context, viewerID uint, page Page) ([]models.Post, error) {
	authors, err := s.friends.ListAccepted(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	authors = append(authors, viewerID)

	var posts []models.Post
	err = page.apply(s.db.WithContext(ctx).
		Preload("Author").
		Where("author_id IN ?", authors).
		Order("created_at DESC, id DESC")).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// Get returns a single post with its author loaded.
func (s *Posts) Get(ctx context.Context, postID uint) (*models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ctx).Preload("Author").First(&post, postID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("post not found")
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// Delete removes a post. Only its author may do it. The deleted post is
// returned so the caller can clean up its media.
func (s *Posts) Delete(ctx context.Context, postID, actorID uint) (*models.Post, error) {
	post, err := s.Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != actorID {
		return nil, forbidden("you can only delete your own posts")
	}
	if err := s.db.WithContext(ctx).Delete(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// PostCreatedPayload is the event payload for new posts.
type PostCreatedPayload struct {
	ID       uint `json:"id"`
	AuthorID uint `json:"author_id"`
}
