package ports

import (
	"context"

	"github.com/devportfolio/portfolio-api/internal/core/domain"
)

// ListPostsInput carries all parameters for the blog listing endpoint.
// Viewer is nil for anonymous callers.
type ListPostsInput struct {
	Viewer   *domain.Identity
	Status   domain.PostStatus
	Category domain.Category
	Featured *bool
	Search   string
	Sort     PostSort
	Page     int
	Limit    int
}

// ListPostsResult is returned by ListPosts.
type ListPostsResult struct {
	Items      []*domain.BlogPost
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// PostService is the content lifecycle engine.
type PostService interface {
	CreatePost(ctx context.Context, input domain.NewPostInput, author domain.Author) (*domain.BlogPost, error)
	UpdatePost(ctx context.Context, id string, changes domain.PostChanges) (*domain.BlogPost, error)
	DeletePost(ctx context.Context, id string) error
	// GetPost and GetPostBySlug hide non-published posts from non-admin
	// viewers and record a view whenever the resolved post is published.
	GetPost(ctx context.Context, id string, viewer *domain.Identity) (*domain.BlogPost, error)
	GetPostBySlug(ctx context.Context, slug string, viewer *domain.Identity) (*domain.BlogPost, error)
	RecordView(ctx context.Context, id string) (*domain.BlogPost, error)
	LikePost(ctx context.Context, id string) (int64, error)
	ListPosts(ctx context.Context, input ListPostsInput) (*ListPostsResult, error)
	RelatedPosts(ctx context.Context, id string, limit int) ([]*domain.BlogPost, error)
}
