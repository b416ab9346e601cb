package ports

import (
	"context"

	"github.com/devportfolio/portfolio-api/internal/core/domain"
)

// PostSort selects the ordering of a post listing.
type PostSort string

const (
	SortNewest  PostSort = "newest"
	SortOldest  PostSort = "oldest"
	SortPopular PostSort = "popular"
	SortTitle   PostSort = "title"
)

func ParsePostSort(s string) (PostSort, bool) {
	switch PostSort(s) {
	case "":
		return SortNewest, true
	case SortNewest, SortOldest, SortPopular, SortTitle:
		return PostSort(s), true
	default:
		return "", false
	}
}

// ListPostsFilter carries the store-level query for a post listing.
// Visibility (published-only for anonymous callers) is decided by the
// service before the filter reaches the repository.
type ListPostsFilter struct {
	Status   domain.PostStatus // empty = any status
	Category domain.Category   // empty = any category
	Featured *bool             // nil = either
	Search   string            // case-insensitive substring over title, excerpt, content, tags
	Sort     PostSort
	Page     int // 1-based
	Limit    int
}

// RelatedFilter selects published posts sharing a category or a tag with
// a source post.
type RelatedFilter struct {
	ExcludeID string
	Category  domain.Category
	Tags      []string
	Limit     int
}

// PostRepository defines persistence operations for blog posts.
type PostRepository interface {
	// Create inserts a post and assigns its ID. A duplicate slug yields
	// domain.ErrSlugTaken.
	Create(ctx context.Context, post *domain.BlogPost) error
	FindByID(ctx context.Context, id string) (*domain.BlogPost, error)
	FindBySlug(ctx context.Context, slug string) (*domain.BlogPost, error)
	// ExistsBySlug reports whether another post (not excludeID) owns slug.
	ExistsBySlug(ctx context.Context, slug, excludeID string) (bool, error)
	// Update persists the editable fields of post. Counters are never written.
	Update(ctx context.Context, post *domain.BlogPost) (*domain.BlogPost, error)
	Delete(ctx context.Context, id string) error
	// IncrementViews atomically adds one view to a published post and returns
	// the updated post. Non-published posts report ErrPostNotFound.
	IncrementViews(ctx context.Context, id string) (*domain.BlogPost, error)
	// IncrementLikes atomically adds one like to a published post and
	// returns the new total. Non-published posts yield domain.ErrPostNotFound.
	IncrementLikes(ctx context.Context, id string) (int64, error)
	List(ctx context.Context, filter ListPostsFilter) ([]*domain.BlogPost, int64, error)
	FindRelated(ctx context.Context, filter RelatedFilter) ([]*domain.BlogPost, error)
}
