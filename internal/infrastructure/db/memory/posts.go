package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/devportfolio/portfolio-api/internal/core/domain"
	"github.com/devportfolio/portfolio-api/internal/core/ports"
)

// PostRepository implements ports.PostRepository on a Store.
type PostRepository struct {
	s *Store
}

func clonePost(p *domain.BlogPost) *domain.BlogPost {
	c := *p
	c.Tags = slices.Clone(p.Tags)
	if c.Tags == nil {
		c.Tags = []string{}
	}
	c.SEO.Keywords = slices.Clone(p.SEO.Keywords)
	if p.PublishedAt != nil {
		t := *p.PublishedAt
		c.PublishedAt = &t
	}
	return &c
}

func (r *PostRepository) slugOwner(slug string) (string, bool) {
	for id, p := range r.s.posts {
		if p.Slug == slug {
			return id, true
		}
	}
	return "", false
}

func (r *PostRepository) Create(_ context.Context, p *domain.BlogPost) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, taken := r.slugOwner(p.Slug); taken {
		return domain.ErrSlugTaken
	}
	p.ID = newID()
	r.s.posts[p.ID] = clonePost(p)
	return nil
}

func (r *PostRepository) FindByID(_ context.Context, id string) (*domain.BlogPost, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.posts[id]
	if !ok {
		return nil, domain.ErrPostNotFound
	}
	return clonePost(p), nil
}

func (r *PostRepository) FindBySlug(_ context.Context, slug string) (*domain.BlogPost, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	id, ok := r.slugOwner(slug)
	if !ok {
		return nil, domain.ErrPostNotFound
	}
	return clonePost(r.s.posts[id]), nil
}

func (r *PostRepository) ExistsBySlug(_ context.Context, slug, excludeID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	id, ok := r.slugOwner(slug)
	return ok && id != excludeID, nil
}

// Update copies editable fields only; views, likes and createdAt keep their
// stored values.
func (r *PostRepository) Update(_ context.Context, p *domain.BlogPost) (*domain.BlogPost, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.posts[p.ID]
	if !ok {
		return nil, domain.ErrPostNotFound
	}
	if owner, taken := r.slugOwner(p.Slug); taken && owner != p.ID {
		return nil, domain.ErrSlugTaken
	}

	next := clonePost(p)
	next.Views = stored.Views
	next.Likes = stored.Likes
	next.CreatedAt = stored.CreatedAt
	next.Author = stored.Author
	r.s.posts[p.ID] = next
	return clonePost(next), nil
}

func (r *PostRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.posts[id]; !ok {
		return domain.ErrPostNotFound
	}
	delete(r.s.posts, id)
	return nil
}

func (r *PostRepository) IncrementViews(_ context.Context, id string) (*domain.BlogPost, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.posts[id]
	if !ok || !p.IsPublished() {
		return nil, domain.ErrPostNotFound
	}
	p.Views++
	return clonePost(p), nil
}

func (r *PostRepository) IncrementLikes(_ context.Context, id string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.posts[id]
	if !ok || !p.IsPublished() {
		return 0, domain.ErrPostNotFound
	}
	p.Likes++
	return p.Likes, nil
}

func (r *PostRepository) List(_ context.Context, f ports.ListPostsFilter) ([]*domain.BlogPost, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var matched []*domain.BlogPost
	for _, p := range r.s.posts {
		if matchesList(p, f) {
			matched = append(matched, clonePost(p))
		}
	}
	sortPosts(matched, f.Sort)

	return page(matched, f.Page, f.Limit), int64(len(matched)), nil
}

func matchesList(p *domain.BlogPost, f ports.ListPostsFilter) bool {
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.Featured != nil && p.Featured != *f.Featured {
		return false
	}
	if f.Search == "" {
		return true
	}
	if containsFold(p.Title, f.Search) || containsFold(p.Excerpt, f.Search) || containsFold(p.Content, f.Search) {
		return true
	}
	return slices.ContainsFunc(p.Tags, func(t string) bool { return containsFold(t, f.Search) })
}

func (r *PostRepository) FindRelated(_ context.Context, f ports.RelatedFilter) ([]*domain.BlogPost, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var matched []*domain.BlogPost
	for id, p := range r.s.posts {
		if id == f.ExcludeID || !p.IsPublished() {
			continue
		}
		sharesTag := slices.ContainsFunc(p.Tags, func(t string) bool { return slices.Contains(f.Tags, t) })
		if p.Category == f.Category || sharesTag {
			matched = append(matched, clonePost(p))
		}
	}
	sortPosts(matched, ports.SortNewest)

	if f.Limit > 0 && len(matched) > f.Limit {
		matched = matched[:f.Limit]
	}
	return matched, nil
}

// publishedOrZero orders unpublished posts after published ones when sorting
// newest first, matching how Mongo sorts null dates.
func publishedOrZero(p *domain.BlogPost) time.Time {
	if p.PublishedAt == nil {
		return time.Time{}
	}
	return *p.PublishedAt
}

func sortPosts(posts []*domain.BlogPost, s ports.PostSort) {
	switch s {
	case ports.SortOldest:
		sortBy(posts, func(a, b *domain.BlogPost) bool {
			pa, pb := publishedOrZero(a), publishedOrZero(b)
			if !pa.Equal(pb) {
				return pa.Before(pb)
			}
			return a.CreatedAt.Before(b.CreatedAt)
		})
	case ports.SortPopular:
		sortBy(posts, func(a, b *domain.BlogPost) bool {
			if a.Views != b.Views {
				return a.Views > b.Views
			}
			return publishedOrZero(a).After(publishedOrZero(b))
		})
	case ports.SortTitle:
		sortBy(posts, func(a, b *domain.BlogPost) bool { return strings.Compare(a.Title, b.Title) < 0 })
	default:
		sortBy(posts, func(a, b *domain.BlogPost) bool {
			pa, pb := publishedOrZero(a), publishedOrZero(b)
			if !pa.Equal(pb) {
				return pa.After(pb)
			}
			return a.CreatedAt.After(b.CreatedAt)
		})
	}
}
