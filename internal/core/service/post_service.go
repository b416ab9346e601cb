package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/devportfolio/portfolio-api/internal/core/domain"
	"github.com/devportfolio/portfolio-api/internal/core/ports"
)

const (
	defaultPostPageSize = 10
	maxPostPageSize     = 50

	defaultRelatedLimit = 3
	maxRelatedLimit     = 10
)

// PostService drives the blog post lifecycle: derivations happen in the
// domain, visibility and counters are decided here.
type PostService struct {
	repo   ports.PostRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewPostService(repo ports.PostRepository, logger zerolog.Logger) *PostService {
	return &PostService{repo: repo, logger: logger, now: time.Now}
}

func (s *PostService) CreatePost(ctx context.Context, input domain.NewPostInput, author domain.Author) (*domain.BlogPost, error) {
	post, err := domain.NewBlogPost(input, author, s.now().UTC())
	if err != nil {
		return nil, err
	}

	if err := s.ensureSlugFree(ctx, post.Slug, ""); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, post); err != nil {
		s.logger.Error().Err(err).Str("slug", post.Slug).Msg("failed to create post")
		return nil, err
	}

	s.logger.Info().
		Str("post_id", post.ID).
		Str("slug", post.Slug).
		Str("status", string(post.Status)).
		Msg("post created")
	return post, nil
}

// UpdatePost applies a partial edit. The slug only changes when the edit
// names one explicitly.
func (s *PostService) UpdatePost(ctx context.Context, id string, changes domain.PostChanges) (*domain.BlogPost, error) {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	prevSlug, prevStatus := post.Slug, post.Status
	if err := post.Apply(changes, s.now().UTC()); err != nil {
		return nil, err
	}

	if post.Slug != prevSlug {
		if err := s.ensureSlugFree(ctx, post.Slug, post.ID); err != nil {
			return nil, err
		}
	}

	updated, err := s.repo.Update(ctx, post)
	if err != nil {
		return nil, err
	}

	if updated.Status != prevStatus {
		s.logger.Info().
			Str("post_id", updated.ID).
			Str("from", string(prevStatus)).
			Str("to", string(updated.Status)).
			Msg("post status changed")
	}
	return updated, nil
}

func (s *PostService) DeletePost(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("post_id", id).Msg("post deleted")
	return nil
}

func (s *PostService) GetPost(ctx context.Context, id string, viewer *domain.Identity) (*domain.BlogPost, error) {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, post, viewer)
}

func (s *PostService) GetPostBySlug(ctx context.Context, slug string, viewer *domain.Identity) (*domain.BlogPost, error) {
	post, err := s.repo.FindBySlug(ctx, strings.ToLower(strings.TrimSpace(slug)))
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, post, viewer)
}

// resolve hides unpublished posts from everyone but admins and counts a
// view for published ones.
func (s *PostService) resolve(ctx context.Context, post *domain.BlogPost, viewer *domain.Identity) (*domain.BlogPost, error) {
	if !post.IsPublished() {
		if !viewer.IsAdmin() {
			return nil, domain.ErrPostNotFound
		}
		return post, nil
	}

	viewed, err := s.RecordView(ctx, post.ID)
	if errors.Is(err, domain.ErrPostNotFound) && viewer.IsAdmin() {
		// Unpublished between the read and the increment.
		return s.repo.FindByID(ctx, post.ID)
	}
	return viewed, err
}

func (s *PostService) RecordView(ctx context.Context, id string) (*domain.BlogPost, error) {
	return s.repo.IncrementViews(ctx, id)
}

func (s *PostService) LikePost(ctx context.Context, id string) (int64, error) {
	return s.repo.IncrementLikes(ctx, id)
}

func (s *PostService) ListPosts(ctx context.Context, input ports.ListPostsInput) (*ports.ListPostsResult, error) {
	page, limit := normalizePage(input.Page, input.Limit, defaultPostPageSize, maxPostPageSize)

	status := input.Status
	if !input.Viewer.IsAdmin() {
		status = domain.StatusPublished
	}

	sort := input.Sort
	if sort == "" {
		sort = ports.SortNewest
	}

	filter := ports.ListPostsFilter{
		Status:   status,
		Category: input.Category,
		Featured: input.Featured,
		Search:   strings.TrimSpace(input.Search),
		Sort:     sort,
		Page:     page,
		Limit:    limit,
	}

	posts, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	return &ports.ListPostsResult{
		Items:      posts,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}, nil
}

// RelatedPosts returns published posts sharing a category or a tag with the
// published post id.
func (s *PostService) RelatedPosts(ctx context.Context, id string, limit int) ([]*domain.BlogPost, error) {
	if limit <= 0 {
		limit = defaultRelatedLimit
	}
	if limit > maxRelatedLimit {
		limit = maxRelatedLimit
	}

	source, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !source.IsPublished() {
		return nil, domain.ErrPostNotFound
	}

	return s.repo.FindRelated(ctx, ports.RelatedFilter{
		ExcludeID: source.ID,
		Category:  source.Category,
		Tags:      source.Tags,
		Limit:     limit,
	})
}

func (s *PostService) ensureSlugFree(ctx context.Context, slug, excludeID string) error {
	taken, err := s.repo.ExistsBySlug(ctx, slug, excludeID)
	if err != nil {
		return fmt.Errorf("check slug: %w", err)
	}
	if taken {
		return domain.ErrSlugTaken
	}
	return nil
}
