package service

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devportfolio/portfolio-api/internal/core/domain"
	"github.com/devportfolio/portfolio-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repository
// ---------------------------------------------------------------------------

type stubPostRepo struct {
	mu         sync.Mutex
	posts      map[string]*domain.BlogPost
	seq        int
	lastFilter ports.ListPostsFilter
	lastRel    ports.RelatedFilter
}

func newStubPostRepo() *stubPostRepo {
	return &stubPostRepo{posts: make(map[string]*domain.BlogPost)}
}

func clonePost(p *domain.BlogPost) *domain.BlogPost {
	clone := *p
	clone.Tags = append([]string(nil), p.Tags...)
	return &clone
}

func (r *stubPostRepo) Create(_ context.Context, p *domain.BlogPost) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.posts {
		if existing.Slug == p.Slug {
			return domain.ErrSlugTaken
		}
	}
	r.seq++
	p.ID = "post-" + strconv.Itoa(r.seq)
	r.posts[p.ID] = clonePost(p)
	return nil
}

func (r *stubPostRepo) FindByID(_ context.Context, id string) (*domain.BlogPost, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, domain.ErrPostNotFound
	}
	return clonePost(p), nil
}

func (r *stubPostRepo) FindBySlug(_ context.Context, slug string) (*domain.BlogPost, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.posts {
		if p.Slug == slug {
			return clonePost(p), nil
		}
	}
	return nil, domain.ErrPostNotFound
}

func (r *stubPostRepo) ExistsBySlug(_ context.Context, slug, excludeID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, p := range r.posts {
		if p.Slug == slug && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

// Update writes editable fields only, like the real store.
func (r *stubPostRepo) Update(_ context.Context, p *domain.BlogPost) (*domain.BlogPost, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.posts[p.ID]
	if !ok {
		return nil, domain.ErrPostNotFound
	}
	views, likes := stored.Views, stored.Likes
	next := clonePost(p)
	next.Views, next.Likes = views, likes
	r.posts[p.ID] = next
	return clonePost(next), nil
}

func (r *stubPostRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return domain.ErrPostNotFound
	}
	delete(r.posts, id)
	return nil
}

func (r *stubPostRepo) IncrementViews(_ context.Context, id string) (*domain.BlogPost, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok || !p.IsPublished() {
		return nil, domain.ErrPostNotFound
	}
	p.Views++
	return clonePost(p), nil
}

func (r *stubPostRepo) IncrementLikes(_ context.Context, id string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok || !p.IsPublished() {
		return 0, domain.ErrPostNotFound
	}
	p.Likes++
	return p.Likes, nil
}

func (r *stubPostRepo) List(_ context.Context, f ports.ListPostsFilter) ([]*domain.BlogPost, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastFilter = f
	var out []*domain.BlogPost
	for _, p := range r.posts {
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		out = append(out, clonePost(p))
	}
	return out, int64(len(out)), nil
}

func (r *stubPostRepo) FindRelated(_ context.Context, f ports.RelatedFilter) ([]*domain.BlogPost, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastRel = f
	var out []*domain.BlogPost
	for id, p := range r.posts {
		if id == f.ExcludeID || !p.IsPublished() {
			continue
		}
		if p.Category == f.Category {
			out = append(out, clonePost(p))
		}
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var (
	testAuthor = domain.Author{ID: "admin-1", Name: "Admin"}
	adminView  = &domain.Identity{UserID: "admin-1", Role: domain.RoleAdmin}
	userView   = &domain.Identity{UserID: "user-1", Role: domain.RoleUser}
)

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}

func newTestPostService(repo *stubPostRepo, now time.Time) *PostService {
	svc := NewPostService(repo, discardLogger)
	svc.now = fixedClock(now)
	return svc
}

func statusPtr(s domain.PostStatus) *domain.PostStatus { return &s }
func strPtr(s string) *string                           { return &s }

// ---------------------------------------------------------------------------
// Create / update
// ---------------------------------------------------------------------------

func TestPostService_Create_Defaults(t *testing.T) {
	repo := newStubPostRepo()
	svc := newTestPostService(repo, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	post, err := svc.CreatePost(context.Background(), domain.NewPostInput{
		Title:    "Hello World",
		Excerpt:  "First post",
		Content:  words(250),
		Category: domain.CategoryTechnology,
	}, testAuthor)
	require.NoError(t, err)

	assert.NotEmpty(t, post.ID)
	assert.Equal(t, domain.StatusDraft, post.Status)
	assert.Equal(t, "hello-world", post.Slug)
	assert.Equal(t, 2, post.ReadTime)
	assert.Nil(t, post.PublishedAt)
	assert.Equal(t, testAuthor, post.Author)
}

func TestPostService_Create_SlugConflict(t *testing.T) {
	repo := newStubPostRepo()
	svc := newTestPostService(repo, time.Now())
	in := domain.NewPostInput{Title: "Hello World", Content: "x", Category: domain.CategoryOther}

	_, err := svc.CreatePost(context.Background(), in, testAuthor)
	require.NoError(t, err)

	in.Title = "hello,   WORLD!"
	_, err = svc.CreatePost(context.Background(), in, testAuthor)
	assert.ErrorIs(t, err, domain.ErrSlugTaken)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestPostService_Create_Unsluggable(t *testing.T) {
	svc := newTestPostService(newStubPostRepo(), time.Now())
	_, err := svc.CreatePost(context.Background(), domain.NewPostInput{Title: "???", Content: "x"}, testAuthor)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestPostService_PublishedAtIsSetOnce(t *testing.T) {
	repo := newStubPostRepo()
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestPostService(repo, t0)
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, domain.NewPostInput{Title: "Lifecycle", Content: "x"}, testAuthor)
	require.NoError(t, err)

	svc.now = fixedClock(t0.Add(time.Hour))
	published, err := svc.UpdatePost(ctx, post.ID, domain.PostChanges{Status: statusPtr(domain.StatusPublished)})
	require.NoError(t, err)
	require.NotNil(t, published.PublishedAt)
	firstPublish := *published.PublishedAt
	assert.Equal(t, t0.Add(time.Hour), firstPublish)

	svc.now = fixedClock(t0.Add(2 * time.Hour))
	archived, err := svc.UpdatePost(ctx, post.ID, domain.PostChanges{Status: statusPtr(domain.StatusArchived)})
	require.NoError(t, err)
	require.NotNil(t, archived.PublishedAt)
	assert.Equal(t, firstPublish, *archived.PublishedAt)

	svc.now = fixedClock(t0.Add(3 * time.Hour))
	again, err := svc.UpdatePost(ctx, post.ID, domain.PostChanges{Status: statusPtr(domain.StatusPublished)})
	require.NoError(t, err)
	assert.Equal(t, firstPublish, *again.PublishedAt)
}

func TestPostService_Update_TitleKeepsSlugAndCountersSurvive(t *testing.T) {
	repo := newStubPostRepo()
	svc := newTestPostService(repo, time.Now())
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, domain.NewPostInput{Title: "Original", Content: "x", Status: domain.StatusPublished}, testAuthor)
	require.NoError(t, err)
	_, err = svc.RecordView(ctx, post.ID)
	require.NoError(t, err)

	updated, err := svc.UpdatePost(ctx, post.ID, domain.PostChanges{Title: strPtr("Renamed"), Content: strPtr(words(401))})
	require.NoError(t, err)
	assert.Equal(t, "original", updated.Slug)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, 3, updated.ReadTime)
	assert.EqualValues(t, 1, updated.Views, "an edit must not reset counters")
}

func TestPostService_Update_ExplicitSlugConflict(t *testing.T) {
	repo := newStubPostRepo()
	svc := newTestPostService(repo, time.Now())
	ctx := context.Background()

	_, err := svc.CreatePost(ctx, domain.NewPostInput{Title: "First", Content: "x"}, testAuthor)
	require.NoError(t, err)
	second, err := svc.CreatePost(ctx, domain.NewPostInput{Title: "Second", Content: "x"}, testAuthor)
	require.NoError(t, err)

	_, err = svc.UpdatePost(ctx, second.ID, domain.PostChanges{Slug: strPtr("first")})
	assert.ErrorIs(t, err, domain.ErrSlugTaken)

	renamed, err := svc.UpdatePost(ctx, second.ID, domain.PostChanges{Slug: strPtr("second-take")})
	require.NoError(t, err)
	assert.Equal(t, "second-take", renamed.Slug)
}

func TestPostService_Update_NotFound(t *testing.T) {
	svc := newTestPostService(newStubPostRepo(), time.Now())
	_, err := svc.UpdatePost(context.Background(), "missing", domain.PostChanges{Title: strPtr("x")})
	assert.ErrorIs(t, err, domain.ErrPostNotFound)
}

// ---------------------------------------------------------------------------
// Visibility and counters
// ---------------------------------------------------------------------------

func TestPostService_Get_DraftVisibility(t *testing.T) {
	repo := newStubPostRepo()
	svc := newTestPostService(repo, time.Now())
	ctx := context.Background()

	draft, err := svc.CreatePost(ctx, domain.NewPostInput{Title: "Secret", Content: "x"}, testAuthor)
	require.NoError(t, err)

	_, err = svc.GetPost(ctx, draft.ID, nil)
	assert.ErrorIs(t, err, domain.ErrPostNotFound)
	_, err = svc.GetPost(ctx, draft.ID, userView)
	assert.ErrorIs(t, err, domain.ErrPostNotFound)
	_, err = svc.GetPostBySlug(ctx, "secret", nil)
	assert.ErrorIs(t, err, domain.ErrPostNotFound)

	got, err := svc.GetPost(ctx, draft.ID, adminView)
	require.NoError(t, err)
	assert.Zero(t, got.Views, "admin preview must not count as a view")
	assert.Zero(t, repo.posts[draft.ID].Views)
}

func TestPostService_Get_PublishedCountsView(t *testing.T) {
	repo := newStubPostRepo()
	svc := newTestPostService(repo, time.Now())
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, domain.NewPostInput{Title: "Public", Content: "x", Status: domain.StatusPublished}, testAuthor)
	require.NoError(t, err)

	got, err := svc.GetPost(ctx, post.ID, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, got.Views)

	got, err = svc.GetPostBySlug(ctx, "  PUBLIC ", adminView)
	require.NoError(t, err)
	assert.EqualValues(t, 2, got.Views)
}

// unpublishingRepo serves one stale published read, as if an admin archived
// the post right after it was loaded.
type unpublishingRepo struct {
	*stubPostRepo
	staleReads int
}

func (r *unpublishingRepo) FindByID(ctx context.Context, id string) (*domain.BlogPost, error) {
	p, err := r.stubPostRepo.FindByID(ctx, id)
	if err != nil || r.staleReads == 0 {
		return p, err
	}
	r.staleReads--
	p.Status = domain.StatusPublished
	return p, nil
}

func TestPostService_Get_UnpublishedDuringView(t *testing.T) {
	repo := newStubPostRepo()
	seed := newTestPostService(repo, time.Now())
	ctx := context.Background()

	post, err := seed.CreatePost(ctx, domain.NewPostInput{Title: "Flip", Content: "x", Status: domain.StatusPublished}, testAuthor)
	require.NoError(t, err)
	_, err = seed.UpdatePost(ctx, post.ID, domain.PostChanges{Status: statusPtr(domain.StatusDraft)})
	require.NoError(t, err)

	stale := &unpublishingRepo{stubPostRepo: repo, staleReads: 1}
	svc := NewPostService(stale, discardLogger)
	_, err = svc.GetPost(ctx, post.ID, nil)
	assert.ErrorIs(t, err, domain.ErrPostNotFound)

	stale.staleReads = 1
	got, err := svc.GetPost(ctx, post.ID, adminView)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDraft, got.Status)

	assert.Zero(t, repo.posts[post.ID].Views, "a draft must never gain views")
}

func TestPostService_RecordView_Concurrent(t *testing.T) {
	repo := newStubPostRepo()
	svc := newTestPostService(repo, time.Now())
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, domain.NewPostInput{Title: "Busy", Content: "x", Status: domain.StatusPublished}, testAuthor)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.RecordView(ctx, post.ID)
		}()
	}
	wg.Wait()

	got, err := repo.FindByID(ctx, post.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 50, got.Views)
}

func TestPostService_Like_OnlyPublished(t *testing.T) {
	repo := newStubPostRepo()
	svc := newTestPostService(repo, time.Now())
	ctx := context.Background()

	for _, status := range []domain.PostStatus{domain.StatusDraft, domain.StatusArchived} {
		p, err := svc.CreatePost(ctx, domain.NewPostInput{Title: "Hidden " + string(status), Content: "x", Status: status}, testAuthor)
		require.NoError(t, err)
		_, err = svc.LikePost(ctx, p.ID)
		assert.ErrorIs(t, err, domain.ErrPostNotFound, "status %s", status)
	}

	p, err := svc.CreatePost(ctx, domain.NewPostInput{Title: "Liked", Content: "x", Status: domain.StatusPublished}, testAuthor)
	require.NoError(t, err)
	likes, err := svc.LikePost(ctx, p.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, likes)
}

// ---------------------------------------------------------------------------
// Listing and related
// ---------------------------------------------------------------------------

func TestPostService_List_NonAdminForcedToPublished(t *testing.T) {
	repo := newStubPostRepo()
	svc := newTestPostService(repo, time.Now())
	ctx := context.Background()

	for _, viewer := range []*domain.Identity{nil, userView} {
		_, err := svc.ListPosts(ctx, ports.ListPostsInput{Viewer: viewer, Status: domain.StatusDraft})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPublished, repo.lastFilter.Status)
	}

	_, err := svc.ListPosts(ctx, ports.ListPostsInput{Viewer: adminView, Status: domain.StatusDraft})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDraft, repo.lastFilter.Status)

	_, err = svc.ListPosts(ctx, ports.ListPostsInput{Viewer: adminView})
	require.NoError(t, err)
	assert.Empty(t, repo.lastFilter.Status, "admins may list every status")
}

func TestPostService_List_PaginationDefaults(t *testing.T) {
	repo := newStubPostRepo()
	svc := newTestPostService(repo, time.Now())

	res, err := svc.ListPosts(context.Background(), ports.ListPostsInput{Limit: 500, Search: "  go  "})
	require.NoError(t, err)
	assert.Equal(t, maxPostPageSize, res.Limit)
	assert.Equal(t, 1, res.Page)
	assert.Equal(t, "go", repo.lastFilter.Search)
	assert.Equal(t, ports.SortNewest, repo.lastFilter.Sort)

	res, err = svc.ListPosts(context.Background(), ports.ListPostsInput{Page: 3})
	require.NoError(t, err)
	assert.Equal(t, defaultPostPageSize, res.Limit)
	assert.Equal(t, 3, res.Page)
}

func TestPostService_Related(t *testing.T) {
	repo := newStubPostRepo()
	svc := newTestPostService(repo, time.Now())
	ctx := context.Background()

	src, err := svc.CreatePost(ctx, domain.NewPostInput{
		Title: "Source", Content: "x", Status: domain.StatusPublished,
		Category: domain.CategoryProgramming, Tags: []string{"go"},
	}, testAuthor)
	require.NoError(t, err)
	_, err = svc.CreatePost(ctx, domain.NewPostInput{
		Title: "Sibling", Content: "x", Status: domain.StatusPublished, Category: domain.CategoryProgramming,
	}, testAuthor)
	require.NoError(t, err)

	related, err := svc.RelatedPosts(ctx, src.ID, 0)
	require.NoError(t, err)
	require.Len(t, related, 1)
	assert.Equal(t, "sibling", related[0].Slug)
	assert.Equal(t, defaultRelatedLimit, repo.lastRel.Limit)
	assert.Equal(t, src.ID, repo.lastRel.ExcludeID)
	assert.Equal(t, []string{"go"}, repo.lastRel.Tags)

	_, err = svc.RelatedPosts(ctx, src.ID, 99)
	require.NoError(t, err)
	assert.Equal(t, maxRelatedLimit, repo.lastRel.Limit)
}

func TestPostService_Related_SourceMustBePublished(t *testing.T) {
	repo := newStubPostRepo()
	svc := newTestPostService(repo, time.Now())

	draft, err := svc.CreatePost(context.Background(), domain.NewPostInput{Title: "Draft", Content: "x"}, testAuthor)
	require.NoError(t, err)

	_, err = svc.RelatedPosts(context.Background(), draft.ID, 3)
	assert.ErrorIs(t, err, domain.ErrPostNotFound)
}

func TestPostService_Delete(t *testing.T) {
	repo := newStubPostRepo()
	svc := newTestPostService(repo, time.Now())
	ctx := context.Background()

	p, err := svc.CreatePost(ctx, domain.NewPostInput{Title: "Gone", Content: "x"}, testAuthor)
	require.NoError(t, err)

	require.NoError(t, svc.DeletePost(ctx, p.ID))
	assert.ErrorIs(t, svc.DeletePost(ctx, p.ID), domain.ErrPostNotFound)
}
