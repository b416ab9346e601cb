package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devportfolio/portfolio-api/internal/core/domain"
	"github.com/devportfolio/portfolio-api/internal/core/ports"
)

func seedPost(t *testing.T, repo *PostRepository, p domain.BlogPost) *domain.BlogPost {
	t.Helper()
	require.NoError(t, repo.Create(context.Background(), &p))
	return &p
}

func at(day int) *time.Time {
	t := time.Date(2026, 1, day, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestPosts_IncrementViewsConcurrently(t *testing.T) {
	repo := NewStore().Posts()
	p := seedPost(t, repo, domain.BlogPost{Slug: "busy", Status: domain.StatusPublished})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.IncrementViews(context.Background(), p.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := repo.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 50, got.Views)
}

func TestPosts_UpdateKeepsCounters(t *testing.T) {
	repo := NewStore().Posts()
	ctx := context.Background()
	p := seedPost(t, repo, domain.BlogPost{Slug: "a", Title: "A", Status: domain.StatusPublished})
	_, err := repo.IncrementLikes(ctx, p.ID)
	require.NoError(t, err)

	stale := *p
	stale.Title = "A2"
	updated, err := repo.Update(ctx, &stale)
	require.NoError(t, err)
	assert.Equal(t, "A2", updated.Title)
	assert.EqualValues(t, 1, updated.Likes)
}

func TestPosts_SlugUniqueness(t *testing.T) {
	repo := NewStore().Posts()
	ctx := context.Background()
	a := seedPost(t, repo, domain.BlogPost{Slug: "a"})
	seedPost(t, repo, domain.BlogPost{Slug: "b"})

	err := repo.Create(ctx, &domain.BlogPost{Slug: "a"})
	assert.ErrorIs(t, err, domain.ErrSlugTaken)

	taken, _ := repo.ExistsBySlug(ctx, "a", a.ID)
	assert.False(t, taken, "a post does not conflict with itself")
	taken, _ = repo.ExistsBySlug(ctx, "a", "")
	assert.True(t, taken)

	clash := *a
	clash.Slug = "b"
	_, err = repo.Update(ctx, &clash)
	assert.ErrorIs(t, err, domain.ErrSlugTaken)
}

func TestPosts_LikesOnlyPublished(t *testing.T) {
	repo := NewStore().Posts()
	draft := seedPost(t, repo, domain.BlogPost{Slug: "d", Status: domain.StatusDraft})

	_, err := repo.IncrementLikes(context.Background(), draft.ID)
	assert.ErrorIs(t, err, domain.ErrPostNotFound)
}

func TestPosts_ViewsOnlyPublished(t *testing.T) {
	repo := NewStore().Posts()
	ctx := context.Background()
	p := seedPost(t, repo, domain.BlogPost{Slug: "flip", Status: domain.StatusPublished})

	_, err := repo.IncrementViews(ctx, p.ID)
	require.NoError(t, err)

	archived := *p
	archived.Status = domain.StatusArchived
	_, err = repo.Update(ctx, &archived)
	require.NoError(t, err)

	_, err = repo.IncrementViews(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrPostNotFound)

	got, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, got.Views)
}

func TestPosts_ListFiltersAndSorts(t *testing.T) {
	repo := NewStore().Posts()
	seedPost(t, repo, domain.BlogPost{Slug: "old", Title: "Zeta", Status: domain.StatusPublished, PublishedAt: at(1), Views: 5, Category: domain.CategoryTutorial})
	seedPost(t, repo, domain.BlogPost{Slug: "new", Title: "Alpha", Status: domain.StatusPublished, PublishedAt: at(9), Views: 1, Tags: []string{"Golang"}})
	seedPost(t, repo, domain.BlogPost{Slug: "draft", Title: "Draft", Status: domain.StatusDraft})
	ctx := context.Background()

	got, total, err := repo.List(ctx, ports.ListPostsFilter{Status: domain.StatusPublished})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, []string{"new", "old"}, slugs(got))

	got, _, _ = repo.List(ctx, ports.ListPostsFilter{Status: domain.StatusPublished, Sort: ports.SortOldest})
	assert.Equal(t, []string{"old", "new"}, slugs(got))

	got, _, _ = repo.List(ctx, ports.ListPostsFilter{Status: domain.StatusPublished, Sort: ports.SortPopular})
	assert.Equal(t, []string{"old", "new"}, slugs(got))

	got, _, _ = repo.List(ctx, ports.ListPostsFilter{Sort: ports.SortTitle})
	assert.Equal(t, []string{"new", "draft", "old"}, slugs(got))

	got, _, _ = repo.List(ctx, ports.ListPostsFilter{Search: "golang"})
	assert.Equal(t, []string{"new"}, slugs(got), "search matches tags case-insensitively")

	got, _, _ = repo.List(ctx, ports.ListPostsFilter{Category: domain.CategoryTutorial})
	assert.Equal(t, []string{"old"}, slugs(got))

	got, total, _ = repo.List(ctx, ports.ListPostsFilter{Page: 2, Limit: 2})
	assert.EqualValues(t, 3, total)
	assert.Len(t, got, 1)
}

func TestPosts_FindRelated(t *testing.T) {
	repo := NewStore().Posts()
	src := seedPost(t, repo, domain.BlogPost{Slug: "src", Status: domain.StatusPublished, Category: domain.CategoryDesign, Tags: []string{"ui"}, PublishedAt: at(1)})
	seedPost(t, repo, domain.BlogPost{Slug: "same-cat", Status: domain.StatusPublished, Category: domain.CategoryDesign, PublishedAt: at(2)})
	seedPost(t, repo, domain.BlogPost{Slug: "shared-tag", Status: domain.StatusPublished, Category: domain.CategoryOther, Tags: []string{"ui"}, PublishedAt: at(3)})
	seedPost(t, repo, domain.BlogPost{Slug: "draft", Status: domain.StatusDraft, Category: domain.CategoryDesign})
	seedPost(t, repo, domain.BlogPost{Slug: "unrelated", Status: domain.StatusPublished, Category: domain.CategoryCareer})

	got, err := repo.FindRelated(context.Background(), ports.RelatedFilter{
		ExcludeID: src.ID, Category: src.Category, Tags: src.Tags, Limit: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"shared-tag", "same-cat"}, slugs(got))

	got, _ = repo.FindRelated(context.Background(), ports.RelatedFilter{
		ExcludeID: src.ID, Category: src.Category, Tags: src.Tags, Limit: 1,
	})
	assert.Len(t, got, 1)
}

func TestUsers_EmailUniqueAndNormalized(t *testing.T) {
	repo := NewStore().Users()
	ctx := context.Background()

	u, err := repo.Create(ctx, &domain.User{Email: "A@Example.com"})
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", u.Email)

	_, err = repo.Create(ctx, &domain.User{Email: "a@example.com"})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	found, err := repo.FindByEmail(ctx, " a@EXAMPLE.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)
}

func TestContacts_MarkAsReadOnlyFromNew(t *testing.T) {
	repo := NewStore().Contacts()
	ctx := context.Background()
	c := &domain.Contact{Status: domain.ContactNew}
	require.NoError(t, repo.Create(ctx, c))

	got, err := repo.MarkAsRead(ctx, c.ID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, domain.ContactRead, got.Status)

	_, err = repo.UpdateStatus(ctx, c.ID, domain.ContactArchived, time.Now())
	require.NoError(t, err)
	got, _ = repo.MarkAsRead(ctx, c.ID, time.Now())
	assert.Equal(t, domain.ContactArchived, got.Status)
}

func TestPage(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	assert.Equal(t, []int{1, 2}, page(items, 1, 2))
	assert.Equal(t, []int{5}, page(items, 3, 2))
	assert.Equal(t, []int{}, page(items, 4, 2))
	assert.Equal(t, items, page(items, 1, 0))
}

func slugs(posts []*domain.BlogPost) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.Slug)
	}
	return out
}
