package domain

import (
	"regexp"
	"strings"
	"time"
)

// PostStatus represents the lifecycle state of a blog post.
type PostStatus string

const (
	StatusDraft     PostStatus = "draft"
	StatusPublished PostStatus = "published"
	StatusArchived  PostStatus = "archived"
)

// ParsePostStatus validates a raw status. There is no transition table: any
// status may move to any other, and only the first move into published has a
// side effect (publishedAt).
func ParsePostStatus(s string) (PostStatus, bool) {
	switch PostStatus(s) {
	case StatusDraft, StatusPublished, StatusArchived:
		return PostStatus(s), true
	default:
		return "", false
	}
}

// Category is the closed set of blog categories.
type Category string

const (
	CategoryTechnology        Category = "Technology"
	CategoryProgramming       Category = "Programming"
	CategoryWebDevelopment    Category = "Web Development"
	CategoryMobileDevelopment Category = "Mobile Development"
	CategoryDesign            Category = "Design"
	CategoryCareer            Category = "Career"
	CategoryTutorial          Category = "Tutorial"
	CategoryPersonal          Category = "Personal"
	CategoryOther             Category = "Other"
)

var Categories = []Category{
	CategoryTechnology,
	CategoryProgramming,
	CategoryWebDevelopment,
	CategoryMobileDevelopment,
	CategoryDesign,
	CategoryCareer,
	CategoryTutorial,
	CategoryPersonal,
	CategoryOther,
}

func IsValidCategory(c Category) bool {
	for _, known := range Categories {
		if known == c {
			return true
		}
	}
	return false
}

const (
	MaxTitleLength           = 200
	MaxExcerptLength         = 500
	MaxMetaTitleLength       = 60
	MaxMetaDescriptionLength = 160

	wordsPerMinute = 200
)

// SEO holds optional search-engine metadata. It has no behaviour.
type SEO struct {
	MetaTitle       string   `json:"metaTitle,omitempty"`
	MetaDescription string   `json:"metaDescription,omitempty"`
	Keywords        []string `json:"keywords,omitempty"`
}

// Author identifies the admin who created a post.
type Author struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// BlogPost is the content aggregate.
type BlogPost struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	Excerpt       string     `json:"excerpt"`
	Content       string     `json:"content"`
	Category      Category   `json:"category"`
	Tags          []string   `json:"tags"`
	FeaturedImage string     `json:"featuredImage,omitempty"`
	Featured      bool       `json:"featured"`
	Status        PostStatus `json:"status"`
	Author        Author     `json:"author"`
	ReadTime      int        `json:"readTime"`
	PublishedAt   *time.Time `json:"publishedAt"`
	Views         int64      `json:"views"`
	Likes         int64      `json:"likes"`
	SEO           SEO        `json:"seo"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

func (p *BlogPost) IsPublished() bool {
	return p.Status == StatusPublished
}

// NewPostInput is the data an admin supplies when creating a post.
type NewPostInput struct {
	Title         string
	Slug          string
	Excerpt       string
	Content       string
	Category      Category
	Tags          []string
	FeaturedImage string
	Featured      bool
	Status        PostStatus
	SEO           SEO
}

// PostChanges is a partial update; nil fields are left untouched.
type PostChanges struct {
	Title         *string
	Slug          *string
	Excerpt       *string
	Content       *string
	Category      *Category
	Tags          *[]string
	FeaturedImage *string
	Featured      *bool
	Status        *PostStatus
	SEO           *SEO
}

// NewBlogPost builds a post from input, applying every derivation rule:
// slug from title when absent, read time from content, draft by default and
// publishedAt when created directly as published.
func NewBlogPost(in NewPostInput, author Author, now time.Time) (*BlogPost, error) {
	slug := strings.TrimSpace(in.Slug)
	if slug == "" {
		slug = Slugify(in.Title)
	}
	if !IsValidSlug(slug) {
		return nil, NewValidationError(FieldError{Field: "slug", Message: "could not derive a valid slug from the title"})
	}

	status := in.Status
	if status == "" {
		status = StatusDraft
	}

	p := &BlogPost{
		Title:         strings.TrimSpace(in.Title),
		Slug:          slug,
		Excerpt:       strings.TrimSpace(in.Excerpt),
		Content:       in.Content,
		Category:      in.Category,
		Tags:          NormalizeTags(in.Tags),
		FeaturedImage: in.FeaturedImage,
		Featured:      in.Featured,
		Status:        status,
		Author:        author,
		ReadTime:      ReadTime(in.Content),
		SEO:           normalizeSEO(in.SEO),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	p.markPublished(now)
	return p, nil
}

// Apply merges changes into p. The slug is never re-derived from a new
// title; it only changes when the caller sends one explicitly.
func (p *BlogPost) Apply(ch PostChanges, now time.Time) error {
	if ch.Slug != nil {
		slug := strings.TrimSpace(*ch.Slug)
		if !IsValidSlug(slug) {
			return NewValidationError(FieldError{Field: "slug", Message: "slug may contain only lowercase letters, digits and hyphens"})
		}
		p.Slug = slug
	}
	if ch.Title != nil {
		p.Title = strings.TrimSpace(*ch.Title)
	}
	if ch.Excerpt != nil {
		p.Excerpt = strings.TrimSpace(*ch.Excerpt)
	}
	if ch.Content != nil {
		p.Content = *ch.Content
		p.ReadTime = ReadTime(p.Content)
	}
	if ch.Category != nil {
		p.Category = *ch.Category
	}
	if ch.Tags != nil {
		p.Tags = NormalizeTags(*ch.Tags)
	}
	if ch.FeaturedImage != nil {
		p.FeaturedImage = *ch.FeaturedImage
	}
	if ch.Featured != nil {
		p.Featured = *ch.Featured
	}
	if ch.SEO != nil {
		p.SEO = normalizeSEO(*ch.SEO)
	}
	if ch.Status != nil {
		p.Status = *ch.Status
		p.markPublished(now)
	}
	p.UpdatedAt = now
	return nil
}

// markPublished sets PublishedAt on the first transition into published.
func (p *BlogPost) markPublished(now time.Time) {
	if p.Status == StatusPublished && p.PublishedAt == nil {
		t := now
		p.PublishedAt = &t
	}
}

var (
	nonSlugChars = regexp.MustCompile(`[^a-z0-9\s]`)
	whitespace   = regexp.MustCompile(`\s+`)
	slugPattern  = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// Slugify lower-cases title, drops anything that is not a letter, digit or
// whitespace and joins the remaining words with hyphens.
func Slugify(title string) string {
	s := nonSlugChars.ReplaceAllString(strings.ToLower(title), "")
	return whitespace.ReplaceAllString(strings.TrimSpace(s), "-")
}

func IsValidSlug(slug string) bool {
	return slugPattern.MatchString(slug)
}

// ReadTime returns whole minutes at 200 words per minute, never less than 1.
func ReadTime(content string) int {
	words := len(strings.Fields(content))
	if words < 1 {
		words = 1
	}
	return (words + wordsPerMinute - 1) / wordsPerMinute
}

// NormalizeTags trims tags, drops empty ones and removes duplicates while
// keeping first-seen order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func normalizeSEO(s SEO) SEO {
	s.MetaTitle = strings.TrimSpace(s.MetaTitle)
	s.MetaDescription = strings.TrimSpace(s.MetaDescription)
	s.Keywords = NormalizeTags(s.Keywords)
	return s
}
