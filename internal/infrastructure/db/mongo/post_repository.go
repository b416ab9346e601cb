package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/devportfolio/portfolio-api/internal/core/domain"
	"github.com/devportfolio/portfolio-api/internal/core/ports"
)

const postsCollection = "blog_posts"

// PostRepository implements ports.PostRepository using MongoDB. Counters are
// only ever changed with $inc so concurrent readers never lose updates.
type PostRepository struct {
	col *mongo.Collection
}

func NewPostRepository(db *mongo.Database) *PostRepository {
	return &PostRepository{col: db.Collection(postsCollection)}
}

type mongoAuthor struct {
	ID   string `bson:"id"`
	Name string `bson:"name"`
}

type mongoSEO struct {
	MetaTitle       string   `bson:"meta_title,omitempty"`
	MetaDescription string   `bson:"meta_description,omitempty"`
	Keywords        []string `bson:"keywords,omitempty"`
}

type mongoPost struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Title         string             `bson:"title"`
	Slug          string             `bson:"slug"`
	Excerpt       string             `bson:"excerpt"`
	Content       string             `bson:"content"`
	Category      string             `bson:"category"`
	Tags          []string           `bson:"tags"`
	FeaturedImage string             `bson:"featured_image,omitempty"`
	Featured      bool               `bson:"featured"`
	Status        string             `bson:"status"`
	Author        mongoAuthor        `bson:"author"`
	ReadTime      int                `bson:"read_time"`
	PublishedAt   *time.Time         `bson:"published_at"`
	Views         int64              `bson:"views"`
	Likes         int64              `bson:"likes"`
	SEO           mongoSEO           `bson:"seo"`
	CreatedAt     time.Time          `bson:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at"`
}

func toMongoPost(p *domain.BlogPost) mongoPost {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return mongoPost{
		Title:         p.Title,
		Slug:          p.Slug,
		Excerpt:       p.Excerpt,
		Content:       p.Content,
		Category:      string(p.Category),
		Tags:          tags,
		FeaturedImage: p.FeaturedImage,
		Featured:      p.Featured,
		Status:        string(p.Status),
		Author:        mongoAuthor{ID: p.Author.ID, Name: p.Author.Name},
		ReadTime:      p.ReadTime,
		PublishedAt:   p.PublishedAt,
		Views:         p.Views,
		Likes:         p.Likes,
		SEO: mongoSEO{
			MetaTitle:       p.SEO.MetaTitle,
			MetaDescription: p.SEO.MetaDescription,
			Keywords:        p.SEO.Keywords,
		},
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func (m mongoPost) toDomain() *domain.BlogPost {
	var publishedAt *time.Time
	if m.PublishedAt != nil {
		t := m.PublishedAt.UTC()
		publishedAt = &t
	}
	tags := m.Tags
	if tags == nil {
		tags = []string{}
	}
	return &domain.BlogPost{
		ID:            m.ID.Hex(),
		Title:         m.Title,
		Slug:          m.Slug,
		Excerpt:       m.Excerpt,
		Content:       m.Content,
		Category:      domain.Category(m.Category),
		Tags:          tags,
		FeaturedImage: m.FeaturedImage,
		Featured:      m.Featured,
		Status:        domain.PostStatus(m.Status),
		Author:        domain.Author{ID: m.Author.ID, Name: m.Author.Name},
		ReadTime:      m.ReadTime,
		PublishedAt:   publishedAt,
		Views:         m.Views,
		Likes:         m.Likes,
		SEO: domain.SEO{
			MetaTitle:       m.SEO.MetaTitle,
			MetaDescription: m.SEO.MetaDescription,
			Keywords:        m.SEO.Keywords,
		},
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

// Create inserts a new post and sets its ID.
func (r *PostRepository) Create(ctx context.Context, p *domain.BlogPost) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, toMongoPost(p))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrSlugTaken
		}
		return fmt.Errorf("insert post: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		p.ID = oid.Hex()
	}
	return nil
}

func (r *PostRepository) FindByID(ctx context.Context, id string) (*domain.BlogPost, error) {
	oid, err := objectID(id, domain.ErrPostNotFound)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *PostRepository) FindBySlug(ctx context.Context, slug string) (*domain.BlogPost, error) {
	return r.findOne(ctx, bson.M{"slug": slug})
}

func (r *PostRepository) findOne(ctx context.Context, filter bson.M) (*domain.BlogPost, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mp mongoPost
	if err := r.col.FindOne(ctx, filter).Decode(&mp); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPostNotFound
		}
		return nil, fmt.Errorf("find post: %w", err)
	}
	return mp.toDomain(), nil
}

func (r *PostRepository) ExistsBySlug(ctx context.Context, slug, excludeID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, slugFilter(slug, excludeID), options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count slug: %w", err)
	}
	return n > 0, nil
}

func slugFilter(slug, excludeID string) bson.M {
	filter := bson.M{"slug": slug}
	if oid, err := primitive.ObjectIDFromHex(excludeID); err == nil {
		filter["_id"] = bson.M{"$ne": oid}
	}
	return filter
}

// Update writes the editable fields of p. Views and likes are never part of
// the $set.
func (r *PostRepository) Update(ctx context.Context, p *domain.BlogPost) (*domain.BlogPost, error) {
	oid, err := objectID(p.ID, domain.ErrPostNotFound)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mp mongoPost
	err = r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": postUpdateSet(p)}, afterUpdate()).Decode(&mp)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil, domain.ErrPostNotFound
	case mongo.IsDuplicateKeyError(err):
		return nil, domain.ErrSlugTaken
	case err != nil:
		return nil, fmt.Errorf("update post: %w", err)
	}
	return mp.toDomain(), nil
}

func postUpdateSet(p *domain.BlogPost) bson.M {
	doc := toMongoPost(p)
	return bson.M{
		"title":          doc.Title,
		"slug":           doc.Slug,
		"excerpt":        doc.Excerpt,
		"content":        doc.Content,
		"category":       doc.Category,
		"tags":           doc.Tags,
		"featured_image": doc.FeaturedImage,
		"featured":       doc.Featured,
		"status":         doc.Status,
		"read_time":      doc.ReadTime,
		"published_at":   doc.PublishedAt,
		"seo":            doc.SEO,
		"updated_at":     doc.UpdatedAt,
	}
}

func (r *PostRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id, domain.ErrPostNotFound)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrPostNotFound
	}
	return nil
}

// IncrementViews counts a view only while the post is published; a post
// unpublished since it was read reports not found.
func (r *PostRepository) IncrementViews(ctx context.Context, id string) (*domain.BlogPost, error) {
	oid, err := objectID(id, domain.ErrPostNotFound)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": oid, "status": string(domain.StatusPublished)}

	var mp mongoPost
	err = r.col.FindOneAndUpdate(ctx, filter, bson.M{"$inc": bson.M{"views": 1}}, afterUpdate()).Decode(&mp)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPostNotFound
		}
		return nil, fmt.Errorf("increment views: %w", err)
	}
	return mp.toDomain(), nil
}

// IncrementLikes matches on status as well as id, so likes on hidden posts
// are indistinguishable from likes on missing ones.
func (r *PostRepository) IncrementLikes(ctx context.Context, id string) (int64, error) {
	oid, err := objectID(id, domain.ErrPostNotFound)
	if err != nil {
		return 0, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": oid, "status": string(domain.StatusPublished)}
	opts := afterUpdate().SetProjection(bson.M{"likes": 1})

	var out struct {
		Likes int64 `bson:"likes"`
	}
	err = r.col.FindOneAndUpdate(ctx, filter, bson.M{"$inc": bson.M{"likes": 1}}, opts).Decode(&out)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, domain.ErrPostNotFound
		}
		return 0, fmt.Errorf("increment likes: %w", err)
	}
	return out.Likes, nil
}

func (r *PostRepository) List(ctx context.Context, f ports.ListPostsFilter) ([]*domain.BlogPost, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := buildListFilter(f)

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}

	opts := options.Find().
		SetSort(listSort(f.Sort)).
		SetSkip(skipFor(f.Page, f.Limit)).
		SetLimit(int64(f.Limit))

	posts, err := r.find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (r *PostRepository) FindRelated(ctx context.Context, f ports.RelatedFilter) ([]*domain.BlogPost, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(listSort(ports.SortNewest)).
		SetLimit(int64(f.Limit))

	return r.find(ctx, buildRelatedFilter(f), opts)
}

func (r *PostRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domain.BlogPost, error) {
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find posts: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoPost
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}

	posts := make([]*domain.BlogPost, 0, len(docs))
	for _, d := range docs {
		posts = append(posts, d.toDomain())
	}
	return posts, nil
}

// buildListFilter translates a listing query into a Mongo filter. Search
// terms are quoted so user input is never interpreted as a pattern.
func buildListFilter(f ports.ListPostsFilter) bson.M {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = string(f.Status)
	}
	if f.Category != "" {
		filter["category"] = string(f.Category)
	}
	if f.Featured != nil {
		filter["featured"] = *f.Featured
	}
	if f.Search != "" {
		rx := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": rx},
			bson.M{"excerpt": rx},
			bson.M{"content": rx},
			bson.M{"tags": rx},
		}
	}
	return filter
}

func listSort(s ports.PostSort) bson.D {
	switch s {
	case ports.SortOldest:
		return bson.D{{Key: "published_at", Value: 1}, {Key: "created_at", Value: 1}}
	case ports.SortPopular:
		return bson.D{{Key: "views", Value: -1}, {Key: "published_at", Value: -1}}
	case ports.SortTitle:
		return bson.D{{Key: "title", Value: 1}}
	default:
		return bson.D{{Key: "published_at", Value: -1}, {Key: "created_at", Value: -1}}
	}
}

func buildRelatedFilter(f ports.RelatedFilter) bson.M {
	or := bson.A{bson.M{"category": string(f.Category)}}
	if len(f.Tags) > 0 {
		or = append(or, bson.M{"tags": bson.M{"$in": f.Tags}})
	}

	filter := bson.M{
		"status": string(domain.StatusPublished),
		"$or":    or,
	}
	if oid, err := primitive.ObjectIDFromHex(f.ExcludeID); err == nil {
		filter["_id"] = bson.M{"$ne": oid}
	}
	return filter
}

// EnsureIndexes creates the unique slug index plus the indexes backing the
// public listing.
func (r *PostRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "published_at", Value: -1}}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "tags", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
