package handler

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/devportfolio/portfolio-api/internal/api/metrics"
	"github.com/devportfolio/portfolio-api/internal/core/domain"
	"github.com/devportfolio/portfolio-api/internal/core/ports"
)

// markdown renders post bodies. Raw HTML in the source is escaped.
var markdown = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Linkify,
	),
)

// PostHandler serves the blog.
type PostHandler struct {
	postService ports.PostService
	authService ports.AuthService
}

// NewPostHandler needs the auth service to resolve the author name stamped
// on new posts.
func NewPostHandler(postService ports.PostService, authService ports.AuthService) *PostHandler {
	return &PostHandler{postService: postService, authService: authService}
}

type seoRequest struct {
	MetaTitle       string   `json:"metaTitle" validate:"max=60"`
	MetaDescription string   `json:"metaDescription" validate:"max=160"`
	Keywords        []string `json:"keywords"`
}

func (r *seoRequest) toDomain() domain.SEO {
	return domain.SEO{
		MetaTitle:       r.MetaTitle,
		MetaDescription: r.MetaDescription,
		Keywords:        r.Keywords,
	}
}

type createPostRequest struct {
	Title         string      `json:"title" validate:"required,max=200"`
	Slug          string      `json:"slug" validate:"omitempty,slug"`
	Excerpt       string      `json:"excerpt" validate:"required,max=500"`
	Content       string      `json:"content" validate:"required"`
	Category      string      `json:"category" validate:"required,category"`
	Tags          []string    `json:"tags"`
	FeaturedImage string      `json:"featuredImage" validate:"omitempty,url"`
	Featured      bool        `json:"featured"`
	Status        string      `json:"status" validate:"omitempty,oneof=draft published archived"`
	SEO           *seoRequest `json:"seo"`
}

type updatePostRequest struct {
	Title         *string     `json:"title" validate:"omitempty,min=1,max=200"`
	Slug          *string     `json:"slug" validate:"omitempty,slug"`
	Excerpt       *string     `json:"excerpt" validate:"omitempty,min=1,max=500"`
	Content       *string     `json:"content" validate:"omitempty,min=1"`
	Category      *string     `json:"category" validate:"omitempty,category"`
	Tags          *[]string   `json:"tags"`
	FeaturedImage *string     `json:"featuredImage" validate:"omitempty,url"`
	Featured      *bool       `json:"featured"`
	Status        *string     `json:"status" validate:"omitempty,oneof=draft published archived"`
	SEO           *seoRequest `json:"seo"`
}

func (r *updatePostRequest) toChanges() domain.PostChanges {
	ch := domain.PostChanges{
		Title:         r.Title,
		Slug:          r.Slug,
		Excerpt:       r.Excerpt,
		Content:       r.Content,
		Tags:          r.Tags,
		FeaturedImage: r.FeaturedImage,
		Featured:      r.Featured,
	}
	if r.Category != nil {
		category := domain.Category(*r.Category)
		ch.Category = &category
	}
	if r.Status != nil {
		status := domain.PostStatus(*r.Status)
		ch.Status = &status
	}
	if r.SEO != nil {
		seo := r.SEO.toDomain()
		ch.SEO = &seo
	}
	return ch
}

// postDetail is a single post plus its rendered body.
type postDetail struct {
	*domain.BlogPost
	ContentHTML string `json:"contentHtml"`
}

func renderPost(post *domain.BlogPost) (postDetail, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(post.Content), &buf); err != nil {
		return postDetail{}, err
	}
	return postDetail{BlogPost: post, ContentHTML: buf.String()}, nil
}

type likeResponse struct {
	Likes int64 `json:"likes"`
}

// List returns a page of posts. Anonymous and non-admin callers only ever
// see published posts.
//
// @Summary      List blog posts
// @Tags         blog
// @Produce      json
// @Param        page      query     int     false  "Page (1-based)"
// @Param        limit     query     int     false  "Page size (max 50)"
// @Param        category  query     string  false  "Category"
// @Param        status    query     string  false  "draft, published or archived (admin only)"
// @Param        featured  query     bool    false  "Only featured posts"
// @Param        search    query     string  false  "Free-text search"
// @Param        sort      query     string  false  "newest, oldest, popular or title"
// @Success      200       {object}  Response{data=[]domain.BlogPost}
// @Failure      400       {object}  ErrorResponse
// @Router       /api/blog [get]
func (h *PostHandler) List(c echo.Context) error {
	page, limit, err := pageQuery(c)
	if err != nil {
		return err
	}

	input := ports.ListPostsInput{
		Viewer: ctxViewer(c),
		Search: c.QueryParam("search"),
		Page:   page,
		Limit:  limit,
	}

	var fields []domain.FieldError
	if raw := c.QueryParam("status"); raw != "" {
		status, ok := domain.ParsePostStatus(raw)
		if !ok {
			fields = append(fields, domain.FieldError{Field: "status", Message: "status must be one of: draft published archived"})
		}
		input.Status = status
	}
	if raw := c.QueryParam("category"); raw != "" {
		category := domain.Category(raw)
		if !domain.IsValidCategory(category) {
			fields = append(fields, domain.FieldError{Field: "category", Message: "category is not a known category"})
		}
		input.Category = category
	}
	if raw := c.QueryParam("featured"); raw != "" {
		var featured bool
		if err := echo.QueryParamsBinder(c).Bool("featured", &featured).BindError(); err != nil {
			fields = append(fields, domain.FieldError{Field: "featured", Message: "featured must be true or false"})
		}
		input.Featured = &featured
	}
	sort, ok := ports.ParsePostSort(c.QueryParam("sort"))
	if !ok {
		fields = append(fields, domain.FieldError{Field: "sort", Message: "sort must be one of: newest oldest popular title"})
	}
	input.Sort = sort
	if len(fields) > 0 {
		return domain.NewValidationError(fields...)
	}

	result, err := h.postService.ListPosts(c.Request().Context(), input)
	if err != nil {
		return err
	}
	return respondPage(c, http.StatusOK, "posts retrieved", result.Items, Pagination{
		Page:       result.Page,
		Limit:      result.Limit,
		Total:      result.Total,
		TotalPages: result.TotalPages,
	})
}

// Get returns one post by ID and records a view when it is published.
//
// @Summary      Get a blog post
// @Tags         blog
// @Produce      json
// @Param        id   path      string  true  "Post ID"
// @Success      200  {object}  Response{data=postDetail}
// @Failure      404  {object}  ErrorResponse
// @Router       /api/blog/{id} [get]
func (h *PostHandler) Get(c echo.Context) error {
	post, err := h.postService.GetPost(c.Request().Context(), c.Param("id"), ctxViewer(c))
	if err != nil {
		return err
	}
	return h.respondPost(c, post)
}

// GetBySlug returns one post by slug and records a view when it is published.
//
// @Summary      Get a blog post by slug
// @Tags         blog
// @Produce      json
// @Param        slug  path      string  true  "Post slug"
// @Success      200   {object}  Response{data=postDetail}
// @Failure      404   {object}  ErrorResponse
// @Router       /api/blog/slug/{slug} [get]
func (h *PostHandler) GetBySlug(c echo.Context) error {
	post, err := h.postService.GetPostBySlug(c.Request().Context(), c.Param("slug"), ctxViewer(c))
	if err != nil {
		return err
	}
	return h.respondPost(c, post)
}

func (h *PostHandler) respondPost(c echo.Context, post *domain.BlogPost) error {
	if post.IsPublished() {
		metrics.PostViewsTotal.Inc()
	}
	detail, err := renderPost(post)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "post retrieved", detail)
}

// Create adds a post authored by the caller.
//
// @Summary      Create a blog post
// @Tags         blog
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createPostRequest  true  "Post"
// @Success      201   {object}  Response{data=postDetail}
// @Failure      400   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Router       /api/blog [post]
func (h *PostHandler) Create(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req createPostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	author, err := h.authService.Me(c.Request().Context(), identity)
	if err != nil {
		return err
	}

	input := domain.NewPostInput{
		Title:         req.Title,
		Slug:          req.Slug,
		Excerpt:       req.Excerpt,
		Content:       req.Content,
		Category:      domain.Category(req.Category),
		Tags:          req.Tags,
		FeaturedImage: req.FeaturedImage,
		Featured:      req.Featured,
		Status:        domain.PostStatus(req.Status),
	}
	if req.SEO != nil {
		input.SEO = req.SEO.toDomain()
	}

	post, err := h.postService.CreatePost(c.Request().Context(), input, domain.Author{ID: author.ID, Name: author.Name})
	if err != nil {
		return err
	}
	metrics.PostsCreatedTotal.WithLabelValues(string(post.Status)).Inc()

	detail, err := renderPost(post)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "post created", detail)
}

// Update applies a partial update. The slug only changes when sent.
//
// @Summary      Update a blog post
// @Tags         blog
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Post ID"
// @Param        body  body      updatePostRequest  true  "Fields to change"
// @Success      200   {object}  Response{data=postDetail}
// @Failure      400   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Router       /api/blog/{id} [put]
func (h *PostHandler) Update(c echo.Context) error {
	var req updatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post, err := h.postService.UpdatePost(c.Request().Context(), c.Param("id"), req.toChanges())
	if err != nil {
		return err
	}

	detail, err := renderPost(post)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "post updated", detail)
}

// Delete permanently removes a post.
//
// @Summary      Delete a blog post
// @Tags         blog
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Post ID"
// @Success      200  {object}  Response
// @Failure      404  {object}  ErrorResponse
// @Router       /api/blog/{id} [delete]
func (h *PostHandler) Delete(c echo.Context) error {
	if err := h.postService.DeletePost(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "post deleted", nil)
}

// Like adds one like to a published post.
//
// @Summary      Like a blog post
// @Tags         blog
// @Produce      json
// @Param        id   path      string  true  "Post ID"
// @Success      200  {object}  Response{data=likeResponse}
// @Failure      404  {object}  ErrorResponse
// @Failure      429  {object}  ErrorResponse
// @Router       /api/blog/{id}/like [post]
func (h *PostHandler) Like(c echo.Context) error {
	likes, err := h.postService.LikePost(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	metrics.PostLikesTotal.Inc()
	return respond(c, http.StatusOK, "post liked", likeResponse{Likes: likes})
}

// Related returns published posts sharing a category or tag.
//
// @Summary      Related blog posts
// @Tags         blog
// @Produce      json
// @Param        id     path      string  true   "Post ID"
// @Param        limit  query     int     false  "Max results (max 10)"
// @Success      200    {object}  Response{data=[]domain.BlogPost}
// @Failure      404    {object}  ErrorResponse
// @Router       /api/blog/{id}/related [get]
func (h *PostHandler) Related(c echo.Context) error {
	var limit int
	if err := echo.QueryParamsBinder(c).Int("limit", &limit).BindError(); err != nil {
		return queryError(err)
	}

	posts, err := h.postService.RelatedPosts(c.Request().Context(), c.Param("id"), limit)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "related posts retrieved", posts)
}
