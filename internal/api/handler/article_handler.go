package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/conduit-labs/publishing-api/internal/api/metrics"
	"github.com/conduit-labs/publishing-api/internal/core/ports"
)

// ArticleHandler handles article CRUD, listings, favorites, and tags.
type ArticleHandler struct {
	articles ports.ArticleService
	users    ports.UserService
}

func NewArticleHandler(articles ports.ArticleService, users ports.UserService) *ArticleHandler {
	return &ArticleHandler{articles: articles, users: users}
}

type createArticlePayload struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description" validate:"required,max=500"`
	Body        string   `json:"body" validate:"required"`
	TagList     []string `json:"tagList"`
}

type createArticleRequest struct {
	Article createArticlePayload `json:"article"`
}

type updateArticlePayload struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Body        *string   `json:"body"`
	TagList     *[]string `json:"tagList"`
}

type updateArticleRequest struct {
	Article updateArticlePayload `json:"article"`
}

type articleBody struct {
	Slug           string      `json:"slug"`
	Title          string      `json:"title"`
	Description    string      `json:"description"`
	Body           string      `json:"body"`
	TagList        []string    `json:"tagList"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
	Favorited      bool        `json:"favorited"`
	FavoritesCount int         `json:"favoritesCount"`
	Author         profileBody `json:"author"`
}

type articleResponse struct {
	Article articleBody `json:"article"`
}

type articlesResponse struct {
	Articles      []articleBody `json:"articles"`
	ArticlesCount int64         `json:"articlesCount"`
}

type tagsResponse struct {
	Tags []string `json:"tags"`
}

func newArticleBody(v *ports.ArticleView) articleBody {
	tags := v.Tags
	if tags == nil {
		tags = []string{}
	}
	return articleBody{
		Slug:           v.Slug,
		Title:          v.Title,
		Description:    v.Description,
		Body:           v.Body,
		TagList:        tags,
		CreatedAt:      v.CreatedAt,
		UpdatedAt:      v.UpdatedAt,
		Favorited:      v.IsFavorited,
		FavoritesCount: v.FavoritesCount,
		Author: profileBody{
			Username:  v.Author.Username,
			Bio:       v.Author.Bio,
			Image:     v.Author.ImageURL,
			Following: v.Author.IsFollowed,
		},
	}
}

func newArticlesResponse(list *ports.ArticleList) articlesResponse {
	items := make([]articleBody, 0, len(list.Items))
	for i := range list.Items {
		items = append(items, newArticleBody(&list.Items[i]))
	}
	return articlesResponse{Articles: items, ArticlesCount: list.Total}
}

// Create publishes a new article under the acting user.
//
// @Summary      Create an article
// @Tags         articles
// @Accept       json
// @Produce      json
// @Param        body  body      createArticleRequest  true  "Article"
// @Success      201   {object}  articleResponse
// @Failure      409   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Security     BearerAuth
// @Router       /articles [post]
func (h *ArticleHandler) Create(c echo.Context) error {
	var req createArticleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	view, err := h.articles.Create(c.Request().Context(), actorID(c), ports.CreateArticleInput{
		Title:       req.Article.Title,
		Description: req.Article.Description,
		Body:        req.Article.Body,
		Tags:        req.Article.TagList,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, articleResponse{Article: newArticleBody(view)})
}

// Get returns a single article by slug.
func (h *ArticleHandler) Get(c echo.Context) error {
	view, err := h.articles.Get(c.Request().Context(), c.Param("slug"), actorID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, articleResponse{Article: newArticleBody(view)})
}

// List returns the global article feed, newest first, filtered by the tag,
// author, and favorited query parameters.
//
// @Summary      List articles
// @Tags         articles
// @Produce      json
// @Param        tag        query     string  false  "Filter by tag"
// @Param        author     query     string  false  "Filter by author username"
// @Param        favorited  query     string  false  "Filter by favoriting username"
// @Param        limit      query     int     false  "Page size (default 20, max 100)"
// @Param        offset     query     int     false  "Items to skip"
// @Success      200        {object}  articlesResponse
// @Router       /articles [get]
func (h *ArticleHandler) List(c echo.Context) error {
	skip, limit := pagination(c)
	list, err := h.articles.List(c.Request().Context(), ports.ListArticlesInput{
		Tag:         c.QueryParam("tag"),
		Author:      c.QueryParam("author"),
		FavoritedBy: c.QueryParam("favorited"),
		Skip:        skip,
		Limit:       limit,
		ActorID:     actorID(c),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newArticlesResponse(list))
}

// Feed returns articles authored by users the acting user follows.
func (h *ArticleHandler) Feed(c echo.Context) error {
	skip, limit := pagination(c)
	list, err := h.articles.Feed(c.Request().Context(), actorID(c), skip, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newArticlesResponse(list))
}

// Update modifies an article's mutable attributes. The slug stays stable.
func (h *ArticleHandler) Update(c echo.Context) error {
	var req updateArticleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	view, err := h.articles.Update(c.Request().Context(), actorID(c), c.Param("slug"), ports.UpdateArticleInput{
		Title:       req.Article.Title,
		Description: req.Article.Description,
		Body:        req.Article.Body,
		Tags:        req.Article.TagList,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, articleResponse{Article: newArticleBody(view)})
}

// Delete removes an article along with its comments and favorite references.
func (h *ArticleHandler) Delete(c echo.Context) error {
	if err := h.articles.Delete(c.Request().Context(), actorID(c), c.Param("slug")); err != nil {
		return err
	}
	metrics.ArticlesDeletedTotal.Inc()
	return c.NoContent(http.StatusNoContent)
}

// Favorite marks the article as favorited by the acting user and bumps its
// counter.
func (h *ArticleHandler) Favorite(c echo.Context) error {
	flag := &ports.OptimisticFlag{
		Revert: func() { metrics.OptimisticRollbacksTotal.WithLabelValues("favorite").Inc() },
	}
	view, err := h.users.Favorite(c.Request().Context(), actorID(c), c.Param("slug"), flag)
	if err != nil {
		return err
	}
	metrics.RelationMutationsTotal.WithLabelValues("favorite").Inc()
	return c.JSON(http.StatusOK, articleResponse{Article: newArticleBody(view)})
}

// Unfavorite undoes Favorite.
func (h *ArticleHandler) Unfavorite(c echo.Context) error {
	flag := &ports.OptimisticFlag{
		Revert: func() { metrics.OptimisticRollbacksTotal.WithLabelValues("unfavorite").Inc() },
	}
	view, err := h.users.Unfavorite(c.Request().Context(), actorID(c), c.Param("slug"), flag)
	if err != nil {
		return err
	}
	metrics.RelationMutationsTotal.WithLabelValues("unfavorite").Inc()
	return c.JSON(http.StatusOK, articleResponse{Article: newArticleBody(view)})
}

// Tags returns the distinct set of tags in use.
func (h *ArticleHandler) Tags(c echo.Context) error {
	tags, err := h.articles.PopularTags(c.Request().Context())
	if err != nil {
		return err
	}
	if tags == nil {
		tags = []string{}
	}
	return c.JSON(http.StatusOK, tagsResponse{Tags: tags})
}

// pagination reads limit/offset query params; the service clamps them.
func pagination(c echo.Context) (skip, limit int) {
	skip, _ = strconv.Atoi(c.QueryParam("offset"))
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	return skip, limit
}
