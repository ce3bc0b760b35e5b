package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/conduit-labs/publishing-api/internal/core/ports"
)

// CommentHandler handles commenting on articles.
type CommentHandler struct {
	comments ports.CommentService
}

func NewCommentHandler(comments ports.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

type addCommentPayload struct {
	Body string `json:"body" validate:"required,max=5000"`
}

type addCommentRequest struct {
	Comment addCommentPayload `json:"comment"`
}

type commentBody struct {
	ID        string      `json:"id"`
	Body      string      `json:"body"`
	CreatedAt time.Time   `json:"createdAt"`
	Author    profileBody `json:"author"`
}

type commentResponse struct {
	Comment commentBody `json:"comment"`
}

type commentsResponse struct {
	Comments []commentBody `json:"comments"`
}

func newCommentBody(v *ports.CommentView) commentBody {
	return commentBody{
		ID:        v.ID,
		Body:      v.Body,
		CreatedAt: v.CreatedAt,
		Author: profileBody{
			Username:  v.Author.Username,
			Bio:       v.Author.Bio,
			Image:     v.Author.ImageURL,
			Following: v.Author.IsFollowed,
		},
	}
}

// Add posts a comment on the article identified by slug.
func (h *CommentHandler) Add(c echo.Context) error {
	var req addCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	view, err := h.comments.Add(c.Request().Context(), actorID(c), c.Param("slug"), req.Comment.Body)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, commentResponse{Comment: newCommentBody(view)})
}

// List returns an article's comments in creation order.
func (h *CommentHandler) List(c echo.Context) error {
	views, err := h.comments.List(c.Request().Context(), c.Param("slug"), actorID(c))
	if err != nil {
		return err
	}
	items := make([]commentBody, 0, len(views))
	for i := range views {
		items = append(items, newCommentBody(&views[i]))
	}
	return c.JSON(http.StatusOK, commentsResponse{Comments: items})
}

// Delete removes a comment. Only the comment's author may delete it.
func (h *CommentHandler) Delete(c echo.Context) error {
	if err := h.comments.Delete(c.Request().Context(), actorID(c), c.Param("slug"), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
