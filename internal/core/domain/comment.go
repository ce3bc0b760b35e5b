package domain

import (
	"fmt"
	"time"
)

const MaxCommentLength = 5000

// Comment belongs to exactly one article; the article reference is immutable.
type Comment struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	AuthorID  string    `json:"-" bson:"author_id"`
	ArticleID string    `json:"-" bson:"article_id"`
	Body      string    `json:"body" bson:"body"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
}

// EntityID returns the comment's identity, empty until first save.
func (c *Comment) EntityID() string { return c.ID }

// IsNew reports whether the comment has not been persisted yet.
func (c *Comment) IsNew() bool { return c.ID == "" }

// AuthoredBy returns the id of the owning author.
func (c *Comment) AuthoredBy() string { return c.AuthorID }

// Validate checks the declared attribute constraints.
func (c *Comment) Validate() error {
	if c.Body == "" || len(c.Body) > MaxCommentLength {
		return validationError("body", fmt.Sprintf("Comment must be between 1 and %d characters.", MaxCommentLength))
	}
	return nil
}
