package domain

import (
	"fmt"
	"time"
)

const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 500
	MaxBodyLength        = 50000
	MaxTags              = 10
	MaxTagLength         = 30
)

// Article is a published piece. FavoritesCount is a derived cache of how many
// users hold this article in their favorites; it is maintained by paired
// writes, not a transactional guarantee. IsFavorited is derived per request.
type Article struct {
	ID             string    `json:"id" bson:"_id,omitempty"`
	AuthorID       string    `json:"-" bson:"author_id"`
	Title          string    `json:"title" bson:"title"`
	Description    string    `json:"description" bson:"description"`
	Body           string    `json:"body" bson:"body"`
	Tags           []string  `json:"tagList" bson:"tags"`
	Slug           string    `json:"slug" bson:"slug"`
	FavoritesCount int       `json:"favoritesCount" bson:"favorites_count"`
	CreatedAt      time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" bson:"updated_at"`

	IsFavorited bool `json:"favorited" bson:"-"`
}

// EntityID returns the article's identity, empty until first save.
func (a *Article) EntityID() string { return a.ID }

// IsNew reports whether the article has not been persisted yet.
func (a *Article) IsNew() bool { return a.ID == "" }

// AuthoredBy returns the id of the owning author.
func (a *Article) AuthoredBy() string { return a.AuthorID }

// Validate checks the declared attribute constraints.
func (a *Article) Validate() error {
	if a.Title == "" || len(a.Title) > MaxTitleLength {
		return validationError("title", fmt.Sprintf("Title must be between 1 and %d characters.", MaxTitleLength))
	}
	if a.Description == "" || len(a.Description) > MaxDescriptionLength {
		return validationError("description", fmt.Sprintf("Description must be between 1 and %d characters.", MaxDescriptionLength))
	}
	if a.Body == "" || len(a.Body) > MaxBodyLength {
		return validationError("body", fmt.Sprintf("Body must be between 1 and %d characters.", MaxBodyLength))
	}
	if len(a.Tags) > MaxTags {
		return validationError("tagList", fmt.Sprintf("An article may carry at most %d tags.", MaxTags))
	}
	for _, tag := range a.Tags {
		if tag == "" || len(tag) > MaxTagLength {
			return validationError("tagList", fmt.Sprintf("Each tag must be between 1 and %d characters.", MaxTagLength))
		}
	}
	return nil
}
