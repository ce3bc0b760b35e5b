package domain

import (
	"fmt"
	"regexp"
	"time"
)

const (
	MinEmailLength    = 3
	MaxEmailLength    = 100
	MaxUsernameLength = 50
	MaxPasswordLength = 100
	MaxBioLength      = 200
	MaxImageURLLength = 200
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

// User is an account holder. FavoritedArticleIDs and FollowedUserIDs are
// relation sets owned by the user; IsFollowed is derived per request and
// never stored.
type User struct {
	ID                  string    `json:"id" bson:"_id,omitempty"`
	Email               string    `json:"email,omitempty" bson:"email"`
	Username            string    `json:"username" bson:"username"`
	PasswordHash        string    `json:"-" bson:"password_hash"`
	Bio                 string    `json:"bio" bson:"bio"`
	ImageURL            string    `json:"image" bson:"image_url"`
	FavoritedArticleIDs []string  `json:"-" bson:"favorited_article_ids"`
	FollowedUserIDs     []string  `json:"-" bson:"followed_user_ids"`
	CreatedAt           time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt           time.Time `json:"updated_at" bson:"updated_at"`

	IsFollowed bool `json:"following" bson:"-"`
}

// EntityID returns the user's identity, empty until first save.
func (u *User) EntityID() string { return u.ID }

// IsNew reports whether the user has not been persisted yet.
func (u *User) IsNew() bool { return u.ID == "" }

// Validate checks the declared attribute constraints.
func (u *User) Validate() error {
	if len(u.Email) < MinEmailLength || len(u.Email) > MaxEmailLength {
		return validationError("email", fmt.Sprintf("Email must be between %d and %d characters.", MinEmailLength, MaxEmailLength))
	}
	if u.Username == "" || len(u.Username) > MaxUsernameLength {
		return validationError("username", fmt.Sprintf("Username must be between 1 and %d characters.", MaxUsernameLength))
	}
	if !usernamePattern.MatchString(u.Username) {
		return validationError("username", "Username may only contain letters and digits.")
	}
	if len(u.Bio) > MaxBioLength {
		return validationError("bio", fmt.Sprintf("Bio must be at most %d characters.", MaxBioLength))
	}
	if len(u.ImageURL) > MaxImageURLLength {
		return validationError("image", fmt.Sprintf("Image URL must be at most %d characters.", MaxImageURLLength))
	}
	return nil
}

// ValidatePassword checks a plaintext password before hashing.
func ValidatePassword(password string) error {
	if password == "" {
		return validationError("password", "Password must not be empty.")
	}
	if len(password) > MaxPasswordLength {
		return validationError("password", fmt.Sprintf("Password must be at most %d characters.", MaxPasswordLength))
	}
	return nil
}

// HasFavorited reports whether the article id is in the user's favorites.
func (u *User) HasFavorited(articleID string) bool {
	return containsID(u.FavoritedArticleIDs, articleID)
}

// IsFollowing reports whether the user id is in the user's followed set.
func (u *User) IsFollowing(userID string) bool {
	return containsID(u.FollowedUserIDs, userID)
}

func containsID(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

// RemoveID returns ids without id, preserving order.
func RemoveID(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, candidate := range ids {
		if candidate != id {
			out = append(out, candidate)
		}
	}
	return out
}
