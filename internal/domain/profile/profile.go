// Package profile defines the social-profile collaborator interface. The core
// treats any fetch failure as "no profile data" and falls back to simulated
// collection.
package profile

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("profile not found")
	ErrUnauthorized = errors.New("profile fetch unauthorized")
	ErrRateLimited  = errors.New("profile fetch rate limited")
)

// Post is one timeline entry attached to a fetched profile.
type Post struct {
	ID           string    `json:"id"`
	Caption      string    `json:"caption"`
	TakenAt      time.Time `json:"taken_at"`
	LikeCount    int       `json:"like_count"`
	CommentCount int       `json:"comment_count"`
	URL          string    `json:"url"`
}

// Profile is the metadata returned by the social network for one username.
type Profile struct {
	UserID     string `json:"user_id"`
	Username   string `json:"username"`
	FullName   string `json:"full_name"`
	Biography  string `json:"biography"`
	Followers  int    `json:"followers_count"`
	Following  int    `json:"following_count"`
	IsPrivate  bool   `json:"is_private"`
	IsVerified bool   `json:"is_verified"`
	PicURL     string `json:"profile_pic_url,omitempty"`
	Posts      []Post `json:"initial_posts,omitempty"`
}

// Fetcher port (interface to the social network's profile API).
type Fetcher interface {
	Fetch(ctx context.Context, username string) (*Profile, error)
}
