package entity

import "time"

type Post struct {
	ID          int64
	Slug        string
	Title       string
	Summary     string
	Body        string
	CoverKey    string
	AuthorID    int64
	Published   bool
	PublishedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PostWithCover is a post with a time-limited download URL for its cover.
type PostWithCover struct {
	Post
	CoverURL string
}

type PostListFilter struct {
	Limit  int32
	Offset int32
}
