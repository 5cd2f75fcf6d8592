package inbound

import (
	"net/http"
	"time"

	"github.com/shandysiswandi/storefront/internal/blog/entity"
)

type PostCreateRequest struct {
	Title     string `json:"title"`
	Summary   string `json:"summary"`
	Body      string `json:"body"`
	Published bool   `json:"published"`
}

type PostResponse struct {
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Summary     string     `json:"summary,omitempty"`
	Body        string     `json:"body,omitempty"`
	CoverURL    string     `json:"cover_url,omitempty"`
	Published   bool       `json:"published"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

func toPostResponse(p entity.PostWithCover, withBody bool) PostResponse {
	resp := PostResponse{
		Slug:        p.Slug,
		Title:       p.Title,
		Summary:     p.Summary,
		CoverURL:    p.CoverURL,
		Published:   p.Published,
		PublishedAt: p.PublishedAt,
	}
	if withBody {
		resp.Body = p.Body
	}
	return resp
}

type PostsResponse struct {
	Posts []PostResponse `json:"posts"`
	// meta
	total int64
	size  int32
	page  int32
}

func (r PostsResponse) Meta() map[string]any {
	return map[string]any{
		"total": r.total,
		"size":  r.size,
		"page":  r.page,
	}
}

type PostCreateResponse struct {
	PostResponse
}

func (PostCreateResponse) StatusCode() int { return http.StatusCreated }

func (PostCreateResponse) Message() string {
	return "Post created"
}
