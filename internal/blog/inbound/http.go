package inbound

import (
	"context"

	"github.com/shandysiswandi/storefront/internal/blog/entity"
	"github.com/shandysiswandi/storefront/internal/blog/usecase"
	"github.com/shandysiswandi/storefront/internal/pkg/router"
)

const (
	objPost  = "blog:post"
	actWrite = "write"
)

type uc interface {
	PostList(ctx context.Context, in usecase.PostListInput) (*usecase.PostListOutput, error)
	PostGet(ctx context.Context, slug string) (*entity.PostWithCover, error)
	PostCreate(ctx context.Context, in usecase.PostCreateInput) (*entity.Post, error)
	PostCover(ctx context.Context, in usecase.PostCoverInput) (*entity.PostWithCover, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.PublicGET("/api/v1/blog/posts", end.PostList)
	r.PublicGET("/api/v1/blog/posts/:slug", end.PostGet)
	r.POST("/api/v1/blog/posts", end.PostCreate, r.Authorize(objPost, actWrite))
	r.PUT("/api/v1/blog/posts/:slug/cover", end.PostCover, r.Authorize(objPost, actWrite))
}
