package usecase

import (
	"context"
	"log/slog"

	"github.com/samber/lo"
	"github.com/shandysiswandi/storefront/internal/blog/entity"
	"github.com/shandysiswandi/storefront/internal/pkg/goerror"
)

type PostListInput struct {
	Page int32
	Size int32
}

type PostListOutput struct {
	Posts []entity.PostWithCover
	Total int64
	Page  int32
	Size  int32
}

func (s *Usecase) PostList(ctx context.Context, in PostListInput) (*PostListOutput, error) {
	ctx, span := s.startSpan(ctx, "PostList")
	defer span.End()

	if in.Size <= 0 || in.Size > 50 {
		in.Size = 10
	}
	page := max(in.Page, 1)

	posts, total, err := s.repoDB.ListPublishedPosts(ctx, entity.PostListFilter{
		Limit:  in.Size,
		Offset: (page - 1) * in.Size,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list published posts", "error", err)
		return nil, goerror.NewServer(err)
	}

	return &PostListOutput{
		Posts: lo.Map(posts, func(p entity.Post, _ int) entity.PostWithCover { return s.withCover(ctx, p) }),
		Total: total,
		Page:  page,
		Size:  in.Size,
	}, nil
}
