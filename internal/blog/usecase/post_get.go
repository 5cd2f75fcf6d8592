package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/storefront/internal/blog/entity"
	"github.com/shandysiswandi/storefront/internal/pkg/goerror"
)

func (s *Usecase) PostGet(ctx context.Context, slug string) (*entity.PostWithCover, error) {
	ctx, span := s.startSpan(ctx, "PostGet")
	defer span.End()

	slug = strings.ToLower(strings.TrimSpace(slug))

	post, err := s.repoDB.GetPublishedPostBySlug(ctx, slug)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewBusiness("post not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get post by slug", "slug", slug, "error", err)
		return nil, goerror.NewServer(err)
	}

	out := s.withCover(ctx, *post)
	return &out, nil
}
