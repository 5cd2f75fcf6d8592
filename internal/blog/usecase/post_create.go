package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/storefront/internal/blog/entity"
	"github.com/shandysiswandi/storefront/internal/pkg/goerror"
	"github.com/shandysiswandi/storefront/internal/pkg/jwt"
	"github.com/shandysiswandi/storefront/internal/pkg/strcase"
)

type PostCreateInput struct {
	Title     string `validate:"required,max=200"`
	Summary   string `validate:"max=500"`
	Body      string `validate:"required"`
	Published bool
}

func (s *Usecase) PostCreate(ctx context.Context, in PostCreateInput) (*entity.Post, error) {
	ctx, span := s.startSpan(ctx, "PostCreate")
	defer span.End()

	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewBusiness("authentication required", goerror.CodeUnauthorized)
	}

	in.Title = strings.TrimSpace(in.Title)
	in.Summary = strings.TrimSpace(in.Summary)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	slug := strcase.ToSlug(in.Title)
	if slug == "" {
		return nil, goerror.NewInvalidInput(nil, "title", "title must contain letters or digits")
	}

	now := s.clock.Now()
	post := entity.Post{
		ID:        s.uid.Generate(),
		Slug:      slug,
		Title:     in.Title,
		Summary:   in.Summary,
		Body:      in.Body,
		AuthorID:  clm.UserID,
		Published: in.Published,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.Published {
		post.PublishedAt = &now
	}

	if err := s.repoDB.CreatePost(ctx, post); err != nil {
		if errors.Is(err, goerror.ErrConflict) {
			slog.WarnContext(ctx, "post slug already exists", "slug", slug)
			return nil, goerror.NewBusiness("a post with that title already exists", goerror.CodeConflict)
		}
		slog.ErrorContext(ctx, "failed to repo create post", "slug", slug, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &post, nil
}
