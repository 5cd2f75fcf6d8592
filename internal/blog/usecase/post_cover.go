package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/shandysiswandi/storefront/internal/blog/entity"
	"github.com/shandysiswandi/storefront/internal/pkg/goerror"
	"github.com/shandysiswandi/storefront/internal/pkg/storage"
)

//nolint:gochecknoglobals // global for fast reuse
var coverContentTypeExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

var errCoverTooLarge = errors.New("cover exceeds max size")

type PostCoverInput struct {
	Slug        string
	File        io.Reader
	ContentType string
}

func (s *Usecase) PostCover(ctx context.Context, in PostCoverInput) (*entity.PostWithCover, error) {
	ctx, span := s.startSpan(ctx, "PostCover")
	defer span.End()

	if in.File == nil {
		return nil, goerror.NewInvalidInput(nil, "file", "cover file is required")
	}

	contentType := strings.ToLower(strings.TrimSpace(in.ContentType))
	ext, ok := coverContentTypeExt[contentType]
	if !ok {
		return nil, goerror.NewInvalidInput(nil, "file", "cover must be a png, jpeg or webp image")
	}

	slug := strings.ToLower(strings.TrimSpace(in.Slug))
	post, err := s.repoDB.GetPostBySlug(ctx, slug)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewBusiness("post not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get post by slug", "slug", slug, "error", err)
		return nil, goerror.NewServer(err)
	}

	key := fmt.Sprintf("posts/%d/%s%s", post.ID, s.uuid.Generate(), ext)
	_, err = s.storage.PutObject(ctx, s.coverBucket, key, &limitedReader{r: in.File, max: s.coverMaxSize}, storage.PutOptions{
		Size:        -1,
		ContentType: contentType,
		Metadata:    map[string]string{"post_id": strconv.FormatInt(post.ID, 10)},
	})
	if err != nil {
		if errors.Is(err, errCoverTooLarge) {
			return nil, goerror.NewInvalidInput(nil, "file", fmt.Sprintf("cover must be at most %d bytes", s.coverMaxSize))
		}
		slog.ErrorContext(ctx, "failed to upload post cover", "post_id", post.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.repoDB.UpdatePostCover(ctx, post.ID, key); err != nil {
		slog.ErrorContext(ctx, "failed to repo update post cover", "post_id", post.ID, "error", err)
		if errDel := s.storage.DeleteObject(ctx, s.coverBucket, key); errDel != nil {
			slog.WarnContext(ctx, "failed to delete orphan cover", "key", key, "error", errDel)
		}
		return nil, goerror.NewServer(err)
	}

	if post.CoverKey != "" {
		if err := s.storage.DeleteObject(ctx, s.coverBucket, post.CoverKey); err != nil {
			slog.WarnContext(ctx, "failed to delete previous cover", "key", post.CoverKey, "error", err)
		}
	}

	post.CoverKey = key
	out := s.withCover(ctx, *post)
	return &out, nil
}

// limitedReader fails the read once more than max bytes were offered, so the
// upload aborts instead of storing a truncated image.
type limitedReader struct {
	r    io.Reader
	max  int64
	read int64
	one  [1]byte
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.read >= l.max {
		n, err := l.r.Read(l.one[:])
		if n > 0 || err == nil {
			return 0, errCoverTooLarge
		}
		return 0, err
	}

	if remaining := l.max - l.read; int64(len(p)) > remaining {
		p = p[:remaining]
	}

	n, err := l.r.Read(p)
	l.read += int64(n)
	return n, err
}
