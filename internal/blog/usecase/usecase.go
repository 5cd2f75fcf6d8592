package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/shandysiswandi/storefront/internal/blog/entity"
	"github.com/shandysiswandi/storefront/internal/pkg/clock"
	"github.com/shandysiswandi/storefront/internal/pkg/config"
	"github.com/shandysiswandi/storefront/internal/pkg/instrument"
	"github.com/shandysiswandi/storefront/internal/pkg/storage"
	"github.com/shandysiswandi/storefront/internal/pkg/uid"
	"github.com/shandysiswandi/storefront/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

// DefaultCoverBucket holds cover images when modules.blog.cover_bucket is unset.
const DefaultCoverBucket = "blog-covers"

const (
	defaultCoverMaxSize = 5 << 20
	defaultCoverURLTTL  = time.Hour
)

type repoDB interface {
	ListPublishedPosts(ctx context.Context, filter entity.PostListFilter) ([]entity.Post, int64, error)
	GetPublishedPostBySlug(ctx context.Context, slug string) (*entity.Post, error)
	GetPostBySlug(ctx context.Context, slug string) (*entity.Post, error)
	CreatePost(ctx context.Context, post entity.Post) error
	UpdatePostCover(ctx context.Context, id int64, coverKey string) error
}

type Usecase struct {
	repoDB    repoDB
	storage   storage.Storage
	validator validator.Validator
	uid       uid.NumberID
	uuid      uid.StringID
	clock     clock.Clocker
	ins       instrument.Instrumentation

	coverBucket  string
	coverMaxSize int64
	coverURLTTL  time.Duration
}

type Dependency struct {
	RepoDB     repoDB
	Storage    storage.Storage
	Validator  validator.Validator
	UID        uid.NumberID
	UUID       uid.StringID
	Clock      clock.Clocker
	Config     config.Config
	Instrument instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	uc := &Usecase{
		repoDB:       dep.RepoDB,
		storage:      dep.Storage,
		validator:    dep.Validator,
		uid:          dep.UID,
		uuid:         dep.UUID,
		clock:        dep.Clock,
		ins:          dep.Instrument,
		coverBucket:  DefaultCoverBucket,
		coverMaxSize: defaultCoverMaxSize,
		coverURLTTL:  defaultCoverURLTTL,
	}

	if dep.Config != nil {
		if v := strings.TrimSpace(dep.Config.GetString("modules.blog.cover_bucket")); v != "" {
			uc.coverBucket = v
		}
		if v := dep.Config.GetInt64("modules.blog.cover_max_size_bytes"); v > 0 {
			uc.coverMaxSize = v
		}
		if v := dep.Config.GetMinute("modules.blog.cover_url_ttl_minutes"); v > 0 {
			uc.coverURLTTL = v
		}
	}

	return uc
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("blog.usecase").Start(ctx, name)
}

// withCover presigns the cover URL. A presign failure drops the URL but keeps
// the post readable.
func (s *Usecase) withCover(ctx context.Context, post entity.Post) entity.PostWithCover {
	out := entity.PostWithCover{Post: post}
	if post.CoverKey == "" {
		return out
	}

	url, err := s.storage.PresignGet(ctx, s.coverBucket, post.CoverKey, s.coverURLTTL)
	if err != nil {
		slog.WarnContext(ctx, "failed to presign post cover", "post_id", post.ID, "error", err)
		return out
	}

	out.CoverURL = url
	return out
}
