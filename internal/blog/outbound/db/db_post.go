package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shandysiswandi/storefront/internal/blog/entity"
	"github.com/shandysiswandi/storefront/internal/pkg/pgstore"
)

const postColumns = `id, slug, title, summary, body, cover_key, author_id, published, published_at, created_at, updated_at`

func scanPost(row pgx.Row) (entity.Post, error) {
	var p entity.Post
	err := row.Scan(&p.ID, &p.Slug, &p.Title, &p.Summary, &p.Body, &p.CoverKey, &p.AuthorID,
		&p.Published, &p.PublishedAt, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (s *DB) ListPublishedPosts(ctx context.Context, filter entity.PostListFilter) (_ []entity.Post, _ int64, err error) {
	ctx, span := s.Start(ctx, "ListPublishedPosts")
	defer func() { pgstore.End(span, err) }()

	var total int64
	if err = s.Conn.QueryRow(ctx, `SELECT count(*) FROM blog_posts WHERE published`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}

	rows, err := s.Conn.Query(ctx,
		`SELECT `+postColumns+` FROM blog_posts
		 WHERE published ORDER BY published_at DESC, id DESC LIMIT $1 OFFSET $2`,
		filter.Limit, filter.Offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("query posts: %w", err)
	}

	posts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.Post, error) {
		return scanPost(row)
	})
	if err != nil {
		return nil, 0, fmt.Errorf("scan posts: %w", err)
	}

	return posts, total, nil
}

func (s *DB) GetPublishedPostBySlug(ctx context.Context, slug string) (_ *entity.Post, err error) {
	ctx, span := s.Start(ctx, "GetPublishedPostBySlug")
	defer func() { pgstore.End(span, err) }()

	p, err := scanPost(s.Conn.QueryRow(ctx,
		`SELECT `+postColumns+` FROM blog_posts WHERE slug = $1 AND published`, slug))
	if err != nil {
		err = pgstore.MapError(err)
		return nil, err
	}

	return &p, nil
}

func (s *DB) GetPostBySlug(ctx context.Context, slug string) (_ *entity.Post, err error) {
	ctx, span := s.Start(ctx, "GetPostBySlug")
	defer func() { pgstore.End(span, err) }()

	p, err := scanPost(s.Conn.QueryRow(ctx,
		`SELECT `+postColumns+` FROM blog_posts WHERE slug = $1`, slug))
	if err != nil {
		err = pgstore.MapError(err)
		return nil, err
	}

	return &p, nil
}

func (s *DB) CreatePost(ctx context.Context, post entity.Post) (err error) {
	ctx, span := s.Start(ctx, "CreatePost")
	defer func() { pgstore.End(span, err) }()

	_, err = s.Conn.Exec(ctx,
		`INSERT INTO blog_posts (`+postColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		post.ID, post.Slug, post.Title, post.Summary, post.Body, post.CoverKey, post.AuthorID,
		post.Published, post.PublishedAt, post.CreatedAt, post.UpdatedAt,
	)

	err = pgstore.MapError(err)
	return err
}

func (s *DB) UpdatePostCover(ctx context.Context, id int64, coverKey string) (err error) {
	ctx, span := s.Start(ctx, "UpdatePostCover")
	defer func() { pgstore.End(span, err) }()

	tag, err := s.Conn.Exec(ctx,
		`UPDATE blog_posts SET cover_key = $2, updated_at = now() WHERE id = $1`, id, coverKey)
	if err != nil {
		return fmt.Errorf("update cover: %w", err)
	}
	if tag.RowsAffected() == 0 {
		err = pgstore.MapError(pgx.ErrNoRows)
		return err
	}

	return nil
}
