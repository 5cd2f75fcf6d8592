package inbound

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/samber/lo"
	"github.com/shandysiswandi/storefront/internal/blog/entity"
	"github.com/shandysiswandi/storefront/internal/blog/usecase"
	"github.com/shandysiswandi/storefront/internal/pkg/goerror"
	"github.com/shandysiswandi/storefront/internal/pkg/router"
)

type HTTPEndpoint struct {
	uc uc
}

func (h *HTTPEndpoint) PostList(r *router.Request) (any, error) {
	size, err := r.GetQueryInt32("size")
	if err != nil {
		return nil, err
	}

	page, err := r.GetQueryInt32("page")
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.PostList(r.Context(), usecase.PostListInput{Page: page, Size: size})
	if err != nil {
		return nil, err
	}

	return PostsResponse{
		Posts: lo.Map(resp.Posts, func(p entity.PostWithCover, _ int) PostResponse { return toPostResponse(p, false) }),
		total: resp.Total,
		size:  resp.Size,
		page:  resp.Page,
	}, nil
}

func (h *HTTPEndpoint) PostGet(r *router.Request) (any, error) {
	resp, err := h.uc.PostGet(r.Context(), r.GetParam("slug"))
	if err != nil {
		return nil, err
	}

	return toPostResponse(*resp, true), nil
}

func (h *HTTPEndpoint) PostCreate(r *router.Request) (any, error) {
	var req PostCreateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	post, err := h.uc.PostCreate(r.Context(), usecase.PostCreateInput{
		Title:     req.Title,
		Summary:   req.Summary,
		Body:      req.Body,
		Published: req.Published,
	})
	if err != nil {
		return nil, err
	}

	return PostCreateResponse{PostResponse: toPostResponse(entity.PostWithCover{Post: *post}, true)}, nil
}

// PostCover streams the multipart "file" field to object storage. The content
// type is sniffed from the first bytes, not taken from the part header.
func (h *HTTPEndpoint) PostCover(r *router.Request) (any, error) {
	ctx := r.Context()

	file, err := r.StreamSingleFile("file")
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := file.Close(); err != nil {
			slog.ErrorContext(ctx, "failed to close file", "error", err)
		}
	}()

	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, goerror.NewInvalidFormat()
	}

	resp, err := h.uc.PostCover(ctx, usecase.PostCoverInput{
		Slug:        r.GetParam("slug"),
		File:        io.MultiReader(bytes.NewReader(head[:n]), file),
		ContentType: http.DetectContentType(head[:n]),
	})
	if err != nil {
		return nil, err
	}

	return toPostResponse(*resp, false), nil
}
