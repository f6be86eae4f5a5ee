package file

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"eventky/internal/app/server/api/http/apierr"
	"eventky/internal/app/server/api/http/dto"
	"eventky/internal/app/server/api/http/middleware/auth"
	"eventky/internal/domain/address"
	"eventky/internal/domain/file"
	"eventky/internal/infrastructure/index"
)

// base64 inflates the payload by a third.
const maxUploadBytes = 16 << 20

type Handler struct {
	service *file.Service
	index   *index.Client
	log     *slog.Logger
	public  huma.Middlewares
	authed  huma.Middlewares
}

func NewHandler(service *file.Service, idx *index.Client, log *slog.Logger, public, authed huma.Middlewares) *Handler {
	return &Handler{
		service: service,
		index:   idx,
		log:     log.With("component", "file_handler"),
		public:  public,
		authed:  authed,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.uploadOp(), h.upload)
	huma.Register(api, h.deleteOp(), h.delete)
	huma.Register(api, h.findOp(), h.find)
	huma.Register(api, h.blobOp(), h.blob)
}

func (h *Handler) upload(ctx context.Context, input *uploadInput) (*createdOutput, error) {
	uri, err := h.service.Upload(ctx, *input.Body.File())
	if err != nil {
		return nil, apierr.From(err)
	}
	return &createdOutput{Body: dto.Created{URI: uri, ID: address.ExtractResourceID(uri)}}, nil
}

func (h *Handler) delete(ctx context.Context, input *idInput) (*emptyOutput, error) {
	owner, ok := auth.GetOwnerID(ctx)
	if !ok {
		return nil, apierr.Unauthorized()
	}
	if err := h.service.Delete(ctx, h.service.Reader().URI(owner, input.ID)); err != nil {
		return nil, apierr.From(err)
	}
	return &emptyOutput{}, nil
}

// find reads the metadata from storage and asks the index for a
// rendition URL, which stays empty until the file is indexed.
func (h *Handler) find(ctx context.Context, input *findInput) (*findOutput, error) {
	reader := h.service.Reader()
	meta := reader.FetchOne(ctx, input.Owner, input.ID)
	if meta == nil {
		return nil, apierr.NotFound()
	}
	view := fileView{URI: reader.URI(input.Owner, input.ID), ID: input.ID, OwnerID: input.Owner, File: *meta}

	if h.index != nil {
		if recs := h.index.GetFilesByIDs(ctx, []string{view.URI}); len(recs) > 0 {
			view.ImageURL = h.index.FileImageURL(&recs[0], input.Size)
		}
	}
	return &findOutput{Body: view}, nil
}

func (h *Handler) blob(ctx context.Context, input *findInput) (*blobOutput, error) {
	meta := h.service.Reader().FetchOne(ctx, input.Owner, input.ID)
	if meta == nil {
		return nil, apierr.NotFound()
	}
	data, err := h.service.Blob(ctx, meta)
	if err != nil {
		return nil, apierr.From(err)
	}
	return &blobOutput{ContentType: meta.ContentType, Body: data}, nil
}
