package calendar

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"eventky/internal/app/server/api/http/apierr"
	"eventky/internal/app/server/api/http/dto"
	"eventky/internal/app/server/api/http/middleware/auth"
	"eventky/internal/domain/address"
	"eventky/internal/domain/calendar"
	"eventky/internal/infrastructure/index"
)

type Handler struct {
	service *calendar.Service
	index   *index.Client
	log     *slog.Logger
	public  huma.Middlewares
	authed  huma.Middlewares
}

// NewHandler serves reads with public and writes with authed
// middlewares. index may be nil.
func NewHandler(service *calendar.Service, idx *index.Client, log *slog.Logger, public, authed huma.Middlewares) *Handler {
	return &Handler{
		service: service,
		index:   idx,
		log:     log.With("component", "calendar_handler"),
		public:  public,
		authed:  authed,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.createOp(), h.create)
	huma.Register(api, h.updateOp(), h.update)
	huma.Register(api, h.deleteOp(), h.delete)
	huma.Register(api, h.listOp(), h.list)
	huma.Register(api, h.findOp(), h.find)
}

func (h *Handler) create(ctx context.Context, input *createInput) (*createdOutput, error) {
	uri, err := h.service.Create(ctx, calendar.CreateInput{
		Input: input.Body.input(),
		Image: input.Body.Image.File(),
	})
	if err != nil {
		return nil, apierr.From(err)
	}
	return &createdOutput{Body: dto.Created{URI: uri, ID: address.ExtractResourceID(uri)}}, nil
}

func (h *Handler) update(ctx context.Context, input *updateInput) (*emptyOutput, error) {
	uri, err := h.ownURI(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	err = h.service.Update(ctx, uri, calendar.UpdateInput{
		Input:       input.Body.input(),
		Image:       input.Body.Image.File(),
		RemoveImage: input.Body.RemoveImage,
	})
	if err != nil {
		return nil, apierr.From(err)
	}
	return &emptyOutput{}, nil
}

func (h *Handler) delete(ctx context.Context, input *idInput) (*emptyOutput, error) {
	uri, err := h.ownURI(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if err := h.service.Delete(ctx, uri); err != nil {
		return nil, apierr.From(err)
	}
	return &emptyOutput{}, nil
}

func (h *Handler) list(ctx context.Context, input *ownerInput) (*listOutput, error) {
	items, err := h.service.Reader().FetchCollection(ctx, input.Owner)
	if err != nil {
		return nil, apierr.From(err)
	}
	out := make([]calendarView, 0, len(items))
	for _, it := range items {
		out = append(out, calendarView{URI: it.URI, ID: it.ID, OwnerID: it.OwnerID, Source: "storage", Calendar: *it.Value})
	}
	return &listOutput{Body: out}, nil
}

// find prefers the index and falls back to reading storage.
func (h *Handler) find(ctx context.Context, input *findInput) (*findOutput, error) {
	reader := h.service.Reader()
	uri := reader.URI(input.Owner, input.ID)

	if h.index != nil {
		if v := h.index.GetCalendar(ctx, input.Owner, input.ID); v != nil {
			return &findOutput{Body: calendarView{URI: uri, ID: input.ID, OwnerID: input.Owner, Source: "index", Calendar: v.Calendar}}, nil
		}
	}

	cal := reader.FetchOne(ctx, input.Owner, input.ID)
	if cal == nil {
		return nil, apierr.NotFound()
	}
	return &findOutput{Body: calendarView{URI: uri, ID: input.ID, OwnerID: input.Owner, Source: "storage", Calendar: *cal}}, nil
}

func (h *Handler) ownURI(ctx context.Context, id string) (string, error) {
	owner, ok := auth.GetOwnerID(ctx)
	if !ok {
		return "", apierr.Unauthorized()
	}
	return h.service.Reader().URI(owner, id), nil
}
