package event

import (
	"context"
	"slices"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"eventky/internal/app/server/api/http/apierr"
	"eventky/internal/app/server/api/http/dto"
	"eventky/internal/app/server/api/http/middleware/auth"
	"eventky/internal/domain/address"
	"eventky/internal/domain/event"
	"eventky/internal/infrastructure/index"
)

type Handler struct {
	service *event.Service
	index   *index.Client
	log     *slog.Logger
	public  huma.Middlewares
	authed  huma.Middlewares
}

func NewHandler(service *event.Service, idx *index.Client, log *slog.Logger, public, authed huma.Middlewares) *Handler {
	return &Handler{
		service: service,
		index:   idx,
		log:     log.With("component", "event_handler"),
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
	uri, err := h.service.Create(ctx, event.CreateInput{
		Input: input.Body.input(),
		UID:   input.Body.UID,
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
	err = h.service.Update(ctx, uri, event.UpdateInput{
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

func (h *Handler) list(ctx context.Context, input *listInput) (*listOutput, error) {
	if h.index != nil {
		if views := h.index.GetEvents(ctx, input.Owner); views != nil {
			out := make([]eventView, 0, len(views))
			for _, v := range views {
				if input.Calendar != "" && !slices.Contains(v.CalendarURIs, input.Calendar) {
					continue
				}
				out = append(out, eventView{URI: v.URI, ID: v.ID, OwnerID: v.OwnerID, Event: v.Event})
			}
			return &listOutput{Body: listResponse{Source: "index", Events: out}}, nil
		}
		h.log.Debug("index has no events, reading storage", "owner_id", input.Owner)
	}

	items, err := h.service.Reader().FetchCollection(ctx, input.Owner)
	if err != nil {
		return nil, apierr.From(err)
	}
	if input.Calendar != "" {
		items = event.ByCalendar(items, input.Calendar)
	}
	out := make([]eventView, 0, len(items))
	for _, it := range items {
		out = append(out, eventView{URI: it.URI, ID: it.ID, OwnerID: it.OwnerID, Event: *it.Value})
	}
	return &listOutput{Body: listResponse{Source: "storage", Events: out}}, nil
}

func (h *Handler) find(ctx context.Context, input *findInput) (*findOutput, error) {
	ev := h.service.Reader().FetchOne(ctx, input.Owner, input.ID)
	if ev == nil {
		return nil, apierr.NotFound()
	}
	return &findOutput{Body: eventView{
		URI:     h.service.Reader().URI(input.Owner, input.ID),
		ID:      input.ID,
		OwnerID: input.Owner,
		Event:   *ev,
	}}, nil
}

func (h *Handler) ownURI(ctx context.Context, id string) (string, error) {
	owner, ok := auth.GetOwnerID(ctx)
	if !ok {
		return "", apierr.Unauthorized()
	}
	return h.service.Reader().URI(owner, id), nil
}
