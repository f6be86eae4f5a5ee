package bootstrap

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"eventky/internal/infrastructure/index"
)

type input struct {
	Owner string `path:"owner" doc:"Owner id"`
}

type output struct {
	Body response
}

type response struct {
	Users []json.RawMessage `json:"users"`
	Posts []json.RawMessage `json:"posts"`
	List  json.RawMessage   `json:"list,omitempty"`
}

type Handler struct {
	index      *index.Client
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(idx *index.Client, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		index:      idx,
		log:        log.With("component", "bootstrap_handler"),
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "bootstrap",
		Method:      http.MethodGet,
		Path:        "/api/bootstrap/{owner}",
		Summary:     "Initial feed of a user, straight from the index",
		Tags:        []string{"index"},
		Middlewares: h.middleware,
	}, h.bootstrap)
}

func (h *Handler) bootstrap(ctx context.Context, in *input) (*output, error) {
	resp := h.index.GetBootstrap(ctx, in.Owner)
	if resp == nil {
		return nil, huma.Error503ServiceUnavailable("The index service is unavailable.")
	}
	out := response{Users: resp.Users, Posts: resp.Posts, List: resp.List}
	if out.Users == nil {
		out.Users = []json.RawMessage{}
	}
	if out.Posts == nil {
		out.Posts = []json.RawMessage{}
	}
	return &output{Body: out}, nil
}
