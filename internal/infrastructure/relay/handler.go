package relay

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/exp/slog"
)

const defaultPollTimeout = 25 * time.Second

// Handler serves a MemoryRelay with the protocol Client speaks.
type Handler struct {
	relay       *MemoryRelay
	pollTimeout time.Duration
	log         *slog.Logger
}

func NewHandler(relay *MemoryRelay, pollTimeout time.Duration, log *slog.Logger) *Handler {
	if pollTimeout <= 0 {
		pollTimeout = defaultPollTimeout
	}
	return &Handler{
		relay:       relay,
		pollTimeout: pollTimeout,
		log:         log.With("component", "relay_handler"),
	}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/{channel}", h.send)
	r.Get("/{channel}", h.receive)
	return r
}

func (h *Handler) send(w http.ResponseWriter, r *http.Request) {
	channel := chi.URLParam(r, "channel")
	body, err := io.ReadAll(io.LimitReader(r.Body, maxMessageSize))
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}
	if err := h.relay.Send(r.Context(), channel, body); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.log.Debug("relay message stored", "channel", channel, "size", len(body))
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) receive(w http.ResponseWriter, r *http.Request) {
	channel := chi.URLParam(r, "channel")
	ctx, cancel := context.WithTimeout(r.Context(), h.pollTimeout)
	defer cancel()

	msg, err := h.relay.Receive(ctx, channel)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			w.WriteHeader(http.StatusRequestTimeout)
			return
		}
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = w.Write(msg)
}
