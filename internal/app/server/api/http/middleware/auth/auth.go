package auth

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"eventky/internal/domain/apperr"
)

// SessionSource reports the owner of the current session, "" when
// signed out.
type SessionSource interface {
	OwnerID() string
}

type Auth struct {
	sessions SessionSource
	log      *slog.Logger
}

func New(sessions SessionSource, log *slog.Logger) *Auth {
	return &Auth{
		sessions: sessions,
		log:      log.With("component", "auth_middleware"),
	}
}

type contextKey string

const OwnerIDKey contextKey = "ownerID"

// Middleware rejects the request with 401 unless a session is active,
// and stores the session owner in the request context.
func (a *Auth) Middleware() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		ownerID := a.sessions.OwnerID()
		if ownerID == "" {
			a.log.Debug("request without session", "path", ctx.URL().Path)
			ctx.SetStatus(http.StatusUnauthorized)
			ctx.SetHeader("Content-Type", "application/json")

			err := json.NewEncoder(ctx.BodyWriter()).Encode(map[string]string{
				"error": apperr.Message(apperr.KindUnauthorized),
			})
			if err != nil {
				a.log.Error("json encode", "error", err)
			}
			return
		}

		next(huma.WithValue(ctx, OwnerIDKey, ownerID))
	}
}

func GetOwnerID(ctx context.Context) (string, bool) {
	ownerID, ok := ctx.Value(OwnerIDKey).(string)
	return ownerID, ok && ownerID != ""
}
