// Package api is the HTTP gateway a browser UI talks to. It exposes the
// client core (session, calendars, events, files) and the index
// read-through helpers.
//
//	GET    /api/health
//	POST   /api/auth/signup | signin | signout, GET /api/auth/session
//	POST   /api/auth/flow, GET|DELETE /api/auth/flow/{id}, GET /api/auth/flow/{id}/qr
//	POST   /api/calendars, PUT|DELETE /api/calendars/{id}          (session)
//	GET    /api/users/{owner}/calendars[/{id}]
//	POST   /api/events, PUT|DELETE /api/events/{id}                (session)
//	GET    /api/users/{owner}/events[/{id}]
//	POST   /api/files, DELETE /api/files/{id}                      (session)
//	GET    /api/users/{owner}/files/{id}[/blob]
//	GET    /api/bootstrap/{owner}
//	*      /relay/link/{channel}                                   (local runtime only)
package api

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"golang.org/x/exp/slog"

	"eventky/internal/app/client"
	"eventky/internal/app/server/api/http/bootstrap"
	calendarAPI "eventky/internal/app/server/api/http/calendar"
	eventAPI "eventky/internal/app/server/api/http/event"
	fileAPI "eventky/internal/app/server/api/http/file"
	healthAPI "eventky/internal/app/server/api/http/health"
	"eventky/internal/app/server/api/http/middleware"
	"eventky/internal/app/server/api/http/middleware/auth"
	"eventky/internal/app/server/api/http/middleware/logger"
	"eventky/internal/app/server/api/http/middleware/requestid"
	sessionAPI "eventky/internal/app/server/api/http/session"
	"eventky/internal/app/server/config"
	"eventky/internal/domain/calendar"
	"eventky/internal/domain/event"
	"eventky/internal/domain/file"
	"eventky/internal/domain/id"
	"eventky/internal/domain/resource"
	"eventky/internal/infrastructure/index"
	"eventky/internal/infrastructure/relay"
	"eventky/internal/infrastructure/runtime/local"
)

const relayPrefix = "/relay/link"

type Handlers struct {
	Health    *healthAPI.Handler
	Session   *sessionAPI.Handler
	Calendar  *calendarAPI.Handler
	Event     *eventAPI.Handler
	File      *fileAPI.Handler
	Bootstrap *bootstrap.Handler
}

// New builds the router over app. app is initialized on first use.
func New(cfg *config.Config, app *client.App, log *slog.Logger) *chi.Mux {
	mux := chi.NewMux()

	API := humachi.New(mux, huma.DefaultConfig("Eventky API", "1.0.0"))

	h := handlers(cfg, app, log)
	h.Health.SetupRoutes(API)
	h.Session.SetupRoutes(API)
	h.Calendar.SetupRoutes(API)
	h.Event.SetupRoutes(API)
	h.File.SetupRoutes(API)
	h.Bootstrap.SetupRoutes(API)

	mountRelay(mux, cfg, app, log)

	return mux
}

func handlers(cfg *config.Config, app *client.App, log *slog.Logger) *Handlers {
	layout := resource.NewLayout(cfg.Client.BaseAppPath)
	ids := id.NewGenerator(nil)
	files := file.NewService(app, layout, ids, log)
	calendars := calendar.NewService(app, layout, files, ids, log)
	events := event.NewService(app, layout, files, ids, log)
	idx := index.NewClient(cfg.Client.IndexServiceURL, cfg.Client.HTTPTimeout, log)

	authMW := auth.New(app, log)
	loggerMW := logger.New(log)
	middlewares := middleware.NewContainer()

	middlewares.Add(requestid.Middleware())
	middlewares.Add(loggerMW.Middleware())
	public := middlewares.GetAllAndClear()

	middlewares.Add(requestid.Middleware())
	middlewares.Add(loggerMW.Middleware())
	middlewares.Add(authMW.Middleware())
	authed := middlewares.GetAllAndClear()

	return &Handlers{
		Health:    healthAPI.NewHandler(app, log, public),
		Session:   sessionAPI.NewHandler(app, cfg.Server.FlowWait, log, public),
		Calendar:  calendarAPI.NewHandler(calendars, idx, log, public, authed),
		Event:     eventAPI.NewHandler(events, idx, log, public, authed),
		File:      fileAPI.NewHandler(files, idx, log, public, authed),
		Bootstrap: bootstrap.NewHandler(idx, log, public),
	}
}

// mountRelay serves the local runtime's relay so approvals can come
// from another process.
func mountRelay(mux *chi.Mux, cfg *config.Config, app *client.App, log *slog.Logger) {
	if !cfg.ServesRelay() {
		return
	}
	rt, err := app.Runtime()
	if err != nil {
		log.Error("relay not mounted", "error", err)
		return
	}
	lr, ok := rt.(*local.Runtime)
	if !ok {
		return
	}
	mux.Mount(relayPrefix, relay.NewHandler(lr.Relay(), cfg.RelayPoll, log).Routes())
	log.Info("serving local relay", "path", relayPrefix)
}
