package event

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventky/internal/app/client"
	"eventky/internal/app/server/api/apitest"
	"eventky/internal/app/server/api/http/middleware/auth"
	"eventky/internal/domain/event"
	"eventky/internal/domain/file"
	"eventky/internal/domain/id"
	"eventky/internal/domain/resource"
	"eventky/internal/infrastructure/index"
)

const calendarURI = "pubky://alice/pub/eventky.app/calendar/0000000000001"

func newHandler(t *testing.T, idx *index.Client) (*Handler, *client.App) {
	t.Helper()
	app, _ := apitest.NewApp(t)
	layout := resource.NewLayout(apitest.BaseAppPath)
	ids := id.NewGenerator(nil)
	files := file.NewService(app, layout, ids, apitest.Logger())
	svc := event.NewService(app, layout, files, ids, apitest.Logger())
	return NewHandler(svc, idx, apitest.Logger(), huma.Middlewares{}, huma.Middlewares{}), app
}

func authed(owner string) context.Context {
	return context.WithValue(context.Background(), auth.OwnerIDKey, owner)
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var se huma.StatusError
	require.ErrorAs(t, err, &se)
	return se.GetStatus()
}

func meetup() eventRequest {
	return eventRequest{
		DTStart:      "2025-06-01T18:00:00",
		Duration:     "PT2H",
		DTStartTZID:  "Europe/Zurich",
		Summary:      "Meetup",
		Status:       event.StatusConfirmed,
		CalendarURIs: []string{calendarURI},
	}
}

func TestHandler_Lifecycle(t *testing.T) {
	h, app := newHandler(t, nil)
	kp := apitest.SignUp(t, app)
	ctx := authed(kp.OwnerID())

	created, err := h.create(ctx, &createInput{Body: meetup()})
	require.NoError(t, err)

	other := meetup()
	other.Summary = "Unrelated"
	other.CalendarURIs = nil
	_, err = h.create(ctx, &createInput{Body: other})
	require.NoError(t, err)

	list, err := h.list(ctx, &listInput{Owner: kp.OwnerID()})
	require.NoError(t, err)
	assert.Equal(t, "storage", list.Body.Source)
	assert.Len(t, list.Body.Events, 2)

	list, err = h.list(ctx, &listInput{Owner: kp.OwnerID(), Calendar: calendarURI})
	require.NoError(t, err)
	require.Len(t, list.Body.Events, 1)
	assert.Equal(t, created.Body.ID, list.Body.Events[0].ID)
	assert.Equal(t, created.Body.ID, list.Body.Events[0].Event.UID)

	upd := meetup()
	upd.Summary = "Meetup (moved)"
	_, err = h.update(ctx, &updateInput{ID: created.Body.ID, Body: upd})
	require.NoError(t, err)

	found, err := h.find(ctx, &findInput{Owner: kp.OwnerID(), ID: created.Body.ID})
	require.NoError(t, err)
	assert.Equal(t, "Meetup (moved)", found.Body.Event.Summary)
	assert.Equal(t, 1, found.Body.Event.Sequence)
	assert.Equal(t, created.Body.ID, found.Body.Event.UID)

	_, err = h.delete(ctx, &idInput{ID: created.Body.ID})
	require.NoError(t, err)
	_, err = h.find(ctx, &findInput{Owner: kp.OwnerID(), ID: created.Body.ID})
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
}

func TestHandler_InvalidEvent(t *testing.T) {
	h, app := newHandler(t, nil)
	kp := apitest.SignUp(t, app)

	bad := meetup()
	bad.DTEnd = "2025-06-01T20:00:00"
	_, err := h.create(authed(kp.OwnerID()), &createInput{Body: bad})
	assert.Equal(t, http.StatusUnprocessableEntity, statusOf(t, err))

	_, err = h.delete(context.Background(), &idInput{ID: "0000000000001"})
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
}

func TestHandler_ListFromIndex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "alice", r.URL.Query().Get("author"))
		_ = json.NewEncoder(w).Encode([]index.EventView{
			{ID: "0000000000002", OwnerID: "alice", Event: event.Event{Summary: "In calendar", CalendarURIs: []string{calendarURI}}},
			{ID: "0000000000003", OwnerID: "alice", Event: event.Event{Summary: "Elsewhere"}},
		})
	}))
	defer srv.Close()

	h, _ := newHandler(t, index.NewClient(srv.URL, time.Second, apitest.Logger()))

	list, err := h.list(context.Background(), &listInput{Owner: "alice", Calendar: calendarURI})
	require.NoError(t, err)
	assert.Equal(t, "index", list.Body.Source)
	require.Len(t, list.Body.Events, 1)
	assert.Equal(t, "In calendar", list.Body.Events[0].Event.Summary)
}

func TestHandler_ListFallsBackWhenIndexDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	h, app := newHandler(t, index.NewClient(srv.URL, time.Second, apitest.Logger()))
	kp := apitest.SignUp(t, app)
	_, err := h.create(authed(kp.OwnerID()), &createInput{Body: meetup()})
	require.NoError(t, err)

	list, err := h.list(context.Background(), &listInput{Owner: kp.OwnerID()})
	require.NoError(t, err)
	assert.Equal(t, "storage", list.Body.Source)
	assert.Len(t, list.Body.Events, 1)
}
