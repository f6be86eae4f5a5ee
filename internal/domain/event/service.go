package event

import (
	"context"

	"golang.org/x/exp/slog"

	"eventky/internal/domain/address"
	"eventky/internal/domain/apperr"
	"eventky/internal/domain/file"
	"eventky/internal/domain/id"
	"eventky/internal/domain/resource"
)

// Input carries the user-editable fields of an event.
type Input struct {
	DTStart      string
	DTEnd        string
	Duration     string
	DTStartTZID  string
	DTEndTZID    string
	Summary      string
	Description  string
	Status       Status
	Location     string
	Geo          string
	URL          string
	RRule        string
	RDate        []string
	ExDate       []string
	CalendarURIs []string
	RecurrenceID string
	ImageURI     string
}

type CreateInput struct {
	Input
	// UID defaults to the event's resource id.
	UID   string
	Image *file.Upload
}

type UpdateInput struct {
	Input
	Image       *file.Upload
	RemoveImage bool
}

func (in Input) event() Event {
	return Event{
		DTStart:      in.DTStart,
		DTEnd:        in.DTEnd,
		Duration:     in.Duration,
		DTStartTZID:  in.DTStartTZID,
		DTEndTZID:    in.DTEndTZID,
		Summary:      in.Summary,
		Description:  in.Description,
		Status:       in.Status,
		Location:     in.Location,
		Geo:          in.Geo,
		URL:          in.URL,
		ImageURI:     in.ImageURI,
		RRule:        in.RRule,
		RDate:        in.RDate,
		ExDate:       in.ExDate,
		CalendarURIs: in.CalendarURIs,
		RecurrenceID: in.RecurrenceID,
	}
}

type Service struct {
	store  resource.Store
	layout resource.Layout
	files  *file.Service
	ids    *id.Generator
	reader *resource.Reader[Event]
	log    *slog.Logger
}

func NewService(store resource.Store, layout resource.Layout, files *file.Service, ids *id.Generator, log *slog.Logger) *Service {
	return &Service{
		store:  store,
		layout: layout,
		files:  files,
		ids:    ids,
		reader: resource.NewReader[Event](store, layout, resource.CollectionEvent, log),
		log:    log.With("component", "event_service"),
	}
}

func (s *Service) Reader() *resource.Reader[Event] {
	return s.reader
}

// Create writes a new event and returns its URI.
func (s *Service) Create(ctx context.Context, in CreateInput) (string, error) {
	const op = "create event"
	owner, err := resource.RequireOwner(s.store, op)
	if err != nil {
		s.log.Warn("create rejected", "error", err)
		return "", err
	}

	eventID := s.ids.Next()
	now := s.ids.Now().UnixMicro()
	ev := in.event()
	ev.UID = in.UID
	if ev.UID == "" {
		ev.UID = eventID
	}
	ev.DTStamp = now
	ev.Created = now
	ev.LastModified = now

	if err := ev.Validate(); err != nil {
		return "", apperr.New(apperr.KindInvalidInput, op, owner, eventID, err)
	}
	if ev.ImageURI, err = s.files.ResolveImage(ctx, ev.ImageURI, in.Image, false); err != nil {
		return "", err
	}
	return resource.Write(ctx, s.store, s.log, op, owner, eventID, s.layout.Path(resource.CollectionEvent, eventID), ev)
}

// Update replaces the event at uri and bumps its sequence. Its image is
// kept unless a new one is uploaded or RemoveImage is set.
func (s *Service) Update(ctx context.Context, uri string, in UpdateInput) error {
	const op = "update event"
	owner, path, err := resource.OwnedPath(s.store, op, uri)
	if err != nil {
		s.log.Warn("update rejected", "uri", uri, "error", err)
		return err
	}
	eventID := address.ExtractResourceID(uri)
	if !s.layout.Contains(resource.CollectionEvent, path) {
		return apperr.New(apperr.KindInvalidAddr, op, owner, eventID, nil)
	}

	current, err := s.reader.Fetch(ctx, uri)
	if err != nil {
		s.log.Error("update failed", "owner_id", owner, "resource_id", eventID, "error", err)
		return apperr.New(apperr.KindOf(err), op, owner, eventID, err)
	}
	if current == nil {
		return apperr.New(apperr.KindNotFound, op, owner, eventID, nil)
	}

	now := s.ids.Now().UnixMicro()
	ev := in.event()
	ev.UID = current.UID
	ev.Created = current.Created
	ev.Sequence = current.Sequence + 1
	ev.DTStamp = now
	ev.LastModified = now
	if ev.ImageURI == "" {
		ev.ImageURI = current.ImageURI
	}

	if err := ev.Validate(); err != nil {
		return apperr.New(apperr.KindInvalidInput, op, owner, eventID, err)
	}
	if ev.ImageURI, err = s.files.ResolveImage(ctx, ev.ImageURI, in.Image, in.RemoveImage); err != nil {
		return err
	}

	_, err = resource.Write(ctx, s.store, s.log, op, owner, eventID, path, ev)
	return err
}

func (s *Service) Delete(ctx context.Context, uri string) error {
	return resource.Remove(ctx, s.store, s.log, "delete event", uri)
}

// ByCalendar keeps the events that reference calendarURI.
func ByCalendar(items []resource.Item[Event], calendarURI string) []resource.Item[Event] {
	out := make([]resource.Item[Event], 0, len(items))
	for _, it := range items {
		for _, c := range it.Value.CalendarURIs {
			if c == calendarURI {
				out = append(out, it)
				break
			}
		}
	}
	return out
}
