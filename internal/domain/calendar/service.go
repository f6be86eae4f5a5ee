package calendar

import (
	"context"

	"golang.org/x/exp/slog"

	"eventky/internal/domain/address"
	"eventky/internal/domain/apperr"
	"eventky/internal/domain/file"
	"eventky/internal/domain/id"
	"eventky/internal/domain/resource"
)

// Input carries the user-editable fields of a calendar.
type Input struct {
	Name        string
	Color       string
	Timezone    string
	Description string
	URL         string
	Admins      []string
	// ImageURI references an already uploaded image.
	ImageURI string
}

type CreateInput struct {
	Input
	Image *file.Upload
}

type UpdateInput struct {
	Input
	Image *file.Upload
	// RemoveImage drops the stored image when no new one is uploaded.
	RemoveImage bool
}

type Service struct {
	store  resource.Store
	layout resource.Layout
	files  *file.Service
	ids    *id.Generator
	reader *resource.Reader[Calendar]
	log    *slog.Logger
}

func NewService(store resource.Store, layout resource.Layout, files *file.Service, ids *id.Generator, log *slog.Logger) *Service {
	return &Service{
		store:  store,
		layout: layout,
		files:  files,
		ids:    ids,
		reader: resource.NewReader[Calendar](store, layout, resource.CollectionCalendar, log),
		log:    log.With("component", "calendar_service"),
	}
}

func (s *Service) Reader() *resource.Reader[Calendar] {
	return s.reader
}

func (in Input) calendar() Calendar {
	return Calendar{
		Name:        in.Name,
		Color:       in.Color,
		ImageURI:    in.ImageURI,
		Timezone:    in.Timezone,
		Description: in.Description,
		URL:         in.URL,
		Admins:      in.Admins,
	}
}

// Create writes a new calendar and returns its URI.
func (s *Service) Create(ctx context.Context, in CreateInput) (string, error) {
	const op = "create calendar"
	owner, err := resource.RequireOwner(s.store, op)
	if err != nil {
		s.log.Warn("create rejected", "error", err)
		return "", err
	}

	cal := in.calendar()
	if err := cal.Validate(); err != nil {
		return "", apperr.New(apperr.KindInvalidInput, op, owner, "", err)
	}
	if cal.ImageURI, err = s.files.ResolveImage(ctx, cal.ImageURI, in.Image, false); err != nil {
		return "", err
	}

	calID := s.ids.Next()
	cal.Created = s.ids.Now().UnixMicro()
	return resource.Write(ctx, s.store, s.log, op, owner, calID, s.layout.Path(resource.CollectionCalendar, calID), cal)
}

// Update replaces the calendar at uri. Its image is kept unless a new
// one is uploaded or RemoveImage is set.
func (s *Service) Update(ctx context.Context, uri string, in UpdateInput) error {
	const op = "update calendar"
	owner, path, err := resource.OwnedPath(s.store, op, uri)
	if err != nil {
		s.log.Warn("update rejected", "uri", uri, "error", err)
		return err
	}
	calID := address.ExtractResourceID(uri)
	if !s.layout.Contains(resource.CollectionCalendar, path) {
		return apperr.New(apperr.KindInvalidAddr, op, owner, calID, nil)
	}

	current, err := s.reader.Fetch(ctx, uri)
	if err != nil {
		s.log.Error("update failed", "owner_id", owner, "resource_id", calID, "error", err)
		return apperr.New(apperr.KindOf(err), op, owner, calID, err)
	}
	if current == nil {
		return apperr.New(apperr.KindNotFound, op, owner, calID, nil)
	}

	cal := in.calendar()
	cal.Created = current.Created
	if cal.ImageURI == "" {
		cal.ImageURI = current.ImageURI
	}
	if err := cal.Validate(); err != nil {
		return apperr.New(apperr.KindInvalidInput, op, owner, calID, err)
	}
	if cal.ImageURI, err = s.files.ResolveImage(ctx, cal.ImageURI, in.Image, in.RemoveImage); err != nil {
		return err
	}

	_, err = resource.Write(ctx, s.store, s.log, op, owner, calID, path, cal)
	return err
}

func (s *Service) Delete(ctx context.Context, uri string) error {
	return resource.Remove(ctx, s.store, s.log, "delete calendar", uri)
}
