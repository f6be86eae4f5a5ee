package event

import (
	"eventky/internal/app/server/api/http/dto"
	"eventky/internal/domain/event"
)

type eventRequest struct {
	UID          string       `json:"uid,omitempty" doc:"Defaults to the event id on create, ignored on update"`
	DTStart      string       `json:"dtstart" example:"2025-06-01T18:00:00"`
	DTEnd        string       `json:"dtend,omitempty"`
	Duration     string       `json:"duration,omitempty" example:"PT2H"`
	DTStartTZID  string       `json:"dtstart_tzid,omitempty" example:"Europe/Zurich"`
	DTEndTZID    string       `json:"dtend_tzid,omitempty"`
	Summary      string       `json:"summary" minLength:"1" maxLength:"255"`
	Description  string       `json:"description,omitempty"`
	Status       event.Status `json:"status,omitempty" enum:"CONFIRMED,TENTATIVE,CANCELLED"`
	Location     string       `json:"location,omitempty"`
	Geo          string       `json:"geo,omitempty" example:"47.3769;8.5417"`
	URL          string       `json:"url,omitempty"`
	RRule        string       `json:"rrule,omitempty"`
	RDate        []string     `json:"rdate,omitempty"`
	ExDate       []string     `json:"exdate,omitempty"`
	CalendarURIs []string     `json:"calendar_uris,omitempty"`
	RecurrenceID string       `json:"recurrence_id,omitempty"`
	ImageURI     string       `json:"image_uri,omitempty"`
	Image        *dto.Upload  `json:"image,omitempty"`
	RemoveImage  bool         `json:"remove_image,omitempty"`
}

func (r eventRequest) input() event.Input {
	return event.Input{
		DTStart:      r.DTStart,
		DTEnd:        r.DTEnd,
		Duration:     r.Duration,
		DTStartTZID:  r.DTStartTZID,
		DTEndTZID:    r.DTEndTZID,
		Summary:      r.Summary,
		Description:  r.Description,
		Status:       r.Status,
		Location:     r.Location,
		Geo:          r.Geo,
		URL:          r.URL,
		RRule:        r.RRule,
		RDate:        r.RDate,
		ExDate:       r.ExDate,
		CalendarURIs: r.CalendarURIs,
		RecurrenceID: r.RecurrenceID,
		ImageURI:     r.ImageURI,
	}
}

type createInput struct {
	Body eventRequest
}

type updateInput struct {
	ID   string `path:"id" doc:"Event id"`
	Body eventRequest
}

type idInput struct {
	ID string `path:"id" doc:"Event id"`
}

type listInput struct {
	Owner    string `path:"owner" doc:"Owner id"`
	Calendar string `query:"calendar" doc:"Only events in this calendar URI"`
}

type findInput struct {
	Owner string `path:"owner" doc:"Owner id"`
	ID    string `path:"id" doc:"Event id"`
}

type createdOutput struct {
	Body dto.Created
}

type emptyOutput struct{}

type eventView struct {
	URI     string      `json:"uri"`
	ID      string      `json:"id"`
	OwnerID string      `json:"owner_id"`
	Event   event.Event `json:"event"`
}

type findOutput struct {
	Body eventView
}

type listOutput struct {
	Body listResponse
}

type listResponse struct {
	Source string      `json:"source" enum:"index,storage"`
	Events []eventView `json:"events"`
}
