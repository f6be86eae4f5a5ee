package calendar

import (
	"eventky/internal/app/server/api/http/dto"
	"eventky/internal/domain/calendar"
)

type calendarRequest struct {
	Name        string      `json:"name" minLength:"1" maxLength:"100"`
	Color       string      `json:"color,omitempty" pattern:"^#[0-9a-fA-F]{6}$" example:"#3366FF"`
	Timezone    string      `json:"timezone,omitempty" example:"Europe/Zurich"`
	Description string      `json:"description,omitempty"`
	URL         string      `json:"url,omitempty"`
	Admins      []string    `json:"admins,omitempty" doc:"Owner ids allowed to add events"`
	ImageURI    string      `json:"image_uri,omitempty" doc:"Already uploaded image"`
	Image       *dto.Upload `json:"image,omitempty" doc:"Image to upload with the calendar"`
	RemoveImage bool        `json:"remove_image,omitempty" doc:"Drop the stored image on update"`
}

func (r calendarRequest) input() calendar.Input {
	return calendar.Input{
		Name:        r.Name,
		Color:       r.Color,
		Timezone:    r.Timezone,
		Description: r.Description,
		URL:         r.URL,
		Admins:      r.Admins,
		ImageURI:    r.ImageURI,
	}
}

type createInput struct {
	Body calendarRequest
}

type updateInput struct {
	ID   string `path:"id" doc:"Calendar id"`
	Body calendarRequest
}

type idInput struct {
	ID string `path:"id" doc:"Calendar id"`
}

type ownerInput struct {
	Owner string `path:"owner" doc:"Owner id"`
}

type findInput struct {
	Owner string `path:"owner" doc:"Owner id"`
	ID    string `path:"id" doc:"Calendar id"`
}

type createdOutput struct {
	Body dto.Created
}

type emptyOutput struct{}

type calendarView struct {
	URI      string            `json:"uri"`
	ID       string            `json:"id"`
	OwnerID  string            `json:"owner_id"`
	Source   string            `json:"source" enum:"index,storage"`
	Calendar calendar.Calendar `json:"calendar"`
}

type findOutput struct {
	Body calendarView
}

type listOutput struct {
	Body []calendarView
}
