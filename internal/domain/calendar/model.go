package calendar

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
	_ "time/tzdata"

	"eventky/internal/domain/address"
)

const (
	MaxNameLen        = 100
	MaxDescriptionLen = 10000
)

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Calendar groups events. Admins are owner ids allowed to add events to
// it besides its author.
type Calendar struct {
	Name        string   `json:"name"`
	Color       string   `json:"color,omitempty"`
	ImageURI    string   `json:"image_uri,omitempty"`
	Timezone    string   `json:"timezone,omitempty"`
	Description string   `json:"description,omitempty"`
	URL         string   `json:"url,omitempty"`
	Admins      []string `json:"x_pubky_admins,omitempty"`
	Created     int64    `json:"created,omitempty"`
}

func (c *Calendar) Validate() error {
	name := strings.TrimSpace(c.Name)
	switch {
	case name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidCalendar)
	case len(name) > MaxNameLen:
		return fmt.Errorf("%w: name longer than %d", ErrInvalidCalendar, MaxNameLen)
	case len(c.Description) > MaxDescriptionLen:
		return fmt.Errorf("%w: description longer than %d", ErrInvalidCalendar, MaxDescriptionLen)
	case c.Color != "" && !colorPattern.MatchString(c.Color):
		return fmt.Errorf("%w: color %q is not #RRGGBB", ErrInvalidCalendar, c.Color)
	}
	if c.Timezone != "" {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			return fmt.Errorf("%w: timezone %q", ErrInvalidCalendar, c.Timezone)
		}
	}
	if c.URL != "" {
		if u, err := url.Parse(c.URL); err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: url %q", ErrInvalidCalendar, c.URL)
		}
	}
	if c.ImageURI != "" {
		if _, err := address.Parse(c.ImageURI); err != nil {
			return fmt.Errorf("%w: image: %v", ErrInvalidCalendar, err)
		}
	}
	for _, admin := range c.Admins {
		if strings.TrimSpace(admin) == "" {
			return fmt.Errorf("%w: empty admin", ErrInvalidCalendar)
		}
	}
	return nil
}
