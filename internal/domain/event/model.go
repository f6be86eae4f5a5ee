package event

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"eventky/internal/domain/address"
)

const (
	// DateTimeLayout is the floating local time format of DTStart, DTEnd,
	// RDate and ExDate; the zone comes from the matching TZID field.
	DateTimeLayout = "2006-01-02T15:04:05"

	MaxSummaryLen     = 255
	MaxDescriptionLen = 10000
)

type Status string

const (
	StatusConfirmed Status = "CONFIRMED"
	StatusTentative Status = "TENTATIVE"
	StatusCancelled Status = "CANCELLED"
)

var durationPattern = regexp.MustCompile(`^P(?:(\d+)W|(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?)$`)

// Event follows the iCalendar VEVENT property set.
type Event struct {
	UID          string   `json:"uid"`
	DTStamp      int64    `json:"dtstamp"`
	DTStart      string   `json:"dtstart"`
	DTEnd        string   `json:"dtend,omitempty"`
	Duration     string   `json:"duration,omitempty"`
	DTStartTZID  string   `json:"dtstart_tzid,omitempty"`
	DTEndTZID    string   `json:"dtend_tzid,omitempty"`
	Summary      string   `json:"summary"`
	Description  string   `json:"description,omitempty"`
	Status       Status   `json:"status,omitempty"`
	Location     string   `json:"location,omitempty"`
	Geo          string   `json:"geo,omitempty"`
	URL          string   `json:"url,omitempty"`
	ImageURI     string   `json:"image_uri,omitempty"`
	RRule        string   `json:"rrule,omitempty"`
	RDate        []string `json:"rdate,omitempty"`
	ExDate       []string `json:"exdate,omitempty"`
	CalendarURIs []string `json:"x_pubky_calendar_uris,omitempty"`
	RecurrenceID string   `json:"recurrence_id,omitempty"`
	Sequence     int      `json:"sequence"`
	LastModified int64    `json:"last_modified,omitempty"`
	Created      int64    `json:"created,omitempty"`
}

// Start resolves DTStart in its zone.
func (e *Event) Start() (time.Time, error) {
	return parseLocal(e.DTStart, e.DTStartTZID)
}

// End resolves DTEnd, or DTStart plus Duration. The zero time means the
// event has neither.
func (e *Event) End() (time.Time, error) {
	if e.DTEnd != "" {
		tz := e.DTEndTZID
		if tz == "" {
			tz = e.DTStartTZID
		}
		return parseLocal(e.DTEnd, tz)
	}
	if e.Duration == "" {
		return time.Time{}, nil
	}
	start, err := e.Start()
	if err != nil {
		return time.Time{}, err
	}
	d, err := ParseDuration(e.Duration)
	if err != nil {
		return time.Time{}, err
	}
	return start.Add(d), nil
}

func (e *Event) Validate() error {
	switch {
	case strings.TrimSpace(e.Summary) == "":
		return fmt.Errorf("%w: summary is required", ErrInvalidEvent)
	case len(e.Summary) > MaxSummaryLen:
		return fmt.Errorf("%w: summary longer than %d", ErrInvalidEvent, MaxSummaryLen)
	case len(e.Description) > MaxDescriptionLen:
		return fmt.Errorf("%w: description longer than %d", ErrInvalidEvent, MaxDescriptionLen)
	case e.DTStart == "":
		return fmt.Errorf("%w: dtstart is required", ErrInvalidEvent)
	case e.DTEnd != "" && e.Duration != "":
		return fmt.Errorf("%w: dtend and duration are exclusive", ErrInvalidEvent)
	case e.Sequence < 0:
		return fmt.Errorf("%w: negative sequence", ErrInvalidEvent)
	}

	start, err := e.Start()
	if err != nil {
		return err
	}
	end, err := e.End()
	if err != nil {
		return err
	}
	if !end.IsZero() && !end.After(start) {
		return fmt.Errorf("%w: event must end after it starts", ErrInvalidEvent)
	}

	switch e.Status {
	case "", StatusConfirmed, StatusTentative, StatusCancelled:
	default:
		return fmt.Errorf("%w: unknown status %q", ErrInvalidEvent, e.Status)
	}
	if e.Geo != "" {
		if err := validateGeo(e.Geo); err != nil {
			return err
		}
	}
	if e.URL != "" {
		if u, err := url.Parse(e.URL); err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: url %q", ErrInvalidEvent, e.URL)
		}
	}
	if e.RRule != "" && !strings.Contains(strings.ToUpper(e.RRule), "FREQ=") {
		return fmt.Errorf("%w: rrule %q has no FREQ", ErrInvalidEvent, e.RRule)
	}
	for _, d := range append(append([]string{}, e.RDate...), e.ExDate...) {
		if _, err := time.Parse(DateTimeLayout, d); err != nil {
			return fmt.Errorf("%w: date %q", ErrInvalidEvent, d)
		}
	}
	if e.ImageURI != "" {
		if _, err := address.Parse(e.ImageURI); err != nil {
			return fmt.Errorf("%w: image: %v", ErrInvalidEvent, err)
		}
	}
	for _, uri := range e.CalendarURIs {
		if _, err := address.Parse(uri); err != nil {
			return fmt.Errorf("%w: calendar %q: %v", ErrInvalidEvent, uri, err)
		}
	}
	return nil
}

func parseLocal(value, tzid string) (time.Time, error) {
	loc := time.UTC
	if tzid != "" {
		l, err := time.LoadLocation(tzid)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: timezone %q", ErrInvalidEvent, tzid)
		}
		loc = l
	}
	t, err := time.ParseInLocation(DateTimeLayout, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: time %q", ErrInvalidEvent, value)
	}
	return t, nil
}

func validateGeo(geo string) error {
	lat, lon, ok := strings.Cut(geo, ";")
	if !ok {
		return fmt.Errorf("%w: geo %q is not lat;lon", ErrInvalidEvent, geo)
	}
	la, err1 := strconv.ParseFloat(lat, 64)
	lo, err2 := strconv.ParseFloat(lon, 64)
	if err1 != nil || err2 != nil || la < -90 || la > 90 || lo < -180 || lo > 180 {
		return fmt.Errorf("%w: geo %q out of range", ErrInvalidEvent, geo)
	}
	return nil
}

// ParseDuration reads an RFC 5545 duration such as PT1H30M or P2D.
func ParseDuration(s string) (time.Duration, error) {
	m := durationPattern.FindStringSubmatch(s)
	if m == nil || s == "P" || strings.HasSuffix(s, "T") {
		return 0, fmt.Errorf("%w: duration %q", ErrInvalidEvent, s)
	}
	units := []time.Duration{7 * 24 * time.Hour, 24 * time.Hour, time.Hour, time.Minute, time.Second}
	var total time.Duration
	for i, unit := range units {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return 0, fmt.Errorf("%w: duration %q", ErrInvalidEvent, s)
		}
		total += time.Duration(n) * unit
	}
	return total, nil
}
