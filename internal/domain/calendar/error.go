package calendar

import "errors"

var ErrInvalidCalendar = errors.New("invalid calendar")
