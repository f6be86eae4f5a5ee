package calendar

import (
	"github.com/spf13/cobra"
)

// CalendarCmd groups the calendar commands.
var CalendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Manage calendars",
	Long:  `Create, list, show and delete calendars.`,
}
