package event

import (
	"github.com/spf13/cobra"
)

// EventCmd groups the event commands.
var EventCmd = &cobra.Command{
	Use:   "event",
	Short: "Manage events",
	Long:  `Create, list and delete events.`,
}
