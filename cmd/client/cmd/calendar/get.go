package calendar

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"eventky/cmd/client/cmd/types"
)

var getOwner string

var GetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a calendar",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := types.FromContext(cmd.Context())
		if err != nil {
			return err
		}
		owner, err := env.Owner(getOwner)
		if err != nil {
			return err
		}

		cal := env.Services().Calendars.Reader().FetchOne(cmd.Context(), owner, args[0])
		if cal == nil {
			return fmt.Errorf("calendar %s not found", args[0])
		}
		return env.Print(cal, func(w io.Writer) {
			fmt.Fprintf(w, "Name:        %s\n", cal.Name)
			fmt.Fprintf(w, "Color:       %s\n", cal.Color)
			fmt.Fprintf(w, "Timezone:    %s\n", cal.Timezone)
			fmt.Fprintf(w, "Description: %s\n", cal.Description)
			fmt.Fprintf(w, "URL:         %s\n", cal.URL)
			fmt.Fprintf(w, "Image:       %s\n", cal.ImageURI)
			fmt.Fprintf(w, "Admins:      %v\n", cal.Admins)
		})
	},
}

func init() {
	GetCmd.Flags().StringVar(&getOwner, "owner", "", "owner id, defaults to yours")
}
