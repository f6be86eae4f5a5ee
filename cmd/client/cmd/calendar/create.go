package calendar

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"eventky/cmd/client/cmd/types"
	"eventky/internal/domain/address"
	"eventky/internal/domain/calendar"
)

var (
	name        string
	color       string
	timezone    string
	description string
	url         string
	admins      []string
	imagePath   string
)

var CreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a calendar",
	Example: `  eventky calendar create --name "Team Events" --color "#3366FF" --tz Europe/Zurich
  eventky calendar create --name Climbing --image ./wall.jpg`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		env, err := types.FromContext(cmd.Context())
		if err != nil {
			return err
		}
		image, err := types.ReadUpload(imagePath)
		if err != nil {
			return err
		}
		if _, err := env.SignIn(cmd.Context()); err != nil {
			return err
		}

		uri, err := env.Services().Calendars.Create(cmd.Context(), calendar.CreateInput{
			Input: calendar.Input{
				Name:        name,
				Color:       color,
				Timezone:    timezone,
				Description: description,
				URL:         url,
				Admins:      admins,
			},
			Image: image,
		})
		if err != nil {
			return env.Fail(err)
		}

		env.Success("Calendar created")
		return env.Print(map[string]string{"uri": uri, "id": address.ExtractResourceID(uri)}, func(w io.Writer) {
			fmt.Fprintln(w, uri)
		})
	},
}

func init() {
	CreateCmd.Flags().StringVarP(&name, "name", "n", "", "calendar name")
	CreateCmd.Flags().StringVar(&color, "color", "", "color as #RRGGBB")
	CreateCmd.Flags().StringVar(&timezone, "tz", "", "IANA timezone")
	CreateCmd.Flags().StringVarP(&description, "description", "d", "", "description")
	CreateCmd.Flags().StringVar(&url, "url", "", "link to more information")
	CreateCmd.Flags().StringSliceVar(&admins, "admin", nil, "owner id allowed to add events (repeatable)")
	CreateCmd.Flags().StringVar(&imagePath, "image", "", "image file to upload")
	_ = CreateCmd.MarkFlagRequired("name")
}
