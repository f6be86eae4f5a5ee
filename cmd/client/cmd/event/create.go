package event

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"eventky/cmd/client/cmd/types"
	"eventky/internal/domain/address"
	"eventky/internal/domain/event"
)

var (
	summary     string
	start       string
	end         string
	duration    string
	tzid        string
	description string
	location    string
	geo         string
	url         string
	status      string
	rrule       string
	calendars   []string
	imagePath   string
)

var CreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an event",
	Example: `  eventky event create --summary Meetup --start 2025-06-01T18:00:00 --duration PT2H \
      --tz Europe/Zurich --calendar pubky://<owner>/pub/eventky.app/calendar/<id>`,
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

		uri, err := env.Services().Events.Create(cmd.Context(), event.CreateInput{
			Input: event.Input{
				Summary:      summary,
				DTStart:      start,
				DTEnd:        end,
				Duration:     duration,
				DTStartTZID:  tzid,
				Description:  description,
				Location:     location,
				Geo:          geo,
				URL:          url,
				Status:       event.Status(status),
				RRule:        rrule,
				CalendarURIs: calendars,
			},
			Image: image,
		})
		if err != nil {
			return env.Fail(err)
		}

		env.Success("Event created")
		return env.Print(map[string]string{"uri": uri, "id": address.ExtractResourceID(uri)}, func(w io.Writer) {
			fmt.Fprintln(w, uri)
		})
	},
}

func init() {
	CreateCmd.Flags().StringVarP(&summary, "summary", "s", "", "title")
	CreateCmd.Flags().StringVar(&start, "start", "", "local start time, "+event.DateTimeLayout)
	CreateCmd.Flags().StringVar(&end, "end", "", "local end time")
	CreateCmd.Flags().StringVar(&duration, "duration", "", "duration instead of --end, e.g. PT1H30M")
	CreateCmd.Flags().StringVar(&tzid, "tz", "", "IANA timezone of the times")
	CreateCmd.Flags().StringVarP(&description, "description", "d", "", "description")
	CreateCmd.Flags().StringVar(&location, "location", "", "where it happens")
	CreateCmd.Flags().StringVar(&geo, "geo", "", "coordinates as lat;lon")
	CreateCmd.Flags().StringVar(&url, "url", "", "link to more information")
	CreateCmd.Flags().StringVar(&status, "status", "", "CONFIRMED, TENTATIVE or CANCELLED")
	CreateCmd.Flags().StringVar(&rrule, "rrule", "", "recurrence rule, e.g. FREQ=WEEKLY;COUNT=4")
	CreateCmd.Flags().StringSliceVar(&calendars, "calendar", nil, "calendar URI (repeatable)")
	CreateCmd.Flags().StringVar(&imagePath, "image", "", "image file to upload")
	_ = CreateCmd.MarkFlagRequired("summary")
	_ = CreateCmd.MarkFlagRequired("start")
}
