package event

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"eventky/cmd/client/cmd/types"
	"eventky/internal/domain/event"
)

var (
	listOwner    string
	listCalendar string
)

var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "List events",
	Long:  `Lists the events of --owner, or your own, optionally only those of one calendar.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		env, err := types.FromContext(cmd.Context())
		if err != nil {
			return err
		}
		owner, err := env.Owner(listOwner)
		if err != nil {
			return err
		}

		items, err := env.Services().Events.Reader().FetchCollection(cmd.Context(), owner)
		if err != nil {
			return env.Fail(err)
		}
		if listCalendar != "" {
			items = event.ByCalendar(items, listCalendar)
		}

		return env.Print(items, func(w io.Writer) {
			if len(items) == 0 {
				fmt.Fprintln(w, "No events")
				return
			}
			tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSTART\tTZ\tSTATUS\tSUMMARY")
			for _, it := range items {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", it.ID, it.Value.DTStart, it.Value.DTStartTZID, it.Value.Status, it.Value.Summary)
			}
			_ = tw.Flush()
		})
	},
}

func init() {
	ListCmd.Flags().StringVar(&listOwner, "owner", "", "owner id, defaults to yours")
	ListCmd.Flags().StringVar(&listCalendar, "calendar", "", "only events of this calendar URI")
}
