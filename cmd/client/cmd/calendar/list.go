package calendar

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"eventky/cmd/client/cmd/types"
)

var listOwner string

var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "List calendars",
	Long:  `Lists the calendars of --owner, or your own.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		env, err := types.FromContext(cmd.Context())
		if err != nil {
			return err
		}
		owner, err := env.Owner(listOwner)
		if err != nil {
			return err
		}

		items, err := env.Services().Calendars.Reader().FetchCollection(cmd.Context(), owner)
		if err != nil {
			return env.Fail(err)
		}

		return env.Print(items, func(w io.Writer) {
			if len(items) == 0 {
				fmt.Fprintln(w, "No calendars")
				return
			}
			tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tCOLOR\tTIMEZONE")
			for _, it := range items {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", it.ID, it.Value.Name, it.Value.Color, it.Value.Timezone)
			}
			_ = tw.Flush()
		})
	},
}

func init() {
	ListCmd.Flags().StringVar(&listOwner, "owner", "", "owner id, defaults to yours")
}
