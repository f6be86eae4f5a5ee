package calendar

import (
	"github.com/spf13/cobra"

	"eventky/cmd/client/cmd/types"
)

var DeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete one of your calendars",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := types.FromContext(cmd.Context())
		if err != nil {
			return err
		}
		kp, err := env.SignIn(cmd.Context())
		if err != nil {
			return err
		}

		svc := env.Services().Calendars
		if err := svc.Delete(cmd.Context(), svc.Reader().URI(kp.OwnerID(), args[0])); err != nil {
			return env.Fail(err)
		}
		env.Success("Calendar %s deleted", args[0])
		return nil
	},
}
