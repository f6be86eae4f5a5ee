package auth

import (
	"github.com/spf13/cobra"

	"eventky/cmd/client/cmd/types"
)

var LogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End your session on the homeserver",
	RunE: func(cmd *cobra.Command, _ []string) error {
		env, err := types.FromContext(cmd.Context())
		if err != nil {
			return err
		}
		if _, err := env.SignIn(cmd.Context()); err != nil {
			return err
		}
		if err := env.App.Signout(cmd.Context()); err != nil {
			return env.Fail(err)
		}
		env.Success("Signed out")
		return nil
	},
}
