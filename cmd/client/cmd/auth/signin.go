package auth

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"eventky/cmd/client/cmd/types"
)

var SigninCmd = &cobra.Command{
	Use:   "signin",
	Short: "Check that your identity can open a session",
	RunE: func(cmd *cobra.Command, _ []string) error {
		env, err := types.FromContext(cmd.Context())
		if err != nil {
			return err
		}
		if _, err := env.SignIn(cmd.Context()); err != nil {
			return err
		}

		info := env.App.Session()
		env.Success("Signed in")
		return env.Print(map[string]string{
			"owner_id":     info.OwnerID,
			"capabilities": info.Capabilities.String(),
		}, func(w io.Writer) {
			fmt.Fprintf(w, "Owner id:     %s\nCapabilities: %s\n", info.OwnerID, info.Capabilities)
		})
	},
}
