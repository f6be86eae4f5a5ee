package auth

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"eventky/cmd/client/cmd/types"
)

var inviteToken string

var SignupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Register your identity with the homeserver",
	Long: `Registers the stored identity with the configured homeserver.
Some homeservers require an invite token (--invite or INVITE_TOKEN).`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		env, err := types.FromContext(cmd.Context())
		if err != nil {
			return err
		}
		kp, err := env.Keypair()
		if err != nil {
			return err
		}

		token := inviteToken
		if token == "" {
			token = env.Cfg.InviteToken
		}
		sess, err := env.App.Signup(cmd.Context(), kp, token)
		if err != nil {
			return env.Fail(err)
		}

		env.Success("Registered with %s", env.Cfg.HomeserverID)
		return env.Print(map[string]string{
			"owner_id":     sess.OwnerID(),
			"capabilities": sess.Capabilities().String(),
		}, func(w io.Writer) {
			fmt.Fprintf(w, "Owner id: %s\n", sess.OwnerID())
		})
	},
}

func init() {
	SignupCmd.Flags().StringVar(&inviteToken, "invite", "", "signup token")
}
