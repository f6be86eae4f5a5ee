package auth

import (
	"github.com/spf13/cobra"

	"eventky/cmd/client/cmd/types"
	"eventky/internal/domain/auth"
)

var ApproveCmd = &cobra.Command{
	Use:   "approve <url>",
	Short: "Authorize another device",
	Long: `Approves an authorization request (a ` + auth.FlowScheme + `:// URL, usually shown
as a QR code) with your identity, granting the capabilities it asks for.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := types.FromContext(cmd.Context())
		if err != nil {
			return err
		}
		req, err := auth.ParseFlowURL(args[0])
		if err != nil {
			return err
		}
		kp, err := env.Keypair()
		if err != nil {
			return err
		}

		if err := env.App.Approve(cmd.Context(), kp, args[0]); err != nil {
			return env.Fail(err)
		}
		env.Success("Granted %s", req.Capabilities)
		return nil
	},
}
