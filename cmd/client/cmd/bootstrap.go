package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"eventky/cmd/client/cmd/types"
)

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap [owner-id]",
	Short: "Show the index's initial feed for a user",
	Long:  `Asks the index service for the bootstrap bundle of owner-id, or of your own identity.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := types.FromContext(cmd.Context())
		if err != nil {
			return err
		}

		owner := ""
		if len(args) == 1 {
			owner = args[0]
		} else {
			kp, err := env.Keypair()
			if err != nil {
				return err
			}
			owner = kp.OwnerID()
		}

		resp := env.Services().Index.GetBootstrap(cmd.Context(), owner)
		if resp == nil {
			return errors.New("the index service is unavailable")
		}
		return env.Print(resp, func(w io.Writer) {
			fmt.Fprintf(w, "Users: %d\nPosts: %d\n", len(resp.Users), len(resp.Posts))
		})
	},
}
