package auth

import (
	"github.com/spf13/cobra"
)

// AuthCmd groups the identity and session commands.
var AuthCmd = &cobra.Command{
	Use:   "auth",
	Short: "Identity and sessions",
	Long:  `Register with a homeserver, sign in, authorize other devices.`,
}
