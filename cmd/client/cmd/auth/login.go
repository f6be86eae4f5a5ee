package auth

import (
	"fmt"
	"io"
	"os"

	qrcode "github.com/skip2/go-qrcode"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"eventky/cmd/client/cmd/types"
	"eventky/internal/domain/auth"
)

var (
	capabilities string
	relayURL     string
)

var LoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in by approving from another device",
	Long: `Starts a delegated authorization: scan the QR code (or pass the URL to
"eventky auth approve") on a device that holds your key. The command
waits until the request is approved, cancelled with Ctrl+C, or expires.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		env, err := types.FromContext(cmd.Context())
		if err != nil {
			return err
		}

		var caps auth.Capabilities
		if capabilities != "" {
			if caps, err = auth.ParseCapabilities(capabilities); err != nil {
				return err
			}
		}

		flow, err := env.App.StartAuthFlow(cmd.Context(), caps, relayURL)
		if err != nil {
			return env.Fail(err)
		}
		defer flow.Cancel()

		if !env.JSON {
			printQR(env.Out, flow.URL())
			fmt.Fprintf(env.Out, "%s\n\nWaiting for approval of %s ...\n", flow.URL(), flow.Capabilities())
		}

		sess, err := flow.AwaitApproval(cmd.Context())
		if err != nil {
			return env.Fail(err)
		}

		env.Success("Authorized")
		return env.Print(map[string]string{
			"owner_id":     sess.OwnerID(),
			"capabilities": sess.Capabilities().String(),
		}, func(w io.Writer) {
			fmt.Fprintf(w, "Owner id:     %s\nCapabilities: %s\n", sess.OwnerID(), sess.Capabilities())
		})
	},
}

// printQR renders url as a QR code when stdout is a terminal.
func printQR(w io.Writer, url string) {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return
	}
	qr, err := qrcode.New(url, qrcode.Medium)
	if err != nil {
		return
	}
	fmt.Fprintln(w, qr.ToSmallString(false))
}

func init() {
	LoginCmd.Flags().StringVar(&capabilities, "caps", "", "capabilities to request, e.g. /pub/eventky.app/:rw")
	LoginCmd.Flags().StringVar(&relayURL, "relay", "", "relay URL, defaults to RELAY_URL")
}
