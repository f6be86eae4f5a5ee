package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"eventky/cmd/client/cmd/auth"
	"eventky/cmd/client/cmd/calendar"
	"eventky/cmd/client/cmd/event"
	"eventky/cmd/client/cmd/file"
	"eventky/cmd/client/cmd/types"
	"eventky/internal/app/client"
	authKey "eventky/internal/domain/auth"
)

var (
	importKey bool
	sealKey   bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the identity key",
	Long: `Generates an ed25519 keypair and stores its secret in the data
directory. Your owner id is derived from it; keep a copy of the secret,
it cannot be recovered.

With --import the secret is read from the terminal instead. With --seal
the stored secret is encrypted under a passphrase; later commands read it
from KEY_PASSPHRASE.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		env, err := types.FromContext(cmd.Context())
		if err != nil {
			return err
		}

		if _, err := os.Stat(env.Cfg.SecretPath()); err == nil {
			fmt.Fprintf(env.Out, "Identity already exists in %s\n", env.Cfg.SecretPath())
			return nil
		}

		var kp *authKey.Keypair
		if importKey {
			kp, err = readSecret(env.Out)
		} else {
			kp, err = authKey.GenerateKeypair()
		}
		if err != nil {
			return err
		}

		passphrase := ""
		if sealKey {
			if passphrase, err = readPassphrase(env.Out); err != nil {
				return err
			}
		}
		if err := client.SaveKeypair(env.Cfg.SecretPath(), kp, passphrase); err != nil {
			return err
		}
		env.Success("Identity stored in %s", env.Cfg.SecretPath())
		return env.Print(map[string]string{"owner_id": kp.OwnerID()}, func(w io.Writer) {
			fmt.Fprintf(w, "Owner id: %s\n", kp.OwnerID())
			fmt.Fprintln(w, "Next: eventky auth signup")
		})
	},
}

func readSecret(out io.Writer) (*authKey.Keypair, error) {
	fmt.Fprint(out, "Secret key (hex): ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(out)
	if err != nil {
		return nil, fmt.Errorf("read secret: %w", err)
	}
	return authKey.KeypairFromHex(strings.TrimSpace(string(raw)))
}

func readPassphrase(out io.Writer) (string, error) {
	fmt.Fprint(out, "Passphrase: ")
	first, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("read passphrase: %w", err)
	}
	fmt.Fprint(out, "Repeat passphrase: ")
	second, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("read passphrase: %w", err)
	}
	if string(first) != string(second) {
		return "", fmt.Errorf("passphrases do not match")
	}
	if len(first) == 0 {
		return "", fmt.Errorf("empty passphrase")
	}
	return string(first), nil
}

func init() {
	initCmd.Flags().BoolVar(&importKey, "import", false, "import an existing secret key")
	initCmd.Flags().BoolVar(&sealKey, "seal", false, "encrypt the stored key under a passphrase")
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(bootstrapCmd)

	rootCmd.AddCommand(auth.AuthCmd)
	auth.AuthCmd.AddCommand(auth.SignupCmd)
	auth.AuthCmd.AddCommand(auth.SigninCmd)
	auth.AuthCmd.AddCommand(auth.LoginCmd)
	auth.AuthCmd.AddCommand(auth.LogoutCmd)
	auth.AuthCmd.AddCommand(auth.ApproveCmd)

	rootCmd.AddCommand(calendar.CalendarCmd)
	calendar.CalendarCmd.AddCommand(calendar.CreateCmd)
	calendar.CalendarCmd.AddCommand(calendar.ListCmd)
	calendar.CalendarCmd.AddCommand(calendar.GetCmd)
	calendar.CalendarCmd.AddCommand(calendar.DeleteCmd)

	rootCmd.AddCommand(event.EventCmd)
	event.EventCmd.AddCommand(event.CreateCmd)
	event.EventCmd.AddCommand(event.ListCmd)
	event.EventCmd.AddCommand(event.DeleteCmd)

	rootCmd.AddCommand(file.FileCmd)
	file.FileCmd.AddCommand(file.UploadCmd)
}
