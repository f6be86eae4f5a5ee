package file

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"eventky/cmd/client/cmd/types"
	"eventky/internal/domain/address"
)

var contentType string

var UploadCmd = &cobra.Command{
	Use:   "upload <path>",
	Short: "Upload a file",
	Long: `Stores the file as a content addressed blob and writes a metadata
record for it. The printed URI can be used as an image of a calendar or
an event.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := types.FromContext(cmd.Context())
		if err != nil {
			return err
		}
		up, err := types.ReadUpload(args[0])
		if err != nil {
			return err
		}
		up.ContentType = contentType
		if _, err := env.SignIn(cmd.Context()); err != nil {
			return err
		}

		uri, err := env.Services().Files.Upload(cmd.Context(), *up)
		if err != nil {
			return env.Fail(err)
		}

		env.Success("Uploaded %s (%d bytes)", up.Name, len(up.Data))
		return env.Print(map[string]string{"uri": uri, "id": address.ExtractResourceID(uri)}, func(w io.Writer) {
			fmt.Fprintln(w, uri)
		})
	},
}

func init() {
	UploadCmd.Flags().StringVar(&contentType, "type", "", "MIME type, sniffed when empty")
}
