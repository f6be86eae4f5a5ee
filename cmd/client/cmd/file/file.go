package file

import (
	"github.com/spf13/cobra"
)

// FileCmd groups the file commands.
var FileCmd = &cobra.Command{
	Use:   "file",
	Short: "Manage uploaded files",
}
